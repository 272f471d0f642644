// Package services holds the compliance pipeline: keyword scan, semantic
// retrieval and LLM adjudication, run per rule over one ingested contract.
// It depends only on the driven ports; adapters are injected by the CLI.
package services
