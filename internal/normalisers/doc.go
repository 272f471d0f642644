// Package normalisers provides implementations of the Normaliser interface
// for the contract formats the checker accepts. Each normaliser knows how to
// extract text content from a specific MIME type.
//
// NewDefaultRegistry wires the built-in plaintext, PDF and DOCX normalisers.
package normalisers
