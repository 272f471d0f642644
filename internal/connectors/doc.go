// Package connectors fetches contracts from where they live.
//
// Each subpackage implements driven.DocumentSource for one URI scheme
// (file, github, gdrive, s3). The Registry picks the source by scheme;
// anything without a scheme is treated as a local path.
package connectors
