// Package file loads clausecheck settings from defaults, an optional TOML
// file and CLAUSECHECK_* environment variables, in increasing precedence.
//
// Settings never hold an API key. Only the name of the environment
// variable carrying it is stored, and WriteDefault writes nothing else.
package file
