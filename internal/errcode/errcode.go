// Package errcode attaches machine-readable codes and structured context
// to errors crossing a module boundary. Codes are hierarchical dotted
// strings: <area>.<operation>.<outcome>.
//
// Coded errors still unwrap, so errors.Is against the domain sentinels
// keeps working.
package errcode

import (
	"fmt"

	"github.com/samber/oops"
)

// Code is the machine-readable identifier for an error.
type Code string

const (
	CodeIngestTypeUnsupported   Code = "ingest.type.unsupported"
	CodeIngestExtractFailure    Code = "ingest.extract.failure"
	CodeIngestDocumentEmpty     Code = "ingest.document.empty"
	CodeSessionCredentialAbsent Code = "session.credential.missing"
	CodeSessionConfigInvalid    Code = "session.config.invalid"
	CodeCatalogLoadFailure      Code = "catalog.load.failure"
	CodeCatalogValidateInvalid  Code = "catalog.validate.invalid"
	CodeConfigLoadReadFailure   Code = "config.load.read.failure"
	CodeConfigValidateInvalid   Code = "config.validate.invalid_value"
	CodeIndexBuildFailure       Code = "index.build.failure"
	CodeSourceFetchFailure      Code = "source.fetch.failure"
	CodeSourceUnsupported       Code = "source.scheme.unsupported"
	CodeReportWriteFailure      Code = "report.write.failure"
)

// Attr is a structured key/value context attached to an error.
type Attr struct {
	Key   string
	Value any
}

// Field creates a structured error field.
func Field(key string, value any) Attr {
	return Attr{Key: key, Value: value}
}

// New creates a coded error.
func New(code Code, msg string, fields ...Attr) error {
	return oops.Code(string(code)).With(flatten(fields)...).New(msg)
}

// Wrap attaches a code and fields to err. Nil stays nil.
func Wrap(err error, code Code, msg string, fields ...Attr) error {
	if err == nil {
		return nil
	}
	return oops.Code(string(code)).With(flatten(fields)...).Wrapf(err, "%s", msg)
}

// Wrapf attaches a code and a formatted message to err. Nil stays nil.
func Wrapf(err error, code Code, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return oops.Code(string(code)).Wrapf(err, format, args...)
}

// CodeOf returns the outermost code in the chain, or "" when uncoded.
func CodeOf(err error) Code {
	if err == nil {
		return ""
	}
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return ""
	}
	switch c := oopsErr.Code().(type) {
	case Code:
		return c
	case string:
		return Code(c)
	case nil:
		return ""
	default:
		return Code(fmt.Sprintf("%v", c))
	}
}

// HasCode reports whether err carries code.
func HasCode(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// FieldsOf returns the structured context attached to err.
func FieldsOf(err error) map[string]any {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return nil
	}
	return oopsErr.Context()
}

func flatten(fields []Attr) []any {
	kv := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		kv = append(kv, f.Key, f.Value)
	}
	return kv
}
