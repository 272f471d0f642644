// Package rules loads the compliance rule catalog from YAML or JSON.
//
// The default catalog ships inside the binary. A file source replaces it
// wholesale; catalogs are never merged.
package rules

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/core/ports/driven"
	"github.com/custodia-labs/clausecheck/internal/errcode"
)

//go:embed catalog.yaml
var embeddedCatalog []byte

// EmbeddedOrigin is the origin reported by the built-in catalog.
const EmbeddedOrigin = "embedded"

// Ensure both sources implement the interface.
var (
	_ driven.RuleSource = (*EmbeddedSource)(nil)
	_ driven.RuleSource = (*FileSource)(nil)
)

// catalogFile is the on-disk layout shared by YAML and JSON catalogs.
type catalogFile struct {
	Rules []ruleEntry `yaml:"rules" json:"rules"`
}

// ruleEntry keeps severity as a plain string so it can be parsed
// case-insensitively.
type ruleEntry struct {
	ID          string   `yaml:"id" json:"id"`
	Description string   `yaml:"description" json:"description"`
	Severity    string   `yaml:"severity" json:"severity"`
	Keywords    []string `yaml:"keywords" json:"keywords"`
}

// EmbeddedSource serves the catalog compiled into the binary.
type EmbeddedSource struct{}

// NewEmbedded returns the built-in catalog source.
func NewEmbedded() *EmbeddedSource {
	return &EmbeddedSource{}
}

// Load parses the embedded catalog.
func (s *EmbeddedSource) Load(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return parse(embeddedCatalog, formatYAML, EmbeddedOrigin)
}

// Origin returns "embedded".
func (s *EmbeddedSource) Origin() string {
	return EmbeddedOrigin
}

// FileSource reads a catalog from disk. The format follows the extension:
// .json is JSON, anything else is YAML.
type FileSource struct {
	path string
}

// NewFile returns a source reading path.
func NewFile(path string) *FileSource {
	return &FileSource{path: path}
}

// Load reads and validates the catalog file.
func (s *FileSource) Load(ctx context.Context) (*domain.Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errcode.Wrap(err, errcode.CodeCatalogLoadFailure, "read rule catalog",
			errcode.Field("path", s.path))
	}
	return parse(data, formatFor(s.path), s.path)
}

// Origin returns the catalog path.
func (s *FileSource) Origin() string {
	return s.path
}

// NewSource returns the file source for path, or the embedded catalog when
// path is empty.
func NewSource(path string) driven.RuleSource {
	if strings.TrimSpace(path) == "" {
		return NewEmbedded()
	}
	return NewFile(path)
}

type format int

const (
	formatYAML format = iota
	formatJSON
)

func formatFor(path string) format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return formatJSON
	}
	return formatYAML
}

func parse(data []byte, f format, origin string) (*domain.Catalog, error) {
	var file catalogFile
	var err error
	switch f {
	case formatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&file)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&file)
	}
	if err != nil {
		return nil, errcode.Wrap(fmt.Errorf("%w: %v", domain.ErrInvalidCatalog, err),
			errcode.CodeCatalogLoadFailure, "decode rule catalog", errcode.Field("origin", origin))
	}

	rules := make([]domain.ComplianceRule, 0, len(file.Rules))
	for i, e := range file.Rules {
		sev, err := domain.ParseSeverity(e.Severity)
		if err != nil {
			return nil, errcode.Wrap(fmt.Errorf("%w: rule %d (%s): severity %q", domain.ErrInvalidCatalog, i, e.ID, e.Severity),
				errcode.CodeCatalogValidateInvalid, "validate rule catalog", errcode.Field("origin", origin))
		}
		rules = append(rules, domain.ComplianceRule{
			ID:          e.ID,
			Description: e.Description,
			Keywords:    e.Keywords,
			Severity:    sev,
		})
	}

	catalog, err := domain.NewCatalog(rules)
	if err != nil {
		return nil, errcode.Wrap(err, errcode.CodeCatalogValidateInvalid, "validate rule catalog",
			errcode.Field("origin", origin))
	}
	return catalog, nil
}
