package file

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/errcode"
)

const header = `# clausecheck configuration.
#
# API keys are never stored here. llm.api_key_env names the environment
# variable to read; leave it empty for the provider default (GROQ_API_KEY,
# OPENAI_API_KEY, ANTHROPIC_API_KEY or GEMINI_API_KEY).

`

// WriteDefault writes the default settings to path, creating its
// directory. An existing file is kept unless overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists: %w", path, domain.ErrInvalidInput)
		}
	}

	data, err := DefaultTOML()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errcode.Wrapf(err, errcode.CodeConfigLoadReadFailure, "creating config directory")
	}
	// Write with restricted permissions
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errcode.Wrapf(err, errcode.CodeConfigLoadReadFailure, "writing config %s", path)
	}
	return nil
}

// DefaultTOML renders the defaults as a commented TOML document.
func DefaultTOML() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(header)

	enc := toml.NewEncoder(&buf)
	enc.SetIndentTables(true)
	if err := enc.Encode(nestMap(defaults)); err != nil {
		return nil, fmt.Errorf("encode defaults: %w", err)
	}
	return buf.Bytes(), nil
}
