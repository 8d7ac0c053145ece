// Package templates embeds the scripts of the built-in document kinds.
package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/level5eng/docflow/dsl"
)

// Kind names a built-in document.
type Kind string

const (
	Contract Kind = "contract"
	Proposal Kind = "proposal"
)

//go:embed *.doc
var builtin embed.FS

// Source returns the script text of kind.
func Source(kind Kind) (string, error) {
	data, err := fs.ReadFile(builtin, string(kind)+".doc")
	if err != nil {
		return "", fmt.Errorf("templates: unknown kind %q", kind)
	}
	return string(data), nil
}

// Load parses the built-in script of kind, or the file override when it is
// not empty.
func Load(kind Kind, override string) (*dsl.Document, error) {
	if override != "" {
		f, err := os.Open(filepath.Clean(override))
		if err != nil {
			return nil, fmt.Errorf("templates: open %s: %w", override, err)
		}
		defer f.Close()
		doc, err := dsl.Parse(f)
		if err != nil {
			return nil, fmt.Errorf("templates: parse %s: %w", override, err)
		}
		return doc, nil
	}
	src, err := Source(kind)
	if err != nil {
		return nil, err
	}
	doc, err := dsl.ParseString(src)
	if err != nil {
		return nil, fmt.Errorf("templates: parse %s: %w", kind, err)
	}
	return doc, nil
}
