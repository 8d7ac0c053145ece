// Package fonts exposes the faces shipped with the binary. Documents are set
// in the Go font family, whose Latin-1 coverage includes every Portuguese
// accented letter.
package fonts

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

const embedPrefix = "embed:"

// Built-in face references, as written in configuration files.
const (
	EmbedRegular = embedPrefix + "regular"
	EmbedBold    = embedPrefix + "bold"
)

var builtin = map[string][]byte{
	"regular": goregular.TTF,
	"bold":    gobold.TTF,
}

// Regular is the body face.
func Regular() []byte { return goregular.TTF }

// Bold is the emphasis and heading face.
func Bold() []byte { return gobold.TTF }

// Load resolves a face reference. "embed:<name>" selects a built-in face,
// anything else is read as a TrueType file.
func Load(name string) ([]byte, error) {
	if !IsEmbedded(name) {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("fonts: %w", err)
		}
		return data, nil
	}
	key := strings.ToLower(strings.TrimPrefix(name, embedPrefix))
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("fonts: no built-in face %q", name)
	}
	return data, nil
}

// IsEmbedded reports whether name refers to a built-in face.
func IsEmbedded(name string) bool {
	return strings.HasPrefix(name, embedPrefix)
}
