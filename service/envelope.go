package service

import (
	"encoding/base64"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// DownloadPath is the URL prefix under which generated files are served.
const DownloadPath = "/api/v1/download/"

// Envelope is the JSON answer of a generation request.
type Envelope struct {
	Success  bool           `json:"success"`
	Message  string         `json:"message"`
	Filename string         `json:"filename"`
	URL      string         `json:"url"`
	Base64   string         `json:"base64"`
	Data     map[string]any `json:"dados,omitempty"`
}

// NewEnvelope wraps a generated document.
func NewEnvelope(out *Output, message string) Envelope {
	return Envelope{
		Success:  true,
		Message:  message,
		Filename: out.Filename,
		URL:      DownloadPath + out.Filename,
		Base64:   base64.StdEncoding.EncodeToString(out.PDF),
		Data:     out.Data,
	}
}

// ErrorEnvelope is the JSON answer of a failed request.
type ErrorEnvelope struct {
	Error string `json:"error"`
}

// NewErrorEnvelope reports err.
func NewErrorEnvelope(err error) ErrorEnvelope {
	return ErrorEnvelope{Error: err.Error()}
}

// Slug lower-cases name, folds accents and joins words with underscores.
// Characters that are not letters, digits, '-' or '_' are dropped.
func Slug(name string) string {
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil {
		folded = name
	}
	var words []string
	for _, word := range strings.Fields(strings.ToLower(folded)) {
		w := strings.Map(keepSlugRune, word)
		if w != "" {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return "cliente"
	}
	return strings.Join(words, "_")
}

func keepSlugRune(r rune) rune {
	if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_') {
		return r
	}
	return -1
}
