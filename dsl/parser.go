// Package dsl parses document scripts: the ordered list of blocks a contract or
// proposal is made of, with ${path} placeholders, conditionals and loops.
//
//	doc contract v1 {
//	  meta { title: "CONTRATO" }
//	  title "1. DAS PARTES"
//	  paragraph "CONTRATANTE: ${client.name}"
//	  when notes { paragraph "${notes}" }
//	  each items as item { bullet "${item.quantity} - ${item.description}" }
//	  image "${charts.production}" width 170mm height 85mm
//	  signature { date: "${city}, ${date}" caption1: "CONTRATADA:" }
//	}
package dsl

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

var (
	dslLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Whitespace", Pattern: `[ \t\r]+`},
		{Name: "Newline", Pattern: `\n+`},
		{Name: "BlockComment", Pattern: `/\*[^*]*\*+(?:[^/*][^*]*\*+)*/`},
		{Name: "LineComment", Pattern: `//[^\n]*`},
		{Name: "HashComment", Pattern: `#[^\n]*`},
		{Name: "Number", Pattern: `(?:\d+\.\d+|\d+)(?:pt|mm|cm|in)?`},
		{Name: "String", Pattern: `"(?:\\.|[^"])*"`},
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_-]*`},
		{Name: "Symbol", Pattern: `[][(),.=+!;:]`},
		{Name: "LBrace", Pattern: `{`},
		{Name: "RBrace", Pattern: `}`},
	})

	documentParser = participle.MustBuild[Document](
		participle.Lexer(dslLexer),
		participle.Elide("Whitespace", "LineComment", "BlockComment", "HashComment"),
	)
)

// Document is the root of a script.
type Document struct {
	Pos     lexer.Position `parser:"" json:"-"`
	Name    string         `parser:"Newline* 'doc' @Ident"`
	Version string         `parser:"@Ident"`
	Body    *Block         `parser:"@@ Newline*"`
}

// Block is a braced list of statements separated by newlines or semicolons.
type Block struct {
	Statements []*Statement `parser:"'{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// Statement is exactly one of its fields.
type Statement struct {
	Meta      *Meta          `parser:"  @@"`
	Image     *ImageStmt     `parser:"| @@"`
	Signature *SignatureStmt `parser:"| @@"`
	When      *When          `parser:"| @@"`
	Each      *Each          `parser:"| @@"`
	Text      *TextStmt      `parser:"| @@"`
}

// Meta carries chrome settings such as the header title and footer.
type Meta struct {
	Entries []*Assignment `parser:"'meta' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// TextStmt is a title, label, text, paragraph or bullet. Adjacent strings
// joined with '+' are concatenated.
type TextStmt struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Kind  string         `parser:"@( 'title' | 'label' | 'text' | 'paragraph' | 'bullet' )"`
	Parts []string       `parser:"@String ( '+' Newline* @String )*"`
}

// Value unquotes and joins the string parts.
func (t *TextStmt) Value() (string, error) {
	var b strings.Builder
	for _, p := range t.Parts {
		s, err := strconv.Unquote(p)
		if err != nil {
			return "", fmt.Errorf("%s: %w", t.Pos, err)
		}
		b.WriteString(s)
	}
	return b.String(), nil
}

// ImageStmt places a fixed-size image. Width and Height keep their units and
// may be quoted to hold a placeholder.
type ImageStmt struct {
	Pos    lexer.Position `parser:"" json:"-"`
	Ref    StringLiteral  `parser:"'image' @String"`
	Width  string         `parser:"( 'width' ( @Number | @String ) )?"`
	Height string         `parser:"( 'height' ( @Number | @String ) )?"`
}

// Size returns Width and Height with any quotes removed.
func (i *ImageStmt) Size() (string, string) {
	return unquoteLoose(i.Width), unquoteLoose(i.Height)
}

func unquoteLoose(s string) string {
	if v, err := strconv.Unquote(s); err == nil {
		return v
	}
	return s
}

// SignatureStmt configures the closing signature block.
type SignatureStmt struct {
	Entries []*Assignment `parser:"'signature' '{' Newline* ( @@ ( ';' | Newline )* )* '}'"`
}

// When renders Body if Path is truthy (or falsy when negated), Else otherwise.
type When struct {
	Not  bool   `parser:"'when' @'!'?"`
	Path string `parser:"@Ident ( @'.' @Ident )*"`
	Body *Block `parser:"@@"`
	Else *Block `parser:"( 'else' @@ )?"`
}

// Each renders Body once per element of the list at Path, bound to Var.
type Each struct {
	Path string `parser:"'each' @Ident ( @'.' @Ident )*"`
	Var  string `parser:"'as' @Ident"`
	Body *Block `parser:"@@"`
}

// Assignment is a key: value pair.
type Assignment struct {
	Key   string `parser:"@Ident ':'"`
	Value *Value `parser:"@@"`
}

// Value is a quoted string or a number with an optional unit.
type Value struct {
	String *StringLiteral `parser:"  @String"`
	Number *string        `parser:"| @Number"`
}

// Raw returns the value as written, unquoted.
func (a *Assignment) Raw() string {
	switch {
	case a.Value == nil:
		return ""
	case a.Value.String != nil:
		return string(*a.Value.String)
	case a.Value.Number != nil:
		return *a.Value.Number
	default:
		return ""
	}
}

// Lookup returns the value of key among entries.
func Lookup(entries []*Assignment, key string) (string, bool) {
	for _, e := range entries {
		if e.Key == key {
			return e.Raw(), true
		}
	}
	return "", false
}

// StringLiteral unquotes Go-style strings on capture.
type StringLiteral string

// Capture implements participle.Capture.
func (s *StringLiteral) Capture(values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("string literal capture requires value")
	}
	val, err := strconv.Unquote(values[0])
	if err != nil {
		return err
	}
	*s = StringLiteral(val)
	return nil
}

// Parse parses a script from r.
func Parse(r io.Reader) (*Document, error) {
	return documentParser.Parse("", r)
}

// ParseString parses a script held in a string.
func ParseString(input string) (*Document, error) {
	return documentParser.ParseString("", input)
}
