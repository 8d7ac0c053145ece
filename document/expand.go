package document

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/level5eng/docflow/binding"
	"github.com/level5eng/docflow/dsl"
	"github.com/level5eng/docflow/layout"
)

// Expansion is a script bound to its data.
type Expansion struct {
	Blocks []layout.Block
	// Meta holds the interpolated meta entries (title, footer, logo).
	Meta map[string]string
}

// Expand walks script in order, resolving placeholders against data,
// evaluating when/each and turning every statement into layout blocks. An
// unresolved placeholder is an error; a document must not print "${...}".
func Expand(script *dsl.Document, data map[string]any) (*Expansion, error) {
	if script == nil || script.Body == nil {
		return nil, fmt.Errorf("document: empty script")
	}
	x := &expander{out: &Expansion{Meta: map[string]string{}}}
	if err := x.block(script.Body, data); err != nil {
		return nil, fmt.Errorf("document: %s: %w", script.Name, err)
	}
	return x.out, nil
}

type expander struct {
	out *Expansion
}

func (x *expander) block(b *dsl.Block, data map[string]any) error {
	if b == nil {
		return nil
	}
	for _, st := range b.Statements {
		if err := x.statement(st, data); err != nil {
			return err
		}
	}
	return nil
}

func (x *expander) statement(st *dsl.Statement, data map[string]any) error {
	switch {
	case st.Meta != nil:
		for _, e := range st.Meta.Entries {
			v, err := binding.InterpolateStrict(e.Raw(), data)
			if err != nil {
				return fmt.Errorf("meta %s: %w", e.Key, err)
			}
			x.out.Meta[e.Key] = v
		}
	case st.Text != nil:
		return x.text(st.Text, data)
	case st.Image != nil:
		return x.image(st.Image, data)
	case st.Signature != nil:
		return x.signature(st.Signature, data)
	case st.When != nil:
		v, _ := binding.Lookup(data, st.When.Path)
		if binding.Truthy(v) != st.When.Not {
			return x.block(st.When.Body, data)
		}
		return x.block(st.When.Else, data)
	case st.Each != nil:
		v, _ := binding.Lookup(data, st.Each.Path)
		items, _ := binding.Items(v)
		for _, item := range items {
			if err := x.block(st.Each.Body, binding.With(data, st.Each.Var, item)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (x *expander) text(t *dsl.TextStmt, data map[string]any) error {
	raw, err := t.Value()
	if err != nil {
		return err
	}
	s, err := binding.InterpolateStrict(raw, data)
	if err != nil {
		return fmt.Errorf("%s: %w", t.Pos, err)
	}
	var b layout.Block
	switch layout.Kind(t.Kind) {
	case layout.KindTitle:
		b = layout.Title(s)
	case layout.KindLabel:
		b = layout.Label(s)
	case layout.KindText:
		b = layout.Text(s)
	case layout.KindBullet:
		b = layout.Bullet(s)
	default:
		b = layout.Paragraph(s)
	}
	x.out.Blocks = append(x.out.Blocks, b)
	return nil
}

func (x *expander) image(img *dsl.ImageStmt, data map[string]any) error {
	ref, err := binding.InterpolateStrict(string(img.Ref), data)
	if err != nil {
		return fmt.Errorf("%s: %w", img.Pos, err)
	}
	rawW, rawH := img.Size()
	w, err := length(rawW, data)
	if err != nil {
		return fmt.Errorf("%s: width: %w", img.Pos, err)
	}
	h, err := length(rawH, data)
	if err != nil {
		return fmt.Errorf("%s: height: %w", img.Pos, err)
	}
	x.out.Blocks = append(x.out.Blocks, layout.Image(ref, w, h))
	return nil
}

func (x *expander) signature(sig *dsl.SignatureStmt, data map[string]any) error {
	get := func(key string) (string, error) {
		raw, _ := dsl.Lookup(sig.Entries, key)
		v, err := binding.InterpolateStrict(raw, data)
		if err != nil {
			return "", fmt.Errorf("signature %s: %w", key, err)
		}
		return v, nil
	}
	var (
		block layout.SignatureBlock
		err   error
	)
	fields := []struct {
		key string
		dst *string
	}{
		{"date", &block.DateText},
		{"caption1", &block.Lines[0].Caption},
		{"name1", &block.Lines[0].Name},
		{"caption2", &block.Lines[1].Caption},
		{"name2", &block.Lines[1].Name},
		{"overlay", &block.Overlay.Ref},
	}
	for _, f := range fields {
		if *f.dst, err = get(f.key); err != nil {
			return err
		}
	}
	// signature lines are drawn verbatim, without markup
	for _, dst := range []*string{&block.DateText, &block.Lines[0].Caption, &block.Lines[0].Name, &block.Lines[1].Caption, &block.Lines[1].Name} {
		*dst = layout.PlainText(*dst)
	}
	for _, f := range []struct {
		key string
		dst *float64
	}{
		{"overlay-width", &block.Overlay.Width},
		{"overlay-height", &block.Overlay.Height},
	} {
		raw, err := get(f.key)
		if err != nil {
			return err
		}
		if *f.dst, err = length(raw, nil); err != nil {
			return fmt.Errorf("signature %s: %w", f.key, err)
		}
	}
	line, err := get("overlay-line")
	if err != nil {
		return err
	}
	if line != "" {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil || n < 0 || n >= len(block.Lines) {
			return fmt.Errorf("signature overlay-line: want 0 or 1, got %q", line)
		}
		block.Overlay.Line = n
	}
	x.out.Blocks = append(x.out.Blocks, layout.Signature(block))
	return nil
}

// length interpolates raw and reads it as a length in mm. Empty means zero.
func length(raw string, data map[string]any) (float64, error) {
	s := raw
	if data != nil {
		var err error
		if s, err = binding.InterpolateStrict(raw, data); err != nil {
			return 0, err
		}
	}
	l, err := layout.ParseLength(s)
	if err != nil {
		return 0, err
	}
	return l.ToMM(), nil
}
