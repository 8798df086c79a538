// Package args builds quoted command-line argument strings for sc.exe and
// PowerShell invocations.
package args

import "strings"

// Redacted replaces secret values in RenderSafe output.
const Redacted = "[REDACTED]"

type kind int

const (
	kindRaw kind = iota
	kindQuoted
	kindNamed
	kindSwitch
)

type token struct {
	kind   kind
	name   string
	value  string
	secret bool
	masked *string
}

// Builder is an ordered sequence of argument tokens.
// The zero value is ready to use.
type Builder struct {
	tokens []token
}

// New returns an empty Builder.
func New() *Builder {
	return &Builder{}
}

// Append adds text verbatim.
func (b *Builder) Append(text string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindRaw, value: text})
	return b
}

// AppendQuoted adds a quoted positional value.
func (b *Builder) AppendQuoted(value string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindQuoted, value: value})
	return b
}

// AppendQuotedSecret adds a quoted positional value that is redacted in RenderSafe.
func (b *Builder) AppendQuotedSecret(value string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindQuoted, value: value, secret: true})
	return b
}

// AppendNamed adds a value in sc.exe form: name= "value".
func (b *Builder) AppendNamed(name, value string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindNamed, name: name, value: value})
	return b
}

// AppendNamedSecret adds a name= "value" token whose value is redacted in RenderSafe.
func (b *Builder) AppendNamedSecret(name, value string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindNamed, name: name, value: value, secret: true})
	return b
}

// AppendNamedMasked adds a name= "value" token that renders as
// name= "masked" in RenderSafe. Use it for values that embed other,
// possibly secret, rendered arguments.
func (b *Builder) AppendNamedMasked(name, value, masked string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindNamed, name: name, value: value, masked: &masked})
	return b
}

// AppendSwitch adds a value in PowerShell parameter form: -name "value".
func (b *Builder) AppendSwitch(name, value string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindSwitch, name: name, value: value})
	return b
}

// AppendSwitchSecret adds a -name "value" token whose value is redacted in RenderSafe.
func (b *Builder) AppendSwitchSecret(name, value string) *Builder {
	b.tokens = append(b.tokens, token{kind: kindSwitch, name: name, value: value, secret: true})
	return b
}

// Len returns the number of tokens.
func (b *Builder) Len() int {
	if b == nil {
		return 0
	}
	return len(b.tokens)
}

// IsEmpty reports whether the builder has no tokens.
func (b *Builder) IsEmpty() bool {
	return b.Len() == 0
}

// Clone returns an independent copy. Cloning nil returns nil.
func (b *Builder) Clone() *Builder {
	if b == nil {
		return nil
	}
	c := &Builder{tokens: make([]token, len(b.tokens))}
	copy(c.tokens, b.tokens)
	return c
}

// Render returns the full argument string, secrets included.
func (b *Builder) Render() string {
	return b.render(false, Quote)
}

// RenderSafe returns the argument string with secret values redacted.
// Use it for anything that ends up in a log.
func (b *Builder) RenderSafe() string {
	return b.render(true, Quote)
}

// RenderEmbedded renders values in plain double quotes without PowerShell
// escaping, for argument strings that are themselves quoted as a single
// value (such as a service binPath).
func (b *Builder) RenderEmbedded() string {
	return b.render(false, plainQuote)
}

// RenderEmbeddedSafe is RenderEmbedded with secret values redacted.
func (b *Builder) RenderEmbeddedSafe() string {
	return b.render(true, plainQuote)
}

// String implements fmt.Stringer and never exposes secrets.
func (b *Builder) String() string {
	return b.RenderSafe()
}

func (b *Builder) render(safe bool, quote func(string) string) string {
	if b == nil {
		return ""
	}

	parts := make([]string, 0, len(b.tokens))
	for _, t := range b.tokens {
		value := t.value
		switch {
		case safe && t.secret:
			value = Redacted
		case safe && t.masked != nil:
			value = *t.masked
		}

		switch t.kind {
		case kindRaw:
			parts = append(parts, value)
		case kindQuoted:
			parts = append(parts, quote(value))
		case kindNamed:
			parts = append(parts, t.name+"= "+quote(value))
		case kindSwitch:
			parts = append(parts, "-"+t.name+" "+quote(value))
		}
	}

	return strings.Join(parts, " ")
}

// Quote returns value as a PowerShell string literal that expands to
// exactly value. It uses double quotes with backticks and dollar signs
// escaped. A value that contains a double quote is wrapped in single
// quotes instead, with embedded single quotes doubled.
func Quote(value string) string {
	if strings.Contains(value, `"`) {
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	}
	return `"` + expandEscaper.Replace(value) + `"`
}

var expandEscaper = strings.NewReplacer("`", "``", "$", "`$")

func plainQuote(value string) string {
	return `"` + value + `"`
}

// EscapeQuotes prefixes every double quote with a backslash.
func EscapeQuotes(value string) string {
	return strings.ReplaceAll(value, `"`, `\"`)
}
