package record

import (
	"strings"

	"github.com/inspirehep/refextract/internal/reference"
)

// DefaultFormat renders a journal reference as "Phys. Rev. Lett. 19 (1967) 1264-1266".
const DefaultFormat = "{title} {volume} ({year}) {page}"

// journalFields are the placeholders a format may name.
var journalFields = map[string]func(reference.Element) string{
	"title":    func(el reference.Element) string { return el.Title },
	"volume":   func(el reference.Element) string { return el.Volume },
	"year":     func(el reference.Element) string { return el.Year },
	"page":     func(el reference.Element) string { return el.Page },
	"page_end": func(el reference.Element) string { return el.PageEnd },
	"misc_txt": func(el reference.Element) string { return el.MiscText },
	"recid":    func(el reference.Element) string { return el.Recid },
}

type segment struct {
	text  string
	field func(reference.Element) string
}

// Format is a parsed journal reference template. Placeholders are written
// {name}; {{ and }} stand for literal braces.
type Format struct {
	template string
	segments []segment
}

// ParseFormat parses template. Unknown or unterminated placeholders are
// reported as a *FormatError.
func ParseFormat(template string) (*Format, error) {
	f := &Format{template: template}
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			f.segments = append(f.segments, segment{text: lit.String()})
			lit.Reset()
		}
	}
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && strings.HasPrefix(template[i:], "{{"):
			lit.WriteByte('{')
			i++
		case c == '}' && strings.HasPrefix(template[i:], "}}"):
			lit.WriteByte('}')
			i++
		case c == '}':
			return nil, &FormatError{Template: template, Offset: i, Reason: "single '}'"}
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end < 0 {
				return nil, &FormatError{Template: template, Offset: i, Reason: "unterminated placeholder"}
			}
			name := template[i+1 : i+end]
			field, ok := journalFields[name]
			if !ok {
				return nil, &FormatError{Template: template, Offset: i, Reason: "unknown placeholder {" + name + "}"}
			}
			flush()
			f.segments = append(f.segments, segment{field: field})
			i += end
		default:
			lit.WriteByte(c)
		}
	}
	flush()
	return f, nil
}

// MustParseFormat is like ParseFormat but panics on error.
func MustParseFormat(template string) *Format {
	f, err := ParseFormat(template)
	if err != nil {
		panic(err)
	}
	return f
}

// String returns the template f was parsed from.
func (f *Format) String() string {
	return f.template
}

// Apply renders el. Missing fields render empty.
func (f *Format) Apply(el reference.Element) string {
	var b strings.Builder
	for _, s := range f.segments {
		if s.field != nil {
			b.WriteString(s.field(el))
			continue
		}
		b.WriteString(s.text)
	}
	return b.String()
}
