package msgspec

import (
	"bufio"
	"regexp"
	"strconv"
	"strings"

	"github.com/wippyai/rmw-cdr/errors"
)

var (
	fieldName    = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)
	constantName = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	typeName     = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)
)

// ServiceSeparator divides the request and response parts of a .srv file.
const ServiceSeparator = "---"

// ParseMessage parses the text of pkg/name.msg. file is used in error
// positions only.
func ParseMessage(pkg, name, file, text string) (*Spec, error) {
	spec := &Spec{Package: pkg, Name: name, File: file}
	p := parser{spec: spec}
	sc := bufio.NewScanner(strings.NewReader(text))
	for line := 1; sc.Scan(); line++ {
		if err := p.line(sc.Text(), line); err != nil {
			return nil, err
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.PhaseParse, errors.KindInvalidData, err, "reading "+file)
	}
	return spec, nil
}

// ParseService parses the text of pkg/name.srv.
func ParseService(pkg, name, file, text string) (*ServiceSpec, error) {
	lines := strings.Split(text, "\n")
	split := -1
	for i, l := range lines {
		if strings.TrimSpace(stripComment(l)) == ServiceSeparator {
			if split >= 0 {
				return nil, errors.ParseFailed(file, i+1, "more than one "+ServiceSeparator+" separator")
			}
			split = i
		}
	}
	if split < 0 {
		return nil, errors.ParseFailed(file, len(lines), "service has no "+ServiceSeparator+" separator")
	}
	req, resp := lines[:split], lines[split+1:]

	svc := &ServiceSpec{
		Package:  pkg,
		Name:     name,
		Request:  &Spec{Package: pkg, Name: name + "_Request", File: file},
		Response: &Spec{Package: pkg, Name: name + "_Response", File: file},
	}
	rp := parser{spec: svc.Request}
	for i, l := range req {
		if err := rp.line(l, i+1); err != nil {
			return nil, err
		}
	}
	sp := parser{spec: svc.Response}
	for i, l := range resp {
		if err := sp.line(l, split+i+2); err != nil {
			return nil, err
		}
	}
	return svc, nil
}

type parser struct {
	spec *Spec
}

func (p *parser) fail(line int, format string, args ...any) error {
	return errors.New(errors.PhaseParse, errors.KindInvalidData).
		Path(p.spec.File+":"+strconv.Itoa(line)).
		TypeName(p.spec.FullName()).
		Detail(format, args...).
		Build()
}

func (p *parser) line(raw string, line int) error {
	text := strings.TrimSpace(stripComment(raw))
	if text == "" {
		return nil
	}

	typ, rest, ok := cutSpace(text)
	if !ok {
		return p.fail(line, "expected \"<type> <name>\", got %q", text)
	}

	// NAME=VALUE or NAME = VALUE declares a constant.
	if name, value, isConst := strings.Cut(rest, "="); isConst && !strings.ContainsAny(strings.TrimSpace(name), " \t") {
		return p.constant(typ, strings.TrimSpace(name), strings.TrimSpace(value), line)
	}

	name, def, _ := cutSpace(rest)
	f, err := p.fieldType(typ, line)
	if err != nil {
		return err
	}
	if !fieldName.MatchString(name) {
		return p.fail(line, "invalid field name %q", name)
	}
	for _, existing := range p.spec.Fields {
		if existing.Name == name {
			return p.fail(line, "duplicate field %q", name)
		}
	}
	f.Name = name
	f.Default = strings.TrimSpace(def)
	f.Line = line
	p.spec.Fields = append(p.spec.Fields, f)
	return nil
}

func (p *parser) constant(typ, name, value string, line int) error {
	if !constantName.MatchString(name) {
		return p.fail(line, "invalid constant name %q", name)
	}
	f, err := p.fieldType(typ, line)
	if err != nil {
		return err
	}
	if !f.IsPrimitive() || f.IsArray {
		return p.fail(line, "constant %s must have a primitive non-array type, got %s", name, typ)
	}
	if value == "" {
		return p.fail(line, "constant %s has no value", name)
	}
	if f.Type == "string" {
		value = unquote(value)
	}
	p.spec.Constants = append(p.spec.Constants, Constant{Name: name, Type: typ, Value: value, Line: line})
	return nil
}

// fieldType parses "T", "T[N]", "T[]", "T[<=N]", "string<=N" and
// "pkg/T" forms.
func (p *parser) fieldType(typ string, line int) (Field, error) {
	var f Field

	if open := strings.IndexByte(typ, '['); open >= 0 {
		if !strings.HasSuffix(typ, "]") {
			return f, p.fail(line, "unterminated array in %q", typ)
		}
		inner := typ[open+1 : len(typ)-1]
		typ = typ[:open]
		f.IsArray = true
		if bound, ok := strings.CutPrefix(inner, "<="); ok {
			n, err := p.positive(bound, line)
			if err != nil {
				return f, err
			}
			f.ArraySize = n
			f.IsUpperBound = true
		} else if inner != "" {
			n, err := p.positive(inner, line)
			if err != nil {
				return f, err
			}
			f.ArraySize = n
		}
	}

	if base, bound, ok := strings.Cut(typ, "<="); ok {
		if base != "string" && base != "wstring" {
			return f, p.fail(line, "only strings take an upper bound, got %q", typ)
		}
		n, err := p.positive(bound, line)
		if err != nil {
			return f, err
		}
		f.StringBound = n
		typ = base
	}

	switch parts := strings.Split(typ, "/"); len(parts) {
	case 1:
		f.Type = typ
		if typ == "Header" {
			f.Package, f.Type = "std_msgs", "Header"
		}
	case 2:
		f.Package, f.Type = parts[0], parts[1]
	case 3:
		if parts[1] != "msg" {
			return f, p.fail(line, "nested type %q must live in a msg namespace", typ)
		}
		f.Package, f.Type = parts[0], parts[2]
	default:
		return f, p.fail(line, "invalid type %q", typ)
	}
	if f.Package != "" && !fieldName.MatchString(f.Package) {
		return f, p.fail(line, "invalid package name %q", f.Package)
	}
	if !typeName.MatchString(f.Type) {
		return f, p.fail(line, "invalid type %q", typ)
	}
	return f, nil
}

func (p *parser) positive(s string, line int) (uint32, error) {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || n == 0 {
		return 0, p.fail(line, "expected a positive integer, got %q", s)
	}
	return uint32(n), nil
}

func cutSpace(s string) (before, after string, found bool) {
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, "", false
	}
	return s[:i], strings.TrimSpace(s[i+1:]), true
}

// stripComment drops a trailing # comment outside of quotes.
func stripComment(s string) string {
	var quote byte
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return s[:i]
		}
	}
	return s
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func itoa(n uint32) string {
	return strconv.FormatUint(uint64(n), 10)
}

// SplitName splits "pkg/Name" or "pkg/msg/Name" into package and name.
func SplitName(full string) (pkg, name string, err error) {
	parts := strings.Split(full, "/")
	switch {
	case len(parts) == 2 && parts[0] != "" && parts[1] != "":
		return parts[0], parts[1], nil
	case len(parts) == 3 && parts[0] != "" && parts[2] != "":
		return parts[0], parts[2], nil
	default:
		return "", "", errors.New(errors.PhaseParse, errors.KindInvalidData).
			Detail("type name %q is not pkg/Name", full).
			Build()
	}
}
