package syntax

import (
	stderrors "errors"
	"reflect"
	"strings"
	"testing"

	"github.com/wippyai/tisl/errors"
)

func lexOne(t *testing.T, src string) *Form {
	t.Helper()
	forms, err := Lex(src)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(forms) != 1 {
		t.Fatalf("got %d forms, want 1", len(forms))
	}
	return forms[0]
}

func TestLexModule(t *testing.T) {
	f := lexOne(t, "(mod test-moduel)")
	if f.Kind != FormModule {
		t.Errorf("kind: got %v, want mod", f.Kind)
	}
	if f.Name.Name != "test-moduel" {
		t.Errorf("name: got %q", f.Name.Name)
	}
	if len(f.Members) != 0 {
		t.Errorf("members: got %d, want 0", len(f.Members))
	}
}

func TestLexNestedAndMultiple(t *testing.T) {
	forms, err := Lex("(mod mod1 (mod inner))\n(mod mod2)")
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	if len(forms) != 2 {
		t.Fatalf("got %d forms, want 2", len(forms))
	}
	if forms[0].Members[0].Name.Name != "inner" {
		t.Errorf("nested: got %q", forms[0].Members[0].Name.Name)
	}
	if forms[1].Name.Name != "mod2" {
		t.Errorf("second root: got %q", forms[1].Name.Name)
	}
}

func TestLexBracketFamilies(t *testing.T) {
	a := lexOne(t, "(mod m (rec r (:x int)))")
	b := lexOne(t, "[mod m {rec r [:x int)]}")
	if !reflect.DeepEqual(stripPos(a), stripPos(b)) {
		t.Errorf("bracket families parse differently:\n%+v\n%+v", a, b)
	}
}

func TestLexFunction(t *testing.T) {
	f := lexOne(t, `(mod m (fun f "does f" (:a int :b (list string)) (:c bool)))`)
	fn := f.Members[0]
	if fn.Kind != FormFunction || fn.Name.Name != "f" || fn.Doc != "does f" {
		t.Fatalf("unexpected function form %+v", fn)
	}
	if len(fn.Arguments) != 2 || len(fn.Returns) != 1 {
		t.Fatalf("got %d args / %d returns", len(fn.Arguments), len(fn.Returns))
	}
	b := fn.Arguments[1]
	if b.Name.Name != "b" || b.Type.Name != "string" || b.Type.Kind != TypeBuiltin {
		t.Errorf("arg b: got %+v", b)
	}
	if !reflect.DeepEqual(b.Type.Modifiers, []string{"list"}) {
		t.Errorf("arg b modifiers: got %v", b.Type.Modifiers)
	}
}

func TestLexTypeSpecs(t *testing.T) {
	f := lexOne(t, "(mod m (rec r (:a int :b other :c (ref list bytes) :d (list other))))")
	fields := f.Members[0].Fields

	tests := []struct {
		name      string
		typ       string
		kind      TypeKind
		modifiers []string
	}{
		{"a", "int", TypeBuiltin, nil},
		{"b", "other", TypeRecordOrEnum, nil},
		{"c", "bytes", TypeBuiltin, []string{"ref", "list"}},
		{"d", "other", TypeRecordOrEnum, []string{"list"}},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fields[i]
			if got.Name.Name != tt.name {
				t.Errorf("name: got %q, want %q", got.Name.Name, tt.name)
			}
			if got.Type.Name != tt.typ || got.Type.Kind != tt.kind {
				t.Errorf("type: got %s/%v, want %s/%v", got.Type.Name, got.Type.Kind, tt.typ, tt.kind)
			}
			if !reflect.DeepEqual(got.Type.Modifiers, tt.modifiers) {
				t.Errorf("modifiers: got %v, want %v", got.Type.Modifiers, tt.modifiers)
			}
		})
	}
}

func TestLexTypePosition(t *testing.T) {
	f := lexOne(t, "(mod m\n  (rec r (:x (list thing))))")
	typ := f.Members[0].Fields[0].Type
	if typ.Line != 2 || typ.Column != 20 {
		t.Errorf("type position: got %d:%d, want 2:20", typ.Line, typ.Column)
	}
}

func TestLexEnum(t *testing.T) {
	f := lexOne(t, `(mod m (enu bird-type "Kinds" (:vulture :albatross :eagle)))`)
	e := f.Members[0]
	if e.Kind != FormEnum || e.Doc != "Kinds" {
		t.Fatalf("unexpected enum form %+v", e)
	}
	var names []string
	for _, v := range e.Variants {
		names = append(names, v.Name)
	}
	if !reflect.DeepEqual(names, []string{"vulture", "albatross", "eagle"}) {
		t.Errorf("variants: got %v", names)
	}
}

func TestLexDocStrings(t *testing.T) {
	src := `(mod lada "i ladan bor kossan"
        (rec ko "🐄 mamma mu" (:liter-mjolk float))
        (fun mjolka "Mjölk
ko-olt!" () ()))`
	f := lexOne(t, src)
	if f.Doc != "i ladan bor kossan" {
		t.Errorf("module doc: got %q", f.Doc)
	}
	if f.Members[0].Doc != "🐄 mamma mu" {
		t.Errorf("record doc: got %q", f.Members[0].Doc)
	}
	if f.Members[1].Doc != "Mjölk\nko-olt!" {
		t.Errorf("function doc: got %q", f.Members[1].Doc)
	}
}

func TestLexComments(t *testing.T) {
	withComments := `
    ;; Crap here
    (mod apa ; more crap here
        ;; :D::D:D:D
        (fun banan (:ja bool) () ); side effect function
        ;; yes
    )`
	without := "(mod apa (fun banan (:ja bool) ()))"

	a := lexOne(t, withComments)
	b := lexOne(t, without)
	if !reflect.DeepEqual(stripPos(a), stripPos(b)) {
		t.Errorf("comments changed the parsed structure")
	}
}

func TestLexErrors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		kind   errors.Kind
		detail string
		line   int
		column int
	}{
		{
			name:   "disallowed name",
			src:    "(mod m\n  (rec r_x (:a int)))",
			kind:   errors.KindDisallowedName,
			detail: `Disallowed character in name: "r_x"`,
			line:   2,
			column: 8,
		},
		{
			name:   "disallowed type name",
			src:    "(mod m (rec r (:a 9lives)))",
			kind:   errors.KindDisallowedName,
			detail: `"9lives"`,
			line:   1,
			column: 19,
		},
		{
			name:   "unknown keyword",
			src:    "(mod m\n (struct s (:a int)))",
			kind:   errors.KindUnknownKeyword,
			detail: `Unexpected keyword: "struct"`,
			line:   2,
			column: 3,
		},
		{
			name:   "unbalanced",
			src:    "(mod m (rec r (:a int))",
			kind:   errors.KindUnexpectedEOF,
			detail: "Unexpected end of input",
		},
		{
			name:   "missing type",
			src:    "(mod m (rec r (:a)))",
			kind:   errors.KindSyntax,
			detail: `Expected data type for "a"`,
		},
		{
			name:   "modifier without type",
			src:    "(mod m (rec r (:a (list))))",
			kind:   errors.KindSyntax,
			detail: "Expected one or more modifiers",
		},
		{
			name:   "unterminated string",
			src:    `(mod m "docs`,
			kind:   errors.KindSyntax,
			detail: "Unterminated string literal",
		},
		{
			name:   "non module top level",
			src:    "(rec r (:a int))",
			kind:   errors.KindSyntax,
			detail: "Expected a module at top level",
		},
		{
			name:   "stray word in module",
			src:    "(mod m oops)",
			kind:   errors.KindSyntax,
			detail: "Expected module member",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Lex(tt.src)
			if err == nil {
				t.Fatal("expected error")
			}
			var e *errors.Error
			if !stderrors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("kind: got %v, want %v", e.Kind, tt.kind)
			}
			if e.Category() != errors.CategorySyntax {
				t.Errorf("category: got %v, want syntax", e.Category())
			}
			if !strings.Contains(e.Detail, tt.detail) {
				t.Errorf("detail %q does not contain %q", e.Detail, tt.detail)
			}
			if tt.line != 0 && (e.Line != tt.line || e.Column != tt.column) {
				t.Errorf("position: got %d:%d, want %d:%d", e.Line, e.Column, tt.line, tt.column)
			}
		})
	}
}

func TestLexErrorSourceLine(t *testing.T) {
	_, err := Lex("(mod m\n  (rec r_x (:a int)))")
	var e *errors.Error
	if !stderrors.As(err, &e) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if e.Source != "  (rec r_x (:a int)))" {
		t.Errorf("source: got %q", e.Source)
	}
	want := "<text>:2:8: Error: Disallowed character in name: \"r_x\", allowed are: a-z, A-Z, 0-9 and -\n" +
		"      (rec r_x (:a int)))\n" +
		"           ^"
	if got := e.Render(); got != want {
		t.Errorf("render:\n%s\nwant:\n%s", got, want)
	}
}

// stripPos clears positions so forms from differently formatted sources compare equal.
func stripPos(f *Form) *Form {
	c := *f
	c.Line, c.Column = 0, 0
	c.Name.Line, c.Name.Column = 0, 0
	c.Members = nil
	for _, m := range f.Members {
		c.Members = append(c.Members, stripPos(m))
	}
	c.Arguments = stripPairs(f.Arguments)
	c.Returns = stripPairs(f.Returns)
	c.Fields = stripPairs(f.Fields)
	c.Variants = nil
	for _, v := range f.Variants {
		c.Variants = append(c.Variants, Ident{Name: v.Name})
	}
	return &c
}

func stripPairs(pairs []Pair) []Pair {
	var out []Pair
	for _, p := range pairs {
		p.Name.Line, p.Name.Column = 0, 0
		p.Type.Line, p.Type.Column = 0, 0
		out = append(out, p)
	}
	return out
}
