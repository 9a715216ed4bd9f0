package syntax

import (
	"strings"

	"github.com/wippyai/tisl/errors"
	"github.com/wippyai/tisl/syntax/internal/token"
)

// Lex reads TISL source and returns one Form per top-level module.
func Lex(source string) ([]*Form, error) {
	p := newParser(source)
	return p.parse()
}

type parser struct {
	tokens []token.Token
	lines  []string
	pos    int
}

func newParser(source string) *parser {
	return &parser{
		tokens: token.Tokenize(source),
		lines:  strings.Split(source, "\n"),
	}
}

func (p *parser) parse() ([]*Form, error) {
	var forms []*Form
	for p.peek() != nil {
		open := p.peek()
		if open.Type == token.Open && p.pos+1 < len(p.tokens) {
			kw := p.tokens[p.pos+1]
			if kw.Type == token.Word && kw.Value != KeywordModule {
				return nil, errors.Syntax(kw.Line, kw.Column, p.line(kw.Line),
					"Expected a module at top level, got %q", kw.Value)
			}
		}
		f, err := p.parseForm()
		if err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, nil
}

func (p *parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

// line returns the 1-based source line, used for caret diagnostics.
func (p *parser) line(n int) string {
	if n < 1 || n > len(p.lines) {
		return ""
	}
	return strings.TrimRight(p.lines[n-1], "\r")
}

// end reports the position just past the last token, for EOF errors.
func (p *parser) end() (int, int) {
	if len(p.tokens) == 0 {
		return 1, 1
	}
	last := p.tokens[len(p.tokens)-1]
	return last.Line, last.Column + len([]rune(last.Value))
}

func (p *parser) unexpected(t *token.Token, expected string) error {
	if t.Type == token.Illegal {
		return errors.Syntax(t.Line, t.Column, p.line(t.Line), "Unterminated string literal")
	}
	return errors.Syntax(t.Line, t.Column, p.line(t.Line), "Expected %s, got %s %q", expected, t.Type, t.Value)
}

func (p *parser) expect(typ token.Type, expected string) (*token.Token, error) {
	t := p.next()
	if t == nil {
		line, col := p.end()
		return nil, errors.UnexpectedEOF(line, col, expected)
	}
	if t.Type != typ {
		return nil, p.unexpected(t, expected)
	}
	return t, nil
}

// atClose reports whether the next token closes the current list. It returns
// an EOF error when the input ends first.
func (p *parser) atClose(expected string) (bool, error) {
	t := p.peek()
	if t == nil {
		line, col := p.end()
		return false, errors.UnexpectedEOF(line, col, expected)
	}
	return t.Type == token.Close, nil
}

func (p *parser) parseForm() (*Form, error) {
	open, err := p.expect(token.Open, "opening bracket")
	if err != nil {
		return nil, err
	}
	kw, err := p.expect(token.Word, "keyword")
	if err != nil {
		return nil, err
	}

	f := &Form{Line: open.Line, Column: open.Column}
	switch kw.Value {
	case KeywordModule:
		f.Kind = FormModule
	case KeywordFunction:
		f.Kind = FormFunction
	case KeywordRecord:
		f.Kind = FormRecord
	case KeywordEnum:
		f.Kind = FormEnum
	default:
		return nil, errors.UnknownKeyword(kw.Value, kw.Line, kw.Column, p.line(kw.Line))
	}

	if f.Name, err = p.parseIdent(); err != nil {
		return nil, err
	}
	if t := p.peek(); t != nil && (t.Type == token.String || t.Type == token.Illegal) {
		if t.Type == token.Illegal {
			return nil, p.unexpected(t, "doc string")
		}
		f.Doc = p.next().Value
	}

	switch f.Kind {
	case FormModule:
		err = p.parseMembers(f)
	case FormFunction:
		if f.Arguments, err = p.parsePairs("argument list"); err == nil {
			f.Returns, err = p.parsePairs("return value list")
		}
	case FormRecord:
		f.Fields, err = p.parsePairs("field list")
	case FormEnum:
		f.Variants, err = p.parseVariants()
	}
	if err != nil {
		return nil, err
	}

	if _, err := p.expect(token.Close, "closing bracket"); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *parser) parseMembers(mod *Form) error {
	for {
		done, err := p.atClose("module member or closing bracket")
		if err != nil {
			return err
		}
		if done {
			return nil
		}
		if t := p.peek(); t.Type != token.Open {
			return p.unexpected(t, "module member")
		}
		member, err := p.parseForm()
		if err != nil {
			return err
		}
		mod.Members = append(mod.Members, member)
	}
}

func (p *parser) parsePairs(what string) ([]Pair, error) {
	if _, err := p.expect(token.Open, what); err != nil {
		return nil, err
	}
	var pairs []Pair
	for {
		done, err := p.atClose(what + " entry or closing bracket")
		if err != nil {
			return nil, err
		}
		if done {
			p.next()
			return pairs, nil
		}
		name, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		if done, err := p.atClose("data type"); err != nil {
			return nil, err
		} else if done {
			t := p.peek()
			return nil, errors.Syntax(t.Line, t.Column, p.line(t.Line), "Expected data type for %q", name.Name)
		}
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		pairs = append(pairs, Pair{Name: name, Type: typ})
	}
}

func (p *parser) parseVariants() ([]Ident, error) {
	if _, err := p.expect(token.Open, "variant list"); err != nil {
		return nil, err
	}
	var variants []Ident
	for {
		done, err := p.atClose("variant or closing bracket")
		if err != nil {
			return nil, err
		}
		if done {
			p.next()
			return variants, nil
		}
		v, err := p.parseIdent()
		if err != nil {
			return nil, err
		}
		variants = append(variants, v)
	}
}

// parseType reads a builtin keyword, a bare identifier, or a bracketed list of
// modifier words followed by one of those.
func (p *parser) parseType() (TypeSpec, error) {
	t := p.peek()
	if t.Type == token.Word {
		p.next()
		return p.typeFromWord(t)
	}
	if t.Type != token.Open {
		return TypeSpec{}, p.unexpected(p.next(), "data type")
	}

	p.next()
	var words []*token.Token
	for {
		done, err := p.atClose("modifier, data type or closing bracket")
		if err != nil {
			return TypeSpec{}, err
		}
		if done {
			break
		}
		w, err := p.expect(token.Word, "modifier or data type")
		if err != nil {
			return TypeSpec{}, err
		}
		words = append(words, w)
	}
	closing := p.next()

	if len(words) < 2 {
		return TypeSpec{}, errors.Syntax(closing.Line, closing.Column, p.line(closing.Line),
			"Expected one or more modifiers (list, ref) followed by a data type")
	}

	spec, err := p.typeFromWord(words[len(words)-1])
	if err != nil {
		return TypeSpec{}, err
	}
	for _, w := range words[:len(words)-1] {
		spec.Modifiers = append(spec.Modifiers, w.Value)
	}
	return spec, nil
}

func (p *parser) typeFromWord(t *token.Token) (TypeSpec, error) {
	if builtinTypes[t.Value] {
		return TypeSpec{Name: t.Value, Kind: TypeBuiltin, Line: t.Line, Column: t.Column}, nil
	}
	name, ok := identifier(t.Value)
	if !ok {
		return TypeSpec{}, errors.DisallowedName(t.Value, t.Line, t.Column, p.line(t.Line))
	}
	return TypeSpec{Name: name, Kind: TypeRecordOrEnum, Line: t.Line, Column: t.Column}, nil
}

func (p *parser) parseIdent() (Ident, error) {
	t, err := p.expect(token.Word, "name")
	if err != nil {
		return Ident{}, err
	}
	name, ok := identifier(t.Value)
	if !ok {
		return Ident{}, errors.DisallowedName(t.Value, t.Line, t.Column, p.line(t.Line))
	}
	return Ident{Name: name, Line: t.Line, Column: t.Column}, nil
}

// identifier validates [A-Za-z][A-Za-z0-9-]* with an optional ':' prefix and
// returns the name without the prefix.
func identifier(word string) (string, bool) {
	name := strings.TrimPrefix(word, ":")
	if name == "" {
		return "", false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-'):
		default:
			return "", false
		}
	}
	return name, true
}
