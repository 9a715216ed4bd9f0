package token

import (
	"unicode"
)

type Type int

const (
	Open Type = iota
	Close
	Word
	String
	Illegal
)

func (t Type) String() string {
	switch t {
	case Open:
		return "opening bracket"
	case Close:
		return "closing bracket"
	case Word:
		return "word"
	case String:
		return "string"
	case Illegal:
		return "illegal token"
	}
	return "unknown"
}

// Token is a lexical token with its 1-based start position.
type Token struct {
	Value  string
	Type   Type
	Line   int
	Column int
}

func isOpen(r rune) bool  { return r == '(' || r == '[' || r == '{' }
func isClose(r rune) bool { return r == ')' || r == ']' || r == '}' }

// Tokenize splits TISL source into brackets, words and string literals.
// Comments run from ';' to the end of the line and are dropped. An
// unterminated string literal yields a single Illegal token positioned at
// its opening quote.
func Tokenize(input string) []Token {
	var tokens []Token
	line, col := 1, 1
	runes := []rune(input)

	advance := func(r rune) {
		if r == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if unicode.IsSpace(r) {
			advance(r)
			continue
		}

		// Line comment
		if r == ';' {
			for i < len(runes) && runes[i] != '\n' {
				i++
				col++
			}
			if i < len(runes) {
				advance(runes[i])
			}
			continue
		}

		if isOpen(r) {
			tokens = append(tokens, Token{string(r), Open, line, col})
			advance(r)
			continue
		}

		if isClose(r) {
			tokens = append(tokens, Token{string(r), Close, line, col})
			advance(r)
			continue
		}

		// String literal, may span lines
		if r == '"' {
			startLine, startCol := line, col
			advance(r)
			i++
			var value []rune
			closed := false
			for i < len(runes) {
				c := runes[i]
				if c == '"' {
					advance(c)
					closed = true
					break
				}
				if c == '\\' && i+1 < len(runes) && (runes[i+1] == '"' || runes[i+1] == '\\') {
					advance(c)
					i++
					c = runes[i]
				}
				value = append(value, c)
				advance(c)
				i++
			}
			if !closed {
				tokens = append(tokens, Token{string(value), Illegal, startLine, startCol})
				return tokens
			}
			tokens = append(tokens, Token{string(value), String, startLine, startCol})
			continue
		}

		// Word: everything up to whitespace, a bracket, a quote or a comment
		start, startCol := i, col
		for i < len(runes) {
			c := runes[i]
			if unicode.IsSpace(c) || isOpen(c) || isClose(c) || c == '"' || c == ';' {
				break
			}
			col++
			i++
		}
		tokens = append(tokens, Token{string(runes[start:i]), Word, line, startCol})
		i--
	}

	return tokens
}
