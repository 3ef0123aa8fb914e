// Package token splits selection-language text into tokens.  A token is a word,
// or a whole bracketed group - everything from an opening brace (or round bracket)
// up to and including its matching close - so that a nested field body is handed
// to the parser as a single token.
package token

// token.go implements the Lexer - a cursor over the text that returns one token per call

import (
	"strings"

	"github.com/andrewwphillips/castnet/internal/errs"
)

// Kind is the type of a token
type Kind int

const (
	EOF    Kind = iota // end of input - no more tokens
	Word               // eg a label, attribute or field name
	Braces             // a field body, eg "{ name id }"
	Parens             // a condition, eg "(id: $id)"
)

// Token is what the Lexer returns for each call to Next
type Token struct {
	Kind Kind
	Text string // the token (empty for EOF)
	Rest string // the remaining, not yet consumed text
}

const (
	whitespace = "\t\n "
	separators = "\n\t {(" // a word ends at any of these
)

// Lexer is a single-pass cursor over selection text.  It is not safe for concurrent use.
type Lexer struct {
	rest string
	done bool
}

// New returns a lexer for the text.  Surrounding whitespace is removed, as is the
// outermost pair of braces if the text starts with one.
func New(text string) *Lexer {
	text = strings.Trim(text, whitespace)
	if strings.HasPrefix(text, "{") {
		if end := strings.LastIndex(text, "}"); end > 0 {
			text = text[1:end]
		} else {
			text = text[1:]
		}
	}
	return &Lexer{rest: text}
}

// Next returns the next token or a token of Kind EOF when the text is exhausted (and for
// every call after that).  An error of kind errs.Syntax is returned if an opening bracket
// is never closed.
func (l *Lexer) Next() (Token, error) {
	for !l.done && len(l.rest) > 0 {
		first := strings.IndexAny(l.rest, separators)
		if first == -1 {
			// Nothing found so it must be the last word
			word := l.rest
			l.rest = ""
			return Token{Kind: Word, Text: word}, nil
		}
		if first == 0 {
			first = 1 // the separator itself
		}
		word := l.rest[:first]

		switch word {
		case " ", "\n", "\t":
			l.rest = strings.Trim(l.rest[first:], whitespace)
			continue

		case "{", "(":
			end, err := matching(l.rest)
			if err != nil {
				l.done = true
				return Token{}, err
			}
			word, l.rest = l.rest[:end+1], l.rest[end+1:]
			kind := Braces
			if word[0] == '(' {
				kind = Parens
			}
			return Token{Kind: kind, Text: word, Rest: l.rest}, nil
		}

		l.rest = l.rest[first:]
		return Token{Kind: Word, Text: strings.TrimSpace(word), Rest: l.rest}, nil
	}
	l.done = true
	return Token{Kind: EOF}, nil
}

// matching returns the index of the bracket that closes the one at the start of s.
// Only brackets of the same type are counted.
func matching(s string) (int, error) {
	open := s[0]
	close := byte('}')
	if open == '(' {
		close = ')'
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			depth++
		case close:
			depth--
		}
		if depth == 0 {
			return i, nil
		}
	}
	return 0, errs.New(errs.Syntax, "could not find a closing %q in %q", string(close), s)
}

// All returns the text of all the tokens (mainly for testing)
func All(text string) ([]string, error) {
	l := New(text)
	var r []string
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			return r, nil
		}
		r = append(r, tok.Text)
	}
}
