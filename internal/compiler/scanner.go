package compiler

import (
	"fmt"
	"slices"
	"unicode"

	"github.com/lazyanubis/ic-canister-kit/internal/candid"
)

// scanner is a character cursor over the input. The cursor only moves
// forward, except for the explicit mark/reset used to tell labeled
// record fields from tuple elements.
type scanner struct {
	src []rune
	pos int
}

func newScanner(src string) *scanner {
	return &scanner{src: []rune(src)}
}

func (s *scanner) eof() bool {
	return s.pos >= len(s.src)
}

// at reports whether the rune under the cursor is r, without skipping trivia.
func (s *scanner) at(r rune) bool {
	return s.pos < len(s.src) && s.src[s.pos] == r
}

func (s *scanner) hasPrefix(lit string) bool {
	i := s.pos
	for _, r := range lit {
		if i >= len(s.src) || s.src[i] != r {
			return false
		}
		i++
	}
	return true
}

func (s *scanner) mark() int {
	return s.pos
}

func (s *scanner) reset(mark int) {
	s.pos = mark
}

// skipTrivia advances past whitespace, line comments and block comments.
// Block comments do not nest; the first "*/" closes.
func (s *scanner) skipTrivia() error {
	for s.pos < len(s.src) {
		switch {
		case unicode.IsSpace(s.src[s.pos]):
			s.pos++
		case s.hasPrefix("//"):
			for s.pos < len(s.src) && s.src[s.pos] != '\n' {
				s.pos++
			}
		case s.hasPrefix("/*"):
			start := s.pos
			s.pos += 2
			for !s.hasPrefix("*/") {
				if s.eof() {
					s.pos = start
					return s.errorf(KindWrongComment, "unterminated block comment")
				}
				s.pos++
			}
			s.pos += 2
		default:
			return nil
		}
	}
	return nil
}

// skipSeparators skips trivia and any run of the given separator runes.
func (s *scanner) skipSeparators(seps ...rune) error {
	for {
		if err := s.skipTrivia(); err != nil {
			return err
		}
		if s.eof() || !slices.Contains(seps, s.src[s.pos]) {
			return nil
		}
		s.pos++
	}
}

// peek reports whether the next non-trivia rune is r.
func (s *scanner) peek(r rune) (bool, error) {
	if err := s.skipTrivia(); err != nil {
		return false, err
	}
	return s.at(r), nil
}

// consume advances past a required literal.
func (s *scanner) consume(lit string) error {
	if err := s.skipTrivia(); err != nil {
		return err
	}
	if !s.hasPrefix(lit) {
		return s.errorf(KindParse, "expected %q", lit)
	}
	s.pos += len([]rune(lit))
	return nil
}

// skipKeyword advances past kw when it is next. A keyword that does not
// end in a space must also end at an identifier boundary, so "service"
// matches "service:" and "service {" but not "services".
func (s *scanner) skipKeyword(kw string) (bool, error) {
	if err := s.skipTrivia(); err != nil {
		return false, err
	}
	if !s.hasPrefix(kw) {
		return false, nil
	}
	n := len([]rune(kw))
	if kw[len(kw)-1] != ' ' {
		if next := s.pos + n; next < len(s.src) && isWordRune(s.src[next]) {
			return false, nil
		}
	}
	s.pos += n
	return true, nil
}

// readIdentifier reads a bare or quoted label. Quoted reports whether the
// label was written in double quotes; quoted labels never act as keywords.
func (s *scanner) readIdentifier() (label string, quoted bool, err error) {
	if err := s.skipTrivia(); err != nil {
		return "", false, err
	}
	if s.at('"') {
		return s.readQuoted()
	}
	start := s.pos
	for s.pos < len(s.src) && !candid.IsDelimiter(s.src[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		return "", false, s.errorf(KindParse, "expected identifier")
	}
	return string(s.src[start:s.pos]), false, nil
}

// readQuoted reads a double-quoted label. A backslash keeps the next
// character verbatim, including '"' and '\'.
func (s *scanner) readQuoted() (string, bool, error) {
	start := s.pos
	s.pos++ // opening quote
	var out []rune
	for {
		if s.eof() {
			s.pos = start
			return "", true, s.errorf(KindParse, "unterminated quoted identifier")
		}
		r := s.src[s.pos]
		s.pos++
		switch r {
		case '"':
			if len(out) == 0 {
				s.pos = start
				return "", true, s.errorf(KindParse, "expected identifier")
			}
			return string(out), true, nil
		case '\\':
			if s.eof() {
				s.pos = start
				return "", true, s.errorf(KindParse, "unterminated quoted identifier")
			}
			out = append(out, s.src[s.pos])
			s.pos++
		default:
			out = append(out, r)
		}
	}
}

// readDigits reads a run of ASCII digits without skipping trivia.
func (s *scanner) readDigits() string {
	start := s.pos
	for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
		s.pos++
	}
	return string(s.src[start:s.pos])
}

// near returns the input tail at the cursor, truncated for error messages.
func (s *scanner) near() string {
	if s.pos >= len(s.src) {
		return ""
	}
	tail := s.src[s.pos:]
	if len(tail) > nearLimit {
		return string(tail[:nearLimit]) + "..."
	}
	return string(tail)
}

func (s *scanner) errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Offset:  s.pos,
		Near:    s.near(),
	}
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
