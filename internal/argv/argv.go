// Package argv parses the action lines typed into the run prompt, such as
//
//	view.filter "north east"
//	view.sort col=2 desc=true
//
// into an action name and a bus payload.
package argv

import (
	"errors"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

var (
	// ErrUnterminatedQuote is returned when a quote is left open.
	ErrUnterminatedQuote = errors.New("unterminated quote")
	// ErrEmpty is returned for a line with no action name.
	ErrEmpty = errors.New("no action given")
)

// ArgsSeq yields the words of s using POSIX-like rules:
//   - unquoted spaces, tabs and newlines separate words
//   - single quotes keep their contents literally
//   - double quotes keep their contents; a backslash escapes only $, `, ", \
//   - outside quotes a backslash escapes the next rune
//
// There is no expansion of any kind. An open quote ends the sequence with
// the partial word, and Split reports it.
func ArgsSeq(s string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = scan(s, yield)
	}
}

// Split returns the words of s.
func Split(s string) ([]string, error) {
	var out []string
	err := scan(s, func(w string) bool {
		out = append(out, w)
		return true
	})
	return out, err
}

func scan(s string, yield func(string) bool) error {
	var (
		b       strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		i += size

		switch {
		case escaped:
			escaped = false
			if quote == '"' && !strings.ContainsRune("$`\"\\", r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		case quote == '\'':
			if r == '\'' {
				quote = 0
			} else {
				b.WriteRune(r)
			}
		case r == '\\':
			escaped, inWord = true, true
		case quote == '"':
			if r == '"' {
				quote = 0
			} else {
				b.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote, inWord = r, true
		case r == ' ' || r == '\t' || r == '\n':
			if inWord {
				if !yield(b.String()) {
					return nil
				}
				b.Reset()
				inWord = false
			}
		default:
			b.WriteRune(r)
			inWord = true
		}
	}
	if escaped {
		b.WriteByte('\\')
	}
	if inWord && !yield(b.String()) {
		return nil
	}
	if quote != 0 {
		return ErrUnterminatedQuote
	}
	return nil
}

// Invocation is a parsed action line.
type Invocation struct {
	Name string
	// Payload is nil without arguments, a map when every argument is
	// key=value, and otherwise the arguments joined by single spaces.
	Payload any
}

// Parse splits line into an action name and its payload. Values of
// key=value arguments become int, float64 or bool when they parse as one.
func Parse(line string) (Invocation, error) {
	words, err := Split(line)
	if err != nil {
		return Invocation{}, err
	}
	if len(words) == 0 || words[0] == "" {
		return Invocation{}, ErrEmpty
	}
	inv := Invocation{Name: words[0]}
	args := words[1:]
	if len(args) == 0 {
		return inv, nil
	}

	fields := make(map[string]any, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || k == "" {
			inv.Payload = strings.Join(args, " ")
			return inv, nil
		}
		fields[k] = value(v)
	}
	inv.Payload = fields
	return inv, nil
}

func value(s string) any {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil && (s == "true" || s == "false") {
		return b
	}
	return s
}
