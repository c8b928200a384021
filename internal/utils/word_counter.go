package utils

import (
	"strings"
	"unicode"
)

// skippedEnvironments hold no prose; their bodies are not counted
var skippedEnvironments = map[string]bool{
	"equation": true, "equation*": true,
	"align": true, "align*": true,
	"displaymath": true, "verbatim": true,
	"lstlisting": true, "tikzpicture": true,
}

// argumentCommands take an argument that is prose
var argumentCommands = map[string]bool{
	"section": true, "subsection": true, "subsubsection": true, "paragraph": true,
	"chapter": true, "title": true, "author": true, "caption": true,
	"emph": true, "textbf": true, "textit": true, "underline": true, "footnote": true,
}

// CountWords counts the words of prose in a LaTeX source.
// Comments, math, the preamble and command names are skipped.
func CountWords(latex string) int {
	return len(strings.FieldsFunc(cleanLatex(latex), func(r rune) bool {
		return unicode.IsSpace(r) || r == '~'
	}))
}

func cleanLatex(src string) string {
	src = stripComments(src)
	if i := strings.Index(src, `\begin{document}`); i >= 0 {
		src = src[i+len(`\begin{document}`):]
	}
	if i := strings.Index(src, `\end{document}`); i >= 0 {
		src = src[:i]
	}

	var b strings.Builder
	skipUntil := ""
	for i := 0; i < len(src); {
		if skipUntil != "" {
			j := strings.Index(src[i:], skipUntil)
			if j < 0 {
				break
			}
			i += j + len(skipUntil)
			skipUntil = ""
			continue
		}

		switch c := src[i]; {
		case strings.HasPrefix(src[i:], "$$"):
			skipUntil = "$$"
			i += 2
		case c == '$':
			skipUntil = "$"
			i++
		case c == '\\':
			name, n := commandName(src[i+1:])
			i += 1 + n
			switch {
			case name == "begin" || name == "end":
				env, m := braceArgument(src[i:])
				i += m
				if name == "begin" && skippedEnvironments[env] {
					skipUntil = `\end{` + env + `}`
				}
			case name == "[":
				skipUntil = `\]`
			case argumentCommands[name]:
				// the argument's words are counted when the braces are passed over
			default:
				// drop a following argument such as \label{x} or \usepackage{y}
				if _, m := braceArgument(src[i:]); m > 0 {
					i += m
				}
			}
			b.WriteByte(' ')
		case c == '{' || c == '}' || c == '&':
			b.WriteByte(' ')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// stripComments removes % comments, keeping escaped \%
func stripComments(src string) string {
	lines := strings.Split(src, "\n")
	for i, line := range lines {
		for j := 0; j < len(line); j++ {
			if line[j] == '\\' {
				j++
				continue
			}
			if line[j] == '%' {
				lines[i] = line[:j]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}

// commandName reads the name after a backslash: a run of letters (with an
// optional star) or a single symbol
func commandName(s string) (string, int) {
	n := 0
	for n < len(s) && isLetter(s[n]) {
		n++
	}
	if n == 0 {
		if len(s) == 0 {
			return "", 0
		}
		return s[:1], 1
	}
	if n < len(s) && s[n] == '*' {
		n++
	}
	return s[:n], n
}

// braceArgument reads a {...} group at the start of s, returning its
// contents and the bytes consumed. Returns 0 when s does not start with "{".
func braceArgument(s string) (string, int) {
	if len(s) == 0 || s[0] != '{' {
		return "", 0
	}
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[1:i], i + 1
			}
		}
	}
	return s[1:], len(s)
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
