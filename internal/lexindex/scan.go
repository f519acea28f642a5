package lexindex

import (
	"strings"

	"github.com/dshills/cindex-mcp/pkg/types"
)

// token is one lexical element with its source position (1-based).
type token struct {
	text  string
	pos   types.Position
	ident bool
}

// keywords never count as definitions or references.
var keywords = map[string]bool{
	"if": true, "else": true, "while": true, "for": true, "do": true,
	"switch": true, "case": true, "default": true, "return": true,
	"break": true, "continue": true, "goto": true, "sizeof": true,
	"static": true, "extern": true, "inline": true, "const": true,
	"volatile": true, "register": true, "struct": true, "enum": true,
	"union": true, "typedef": true, "void": true, "char": true,
	"short": true, "int": true, "long": true, "float": true,
	"double": true, "signed": true, "unsigned": true,
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// tokenize splits source into identifier and punctuation tokens, skipping
// comments, string/char literals, and preprocessor directive lines.
// Directives are handled separately by scanDirectives.
func tokenize(src []byte) []token {
	var toks []token
	line, col := 1, 1
	lineStart := true

	advance := func(c byte) {
		if c == '\n' {
			line++
			col = 1
			lineStart = true
		} else {
			col++
			if c != ' ' && c != '\t' && c != '\r' {
				lineStart = false
			}
		}
	}

	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				advance(src[i])
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			for i < len(src) {
				if src[i] == '*' && i+1 < len(src) && src[i+1] == '/' {
					advance(src[i])
					advance(src[i+1])
					i += 2
					break
				}
				advance(src[i])
				i++
			}
		case c == '"' || c == '\'':
			quote := c
			advance(c)
			i++
			for i < len(src) && src[i] != quote && src[i] != '\n' {
				if src[i] == '\\' && i+1 < len(src) {
					advance(src[i])
					i++
				}
				advance(src[i])
				i++
			}
			if i < len(src) {
				advance(src[i])
				i++
			}
		case c == '#' && lineStart:
			for i < len(src) && src[i] != '\n' {
				advance(src[i])
				i++
			}
		case isIdentStart(c):
			start := i
			pos := types.Position{Line: line, Column: col}
			for i < len(src) && isIdentPart(src[i]) {
				advance(src[i])
				i++
			}
			toks = append(toks, token{text: string(src[start:i]), pos: pos, ident: true})
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			advance(c)
			i++
		default:
			toks = append(toks, token{text: string(c), pos: types.Position{Line: line, Column: col}})
			advance(c)
			i++
		}
	}
	return toks
}

// directive is one preprocessor line of interest.
type directive struct {
	// kind is "define" or "include"
	kind string
	// name is the macro name for define, the header path for include
	name string
	// angled marks #include <...> (search paths only, no sibling lookup)
	angled bool
	pos    types.Position
}

// scanDirectives extracts #define and #include lines.
func scanDirectives(src []byte) []directive {
	var out []directive
	for lineNo, rawLine := range strings.Split(string(src), "\n") {
		text := strings.TrimLeft(rawLine, " \t")
		if !strings.HasPrefix(text, "#") {
			continue
		}
		rest := strings.TrimLeft(text[1:], " \t")
		switch {
		case strings.HasPrefix(rest, "define"):
			rest = strings.TrimLeft(rest[len("define"):], " \t")
			end := 0
			for end < len(rest) && isIdentPart(rest[end]) {
				end++
			}
			if end == 0 {
				continue
			}
			name := rest[:end]
			out = append(out, directive{
				kind: "define",
				name: name,
				pos:  types.Position{Line: lineNo + 1, Column: strings.Index(rawLine, name) + 1},
			})
		case strings.HasPrefix(rest, "include"):
			rest = strings.TrimLeft(rest[len("include"):], " \t")
			if len(rest) < 2 {
				continue
			}
			var close byte
			angled := false
			switch rest[0] {
			case '"':
				close = '"'
			case '<':
				close = '>'
				angled = true
			default:
				continue
			}
			end := strings.IndexByte(rest[1:], close)
			if end < 0 {
				continue
			}
			out = append(out, directive{
				kind:   "include",
				name:   rest[1 : 1+end],
				angled: angled,
				pos:    types.Position{Line: lineNo + 1},
			})
		}
	}
	return out
}
