package gopherlua

import (
	"sort"
	"strings"
)

// decoration is a source element the parser does not keep: a comment or a
// blank line
type decoration struct {
	line  int
	col   int
	blank bool
	text  string
}

// source indexes the parts of a chunk the AST drops: comments, blank lines
// and the words on each line
type source struct {
	lines       []string
	words       []map[string]bool
	covered     []bool
	decorations []decoration

	// depth counts open blocks and brackets; open marks an unclosed long
	// string or comment
	depth int
	open  bool
}

type scanner struct {
	*source
	src       string
	i         int
	line, col int
	long      bool
}

// scan walks src once, skipping string literals, and records comments,
// blank lines and the words of every line
func scan(src string) *source {
	s := &source{lines: strings.Split(src, "\n")}
	s.words = make([]map[string]bool, len(s.lines))
	s.covered = make([]bool, len(s.lines))
	sc := &scanner{source: s, src: src, line: 1, col: 1}
	sc.run()

	for n := range s.lines {
		if !s.covered[n] && strings.TrimSpace(s.lines[n]) == "" && n < len(s.lines)-1 {
			s.decorations = append(s.decorations, decoration{line: n + 1, col: 1, blank: true})
		}
	}
	sort.SliceStable(s.decorations, func(a, b int) bool {
		return s.decorations[a].line < s.decorations[b].line
	})
	return s
}

func (sc *scanner) run() {
	for sc.i < len(sc.src) {
		rest := sc.src[sc.i:]
		c := rest[0]
		switch {
		case strings.HasPrefix(rest, "--"):
			sc.comment()
		case c == '"' || c == '\'':
			sc.advance(1)
			for sc.i < len(sc.src) && sc.src[sc.i] != c && sc.src[sc.i] != '\n' {
				if sc.src[sc.i] == '\\' {
					sc.advance(1)
				}
				sc.advance(1)
			}
			sc.advance(1)
		case c == '[':
			if level, ok := longBracket(rest); ok {
				sc.advance(level + 2)
				sc.skipLong(level)
			} else {
				sc.depth++
				sc.advance(1)
			}
		case isWordStart(c):
			start, line := sc.i, sc.line
			for sc.i < len(sc.src) && isWordPart(sc.src[sc.i]) {
				sc.advance(1)
			}
			w := sc.src[start:sc.i]
			sc.word(line, w)
			switch w {
			case "function", "do", "if", "repeat":
				sc.depth++
			case "end", "until":
				sc.depth--
			}
		case c >= '0' && c <= '9':
			for sc.i < len(sc.src) && (isWordPart(sc.src[sc.i]) || sc.src[sc.i] == '.') {
				sc.advance(1)
			}
		default:
			switch c {
			case '(', '{':
				sc.depth++
			case ')', '}', ']':
				sc.depth--
			}
			sc.advance(1)
		}
	}
}

func (sc *scanner) comment() {
	line, col, start := sc.line, sc.col, sc.i
	if level, ok := longBracket(sc.src[sc.i+2:]); ok {
		sc.advance(2 + level + 2)
		sc.skipLong(level)
	} else {
		for sc.i < len(sc.src) && sc.src[sc.i] != '\n' {
			sc.advance(1)
		}
	}
	sc.decorations = append(sc.decorations, decoration{
		line: line, col: col, text: strings.TrimRight(sc.src[start:sc.i], "\r"),
	})
}

// skipLong consumes a long bracket body up to and including its closing
// bracket; every line it spans counts as covered
func (sc *scanner) skipLong(level int) {
	closing := "]" + strings.Repeat("=", level) + "]"
	sc.long = true
	for sc.i < len(sc.src) && !strings.HasPrefix(sc.src[sc.i:], closing) {
		sc.advance(1)
	}
	if sc.i >= len(sc.src) {
		sc.open = true
	}
	sc.advance(len(closing))
	sc.long = false
}

func (sc *scanner) advance(n int) {
	for k := 0; k < n && sc.i < len(sc.src); k++ {
		c := sc.src[sc.i]
		if sc.long || (c != ' ' && c != '\t' && c != '\r' && c != '\n') {
			sc.cover(sc.line)
		}
		if c == '\n' {
			sc.line++
			sc.col = 1
		} else {
			sc.col++
		}
		sc.i++
	}
}

// longBracket matches "[[" or "[=*[" at the start of text and returns its level
func longBracket(text string) (int, bool) {
	if !strings.HasPrefix(text, "[") {
		return 0, false
	}
	n := 1
	for n < len(text) && text[n] == '=' {
		n++
	}
	if n < len(text) && text[n] == '[' {
		return n - 1, true
	}
	return 0, false
}

func (s *source) cover(line int) {
	if line >= 1 && line <= len(s.covered) {
		s.covered[line-1] = true
	}
}

// dropLine forgets the decorations recorded on line
func (s *source) dropLine(line int) {
	kept := s.decorations[:0]
	for _, d := range s.decorations {
		if d.line != line {
			kept = append(kept, d)
		}
	}
	s.decorations = kept
	s.cover(line)
}

func (s *source) word(line int, w string) {
	if line < 1 || line > len(s.words) {
		return
	}
	if s.words[line-1] == nil {
		s.words[line-1] = make(map[string]bool)
	}
	s.words[line-1][w] = true
}

// hasWord reports whether keyword or name w occurs on line outside strings
// and comments
func (s *source) hasWord(line int, w string) bool {
	if line < 1 || line > len(s.words) {
		return false
	}
	return s.words[line-1][w]
}

// lastWordLine returns the last line in [from, to] containing w, or 0
func (s *source) lastWordLine(w string, from, to int) int {
	for l := to; l >= from; l-- {
		if s.hasWord(l, w) {
			return l
		}
	}
	return 0
}

// column returns the 1-based column of needle on line, or of the first
// non-blank character when needle is absent
func (s *source) column(line int, needle string) int {
	if line < 1 || line > len(s.lines) {
		return 1
	}
	text := s.lines[line-1]
	if needle != "" {
		if i := strings.Index(text, needle); i >= 0 {
			return i + 1
		}
	}
	return len(text) - len(strings.TrimLeft(text, " \t")) + 1
}

func isWordStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isWordPart(c byte) bool {
	return isWordStart(c) || (c >= '0' && c <= '9')
}
