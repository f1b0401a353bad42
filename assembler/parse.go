package assembler

import (
	"strconv"
	"strings"
)

var (
	// Lines starting with any of these are comments.
	lineComments = []string{"@", "//", "#"}
	// Anything after these is dropped.
	inlineComments = []string{"@", "//"}
)

// ParseSource splits source text into parsed lines, numbering them from 1.
// Blank and comment-only lines are dropped.
func ParseSource(src string) []Line {
	var lines []Line
	for i, raw := range strings.Split(strings.ReplaceAll(src, "\r\n", "\n"), "\n") {
		l, ok := ParseLine(raw)
		if !ok {
			continue
		}
		l.Number = i + 1
		lines = append(lines, l)
	}
	return lines
}

// ParseLine classifies a single source line. It reports false for blank lines
// and comments. No line is rejected: anything that is not a label or a
// directive is an instruction.
func ParseLine(raw string) (Line, bool) {
	line := strings.TrimSpace(raw)
	for _, c := range lineComments {
		if strings.HasPrefix(line, c) {
			return Line{}, false
		}
	}
	line = stripComment(line)
	if line == "" {
		return Line{}, false
	}

	if strings.HasSuffix(line, ":") {
		// "name::" marks a global label in some sources; it binds the same way.
		name := strings.TrimSpace(strings.TrimRight(line, ":"))
		if name == "" {
			return Line{}, false
		}
		return Line{Type: LineLabel, Name: name}, true
	}

	var head, rest string
	if i := strings.IndexAny(line, " \t"); i == -1 {
		head = line
	} else {
		head = line[:i]
		rest = strings.TrimSpace(line[i:])
	}

	if strings.HasPrefix(head, ".") {
		return Line{Type: LineDirective, Name: head, Args: rest}, true
	}
	return Line{Type: LineInstruction, Name: head, Operands: splitOperands(rest)}, true
}

// stripComment cuts the line at the first comment marker outside a 'c'
// character literal.
func stripComment(line string) string {
	quoted := false
	for i := 0; i < len(line); i++ {
		if line[i] == '\'' {
			quoted = !quoted
			continue
		}
		if quoted {
			continue
		}
		for _, c := range inlineComments {
			if strings.HasPrefix(line[i:], c) {
				return strings.TrimSpace(line[:i])
			}
		}
	}
	return strings.TrimSpace(line)
}

// splitOperands splits an operand string by commas and trims each token.
// Commas inside 'c' literals do not split.
func splitOperands(s string) []string {
	if s == "" {
		return nil
	}
	var parts []string
	quoted := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch {
		case s[i] == '\'':
			quoted = !quoted
		case s[i] == ',' && !quoted:
			parts = append(parts, strings.TrimSpace(s[start:i]))
			start = i + 1
		}
	}
	return append(parts, strings.TrimSpace(s[start:]))
}

// parseInteger converts a numeric literal to int64. Decimal, 0x/0o/0b and
// leading-zero octal are accepted, as are $-prefixed hex and 'c' characters.
func parseInteger(s string) (int64, bool) {
	if len(s) == 3 && s[0] == '\'' && s[2] == '\'' {
		return int64(s[1]), true
	}

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}
	if strings.HasPrefix(s, "$") {
		s = "0x" + s[1:]
	}
	if s == "" || s[0] < '0' || s[0] > '9' {
		return 0, false
	}

	u, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, false
	}
	v := int64(u)
	if neg {
		v = -v
	}
	return v, true
}
