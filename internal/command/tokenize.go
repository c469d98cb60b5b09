package command

import (
	"strings"

	"mvdan.cc/sh/v3/syntax"
)

// splitFields tokenizes one command line with shell quoting rules but
// without expansion: `$name`, backticks and `$(...)` pass through as
// literal argument text, since filenames here are data, not shell
// variables. Unterminated quotes surface as a parse error.
func splitFields(line string) ([]string, error) {
	var words []*syntax.Word
	err := syntax.NewParser().Words(strings.NewReader(line), func(w *syntax.Word) bool {
		words = append(words, w)
		return true
	})
	if err != nil {
		return nil, err
	}
	fields := make([]string, 0, len(words))
	for _, w := range words {
		fields = append(fields, literalText(line, w.Parts, false))
	}
	return fields, nil
}

// literalText renders word parts back to plain text. Quoting is removed,
// escapes are resolved, and anything else (parameter or command
// expansion syntax) is copied verbatim from the source line.
func literalText(src string, parts []syntax.WordPart, quoted bool) string {
	var sb strings.Builder
	for _, part := range parts {
		switch p := part.(type) {
		case *syntax.Lit:
			sb.WriteString(unescape(p.Value, quoted))
		case *syntax.SglQuoted:
			sb.WriteString(p.Value)
		case *syntax.DblQuoted:
			sb.WriteString(literalText(src, p.Parts, true))
		default:
			sb.WriteString(src[part.Pos().Offset():part.End().Offset()])
		}
	}
	return sb.String()
}

// unescape removes backslash escapes from a literal. Outside quotes a
// backslash escapes any character; inside double quotes only the shell's
// special characters.
func unescape(s string, quoted bool) string {
	if !strings.Contains(s, "\\") {
		return s
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		b := s[i]
		if b == '\\' && i+1 < len(s) {
			if !quoted || strings.IndexByte("\"\\$`", s[i+1]) >= 0 {
				i++
				b = s[i]
			}
		}
		sb.WriteByte(b)
	}
	return sb.String()
}
