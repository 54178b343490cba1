package compiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/vcrobe/nojs-templating/runtime"
)

// Describe renders err with the markup lines around the element it reports. Errors that
// are not compile errors, or whose element cannot be located, are returned as is.
func Describe(markup string, err error) string {
	var ce *runtime.CompileError
	if !errors.As(err, &ce) || ce.Element == "" {
		return err.Error()
	}
	line := estimateLineNumber(markup, ce.Element)
	if line == 0 {
		return err.Error()
	}
	return fmt.Sprintf("%v (line %d)%s", err, line, contextLines(markup, line, 2))
}

// estimateLineNumber finds the 1-based line where element starts. The rendered start tag
// may differ from the source, so it falls back to the tag with its first attribute and
// then to the bare tag.
func estimateLineNumber(markup, element string) int {
	open := strings.TrimSuffix(element, ">")
	candidates := []string{open}
	if tag, rest, ok := strings.Cut(open, " "); ok {
		if key, _, ok := strings.Cut(rest, "="); ok {
			candidates = append(candidates, tag+" "+key)
		}
		candidates = append(candidates, tag)
	}

	lines := strings.Split(markup, "\n")
	for _, candidate := range candidates {
		for i, line := range lines {
			if strings.Contains(line, candidate) {
				return i + 1
			}
		}
	}
	return 0
}

// contextLines returns the lines around lineNumber, the reported one marked with ">".
func contextLines(source string, lineNumber, contextSize int) string {
	lines := strings.Split(source, "\n")
	start := max(lineNumber-contextSize-1, 0)
	end := min(lineNumber+contextSize, len(lines))

	var b strings.Builder
	b.WriteString("\n")
	for i := start; i < end; i++ {
		prefix := "  "
		if i+1 == lineNumber {
			prefix = "> "
		}
		fmt.Fprintf(&b, "%s%4d | %s\n", prefix, i+1, lines[i])
	}
	return b.String()
}
