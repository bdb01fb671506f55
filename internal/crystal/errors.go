package crystal

import (
	"fmt"
	"os"
	"strings"
)

type Location struct {
	Filename string
	Line     int
	Column   int
}

// ScriptError is the propagating error variant: parse errors and hard runtime
// failures (the error statement, faults during a committed gateway operation).
// Soft failures never become a ScriptError.
type ScriptError struct {
	Message  string
	Location Location
	Help     string
}

func (e *ScriptError) Error() string {
	if e.Location.Filename != "" {
		return fmt.Sprintf("%s:%d:%d: %s", e.Location.Filename, e.Location.Line, e.Location.Column, e.Message)
	}
	return e.Message
}

// FormatError renders an error with source context when the location points at
// a readable file.
func FormatError(err *ScriptError) string {
	var b strings.Builder

	b.WriteString("error: ")
	b.WriteString(err.Message)
	b.WriteString("\n")

	loc := err.Location
	if loc.Filename != "" {
		fmt.Fprintf(&b, "  --> %s:%d:%d\n", loc.Filename, loc.Line, loc.Column)
		if line, ok := sourceLine(loc.Filename, loc.Line); ok {
			fmt.Fprintf(&b, "%4d | %s\n", loc.Line, line)
			b.WriteString("     | ")
			for i := 0; i < loc.Column-1 && i < len(line); i++ {
				if line[i] == '\t' {
					b.WriteByte('\t')
				} else {
					b.WriteByte(' ')
				}
			}
			b.WriteString("^\n")
		}
	}

	if err.Help != "" {
		b.WriteString("help: ")
		b.WriteString(err.Help)
		b.WriteString("\n")
	}

	return b.String()
}

func sourceLine(filename string, target int) (string, bool) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", false
	}
	lines := strings.Split(string(content), "\n")
	if target < 1 || target > len(lines) {
		return "", false
	}
	return lines[target-1], true
}
