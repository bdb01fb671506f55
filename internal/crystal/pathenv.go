package crystal

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PATH management mutates the process environment only; changes die with the
// session.

func (g *OSGateway) PathEntries() []string {
	return filepath.SplitList(os.Getenv("PATH"))
}

func (g *OSGateway) PathAdd(dir string) (string, error) {
	for _, entry := range g.PathEntries() {
		if entry == dir {
			return fmt.Sprintf("[ERROR] Already in PATH: %s", dir), nil
		}
	}
	entries := append(g.PathEntries(), dir)
	if err := os.Setenv("PATH", strings.Join(entries, string(os.PathListSeparator))); err != nil {
		return "", fmt.Errorf("path add %s: %w", dir, err)
	}
	return fmt.Sprintf("[SUCCESS] Added to PATH: %s", dir), nil
}

func (g *OSGateway) PathRemove(dir string) (string, error) {
	var kept []string
	found := false
	for _, entry := range g.PathEntries() {
		if entry == dir {
			found = true
			continue
		}
		kept = append(kept, entry)
	}
	if !found {
		return fmt.Sprintf("[ERROR] Not in PATH: %s", dir), nil
	}
	if err := os.Setenv("PATH", strings.Join(kept, string(os.PathListSeparator))); err != nil {
		return "", fmt.Errorf("path remove %s: %w", dir, err)
	}
	return fmt.Sprintf("[SUCCESS] Removed from PATH: %s", dir), nil
}
