package crystal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// ConfirmFunc answers an interactive yes/no prompt. The OS gateway reads a
// line from stdin; tests substitute an auto-confirming or auto-declining
// callback.
type ConfirmFunc func(prompt string) bool

// Gateway performs the side effects behind leaf statements. Every method
// takes fully resolved arguments. The string return is a display message (may
// be empty); a non-nil error is a hard failure from a committed operation and
// propagates through the engine. Anticipated conditions such as a missing
// source or a declined confirmation are soft: they come back as a message with
// a nil error.
type Gateway interface {
	Exists(path string) bool
	IsDir(path string) bool
	Entries(path string) ([]string, error)
	List(path string, filter ListFilter) (string, error)
	Copy(src, dst string, force bool) (string, error)
	Move(src, dst string, force bool) (string, error)
	Delete(path string, force bool) (string, error)
	CreateFile(path string) (string, error)
	CreateFolder(path string) (string, error)
	WriteFile(path, content string, force bool) (string, error)
	EnsureFolder(path string) error
	Zip(sources []string, dest string) (string, error)
	Unzip(archive, dest string) (string, error)
	Ping(host string) (string, error)
	Download(url, dest string, force bool) (string, error)
	Wait(d time.Duration)
	ReadScript(path string) (string, error)
	PathEntries() []string
	PathAdd(dir string) (string, error)
	PathRemove(dir string) (string, error)
}

const pingTimeout = 10 * time.Second

// OSGateway is the real implementation: filesystem, archive, network and
// environment operations against the host.
type OSGateway struct {
	Confirm ConfirmFunc
}

func NewOSGateway() *OSGateway {
	return &OSGateway{Confirm: StdinConfirm}
}

// StdinConfirm prompts on stdout and accepts "yes" or "y".
func StdinConfirm(prompt string) bool {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "yes" || answer == "y"
}

func (g *OSGateway) confirm(prompt string) bool {
	if g.Confirm == nil {
		return false
	}
	return g.Confirm(prompt)
}

func (g *OSGateway) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (g *OSGateway) IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Entries returns directory entry names in enumeration order.
func (g *OSGateway) Entries(path string) ([]string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		names = append(names, entry.Name())
	}
	return names, nil
}

func (g *OSGateway) List(path string, filter ListFilter) (string, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return "", fmt.Errorf("list %s: %w", path, err)
	}

	var items []string
	for _, entry := range entries {
		switch {
		case filter == ListFiles && !entry.IsDir():
			items = append(items, entry.Name())
		case filter == ListFolders && entry.IsDir():
			items = append(items, entry.Name()+"/")
		case filter == ListAll:
			if entry.IsDir() {
				items = append(items, entry.Name()+"/")
			} else {
				items = append(items, entry.Name())
			}
		}
	}

	if len(items) == 0 {
		return fmt.Sprintf("No %s found in: %s", filter, path), nil
	}

	sort.Strings(items)
	var b strings.Builder
	fmt.Fprintf(&b, "\nListing %s in: %s\n", filter, path)
	b.WriteString(strings.Repeat("-", 50) + "\n")
	for _, item := range items {
		b.WriteString("  " + item + "\n")
	}
	fmt.Fprintf(&b, "\nTotal: %d item(s)", len(items))
	return b.String(), nil
}

func (g *OSGateway) Copy(src, dst string, force bool) (string, error) {
	info, err := os.Stat(src)
	if err != nil {
		return fmt.Sprintf("[ERROR] Source not found: %s", src), nil
	}
	if g.Exists(dst) && !force {
		if !g.confirm(fmt.Sprintf("'%s' already exists. Overwrite? (yes/no) ", dst)) {
			return "[CANCELLED] Copy operation cancelled", nil
		}
	}

	if info.IsDir() {
		if err := copyTree(src, dst); err != nil {
			return "", fmt.Errorf("copy %s: %w", src, err)
		}
		return fmt.Sprintf("[SUCCESS] Copied directory: %s -> %s", src, dst), nil
	}
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("copy %s: %w", src, err)
	}
	return fmt.Sprintf("[SUCCESS] Copied file: %s -> %s", src, dst), nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Sync()
}

func copyTree(src, dst string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		return copyFile(path, target)
	})
}

func (g *OSGateway) Move(src, dst string, force bool) (string, error) {
	if !g.Exists(src) {
		return fmt.Sprintf("[ERROR] Source not found: %s", src), nil
	}
	if g.Exists(dst) && !force {
		if !g.confirm(fmt.Sprintf("'%s' already exists. Overwrite? (yes/no) ", dst)) {
			return "[CANCELLED] Move operation cancelled", nil
		}
	}
	if err := os.Rename(src, dst); err != nil {
		return "", fmt.Errorf("move %s: %w", src, err)
	}
	return fmt.Sprintf("[SUCCESS] Moved: %s -> %s", src, dst), nil
}

func (g *OSGateway) Delete(path string, force bool) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Sprintf("[ERROR] Path not found: %s", path), nil
	}

	kind := "file"
	if info.IsDir() {
		kind = "directory"
	}
	if !force {
		prompt := fmt.Sprintf("[WARNING] About to delete %s: %s\nAre you sure? (yes/no) ", kind, path)
		if !g.confirm(prompt) {
			return "[CANCELLED] Delete operation cancelled", nil
		}
	}

	if info.IsDir() {
		if err := os.RemoveAll(path); err != nil {
			return "", fmt.Errorf("delete %s: %w", path, err)
		}
		return fmt.Sprintf("[SUCCESS] Deleted directory: %s", path), nil
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("delete %s: %w", path, err)
	}
	return fmt.Sprintf("[SUCCESS] Deleted file: %s", path), nil
}

func (g *OSGateway) CreateFile(path string) (string, error) {
	if g.Exists(path) {
		return fmt.Sprintf("[ERROR] Already exists: %s", path), nil
	}
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	file.Close()
	return fmt.Sprintf("[SUCCESS] Created file: %s", path), nil
}

func (g *OSGateway) CreateFolder(path string) (string, error) {
	if g.Exists(path) {
		return fmt.Sprintf("[ERROR] Already exists: %s", path), nil
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	return fmt.Sprintf("[SUCCESS] Created folder: %s", path), nil
}

func (g *OSGateway) WriteFile(path, content string, force bool) (string, error) {
	if g.Exists(path) && !force {
		if !g.confirm(fmt.Sprintf("'%s' already exists. Overwrite? (yes/no) ", path)) {
			return "[CANCELLED] Make file operation cancelled", nil
		}
	}
	if parent := filepath.Dir(path); parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return "", fmt.Errorf("create %s: %w", path, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	return fmt.Sprintf("[SUCCESS] Created file: %s", path), nil
}

func (g *OSGateway) EnsureFolder(path string) error {
	return os.MkdirAll(path, 0755)
}

// Ping shells out to the system ping with an enforced timeout. Every outcome
// is soft; an unreachable host is an ordinary result, not a failure.
func (g *OSGateway) Ping(host string) (string, error) {
	flag := "-c"
	if runtime.GOOS == "windows" {
		flag = "-n"
	}

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "ping", flag, "4", host)
	output, err := cmd.Output()

	var b strings.Builder
	fmt.Fprintf(&b, "Pinging %s...\n", host)
	b.Write(output)
	switch {
	case ctx.Err() == context.DeadlineExceeded:
		fmt.Fprintf(&b, "[TIMEOUT] Ping to %s timed out", host)
	case err != nil:
		fmt.Fprintf(&b, "[FAILED] %s is unreachable", host)
	default:
		fmt.Fprintf(&b, "[SUCCESS] %s is reachable", host)
	}
	return b.String(), nil
}

func (g *OSGateway) Download(url, dest string, force bool) (string, error) {
	if g.Exists(dest) && !force {
		if !g.confirm(fmt.Sprintf("'%s' already exists. Overwrite? (yes/no) ", dest)) {
			return "[CANCELLED] Download cancelled", nil
		}
	}
	if parent := filepath.Dir(dest); parent != "" {
		if err := os.MkdirAll(parent, 0755); err != nil {
			return "", fmt.Errorf("download %s: %w", url, err)
		}
	}

	resp, err := http.Get(url)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s: HTTP %d", url, resp.StatusCode)
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}
	defer out.Close()

	written, err := io.Copy(out, resp.Body)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", url, err)
	}

	return fmt.Sprintf("[SUCCESS] Downloaded to %s (%.2f KB)", dest, float64(written)/1024), nil
}

func (g *OSGateway) Wait(d time.Duration) {
	time.Sleep(d)
}

func (g *OSGateway) ReadScript(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("include %s: %w", path, err)
	}
	return string(content), nil
}
