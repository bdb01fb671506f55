package crystal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Zip packs one or more files or directories into an archive. Directory
// sources keep their base name as the top-level entry.
func (g *OSGateway) Zip(sources []string, dest string) (string, error) {
	for _, src := range sources {
		if !g.Exists(src) {
			return fmt.Sprintf("[ERROR] Source not found: %s", src), nil
		}
	}

	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("zip %s: %w", dest, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	count := 0
	for _, src := range sources {
		n, err := addToArchive(zw, src)
		if err != nil {
			zw.Close()
			return "", fmt.Errorf("zip %s: %w", src, err)
		}
		count += n
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("zip %s: %w", dest, err)
	}

	return fmt.Sprintf("[SUCCESS] Created archive: %s (%d file(s))", dest, count), nil
}

func addToArchive(zw *zip.Writer, src string) (int, error) {
	info, err := os.Stat(src)
	if err != nil {
		return 0, err
	}

	if !info.IsDir() {
		return 1, writeArchiveFile(zw, src, filepath.Base(src))
	}

	base := filepath.Base(src)
	count := 0
	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		count++
		return writeArchiveFile(zw, path, filepath.ToSlash(filepath.Join(base, rel)))
	})
	return count, err
}

func writeArchiveFile(zw *zip.Writer, path, name string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	_, err = io.Copy(w, in)
	return err
}

// Unzip extracts an archive into a directory, rejecting entries that would
// escape it.
func (g *OSGateway) Unzip(archive, dest string) (string, error) {
	if !g.Exists(archive) {
		return fmt.Sprintf("[ERROR] Archive not found: %s", archive), nil
	}

	r, err := zip.OpenReader(archive)
	if err != nil {
		return "", fmt.Errorf("unzip %s: %w", archive, err)
	}
	defer r.Close()

	count := 0
	for _, f := range r.File {
		target := filepath.Join(dest, filepath.FromSlash(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return "", fmt.Errorf("unzip %s: illegal entry path %q", archive, f.Name)
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return "", fmt.Errorf("unzip %s: %w", archive, err)
			}
			continue
		}

		if err := extractArchiveFile(f, target); err != nil {
			return "", fmt.Errorf("unzip %s: %w", archive, err)
		}
		count++
	}

	return fmt.Sprintf("[SUCCESS] Extracted %d file(s) to %s", count, dest), nil
}

func extractArchiveFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}

	in, err := f.Open()
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
