package bundle

import (
	"archive/tar"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
)

// extractArchive unpacks a .tar.gz bundle archive into destDir, creating it.
// Entry names are confined to destDir: absolute paths and ".." traversal
// make the archive corrupt. Only regular files and directories are
// extracted; anything else (symlinks, devices) is rejected.
func extractArchive(archive []byte, destDir string) error {
	gz, err := gzip.NewReader(bytes.NewReader(archive))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
	}
	defer gz.Close()

	if err = os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create extract dir: %w", err)
	}

	tr := tar.NewReader(gz)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptArchive, err)
		}

		target, err := securePath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create bundle dir: %w", err)
			}
		case tar.TypeReg:
			if err = os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return fmt.Errorf("create bundle dir: %w", err)
			}
			if err = writeExtractedFile(target, tr); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unsupported entry type %d for %q", ErrCorruptArchive, header.Typeflag, header.Name)
		}
	}

	return nil
}

func securePath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(name)
	if filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", fmt.Errorf("%w: unsafe entry path %q", ErrCorruptArchive, name)
	}
	return filepath.Join(destDir, cleaned), nil
}

func writeExtractedFile(target string, r io.Reader) error {
	f, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("create bundle file: %w", err)
	}

	if _, err = io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("write bundle file: %w", err)
	}

	return f.Close()
}
