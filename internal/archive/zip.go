// Package archive unpacks uploaded project archives into a staging directory.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrUnsafePath is returned for entries that would land outside the destination.
	ErrUnsafePath = errors.New("archive entry escapes destination")
	// ErrTooLarge is returned when the uncompressed payload exceeds the limit.
	ErrTooLarge = errors.New("archive exceeds size limit")
)

// DefaultMaxBytes caps the total uncompressed size of one archive.
const DefaultMaxBytes int64 = 1 << 30

// ZipExtractor extracts zip archives.
type ZipExtractor struct {
	MaxBytes int64
}

// NewZipExtractor returns an extractor with DefaultMaxBytes.
func NewZipExtractor() *ZipExtractor {
	return &ZipExtractor{MaxBytes: DefaultMaxBytes}
}

// ExtractAll writes every entry of archivePath under destDir. destDir must
// already exist. Existing files are overwritten.
func (z *ZipExtractor) ExtractAll(archivePath, destDir string) error {
	r, err := zip.OpenReader(archivePath)
	if errors.Is(err, zip.ErrInsecurePath) {
		r.Close()
		return fmt.Errorf("%w: %v", ErrUnsafePath, err)
	}
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer r.Close()

	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}

	budget := z.MaxBytes
	if budget <= 0 {
		budget = DefaultMaxBytes
	}

	for _, f := range r.File {
		target, err := safeJoin(root, f.Name)
		if err != nil {
			return err
		}

		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create dir %s: %w", f.Name, err)
			}
			continue
		}
		// Symlinks are skipped; they could point anywhere on the host.
		if f.Mode()&os.ModeSymlink != 0 {
			continue
		}

		n, err := writeEntry(f, target, budget)
		if err != nil {
			return err
		}
		budget -= n
	}
	return nil
}

func writeEntry(f *zip.File, target string, budget int64) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return 0, fmt.Errorf("create dir for %s: %w", f.Name, err)
	}

	src, err := f.Open()
	if err != nil {
		return 0, fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	mode := f.Mode().Perm()
	if mode == 0 {
		mode = 0o644
	}
	dst, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode)
	if err != nil {
		return 0, fmt.Errorf("create %s: %w", f.Name, err)
	}

	n, err := io.Copy(dst, io.LimitReader(src, budget+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", f.Name, err)
	}
	if n > budget {
		return n, ErrTooLarge
	}
	return n, nil
}

func safeJoin(root, name string) (string, error) {
	name = strings.ReplaceAll(name, `\`, "/")
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	if target != root && !strings.HasPrefix(target, root+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", ErrUnsafePath, name)
	}
	return target, nil
}
