// Package slides manages lecture deck files: validation, the managed copy
// inside the library's deck directory, and the provider-facing renditions
// (inline base64 and per-page text).
package slides

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gloss/internal/config"
)

// MaxDeckBytes is the largest deck accepted for review. Providers that take
// the PDF inline cap documents at 32 MB.
const MaxDeckBytes = 32 << 20

var pdfMagic = []byte("%PDF-")

// Validate checks that path names a deck a provider request can carry:
// an existing, readable, regular PDF file no larger than MaxDeckBytes.
func Validate(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("deck not found: %s", path)
		}
		return fmt.Errorf("deck unreadable: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("deck is a directory: %s", path)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("deck is not a regular file: %s", path)
	}
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return fmt.Errorf("deck must be a PDF file: %s", path)
	}
	if info.Size() > MaxDeckBytes {
		return fmt.Errorf("deck too large: %d MB exceeds the %d MB provider limit", info.Size()>>20, MaxDeckBytes>>20)
	}

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("deck unreadable: %w", err)
	}
	defer file.Close()

	header := make([]byte, len(pdfMagic))
	if _, err := io.ReadFull(file, header); err != nil || !bytes.Equal(header, pdfMagic) {
		return fmt.Errorf("deck is not a PDF (missing %%PDF header): %s", path)
	}
	return nil
}

// Import validates src and copies it into the deck directory as
// <decks>/<courseSlug>/<lectureSlug>.pdf, replacing any earlier copy.
// Returns the managed path and the page count, zero when the deck cannot
// be parsed for counting.
func Import(cfg *config.Config, courseSlug, lectureSlug, src string) (string, int, error) {
	if err := Validate(src); err != nil {
		return "", 0, err
	}

	dir := filepath.Join(cfg.DecksDir(), courseSlug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("create deck directory: %w", err)
	}

	dst := filepath.Join(dir, lectureSlug+".pdf")
	if err := copyVerified(src, dst); err != nil {
		return "", 0, fmt.Errorf("import deck: %w", err)
	}
	return dst, PageCount(dst), nil
}

// RemoveCourse deletes a course's deck directory and every deck in it.
func RemoveCourse(cfg *config.Config, courseSlug string) error {
	if courseSlug == "" {
		return nil
	}
	if err := os.RemoveAll(filepath.Join(cfg.DecksDir(), courseSlug)); err != nil {
		return fmt.Errorf("remove course decks: %w", err)
	}
	return nil
}

// Remove deletes the managed copy for a lecture. A missing file is not an
// error; the lecture row is the source of truth for whether a deck exists.
func Remove(deckPath string) error {
	if deckPath == "" {
		return nil
	}
	if err := os.Remove(deckPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove deck: %w", err)
	}
	return nil
}

// copyVerified streams src to dst with SHA256 and size verification on both
// sides. Removes dst on mismatch.
func copyVerified(src, dst string) error {
	srcInfo, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	srcSize := srcInfo.Size()

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		_ = out.Close()
	}()

	srcHasher := sha256.New()
	dstHasher := sha256.New()
	tee := io.TeeReader(in, srcHasher)
	multi := io.MultiWriter(out, dstHasher)

	written, err := io.Copy(multi, tee)
	if err != nil {
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	if written != srcSize {
		_ = os.Remove(dst)
		return fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcSize, written)
	}
	if !bytes.Equal(srcHasher.Sum(nil), dstHasher.Sum(nil)) {
		_ = os.Remove(dst)
		return fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}
	return nil
}
