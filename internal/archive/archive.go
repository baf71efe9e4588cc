// Package archive converts between uploaded zip archives and the text files
// a conversion job works on.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/klauspost/compress/zip"

	"legacyshift/internal/safeio"
	"legacyshift/internal/types"
)

var (
	ErrInvalidArchive = errors.New("archive: not a valid zip archive")
	ErrBinaryEntry    = errors.New("archive: entry is not UTF-8 text")
	ErrEmptyArchive   = errors.New("archive: no files in archive")
	ErrInvalidPath    = errors.New("archive: invalid output path")
	ErrDuplicateEntry = errors.New("archive: duplicate output path")
)

// MaxEntryBytes bounds the decompressed size of a single entry.
const MaxEntryBytes = 16 << 20

// Extract reads every regular file of a zip archive as UTF-8 text. Directory
// entries are skipped; any binary entry rejects the whole archive.
func Extract(data []byte) ([]types.SourceFile, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	files := make([]types.SourceFile, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() || strings.HasSuffix(f.Name, "/") {
			continue
		}
		content, err := readEntry(f)
		if err != nil {
			return nil, err
		}
		files = append(files, types.SourceFile{Path: f.Name, Content: content})
	}
	if len(files) == 0 {
		return nil, ErrEmptyArchive
	}
	return files, nil
}

func readEntry(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %v", ErrInvalidArchive, f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(io.LimitReader(rc, MaxEntryBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %v", ErrInvalidArchive, f.Name, err)
	}
	if len(b) > MaxEntryBytes {
		return "", fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidArchive, f.Name, MaxEntryBytes)
	}
	return asText(f.Name, b)
}

func asText(name string, b []byte) (string, error) {
	if bytes.IndexByte(b, 0) >= 0 || !utf8.Valid(b) {
		return "", fmt.Errorf("%w: %s", ErrBinaryEntry, name)
	}
	return string(b), nil
}

// ReadDir collects the files under root with the same rules as Extract.
// Hidden directories and symlinks leaving root are ignored.
func ReadDir(root string) ([]types.SourceFile, error) {
	fsys, err := safeio.NewSafeFS(root)
	if err != nil {
		return nil, err
	}
	paths, err := fsys.Files()
	if err != nil {
		return nil, err
	}
	files := make([]types.SourceFile, 0, len(paths))
	for _, p := range paths {
		b, err := fsys.ReadFile(p)
		if err != nil {
			return nil, err
		}
		if len(b) > MaxEntryBytes {
			return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrInvalidArchive, p, MaxEntryBytes)
		}
		content, err := asText(p, b)
		if err != nil {
			return nil, err
		}
		files = append(files, types.SourceFile{Path: p, Content: content})
	}
	if len(files) == 0 {
		return nil, ErrEmptyArchive
	}
	return files, nil
}

// Build writes one deflated entry per file, sorted by entry name. Names are
// cleaned and made relative; two paths that clean to the same name, an
// empty name or a ".." segment are rejected.
func Build(files []types.OutputFile) ([]byte, error) {
	type entry struct {
		name    string
		content string
	}
	entries := make([]entry, 0, len(files))
	for _, f := range files {
		name, err := EntryName(f.Path)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry{name: name, content: f.Content})
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].name < entries[j].name })

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, e := range entries {
		if i > 0 && entries[i-1].name == e.name {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateEntry, e.name)
		}
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.name, Method: zip.Deflate})
		if err != nil {
			return nil, fmt.Errorf("archive: create %s: %w", e.name, err)
		}
		if _, err := io.WriteString(w, e.content); err != nil {
			return nil, fmt.Errorf("archive: write %s: %w", e.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("archive: finalize: %w", err)
	}
	return buf.Bytes(), nil
}

// EntryName maps an output path to its archive entry name: slash-separated,
// cleaned, without a leading slash.
func EntryName(p string) (string, error) {
	slashed := strings.ReplaceAll(p, "\\", "/")
	for _, seg := range strings.Split(slashed, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: %q escapes the archive root", ErrInvalidPath, p)
		}
	}
	name := strings.TrimLeft(path.Clean("/"+slashed), "/")
	if name == "" {
		return "", fmt.Errorf("%w: empty path %q", ErrInvalidPath, p)
	}
	return name, nil
}
