package archive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legacyshift/internal/types"
)

type entry struct {
	name string
	body []byte
}

func zipOf(t *testing.T, entries ...entry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.name)
		require.NoError(t, err)
		_, err = w.Write(e.body)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtract(t *testing.T) {
	data := zipOf(t,
		entry{"src/", nil},
		entry{"src/main/App.java", []byte("class App {}")},
		entry{"web/index.jsp", []byte("<p>olá</p>")},
	)
	files, err := Extract(data)
	require.NoError(t, err)
	assert.Equal(t, []types.SourceFile{
		{Path: "src/main/App.java", Content: "class App {}"},
		{Path: "web/index.jsp", Content: "<p>olá</p>"},
	}, files)
}

func TestExtract_Rejects(t *testing.T) {
	_, err := Extract([]byte("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidArchive)

	_, err = Extract(zipOf(t, entry{"lib/x.jar", []byte{'P', 'K', 0, 1}}))
	assert.ErrorIs(t, err, ErrBinaryEntry)
	assert.Contains(t, err.Error(), "lib/x.jar")

	_, err = Extract(zipOf(t, entry{"latin1.txt", []byte{0xe9, 0x41}}))
	assert.ErrorIs(t, err, ErrBinaryEntry)

	_, err = Extract(zipOf(t, entry{"only/", nil}))
	assert.ErrorIs(t, err, ErrEmptyArchive)
}

func TestBuild_RoundTrip(t *testing.T) {
	out := []types.OutputFile{
		{Path: "z/B.ts", Content: "b"},
		{Path: "a/A.java", Content: "ação"},
	}
	data, err := Build(out)
	require.NoError(t, err)

	files, err := Extract(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"a/A.java", "z/B.ts"}, types.Paths(files))
	assert.Equal(t, "ação", files[0].Content)
}

func TestBuild_RejectsDuplicatesAndEmpty(t *testing.T) {
	_, err := Build([]types.OutputFile{{Path: "a"}, {Path: "a"}})
	assert.ErrorIs(t, err, ErrDuplicateEntry)

	_, err = Build([]types.OutputFile{{Path: ""}})
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = Build([]types.OutputFile{{Path: "/"}})
	assert.ErrorIs(t, err, ErrInvalidPath)
}

func TestBuild_PathsCleaningToSameEntryCollide(t *testing.T) {
	for _, pair := range [][2]string{
		{"/src/App.java", "src/App.java"},
		{"src/./App.java", "src/App.java"},
		{"src//App.java", "src/App.java"},
	} {
		_, err := Build([]types.OutputFile{{Path: pair[0], Content: "1"}, {Path: pair[1], Content: "2"}})
		assert.ErrorIs(t, err, ErrDuplicateEntry, "%q vs %q", pair[0], pair[1])
	}
}

func TestBuild_RejectsParentSegments(t *testing.T) {
	for _, p := range []string{"../etc/passwd", "src/../../x", "a\\..\\b"} {
		_, err := Build([]types.OutputFile{{Path: p, Content: "x"}})
		assert.ErrorIs(t, err, ErrInvalidPath, p)
	}
}

func TestBuild_NormalisesEntryNames(t *testing.T) {
	data, err := Build([]types.OutputFile{
		{Path: "/frontend/src/app/app.ts", Content: "a"},
		{Path: "./pom.xml", Content: "b"},
	})
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	var names []string
	for _, f := range zr.File {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"frontend/src/app/app.ts", "pom.xml"}, names)
}

func TestReadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", ".svn"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "A.java"), []byte("class A {}"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", ".svn", "entries"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pom.xml"), []byte("<project/>"), 0o644))

	files, err := ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []types.SourceFile{
		{Path: "pom.xml", Content: "<project/>"},
		{Path: "src/A.java", Content: "class A {}"},
	}, files)
}

func TestReadDir_Rejects(t *testing.T) {
	empty := t.TempDir()
	_, err := ReadDir(empty)
	assert.ErrorIs(t, err, ErrEmptyArchive)

	binary := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(binary, "logo.png"), []byte{0x89, 'P', 0, 'G'}, 0o644))
	_, err = ReadDir(binary)
	assert.ErrorIs(t, err, ErrBinaryEntry)
}
