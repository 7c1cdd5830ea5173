package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildArchive writes the given name->content pairs into an in-memory tar.gz.
func buildArchive(t *testing.T, entries map[string]string, order []string) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, name := range order {
		content := entries[name]
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func writeFile(t *testing.T, fs afero.Fs, path string, data []byte) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, data, 0o644))
}

func TestReader_YieldsEntriesInArchiveOrder(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := buildArchive(t, map[string]string{
		"a.json":   `{"x":1}`,
		"b.json":   `{"x":2}`,
		"skip.txt": "not a report",
	}, []string{"a.json", "skip.txt", "b.json"})
	writeFile(t, fs, "/reports/reports_jan_2020.tar.gz", data)

	r, err := Open(fs, "/reports/reports_jan_2020.tar.gz")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	var names []string
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		require.NoError(t, e.Err)
		names = append(names, e.Name)
	}
	// Non-JSON entries are skipped, order is preserved.
	assert.Equal(t, []string{"a.json", "b.json"}, names)
}

func TestOpen_GzipHeaderUnreadable(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeFile(t, fs, "/reports/bad.tar.gz", []byte("definitely not gzip"))

	_, err := Open(fs, "/reports/bad.tar.gz")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestOpen_MissingFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	_, err := Open(fs, "/reports/nope.tar.gz")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrCorrupt)
}

func TestReader_TruncatedTailDoesNotLoseEarlierEntries(t *testing.T) {
	fs := afero.NewMemMapFs()
	full := buildArchive(t, map[string]string{
		"a.json": `{"x":1}`,
		"b.json": `{"x":2}`,
	}, []string{"a.json", "b.json"})

	// Re-compress a truncated tar stream so the gzip layer stays intact but
	// the tar framing breaks partway through the second entry.
	gzr, err := gzip.NewReader(bytes.NewReader(full))
	require.NoError(t, err)
	raw, err := io.ReadAll(gzr)
	require.NoError(t, err)
	var buf bytes.Buffer
	gzw := gzip.NewWriter(&buf)
	_, err = gzw.Write(raw[:len(raw)-1024-256])
	require.NoError(t, err)
	require.NoError(t, gzw.Close())
	writeFile(t, fs, "/reports/truncated.tar.gz", buf.Bytes())

	r, err := Open(fs, "/reports/truncated.tar.gz")
	require.NoError(t, err)
	defer func() { _ = r.Close() }()

	var yielded []string
	var streamErr error
	for {
		e, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			streamErr = err
			break
		}
		if e.Err == nil {
			yielded = append(yielded, e.Name)
		}
	}

	// The first entry survives; the break surfaces either as a per-entry
	// error or as a corrupt stream, never as silent loss.
	assert.Contains(t, yielded, "a.json")
	if streamErr != nil {
		assert.ErrorIs(t, streamErr, ErrCorrupt)
	}
}

func TestReader_CloseIsIdempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	data := buildArchive(t, map[string]string{"a.json": `{}`}, []string{"a.json"})
	writeFile(t, fs, "/r.tar.gz", data)

	r, err := Open(fs, "/r.tar.gz")
	require.NoError(t, err)
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
}
