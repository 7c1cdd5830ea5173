// Package archive streams report entries out of compressed report archives.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

// ErrCorrupt marks a container whose gzip or tar framing cannot be read.
// Errors from Open and Next wrap it.
var ErrCorrupt = errors.New("archive corrupt")

// Entry is one named unit of raw content inside an archive. When the entry's
// content could not be read, Err is set and Data is nil; the stream continues
// with the next entry.
type Entry struct {
	Name string
	Data []byte
	Err  error
}

// Reader yields the JSON entries of a .tar.gz archive one at a time, in the
// container's physical order, without materializing the whole archive.
// A Reader is single-use: it cannot be restarted.
type Reader struct {
	f      afero.File
	gz     *gzip.Reader
	tr     *tar.Reader
	closed bool
}

// Open opens the archive at path. It fails with an error wrapping ErrCorrupt
// when the gzip header is unreadable. The caller must Close the Reader on
// every exit path.
func Open(fs afero.Fs, path string) (*Reader, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: gzip header: %v", ErrCorrupt, err)
	}
	return &Reader{f: f, gz: gz, tr: tar.NewReader(gz)}, nil
}

// Next returns the next JSON entry. It returns io.EOF once the archive is
// exhausted, and an error wrapping ErrCorrupt when the tar framing breaks
// mid-stream. A failure confined to one entry's content is reported on
// Entry.Err instead so sibling entries still process.
func (r *Reader) Next() (Entry, error) {
	for {
		hdr, err := r.tr.Next()
		if err == io.EOF {
			return Entry{}, io.EOF
		}
		if err != nil {
			return Entry{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		if hdr.Typeflag != tar.TypeReg || !strings.HasSuffix(hdr.Name, ".json") {
			continue
		}
		data, err := io.ReadAll(r.tr)
		if err != nil {
			return Entry{Name: hdr.Name, Err: fmt.Errorf("read entry %s: %w", hdr.Name, err)}, nil
		}
		return Entry{Name: hdr.Name, Data: data}, nil
	}
}

// Close releases the underlying file handle. It is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	gzErr := r.gz.Close()
	if err := r.f.Close(); err != nil {
		return err
	}
	return gzErr
}
