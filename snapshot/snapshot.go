/*
Package snapshot packs every live document of a scope into a single
archive file, for carrying state between machines or keeping an
off-site copy. Restoring goes through the normal store write path, so
existing documents rotate into backups instead of being clobbered.

The archive is a sequence of length-prefixed records (one per
document), compressed according to the file extension: .zst/.zstd for
zstd, .gz for gzip, anything else uncompressed. Reading additionally
understands .bz2 and .br.
*/
package snapshot

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/WintersRain/loom/atomicfile"
	"github.com/WintersRain/loom/log"
	"github.com/WintersRain/loom/statestore"
	"github.com/WintersRain/loom/u"
)

// Entry describes one document in an archive
type Entry struct {
	// Name is the document file name within its scope
	Name string
	// Size of the encoded document in bytes
	Size int64
	// Timestamp records when the archive entry was written
	Timestamp time.Time
}

// listDocuments returns the live *.json documents of a scope,
// sorted by name. The backups/ subdirectory is not part of a snapshot.
func listDocuments(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	var names []string
	for _, m := range matches {
		if u.FileExists(m) {
			names = append(names, filepath.Base(m))
		}
	}
	sort.Strings(names)
	return names, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

func compressor(w io.Writer, path string) (io.WriteCloser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zst", ".zstd":
		return zstd.NewWriter(w)
	case ".gz":
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	}
	return nopWriteCloser{w}, nil
}

// Write archives every live document of store into path. The archive
// file itself is written atomically; a failed attempt leaves no
// partial archive behind.
func Write(store *statestore.Store, path string) error {
	names, err := listDocuments(store.Dir)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return fmt.Errorf("scope %s has no documents to snapshot", store.Dir)
	}

	f, err := atomicfile.New(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cw, err := compressor(f, path)
	if err != nil {
		f.RemoveIfNotClosed()
		return err
	}

	now := time.Now().UTC()
	for _, name := range names {
		d, err := os.ReadFile(filepath.Join(store.Dir, name))
		if err != nil {
			f.RemoveIfNotClosed()
			return err
		}
		if _, err := cw.Write(log.MarshalLine(name, now, d)); err != nil {
			f.RemoveIfNotClosed()
			return err
		}
	}
	if err := cw.Close(); err != nil {
		f.RemoveIfNotClosed()
		return err
	}
	return f.Close()
}

// read walks the records of an archive, calling fn for each document
func read(path string, fn func(name string, t time.Time, d []byte) error) error {
	rc, err := u.OpenFileMaybeCompressed(path)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := log.NewRecordReader(rc)
	for r.Next() {
		rec := r.Record()
		if err := fn(rec.Name, rec.Timestamp, rec.Data); err != nil {
			return err
		}
	}
	return r.Err()
}

// List returns the entries of an archive without restoring anything
func List(path string) ([]Entry, error) {
	var entries []Entry
	err := read(path, func(name string, t time.Time, d []byte) error {
		entries = append(entries, Entry{
			Name:      name,
			Size:      int64(len(d)),
			Timestamp: t,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// Restore writes every document of the archive at path into store.
// Each document must decode; a malformed entry aborts the restore
// before any further documents are touched. Documents already in the
// scope are superseded the normal way, rotating into backups first.
func Restore(path string, store *statestore.Store) error {
	return read(path, func(name string, t time.Time, d []byte) error {
		doc, err := statestore.Decode(d)
		if err != nil {
			return fmt.Errorf("archive entry %s: %w", name, err)
		}
		if err := store.Write(name, doc); err != nil {
			return err
		}
		return nil
	})
}
