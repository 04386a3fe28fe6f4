package statestore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/WintersRain/loom/atomicfile"
)

// ErrUnrecoverable means the live document and every backup slot
// failed to decode; the caller should treat the state as a fresh start
var ErrUnrecoverable = errors.New("no valid document or backup found")

// DefaultMaxBackups is the number of rotated generations kept per
// document when Store.MaxBackups is not set
const DefaultMaxBackups = 3

const backupsDirName = "backups"

// Store is one scope: a directory holding live documents plus their
// rotated backups. The zero value is not usable, construct with New.
// Distinct Stores share nothing; it is fine to create many.
type Store struct {
	// Dir is the scope root
	Dir string

	// MaxBackups is the number of backup slots per document,
	// DefaultMaxBackups if <= 0
	MaxBackups int

	// Retry controls SaveWithRetry
	Retry RetryPolicy

	// Logf receives diagnostics (corrupted files, failed rotations,
	// recovery notices). Defaults to stderr.
	Logf func(format string, args ...any)
}

// New creates a Store rooted at dir, creating dir and its backups/
// subdirectory if needed. Safe to call repeatedly for the same dir.
func New(dir string) (*Store, error) {
	s := &Store{Dir: dir}
	if err := s.ensureDirs(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureDirs() error {
	if err := os.MkdirAll(filepath.Join(s.Dir, backupsDirName), 0755); err != nil {
		return fmt.Errorf("create scope %s: %w", s.Dir, err)
	}
	return nil
}

func (s *Store) logf(format string, args ...any) {
	if s.Logf != nil {
		s.Logf(format, args...)
		return
	}
	fmt.Fprintf(os.Stderr, format, args...)
}

func (s *Store) maxBackups() int {
	if s.MaxBackups > 0 {
		return s.MaxBackups
	}
	return DefaultMaxBackups
}

func (s *Store) docPath(name string) string {
	return filepath.Join(s.Dir, name)
}

func (s *Store) backupPath(name string, slot int) string {
	return filepath.Join(s.Dir, backupsDirName, fmt.Sprintf("%s.%d", name, slot))
}

// a document name is a bare file name like "session.json",
// never a path
func validateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty document name")
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) {
		return fmt.Errorf("invalid document name %q", name)
	}
	return nil
}

// Read returns the document stored under name. A name that was never
// written yields an empty document and a nil error; no file is created.
// Decode or I/O failures also yield an empty document, with the failure
// returned as a diagnostic, so a best-effort caller can ignore it
// without crashing.
func (s *Store) Read(name string) (Doc, error) {
	if err := validateName(name); err != nil {
		return Doc{}, err
	}
	d, err := os.ReadFile(s.docPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return Doc{}, nil
		}
		s.logf("statestore: cannot read %s: %s\n", name, err)
		return Doc{}, fmt.Errorf("read %s: %w", name, err)
	}
	doc, err := Decode(d)
	if err != nil {
		s.logf("statestore: %s contains invalid JSON: %s\n", name, err)
		return Doc{}, fmt.Errorf("read %s: %w", name, err)
	}
	return doc, nil
}

// Write stores doc under name: rotates backups, then atomically
// replaces the live file. After Write returns nil a reader sees exactly
// doc or fails outright; it never sees a truncated document. On any
// failure the previous live file is untouched.
func (s *Store) Write(name string, doc Doc) error {
	if err := validateName(name); err != nil {
		return err
	}
	d, err := Encode(doc)
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}
	// rotation failure is not fatal: better a document without a
	// fresh backup than no document at all
	if err := s.rotateBackups(name); err != nil {
		s.logf("statestore: backup rotation failed for %s: %s\n", name, err)
	}
	if err := atomicfile.WriteFile(s.docPath(name), d); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// ReadWithRecovery reads the document stored under name, falling back
// to backup slots (newest first) when the live file fails to decode.
// The first valid backup is restored as the live file so subsequent
// plain Reads succeed without re-scanning. Returns recovered=true when
// a fallback happened, including the case where every slot was
// exhausted and the caller must treat the state as fresh.
func (s *Store) ReadWithRecovery(name string) (doc Doc, recovered bool) {
	if err := validateName(name); err != nil {
		return Doc{}, false
	}
	live := s.docPath(name)
	d, err := os.ReadFile(live)
	if err == nil {
		doc, derr := Decode(d)
		if derr == nil {
			return doc, false
		}
		err = derr
	} else if os.IsNotExist(err) {
		// never written: a valid fresh state, not corruption
		return Doc{}, false
	}
	s.logf("statestore: %s is corrupted or unreadable (%s), attempting recovery\n", name, err)

	doc, err = s.recoverFromBackups(name, live)
	if err != nil {
		s.logf("statestore: %s: %s, starting fresh\n", name, err)
		return Doc{}, true
	}
	return doc, true
}

// recoverFromBackups scans slots newest to oldest and restores the
// first one that decodes. Missing slots (e.g. from a crash during
// rotation) are simply skipped.
func (s *Store) recoverFromBackups(name, live string) (Doc, error) {
	for i := 1; i <= s.maxBackups(); i++ {
		d, err := os.ReadFile(s.backupPath(name, i))
		if err != nil {
			continue
		}
		doc, err := Decode(d)
		if err != nil {
			continue
		}
		// restore the backup bytes verbatim so a subsequent plain
		// Read returns the same content
		if err := atomicfile.WriteFile(live, d); err != nil {
			s.logf("statestore: could not restore %s from backup .%d: %s\n", name, i, err)
		} else {
			s.logf("statestore: recovered %s from backup .%d\n", name, i)
		}
		return doc, nil
	}
	return nil, ErrUnrecoverable
}
