package statestore

import (
	"os"

	"github.com/WintersRain/loom/u"
)

// rotateBackups shifts prior generations of name one slot up and
// copies the current live file into slot 1. Called strictly before the
// live file is replaced, so slot 1 always holds the previous
// generation, never the one about to be written.
//
// The sequence is not atomic as a whole: a crash part-way leaves the
// ring partially shifted but every slot individually intact, which
// recovery tolerates.
func (s *Store) rotateBackups(name string) error {
	live := s.docPath(name)
	if !u.FileExists(live) {
		// nothing to preserve yet
		return nil
	}
	if err := s.ensureDirs(); err != nil {
		return err
	}

	n := s.maxBackups()

	// evict the oldest
	oldest := s.backupPath(name, n)
	if u.FileExists(oldest) {
		if err := os.Remove(oldest); err != nil {
			return err
		}
	}

	// shift the rest up: .2 => .3, .1 => .2
	for i := n - 1; i >= 1; i-- {
		older := s.backupPath(name, i)
		if u.FileExists(older) {
			if err := os.Rename(older, s.backupPath(name, i+1)); err != nil {
				return err
			}
		}
	}

	// the live file stays in place; slot 1 gets a copy
	return u.CopyFile(s.backupPath(name, 1), live)
}
