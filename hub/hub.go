package hub

import (
	"path/filepath"

	"github.com/WintersRain/loom/log"
	"github.com/WintersRain/loom/statestore"
)

// Content directories under a hub root
const (
	BooksDirName      = "_books"
	SessionsDirName   = "_sessions"
	CharactersDirName = "_characters"
)

// Hub-level documents
const (
	SessionStateFile = "session.json"
	ProjectStateFile = "project.json"
)

// Hub is the root of a writing hub tree: book projects under _books/,
// roleplay sessions under _sessions/, the shared character library
// under _characters/ and hub-level state under .writing/state/.
type Hub struct {
	Root string
}

func New(root string) *Hub {
	return &Hub{Root: root}
}

func (h *Hub) BooksDir() string {
	return filepath.Join(h.Root, BooksDirName)
}

func (h *Hub) SessionsDir() string {
	return filepath.Join(h.Root, SessionsDirName)
}

func (h *Hub) CharactersDir() string {
	return filepath.Join(h.Root, CharactersDirName)
}

// newStore builds a scope with diagnostics routed to the hub logs
func newStore(dir string) (*statestore.Store, error) {
	s, err := statestore.New(dir)
	if err != nil {
		return nil, err
	}
	s.Logf = log.Logf
	return s, nil
}

// StateStore returns the hub-level scope at <root>/.writing/state,
// holding documents like session.json (the active-project pointer).
// Kept visible rather than hidden in the user's home directory so the
// whole hub stays portable.
func (h *Hub) StateStore() (*statestore.Store, error) {
	return newStore(filepath.Join(h.Root, ".writing", "state"))
}

// ProjectStore returns the scope for one book project, a .state
// folder inside the project so project state travels with it.
func ProjectStore(projectDir string) (*statestore.Store, error) {
	return newStore(filepath.Join(projectDir, ".state"))
}

// CharactersStore returns the scope for a characters folder, holding
// the cast manifest. The manifest is a denormalized index over the
// character sheets in the same folder.
func CharactersStore(charactersDir string) (*statestore.Store, error) {
	return newStore(charactersDir)
}
