package hub

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/WintersRain/loom/statestore"
	"github.com/WintersRain/loom/u"
)

// InitProjectState makes sure a book project has a .state/project.json
// and a characters/ folder with a manifest. If state already exists it
// is returned as-is, so calling this on every session start is safe.
func InitProjectState(projectDir string) (statestore.Doc, error) {
	store, err := ProjectStore(projectDir)
	if err != nil {
		return statestore.Doc{}, err
	}

	if u.FileExists(filepath.Join(store.Dir, ProjectStateFile)) {
		return store.Read(ProjectStateFile)
	}

	lastScene, lastSceneFile := findLastScene(projectDir)

	// a project without a cast folder is still usable
	_, _ = CreateCharactersFolder(projectDir)

	name := filepath.Base(projectDir)
	doc := statestore.Doc{
		"project_name": name,
		"display_name": u.TitleFromName(name),
		"last_position": map[string]any{
			"chapter":    nil,
			"scene":      lastScene,
			"scene_file": lastSceneFile,
			"section":    nil,
		},
		"open_threads":    []any{},
		"character_focus": []any{},
		"current_arc":     nil,
		"session_history": []any{},
		"last_edited":     time.Now().Format(time.RFC3339),
		"total_sessions":  0,
	}
	if err := store.Write(ProjectStateFile, doc); err != nil {
		return statestore.Doc{}, err
	}
	return doc, nil
}

// findLastScene scans SCENES/ (or scenes/) for markdown files; the
// last one by name sort is typically the most recent
func findLastScene(projectDir string) (scene any, sceneFile any) {
	scenesDir := filepath.Join(projectDir, "SCENES")
	if !u.DirExists(scenesDir) {
		scenesDir = filepath.Join(projectDir, "scenes")
	}
	if !u.DirExists(scenesDir) {
		return nil, nil
	}
	matches, err := filepath.Glob(filepath.Join(scenesDir, "*.md"))
	if err != nil || len(matches) == 0 {
		return nil, nil
	}
	sort.Strings(matches)
	last := matches[len(matches)-1]
	return u.TrimExt(filepath.Base(last)), "SCENES/" + filepath.Base(last)
}

// FindProject resolves a full or partial project name to a directory
// under booksDir. Matching priority: exact (after normalizing case,
// spaces and underscores to hyphens), then prefix, then substring if
// it matches a single project. Hidden and underscore-prefixed
// directories are skipped. Returns "", false when nothing matches or
// the identifier is ambiguous.
func FindProject(booksDir string, identifier string) (string, bool) {
	want := u.NormalizeName(identifier)

	entries, err := os.ReadDir(booksDir)
	if err != nil {
		return "", false
	}
	var projects []string
	for _, e := range entries {
		name := e.Name()
		if !e.IsDir() || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		projects = append(projects, name)
	}

	for _, p := range projects {
		if strings.ToLower(p) == want {
			return filepath.Join(booksDir, p), true
		}
	}

	for _, p := range projects {
		if strings.HasPrefix(strings.ToLower(p), want) {
			return filepath.Join(booksDir, p), true
		}
	}

	var matches []string
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p), want) {
			matches = append(matches, p)
		}
	}
	if len(matches) == 1 {
		return filepath.Join(booksDir, matches[0]), true
	}

	return "", false
}
