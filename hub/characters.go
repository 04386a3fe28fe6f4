package hub

import (
	"path/filepath"
	"time"

	"github.com/WintersRain/loom/log"
	"github.com/WintersRain/loom/statestore"
	"github.com/WintersRain/loom/u"
)

// ManifestFile is the cast manifest document inside a characters
// folder. The underscore keeps it sorted apart from character sheets.
const ManifestFile = "_cast_manifest.json"

// ManifestVersion is written into every manifest
const ManifestVersion = 1

// CreateCharactersFolder creates a characters/ subdirectory under
// parentDir (a project or session folder) with an empty cast manifest.
// Idempotent: an existing manifest is left alone.
func CreateCharactersFolder(parentDir string) (string, error) {
	dir := filepath.Join(parentDir, "characters")
	store, err := CharactersStore(dir)
	if err != nil {
		return "", err
	}
	if u.FileExists(filepath.Join(dir, ManifestFile)) {
		return dir, nil
	}
	err = store.Write(ManifestFile, EmptyManifest())
	if err != nil {
		return "", err
	}
	return dir, nil
}

// EmptyManifest returns a manifest with no characters
func EmptyManifest() statestore.Doc {
	return statestore.Doc{
		"version":    ManifestVersion,
		"generated":  time.Now().Format(time.RFC3339),
		"characters": map[string]any{},
	}
}

// AddCharacter records a character under its slug in manifest and
// refreshes the generated timestamp. The manifest is modified in
// place and also returned; persisting it is the caller's move.
func AddCharacter(manifest statestore.Doc, name string, role string) statestore.Doc {
	if manifest == nil {
		manifest = EmptyManifest()
	}
	chars, ok := manifest["characters"].(map[string]any)
	if !ok {
		chars = map[string]any{}
	}
	slug := u.Slugify(name)
	chars[slug] = map[string]any{
		"name":   name,
		"role":   role,
		"status": "active",
		"file":   slug + ".md",
	}
	manifest["characters"] = chars
	manifest["generated"] = time.Now().Format(time.RFC3339)
	return manifest
}

// ReadManifest reads the cast manifest of a characters folder,
// recovering from backups if the live manifest is corrupted
func ReadManifest(charactersDir string) (statestore.Doc, bool, error) {
	store, err := CharactersStore(charactersDir)
	if err != nil {
		return statestore.Doc{}, false, err
	}
	doc, recovered := store.ReadWithRecovery(ManifestFile)
	if recovered {
		log.Event("manifest_recovered", "dir", charactersDir)
	}
	return doc, recovered, nil
}
