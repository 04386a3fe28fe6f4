package statestore

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	s, err := New(filepath.Join(t.TempDir(), "state"))
	if err != nil {
		t.Fatalf("New failed with '%s'", err)
	}
	// keep test output clean
	s.Logf = func(format string, args ...any) {}
	return s
}

func mustWrite(t *testing.T, s *Store, name string, doc Doc) {
	if err := s.Write(name, doc); err != nil {
		t.Fatalf("Write(%s) failed with '%s'", name, err)
	}
}

func mustRead(t *testing.T, s *Store, name string) Doc {
	doc, err := s.Read(name)
	if err != nil {
		t.Fatalf("Read(%s) failed with '%s'", name, err)
	}
	return doc
}

func corruptFile(t *testing.T, path string) {
	if err := os.WriteFile(path, []byte(`{"active_proj`), 0644); err != nil {
		t.Fatalf("corruptFile failed with '%s'", err)
	}
}

func TestWriteRead(t *testing.T) {
	s := newTestStore(t)
	doc := Doc{
		"active_project": "halcyon",
		"mode":           "book",
		"last_position":  map[string]any{"chapter": float64(3), "scene": "confrontation"},
	}
	mustWrite(t, s, "session.json", doc)
	got := mustRead(t, s, "session.json")
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("expected %#v, got %#v", doc, got)
	}
}

func TestReadMissingIsFreshStart(t *testing.T) {
	s := newTestStore(t)

	doc := mustRead(t, s, "never-written.json")
	if len(doc) != 0 {
		t.Fatalf("expected empty doc, got %#v", doc)
	}

	doc, recovered := s.ReadWithRecovery("never-written.json")
	if len(doc) != 0 || recovered {
		t.Fatalf("expected empty doc and recovered=false, got %#v, %v", doc, recovered)
	}

	// neither call may create a file
	if _, err := os.Stat(s.docPath("never-written.json")); err == nil {
		t.Fatal("read created a file")
	}
}

func TestReadCorruptedSwallowed(t *testing.T) {
	s := newTestStore(t)
	corruptFile(t, s.docPath("session.json"))

	doc, err := s.Read("session.json")
	if err == nil {
		t.Fatal("expected a diagnostic error")
	}
	if doc == nil || len(doc) != 0 {
		t.Fatalf("expected usable empty doc, got %#v", doc)
	}
}

func TestBadDocumentName(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"", "../escape.json", "a/b.json", `a\b.json`} {
		if err := s.Write(name, Doc{}); err == nil {
			t.Errorf("Write(%q): expected an error", name)
		}
	}
}

func TestFailedWriteKeepsOldDocument(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, "session.json", Doc{"active_project": "halcyon"})

	// channels are not JSON-serializable so this attempt must fail
	// before touching the live file
	err := s.Write("session.json", Doc{"bad": make(chan int)})
	if err == nil {
		t.Fatal("expected write to fail")
	}

	got := mustRead(t, s, "session.json")
	if got["active_project"] != "halcyon" {
		t.Fatalf("old document was damaged: %#v", got)
	}
}

func TestNewIsIdempotent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scope")
	for i := 0; i < 3; i++ {
		if _, err := New(dir); err != nil {
			t.Fatalf("New attempt %d failed with '%s'", i, err)
		}
	}
}

func TestScopesAreIndependent(t *testing.T) {
	root := t.TempDir()
	hub, err := New(filepath.Join(root, "hub"))
	if err != nil {
		t.Fatalf("New failed with '%s'", err)
	}
	project, err := New(filepath.Join(root, "project"))
	if err != nil {
		t.Fatalf("New failed with '%s'", err)
	}
	hub.Logf = func(format string, args ...any) {}
	project.Logf = func(format string, args ...any) {}

	mustWrite(t, hub, "session.json", Doc{"scope": "hub"})
	mustWrite(t, project, "session.json", Doc{"scope": "project"})

	if got := mustRead(t, hub, "session.json"); got["scope"] != "hub" {
		t.Fatalf("hub scope bled: %#v", got)
	}
	if got := mustRead(t, project, "session.json"); got["scope"] != "project" {
		t.Fatalf("project scope bled: %#v", got)
	}
}

// the scenario from the recovery design: write, truncate the live
// file, expect the previous content back
func TestRecoveryScenario(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, "session.json", Doc{"active_project": "halcyon"})
	// second write so slot 1 holds the same generation we expect back
	mustWrite(t, s, "session.json", Doc{"active_project": "halcyon"})

	// truncate the live file
	if err := os.WriteFile(s.docPath("session.json"), []byte(`{"active`), 0644); err != nil {
		t.Fatalf("truncate failed with '%s'", err)
	}

	doc, recovered := s.ReadWithRecovery("session.json")
	if !recovered {
		t.Fatal("expected recovered=true")
	}
	if doc["active_project"] != "halcyon" {
		t.Fatalf("expected recovered document, got %#v", doc)
	}

	// live file restored: a plain Read now succeeds with same content
	got := mustRead(t, s, "session.json")
	if !reflect.DeepEqual(got, doc) {
		t.Fatalf("restored content differs: %#v vs %#v", got, doc)
	}
}

func TestRecoverySkipsInvalidSlots(t *testing.T) {
	s := newTestStore(t)
	// three generations: slot 2 will hold "gen-1"
	mustWrite(t, s, "doc.json", Doc{"gen": "one"})
	mustWrite(t, s, "doc.json", Doc{"gen": "two"})
	mustWrite(t, s, "doc.json", Doc{"gen": "three"})

	corruptFile(t, s.docPath("doc.json"))
	corruptFile(t, s.backupPath("doc.json", 1))

	doc, recovered := s.ReadWithRecovery("doc.json")
	if !recovered {
		t.Fatal("expected recovered=true")
	}
	if doc["gen"] != "one" {
		t.Fatalf("expected slot 2 content (gen one), got %#v", doc)
	}
}

func TestRecoveryToleratesMissingSlots(t *testing.T) {
	s := newTestStore(t)
	// three generations: slot 1 holds "two", slot 2 holds "one"
	mustWrite(t, s, "doc.json", Doc{"gen": "one"})
	mustWrite(t, s, "doc.json", Doc{"gen": "two"})
	mustWrite(t, s, "doc.json", Doc{"gen": "three"})

	// simulate a crash mid-rotation that lost slot 1, leaving a gap
	if err := os.Remove(s.backupPath("doc.json", 1)); err != nil {
		t.Fatalf("remove failed with '%s'", err)
	}
	corruptFile(t, s.docPath("doc.json"))

	doc, recovered := s.ReadWithRecovery("doc.json")
	if !recovered {
		t.Fatal("expected recovered=true")
	}
	if doc["gen"] != "one" {
		t.Fatalf("expected slot 2 adopted across the gap, got %#v", doc)
	}
}

func TestRecoveryExhausted(t *testing.T) {
	s := newTestStore(t)
	mustWrite(t, s, "doc.json", Doc{"gen": "one"})
	mustWrite(t, s, "doc.json", Doc{"gen": "two"})

	corruptFile(t, s.docPath("doc.json"))
	for i := 1; i <= s.maxBackups(); i++ {
		if _, err := os.Stat(s.backupPath("doc.json", i)); err == nil {
			corruptFile(t, s.backupPath("doc.json", i))
		}
	}

	doc, recovered := s.ReadWithRecovery("doc.json")
	if !recovered {
		t.Fatal("expected recovered=true")
	}
	if len(doc) != 0 {
		t.Fatalf("expected empty doc, got %#v", doc)
	}
}

func TestDiagnosticsGoThroughLogf(t *testing.T) {
	s := newTestStore(t)
	var logged []string
	s.Logf = func(format string, args ...any) {
		logged = append(logged, format)
	}
	corruptFile(t, s.docPath("doc.json"))
	_, _ = s.Read("doc.json")
	if len(logged) == 0 {
		t.Fatal("expected a diagnostic through Logf")
	}
	if !strings.Contains(logged[0], "invalid JSON") {
		t.Fatalf("unexpected diagnostic %q", logged[0])
	}
}
