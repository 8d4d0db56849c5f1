package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ulikunitz/xz"

	"github.com/scriptorium-project/scriptorium/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// teiDoc builds a minimal edition with book divisions and numbered lines.
func teiDoc(urn, lang, title, author string, books, linesPerBook int) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	b.WriteString(`<TEI xmlns="http://www.tei-c.org/ns/1.0">` + "\n")
	b.WriteString("<teiHeader><fileDesc><titleStmt>\n")
	fmt.Fprintf(&b, "<title>%s</title><author>%s</author>\n", title, author)
	b.WriteString("</titleStmt></fileDesc></teiHeader>\n")
	b.WriteString("<text><body>\n")
	fmt.Fprintf(&b, `<div type="edition" n="%s" xml:lang="%s">`+"\n", urn, lang)
	for book := 1; book <= books; book++ {
		fmt.Fprintf(&b, `<div type="textpart" subtype="book" n="%d">`+"\n", book)
		for line := 1; line <= linesPerBook; line++ {
			fmt.Fprintf(&b, `<l n="%d">book %d line %d</l>`+"\n", line, book, line)
		}
		b.WriteString("</div>\n")
	}
	b.WriteString("</div>\n</body></text></TEI>\n")
	return b.String()
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestRunMixedCorpus(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()

	// Scanned in lexical order: the well-formed edition first, then a file
	// carrying the same URN, then one that is not XML at all.
	writeFile(t, root, "a_iliad.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 2, 5))
	writeFile(t, root, "b_duplicate.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 1, 3))
	writeFile(t, root, "c_malformed.xml", "<TEI><unclosed")

	stats, err := New(s).Run(root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.RunID == "" {
		t.Error("expected a run ID")
	}
	if stats.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", stats.Inserted)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1", stats.Skipped)
	}
	if stats.Errors != 1 {
		t.Errorf("Errors = %d, want 1", stats.Errors)
	}
	if stats.TotalSegments != 10 {
		t.Errorf("TotalSegments = %d, want 10", stats.TotalSegments)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Texts != 1 || st.Segments != 10 {
		t.Errorf("store has %d texts / %d segments, want 1 / 10", st.Texts, st.Segments)
	}
}

func TestRunIdempotent(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()
	writeFile(t, root, "iliad.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 1, 4))

	first, err := New(s).Run(root, Options{})
	if err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	if first.Inserted != 1 {
		t.Fatalf("first run Inserted = %d, want 1", first.Inserted)
	}

	second, err := New(s).Run(root, Options{})
	if err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	if second.Inserted != 0 {
		t.Errorf("second run Inserted = %d, want 0", second.Inserted)
	}
	if second.Skipped != first.Inserted {
		t.Errorf("second run Skipped = %d, want %d", second.Skipped, first.Inserted)
	}
}

func TestRunForceReplaces(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()
	writeFile(t, root, "iliad.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 2, 3))
	writeFile(t, root, "odyssey.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg002.perseus-grc2", "grc", "Odyssey", "Homer", 1, 3))

	if _, err := New(s).Run(root, Options{}); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}

	stats, err := New(s).Run(root, Options{Force: true})
	if err != nil {
		t.Fatalf("forced Run failed: %v", err)
	}
	if stats.Inserted != 2 {
		t.Errorf("forced run Inserted = %d, want 2", stats.Inserted)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Texts != 2 {
		t.Errorf("store has %d texts after force, want 2", st.Texts)
	}
	if st.Segments != 9 {
		t.Errorf("store has %d segments after force, want 9 (no orphans)", st.Segments)
	}
}

func TestRunLimit(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()
	for i := 1; i <= 3; i++ {
		urn := fmt.Sprintf("urn:cts:greekLit:tlg0012.tlg%03d.perseus-grc2", i)
		writeFile(t, root, fmt.Sprintf("doc%d.xml", i), teiDoc(urn, "grc", "Work", "Homer", 1, 2))
	}

	stats, err := New(s).Run(root, Options{Limit: 1})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", stats.Inserted)
	}
}

func TestRunMissingRoot(t *testing.T) {
	s := openTestStore(t)

	stats, err := New(s).Run(filepath.Join(t.TempDir(), "does-not-exist"), Options{})
	if err != nil {
		t.Fatalf("missing root should not be fatal, got: %v", err)
	}
	if stats.Inserted != 0 || stats.Skipped != 0 || stats.Errors != 0 || stats.TotalSegments != 0 {
		t.Errorf("expected all-zero stats, got %+v", stats)
	}
}

func TestRunLanguageFilter(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()
	writeFile(t, root, "greek.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 1, 2))
	writeFile(t, root, "latin.xml",
		teiDoc("urn:cts:latinLit:phi0690.phi003.perseus-lat2", "lat", "Aeneid", "Vergil", 1, 2))

	stats, err := New(s).Run(root, Options{Languages: []string{"grc"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", stats.Inserted)
	}
	if stats.Filtered != 1 {
		t.Errorf("Filtered = %d, want 1", stats.Filtered)
	}
	if _, err := s.GetText("urn:cts:latinLit:phi0690.phi003.perseus-lat2"); err == nil {
		t.Error("filtered text should not be in the store")
	}
}

func TestRunCheckpoints(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()
	for i := 1; i <= 5; i++ {
		urn := fmt.Sprintf("urn:cts:greekLit:tlg0012.tlg%03d.perseus-grc2", i)
		writeFile(t, root, fmt.Sprintf("doc%d.xml", i), teiDoc(urn, "grc", "Work", "Homer", 1, 2))
	}

	// BatchSize 2 forces checkpoint commits mid-run plus a final partial one.
	stats, err := New(s).Run(root, Options{BatchSize: 2})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Inserted != 5 {
		t.Errorf("Inserted = %d, want 5", stats.Inserted)
	}
	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Texts != 5 || st.Segments != 10 {
		t.Errorf("store has %d texts / %d segments, want 5 / 10", st.Texts, st.Segments)
	}
}

func TestRunCompressedDocument(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()

	doc := teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 1, 3)
	var compressed strings.Builder
	w, err := xz.NewWriter(&compressed)
	if err != nil {
		t.Fatalf("xz.NewWriter failed: %v", err)
	}
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("xz write failed: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("xz close failed: %v", err)
	}
	writeFile(t, root, "iliad.xml.xz", compressed.String())

	stats, err := New(s).Run(root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Inserted != 1 || stats.TotalSegments != 3 {
		t.Errorf("Inserted = %d, TotalSegments = %d, want 1 and 3", stats.Inserted, stats.TotalSegments)
	}
}

func TestClear(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()
	writeFile(t, root, "iliad.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 1, 3))

	r := New(s)
	if _, err := r.Run(root, Options{}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if err := r.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	st, err := s.Stats()
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if st.Texts != 0 || st.Segments != 0 {
		t.Errorf("store has %d texts / %d segments after clear, want 0 / 0", st.Texts, st.Segments)
	}
}

func TestStartup(t *testing.T) {
	s := openTestStore(t)
	root := t.TempDir()
	writeFile(t, root, "iliad.xml",
		teiDoc("urn:cts:greekLit:tlg0012.tlg001.perseus-grc2", "grc", "Iliad", "Homer", 1, 2))

	result := <-Startup(New(s), root, Options{})
	if result.Err != nil {
		t.Fatalf("Startup run failed: %v", result.Err)
	}
	if result.Stats.Inserted != 1 {
		t.Errorf("Inserted = %d, want 1", result.Stats.Inserted)
	}
}
