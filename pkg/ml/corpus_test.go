package ml

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *CorpusStore {
	t.Helper()
	dir := t.TempDir()
	return NewCorpusStore(
		filepath.Join(dir, "new_emails.csv"),
		filepath.Join(dir, "training_data.csv"),
	)
}

func TestCleanText(t *testing.T) {
	got := CleanText("سطر أول\nسطر ثاني\r\nثالث")
	if strings.ContainsAny(got, "\n\r") {
		t.Errorf("newlines not collapsed: %q", got)
	}

	long := strings.Repeat("م", 600)
	if n := len([]rune(CleanText(long))); n != 500 {
		t.Errorf("truncated length = %d, want 500", n)
	}
}

func TestAppendPendingAndCount(t *testing.T) {
	store := newTestStore(t)

	count, err := store.PendingCount()
	if err != nil || count != 0 {
		t.Fatalf("empty store count = %d, %v; want 0, nil", count, err)
	}

	for i := range 3 {
		ex := Example{
			Text:       "رسالة تجريبية",
			Label:      i % 2,
			ThreatCode: "phishing",
			Score:      55,
			Timestamp:  time.Now(),
		}
		if err := store.AppendPending(ex); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	count, err = store.PendingCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestMergeMovesPendingIntoCorpus(t *testing.T) {
	store := newTestStore(t)

	examples := []Example{
		{Text: "رسالة احتيال", Label: 1, ThreatCode: "bank_impersonation", Score: 80, Timestamp: time.Now()},
		{Text: "رسالة عادية", Label: 0, ThreatCode: "safe", Score: 5, Timestamp: time.Now()},
	}
	for _, ex := range examples {
		if err := store.AppendPending(ex); err != nil {
			t.Fatal(err)
		}
	}

	merged, err := store.Merge()
	if err != nil {
		t.Fatal(err)
	}
	if merged != 2 {
		t.Errorf("merged = %d, want 2", merged)
	}

	// Pending store is gone, including the rename tombstone.
	if _, err := os.Stat(store.pendingPath); !os.IsNotExist(err) {
		t.Error("pending file still exists after merge")
	}
	if _, err := os.Stat(store.pendingPath + ".merged"); !os.IsNotExist(err) {
		t.Error("merge tombstone left behind")
	}

	corpus, err := store.ReadCorpus()
	if err != nil {
		t.Fatal(err)
	}
	if len(corpus) != 2 {
		t.Fatalf("corpus rows = %d, want 2", len(corpus))
	}
	if corpus[0].Label != 1 || corpus[0].ThreatCode != "bank_impersonation" {
		t.Errorf("corpus[0] = %+v", corpus[0])
	}

	count, _ := store.PendingCount()
	if count != 0 {
		t.Errorf("pending count after merge = %d, want 0", count)
	}
}

func TestMergeAppendsToExistingCorpus(t *testing.T) {
	store := newTestStore(t)

	first := Example{Text: "أولى", Label: 1, ThreatCode: "phishing", Score: 70, Timestamp: time.Now()}
	if err := store.AppendPending(first); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Merge(); err != nil {
		t.Fatal(err)
	}

	second := Example{Text: "ثانية", Label: 0, ThreatCode: "safe", Score: 0, Timestamp: time.Now()}
	if err := store.AppendPending(second); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Merge(); err != nil {
		t.Fatal(err)
	}

	corpus, err := store.ReadCorpus()
	if err != nil {
		t.Fatal(err)
	}
	if len(corpus) != 2 {
		t.Errorf("corpus rows = %d, want 2 (header written once)", len(corpus))
	}
}

func TestMergeEmptyPending(t *testing.T) {
	store := newTestStore(t)

	merged, err := store.Merge()
	if err != nil {
		t.Fatal(err)
	}
	if merged != 0 {
		t.Errorf("merged = %d, want 0", merged)
	}
}
