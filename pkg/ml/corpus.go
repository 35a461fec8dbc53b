package ml

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Example is one labeled training row. Text is newline-normalized and
// truncated before it reaches the store.
type Example struct {
	Text       string
	Label      int // 1 = fraud, 0 = safe
	ThreatCode string
	Score      int
	Timestamp  time.Time
}

const maxExampleTextLen = 500

var (
	pendingHeader = []string{"text", "label", "threat_type", "score", "timestamp"}
	corpusHeader  = []string{"text", "label", "threat_type"}
)

// CorpusStore owns the two tabular stores: the append-only pending file of
// not-yet-merged examples, and the permanent training corpus. Callers must
// serialize writes (the Learner holds its mutex across append+increment).
type CorpusStore struct {
	pendingPath string
	corpusPath  string
}

// NewCorpusStore creates a store over the given file paths.
func NewCorpusStore(pendingPath, corpusPath string) *CorpusStore {
	return &CorpusStore{pendingPath: pendingPath, corpusPath: corpusPath}
}

// CleanText normalizes example text for storage: newlines collapsed to
// spaces, truncated to the storage limit.
func CleanText(text string) string {
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	runes := []rune(text)
	if len(runes) > maxExampleTextLen {
		return string(runes[:maxExampleTextLen])
	}
	return text
}

// AppendPending appends one example to the pending store, creating it with
// a header row when missing.
func (s *CorpusStore) AppendPending(ex Example) error {
	if err := os.MkdirAll(filepath.Dir(s.pendingPath), 0o755); err != nil {
		return err
	}

	_, statErr := os.Stat(s.pendingPath)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.pendingPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(pendingHeader); err != nil {
			return err
		}
	}
	row := []string{
		CleanText(ex.Text),
		strconv.Itoa(ex.Label),
		ex.ThreatCode,
		strconv.Itoa(ex.Score),
		ex.Timestamp.Format(time.RFC3339),
	}
	if err := w.Write(row); err != nil {
		return err
	}
	w.Flush()
	return w.Error()
}

// PendingCount returns the number of pending examples on disk (rows minus
// header). A missing file counts as zero.
func (s *CorpusStore) PendingCount() (int, error) {
	rows, err := readCSV(s.pendingPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return len(rows) - 1, nil
}

// Merge appends every pending example to the permanent corpus and then
// removes the pending store. The corpus append is synced to disk before the
// pending file is renamed away, so a crash in the window duplicates pending
// rows at most once and never loses them.
func (s *CorpusStore) Merge() (int, error) {
	rows, err := readCSV(s.pendingPath)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read pending: %w", err)
	}
	if len(rows) <= 1 {
		_ = os.Remove(s.pendingPath)
		return 0, nil
	}
	pending := rows[1:]

	_, statErr := os.Stat(s.corpusPath)
	isNew := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.corpusPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return 0, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if isNew {
		if err := w.Write(corpusHeader); err != nil {
			return 0, err
		}
	}
	for _, row := range pending {
		if len(row) < 3 {
			continue
		}
		if err := w.Write(row[:3]); err != nil {
			return 0, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return 0, err
	}
	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("sync corpus: %w", err)
	}

	// Atomic removal: once renamed, the pending store is gone even if the
	// final delete is interrupted.
	tombstone := s.pendingPath + ".merged"
	if err := os.Rename(s.pendingPath, tombstone); err != nil {
		return 0, fmt.Errorf("remove pending: %w", err)
	}
	_ = os.Remove(tombstone)

	return len(pending), nil
}

// ReadCorpus loads the permanent training corpus.
func (s *CorpusStore) ReadCorpus() ([]Example, error) {
	rows, err := readCSV(s.corpusPath)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	var examples []Example
	for i, row := range rows {
		if i == 0 || len(row) < 2 {
			continue
		}
		label, err := strconv.Atoi(strings.TrimSpace(row[1]))
		if err != nil {
			continue
		}
		ex := Example{Text: row[0], Label: label}
		if len(row) >= 3 {
			ex.ThreatCode = row[2]
		}
		examples = append(examples, ex)
	}
	return examples, nil
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}
