package ml

import (
	"fmt"
	"log"
	"sync"
	"time"
)

// Label threshold: a message whose final score reaches this is recorded as
// a fraud example.
const fraudLabelScore = 50

// Learner is the continuous learning loop. Every analyzed message becomes a
// labeled pending example; when the pending count reaches the threshold the
// loop merges the pending corpus into the permanent one, retrains the
// classifier and swaps it into service. The count resets only on success.
//
// Known limitation: a crash between the corpus append and the pending-store
// removal inside Merge can duplicate the pending examples once. That is
// acceptable for this learning signal and never loses rows.
type Learner struct {
	mu        sync.Mutex
	store     *CorpusStore
	clf       *Classifier
	threshold int
	cooldown  time.Duration

	pending     int
	lastFailure time.Time
}

// LearningStatus is the externally visible state of the loop.
type LearningStatus struct {
	NewEmailsCount   int    `json:"new_emails_count"`
	RetrainThreshold int    `json:"retrain_threshold"`
	Progress         string `json:"progress"`
	ModelTrained     bool   `json:"model_trained"`
	Message          string `json:"message"`
}

// NewLearner creates the loop. The pending counter resumes from whatever
// the pending store already holds, so a restart does not lose progress.
func NewLearner(store *CorpusStore, clf *Classifier, threshold int, cooldown time.Duration) *Learner {
	if threshold <= 0 {
		threshold = 20
	}
	pending, err := store.PendingCount()
	if err != nil {
		log.Printf("[Learner] Warning: could not count pending examples: %v", err)
		pending = 0
	}
	return &Learner{
		store:     store,
		clf:       clf,
		threshold: threshold,
		cooldown:  cooldown,
		pending:   pending,
	}
}

// Record appends one verdict as a labeled training example and increments
// the pending count. Reaching the threshold triggers a retrain attempt
// before Record returns; a failed attempt arms a cool-down so sustained
// persistence failure does not retrain on every subsequent message.
// Returns whether a retrain ran and succeeded.
func (l *Learner) Record(text string, score int, threatCode string) (retrained bool, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	label := 0
	if score >= fraudLabelScore {
		label = 1
	}
	ex := Example{
		Text:       text,
		Label:      label,
		ThreatCode: threatCode,
		Score:      score,
		Timestamp:  time.Now(),
	}
	if err := l.store.AppendPending(ex); err != nil {
		return false, fmt.Errorf("record example: %w", err)
	}
	l.pending++

	if l.pending < l.threshold {
		return false, nil
	}
	if !l.lastFailure.IsZero() && time.Since(l.lastFailure) < l.cooldown {
		return false, nil
	}

	if _, err := l.retrainLocked(); err != nil {
		log.Printf("[Learner] Automatic retrain failed: %v", err)
		return false, nil
	}
	return true, nil
}

// Retrain runs the merge-then-train-then-swap sequence out-of-band,
// bypassing the failure cool-down. Returns the training report on success.
func (l *Learner) Retrain() (*TrainReport, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.retrainLocked()
}

// retrainLocked merges the pending corpus, retrains on the merged corpus
// and swaps the new model into service. On any failure the previous model
// stays in service and the pending count is left untouched.
func (l *Learner) retrainLocked() (*TrainReport, error) {
	merged, err := l.store.Merge()
	if err != nil {
		l.lastFailure = time.Now()
		return nil, fmt.Errorf("merge corpus: %w", err)
	}
	if merged > 0 {
		log.Printf("[Learner] Merged %d new examples into the training corpus", merged)
	}

	examples, err := l.store.ReadCorpus()
	if err != nil {
		l.lastFailure = time.Now()
		return nil, err
	}

	report, err := l.clf.Train(examples)
	if err != nil {
		l.lastFailure = time.Now()
		return nil, fmt.Errorf("train: %w", err)
	}

	l.pending = 0
	l.lastFailure = time.Time{}
	log.Printf("[Learner] ✓ Retrained on %d examples (accuracy: %.1f%%)",
		len(examples), report.Accuracy*100)
	return report, nil
}

// PendingCount returns the current pending-example count.
func (l *Learner) PendingCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Threshold returns the configured retrain threshold.
func (l *Learner) Threshold() int {
	return l.threshold
}

// Status reports the loop state for the learning-status endpoint.
func (l *Learner) Status() LearningStatus {
	l.mu.Lock()
	pending := l.pending
	l.mu.Unlock()

	remaining := l.threshold - pending
	if remaining < 0 {
		remaining = 0
	}
	return LearningStatus{
		NewEmailsCount:   pending,
		RetrainThreshold: l.threshold,
		Progress:         fmt.Sprintf("%d/%d", pending, l.threshold),
		ModelTrained:     l.clf.IsTrained(),
		Message:          fmt.Sprintf("باقي %d رسالة لإعادة التدريب التلقائي", remaining),
	}
}
