// Package ml holds the trainable fraud classifier, the training corpus
// stores, the continuous learning loop and the external judgment client.
package ml

import (
	"encoding/gob"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/navossoc/bayesian"
	"golang.org/x/text/unicode/norm"
)

// Corpus classes for the naive Bayes model.
const (
	ClassSafe  bayesian.Class = "safe"
	ClassFraud bayesian.Class = "fraud"
)

// Prediction is the classifier's verdict on one message.
type Prediction struct {
	IsFraud          bool    `json:"is_fraud"`
	Confidence       float64 `json:"confidence"`
	FraudProbability float64 `json:"fraud_probability"`
	RiskScore        int     `json:"risk_score"`
}

// TrainReport summarizes one training run.
type TrainReport struct {
	TrainSize int     `json:"train_size"`
	TestSize  int     `json:"test_size"`
	Accuracy  float64 `json:"accuracy"`
}

// vectorizerState is the feature-transform artifact persisted next to the
// model: corpus statistics the transform was fit on, reloaded wholesale.
type vectorizerState struct {
	TrainedAt time.Time
	Examples  int
	FraudDocs int
	SafeDocs  int
}

// Classifier wraps a TF-IDF naive Bayes model behind a read-mostly lock.
// Predict runs under a read lock; a successful retrain swaps the model and
// its transform state in one critical section, so concurrent predictors
// never observe a half-updated model.
type Classifier struct {
	mu             sync.RWMutex
	model          *bayesian.Classifier
	state          vectorizerState
	trained        bool
	modelPath      string
	vectorizerPath string
}

// NewClassifier creates an untrained classifier persisting to the given
// artifact paths.
func NewClassifier(modelPath, vectorizerPath string) *Classifier {
	return &Classifier{
		modelPath:      modelPath,
		vectorizerPath: vectorizerPath,
	}
}

// IsTrained reports whether a model is currently loaded. An untrained
// classifier contributes a zero score and is excluded from fusion weights.
func (c *Classifier) IsTrained() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.trained
}

// Tokenize normalizes a message into classifier tokens: NFC normalization
// (Arabic arrives in mixed composition forms), casefold, split on anything
// that is not a letter or digit, single-character tokens dropped.
func Tokenize(text string) []string {
	text = norm.NFC.String(strings.ToLower(text))
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// Train fits a fresh model on the given examples and, on success, persists
// both artifacts and atomically swaps them into service. The live model
// keeps serving predictions until the swap. The corpus must contain at
// least one example of each class.
func (c *Classifier) Train(examples []Example) (*TrainReport, error) {
	var fraud, safe int
	for _, ex := range examples {
		if ex.Label == 1 {
			fraud++
		} else {
			safe++
		}
	}
	if fraud == 0 || safe == 0 {
		return nil, fmt.Errorf("corpus needs both classes: %d fraud, %d safe", fraud, safe)
	}

	report := &TrainReport{TrainSize: len(examples)}

	// Deterministic held-out evaluation when the corpus is large enough:
	// every 5th example forms the test set, then the final model is fit on
	// the full corpus.
	if len(examples) >= 25 {
		var trainSet, testSet []Example
		for i, ex := range examples {
			if i%5 == 4 {
				testSet = append(testSet, ex)
			} else {
				trainSet = append(trainSet, ex)
			}
		}
		if evalModel, err := fit(trainSet); err == nil {
			correct := 0
			for _, ex := range testSet {
				if predictLabel(evalModel, ex.Text) == ex.Label {
					correct++
				}
			}
			report.TrainSize = len(trainSet)
			report.TestSize = len(testSet)
			report.Accuracy = float64(correct) / float64(len(testSet))
		}
	}

	model, err := fit(examples)
	if err != nil {
		return nil, err
	}

	state := vectorizerState{
		TrainedAt: time.Now(),
		Examples:  len(examples),
		FraudDocs: fraud,
		SafeDocs:  safe,
	}
	if err := persist(model, state, c.modelPath, c.vectorizerPath); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.model = model
	c.state = state
	c.trained = true
	c.mu.Unlock()

	return report, nil
}

// Predict scores a message with the current model. An untrained classifier
// returns the zero prediction rather than an error.
func (c *Classifier) Predict(text string) *Prediction {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p := &Prediction{}
	if !c.trained {
		return p
	}
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return p
	}

	// Class index order matches the constructor: 0 = safe, 1 = fraud.
	scores, likely, _ := c.model.ProbScores(tokens)
	p.IsFraud = likely == 1
	p.Confidence = scores[likely]
	p.FraudProbability = scores[1]
	p.RiskScore = int(scores[1] * 100)
	return p
}

// Load reloads both artifacts from disk, replacing the live model wholesale.
func (c *Classifier) Load() error {
	model, err := bayesian.NewClassifierFromFile(c.modelPath)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	var state vectorizerState
	f, err := os.Open(c.vectorizerPath)
	if err != nil {
		return fmt.Errorf("load vectorizer: %w", err)
	}
	defer f.Close()
	if err := gob.NewDecoder(f).Decode(&state); err != nil {
		return fmt.Errorf("decode vectorizer: %w", err)
	}

	c.mu.Lock()
	c.model = model
	c.state = state
	c.trained = true
	c.mu.Unlock()
	return nil
}

// State returns the transform statistics of the live model.
func (c *Classifier) State() (trainedAt time.Time, examples int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.TrainedAt, c.state.Examples
}

func fit(examples []Example) (*bayesian.Classifier, error) {
	model := bayesian.NewClassifierTfIdf(ClassSafe, ClassFraud)
	for _, ex := range examples {
		tokens := Tokenize(ex.Text)
		if len(tokens) == 0 {
			continue
		}
		if ex.Label == 1 {
			model.Learn(tokens, ClassFraud)
		} else {
			model.Learn(tokens, ClassSafe)
		}
	}
	model.ConvertTermsFreqToTfIdf()
	return model, nil
}

func predictLabel(model *bayesian.Classifier, text string) int {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return 0
	}
	_, likely, _ := model.ProbScores(tokens)
	return likely
}

func persist(model *bayesian.Classifier, state vectorizerState, modelPath, vectorizerPath string) error {
	if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
		return err
	}
	if err := model.WriteToFile(modelPath); err != nil {
		return fmt.Errorf("save model: %w", err)
	}

	f, err := os.Create(vectorizerPath)
	if err != nil {
		return fmt.Errorf("save vectorizer: %w", err)
	}
	defer f.Close()
	if err := gob.NewEncoder(f).Encode(state); err != nil {
		return fmt.Errorf("encode vectorizer: %w", err)
	}
	return nil
}
