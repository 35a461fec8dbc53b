// Package analyzer orchestrates one message analysis end to end: rule
// scoring, deep link scanning, the optional classifier and judgment
// signals, fusion into one final score, and the user-facing verdict.
package analyzer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"unicode"

	"github.com/aman-security/aman/pkg/analytics"
	"github.com/aman-security/aman/pkg/config"
	"github.com/aman-security/aman/pkg/fusion"
	"github.com/aman-security/aman/pkg/links"
	"github.com/aman-security/aman/pkg/ml"
	"github.com/aman-security/aman/pkg/rules"
)

// A per-link combined risk at or above this folds the link's warning into
// the message-level flags.
const linkFlagRisk = 30

// LinkSummary is the link section of an analysis result.
type LinkSummary struct {
	Total     int                 `json:"total"`
	Dangerous int                 `json:"dangerous"`
	Summary   string              `json:"summary"`
	Details   []*links.LinkResult `json:"details"`
}

// Details exposes the raw per-signal scores that went into fusion.
type Details struct {
	RuleScore int `json:"rule_score"`
	MLScore   int `json:"ml_score"`
	AIScore   int `json:"ai_score"`
	LinkRisk  int `json:"link_risk"`
}

// Result is the full analysis verdict for one message.
type Result struct {
	RiskScore      int            `json:"risk_score"`
	ThreatType     string         `json:"threat_type"`
	Flags          []rules.Flag   `json:"flags"`
	Actions        []rules.Action `json:"actions"`
	Advice         string         `json:"advice"`
	Links          LinkSummary    `json:"links"`
	Details        Details        `json:"analysis_details"`
	LearningStatus string         `json:"learning_status"`
}

// Analyzer wires the risk signals together. The classifier and judge are
// optional: an untrained classifier and a nil judge simply drop their
// signals from fusion.
type Analyzer struct {
	scanner   *links.Scanner
	clf       *ml.Classifier
	judge     *ml.Judge
	learner   *ml.Learner
	analytics *analytics.Store
}

// New creates an analyzer over the given components. judge may be nil.
func New(scanner *links.Scanner, clf *ml.Classifier, judge *ml.Judge, learner *ml.Learner, stats *analytics.Store) *Analyzer {
	return &Analyzer{
		scanner:   scanner,
		clf:       clf,
		judge:     judge,
		learner:   learner,
		analytics: stats,
	}
}

// Analyze runs the full pipeline over one message. The deep link scan and
// the judgment call run concurrently; the rule and classifier signals are
// local and cheap. The result always comes back non-nil even when every
// optional signal is absent.
func (a *Analyzer) Analyze(ctx context.Context, text string) *Result {
	ruleScore := rules.Score(text)
	threatType := rules.ThreatType(text)
	flags := rules.Flags(text)

	var (
		wg         sync.WaitGroup
		linkReport *links.DeepReport
		aiScore    int
		aiOK       bool
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		linkReport = a.scanner.ScanDeep(ctx, text)
	}()

	if a.judge != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			score, err := a.judge.Score(ctx, text)
			if err != nil {
				log.Printf("[Analyzer] Judgment unavailable: %v", err)
				return
			}
			aiScore = score
			aiOK = true
		}()
	}

	mlScore := 0
	caps := fusion.Capability(0)
	if a.clf.IsTrained() {
		mlScore = a.clf.Predict(text).RiskScore
		caps |= fusion.CapClassifier
	}

	wg.Wait()
	if aiOK {
		caps |= fusion.CapJudgment
	}

	final := fusion.Fuse(fusion.Signals{
		RuleScore:       ruleScore,
		ClassifierScore: mlScore,
		JudgmentScore:   aiScore,
		LinkRisk:        linkReport.OverallRisk,
		Capabilities:    caps,
	}, linkReport.URLs)

	flags = append(flags, linkFlags(linkReport.URLs)...)

	advice := rules.Advice(final, text)
	if prefix := fieldAdvicePrefix(linkReport.URLs); prefix != "" {
		advice = prefix + advice
	}

	a.analytics.Record(final, threatType)

	status := ""
	if retrained, err := a.learner.Record(ml.CleanText(text), final, rules.ThreatCode(threatType)); err != nil {
		log.Printf("[Analyzer] Could not record training example: %v", err)
	} else if retrained {
		status = "✓ تم إعادة تدريب النموذج"
	} else {
		status = fmt.Sprintf("تم حفظ (%d/%d)", a.learner.PendingCount(), a.learner.Threshold())
	}

	return &Result{
		RiskScore:  final,
		ThreatType: threatType,
		Flags:      flags,
		Actions:    rules.Actions(final, flags),
		Advice:     advice,
		Links: LinkSummary{
			Total:     linkReport.TotalURLs,
			Dangerous: linkReport.DangerousURLs,
			Summary:   linkReport.Summary,
			Details:   linkReport.URLs,
		},
		Details: Details{
			RuleScore: ruleScore,
			MLScore:   mlScore,
			AIScore:   aiScore,
			LinkRisk:  linkReport.OverallRisk,
		},
		LearningStatus: status,
	}
}

// linkFlags folds risky links into the message-level warning list, one flag
// per link at or above the fold threshold.
func linkFlags(results []*links.LinkResult) []rules.Flag {
	var flags []rules.Flag
	for _, r := range results {
		if r.RiskScore < linkFlagRisk {
			continue
		}
		severity := "high"
		if r.RiskScore >= config.HighRisk {
			severity = "critical"
		}
		flags = append(flags, rules.Flag{
			Icon:        "🔗",
			Title:       fmt.Sprintf("رابط: %s", truncate(r.Domain, 30)),
			Description: r.ContentSummary,
			Severity:    severity,
		})
	}
	return flags
}

// fieldAdvicePrefix warns about the specific data fields a scanned page
// asks for, prepended to the general advice line. The first link with
// detected fields wins; at most three fields are named, icon labels
// stripped.
func fieldAdvicePrefix(results []*links.LinkResult) string {
	for _, r := range results {
		if len(r.FieldsDetected) == 0 {
			continue
		}
		fields := r.FieldsDetected
		if len(fields) > 3 {
			fields = fields[:3]
		}
		names := make([]string, 0, len(fields))
		for _, f := range fields {
			names = append(names, stripLabelIcon(f))
		}
		return fmt.Sprintf("⚠️ الرابط يطلب: %s! ", strings.Join(names, "، "))
	}
	return ""
}

// stripLabelIcon drops the leading icon from a field label, keeping the
// plain name.
func stripLabelIcon(label string) string {
	runes := []rune(label)
	for i, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return string(runes[i:])
		}
	}
	return label
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
