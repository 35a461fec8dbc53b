// Package fusion combines the independent risk signals - rule score,
// classifier score, judgment score and link risk - into one final 0-100
// score with escalation overrides.
package fusion

import (
	"github.com/aman-security/aman/pkg/links"
)

// Capability is a bitset of the optional signals available for a request.
// Rule score and link risk are always present; the classifier requires a
// trained model and the judgment requires a configured external service.
type Capability uint8

const (
	CapClassifier Capability = 1 << iota
	CapJudgment
)

// Weights is one row of the fusion weight table. Link risk always carries
// substantial weight: a live-verified credential-harvesting page is the
// strongest ground truth available.
type Weights struct {
	Rule       float64
	Classifier float64
	Judgment   float64
	Link       float64
}

// weightTable maps each capability set to its fixed weight vector.
var weightTable = map[Capability]Weights{
	CapClassifier | CapJudgment: {Rule: 0.25, Classifier: 0.25, Judgment: 0.20, Link: 0.30},
	CapClassifier:               {Rule: 0.35, Classifier: 0.30, Link: 0.35},
	CapJudgment:                 {Rule: 0.35, Judgment: 0.25, Link: 0.40},
	0:                           {Rule: 0.50, Link: 0.50},
}

// Escalation override: direct evidence of a credential-harvesting page
// raises the final score to a structural floor, regardless of how the
// weighted blend came out.
const (
	escalationFloor    = 75
	escalationLinkRisk = 50
)

// Signals holds the per-request signal values. Scores for absent
// capabilities are ignored.
type Signals struct {
	RuleScore       int
	ClassifierScore int
	JudgmentScore   int
	LinkRisk        int
	Capabilities    Capability
}

// WeightsFor returns the weight vector for a capability set.
func WeightsFor(caps Capability) Weights {
	return weightTable[caps&(CapClassifier|CapJudgment)]
}

// Fuse computes the final message score: the capped weighted sum of the
// available signals, then the escalation override. If any analyzed link is
// a payment or login page with its own risk at or above 50, the final score
// is raised to at least 75 - a floor, not an additive bump.
func Fuse(sig Signals, linkResults []*links.LinkResult) int {
	w := WeightsFor(sig.Capabilities)

	base := int(float64(sig.RuleScore)*w.Rule +
		float64(sig.ClassifierScore)*w.Classifier +
		float64(sig.JudgmentScore)*w.Judgment +
		float64(sig.LinkRisk)*w.Link)
	final := clamp(base)

	for _, r := range linkResults {
		if r.ContentType != links.ContentPayment && r.ContentType != links.ContentLogin {
			continue
		}
		if r.RiskScore >= escalationLinkRisk {
			if final < escalationFloor {
				final = escalationFloor
			}
			break
		}
	}
	return clamp(final)
}

func clamp(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
