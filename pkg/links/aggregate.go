package links

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/aman-security/aman/pkg/config"
)

// Scan caps: the deep path performs live fetches and is limited to the first
// 5 candidates; the syntax-only fast path takes 10 and touches no network.
const (
	DeepScanLimit = 5
	FastScanLimit = 10
)

// A combined per-URL risk at or above this counts as a dangerous link.
const dangerousLinkRisk = 50

// LinkResult is the full per-URL verdict: the syntax and content verdicts
// merged, with a combined capped risk score and a categorical label.
type LinkResult struct {
	URL               string      `json:"url"`
	Domain            string      `json:"domain"`
	RiskScore         int         `json:"risk_score"`
	Verdict           string      `json:"verdict"`
	VerdictClass      string      `json:"verdict_class"`
	IsShortened       bool        `json:"is_shortened"`
	IsSuspiciousTLD   bool        `json:"is_suspicious_tld"`
	Impersonating     string      `json:"impersonating,omitempty"`
	Accessible        bool        `json:"accessible"`
	FinalURL          string      `json:"final_url,omitempty"`
	Redirected        bool        `json:"redirected"`
	PageTitle         string      `json:"page_title,omitempty"`
	ContentType       ContentType `json:"content_type,omitempty"`
	FieldsDetected    []string    `json:"fields_detected"`
	ArabicDescription string      `json:"arabic_description"`
	ContentSummary    string      `json:"content_summary"`
	Flags             []string    `json:"flags"`
}

// DeepReport aggregates the deep scan of every URL in a message.
type DeepReport struct {
	TotalURLs     int           `json:"total_urls"`
	DangerousURLs int           `json:"dangerous_urls"`
	URLs          []*LinkResult `json:"urls"`
	OverallRisk   int           `json:"overall_risk"`
	Summary       string        `json:"summary"`
}

// FastReport aggregates the syntax-only scan. No network calls are made.
type FastReport struct {
	TotalURLs     int              `json:"total_urls"`
	DangerousURLs int              `json:"dangerous_urls"`
	URLs          []*SyntaxVerdict `json:"urls"`
	OverallRisk   int              `json:"overall_risk"`
}

// Scanner runs the syntactic and content analyzers over message URLs.
type Scanner struct {
	tables  *RiskTables
	content *ContentAnalyzer
}

// NewScanner creates a scanner over the given risk tables and content analyzer.
func NewScanner(tables *RiskTables, content *ContentAnalyzer) *Scanner {
	if tables == nil {
		tables = DefaultTables()
	}
	return &Scanner{tables: tables, content: content}
}

// Tables exposes the loaded risk tables.
func (s *Scanner) Tables() *RiskTables {
	return s.tables
}

// AnalyzeLink runs the full per-URL analysis: syntax plus live content.
// The combined risk is the capped sum of the two verdicts.
func (s *Scanner) AnalyzeLink(ctx context.Context, rawURL string) *LinkResult {
	syntax := AnalyzeSyntax(rawURL, s.tables)
	content := s.content.FetchAndClassify(ctx, rawURL)

	total := syntax.RiskScore + content.RiskScore
	if total > 100 {
		total = 100
	}

	verdict, class := verdictFor(total)

	flags := make([]string, 0, len(syntax.Flags)+len(content.Flags))
	flags = append(flags, syntax.Flags...)
	flags = append(flags, content.Flags...)

	return &LinkResult{
		URL:               rawURL,
		Domain:            syntax.Domain,
		RiskScore:         total,
		Verdict:           verdict,
		VerdictClass:      class,
		IsShortened:       syntax.IsShortened,
		IsSuspiciousTLD:   syntax.IsSuspiciousTLD,
		Impersonating:     syntax.Impersonating,
		Accessible:        content.Accessible,
		FinalURL:          content.FinalURL,
		Redirected:        content.Redirected,
		PageTitle:         content.PageTitle,
		ContentType:       content.ContentType,
		FieldsDetected:    content.FieldsDetected,
		ArabicDescription: content.ArabicDescription,
		ContentSummary:    content.ContentSummary,
		Flags:             flags,
	}
}

// ScanDeep extracts every URL from the text and runs the full analysis over
// the first DeepScanLimit of them, fetches running concurrently. The overall
// risk is the maximum per-URL combined risk - never an average, so a single
// dangerous link is not diluted by benign ones.
func (s *Scanner) ScanDeep(ctx context.Context, text string) *DeepReport {
	urls := ExtractURLs(text)
	if len(urls) == 0 {
		return &DeepReport{URLs: []*LinkResult{}, Summary: "لا توجد روابط"}
	}

	scanned := urls
	if len(scanned) > DeepScanLimit {
		scanned = scanned[:DeepScanLimit]
	}

	results := make([]*LinkResult, len(scanned))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(DeepScanLimit)
	for i, u := range scanned {
		g.Go(func() error {
			results[i] = s.AnalyzeLink(gctx, u)
			return nil
		})
	}
	// Workers never return errors; each fetch degrades to a soft verdict.
	_ = g.Wait()

	report := &DeepReport{
		TotalURLs: len(urls),
		URLs:      results,
	}
	for _, r := range results {
		if r.RiskScore > report.OverallRisk {
			report.OverallRisk = r.RiskScore
		}
		if r.RiskScore >= dangerousLinkRisk {
			report.DangerousURLs++
		}
	}

	switch {
	case report.DangerousURLs > 0:
		report.Summary = fmt.Sprintf("🚨 تم اكتشاف %d رابط خطير!", report.DangerousURLs)
	case report.OverallRisk >= config.MediumRisk:
		report.Summary = "⚠️ بعض الروابط مشبوهة"
	default:
		report.Summary = "✅ الروابط تبدو آمنة"
	}
	return report
}

// ScanFast scores up to FastScanLimit URLs from their text alone.
func (s *Scanner) ScanFast(text string) *FastReport {
	urls := ExtractURLs(text)
	if len(urls) == 0 {
		return &FastReport{URLs: []*SyntaxVerdict{}}
	}

	scanned := urls
	if len(scanned) > FastScanLimit {
		scanned = scanned[:FastScanLimit]
	}

	report := &FastReport{TotalURLs: len(urls)}
	for _, u := range scanned {
		v := AnalyzeSyntax(u, s.tables)
		report.URLs = append(report.URLs, v)
		if v.RiskScore > report.OverallRisk {
			report.OverallRisk = v.RiskScore
		}
		if v.RiskScore >= dangerousLinkRisk {
			report.DangerousURLs++
		}
	}
	return report
}

// verdictFor maps a combined risk score to its categorical label.
func verdictFor(score int) (verdict, class string) {
	switch {
	case score >= config.HighRisk:
		return "🚨 خطير جداً - لا تدخل!", "danger"
	case score >= config.MediumRisk:
		return "⚠️ مشبوه - احذر", "warning"
	default:
		return "✅ يبدو آمناً", "safe"
	}
}
