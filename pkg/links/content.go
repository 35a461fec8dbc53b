package links

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aman-security/aman/pkg/httputil"
)

// ContentType classifies what a fetched page is trying to do.
type ContentType string

const (
	ContentNone     ContentType = ""
	ContentLogin    ContentType = "login"
	ContentPayment  ContentType = "payment"
	ContentDownload ContentType = "download"
)

// FetchStatus is the typed outcome of a fetch attempt, so callers can tell
// "page actively resists analysis" apart from "page is clean".
type FetchStatus string

const (
	FetchOK           FetchStatus = "ok"
	FetchHTTPError    FetchStatus = "http_error"
	FetchTimeout      FetchStatus = "timeout"
	FetchNetworkError FetchStatus = "network_error"
)

// Per-signal risk contributions for the content analyzer.
const (
	riskRedirect     = 15
	riskLoginForm    = 30
	riskCardFields   = 50
	riskDownload     = 25
	riskExternalForm = 30
	riskSlowSite     = 10
)

// ContentVerdict is the result of fetching a URL and classifying the live
// page it resolves to. Produced once per fetch attempt; when the page cannot
// be reached most fields stay at their zero values.
type ContentVerdict struct {
	URL                string      `json:"url"`
	Accessible         bool        `json:"accessible"`
	FinalURL           string      `json:"final_url,omitempty"`
	Redirected         bool        `json:"redirected"`
	PageTitle          string      `json:"page_title,omitempty"`
	ContentType        ContentType `json:"content_type,omitempty"`
	HasLoginForm       bool        `json:"has_login_form"`
	HasPasswordField   bool        `json:"has_password_field"`
	HasEmailField      bool        `json:"has_email_field"`
	HasCardFields      bool        `json:"has_card_fields"`
	HasOTPField        bool        `json:"has_otp_field"`
	HasDownloadButton  bool        `json:"has_download_button"`
	FormActionExternal bool        `json:"form_action_external"`
	FieldsDetected     []string    `json:"fields_detected"`
	ArabicDescription  string      `json:"arabic_description"`
	ContentSummary     string      `json:"content_summary"`
	RiskScore          int         `json:"risk_score"`
	Flags              []string    `json:"flags"`
	FetchStatus        FetchStatus `json:"fetch_status"`
}

// fieldKind pairs the attribute keywords identifying an input field kind
// with its user-facing label. Checked in order per input element; each kind
// is recorded at most once per page.
type fieldKind struct {
	key      string
	label    string
	keywords []string
	// typeMatch additionally detects the kind from the input's type attribute
	typeMatch string
}

var fieldKinds = []fieldKind{
	{key: "password", label: "🔑 كلمة مرور", keywords: []string{"password", "pass"}, typeMatch: "password"},
	{key: "email", label: "📧 بريد إلكتروني", keywords: []string{"email", "mail"}, typeMatch: "email"},
	{key: "card", label: "💳 بيانات بطاقة بنكية", keywords: []string{"card", "credit", "cvv", "cvc", "expir", "بطاقة"}},
	{key: "otp", label: "🔢 رمز تحقق OTP", keywords: []string{"otp", "code", "verify", "token", "رمز"}},
	{key: "phone", label: "📱 رقم جوال", keywords: []string{"phone", "mobile", "tel", "جوال"}},
	{key: "national-id", label: "🪪 رقم هوية", keywords: []string{"ssn", "national", "هوية"}},
	{key: "username", label: "👤 اسم مستخدم", keywords: []string{"user", "login", "username"}},
}

var downloadTokens = []string{"download", "تحميل", ".exe", ".apk"}

// ContentAnalyzer fetches URLs and classifies the pages they resolve to.
type ContentAnalyzer struct {
	client  *http.Client
	timeout time.Duration
	sem     *httputil.Semaphore
}

// NewContentAnalyzer creates an analyzer with the given per-fetch timeout.
// The semaphore, when non-nil, bounds in-flight fetches process-wide.
func NewContentAnalyzer(timeout time.Duration, sem *httputil.Semaphore) *ContentAnalyzer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ContentAnalyzer{
		client:  httputil.PageClient(),
		timeout: timeout,
		sem:     sem,
	}
}

// FetchAndClassify performs a redirect-following GET of the URL and, on
// HTTP 200, classifies the page for credential-harvesting intent. Network
// failure never returns an error: a timeout is scored as a small risk bump
// with a slow-site flag, any other failure leaves the verdict in its
// all-false default state with a diagnostic flag.
func (a *ContentAnalyzer) FetchAndClassify(ctx context.Context, rawURL string) *ContentVerdict {
	v := &ContentVerdict{URL: rawURL, FetchStatus: FetchNetworkError}

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if a.sem != nil {
		if err := a.sem.Acquire(ctx); err != nil {
			v.FetchStatus = FetchTimeout
			v.Flags = append(v.Flags, "الموقع بطيء جداً")
			v.RiskScore += riskSlowSite
			finishVerdict(v)
			return v
		}
		defer a.sem.Release()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		v.Flags = append(v.Flags, "تعذر الوصول للموقع")
		finishVerdict(v)
		return v
	}
	req.Header.Set("User-Agent", httputil.BrowserUserAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			v.FetchStatus = FetchTimeout
			v.Flags = append(v.Flags, "الموقع بطيء جداً")
			v.RiskScore += riskSlowSite
		} else {
			v.Flags = append(v.Flags, "تعذر الوصول للموقع")
		}
		finishVerdict(v)
		return v
	}
	defer httputil.DrainAndClose(resp.Body)

	if resp.StatusCode != http.StatusOK {
		v.FetchStatus = FetchHTTPError
		v.Flags = append(v.Flags, fmt.Sprintf("الموقع رجع خطأ: %d", resp.StatusCode))
		finishVerdict(v)
		return v
	}

	v.FetchStatus = FetchOK
	v.Accessible = true
	finalURL := resp.Request.URL.String()
	v.FinalURL = finalURL
	if finalURL != rawURL {
		v.Redirected = true
		v.Flags = append(v.Flags, fmt.Sprintf("تم توجيهك لـ: %s", resp.Request.URL.Host))
		v.RiskScore += riskRedirect
	}

	body, err := httputil.ReadResponseBody(resp.Body, httputil.MaxPageSize)
	if err != nil {
		if isTimeout(err) {
			v.FetchStatus = FetchTimeout
			v.Flags = append(v.Flags, "الموقع بطيء جداً")
			v.RiskScore += riskSlowSite
		} else {
			v.FetchStatus = FetchNetworkError
			v.Flags = append(v.Flags, "تعذر الوصول للموقع")
		}
		finishVerdict(v)
		return v
	}

	a.classify(v, rawURL, body)
	finishVerdict(v)
	return v
}

// classify inspects the fetched HTML for sensitive input fields, page type
// and cross-origin form submission.
func (a *ContentAnalyzer) classify(v *ContentVerdict, rawURL string, body []byte) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		// html.Parse is lenient; hitting this means the body is not HTML at all
		return
	}

	if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
		v.PageTitle = truncateRunes(title, 100)
	}

	doc.Find("input").Each(func(_ int, inp *goquery.Selection) {
		inpType := strings.ToLower(inp.AttrOr("type", ""))
		attrs := strings.ToLower(strings.Join([]string{
			inpType,
			inp.AttrOr("name", ""),
			inp.AttrOr("placeholder", ""),
			inp.AttrOr("id", ""),
		}, " "))

		for _, kind := range fieldKinds {
			if !matchesFieldKind(kind, inpType, attrs) {
				continue
			}
			switch kind.key {
			case "password":
				v.HasPasswordField = true
			case "email":
				v.HasEmailField = true
			case "card":
				v.HasCardFields = true
			case "otp":
				v.HasOTPField = true
			}
			appendUnique(&v.FieldsDetected, kind.label)
		}
	})

	// Page type: later checks overwrite earlier ones (last write wins),
	// while the risk contributions stay additive.
	if v.HasPasswordField {
		v.HasLoginForm = true
		v.ContentType = ContentLogin
		v.RiskScore += riskLoginForm
	}
	if v.HasCardFields {
		v.ContentType = ContentPayment
		v.RiskScore += riskCardFields
	}
	bodyLower := strings.ToLower(string(body))
	for _, token := range downloadTokens {
		if strings.Contains(bodyLower, token) {
			v.HasDownloadButton = true
			v.ContentType = ContentDownload
			v.RiskScore += riskDownload
			break
		}
	}

	// A form posting credentials to a different host than the page itself
	// is the strongest phishing signal.
	pageHost := ""
	if parsed, err := url.Parse(rawURL); err == nil {
		pageHost = parsed.Host
	}
	doc.Find("form").Each(func(_ int, form *goquery.Selection) {
		action := form.AttrOr("action", "")
		if action == "" || strings.HasPrefix(action, "/") || strings.HasPrefix(action, "#") {
			return
		}
		parsedAction, err := url.Parse(action)
		if err != nil {
			return
		}
		if parsedAction.Host != "" && parsedAction.Host != pageHost {
			v.FormActionExternal = true
			v.Flags = append(v.Flags, "البيانات ترسل لموقع خارجي!")
			v.RiskScore += riskExternalForm
		}
	})
}

func matchesFieldKind(kind fieldKind, inpType, attrs string) bool {
	if kind.typeMatch != "" && inpType == kind.typeMatch {
		return true
	}
	for _, kw := range kind.keywords {
		if strings.Contains(attrs, kw) {
			return true
		}
	}
	return false
}

// finishVerdict caps the score and renders the rationale strings.
func finishVerdict(v *ContentVerdict) {
	if v.RiskScore > 100 {
		v.RiskScore = 100
	}
	v.ArabicDescription = BuildArabicDescription(v)
	v.ContentSummary = BuildContentSummary(v)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func appendUnique(list *[]string, s string) {
	for _, existing := range *list {
		if existing == s {
			return
		}
	}
	*list = append(*list, s)
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
