package links

import (
	"fmt"
	"strings"
)

// BuildArabicDescription composes the human-readable rationale for a page
// verdict: content type, detected fields, warnings, then the page title.
// A page with no signals gets a fixed message depending on reachability.
func BuildArabicDescription(v *ContentVerdict) string {
	var parts []string

	switch v.ContentType {
	case ContentLogin:
		parts = append(parts, "📄 هذا الرابط يفتح صفحة تسجيل دخول")
	case ContentPayment:
		parts = append(parts, "💳 هذا الرابط يفتح صفحة دفع/بيانات بنكية")
	case ContentDownload:
		parts = append(parts, "⬇️ هذا الرابط يفتح صفحة تحميل")
	}

	if len(v.FieldsDetected) > 0 {
		var b strings.Builder
		b.WriteString("\n\n🔍 الصفحة تطلب منك:\n")
		for i, f := range v.FieldsDetected {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  • " + f)
		}
		parts = append(parts, b.String())
	}

	var warnings []string
	if v.HasPasswordField {
		warnings = append(warnings, "يطلب كلمة مرورك")
	}
	if v.HasCardFields {
		warnings = append(warnings, "يطلب بيانات بطاقتك البنكية!")
	}
	if v.Redirected {
		warnings = append(warnings, "تم توجيهك لموقع آخر")
	}
	if v.FormActionExternal {
		warnings = append(warnings, "البيانات ترسل لموقع خارجي!")
	}
	if len(warnings) > 0 {
		var b strings.Builder
		b.WriteString("\n\n⚠️ تحذيرات:\n")
		for i, w := range warnings {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString("  • " + w)
		}
		parts = append(parts, b.String())
	}

	if v.PageTitle != "" {
		parts = append(parts, fmt.Sprintf("\n\n📌 عنوان الصفحة: %s", v.PageTitle))
	}

	if len(parts) == 0 {
		if v.Accessible {
			return "✅ صفحة عادية بدون طلب بيانات حساسة"
		}
		return "❌ تعذر الوصول للرابط"
	}

	return strings.Join(parts, "")
}

// BuildContentSummary renders the one-line summary, in strict priority order:
// card fields beat password+email beat password-only beat OTP beat download
// beat redirect beat generic-accessible beat generic-inaccessible.
func BuildContentSummary(v *ContentVerdict) string {
	switch {
	case v.HasCardFields:
		return "🚨 صفحة تطلب بيانات بطاقة بنكية!"
	case v.HasPasswordField && v.HasEmailField:
		return "⚠️ صفحة تسجيل دخول تطلب إيميل وكلمة مرور"
	case v.HasPasswordField:
		return "⚠️ صفحة تطلب كلمة مرور"
	case v.HasOTPField:
		return "⚠️ صفحة تطلب رمز تحقق OTP"
	case v.HasDownloadButton:
		return "⬇️ صفحة تحميل ملفات"
	case v.Redirected:
		return "↪️ تم التوجيه لموقع آخر"
	case v.Accessible:
		return "✅ صفحة عادية"
	default:
		return "❓ تعذر الفحص"
	}
}
