// Package rules is the static text-heuristic scorer: keyword and pattern
// tables over the raw message text, producing a rule score, a threat-type
// label, structured warning flags, recommended actions and advice.
// All tables are registered once at package init.
package rules

import (
	"regexp"
	"strings"
)

// Flag is a structured warning surfaced to the user.
type Flag struct {
	Icon        string `json:"icon"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // critical | high
}

// Action is a recommended step for the user.
type Action struct {
	Icon        string `json:"icon"`
	Action      string `json:"action"`
	Description string `json:"description"`
}

// Threat-type display names. English codes for the training corpus come
// from ThreatCode.
const (
	ThreatSafe          = "رسالة عادية"
	ThreatSocial        = "احتيال اجتماعي"
	ThreatBank          = "انتحال صفة بنك"
	ThreatPrize         = "جوائز وهمية"
	ThreatPhishing      = "تصيد احتيالي"
	ThreatMoneyTransfer = "طلب تحويل مشبوه"
)

var threatCodes = map[string]string{
	ThreatSocial:        "social_engineering",
	ThreatBank:          "bank_impersonation",
	ThreatPrize:         "fake_prize",
	ThreatPhishing:      "phishing",
	ThreatMoneyTransfer: "money_transfer",
	ThreatSafe:          "safe",
}

// ThreatCode maps a threat-type display name to its corpus code.
func ThreatCode(threatType string) string {
	if code, ok := threatCodes[threatType]; ok {
		return code
	}
	return "unknown"
}

// rule is one scoring pattern. Weight accumulates additively; the total is
// capped at 100.
type rule struct {
	name        string
	re          *regexp.Regexp
	weight      int
	icon        string
	title       string
	description string
	severity    string
}

var ruleTable []rule

func register(name, pattern string, weight int, icon, title, description, severity string) {
	ruleTable = append(ruleTable, rule{
		name:        name,
		re:          regexp.MustCompile(pattern),
		weight:      weight,
		icon:        icon,
		title:       title,
		description: description,
		severity:    severity,
	})
}

func init() {
	register("urgency", `(?i)(فوراً|فورا|عاجل|حالاً|حالا|الآن|urgent|immediately)`,
		15, "⏰", "استعجال مريب",
		"الرسالة تضغط عليك للتصرف فوراً - أسلوب احتيال معروف", "high")

	register("credential_request", `(?i)(كلمة المرور|كلمة السر|رقم بطاقتك|بيانات بطاقتك|حدث بياناتك|أرسل بياناتك|password|card number|cvv)`,
		25, "🔑", "طلب بيانات حساسة",
		"جهة موثوقة لن تطلب بياناتك السرية عبر رسالة", "critical")

	register("account_threat", `(?i)(تم إيقاف|تم تجميد|سيتم إغلاق|حسابك معلق|بطاقتك البنكية|account suspended|verify your account)`,
		20, "🏦", "تهديد بإيقاف الحساب",
		"التخويف بإغلاق الحساب حيلة لانتزاع بياناتك", "critical")

	register("fake_prize", `(?i)(مبروك|ربحت|جائزة|اربح|سحب مجاني|congratulations|you won|prize)`,
		25, "🎁", "جائزة وهمية",
		"لم تشارك في سحب، فلن تربح - الجائزة طعم", "high")

	register("money_request", `(?i)(حول مبلغ|أرسل مبلغ|محتاج فلوس|محتاج \d+|تحويل عاجل|send money|transfer)`,
		20, "💸", "طلب تحويل مالي",
		"طلب مال عبر رسالة نصية إشارة خطر قوية", "critical")

	register("impersonation", `(?i)(أنا خويك|أنا صديقك|أنا زميلك|من المدرسة|من العمل)`,
		15, "👤", "انتحال شخصية معارف",
		"المحتالون ينتحلون صفة الأصدقاء لطلب المال", "high")

	register("suspicious_link_bait", `(?i)(اضغط على الرابط|اضغط هنا|عبر الرابط|click here|click the link)`,
		10, "🔗", "دعوة لفتح رابط",
		"الرسائل الاحتيالية تدفعك لفتح روابط خارجية", "high")
}

// threatRule maps patterns to a threat-type label, checked in priority order.
type threatRule struct {
	label string
	re    *regexp.Regexp
}

var threatTable = []threatRule{
	{ThreatBank, regexp.MustCompile(`(?i)(بطاقتك|حسابك البنكي|تم إيقاف|تم تجميد|البنك|bank|account suspended)`)},
	{ThreatPrize, regexp.MustCompile(`(?i)(مبروك|ربحت|جائزة|you won|prize)`)},
	{ThreatMoneyTransfer, regexp.MustCompile(`(?i)(حول مبلغ|أرسل مبلغ|محتاج فلوس|محتاج \d+|send money)`)},
	{ThreatSocial, regexp.MustCompile(`(?i)(أنا خويك|أنا صديقك|أنا زميلك|من المدرسة|من العمل)`)},
	{ThreatPhishing, regexp.MustCompile(`(?i)(كلمة المرور|حدث بياناتك|اضغط على الرابط|اضغط هنا|verify|click here|https?://)`)},
}

// Score computes the heuristic rule score for a message, capped at 100.
func Score(text string) int {
	total := 0
	for _, r := range ruleTable {
		if r.re.MatchString(text) {
			total += r.weight
		}
	}
	if total > 100 {
		total = 100
	}
	return total
}

// ThreatType labels the message with the highest-priority matching threat
// type, or the safe label when nothing matches.
func ThreatType(text string) string {
	for _, tr := range threatTable {
		if tr.re.MatchString(text) {
			return tr.label
		}
	}
	return ThreatSafe
}

// Flags returns the structured warnings for every matching rule, in
// registration order.
func Flags(text string) []Flag {
	var flags []Flag
	for _, r := range ruleTable {
		if r.re.MatchString(text) {
			flags = append(flags, Flag{
				Icon:        r.icon,
				Title:       r.title,
				Description: r.description,
				Severity:    r.severity,
			})
		}
	}
	return flags
}

// Actions returns the recommended steps for the given final score.
func Actions(score int, flags []Flag) []Action {
	switch {
	case score >= 70:
		return []Action{
			{Icon: "🚫", Action: "لا تتفاعل مع الرسالة", Description: "لا ترد ولا تضغط على أي رابط"},
			{Icon: "🗑️", Action: "احذف الرسالة", Description: "تخلص منها حتى لا تضغط عليها بالخطأ"},
			{Icon: "📢", Action: "أبلغ عن المرسل", Description: "بلاغك يحمي غيرك من نفس الاحتيال"},
		}
	case score >= 40:
		return []Action{
			{Icon: "🔍", Action: "تحقق من المرسل", Description: "تواصل مع الجهة عبر قناتها الرسمية"},
			{Icon: "⛔", Action: "لا تفتح الروابط", Description: "تجنب أي رابط حتى تتأكد من المصدر"},
		}
	default:
		return []Action{
			{Icon: "✅", Action: "لا إجراء مطلوب", Description: "الرسالة لا تحمل مؤشرات خطر"},
		}
	}
}

// Advice returns a one-line recommendation for the given final score.
func Advice(score int, text string) string {
	switch {
	case score >= 70:
		return "لا تضغط على أي رابط ولا ترسل أي بيانات. احذف الرسالة وأبلغ عنها."
	case score >= 40:
		return "تحقق من هوية المرسل عبر قناة رسمية قبل أي تفاعل مع الرسالة."
	default:
		if strings.Contains(text, "http") {
			return "الرسالة تبدو آمنة، لكن تأكد من الروابط قبل فتحها."
		}
		return "الرسالة تبدو آمنة. لا تشارك بياناتك الحساسة عبر الرسائل أبداً."
	}
}
