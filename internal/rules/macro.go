package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/Hasstatas/MFA-scanner/constants"
)

// Accepts OCR text from Trust Center / MoTW / regedit screenshots as well as
// gpresult, .reg and AV log exports.
var (
	omTrustCenterRE   = regexp.MustCompile(`trust\s*center.+disable\s+all\s+macros\s+without\s+notification`)
	omMacroSettingsRE = regexp.MustCompile(`macro\s+settings.+disable\s+all\s+macros\s+without\s+notification`)
	omGPORE           = regexp.MustCompile(`(gpresult|rsop|group policy).+(trust\s*center|macro).+(disable\s+all\s+macros)`)
	omBlockInternetRE = regexp.MustCompile(`blockcontentexecutionfrominternet\s*=\s*1`)
	omBlockRegKeyRE   = regexp.MustCompile(`hkey_(current_user|local_machine).+\\office\\\d+\.\d+\\(word|excel|powerpoint)\\security\\blockcontentexecutionfrominternet`)
	omRuntimeScopeRE  = regexp.MustCompile(`macroruntimescope\s*=\s*(1|2)`)

	omEmailRE = regexp.MustCompile(`[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}`)
	omTokenRE = regexp.MustCompile(`\b[a-z0-9][a-z0-9._-]{1,}\b`)
)

// macroEvaluator checks the ML1-OM test set for Office macro settings.
// It is stateful: the approved-users / AD-group comparison (OM-02) collects
// identities across the files of one scan.
type macroEvaluator struct {
	approvedUsers map[string]struct{}
	approvedSrc   string
	adGroupUsers  map[string]struct{}
	adGroupSrc    string
	om02Emitted   bool
}

func newMacroEvaluator() *macroEvaluator { return &macroEvaluator{} }

func (e *macroEvaluator) Strategy() string { return string(constants.ConfigureMacroSettings) }

func (e *macroEvaluator) Evaluate(text, sourceFile string) []Finding {
	t := Normalize(text)
	var findings []Finding

	row := func(tid, sub string, outcome constants.Outcome, prio constants.Priority, rec string, ev []string) {
		findings = append(findings, Finding{
			TestID:         tid,
			SubStrategy:    sub,
			Level:          "ML1",
			Outcome:        outcome,
			Priority:       prio,
			Recommendation: rec,
			Evidence:       ev,
		})
	}
	ev := func() []string {
		if t == "" {
			return nil
		}
		return []string{clip(t, 180)}
	}

	// ML1-OM-01: macros disabled for unapproved users
	switch {
	case has(t, "disable all macros without notification", "vbawarnings=3", "no notifications and disable all macros") ||
		omTrustCenterRE.MatchString(t) || omMacroSettingsRE.MatchString(t):
		row("ML1-OM-01", "Disable for unapproved users", constants.OutcomePass, constants.PriorityHigh,
			"Enforce 'Disable all macros without notification' via GPO.", ev())
	case has(t, "disable with notification"):
		row("ML1-OM-01", "Disable for unapproved users", constants.OutcomeFail, constants.PriorityHigh,
			"Change to 'Disable all macros without notification' (not 'with notification').", ev())
	}
	if omGPORE.MatchString(t) {
		row("ML1-OM-01", "GPO shows macro disabling", constants.OutcomePass, constants.PriorityHigh,
			"RSOP/Group Policy confirms macro disabling policy is applied.", ev())
	}

	// ML1-OM-02: approved list matches AD group (stateful across files)
	e.collectIdentities(t, sourceFile)
	if f, ok := e.compareIdentities(); ok {
		findings = append(findings, f)
	}

	// ML1-OM-03: MoTW / internet-sourced macros blocked
	if has(t,
		"blocked macros from running because the source is untrusted",
		"blocked macros from running because the file is from the internet",
		"security risk - microsoft has blocked macros",
		"from the internet",
	) {
		row("ML1-OM-03", "Internet-sourced (MoTW) macros blocked", constants.OutcomePass, constants.PriorityHigh,
			"Files with Mark-of-the-Web cannot run macros.", ev())
	}

	// ML1-OM-04: blockcontentexecutionfrominternet=1 via GPO/registry
	if omBlockInternetRE.MatchString(t) || omBlockRegKeyRE.MatchString(t) {
		row("ML1-OM-04", "Block macros from Internet via GPO/Registry", constants.OutcomePass, constants.PriorityHigh,
			"Policy shows blockcontentexecutionfrominternet=1 for Office apps.", ev())
	}

	// ML1-OM-05: macro runtime scan scope enabled
	if omRuntimeScopeRE.MatchString(t) || has(t, "macro runtime scan scope") {
		row("ML1-OM-05", "Macro runtime scanning enabled", constants.OutcomePass, constants.PriorityHigh,
			"Macro Runtime Scan Scope is enabled across Office apps.", ev())
	}

	// ML1-OM-06: AV detects macro threat (EICAR)
	if has(t, "eicar") && has(t, "detect", "quarantine", "blocked", "removed") {
		row("ML1-OM-06", "AV detects macro threat (EICAR)", constants.OutcomePass, constants.PriorityHigh,
			"AV/EDR log indicates EICAR from macro execution was blocked/quarantined.", ev())
	}

	// ML1-OM-07: users cannot change macro settings
	if has(t,
		"managed by your organization",
		"some settings are managed by your organization",
		"some settings are managed by your administrator",
		"this setting has been disabled by your administrator",
	) {
		row("ML1-OM-07", "Prevent user changes", constants.OutcomePass, constants.PriorityMedium,
			"Trust Center shows settings are locked by policy.", ev())
	}

	return findings
}

func (e *macroEvaluator) collectIdentities(t, sourceFile string) {
	fname := strings.ToLower(sourceFile)
	approvedSide := strings.Contains(fname, "approved") || has(t, "approved users", "allow list")
	adGroupSide := strings.Contains(fname, "ad_group") || strings.Contains(fname, "ad-group") ||
		strings.Contains(fname, "adgroup") || has(t, "group members", "security group", "ad group")

	identities := extractIdentities(t)
	if len(identities) == 0 {
		return
	}
	switch {
	case approvedSide:
		e.approvedUsers = identities
		e.approvedSrc = orDefault(sourceFile, "approved_users.txt")
	case adGroupSide:
		e.adGroupUsers = identities
		e.adGroupSrc = orDefault(sourceFile, "ad_group.txt")
	}
}

func (e *macroEvaluator) compareIdentities() (Finding, bool) {
	if e.om02Emitted || e.approvedUsers == nil || e.adGroupUsers == nil {
		return Finding{}, false
	}
	e.om02Emitted = true

	missingInAD := setDiff(e.approvedUsers, e.adGroupUsers)
	extraInAD := setDiff(e.adGroupUsers, e.approvedUsers)
	src := e.approvedSrc + " + " + e.adGroupSrc

	if len(missingInAD) == 0 && len(extraInAD) == 0 {
		return Finding{
			TestID:         "ML1-OM-02",
			SubStrategy:    "Approved users list matches AD group",
			Level:          "ML1",
			Outcome:        constants.OutcomePass,
			Priority:       constants.PriorityMedium,
			Recommendation: "Approved repository and AD security group are in sync.",
			Evidence:       []string{src},
		}, true
	}
	return Finding{
		TestID:         "ML1-OM-02",
		SubStrategy:    "Approved users list matches AD group",
		Level:          "ML1",
		Outcome:        constants.OutcomeFail,
		Priority:       constants.PriorityMedium,
		Recommendation: "Align AD group with the documented approved list.",
		Evidence: []string{
			fmt.Sprintf("MissingInAD=%v", missingInAD),
			fmt.Sprintf("ExtraInAD=%v", extraInAD),
			"SRC=" + src,
		},
	}, true
}

// extractIdentities pulls emails and account-name tokens out of normalized text.
func extractIdentities(t string) map[string]struct{} {
	stop := map[string]struct{}{
		"the": {}, "and": {}, "user": {}, "users": {}, "group": {},
		"approved": {}, "domain": {}, "members": {},
	}
	out := make(map[string]struct{})
	for _, m := range omEmailRE.FindAllString(t, -1) {
		out[m] = struct{}{}
	}
	for _, m := range omTokenRE.FindAllString(t, -1) {
		if _, skip := stop[m]; skip || len(m) < 3 {
			continue
		}
		out[m] = struct{}{}
	}
	return out
}

func setDiff(a, b map[string]struct{}) []string {
	var out []string
	for k := range a {
		if _, ok := b[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

func has(t string, phrases ...string) bool {
	for _, p := range phrases {
		if strings.Contains(t, p) {
			return true
		}
	}
	return false
}

func clip(t string, n int) string {
	if len(t) <= n {
		return t
	}
	// back up to a rune boundary so the cut never yields invalid UTF-8
	for n > 0 && !utf8.RuneStart(t[n]) {
		n--
	}
	return t[:n] + "..."
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
