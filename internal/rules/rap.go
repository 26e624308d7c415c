package rules

import (
	"regexp"
	"strings"

	"github.com/Hasstatas/MFA-scanner/constants"
)

// Action regexes shared by every RAP test: evidence must show a control being
// enforced or an action being blocked. The looser variants absorb common OCR
// misreads of "deny".
var (
	rapEnforceRE = compileAll([]string{
		`\benforc(?:e|ed|ing)\b`,
		`\brules are enforced\b`,
		`\benforce rules\b`,
		`\brequir(?:e|ed|es)\b`,
		`\bapprov(?:al|e|ed|ing)\b`,
		`\bjustification\b`,
		`\bticket\b`,
		`\bworkflow\b`,
		`\bpim\b`,
	})
	rapBlockRE = compileAll([]string{
		`\bblock(?:ed|ing)?\b`,
		`\bden(?:y|ied)\b`,
		`\bden[vy]\b`,
		`\b[dbqgo]eny\b`,
		`\b[a-z]den[vy]\b`,
		`\b[a-z][dbqgo]eny\b`,
		`\baccess\s+denied\b`,
		`\bpolicy\s+violation\b`,
		`\byou\s+don'?t\s+have\s+permission\b`,
		`\berr[_-]?blocked[_-]?by[_-]?administrator\b`,
		`\bblocked\s+by\s+(?:your\s+)?administrator\b`,
		`\bnot\s+authori[sz]ed\b`,
		`\bfor\s+administrative\s+use\s+only\b`,
	})
)

// rapLabels maps each test's evidence context to the phrases that identify it.
var rapLabels = map[string][]string{
	"PROCESS": {
		"privileged access process", "approval workflow", "rbac",
		"role based access control", "access control", "privileged access",
		"privileged identity management", "authentication administrator",
		"privileged access request", "approval request", "access request",
		"access approval", "require justification", "require ticket information", "require approval",
	},
	"NO_INTERNET": {
		"privileged account", "admin account", "firewall",
		"internet blocked", "block internet access", "url filtering",
		"your administrator has blocked this action", "err_blocked_by_administrator",
		"policy violation", "you dont have permission to access", "block incoming connections",
		"firewall active",
	},
	"NO_MAILBOX": {
		"privileged account", "admin account", "mailbox permission",
		"no mailbox", "mailbox not found", "email address: (none)", "access denied",
	},
	"ADMIN_ENV": {
		"privileged access workstation", "paw", "admin workstation",
		"admin network", "privileged network", "for administrative use only",
		"not authorised", "no authorization", "no authorisation", "no access",
	},
	"DENY_UNPRIV_LOGON": {
		"group policy objects", "security settings",
		"deny logon locally", "deny log on through remote desktop services",
		"deny access", "access denied",
		"everyone", "domain users", "authenticated users", "authorised users",
	},
	"PSREMOTE_DISABLED": {
		"get-pssessionconfiguration", "microsoft.powershell",
		"accessdenied", `builtin\administrators accessallowed`,
		"remote management users: (no members", "winrm service: disabled",
	},
	"DENY_PRIV_TO_WORKSTATIONS": {
		"user rights assignment", "local security policy",
		"domain admins", "enterprise admins",
		"deny logon locally", "deny log on through remote desktop services", "deny",
	},
	"NO_ESCALATION": {
		"runas", "runas error", "logon failure", "access is denied",
		"user account control", "administrator credentials required",
		"an administrator has blocked", "whoami /groups",
		"not a member of administrators", "this operation requires elevation",
		"winrm access denied",
	},
}

type rapRule struct {
	testID         string
	subStrategy    string
	priority       constants.Priority
	recommendation string
	labelKey       string
}

var rapRules = []rapRule{
	{"ML1-RA-01", "Formal privileged access process is enforced", constants.PriorityHigh,
		"(1) Enforce a documented approval workflow for privileged access (2) Maintain an inventory of systems/applications requiring privileged access",
		"PROCESS"},
	{"ML1-RA-02", "Privileged accounts cannot access the Internet", constants.PriorityHigh,
		"(1) Configure Group Policy Objects (GPO) / firewall to block privileged accounts from internet browsing (2) Enforce technical controls (proxy/firewall) to prevent privileged accounts from bypassing restrictions (3) Regularly review policies",
		"NO_INTERNET"},
	{"ML1-RA-03", "Privileged accounts are not configured with mailboxes and email addresses", constants.PriorityMedium,
		"(1) Remove mailboxes from privileged accounts (2) Review privileged accounts regularly to confirm no mailbox/email licenses are assigned",
		"NO_MAILBOX"},
	{"ML1-RA-04", "Administrative activities occur in a separate admin environment", constants.PriorityMedium,
		"Ensure privileged accounts cannot be used on standard desktops except via a separate environment",
		"ADMIN_ENV"},
	{"ML1-RA-05", "Unprivileged accounts must not be able to logon to systems in the privileged environment", constants.PriorityMedium,
		"(1) Configure GPO to deny logon for unprivileged accounts on servers/admin systems (2) Audit AD groups with RDP access and restrict membership",
		"DENY_UNPRIV_LOGON"},
	{"ML1-RA-06", "Unprivileged user prevented from using the PowerShell remote PSRemote windows feature", constants.PriorityMedium,
		"Remove unprivileged accounts from Remote Management Users",
		"PSREMOTE_DISABLED"},
	{"ML1-RA-07", "Privileged accounts cannot log on to standard workstations", constants.PriorityHigh,
		"Apply GPO settings to deny interactive/RDP logon to workstations for privileged accounts",
		"DENY_PRIV_TO_WORKSTATIONS"},
	{"ML1-RA-08", "An unprivileged account logged into a standard user workstation cannot raise privileges to a privileged user", constants.PriorityLow,
		"(1) Disable runas and escalation options for unprivileged users (2) Monitor failed privilege escalation attempts in logs (3) Enforce User Account Control (UAC) for all users",
		"NO_ESCALATION"},
}

type rapEvaluator struct{}

func newRAPEvaluator() *rapEvaluator { return &rapEvaluator{} }

func (e *rapEvaluator) Strategy() string { return string(constants.RestrictAdminPrivs) }

// Evaluate passes a RAP test when the text carries both the test's evidence
// label and an enforce/block action. With no passing test at all, a single
// generic Fail row covers the whole test range.
func (e *rapEvaluator) Evaluate(text, _ string) []Finding {
	t := Normalize(text)

	enforceHit := anyRegex(t, rapEnforceRE)
	blockHit := anyRegex(t, rapBlockRE)
	actionOK := enforceHit != "" || blockHit != ""

	var findings []Finding
	for _, rule := range rapRules {
		labelHit := anySubstr(t, rapLabels[rule.labelKey])
		if !actionOK || labelHit == "" {
			continue
		}
		var evidence []string
		for _, ev := range []string{labelHit, enforceHit, blockHit} {
			if ev != "" {
				evidence = append(evidence, ev)
			}
		}
		findings = append(findings, Finding{
			TestID:         rule.testID,
			SubStrategy:    rule.subStrategy,
			Level:          "ML1",
			Outcome:        constants.OutcomePass,
			Priority:       rule.priority,
			Recommendation: rule.recommendation,
			Evidence:       evidence,
		})
	}
	if len(findings) > 0 {
		return findings
	}

	return []Finding{{
		TestID:  "ML1-RA-01 to ML1-RA-08",
		Level:   "ML1",
		Outcome: constants.OutcomeFail,
		Priority: constants.PriorityHigh,
		Recommendation: "- Enforce a formal, documented approval workflow for privileged access (ticket, justification, approver).\n" +
			"- Maintain an inventory of systems/applications requiring privileged access.\n" +
			"- Prevent privileged accounts from Internet access and from being used on standard desktops.\n" +
			"- Remove mailboxes from privileged accounts.\n" +
			"- Deny unprivileged logons to admin systems and prevent privilege escalation (UAC, remove runas paths).\n" +
			"- Restrict PowerShell Remoting to admins; keep WinRM appropriately configured.",
	}}
}

func compileAll(patterns []string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

// anyRegex returns "re:<pattern>" for the first pattern matching t.
func anyRegex(t string, res []*regexp.Regexp) string {
	for _, re := range res {
		if re.MatchString(t) {
			return "re:" + re.String()
		}
	}
	return ""
}

// anySubstr returns the first phrase contained in t.
func anySubstr(t string, phrases []string) string {
	for _, p := range phrases {
		if p != "" && strings.Contains(t, p) {
			return p
		}
	}
	return ""
}
