package constants

import (
	"strings"
)

// Strategy is the canonical name of an Essential Eight mitigation strategy.
type Strategy string

const (
	ApplicationControl     Strategy = "Application Control"
	PatchApplications      Strategy = "Patch Applications"
	ConfigureMacroSettings Strategy = "Configure Microsoft Office Macro Settings"
	UserAppHardening       Strategy = "User Application Hardening"
	RestrictAdminPrivs     Strategy = "Restrict Admin Privileges"
	PatchOperatingSystems  Strategy = "Patch Operating Systems"
	MultiFactorAuth        Strategy = "Multi-Factor Authentication"
	RegularBackups         Strategy = "Regular Backups"
)

var allStrategies = []Strategy{
	ApplicationControl,
	ConfigureMacroSettings,
	MultiFactorAuth,
	PatchApplications,
	PatchOperatingSystems,
	RegularBackups,
	RestrictAdminPrivs,
	UserAppHardening,
}

// AllStrategies returns the eight strategies in menu order (alphabetical).
func AllStrategies() []Strategy {
	out := make([]Strategy, len(allStrategies))
	copy(out, allStrategies)
	return out
}

// StrategyNames returns the canonical names as plain strings.
func StrategyNames() []string {
	result := make([]string, len(allStrategies))
	for i, s := range allStrategies {
		result[i] = string(s)
	}
	return result
}

// evidenceSubdirs maps lowercased strategy names to their evidence subdirectory.
var evidenceSubdirs = map[string]string{
	"application control":                       "application_control",
	"restrict admin privileges":                 "restrict_admin_privileges",
	"patch applications":                        "patch_applications",
	"patch operating systems":                   "patch_operating_systems",
	"configure microsoft office macro settings": "configure_macro_settings",
	"multi-factor authentication":               "multi_factor_authentication",
	"regular backups":                           "regular_backups",
	"user application hardening":                "user_application_hardening",
}

// EvidenceSubdir returns the per-strategy evidence subdirectory, if one is mapped.
func EvidenceSubdir(name string) (string, bool) {
	sub, ok := evidenceSubdirs[strings.ToLower(strings.TrimSpace(name))]
	return sub, ok
}

// CanonicalStrategy resolves user input to a canonical strategy name.
func CanonicalStrategy(input string) (Strategy, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return "", false
	}

	// short-form synonyms
	synonyms := map[string]Strategy{
		"ac":    ApplicationControl,
		"pa":    PatchApplications,
		"cmoms": ConfigureMacroSettings,
		"uah":   UserAppHardening,
		"rap":   RestrictAdminPrivs,
		"pos":   PatchOperatingSystems,
		"mfa":   MultiFactorAuth,
		"rb":    RegularBackups,
	}
	if s, ok := synonyms[normalized]; ok {
		return s, true
	}

	for _, s := range allStrategies {
		if normalized == strings.ToLower(string(s)) {
			return s, true
		}
	}
	return "", false
}
