// Package rules holds the static Essential Eight rule pack and the keyword
// matcher that turns extracted evidence text into findings.
package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	_ "embed"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed pack.json
var packJSON []byte

// StrategyRule is one strategy's detection criteria. Immutable after load.
type StrategyRule struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	RegexAny    []string `json:"regex_any"`
	Exclude     []string `json:"exclude"`

	compiled []*regexp.Regexp
}

// rulePack is the on-disk shape of pack.json.
type rulePack struct {
	Version    int             `json:"version"`
	Strategies []*StrategyRule `json:"strategies"`
}

// Store is the loaded, immutable rule set keyed by strategy name.
type Store struct {
	rules  []*StrategyRule
	byName map[string]*StrategyRule
}

// LoadStore parses and schema-validates the embedded rule pack.
func LoadStore() (*Store, error) {
	return loadStoreFrom(packJSON)
}

func loadStoreFrom(data []byte) (*Store, error) {
	if err := validatePack(data); err != nil {
		return nil, fmt.Errorf("rule pack: %w", err)
	}
	var pack rulePack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("rule pack: %w", err)
	}

	s := &Store{byName: make(map[string]*StrategyRule, len(pack.Strategies))}
	for _, r := range pack.Strategies {
		for _, pat := range r.RegexAny {
			re, err := regexp.Compile(pat)
			if err != nil {
				return nil, fmt.Errorf("rule pack: strategy %s: bad pattern %q: %w", r.ID, pat, err)
			}
			r.compiled = append(r.compiled, re)
		}
		s.rules = append(s.rules, r)
		s.byName[strings.ToLower(r.Name)] = r
	}
	sort.Slice(s.rules, func(i, j int) bool {
		return strings.ToLower(s.rules[i].Name) < strings.ToLower(s.rules[j].Name)
	})
	return s, nil
}

// validatePack validates raw pack bytes against the rule pack schema.
func validatePack(data []byte) error {
	b, err := json.Marshal(buildPackSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("pack.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("pack.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal pack: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("pack does not match schema: %w", err)
	}
	return nil
}

// All returns the rules sorted by strategy name.
func (s *Store) All() []*StrategyRule {
	out := make([]*StrategyRule, len(s.rules))
	copy(out, s.rules)
	return out
}

// Get looks up a rule by strategy name, case-insensitively.
func (s *Store) Get(name string) (*StrategyRule, bool) {
	r, ok := s.byName[strings.ToLower(strings.TrimSpace(name))]
	return r, ok
}

// Names returns the strategy names in sorted order.
func (s *Store) Names() []string {
	names := make([]string, len(s.rules))
	for i, r := range s.rules {
		names[i] = r.Name
	}
	return names
}

// Normalize lowercases text and collapses runs of whitespace to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// Match returns the indicators found in raw, in rule order: keyword hits as
// the keyword itself, regex hits as "re:<pattern>". Exclusions short-circuit
// to an empty result. Pure; empty or unreadable input yields no hits.
func (r *StrategyRule) Match(raw string) []string {
	t := Normalize(raw)
	if t == "" {
		return nil
	}
	for _, ex := range r.Exclude {
		if ex != "" && strings.Contains(t, ex) {
			return nil
		}
	}

	var hits []string
	for _, kw := range r.Keywords {
		if kw != "" && strings.Contains(t, kw) {
			hits = append(hits, kw)
		}
	}
	for i, re := range r.compiled {
		if re.MatchString(t) {
			hits = append(hits, "re:"+r.RegexAny[i])
		}
	}
	return hits
}

// MatchResult records one (file, strategy) evaluation.
type MatchResult struct {
	SourcePath string
	Strategy   string
	Matched    []string
}

// Compliant reports whether no indicators matched.
func (m MatchResult) Compliant() bool {
	return len(m.Matched) == 0
}

// MatchAll evaluates raw text against every strategy in the store.
func (s *Store) MatchAll(sourcePath, raw string) []MatchResult {
	results := make([]MatchResult, 0, len(s.rules))
	for _, r := range s.rules {
		results = append(results, MatchResult{
			SourcePath: sourcePath,
			Strategy:   r.Name,
			Matched:    r.Match(raw),
		})
	}
	return results
}
