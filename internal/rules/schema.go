package rules

// buildPackSchema returns the JSON-Schema (draft 2020-12 subset) for the rule
// pack as a generic map, used to validate pack.json at load time.
func buildPackSchema() map[string]any {
	phraseList := map[string]any{
		"type":  "array",
		"items": map[string]any{"type": "string", "minLength": 1},
	}

	strategy := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"id":          map[string]any{"type": "string", "pattern": `^[A-Z]{2,6}$`},
			"name":        map[string]any{"type": "string", "minLength": 1},
			"description": map[string]any{"type": "string"},
			"keywords":    phraseList,
			"regex_any":   phraseList,
			"exclude":     phraseList,
		},
		"required": []string{"id", "name", "keywords"},
	}

	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"version": map[string]any{"type": "integer", "minimum": 1},
			"strategies": map[string]any{
				"type":     "array",
				"minItems": 1,
				"items":    strategy,
			},
		},
		"required": []string{"version", "strategies"},
	}
}
