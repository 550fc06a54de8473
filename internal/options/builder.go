// Package options derives the positional option schema stored on a product.
package options

import (
	"encoding/json"
	"sort"
	"strings"
)

const maxOptions = 3

// Definition is one entry of the stored options_json blob.
type Definition struct {
	Name     string   `json:"name"`
	Position int      `json:"position"`
	Values   []string `json:"values"`
}

// ValueTuple holds one variant's option values by slot (option1..option3).
type ValueTuple [maxOptions]*string

// Build trims and drops blank option names, keeps at most three, and, for
// each retained name at index i, collects the distinct trimmed non-empty
// values seen in slot i across the tuples (first-seen order). Returns nil
// when no names survive — no schema at all, not an empty one. Equal non-blank
// names are the caller's validation problem; only values are deduplicated.
func Build(names []string, tuples []ValueTuple) []Definition {
	kept := make([]string, 0, maxOptions)
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		kept = append(kept, n)
		if len(kept) == maxOptions {
			break
		}
	}
	if len(kept) == 0 {
		return nil
	}

	defs := make([]Definition, len(kept))
	for i, name := range kept {
		defs[i] = Definition{
			Name:     name,
			Position: i + 1,
			Values:   distinctValues(tuples, i),
		}
	}
	return defs
}

// BuildJSON is Build marshalled to the stored blob; nil means no schema.
func BuildJSON(names []string, tuples []ValueTuple) (json.RawMessage, error) {
	defs := Build(names, tuples)
	if defs == nil {
		return nil, nil
	}
	return json.Marshal(defs)
}

// Names parses a stored options_json blob and returns the option names
// sorted by position (entries without a position sort last), capped at
// three. A blank or unparseable blob yields no names.
func Names(blob json.RawMessage) []string {
	if len(blob) == 0 {
		return nil
	}
	var defs []struct {
		Name     *string `json:"name"`
		Position *int    `json:"position"`
	}
	if err := json.Unmarshal(blob, &defs); err != nil {
		return nil
	}

	sort.SliceStable(defs, func(i, j int) bool {
		return posOf(defs[i].Position) < posOf(defs[j].Position)
	})

	names := make([]string, 0, maxOptions)
	for _, d := range defs {
		if d.Name == nil {
			continue
		}
		names = append(names, *d.Name)
		if len(names) == maxOptions {
			break
		}
	}
	return names
}

func posOf(p *int) int {
	if p == nil {
		return int(^uint(0) >> 1)
	}
	return *p
}

func distinctValues(tuples []ValueTuple, slot int) []string {
	values := []string{}
	seen := map[string]bool{}
	for _, t := range tuples {
		v := t[slot]
		if v == nil {
			continue
		}
		trimmed := strings.TrimSpace(*v)
		if trimmed == "" || seen[trimmed] {
			continue
		}
		seen[trimmed] = true
		values = append(values, trimmed)
	}
	return values
}
