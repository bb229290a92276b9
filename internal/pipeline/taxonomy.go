package pipeline

import (
	"bomscrub/internal"
	"bomscrub/internal/config"
	"bomscrub/internal/match"
)

// Taxonomy canonicalizes free-text component-type values against a curated
// synonym dictionary using the same consensus rule as header resolution.
type Taxonomy struct {
	synonyms []string
	owner    map[string]string
}

// NewTaxonomy builds a normalizer from a template's category dictionary.
func NewTaxonomy(tpl config.Template) *Taxonomy {
	flat, owner := tpl.Synonyms()
	return &Taxonomy{synonyms: flat, owner: owner}
}

// Canonical returns the canonical category for a raw component-type value.
// Without consensus the original text comes back unchanged with ok=false;
// taxonomy drift stays visible instead of being silently rewritten.
func (t *Taxonomy) Canonical(raw string) (string, bool) {
	if raw == "" {
		return raw, false
	}
	synonym, ok := match.Consensus(raw, t.synonyms)
	if !ok {
		return raw, false
	}
	category, known := t.owner[synonym]
	if !known {
		return raw, false
	}
	return category, true
}

// NormalizeRecords rewrites each record's component type to its canonical
// category. Values with no consensus are kept as-is and flagged for review.
func (t *Taxonomy) NormalizeRecords(sheet string, records []internal.Record) ([]internal.Record, []internal.ReviewFlag) {
	flags := []internal.ReviewFlag{}
	out := make([]internal.Record, len(records))
	for i, rec := range records {
		category, ok := t.Canonical(rec.ComponentType)
		if !ok && rec.ComponentType != "" {
			flags = append(flags, internal.ReviewFlag{
				Kind:  internal.ReviewUnknownCategory,
				Sheet: sheet,
				Item:  rec.Item,
				Value: rec.ComponentType,
			})
		}
		rec.ComponentType = category
		out[i] = rec
	}
	return out, flags
}
