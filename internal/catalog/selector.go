package catalog

import (
	"fmt"
	"sort"
)

// Selection scoring bonuses. Language dominates; everything else refines.
const (
	languageMatchBonus    = 100
	substituteMatchBonus  = 50
	optimizationFlagBonus = 10
	tagMatchBonus         = 20 // scaled by the fraction of requested tags matched
	complexityTagBonus    = 5
)

// substituteLanguages maps an untyped language to the typed counterpart
// that may stand in for it when no exact match exists in the catalog.
var substituteLanguages = map[Language]Language{
	LangJavaScript: LangTypeScript,
}

// Criteria captures what the caller wants from a template. All fields are
// optional; empty criteria match nothing.
type Criteria struct {
	Language     Language
	Optimization map[string]bool // requested flags by name, e.g. {"turboRepo": true}
	Tags         []string
	Complexity   string // complexity tier, matched against template tags
}

// Match pairs a template with its selection score and the human-readable
// reasons that produced it.
type Match struct {
	Template *Descriptor
	Score    int
	Reasons  []string
}

// Selector scores catalog entries against selection criteria
type Selector struct {
	catalog *Catalog
}

// NewSelector creates a Selector over the given catalog
func NewSelector(c *Catalog) *Selector {
	return &Selector{catalog: c}
}

// Select returns the best-scoring template for the criteria, or false when
// the catalog is empty or nothing satisfies any positive-scoring rule.
// Ties break on template name ascending, which keeps repeated calls with
// identical inputs deterministic.
func (s *Selector) Select(criteria Criteria) (Match, bool) {
	matches := s.Suggest(criteria)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Suggest scores the entire catalog against the criteria and returns all
// positive-scoring templates, best first.
func (s *Selector) Suggest(criteria Criteria) []Match {
	all := s.catalog.All()

	// The substitute bonus applies only when no exact language match exists
	exactExists := false
	for _, d := range all {
		if criteria.Language != "" && d.Language == criteria.Language {
			exactExists = true
			break
		}
	}

	var matches []Match
	for _, d := range all {
		score, reasons := scoreDescriptor(d, criteria, exactExists)
		if score <= 0 {
			continue
		}
		matches = append(matches, Match{Template: d, Score: score, Reasons: reasons})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Template.Name < matches[j].Template.Name
	})

	return matches
}

// Recommend selects for a language only. On equal scores the template with
// more optimization flags wins, so feature-rich templates surface first.
func (s *Selector) Recommend(language Language) (Match, bool) {
	matches := s.Suggest(Criteria{Language: language})
	if len(matches) == 0 {
		return Match{}, false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		if ci, cj := matches[i].Template.Optimization.Count(), matches[j].Template.Optimization.Count(); ci != cj {
			return ci > cj
		}
		return matches[i].Template.Name < matches[j].Template.Name
	})

	return matches[0], true
}

// scoreDescriptor applies the additive scoring rules, producing one reason
// line per contributing rule.
func scoreDescriptor(d *Descriptor, criteria Criteria, exactLanguageExists bool) (int, []string) {
	score := 0
	var reasons []string

	if criteria.Language != "" {
		if d.Language == criteria.Language {
			score += languageMatchBonus
			reasons = append(reasons, fmt.Sprintf("language %s matches exactly", d.Language))
		} else if !exactLanguageExists && substituteLanguages[criteria.Language] == d.Language {
			score += substituteMatchBonus
			reasons = append(reasons, fmt.Sprintf("language %s can stand in for %s", d.Language, criteria.Language))
		}
	}

	// Each requested flag is checked independently, never all-or-nothing
	for _, name := range OptimizationFlags {
		if criteria.Optimization[name] && d.Optimization.Flag(name) {
			score += optimizationFlagBonus
			reasons = append(reasons, fmt.Sprintf("optimization %s is supported", name))
		}
	}

	if len(criteria.Tags) > 0 {
		matched := 0
		for _, want := range criteria.Tags {
			for _, have := range d.Tags {
				if want == have {
					matched++
					break
				}
			}
		}
		if matched > 0 {
			fraction := float64(matched) / float64(len(criteria.Tags))
			score += int(fraction * tagMatchBonus)
			reasons = append(reasons, fmt.Sprintf("matches %d of %d requested tag(s)", matched, len(criteria.Tags)))
		}
	}

	if criteria.Complexity != "" {
		for _, have := range d.Tags {
			if have == criteria.Complexity {
				score += complexityTagBonus
				reasons = append(reasons, fmt.Sprintf("suits %s complexity projects", criteria.Complexity))
				break
			}
		}
	}

	return score, reasons
}
