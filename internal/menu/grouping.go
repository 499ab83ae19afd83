// Package menu partitions the leaf level of the category hierarchy into
// labelled mega-menu columns.
package menu

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"storefront/internal/models"
)

const (
	ModeGeneration = "generation"
	ModeAlphabetic = "alphabetic"

	// OtherKey collects leaves no generation token matched. It sorts last.
	OtherKey = "Other"
)

// DefaultGenerationTokens lists known generations newest first.
var DefaultGenerationTokens = []string{"17", "16", "15", "14", "13", "12", "11"}

// Group is one labelled column bucket.
type Group struct {
	Key   string                   `json:"key"`
	Label string                   `json:"label"`
	Items []*models.SubSubcategory `json:"items"`
}

// Layout is the grouped menu for one subcategory. An empty input yields a
// Layout with no groups and zero columns.
type Layout struct {
	Mode    string  `json:"mode"`
	Columns int     `json:"columns"`
	Groups  []Group `json:"groups"`
}

// Classifier assigns a leaf name to a generation. The returned rank orders
// buckets: lower ranks are newer and are emitted first.
type Classifier interface {
	Classify(name string) (key string, rank int, ok bool)
}

// TokenClassifier matches names against tokens by plain substring, first
// match wins. Tokens must be ordered newest first. Substring matching is not
// anchored, so "16" also matches "2016"; callers that need stricter rules
// supply their own Classifier.
type TokenClassifier struct {
	Tokens []string
}

func (t TokenClassifier) Classify(name string) (string, int, bool) {
	for i, token := range t.Tokens {
		if token != "" && strings.Contains(name, token) {
			return token, i, true
		}
	}
	return "", 0, false
}

// ModelRank orders variants within a generation: Pro Max, Pro, Plus/Air, Mini, then the base model.
func ModelRank(name string) int {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "pro max"):
		return 0
	case strings.Contains(n, "pro"):
		return 1
	case strings.Contains(n, "plus"), strings.Contains(n, "air"):
		return 2
	case strings.Contains(n, "mini"):
		return 3
	default:
		return 4
	}
}

// ColumnsFor is the layout policy: up to 2 buckets use 2 columns, up to 4 use 3, more use 4.
func ColumnsFor(buckets int) int {
	switch {
	case buckets == 0:
		return 0
	case buckets <= 2:
		return 2
	case buckets <= 4:
		return 3
	default:
		return 4
	}
}

// GroupByGeneration buckets leaves by generation, newest first with "Other"
// last, and orders each bucket by ModelRank then name. labelPrefix is
// prepended to generation keys ("iPhone" gives "iPhone 16").
func GroupByGeneration(leaves []*models.SubSubcategory, classifier Classifier, labelPrefix string) Layout {
	layout := Layout{Mode: ModeGeneration}
	if len(leaves) == 0 {
		return layout
	}

	type bucket struct {
		rank  int
		other bool
		group Group
	}
	buckets := map[string]*bucket{}
	for _, leaf := range leaves {
		key, rank, ok := classifier.Classify(leaf.Name)
		if !ok {
			key = OtherKey
		}
		b, exists := buckets[key]
		if !exists {
			label := key
			if ok && labelPrefix != "" {
				label = labelPrefix + " " + key
			}
			b = &bucket{rank: rank, other: !ok, group: Group{Key: key, Label: label}}
			buckets[key] = b
		}
		b.group.Items = append(b.group.Items, leaf)
	}

	ordered := make([]*bucket, 0, len(buckets))
	for _, b := range buckets {
		sort.SliceStable(b.group.Items, func(i, j int) bool {
			a, c := b.group.Items[i], b.group.Items[j]
			ra, rc := ModelRank(a.Name), ModelRank(c.Name)
			if ra != rc {
				return ra < rc
			}
			return a.Name < c.Name
		})
		ordered = append(ordered, b)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].other != ordered[j].other {
			return !ordered[i].other
		}
		return ordered[i].rank < ordered[j].rank
	})

	for _, b := range ordered {
		layout.Groups = append(layout.Groups, b.group)
	}
	layout.Columns = ColumnsFor(len(layout.Groups))
	return layout
}

// GroupAlphabetically buckets leaves by the upper-cased first letter of their
// name and emits buckets in key order. Items keep their input order.
func GroupAlphabetically(leaves []*models.SubSubcategory) Layout {
	layout := Layout{Mode: ModeAlphabetic}
	if len(leaves) == 0 {
		return layout
	}

	groups := map[string]*Group{}
	for _, leaf := range leaves {
		key := firstLetter(leaf.Name)
		g, ok := groups[key]
		if !ok {
			g = &Group{Key: key, Label: key}
			groups[key] = g
		}
		g.Items = append(g.Items, leaf)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		layout.Groups = append(layout.Groups, *groups[k])
	}
	layout.Columns = ColumnsFor(len(layout.Groups))
	return layout
}

func firstLetter(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "#"
	}
	r, _ := utf8.DecodeRuneInString(name)
	return string(unicode.ToUpper(r))
}

// Policy decides which grouping mode a subcategory uses.
type Policy struct {
	GenerationSubcategories map[string]bool
	Classifier              Classifier
}

// NewPolicy builds a Policy. Subcategories whose slug is listed use
// generation grouping with the given tokens; all others group alphabetically.
func NewPolicy(generationSlugs []string, tokens []string) *Policy {
	slugs := make(map[string]bool, len(generationSlugs))
	for _, s := range generationSlugs {
		if s = strings.TrimSpace(strings.ToLower(s)); s != "" {
			slugs[s] = true
		}
	}
	if len(tokens) == 0 {
		tokens = DefaultGenerationTokens
	}
	return &Policy{GenerationSubcategories: slugs, Classifier: TokenClassifier{Tokens: tokens}}
}

// Build groups a subcategory's leaves according to the policy.
func (p *Policy) Build(sub *models.Subcategory, leaves []*models.SubSubcategory) Layout {
	if p.GenerationSubcategories[strings.ToLower(sub.Slug)] {
		return GroupByGeneration(leaves, p.Classifier, sub.Name)
	}
	return GroupAlphabetically(leaves)
}
