// Package merchant loads merchant rules and matches transactions against them.
// A transaction takes its merchant and category from the first categorization
// rule that matches, and its tags from every rule that matches.
package merchant

import (
	"sort"
	"strings"

	"github.com/Veraticus/tally/internal/expr"
)

// Rule binds a match expression to a category, tags or both.
type Rule struct {
	node        expr.Node
	Tags        Tags
	Name        string
	Match       string
	Category    string
	Subcategory string
	Merchant    string
	Source      string
	Line        int
	NotTravel   bool
}

// IsCategorizationRule reports whether the rule assigns a category.
// Rules without one only contribute tags.
func (r *Rule) IsCategorizationRule() bool {
	return r.Category != ""
}

// DisplayMerchant returns the merchant label, defaulting to the rule name.
func (r *Rule) DisplayMerchant() string {
	if r.Merchant != "" {
		return r.Merchant
	}
	return r.Name
}

// Expression returns the parsed match expression. It is nil until the rule
// has been loaded into an Engine.
func (r *Rule) Expression() expr.Node {
	return r.node
}

// Variable is a named expression defined at the top level of a rule file.
type Variable struct {
	node       expr.Node
	Name       string
	Expression string
	Line       int
}

// Tags is a set of lowercase tags.
type Tags map[string]struct{}

// ParseTags splits a comma separated list into a tag set, lowercasing and
// trimming each entry and dropping empty ones.
func ParseTags(list string) Tags {
	return NewTags(strings.Split(list, ",")...)
}

// NewTags builds a tag set from individual tags.
func NewTags(tags ...string) Tags {
	set := make(Tags, len(tags))
	for _, tag := range tags {
		set.Add(tag)
	}
	return set
}

// Add normalizes and inserts a tag.
func (t Tags) Add(tag string) {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag != "" {
		t[tag] = struct{}{}
	}
}

// Has reports whether tag is in the set.
func (t Tags) Has(tag string) bool {
	_, ok := t[strings.ToLower(strings.TrimSpace(tag))]
	return ok
}

// Union adds every tag of other to t.
func (t Tags) Union(other Tags) {
	for tag := range other {
		t[tag] = struct{}{}
	}
}

// Sorted returns the tags in lexical order.
func (t Tags) Sorted() []string {
	out := make([]string, 0, len(t))
	for tag := range t {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// String renders the tags the way rule files write them.
func (t Tags) String() string {
	return strings.Join(t.Sorted(), ", ")
}
