package core

import "strings"

// Category buckets the free-text item names that flow through procurement,
// production, and sales into the stock positions the mill tracks.
type Category string

const (
	CategoryPaddy      Category = "paddy"
	CategoryHeadRice   Category = "head_rice"
	CategoryBrokenRice Category = "broken_rice"
	CategoryBran       Category = "bran"
	CategoryHusk       Category = "husk"
	CategoryUnknown    Category = "" // not counted in any position
)

// keywordRules are checked in order; the first substring match wins, so
// "Super Broken" classifies as head rice ("super" matches first). The order
// mirrors how the mill's clerks name items in practice.
var keywordRules = []struct {
	keyword  string
	category Category
}{
	{"head", CategoryHeadRice},
	{"super", CategoryHeadRice},
	{"broken", CategoryBrokenRice},
	{"tota", CategoryBrokenRice},
	{"bran", CategoryBran},
	{"husk", CategoryHusk},
	{"paddy", CategoryPaddy},
}

// Classifier maps item names to categories. An explicit mapping (loaded from
// item_categories) is consulted first with a case-insensitive exact match;
// unmapped names fall back to keyword matching. Names that match neither are
// CategoryUnknown and silently excluded from stock positions.
type Classifier struct {
	mapping map[string]Category
}

// NewClassifier builds a classifier over an explicit name→category mapping.
// Keys are compared case-insensitively.
func NewClassifier(mapping map[string]Category) *Classifier {
	m := make(map[string]Category, len(mapping))
	for name, cat := range mapping {
		m[strings.ToLower(strings.TrimSpace(name))] = cat
	}
	return &Classifier{mapping: m}
}

// Classify returns the category for an item name.
func (c *Classifier) Classify(itemName string) Category {
	name := strings.ToLower(strings.TrimSpace(itemName))
	if name == "" {
		return CategoryUnknown
	}
	if cat, ok := c.mapping[name]; ok {
		return cat
	}
	for _, rule := range keywordRules {
		if strings.Contains(name, rule.keyword) {
			return rule.category
		}
	}
	return CategoryUnknown
}
