package catalog

import (
	"sort"
	"strings"
	"time"
)

// AllCategories selects every category.
const AllCategories = "all"

// NewFor is how long a product keeps its "New" badge.
const NewFor = 7 * 24 * time.Hour

// Filter is the catalog view state: a category and a free-text query.
// Both conditions must hold for a product to match.
type Filter struct {
	Category string `json:"category"`
	Query    string `json:"q"`
}

func (f Filter) normalized() (category, query string) {
	category = strings.ToLower(strings.TrimSpace(f.Category))
	if category == AllCategories {
		category = ""
	}
	return category, strings.ToLower(strings.TrimSpace(f.Query))
}

func (f Filter) IsZero() bool {
	c, q := f.normalized()
	return c == "" && q == ""
}

func (f Filter) Match(p Product) bool {
	category, query := f.normalized()
	if category != "" && strings.ToLower(p.Category) != category {
		return false
	}
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Category), query)
}

// Apply returns the matching products in their original order.
func (f Filter) Apply(ps []Product) []Product {
	out := make([]Product, 0, len(ps))
	for _, p := range ps {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Featured returns the n most recently created products, newest first.
func Featured(ps []Product, n int) []Product {
	out := make([]Product, len(ps))
	copy(out, ps)
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func IsNew(p Product, now time.Time) bool {
	if p.CreatedAt.IsZero() {
		return false
	}
	return p.CreatedAt.After(now.Add(-NewFor))
}

type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Categories groups products case-insensitively, keeping the first spelling seen.
func Categories(ps []Product) []CategoryCount {
	idx := map[string]int{}
	var out []CategoryCount
	for _, p := range ps {
		if p.Category == "" {
			continue
		}
		key := strings.ToLower(p.Category)
		if i, ok := idx[key]; ok {
			out[i].Count++
			continue
		}
		idx[key] = len(out)
		out = append(out, CategoryCount{Name: p.Category, Count: 1})
	}
	sort.Slice(out, func(i, j int) bool { return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name) })
	return out
}
