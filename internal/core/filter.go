package core

import "strings"

// AllCategories disables the category filter.
const AllCategories = "all"

// FilterOptions narrows the history view.
type FilterOptions struct {
	Search   string // case-insensitive substring of the title
	Category string // exact match; empty or AllCategories matches everything
}

// Filter returns the transactions matching opts, preserving input order.
func Filter(txs []Transaction, opts FilterOptions) []Transaction {
	search := strings.ToLower(opts.Search)
	out := make([]Transaction, 0, len(txs))
	for _, t := range txs {
		if search != "" && !strings.Contains(strings.ToLower(t.Title), search) {
			continue
		}
		if opts.Category != "" && opts.Category != AllCategories && t.Category != opts.Category {
			continue
		}
		out = append(out, t)
	}
	return out
}
