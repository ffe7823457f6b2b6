package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// TopCategoryLimit caps Summary.TopCategories.
const TopCategoryLimit = 3

var hundred = decimal.NewFromInt(100)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// Summary is the derived financial overview of a transaction list. It is
// never stored; recompute it whenever the list changes.
type Summary struct {
	TotalIncome    decimal.Decimal `json:"total_income"`
	TotalExpenses  decimal.Decimal `json:"total_expenses"`
	NetBalance     decimal.Decimal `json:"net_balance"`
	IncomePercent  int             `json:"income_percent"`
	ExpensePercent int             `json:"expense_percent"`
	Count          int             `json:"count"`

	// Expense amounts only.
	CategoryTotals map[string]decimal.Decimal `json:"category_totals"`
	// Every expense category, largest first, ties in first-seen order.
	Breakdown     []CategoryAmount `json:"breakdown"`
	TopCategories []CategoryAmount `json:"top_categories"`
	// Scale for the category bars; 1 when there are no expenses.
	MaxCategoryAmount decimal.Decimal `json:"max_category_amount"`
}

// Analyze derives the overview from txs, iterating in list order.
func Analyze(txs []Transaction) Summary {
	s := Summary{
		TotalIncome:    decimal.Zero,
		TotalExpenses:  decimal.Zero,
		Count:          len(txs),
		CategoryTotals: map[string]decimal.Decimal{},
	}

	var seen []string
	for _, t := range txs {
		switch t.Type {
		case Income:
			s.TotalIncome = s.TotalIncome.Add(t.Amount)
		case Expense:
			s.TotalExpenses = s.TotalExpenses.Add(t.Amount)
			prev, ok := s.CategoryTotals[t.Category]
			if !ok {
				seen = append(seen, t.Category)
				prev = decimal.Zero
			}
			s.CategoryTotals[t.Category] = prev.Add(t.Amount)
		}
	}

	s.NetBalance = s.TotalIncome.Sub(s.TotalExpenses)

	// Each share is rounded on its own, so the pair may add up to 99 or 101.
	total := s.TotalIncome.Add(s.TotalExpenses)
	if total.IsPositive() {
		s.IncomePercent = percentOf(s.TotalIncome, total)
		s.ExpensePercent = percentOf(s.TotalExpenses, total)
	}

	s.Breakdown = make([]CategoryAmount, len(seen))
	for i, name := range seen {
		s.Breakdown[i] = CategoryAmount{Name: name, Amount: s.CategoryTotals[name]}
	}
	sort.SliceStable(s.Breakdown, func(i, j int) bool {
		return s.Breakdown[i].Amount.GreaterThan(s.Breakdown[j].Amount)
	})

	n := len(s.Breakdown)
	if n > TopCategoryLimit {
		n = TopCategoryLimit
	}
	s.TopCategories = make([]CategoryAmount, n)
	copy(s.TopCategories, s.Breakdown[:n])

	s.MaxCategoryAmount = decimal.NewFromInt(1)
	if len(s.TopCategories) > 0 {
		s.MaxCategoryAmount = s.TopCategories[0].Amount
	}

	return s
}

func percentOf(part, total decimal.Decimal) int {
	return int(part.Mul(hundred).Div(total).Round(0).IntPart())
}
