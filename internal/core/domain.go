package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	Expense Type = "expense"
	Income  Type = "income"
)

// Known categories offered to the user. The store only requires a category
// to be present; membership is a presentation concern.
const (
	CategoryFood          = "food"
	CategoryTransport     = "transport"
	CategoryShopping      = "shopping"
	CategoryHealth        = "health"
	CategoryEntertainment = "entertainment"
	CategorySalary        = "salary"
)

type (
	// Type distinguishes money coming in from money going out.
	Type string

	// Transaction is one recorded financial event.
	Transaction struct {
		ID          string
		Type        Type
		Title       string
		Description string
		Amount      decimal.Decimal
		Date        string // YYYY-MM-DD
		Category    string
	}

	// Draft holds a transaction's values before an id is assigned.
	Draft struct {
		Type        Type
		Title       string
		Description string
		Amount      decimal.Decimal
		Date        string
		Category    string
	}
)

var ErrInvalidType = errors.New("invalid transaction type")

// Categories lists the recognized categories in display order.
var Categories = []string{
	CategoryFood,
	CategoryTransport,
	CategoryShopping,
	CategoryHealth,
	CategoryEntertainment,
	CategorySalary,
}

// ParseType maps user input onto one of the two transaction types.
func ParseType(s string) (Type, error) {
	switch t := Type(strings.ToLower(strings.TrimSpace(s))); t {
	case Expense, Income:
		return t, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
	}
}

func (t Type) String() string {
	return string(t)
}

// IsKnownCategory reports whether c is one of Categories.
func IsKnownCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// WithID turns the draft into a stored transaction.
func (d Draft) WithID(id string) Transaction {
	return Transaction{
		ID:          id,
		Type:        d.Type,
		Title:       d.Title,
		Description: d.Description,
		Amount:      d.Amount,
		Date:        d.Date,
		Category:    d.Category,
	}
}

// Draft strips the id, mostly useful for comparisons in callers.
func (t Transaction) Draft() Draft {
	return Draft{
		Type:        t.Type,
		Title:       t.Title,
		Description: t.Description,
		Amount:      t.Amount,
		Date:        t.Date,
		Category:    t.Category,
	}
}

// transactionJSON is the stored and transported shape. Amount travels as text.
type transactionJSON struct {
	ID          string `json:"id"`
	Type        Type   `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	Category    string `json:"category"`
}

func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(transactionJSON{
		ID:          t.ID,
		Type:        t.Type,
		Title:       t.Title,
		Description: t.Description,
		Amount:      FormatAmount(t.Amount),
		Date:        t.Date,
		Category:    t.Category,
	})
}

func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw transactionJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw.Amount))
	if err != nil {
		return fmt.Errorf("amount %q: %w", raw.Amount, err)
	}
	*t = Transaction{
		ID:          raw.ID,
		Type:        raw.Type,
		Title:       raw.Title,
		Description: raw.Description,
		Amount:      amount.Round(2),
		Date:        raw.Date,
		Category:    raw.Category,
	}
	return nil
}
