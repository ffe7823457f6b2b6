package sheets

import (
	"context"

	"spendlog/internal/core"
)

// Ports for outbound adapters.
type (
	// TransactionExporter mirrors the full transaction list somewhere else.
	// Each call replaces whatever the previous call wrote.
	TransactionExporter interface {
		Export(ctx context.Context, list []core.Transaction) error
	}
)

// Header is the first row of every export.
var Header = []string{"Date", "Type", "Title", "Category", "Amount", "Description"}

// Row renders one transaction in Header order.
func Row(t core.Transaction) []string {
	return []string{t.Date, string(t.Type), t.Title, t.Category, core.FormatAmount(t.Amount), t.Description}
}
