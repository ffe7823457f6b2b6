package memory

import (
	"context"
	"sync"

	"spendlog/internal/core"
	ports "spendlog/internal/sheets"
)

// Exporter keeps the most recent export in memory. It stands in for Google
// Sheets when no spreadsheet is configured.
type Exporter struct {
	mu      sync.Mutex
	rows    [][]string
	exports int
}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(_ context.Context, list []core.Transaction) error {
	rows := make([][]string, 0, len(list)+1)
	rows = append(rows, append([]string(nil), ports.Header...))
	for _, t := range list {
		rows = append(rows, ports.Row(t))
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = rows
	e.exports++
	return nil
}

// Rows returns the last export, header first.
func (e *Exporter) Rows() [][]string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([][]string, len(e.rows))
	for i, r := range e.rows {
		out[i] = append([]string(nil), r...)
	}
	return out
}

// Exports counts how many times Export ran.
func (e *Exporter) Exports() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.exports
}

var _ ports.TransactionExporter = (*Exporter)(nil)
