// Package sheets defines the outbound export port used by the sync
// worker, plus the flattened row shape shared by its adapters.
package sheets

import (
	"context"

	"github.com/shopspring/decimal"
)

// Row is one exported transaction line. Expenses and incomes flatten
// into the same shape so a single sheet holds the whole ledger.
type Row struct {
	Date     string
	Title    string
	Category string
	Kind     string
	Amount   decimal.Decimal
	Status   string
	Action   string
}

// Exporter appends transaction rows to an external sheet.
type Exporter interface {
	Append(ctx context.Context, row Row) (rowRef string, err error)
}
