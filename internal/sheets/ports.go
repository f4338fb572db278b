package sheets

import "context"

// Header is the fixed column order of the advance-payment sheet.
var Header = []string{"ID", "Date", "Payer", "Amount", "Memo", "CreatedAt"}

// Row is one advance-payment record exactly as persisted: six columns,
// dates as YYYY-MM-DD, payer as 夫 or 妻, amount in whole yen and the
// creation timestamp in RFC 3339.
type Row struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Payer     string `json:"payer"`
	Amount    int64  `json:"amount"`
	Memo      string `json:"memo"`
	CreatedAt string `json:"created_at"`
}

// Ports for outbound adapters.
type (
	RowLister interface {
		// ListRows returns every data row in storage order, header excluded.
		ListRows(ctx context.Context) ([]Row, error)
	}

	RowAppender interface {
		AppendRow(ctx context.Context, r Row) error
	}

	RowDeleter interface {
		// DeleteRowByID removes the first row whose ID matches and reports
		// whether one was found.
		DeleteRowByID(ctx context.Context, id string) (bool, error)
	}

	// RowStore is the full persistence surface for advance payments.
	RowStore interface {
		RowLister
		RowAppender
		RowDeleter
	}
)
