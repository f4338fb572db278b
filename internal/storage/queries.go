package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type AdvancePayment struct {
	Seq       int64
	ID        string
	Date      string
	Payer     string
	Amount    int64
	Memo      string
	CreatedAt string
}

const createAdvancePayment = `
INSERT INTO advance_payments (id, date, payer, amount, memo, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`

type CreateAdvancePaymentParams struct {
	ID        string
	Date      string
	Payer     string
	Amount    int64
	Memo      string
	CreatedAt string
}

func (q *Queries) CreateAdvancePayment(ctx context.Context, arg CreateAdvancePaymentParams) error {
	_, err := q.db.ExecContext(ctx, createAdvancePayment,
		arg.ID, arg.Date, arg.Payer, arg.Amount, arg.Memo, arg.CreatedAt)
	return err
}

const listAdvancePayments = `
SELECT seq, id, date, payer, amount, memo, created_at
FROM advance_payments
ORDER BY seq
`

func (q *Queries) ListAdvancePayments(ctx context.Context) ([]AdvancePayment, error) {
	rows, err := q.db.QueryContext(ctx, listAdvancePayments)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AdvancePayment
	for rows.Next() {
		var i AdvancePayment
		if err := rows.Scan(&i.Seq, &i.ID, &i.Date, &i.Payer, &i.Amount, &i.Memo, &i.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteAdvancePayment = `
DELETE FROM advance_payments WHERE id = ?
`

func (q *Queries) DeleteAdvancePayment(ctx context.Context, id string) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAdvancePayment, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
