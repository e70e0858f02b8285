package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/larose/hotel-backoffice/internal/model"
)

// TransactionRepo provides data access to the transactions table.  A
// transaction is created in the initiated state atomically with the
// booking it pays for, and only leaves that state through the guarded
// settlement methods below or the cancellation update.
type TransactionRepo struct {
    db *sql.DB
}

// NewTransactionRepo returns a new TransactionRepo bound to the given database.
func NewTransactionRepo(db *sql.DB) *TransactionRepo { return &TransactionRepo{db: db} }

const transactionColumns = `id, booking_id, user_id, provider, provider_transaction_id,
       amount, currency, status, type, metadata, created_at, updated_at`

func scanTransaction(scan func(dest ...interface{}) error) (*model.Transaction, error) {
    var t model.Transaction
    var providerTxnID sql.NullString
    var metadata sql.NullString
    var status, txnType string
    err := scan(
        &t.ID, &t.BookingID, &t.UserID, &t.Provider, &providerTxnID,
        &t.Amount, &t.Currency, &status, &txnType, &metadata, &t.CreatedAt, &t.UpdatedAt,
    )
    if err != nil {
        return nil, err
    }
    t.Status = model.TransactionStatus(status)
    t.Type = model.TransactionType(txnType)
    if providerTxnID.Valid {
        p := providerTxnID.String
        t.ProviderTxnID = &p
    }
    if metadata.Valid {
        m := metadata.String
        t.Metadata = &m
    }
    return &t, nil
}

// CreateTx inserts a new transaction within the scope of an existing
// transaction and populates the generated ID and timestamps.  New
// transactions always start as initiated regardless of what the caller
// set on the model.
func (r *TransactionRepo) CreateTx(ctx context.Context, tx *sql.Tx, t *model.Transaction) error {
    t.Status = model.TxnInitiated
    if t.Currency == "" {
        t.Currency = "VND"
    }
    if t.Type == "" {
        t.Type = model.TxnTypePayment
    }
    const q = `INSERT INTO transactions
               (booking_id, user_id, provider, provider_transaction_id, amount, currency, status, type, metadata)
               VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
    result, err := tx.ExecContext(ctx, q,
        t.BookingID, t.UserID, t.Provider, t.ProviderTxnID,
        t.Amount, t.Currency, string(t.Status), string(t.Type), t.Metadata,
    )
    if err != nil {
        return err
    }
    id, err := result.LastInsertId()
    if err != nil {
        return err
    }
    t.ID = uint64(id)
    const sel = `SELECT created_at, updated_at FROM transactions WHERE id = ?`
    return tx.QueryRowContext(ctx, sel, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

// GetByID returns a single transaction by primary key, or
// ErrTransactionNotFound.
func (r *TransactionRepo) GetByID(ctx context.Context, id uint64) (*model.Transaction, error) {
    const q = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ?`
    t, err := scanTransaction(r.db.QueryRowContext(ctx, q, id).Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTransactionNotFound
    }
    return t, err
}

// GetActiveByBookingID returns the booking's driving payment transaction:
// the most recent payment-type row that has not been refunded.  It
// returns ErrTransactionNotFound when the booking has none.
func (r *TransactionRepo) GetActiveByBookingID(ctx context.Context, bookingID uint64) (*model.Transaction, error) {
    const q = `SELECT ` + transactionColumns + ` FROM transactions
               WHERE booking_id = ? AND type = 'payment' AND status != 'refunded'
               ORDER BY id DESC LIMIT 1`
    t, err := scanTransaction(r.db.QueryRowContext(ctx, q, bookingID).Scan)
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrTransactionNotFound
    }
    return t, err
}

// MarkSuccess settles an initiated transaction.  The status check lives
// in the WHERE clause so a replayed gateway callback is a no-op write:
// success never overwrites success, and a transaction the cancellation
// path already refunded cannot be resurrected.  When the gateway's own
// transaction id is supplied it is recorded once and never replaced.
// The returned count is the number of rows changed.
func (r *TransactionRepo) MarkSuccess(ctx context.Context, id uint64, providerTxnID string) (int64, error) {
    const q = `UPDATE transactions
               SET status = 'success',
                   provider_transaction_id = COALESCE(provider_transaction_id, NULLIF(?, ''))
               WHERE id = ? AND status = 'initiated'`
    res, err := r.db.ExecContext(ctx, q, providerTxnID, id)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// MarkFailed moves an initiated transaction to failed, mirroring
// MarkSuccess's guard.
func (r *TransactionRepo) MarkFailed(ctx context.Context, id uint64) (int64, error) {
    const q = `UPDATE transactions SET status = 'failed' WHERE id = ? AND status = 'initiated'`
    res, err := r.db.ExecContext(ctx, q, id)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

// UpdateStatus applies an explicit status change from the admin surface.
// The monotonic rule is enforced in SQL: only initiated rows may change,
// so a settled transaction never moves again.  Unknown values must be
// rejected by the caller before reaching here.  The returned count is
// zero when the transaction is missing or already settled.
func (r *TransactionRepo) UpdateStatus(ctx context.Context, id uint64, status model.TransactionStatus) (int64, error) {
    const q = `UPDATE transactions SET status = ? WHERE id = ? AND status = 'initiated'`
    res, err := r.db.ExecContext(ctx, q, string(status), id)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}
