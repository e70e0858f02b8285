package repository

import (
    "context"
    "testing"
    "time"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/larose/hotel-backoffice/internal/model"
)

func TestMarkSuccessOnlySettlesInitiated(t *testing.T) {
    testCases := []struct {
        name string
        rows int64
    }{
        {"initiated row settles", 1},
        {"already settled row is untouched", 0},
    }
    for _, tc := range testCases {
        t.Run(tc.name, func(t *testing.T) {
            db, mock, err := sqlmock.New()
            require.NoError(t, err)
            defer db.Close()

            mock.ExpectExec("UPDATE transactions").
                WithArgs("VNP123", uint64(9)).
                WillReturnResult(sqlmock.NewResult(0, tc.rows))

            repo := NewTransactionRepo(db)
            rows, err := repo.MarkSuccess(context.Background(), 9, "VNP123")
            require.NoError(t, err)
            assert.Equal(t, tc.rows, rows)
            assert.NoError(t, mock.ExpectationsWereMet())
        })
    }
}

func TestUpdateStatusGuardsSettledRows(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectExec("UPDATE transactions SET status").
        WithArgs("failed", uint64(4)).
        WillReturnResult(sqlmock.NewResult(0, 0))

    repo := NewTransactionRepo(db)
    rows, err := repo.UpdateStatus(context.Background(), 4, model.TxnFailed)
    require.NoError(t, err)
    assert.Zero(t, rows, "settled transactions must never move again")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTxForcesInitiatedAndDefaults(t *testing.T) {
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    defer db.Close()

    mock.ExpectBegin()
    mock.ExpectExec("INSERT INTO transactions").
        WithArgs(uint64(3), uint64(1), "vnpay", nil, int64(500000), "VND", "initiated", "payment", nil).
        WillReturnResult(sqlmock.NewResult(11, 1))
    mock.ExpectQuery("SELECT created_at, updated_at FROM transactions").
        WithArgs(uint64(11)).
        WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).
            AddRow(time.Now(), time.Now()))
    mock.ExpectCommit()

    tx, err := db.Begin()
    require.NoError(t, err)

    repo := NewTransactionRepo(db)
    txn := &model.Transaction{
        BookingID: 3,
        UserID:    1,
        Provider:  "vnpay",
        Amount:    500000,
        Status:    model.TxnSuccess, // must be overridden
    }
    require.NoError(t, repo.CreateTx(context.Background(), tx, txn))
    require.NoError(t, tx.Commit())

    assert.Equal(t, uint64(11), txn.ID)
    assert.Equal(t, model.TxnInitiated, txn.Status)
    assert.Equal(t, "VND", txn.Currency)
    assert.Equal(t, model.TxnTypePayment, txn.Type)
    assert.NoError(t, mock.ExpectationsWereMet())
}
