package handler

import (
    "net/http"
    "testing"

    "github.com/DATA-DOG/go-sqlmock"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
    "go.uber.org/zap"

    "github.com/larose/hotel-backoffice/internal/repository"
)

func newTransactionHandler(t *testing.T) (*TransactionHandler, sqlmock.Sqlmock) {
    t.Helper()
    db, mock, err := sqlmock.New()
    require.NoError(t, err)
    t.Cleanup(func() { db.Close() })
    h := NewTransactionHandler(
        repository.NewBookingRepo(db),
        repository.NewTransactionRepo(db),
        repository.NewRoomRepo(db),
        repository.NewUserRepo(db),
        repository.NewSequenceRepo(db),
        "La_Rose",
        zap.NewNop(),
    )
    return h, mock
}

func TestTransactionUpdateStatusToFailed(t *testing.T) {
    h, mock := newTransactionHandler(t)

    // The failed target routes through the dedicated settle guard.
    mock.ExpectExec("UPDATE transactions SET status = 'failed'").
        WithArgs(uint64(9)).
        WillReturnResult(sqlmock.NewResult(0, 1))
    mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id").
        WithArgs(uint64(9)).
        WillReturnRows(txnRow("failed"))

    c, rec := newAuthedContext(t, http.MethodPatch, "/v1/transactions/9/status", `{"status":"failed"}`, 1)
    c.Set("role", "ADMIN")
    c.SetParamNames("id")
    c.SetParamValues("9")
    require.NoError(t, h.UpdateStatus(c))

    assert.Equal(t, http.StatusOK, rec.Code)
    assert.Contains(t, rec.Body.String(), `"failed"`)
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionUpdateStatusSettledIsRejected(t *testing.T) {
    h, mock := newTransactionHandler(t)

    mock.ExpectExec("UPDATE transactions SET status").
        WithArgs("refunded", uint64(9)).
        WillReturnResult(sqlmock.NewResult(0, 0))
    mock.ExpectQuery("SELECT (.+) FROM transactions WHERE id").
        WithArgs(uint64(9)).
        WillReturnRows(txnRow("success"))

    c, rec := newAuthedContext(t, http.MethodPatch, "/v1/transactions/9/status", `{"status":"refunded"}`, 1)
    c.Set("role", "ADMIN")
    c.SetParamNames("id")
    c.SetParamValues("9")
    require.NoError(t, h.UpdateStatus(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "already settled")
    assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionUpdateStatusUnknownValue(t *testing.T) {
    h, _ := newTransactionHandler(t)

    c, rec := newAuthedContext(t, http.MethodPatch, "/v1/transactions/9/status", `{"status":"charged_back"}`, 1)
    c.SetParamNames("id")
    c.SetParamValues("9")
    require.NoError(t, h.UpdateStatus(c))

    assert.Equal(t, http.StatusBadRequest, rec.Code)
    assert.Contains(t, rec.Body.String(), "unknown transaction status")
}
