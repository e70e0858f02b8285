package repository

import (
    "context"
    "database/sql"
    "fmt"
    "regexp"
    "strconv"
    "strings"
    "time"
)

// SequenceRepo hands out day-scoped booking code sequences.  The counter
// lives in the booking_sequences table keyed by calendar day, so the
// number restarts at 1 at midnight and concurrent creators are serialized
// by the storage engine instead of by an application lock: the
// INSERT ... ON DUPLICATE KEY UPDATE below is atomic per row, and
// LAST_INSERT_ID() carries the claimed value back to this connection.
type SequenceRepo struct {
    db *sql.DB
}

// NewSequenceRepo returns a new SequenceRepo bound to the given database.
func NewSequenceRepo(db *sql.DB) *SequenceRepo { return &SequenceRepo{db: db} }

// NextTx claims the next sequence number for the given day within the
// provided transaction.  The first claim of a day yields 1.  The caller
// must commit or roll back the transaction; on rollback the claimed
// number is lost, which leaves a gap but never a duplicate.
func (r *SequenceRepo) NextTx(ctx context.Context, tx *sql.Tx, day time.Time) (int, error) {
    const q = `INSERT INTO booking_sequences (seq_date, seq)
               VALUES (?, LAST_INSERT_ID(1))
               ON DUPLICATE KEY UPDATE seq = LAST_INSERT_ID(seq + 1)`
    res, err := tx.ExecContext(ctx, q, day.Format("2006-01-02"))
    if err != nil {
        return 0, err
    }
    n, err := res.LastInsertId()
    if err != nil {
        return 0, err
    }
    return int(n), nil
}

// codePattern matches the wire-stable booking code shape
// {HOTEL}-{yyyy-MM-dd}-{seq}.  The hotel label is letters and
// underscores; the trailing sequence is at least three digits.
var codePattern = regexp.MustCompile(`^([A-Za-z_]+)-(\d{4}-\d{2}-\d{2})-(\d{3,})$`)

// FormatBookingCode builds a booking code from the hotel label, the
// calendar day and a day-scoped sequence number.  The sequence is
// zero-padded to three digits so codes sort lexically within a day.
func FormatBookingCode(hotelCode string, day time.Time, seq int) string {
    return fmt.Sprintf("%s-%s-%03d", hotelCode, day.Format("2006-01-02"), seq)
}

// ParseBookingCode splits a booking code into its hotel label, day and
// sequence parts.  It reports false for anything that does not match the
// published format; callers treat such codes as foreign input.
func ParseBookingCode(code string) (hotel string, day time.Time, seq int, ok bool) {
    m := codePattern.FindStringSubmatch(strings.TrimSpace(code))
    if m == nil {
        return "", time.Time{}, 0, false
    }
    d, err := time.Parse("2006-01-02", m[2])
    if err != nil {
        return "", time.Time{}, 0, false
    }
    n, err := strconv.Atoi(m[3])
    if err != nil {
        return "", time.Time{}, 0, false
    }
    return m[1], d, n, true
}
