package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/larose/hotel-backoffice/internal/model"
)

// UserRepo reads user accounts.  Accounts are owned by the auth
// subsystem; this service only checks that the principal behind a
// booking request exists and is active.
type UserRepo struct{ db *sql.DB }

// NewUserRepo returns a new UserRepo bound to the given database.
func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// GetActiveByID fetches an active user by id.  Inactive and missing
// users both map to ErrUserNotFound: a deactivated account must not be
// able to create bookings.
func (r *UserRepo) GetActiveByID(ctx context.Context, id uint64) (*model.User, error) {
    const q = `SELECT id, email, full_name, role, is_active, created_at, updated_at
               FROM users WHERE id = ? AND is_active = 1`
    var u model.User
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &u.ID, &u.Email, &u.FullName, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrUserNotFound
    }
    if err != nil {
        return nil, err
    }
    return &u, nil
}
