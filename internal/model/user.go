package model

import "time"

// User represents an application user record as stored in the `users`
// table.  Accounts are created and authenticated by the user/auth
// subsystem; this service only reads them to validate that the
// requesting principal is active and to attach ownership to bookings
// and transactions.
//
// Fields:
//  ID        – primary key identifier of the user.
//  Email     – unique email address, also the notification target.
//  FullName  – display name used on confirmations.
//  Role      – role name carried in the JWT (e.g. CUSTOMER or ADMIN).
//  IsActive  – whether the account may create bookings.
//  CreatedAt – timestamp of creation.
//  UpdatedAt – timestamp of last update.
type User struct {
    ID        uint64    // users.id
    Email     string    // users.email
    FullName  string    // users.full_name
    Role      string    // users.role
    IsActive  bool      // users.is_active
    CreatedAt time.Time // users.created_at
    UpdatedAt time.Time // users.updated_at
}
