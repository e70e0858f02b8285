package repository

import (
    "context"
    "database/sql"
    "errors"

    "github.com/larose/hotel-backoffice/internal/model"
)

// RoomRepo reads the room catalog.  The booking engine never writes
// rooms; it only needs the room's type link to price a stay.
type RoomRepo struct{ db *sql.DB }

// NewRoomRepo returns a new RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// GetByID loads a room together with its room type.  The join is LEFT so
// a missing room and a room with a dangling type link stay
// distinguishable: the former is ErrRoomNotFound, the latter
// ErrRoomWithoutType.  Such a room cannot be priced and so cannot be
// booked until the catalog is fixed.
func (r *RoomRepo) GetByID(ctx context.Context, id uint64) (*model.Room, error) {
    const q = `SELECT r.id, r.code, r.title, t.id, t.name, t.base_price
               FROM rooms r
               LEFT JOIN room_types t ON t.id = r.room_type_id
               WHERE r.id = ?`
    var room model.Room
    var typeID sql.NullInt64
    var typeName sql.NullString
    var basePrice sql.NullInt64
    err := r.db.QueryRowContext(ctx, q, id).Scan(
        &room.ID, &room.Code, &room.Title, &typeID, &typeName, &basePrice,
    )
    if errors.Is(err, sql.ErrNoRows) {
        return nil, ErrRoomNotFound
    }
    if err != nil {
        return nil, err
    }
    if !typeID.Valid {
        return nil, ErrRoomWithoutType
    }
    room.RoomType = &model.RoomType{
        ID:        uint64(typeID.Int64),
        Name:      typeName.String,
        BasePrice: basePrice.Int64,
    }
    return &room, nil
}
