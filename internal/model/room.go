package model

// RoomType groups rooms that share a base nightly price.  Pricing a
// booking always goes through the room's type; a room without a type
// cannot be booked.
type RoomType struct {
    ID        uint64 // room_types.id
    Name      string // room_types.name
    BasePrice int64  // room_types.base_price in VND per night
}

// Room is one physical room in the hotel.  A room without a type link is
// unbookable; the repository refuses to load one for pricing.
type Room struct {
    ID       uint64    // rooms.id
    Code     string    // rooms.code, human label like "101"
    Title    string    // rooms.title
    RoomType *RoomType // joined from room_types
}
