package model

import "time"

// Item types a favorite may point at.  Stored as lowercase strings
// in favorites.item_type.
const (
	ItemTypeSermon   = "sermon"
	ItemTypeEvent    = "event"
	ItemTypeBlog     = "blog"
	ItemTypeMinistry = "ministry"
)

// ValidItemType reports whether s is a known favorite item type.
// Unknown types are rejected before any write reaches the database.
func ValidItemType(s string) bool {
	switch s {
	case ItemTypeSermon, ItemTypeEvent, ItemTypeBlog, ItemTypeMinistry:
		return true
	}
	return false
}

// Favorite marks a user's interest in a content item.  Unlike a
// registration, a favorite has no soft-cancel state: removing it
// deletes the row so a later re-add behaves exactly like a first
// add.  The favorites table carries a unique index over
// (user_id, item_type, item_id).
//
// Fields:
//
//	ID        – primary key identifier.
//	UserID    – user who favorited the item.
//	ItemType  – one of sermon, event, blog, ministry.
//	ItemID    – identifier of the favorited item.
//	CreatedAt – creation timestamp.
type Favorite struct {
	ID        uint64    // favorites.id
	UserID    uint64    // favorites.user_id
	ItemType  string    // favorites.item_type
	ItemID    uint64    // favorites.item_id
	CreatedAt time.Time // favorites.created_at
}
