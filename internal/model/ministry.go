package model

import "time"

// Ministry describes a congregation ministry or group that members
// can read about and favorite.
//
// Fields:
//
//	ID          – primary key identifier.
//	Name        – ministry name, unique across the site.
//	Description – what the ministry does and when it meets.
//	Leader      – display name of the ministry leader.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Ministry struct {
	ID          uint64    // ministries.id
	Name        string    // ministries.name
	Description string    // ministries.description
	Leader      string    // ministries.leader
	CreatedAt   time.Time // ministries.created_at
	UpdatedAt   time.Time // ministries.updated_at
}
