package model

import "time"

// Sermon is a published sermon entry: title, speaker and a link to
// externally hosted media.  Media upload itself happens outside this
// service; only the URL is stored.
//
// Fields:
//
//	ID          – primary key identifier.
//	Title       – sermon title.
//	Speaker     – who delivered the sermon.
//	Description – summary text shown in listings.
//	MediaURL    – link to the recording (may be empty).
//	PreachedAt  – date the sermon was delivered.
//	CreatedAt   – creation timestamp.
//	UpdatedAt   – last update timestamp.
type Sermon struct {
	ID          uint64    // sermons.id
	Title       string    // sermons.title
	Speaker     string    // sermons.speaker
	Description string    // sermons.description
	MediaURL    string    // sermons.media_url
	PreachedAt  time.Time // sermons.preached_at
	CreatedAt   time.Time // sermons.created_at
	UpdatedAt   time.Time // sermons.updated_at
}
