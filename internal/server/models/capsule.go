package models

import "time"

// Capsule is the sealed-record metadata row. Content lives in a separate
// 1:1 row so the locked/open read paths can treat them independently.
type Capsule struct {
	ID        string
	UserID    string
	Title     string
	OpenDate  time.Time
	CreatedAt time.Time
}

// CapsuleRecord is the joined read model returned by list/get queries:
// capsule metadata plus its content and the derived open state. IsOpen is
// always recomputed from the clock, never stored. Content fields are
// pointers so a locked capsule serializes them as null.
type CapsuleRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	OpenDate  time.Time `json:"open_date"`
	CreatedAt time.Time `json:"created_at"`
	IsOpen    bool      `json:"is_open"`

	Letter    *string  `json:"letter"`
	Secret    *string  `json:"secret"`
	Feeling   *string  `json:"feeling"`
	Rating    *int     `json:"rating"`
	Song      *string  `json:"song"`
	PhotoURLs []string `json:"photo_urls"`
}

// OpenedCapsule is the slim row returned by the check-opened poll.
type OpenedCapsule struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	OpenDate time.Time `json:"open_date"`
}
