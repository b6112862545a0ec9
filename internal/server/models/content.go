package models

// Content is the payload attached 1:1 to a capsule. PhotoURLs is stored as
// a JSON-encoded array column; the repository normalizes it to a slice.
type Content struct {
	ID        string
	CapsuleID string
	Letter    string
	Secret    string
	Feeling   string
	Rating    int
	Song      string
	PhotoURLs []string
}

// Content defaults applied at creation and when an open capsule is read
// back with absent fields.
const (
	DefaultFeeling = "happy"
	DefaultRating  = 0
)
