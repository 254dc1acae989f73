package entity

import "time"

// StoredImage describes a file held by the image storage backend.
type StoredImage struct {
	Name      string
	URL       string
	Size      int64
	CreatedAt time.Time
}
