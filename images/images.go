// Package images stores borrower and resource photos. Uploads and deletes
// here are best-effort side calls: a failed image operation must never fail
// or roll back a lending transaction, so transactional callers go through
// the BestEffort wrapper.
package images

import "context"

// Driver identifies a concrete image storage backend.
type Driver string

const (
	DriverFilesystem Driver = "fs"     // local directory (default, dev)
	DriverS3         Driver = "s3"     // S3-compatible bucket
	DriverMemory     Driver = "memory" // tests
)

// Image is the result of a successful upload.
type Image struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

// Store uploads image files referenced by a local path and deletes them by
// public id.
type Store interface {
	Upload(ctx context.Context, fileRef, targetID string) (Image, error)
	Delete(ctx context.Context, publicID string) error
	DeleteMany(ctx context.Context, publicIDs []string) error
	Driver() Driver
}
