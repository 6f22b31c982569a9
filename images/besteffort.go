package images

import (
	"context"
	"log"
)

// BestEffort wraps a Store with a never-fails contract: every error is
// logged and swallowed. A failed upload reports a zero Image; callers treat
// an empty URL as "no picture".
type BestEffort struct {
	inner Store
}

func NewBestEffort(inner Store) *BestEffort { return &BestEffort{inner: inner} }

func (b *BestEffort) Upload(ctx context.Context, fileRef, targetID string) (Image, error) {
	img, err := b.inner.Upload(ctx, fileRef, targetID)
	if err != nil {
		log.Printf("image upload failed for %s (target %s): %v", fileRef, targetID, err)
		return Image{}, nil
	}
	return img, nil
}

func (b *BestEffort) Delete(ctx context.Context, publicID string) error {
	if err := b.inner.Delete(ctx, publicID); err != nil {
		log.Printf("image delete failed for %s: %v", publicID, err)
	}
	return nil
}

func (b *BestEffort) DeleteMany(ctx context.Context, publicIDs []string) error {
	if err := b.inner.DeleteMany(ctx, publicIDs); err != nil {
		log.Printf("image delete failed for %d assets: %v", len(publicIDs), err)
	}
	return nil
}

func (b *BestEffort) Driver() Driver { return b.inner.Driver() }
