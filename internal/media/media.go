// Package media stores product images in object storage.
package media

import (
	"context"
	"errors"
	"io"
)

var ErrDisabled = errors.New("image uploads are not configured")

// Image is a stored object: its public URL and the key needed to delete it.
type Image struct {
	URL      string
	PublicID string
}

type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (Image, error)
	Delete(ctx context.Context, publicID string) error
}

// Disabled rejects uploads; deletes of nothing succeed.
type Disabled struct{}

func (Disabled) Upload(context.Context, string, io.Reader) (Image, error) {
	return Image{}, ErrDisabled
}

func (Disabled) Delete(_ context.Context, publicID string) error {
	if publicID == "" {
		return nil
	}
	return ErrDisabled
}
