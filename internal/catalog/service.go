package catalog

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/ariefcatur/go-storefront/internal/events"
	"github.com/ariefcatur/go-storefront/internal/media"
)

// Store is the persistence the catalog needs; *Repo implements it.
type Store interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id string) (Product, error)
	Create(ctx context.Context, v ProductValues, img media.Image) (Product, error)
	Update(ctx context.Context, id string, v ProductValues, img media.Image) (Product, error)
	Delete(ctx context.Context, id string) (Product, error)
	LowStock(ctx context.Context, threshold int) ([]Product, error)
}

// Upload is an image file attached to an admin product form.
type Upload struct {
	Name string
	Body io.Reader
}

type Service struct {
	Store  Store
	Cache  *Snapshot
	Images media.Uploader
	Events *events.Emitter
}

// List returns the full collection, from the snapshot when warm.
func (s *Service) List(ctx context.Context) ([]Product, error) {
	if ps, ok, err := s.Cache.Get(ctx); err == nil && ok {
		return ps, nil
	} else if err != nil {
		log.Printf("catalog: snapshot read: %v", err)
	}
	gen, genErr := s.Cache.Generation(ctx)
	ps, err := s.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	if genErr != nil {
		log.Printf("catalog: snapshot generation: %v", genErr)
		return ps, nil
	}
	if _, err := s.Cache.Put(ctx, gen, ps); err != nil {
		log.Printf("catalog: snapshot write: %v", err)
	}
	return ps, nil
}

func (s *Service) Get(ctx context.Context, id string) (Product, error) {
	return s.Store.Get(ctx, id)
}

// Save creates a product when id is empty and updates it otherwise. The image,
// if any, is uploaded before the row is written.
func (s *Service) Save(ctx context.Context, id string, in ProductInput, up *Upload) (Product, error) {
	v, err := in.Validate()
	if err != nil {
		return Product{}, err
	}

	img := media.Image{URL: v.ImageURL}
	var prev Product
	if id != "" {
		if prev, err = s.Store.Get(ctx, id); err != nil {
			return Product{}, err
		}
		// An update without an image keeps the current one.
		if v.ImageURL == "" || v.ImageURL == prev.ImageURL {
			img = media.Image{URL: prev.ImageURL, PublicID: prev.ImagePublicID}
		}
	}
	if up != nil {
		if img, err = s.Images.Upload(ctx, up.Name, up.Body); err != nil {
			return Product{}, err
		}
	}

	var p Product
	change := events.ChangeCreated
	if id == "" {
		p, err = s.Store.Create(ctx, v, img)
	} else {
		change = events.ChangeUpdated
		p, err = s.Store.Update(ctx, id, v, img)
	}
	if err != nil {
		if up != nil {
			s.dropImage(ctx, img.PublicID)
		}
		return Product{}, err
	}
	if id != "" && prev.ImagePublicID != "" && prev.ImagePublicID != img.PublicID {
		s.dropImage(ctx, prev.ImagePublicID)
	}

	s.changed(ctx, p.ID, change, p.Stock)
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	p, err := s.Store.Delete(ctx, id)
	if err != nil {
		return err
	}
	s.dropImage(ctx, p.ImagePublicID)
	s.changed(ctx, p.ID, events.ChangeDeleted, 0)
	return nil
}

func (s *Service) LowStock(ctx context.Context, threshold int) ([]Product, error) {
	return s.Store.LowStock(ctx, threshold)
}

// Changed invalidates the snapshot and announces the change; checkout calls it
// after decrementing stock.
func (s *Service) Changed(ctx context.Context, productID string, stock int) {
	s.changed(ctx, productID, events.ChangeStock, stock)
}

func (s *Service) changed(ctx context.Context, productID, change string, stock int) {
	if err := s.Cache.Invalidate(ctx); err != nil {
		log.Printf("catalog: snapshot invalidate: %v", err)
	}
	if err := s.Events.ProductChanged(ctx, productID, change, stock); err != nil {
		log.Printf("catalog: publish %s %s: %v", change, productID, err)
	}
}

func (s *Service) dropImage(ctx context.Context, publicID string) {
	if publicID == "" || s.Images == nil {
		return
	}
	if err := s.Images.Delete(ctx, publicID); err != nil {
		log.Printf("catalog: %v", fmt.Errorf("drop image: %w", err))
	}
}
