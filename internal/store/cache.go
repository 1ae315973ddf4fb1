package store

import (
	"context"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"booking-api/internal/model"
)

// Cached puts a short-lived cache in front of ClientByID, which every
// authenticated request hits. A delete leaves a tombstone for one TTL so a
// read that raced the delete cannot put the row back.
type Cached struct {
	Repository
	c *gocache.Cache
}

type deleted struct{}

func NewCached(r Repository, ttl time.Duration) *Cached {
	return &Cached{Repository: r, c: gocache.New(ttl, time.Minute)}
}

func key(id int64) string { return strconv.FormatInt(id, 10) }

func (s *Cached) ClientByID(ctx context.Context, id int64) (*model.Client, error) {
	if v, ok := s.c.Get(key(id)); ok {
		switch v := v.(type) {
		case deleted:
			return nil, ErrNotFound
		case *model.Client:
			c := *v
			return &c, nil
		}
	}
	c, err := s.Repository.ClientByID(ctx, id)
	if err != nil {
		return nil, err
	}
	cp := *c
	// Add fails if a tombstone landed while we were reading
	_ = s.c.Add(key(id), &cp, gocache.DefaultExpiration)
	return c, nil
}

func (s *Cached) DeleteClient(ctx context.Context, id int64) error {
	s.c.Delete(key(id))
	if err := s.Repository.DeleteClient(ctx, id); err != nil {
		return err
	}
	s.c.SetDefault(key(id), deleted{})
	return nil
}
