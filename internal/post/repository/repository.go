package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gogotex/blogdraft/internal/kv"
	"github.com/gogotex/blogdraft/internal/post"
	"github.com/gogotex/blogdraft/pkg/logger"
	"github.com/gogotex/blogdraft/pkg/metrics"
)

// DefaultKey is the well-known storage key holding the post collection.
const DefaultKey = "blog_posts"

var (
	ErrNotFound = errors.New("post not found")
	// ErrStorageRead means the collection could not be read before a
	// mutation; nothing was written.
	ErrStorageRead = errors.New("post storage read failed")
	// ErrStorageWrite means the updated collection could not be stored.
	// The previous collection is still in place.
	ErrStorageWrite = errors.New("post storage write failed")
)

// Repository keeps the ordered post collection (newest first) under a
// single key. Every mutation is a full read-modify-write of that key.
type Repository struct {
	store kv.Store
	key   string
	// serializes read-modify-write within this process
	mu sync.Mutex
}

// New returns a Repository over store. An empty key selects DefaultKey.
func New(store kv.Store, key string) *Repository {
	if key == "" {
		key = DefaultKey
	}
	return &Repository{store: store, key: key}
}

// Load returns the full collection. Missing, unreadable or unparsable data
// all yield an empty collection; Load never fails.
func (r *Repository) Load(ctx context.Context) []*post.Post {
	list, err := r.read(ctx)
	if err != nil {
		logger.Warnf("post repository: read %q failed, using empty collection: %v", r.key, err)
		return []*post.Post{}
	}
	return list
}

// FindByID returns the post with the given id or ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id string) (*post.Post, error) {
	for _, p := range r.Load(ctx) {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

// Upsert replaces the post with the same id in place, or prepends it when
// the id is new, then writes the whole collection back.
func (r *Repository) Upsert(ctx context.Context, p *post.Post) error {
	if p == nil || p.ID == "" {
		return errors.New("upsert: post id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.read(ctx)
	if err != nil {
		metrics.PostOperations.WithLabelValues("upsert", "error").Inc()
		return fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	idx := indexOf(list, p.ID)
	if idx >= 0 {
		list[idx] = p
	} else {
		list = append([]*post.Post{p}, list...)
	}
	if err := r.write(ctx, list); err != nil {
		metrics.PostOperations.WithLabelValues("upsert", "error").Inc()
		return err
	}
	metrics.PostOperations.WithLabelValues("upsert", "ok").Inc()
	return nil
}

// DeleteByID removes the post with the given id. Deleting an unknown id is
// not an error; the collection is still written back.
func (r *Repository) DeleteByID(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.read(ctx)
	if err != nil {
		metrics.PostOperations.WithLabelValues("delete", "error").Inc()
		return fmt.Errorf("%w: %v", ErrStorageRead, err)
	}
	out := list[:0]
	for _, p := range list {
		if p.ID != id {
			out = append(out, p)
		}
	}
	if err := r.write(ctx, out); err != nil {
		metrics.PostOperations.WithLabelValues("delete", "error").Inc()
		return err
	}
	metrics.PostOperations.WithLabelValues("delete", "ok").Inc()
	return nil
}

// read returns the stored collection. Only transport failures are errors:
// absent or malformed data reads as empty.
func (r *Repository) read(ctx context.Context) ([]*post.Post, error) {
	raw, found, err := r.store.Get(ctx, r.key)
	if err != nil {
		return nil, err
	}
	if !found || raw == "" {
		return []*post.Post{}, nil
	}
	var list []*post.Post
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		logger.Debugf("post repository: %q is not a valid collection, treating as empty: %v", r.key, err)
		return []*post.Post{}, nil
	}
	out := make([]*post.Post, 0, len(list))
	for _, p := range list {
		if p != nil {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repository) write(ctx context.Context, list []*post.Post) error {
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrStorageWrite, err)
	}
	if err := r.store.Set(ctx, r.key, string(b)); err != nil {
		logger.Errorf("post repository: write %q failed: %v", r.key, err)
		return fmt.Errorf("%w: %v", ErrStorageWrite, err)
	}
	return nil
}

func indexOf(list []*post.Post, id string) int {
	for i, p := range list {
		if p.ID == id {
			return i
		}
	}
	return -1
}
