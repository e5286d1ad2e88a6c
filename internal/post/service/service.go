package service

import (
	"context"
	"errors"
	"time"

	"github.com/gogotex/blogdraft/internal/post"
	"github.com/gogotex/blogdraft/internal/post/repository"
	"github.com/gogotex/blogdraft/pkg/logger"
)

// Service defines the post operations used by the handler and CLI layers.
type Service interface {
	List(ctx context.Context) []*post.Post
	Get(ctx context.Context, id string) (*post.Post, error)
	// Open returns the draft for editing. Unknown or empty ids open a new
	// draft instead of failing.
	Open(ctx context.Context, id string) *post.Draft
	// Save commits a snapshot of d. On the first successful save d.ID is
	// assigned; on failure d is left untouched.
	Save(ctx context.Context, d *post.Draft, published bool) (*post.Post, error)
	Delete(ctx context.Context, id string) error
}

// Option configures the service.
type Option func(*postService)

// WithClock overrides the time source for UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *postService) { s.now = now }
}

// WithIDGenerator overrides identity minting.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *postService) { s.newID = gen }
}

// New returns a Service backed by repo.
func New(repo *repository.Repository, opts ...Option) Service {
	s := &postService{repo: repo, now: time.Now, newID: post.NewID}
	for _, o := range opts {
		o(s)
	}
	return s
}

type postService struct {
	repo  *repository.Repository
	now   func() time.Time
	newID func() (string, error)
}

func (s *postService) List(ctx context.Context) []*post.Post {
	return s.repo.Load(ctx)
}

func (s *postService) Get(ctx context.Context, id string) (*post.Post, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *postService) Open(ctx context.Context, id string) *post.Draft {
	if id == "" {
		return post.NewDraft()
	}
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Warnf("open post %s: %v", id, err)
		}
		logger.Debugf("post %s not found, opening a new draft", id)
		return post.NewDraft()
	}
	return post.DraftFromPost(p)
}

func (s *postService) Save(ctx context.Context, d *post.Draft, published bool) (*post.Post, error) {
	id := d.ID
	if id == "" {
		var err error
		if id, err = s.newID(); err != nil {
			return nil, err
		}
	}
	p := d.Snapshot(id, published, s.now())
	if err := s.repo.Upsert(ctx, p); err != nil {
		return nil, err
	}
	d.ID = id
	d.Published = published
	return p, nil
}

func (s *postService) Delete(ctx context.Context, id string) error {
	return s.repo.DeleteByID(ctx, id)
}
