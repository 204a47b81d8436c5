package blogservice

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sushihentaime/portfolio/internal/common"
)

func NewPostService(db *sql.DB, cache *common.Cache) *PostService {
	return &PostService{m: newPostModel(db), c: cache}
}

// ListPosts returns every post, newest first. Results are cached until the next write.
func (s *PostService) ListPosts(ctx context.Context) ([]Post, error) {
	return common.CacheLoad(s.c, common.CachePrefixPosts, common.CacheKeyPosts(), func() ([]Post, error) {
		return s.m.list(ctx)
	})
}

// GetPost returns the post with the given slug or common.ErrRecordNotFound.
func (s *PostService) GetPost(ctx context.Context, slug string) (*Post, error) {
	slug = strings.TrimSpace(slug)

	v := common.NewValidator()
	validateSlug(v, slug)
	if !v.Valid() {
		// a malformed slug can never be stored
		return nil, common.ErrRecordNotFound
	}

	return common.CacheLoad(s.c, common.CachePrefixPosts, common.CacheKeyPostBySlug(slug), func() (*Post, error) {
		return s.m.getBySlug(ctx, slug)
	})
}

// CreatePost stores a new post. When no slug is given it is derived from the title.
func (s *PostService) CreatePost(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	if req.Slug == "" {
		req.Slug = Slugify(req.Title)
	}
	req.Content = sanitizeMarkdown(req.Content)
	req.Tags = NormalizeTags(req.Tags)
	req.ReadTime = strings.TrimSpace(req.ReadTime)

	v := common.NewValidator()
	validateSlug(v, req.Slug)
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateReadTime(v, req.ReadTime)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.ReadTime == "" {
		req.ReadTime = estimateReadTime(req.Content)
	}

	p, err := s.m.insert(ctx, req)
	if err != nil {
		return nil, err
	}

	s.c.DeletePrefix(common.CachePrefixPosts)

	return p, nil
}

// UpdatePost replaces the fields of post id. The slug changes only when the request carries one.
func (s *PostService) UpdatePost(ctx context.Context, id int, req *UpdatePostRequest) (*Post, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Slug = strings.TrimSpace(req.Slug)
	req.Content = sanitizeMarkdown(req.Content)
	req.Tags = NormalizeTags(req.Tags)
	req.ReadTime = strings.TrimSpace(req.ReadTime)

	v := common.NewValidator()
	validateID(v, id)
	if req.Slug != "" {
		validateSlug(v, req.Slug)
	}
	validateTitle(v, req.Title)
	validateContent(v, req.Content)
	validateReadTime(v, req.ReadTime)
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	if req.ReadTime == "" {
		req.ReadTime = estimateReadTime(req.Content)
	}

	p, err := s.m.update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.c.DeletePrefix(common.CachePrefixPosts)

	return p, nil
}

// DeletePost removes post id. Deleting a missing post yields common.ErrRecordNotFound.
func (s *PostService) DeletePost(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateID(v, id)
	if !v.Valid() {
		return v.ValidationError()
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.c.DeletePrefix(common.CachePrefixPosts)

	return nil
}
