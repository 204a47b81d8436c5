package blogservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/sushihentaime/portfolio/internal/common"
)

var (
	ErrDuplicateSlug = errors.New("a post with this slug already exists")
)

const postColumns = `id, slug, title, description, content, tags, read_time, published_at, updated_at`

func newPostModel(db *sql.DB) *PostModel {
	return &PostModel{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPost(row rowScanner) (*Post, error) {
	var p Post
	err := row.Scan(&p.ID, &p.Slug, &p.Title, &p.Description, &p.Content, pq.Array((*[]string)(&p.Tags)), &p.ReadTime, &p.PublishedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Tags == nil {
		p.Tags = Tags{}
	}
	return &p, nil
}

func (m *PostModel) insert(ctx context.Context, req *CreatePostRequest) (*Post, error) {
	query := `
		INSERT INTO blogs (slug, title, description, content, tags, read_time, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7::timestamptz, NOW()))
		RETURNING ` + postColumns

	args := []any{req.Slug, req.Title, req.Description, req.Content, pq.Array([]string(req.Tags)), req.ReadTime, nullTime(req.PublishedAt)}

	p, err := scanPost(m.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case common.UniqueViolation(err, "blogs_slug_key"):
			return nil, ErrDuplicateSlug
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *PostModel) getBySlug(ctx context.Context, slug string) (*Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM blogs
		WHERE slug = $1`

	p, err := scanPost(m.db.QueryRowContext(ctx, query, slug))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		default:
			return nil, err
		}
	}

	return p, nil
}

// list returns every post, newest publication first.
func (m *PostModel) list(ctx context.Context) ([]Post, error) {
	query := `
		SELECT ` + postColumns + `
		FROM blogs
		ORDER BY published_at DESC, id DESC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// update overwrites the listed fields. An empty slug and a nil publication date keep the stored values.
func (m *PostModel) update(ctx context.Context, id int, req *UpdatePostRequest) (*Post, error) {
	query := `
		UPDATE blogs
		SET slug = COALESCE(NULLIF($1::text, ''), slug),
			title = $2,
			description = $3,
			content = $4,
			tags = $5,
			read_time = $6,
			published_at = COALESCE($7::timestamptz, published_at),
			updated_at = NOW()
		WHERE id = $8
		RETURNING ` + postColumns

	args := []any{req.Slug, req.Title, req.Description, req.Content, pq.Array([]string(req.Tags)), req.ReadTime, nullTime(req.PublishedAt), id}

	p, err := scanPost(m.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, common.ErrRecordNotFound
		case common.UniqueViolation(err, "blogs_slug_key"):
			return nil, ErrDuplicateSlug
		default:
			return nil, err
		}
	}

	return p, nil
}

func (m *PostModel) delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM blogs
		WHERE id = $1`

	res, err := m.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows != 1 {
		switch {
		case rows == 0:
			return common.ErrRecordNotFound
		default:
			return fmt.Errorf("expected 1 row to be affected, got %d", rows)
		}
	}

	return nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
