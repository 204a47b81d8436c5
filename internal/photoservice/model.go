package photoservice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sushihentaime/portfolio/internal/common"
)

const photoColumns = `id, title, location, description, image_url, image_ref, size_class, width, height, created_at, updated_at`

func newPhotoModel(db *sql.DB) *PhotoModel {
	return &PhotoModel{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPhoto(row rowScanner) (*Photo, error) {
	var p Photo
	err := row.Scan(&p.ID, &p.Title, &p.Location, &p.Description, &p.ImageURL, &p.ImageRef, &p.SizeClass, &p.Width, &p.Height, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (m *PhotoModel) insert(ctx context.Context, p *Photo) error {
	query := `
		INSERT INTO photos (title, location, description, image_url, image_ref, size_class, width, height)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`

	args := []any{p.Title, p.Location, p.Description, p.ImageURL, p.ImageRef, p.SizeClass, p.Width, p.Height}

	return m.db.QueryRowContext(ctx, query, args...).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
}

func (m *PhotoModel) get(ctx context.Context, id int) (*Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		WHERE id = $1`

	p, err := scanPhoto(m.db.QueryRowContext(ctx, query, id))
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

// list returns every photo, newest first.
func (m *PhotoModel) list(ctx context.Context) ([]Photo, error) {
	query := `
		SELECT ` + photoColumns + `
		FROM photos
		ORDER BY created_at DESC, id DESC`

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	photos := []Photo{}
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return photos, nil
}

// update patches the metadata of photo id. Nil arguments keep the stored value.
func (m *PhotoModel) update(ctx context.Context, id int, title, location, description *string, size *SizeClass) (*Photo, error) {
	query := `
		UPDATE photos
		SET title = COALESCE($1::text, title),
			location = COALESCE($2::text, location),
			description = COALESCE($3::text, description),
			size_class = COALESCE($4::text, size_class),
			updated_at = NOW()
		WHERE id = $5
		RETURNING ` + photoColumns

	var sizeArg *string
	if size != nil {
		s := string(*size)
		sizeArg = &s
	}

	p, err := scanPhoto(m.db.QueryRowContext(ctx, query, title, location, description, sizeArg, id))
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

func (m *PhotoModel) delete(ctx context.Context, id int) error {
	query := `
		DELETE FROM photos
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
