package photoservice

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sushihentaime/portfolio/internal/common"
	"github.com/sushihentaime/portfolio/internal/imagehost"
)

func NewPhotoService(db *sql.DB, cache *common.Cache, images ImageStore) *PhotoService {
	return &PhotoService{m: newPhotoModel(db), c: cache, images: images}
}

// ListPhotos returns every photo, newest first. Results are cached until the next write.
func (s *PhotoService) ListPhotos(ctx context.Context) ([]Photo, error) {
	return common.CacheLoad(s.c, common.CachePrefixPhotos, common.CacheKeyPhotos(), func() ([]Photo, error) {
		return s.m.list(ctx)
	})
}

// CreatePhoto records a photo. A request with an image_url uses the caller's
// direct upload as is; otherwise the encoded image is uploaded here first.
// The size class always comes from the pixel dimensions.
func (s *PhotoService) CreatePhoto(ctx context.Context, req *CreatePhotoRequest) (*Photo, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Location = strings.TrimSpace(req.Location)
	req.ImageURL = strings.TrimSpace(req.ImageURL)
	req.ImageRef = strings.TrimSpace(req.ImageRef)

	direct := req.ImageURL != ""

	v := common.NewValidator()
	validateTitle(v, req.Title)
	validateLocation(v, req.Location)
	v.Check(req.SizeClass == nil, "size_class", "is derived from the image and cannot be set")
	switch {
	case direct:
		validateDirectUpload(v, req, s.images)
	default:
		v.Check(strings.TrimSpace(req.Image) != "", "image", "must be provided")
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	p := &Photo{
		Title:       req.Title,
		Location:    req.Location,
		Description: req.Description,
	}

	if direct {
		p.ImageURL, p.ImageRef = req.ImageURL, req.ImageRef
		p.Width, p.Height = req.Width, req.Height
	} else {
		res, err := s.upload(ctx, req.Image)
		if err != nil {
			return nil, err
		}
		p.ImageURL, p.ImageRef = res.SecureURL, res.PublicID
		p.Width, p.Height = res.Width, res.Height
	}
	p.SizeClass = ClassifySize(p.Width, p.Height)

	if err := s.m.insert(ctx, p); err != nil {
		if !direct {
			// do not leave an orphaned image behind
			if derr := s.images.Destroy(context.WithoutCancel(ctx), p.ImageRef); derr != nil {
				err = errors.Join(err, derr)
			}
		}
		return nil, err
	}

	s.c.DeletePrefix(common.CachePrefixPhotos)

	return p, nil
}

// upload validates an encoded image locally before sending it to the host.
func (s *PhotoService) upload(ctx context.Context, encoded string) (*imagehost.UploadResult, error) {
	data, err := imagehost.DecodePayload(encoded)
	if err != nil {
		v := common.NewValidator()
		switch {
		case errors.Is(err, imagehost.ErrPayloadTooLarge):
			v.AddError("image", "must not be larger than 10MB")
		default:
			v.AddError("image", "must be a base64 encoded image")
		}
		return nil, v.ValidationError()
	}

	format, _, _, err := imagehost.Inspect(data)
	if err != nil {
		v := common.NewValidator()
		v.AddError("image", "must be a jpeg, png, gif or webp image")
		return nil, v.ValidationError()
	}

	return s.images.Upload(ctx, data, "upload."+format)
}

// UpdatePhoto patches metadata. Fields left nil keep their stored values; the
// image itself cannot be changed.
func (s *PhotoService) UpdatePhoto(ctx context.Context, req *UpdatePhotoRequest) (*Photo, error) {
	size := req.SizeClass
	if size == nil {
		size = req.Size
	}

	var sizeClass *SizeClass
	if size != nil {
		sc := SizeClass(strings.TrimSpace(*size))
		sizeClass = &sc
	}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Location != nil {
		location := strings.TrimSpace(*req.Location)
		req.Location = &location
	}

	v := common.NewValidator()
	validateID(v, req.ID)
	if req.Title != nil {
		v.Check(*req.Title != "", "title", "must not be empty")
		validateTitle(v, *req.Title)
	}
	if req.Location != nil {
		validateLocation(v, *req.Location)
	}
	if sizeClass != nil {
		validateSizeClass(v, *sizeClass)
	}
	if !v.Valid() {
		return nil, v.ValidationError()
	}

	p, err := s.m.update(ctx, *req.ID, req.Title, req.Location, req.Description, sizeClass)
	if err != nil {
		return nil, err
	}

	s.c.DeletePrefix(common.CachePrefixPhotos)

	return p, nil
}

// DeletePhoto removes the remote image and then the row. If the image host
// fails, the row is kept so the call can be retried.
func (s *PhotoService) DeletePhoto(ctx context.Context, id int) error {
	v := common.NewValidator()
	validateID(v, &id)
	if !v.Valid() {
		return v.ValidationError()
	}

	p, err := s.m.get(ctx, id)
	if err != nil {
		return err
	}

	if err := s.images.Destroy(ctx, p.ImageRef); err != nil {
		return err
	}

	if err := s.m.delete(ctx, id); err != nil {
		return err
	}

	s.c.DeletePrefix(common.CachePrefixPhotos)

	return nil
}

// UploadCredential signs a short lived direct upload into the photo folder.
func (s *PhotoService) UploadCredential() (imagehost.Credential, error) {
	return s.images.UploadCredential()
}
