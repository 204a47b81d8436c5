package photoservice

import (
	"context"
	"database/sql"
	"time"

	"github.com/sushihentaime/portfolio/internal/common"
	"github.com/sushihentaime/portfolio/internal/imagehost"
)

// SizeClass is the layout hint for the photo grid.
type SizeClass string

const (
	SizeNormal SizeClass = "normal"
	SizeTall   SizeClass = "tall"
	SizeWide   SizeClass = "wide"
)

type Photo struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
	ImageURL    string    `json:"image_url"`
	ImageRef    string    `json:"image_ref"`
	SizeClass   SizeClass `json:"size_class"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreatePhotoRequest carries either a finished direct upload (ImageURL,
// ImageRef, Width, Height) or an encoded image in Image for the server to upload.
type CreatePhotoRequest struct {
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`

	ImageURL string `json:"image_url"`
	ImageRef string `json:"image_ref"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`

	Image string `json:"image"`

	// SizeClass is only decoded so that a caller supplied value can be rejected.
	SizeClass *string `json:"size_class"`
}

// UpdatePhotoRequest leaves nil fields unchanged. Size is an alias of SizeClass.
type UpdatePhotoRequest struct {
	ID          *int    `json:"id"`
	Title       *string `json:"title"`
	Location    *string `json:"location"`
	Description *string `json:"description"`
	SizeClass   *string `json:"size_class"`
	Size        *string `json:"size"`
}

// ImageStore is the part of the image host the photo service relies on.
type ImageStore interface {
	Upload(ctx context.Context, data []byte, filename string) (*imagehost.UploadResult, error)
	Destroy(ctx context.Context, publicID string) error
	UploadCredential() (imagehost.Credential, error)
	HostsURL(imageURL string) bool
	InFolder(publicID string) bool
}

type PhotoModel struct {
	db *sql.DB
}

type PhotoService struct {
	m      *PhotoModel
	c      *common.Cache
	images ImageStore
}
