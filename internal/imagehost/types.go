package imagehost

import (
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
)

const (
	DefaultBaseURL       = "https://api.cloudinary.com"
	DefaultDeliveryHost  = "res.cloudinary.com"
	DefaultFolder        = "photography"
	DefaultTimeout       = 15 * time.Second
	DefaultCredentialTTL = 10 * time.Minute

	// MaxPayloadBytes bounds a decoded image accepted for server side upload.
	MaxPayloadBytes = 10 << 20
)

// Operation names reported to an Observer.
const (
	OpUpload  = "upload"
	OpDestroy = "destroy"
)

// Outcomes reported to an Observer.
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

type Config struct {
	CloudName string
	APIKey    string
	APISecret string
	Folder    string
	// BaseURL is the API origin, overridable for tests.
	BaseURL string
	// DeliveryHost serves stored images; direct uploads must point at it.
	DeliveryHost  string
	Timeout       time.Duration
	CredentialTTL time.Duration
}

// Observer is told about every remote call once it finishes.
type Observer func(operation, outcome string)

type Client struct {
	cfg      Config
	cld      *cloudinary.Cloudinary
	observer Observer
	now      func() time.Time
}

type Option func(*Client)

// UploadResult is what the host reports for a stored image.
type UploadResult struct {
	PublicID  string `json:"public_id"`
	SecureURL string `json:"secure_url"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Format    string `json:"format"`
}

// Credential lets a client upload straight to the host without routing the binary through this server.
type Credential struct {
	Signature string    `json:"signature"`
	Timestamp int64     `json:"timestamp"`
	APIKey    string    `json:"api_key"`
	CloudName string    `json:"cloud_name"`
	Folder    string    `json:"folder"`
	UploadURL string    `json:"upload_url"`
	ExpiresAt time.Time `json:"expires_at"`
}
