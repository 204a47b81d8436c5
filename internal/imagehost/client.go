package imagehost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var (
	ErrMissingCredentials = errors.New("image host cloud name, api key and api secret must be provided")
	ErrUpstream           = errors.New("image host request failed")
	ErrTimeout            = errors.New("image host request timed out")
	ErrInvalidImage       = errors.New("invalid image")
	ErrPayloadTooLarge    = errors.New("image payload too large")
)

const resourceType = "image"

func WithObserver(o Observer) Option {
	return func(cl *Client) {
		cl.observer = o
	}
}

func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.CloudName == "" || cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, ErrMissingCredentials
	}
	if cfg.Folder == "" {
		cfg.Folder = DefaultFolder
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.DeliveryHost == "" {
		cfg.DeliveryHost = DefaultDeliveryHost
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.CredentialTTL <= 0 {
		cfg.CredentialTTL = DefaultCredentialTTL
	}

	cld, err := cloudinary.NewFromParams(cfg.CloudName, cfg.APIKey, cfg.APISecret)
	if err != nil {
		return nil, fmt.Errorf("image host: %w", err)
	}
	cld.Upload.Config.API.UploadPrefix = cfg.BaseURL

	c := &Client{
		cfg:      cfg,
		cld:      cld,
		observer: func(string, string) {},
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

func (c *Client) endpoint(action string) string {
	return fmt.Sprintf("%s/v1_1/%s/%s/%s", c.cfg.BaseURL, url.PathEscape(c.cfg.CloudName), resourceType, action)
}

// HostsURL reports whether raw is an https delivery URL of an image in this cloud.
func (c *Client) HostsURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "https" || !strings.EqualFold(u.Host, c.cfg.DeliveryHost) {
		return false
	}
	return strings.HasPrefix(u.Path, "/"+c.cfg.CloudName+"/"+resourceType+"/")
}

// InFolder reports whether publicID names an image inside the configured folder.
func (c *Client) InFolder(publicID string) bool {
	prefix := c.cfg.Folder + "/"
	return strings.HasPrefix(publicID, prefix) && len(publicID) > len(prefix) && !strings.Contains(publicID, "..")
}

// UploadCredential signs the folder and the current timestamp for a direct upload.
func (c *Client) UploadCredential() (Credential, error) {
	now := c.now()
	ts := now.Unix()

	signature, err := Sign(map[string]string{
		"folder":    c.cfg.Folder,
		"timestamp": strconv.FormatInt(ts, 10),
	}, c.cfg.APISecret)
	if err != nil {
		return Credential{}, fmt.Errorf("signing upload credential: %w", err)
	}

	return Credential{
		Signature: signature,
		Timestamp: ts,
		APIKey:    c.cfg.APIKey,
		CloudName: c.cfg.CloudName,
		Folder:    c.cfg.Folder,
		UploadURL: c.endpoint("upload"),
		ExpiresAt: now.Add(c.cfg.CredentialTTL).UTC(),
	}, nil
}

// Upload stores an encoded image in the configured folder.
func (c *Client) Upload(ctx context.Context, data []byte, filename string) (*UploadResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:           c.cfg.Folder,
		ResourceType:     resourceType,
		FilenameOverride: filename,
	})
	var apiMessage string
	if res != nil {
		apiMessage = res.Error.Message
	}
	if err = c.classify(ctx, OpUpload, err, apiMessage); err != nil {
		return nil, err
	}

	if res == nil || res.PublicID == "" || res.SecureURL == "" || res.Width <= 0 || res.Height <= 0 {
		c.observer(OpUpload, OutcomeError)
		return nil, fmt.Errorf("%w: incomplete upload response", ErrUpstream)
	}

	c.observer(OpUpload, OutcomeOK)
	return &UploadResult{
		PublicID:  res.PublicID,
		SecureURL: res.SecureURL,
		Width:     res.Width,
		Height:    res.Height,
		Format:    res.Format,
	}, nil
}

// Destroy removes the image with the given public id. An image the host no
// longer knows about counts as destroyed.
func (c *Client) Destroy(ctx context.Context, publicID string) error {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	res, err := c.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:     publicID,
		ResourceType: resourceType,
	})
	var apiMessage string
	if res != nil {
		apiMessage = res.Error.Message
	}
	if err = c.classify(ctx, OpDestroy, err, apiMessage); err != nil {
		return err
	}

	if res == nil {
		c.observer(OpDestroy, OutcomeError)
		return fmt.Errorf("%w: empty destroy response", ErrUpstream)
	}

	switch res.Result {
	case "ok", "not found":
		c.observer(OpDestroy, OutcomeOK)
		return nil
	default:
		c.observer(OpDestroy, OutcomeError)
		return fmt.Errorf("%w: destroy answered %q", ErrUpstream, res.Result)
	}
}

// classify turns a failed SDK call into ErrTimeout or ErrUpstream and reports
// it to the observer. The SDK answers host side errors with a nil error and
// the message in the result, so apiMessage is checked as well.
func (c *Client) classify(ctx context.Context, op string, err error, apiMessage string) error {
	switch {
	case err != nil && (isTimeout(err) || errors.Is(ctx.Err(), context.DeadlineExceeded)):
		c.observer(op, OutcomeTimeout)
		return fmt.Errorf("%w: %s: %v", ErrTimeout, op, err)
	case err != nil:
		c.observer(op, OutcomeError)
		return fmt.Errorf("%w: %s: %v", ErrUpstream, op, err)
	case apiMessage != "":
		c.observer(op, OutcomeError)
		return fmt.Errorf("%w: %s: %s", ErrUpstream, op, apiMessage)
	}
	return nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}
