package authservice

import (
	"sync"
	"time"

	"github.com/gorilla/sessions"
	"golang.org/x/time/rate"

	"github.com/sushihentaime/portfolio/internal/common"
)

const (
	SessionName = "admin_session"

	DefaultSessionTTL time.Duration = 24 * time.Hour

	// session value keys
	authenticatedKey = "authenticated"
	expiresAtKey     = "expires_at"
)

// Gate is the single place where the admin secret is checked and session
// cookies are issued or verified.
type Gate struct {
	secret secret
	store  *sessions.CookieStore
	ttl    time.Duration
	now    func() time.Time
}

type Options struct {
	// SecretHash is the bcrypt hash of the shared admin secret.
	SecretHash []byte
	// SigningKey authenticates session cookies. It must be at least 32 bytes.
	SigningKey []byte
	TTL        time.Duration
	// Secure marks the cookie as HTTPS only.
	Secure bool
}

type secret struct {
	hash []byte
}

// LoginLimiter throttles login attempts per client address.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters *common.Cache
	limit    rate.Limit
	burst    int
}
