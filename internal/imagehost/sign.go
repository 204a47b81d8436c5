package imagehost

import (
	"net/url"

	"github.com/cloudinary/cloudinary-go/v2/api"
)

// Sign computes the request signature the host expects for params. Empty
// values are left out before signing.
func Sign(params map[string]string, secret string) (string, error) {
	if secret == "" {
		return "", ErrMissingCredentials
	}

	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}

	return api.SignParameters(values, secret)
}
