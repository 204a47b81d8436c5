package blogservice

import (
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/sushihentaime/portfolio/internal/common"
)

type Post struct {
	ID          int    `json:"id"`
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description"`
	// Content is stored in Markdown format.
	Content     string    `json:"content"`
	Tags        Tags      `json:"tags"`
	ReadTime    string    `json:"read_time"`
	PublishedAt time.Time `json:"published_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Tags is a set of trimmed, non-empty, distinct labels. It decodes from either
// a JSON array or a comma separated string and always encodes as an array.
type Tags []string

func (t *Tags) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = NormalizeTags(list)
		return nil
	}

	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*t = Tags{}
		return nil
	}

	*t = NormalizeTags(strings.Split(*s, ","))
	return nil
}

func (t Tags) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// NormalizeTags trims every tag and drops empty and repeated ones, keeping the first occurrence.
func NormalizeTags(raw []string) Tags {
	out := make(Tags, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

type CreatePostRequest struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Tags        Tags       `json:"tags"`
	ReadTime    string     `json:"read_time"`
	PublishedAt *time.Time `json:"published_at"`
}

// UpdatePostRequest replaces every listed field. Slug and PublishedAt are kept
// when omitted.
type UpdatePostRequest struct {
	Slug        string     `json:"slug"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Content     string     `json:"content"`
	Tags        Tags       `json:"tags"`
	ReadTime    string     `json:"read_time"`
	PublishedAt *time.Time `json:"published_at"`
}

type PostModel struct {
	db *sql.DB
}

type PostService struct {
	m *PostModel
	c *common.Cache
}
