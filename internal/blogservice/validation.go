package blogservice

import (
	"math"
	"strings"

	"github.com/sushihentaime/portfolio/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, 255), "title", "must not be more than 255 characters long")
}

func validateSlug(v *common.Validator, slug string) {
	v.Check(slug != "", "slug", "must be provided")
	v.Check(v.CheckStringLength(slug, 0, 255), "slug", "must not be more than 255 characters long")
	v.Check(slug == "" || SlugRX.MatchString(slug), "slug", "must only contain lowercase letters, numbers, and single hyphens")
}

func validateContent(v *common.Validator, content string) {
	v.Check(strings.TrimSpace(content) != "", "content", "must be provided")
}

func validateReadTime(v *common.Validator, readTime string) {
	v.Check(v.CheckStringLength(readTime, 0, 50), "read_time", "must not be more than 50 characters long")
}

func validateID(v *common.Validator, id int) {
	v.Check(id > 0, "id", "must be greater than zero")
	v.Check(id <= math.MaxInt32, "id", "must not be greater than 2147483647")
}
