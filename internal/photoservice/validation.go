package photoservice

import (
	"math"
	"net/url"
	"strings"

	"github.com/sushihentaime/portfolio/internal/common"
)

func validateTitle(v *common.Validator, title string) {
	v.Check(title != "", "title", "must be provided")
	v.Check(v.CheckStringLength(title, 0, 255), "title", "must not be more than 255 characters long")
}

func validateLocation(v *common.Validator, location string) {
	v.Check(v.CheckStringLength(location, 0, 255), "location", "must not be more than 255 characters long")
}

func validateDirectUpload(v *common.Validator, req *CreatePhotoRequest, images ImageStore) {
	u, err := url.Parse(req.ImageURL)
	v.Check(err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != "", "image_url", "must be an absolute http(s) URL")
	v.Check(images.HostsURL(req.ImageURL), "image_url", "must be an https URL served by the image host")
	v.Check(strings.TrimSpace(req.ImageRef) != "", "image_ref", "must be provided with image_url")
	v.Check(images.InFolder(req.ImageRef), "image_ref", "must be inside the photo folder")
	v.Check(req.Width > 0, "width", "must be greater than zero")
	v.Check(req.Height > 0, "height", "must be greater than zero")
}

func validateSizeClass(v *common.Validator, s SizeClass) {
	v.Check(s.Valid(), "size_class", "must be one of normal, tall, wide")
}

func validateID(v *common.Validator, id *int) {
	v.Check(id != nil, "id", "must be provided")
	v.Check(id == nil || *id > 0, "id", "must be greater than zero")
	v.Check(id == nil || *id <= math.MaxInt32, "id", "must not be greater than 2147483647")
}
