package domain

import "strings"

// ResourceType is the kind of a storage resource.
type ResourceType string

const (
	ResourceDir  ResourceType = "dir"
	ResourceFile ResourceType = "file"
)

// UploadName derives the storage object name for an image URL by joining its
// last two path segments with an underscore.
//
//	https://images.dog.ceo/breeds/collie-rough/n0210.jpg -> collie-rough_n0210.jpg
func UploadName(imageURL string) string {
	parts := strings.Split(imageURL, "/")
	if len(parts) < 2 {
		return imageURL
	}

	return strings.Join(parts[len(parts)-2:], "_")
}
