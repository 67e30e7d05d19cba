package pipeline

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/dog-uploader/internal/domain"
)

// VerificationError lists every check a folder listing failed.
type VerificationError struct {
	Folder   string
	Failures []string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification of folder %s failed: %s", e.Folder, strings.Join(e.Failures, "; "))
}

// Verify checks that listing is the folder named folder and holds exactly
// expected files, each named with the breed prefix.
func Verify(listing *domain.FolderListing, folder, breed string, expected int) error {
	if listing == nil {
		return &VerificationError{Folder: folder, Failures: []string{"listing is empty"}}
	}

	var failures []string
	if listing.Type != domain.ResourceDir {
		failures = append(failures, fmt.Sprintf("type is %q, want %q", listing.Type, domain.ResourceDir))
	}
	if listing.Name != folder {
		failures = append(failures, fmt.Sprintf("name is %q, want %q", listing.Name, folder))
	}
	if len(listing.Items) != expected {
		failures = append(failures, fmt.Sprintf("item count is %d, want %d", len(listing.Items), expected))
	}
	for _, item := range listing.Items {
		if item.Type != domain.ResourceFile {
			failures = append(failures, fmt.Sprintf("item %q has type %q, want %q", item.Name, item.Type, domain.ResourceFile))
		}
		if !strings.HasPrefix(item.Name, breed) {
			failures = append(failures, fmt.Sprintf("item %q does not start with %q", item.Name, breed))
		}
	}

	if len(failures) > 0 {
		return &VerificationError{Folder: folder, Failures: failures}
	}
	return nil
}
