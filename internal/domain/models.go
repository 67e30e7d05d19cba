// internal/domain/models.go
package domain

// Item is a single entry inside a storage folder listing.
type Item struct {
	Type      ResourceType `json:"type"`
	Name      string       `json:"name"`
	Path      string       `json:"path,omitempty"`
	Size      int64        `json:"size,omitempty"`
	MediaType string       `json:"media_type,omitempty"`
}

// FolderListing is the metadata a storage target reports for a folder.
type FolderListing struct {
	Type  ResourceType `json:"type"`
	Name  string       `json:"name"`
	Path  string       `json:"path,omitempty"`
	Items []Item       `json:"items"`
}

// Link is the body returned by an upload request: where to poll the
// asynchronous operation that fetches the source URL.
type Link struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// Upload records one image that was sent to the storage target.
type Upload struct {
	SourceURL string `json:"source_url"`
	Name      string `json:"name"`
	Link      *Link  `json:"link,omitempty"`
}
