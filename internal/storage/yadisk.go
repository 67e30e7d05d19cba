package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andresuchdata/dog-uploader/internal/domain"
	"github.com/andresuchdata/dog-uploader/internal/middleware"
	"github.com/andresuchdata/dog-uploader/pkg/logger"
	"github.com/goccy/go-json"
	"golang.org/x/oauth2"
)

// DefaultYaDiskBaseURL is the Yandex Disk REST API root.
const DefaultYaDiskBaseURL = "https://cloud-api.yandex.net"

const (
	resourcesPath = "/v1/disk/resources"
	uploadPath    = "/v1/disk/resources/upload"
)

// YaDiskConfig encapsulates the connection info for Yandex Disk.
type YaDiskConfig struct {
	BaseURL string
	Token   string
	// HTTPClient is the transport wrapped with the OAuth token. Optional.
	HTTPClient *http.Client
}

// YaDisk implements Target on top of the Yandex Disk REST API.
type YaDisk struct {
	baseURL string
	client  *http.Client
}

// NewYaDisk builds a YaDisk client whose requests carry
// "Authorization: OAuth <token>".
func NewYaDisk(cfg YaDiskConfig) (*YaDisk, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("yandex disk token must be provided")
	}

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultYaDiskBaseURL
	}

	base := cfg.HTTPClient
	if base == nil {
		base = middleware.Client("yandex-disk", nil)
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cfg.Token,
		TokenType:   "OAuth",
	})

	return &YaDisk{
		baseURL: baseURL,
		client:  oauth2.NewClient(ctx, src),
	}, nil
}

type resource struct {
	Type      domain.ResourceType `json:"type"`
	Name      string              `json:"name"`
	Path      string              `json:"path"`
	Size      int64               `json:"size"`
	MediaType string              `json:"media_type"`
	Embedded  *embedded           `json:"_embedded"`
}

type embedded struct {
	Path  string     `json:"path"`
	Total int        `json:"total"`
	Items []resource `json:"items"`
}

// CreateFolder creates the folder name. Only 201 Created counts as success;
// an existing folder (409) is reported as ErrFolderCreation.
func (y *YaDisk) CreateFolder(ctx context.Context, name string) error {
	q := url.Values{"path": {name}}

	res, err := y.do(ctx, http.MethodPut, resourcesPath, q)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFolderCreation, name, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusCreated {
		return fmt.Errorf("%w: %s: %w", ErrFolderCreation, name, statusError(res))
	}

	logger.Log.Debug().Str("folder", name).Msg("folder created")
	return nil
}

// UploadFromURL asks Yandex Disk to fetch sourceURL and store it at
// /folder/name, overwriting any existing file.
func (y *YaDisk) UploadFromURL(ctx context.Context, folder, name, sourceURL string) (*domain.Link, error) {
	q := url.Values{
		"path":      {"/" + folder + "/" + name},
		"url":       {sourceURL},
		"overwrite": {"true"},
	}

	res, err := y.do(ctx, http.MethodPost, uploadPath, q)
	if err != nil {
		return nil, fmt.Errorf("upload %s to %s: %w", sourceURL, folder, err)
	}
	defer res.Body.Close()

	if !success(res.StatusCode) {
		return nil, fmt.Errorf("upload %s to %s: %w", sourceURL, folder, statusError(res))
	}

	var link domain.Link
	if err := json.NewDecoder(res.Body).Decode(&link); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	return &link, nil
}

// ListFolder returns the metadata and embedded items of folder name.
func (y *YaDisk) ListFolder(ctx context.Context, name string) (*domain.FolderListing, error) {
	q := url.Values{"path": {"/" + name}}

	res, err := y.do(ctx, http.MethodGet, resourcesPath, q)
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", name, err)
	}
	defer res.Body.Close()

	if !success(res.StatusCode) {
		return nil, fmt.Errorf("list folder %s: %w", name, statusError(res))
	}

	var r resource
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode folder listing: %w", err)
	}

	listing := &domain.FolderListing{
		Type:  r.Type,
		Name:  r.Name,
		Path:  r.Path,
		Items: []domain.Item{},
	}
	if r.Embedded != nil {
		for _, it := range r.Embedded.Items {
			listing.Items = append(listing.Items, domain.Item{
				Type:      it.Type,
				Name:      it.Name,
				Path:      it.Path,
				Size:      it.Size,
				MediaType: it.MediaType,
			})
		}
	}

	return listing, nil
}

func (y *YaDisk) do(ctx context.Context, method, path string, q url.Values) (*http.Response, error) {
	endpoint := y.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return y.client.Do(req)
}

func success(code int) bool {
	return code >= 200 && code <= 299
}

func statusError(res *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
	return &StatusError{
		Method:     res.Request.Method,
		URL:        res.Request.URL.String(),
		StatusCode: res.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

var _ Target = (*YaDisk)(nil)
