package dogapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/andresuchdata/dog-uploader/internal/middleware"
	"github.com/goccy/go-json"
)

// DefaultBaseURL is the public dog.ceo API root.
const DefaultBaseURL = "https://dog.ceo/api"

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dog api %s %s: unexpected status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Client reads breeds and random images from the dog.ceo API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client. An empty baseURL falls back to DefaultBaseURL and
// a nil httpClient to a request-logging client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = middleware.Client("dog-api", nil)
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

type listResponse struct {
	Message []string `json:"message"`
	Status  string   `json:"status"`
}

type imageResponse struct {
	Message string `json:"message"`
	Status  string `json:"status"`
}

// SubBreeds returns the sub-breeds of breed. A breed without sub-breeds yields
// an empty slice.
func (c *Client) SubBreeds(ctx context.Context, breed string) ([]string, error) {
	var resp listResponse
	if err := c.get(ctx, "/breed/"+url.PathEscape(breed)+"/list", &resp); err != nil {
		return nil, fmt.Errorf("list sub-breeds of %s: %w", breed, err)
	}
	if resp.Message == nil {
		return []string{}, nil
	}

	return resp.Message, nil
}

// RandomImage returns the URL of a random image for breed, narrowed to
// subBreed when it is not empty.
func (c *Client) RandomImage(ctx context.Context, breed, subBreed string) (string, error) {
	path := "/breed/" + url.PathEscape(breed)
	if subBreed != "" {
		path += "/" + url.PathEscape(subBreed)
	}
	path += "/images/random"

	var resp imageResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return "", fmt.Errorf("random image of %s: %w", strings.TrimSuffix(breed+"/"+subBreed, "/"), err)
	}

	return resp.Message, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s: %w", endpoint, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return &StatusError{
			Method:     req.Method,
			URL:        endpoint,
			StatusCode: res.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response from %s: %w", endpoint, err)
	}

	return nil
}
