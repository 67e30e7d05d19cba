package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/andresuchdata/dog-uploader/internal/domain"
	"github.com/andresuchdata/dog-uploader/internal/middleware"
	"github.com/andresuchdata/dog-uploader/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config encapsulates the connection info for an S3-compatible bucket.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// HTTPClient fetches source URLs before they are stored. Optional.
	HTTPClient *http.Client
}

// objectAPI is the subset of *minio.Client used by S3Target.
type objectAPI interface {
	StatObject(ctx context.Context, bucket, key string, opts minio.StatObjectOptions) (minio.ObjectInfo, error)
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
}

// S3Target implements Target for S3-compatible services. A folder is a
// zero-byte "<name>/" marker object; uploads are fetched client-side and
// streamed into the bucket since S3 cannot pull a URL by itself.
type S3Target struct {
	api      objectAPI
	bucket   string
	endpoint string
	fetch    *http.Client
}

// NewS3Target builds a new S3Target backed by minio-go.
func NewS3Target(cfg S3Config) (*S3Target, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint must be provided")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials must be provided")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket must be provided")
	}

	host, secure := splitEndpoint(cfg.Endpoint, cfg.UseSSL)

	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(host, &minio.Options{
		Creds:        credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure:       secure,
		Region:       region,
		BucketLookup: minio.BucketLookupPath,
	})
	if err != nil {
		return nil, fmt.Errorf("init s3 client: %w", err)
	}

	scheme := "http"
	if secure {
		scheme = "https"
	}

	return newS3Target(client, cfg.Bucket, scheme+"://"+host, cfg.HTTPClient), nil
}

func newS3Target(api objectAPI, bucket, endpoint string, fetch *http.Client) *S3Target {
	if fetch == nil {
		fetch = middleware.Client("image-source", nil)
	}
	return &S3Target{
		api:      api,
		bucket:   bucket,
		endpoint: endpoint,
		fetch:    fetch,
	}
}

// CreateFolder writes the folder marker. An existing marker is reported as
// ErrFolderCreation, mirroring a 409 from Yandex Disk.
func (t *S3Target) CreateFolder(ctx context.Context, name string) error {
	marker := folderKey(name)

	exists, err := t.exists(ctx, marker)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFolderCreation, name, err)
	}
	if exists {
		return fmt.Errorf("%w: %s: already exists", ErrFolderCreation, name)
	}

	if _, err := t.api.PutObject(ctx, t.bucket, marker, bytes.NewReader(nil), 0, minio.PutObjectOptions{
		ContentType: "application/x-directory",
	}); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrFolderCreation, name, err)
	}

	logger.Log.Debug().Str("bucket", t.bucket).Str("folder", name).Msg("folder marker created")
	return nil
}

// UploadFromURL downloads sourceURL and stores it at folder/name, replacing
// any existing object.
func (t *S3Target) UploadFromURL(ctx context.Context, folder, name, sourceURL string) (*domain.Link, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build source request: %w", err)
	}

	res, err := t.fetch.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", sourceURL, err)
	}
	defer res.Body.Close()

	if !success(res.StatusCode) {
		return nil, fmt.Errorf("fetch %s: %w", sourceURL, statusError(res))
	}

	key := path.Join(folder, name)
	contentType := res.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	if _, err := t.api.PutObject(ctx, t.bucket, key, res.Body, res.ContentLength, minio.PutObjectOptions{
		ContentType: contentType,
	}); err != nil {
		return nil, fmt.Errorf("put %s: %w", key, err)
	}

	return &domain.Link{
		Href:   t.endpoint + "/" + t.bucket + "/" + key,
		Method: http.MethodGet,
	}, nil
}

// ListFolder lists the direct children of folder name.
func (t *S3Target) ListFolder(ctx context.Context, name string) (*domain.FolderListing, error) {
	marker := folderKey(name)

	exists, err := t.exists(ctx, marker)
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", name, err)
	}
	if !exists {
		return nil, fmt.Errorf("list folder %s: %w", name, ErrFolderNotFound)
	}

	listing := &domain.FolderListing{
		Type:  domain.ResourceDir,
		Name:  path.Base(strings.TrimSuffix(name, "/")),
		Path:  "/" + strings.TrimSuffix(marker, "/"),
		Items: []domain.Item{},
	}

	for obj := range t.api.ListObjects(ctx, t.bucket, minio.ListObjectsOptions{Prefix: marker}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("list folder %s: %w", name, obj.Err)
		}
		if obj.Key == marker {
			continue
		}

		item := domain.Item{
			Type:      domain.ResourceFile,
			Name:      strings.TrimPrefix(obj.Key, marker),
			Path:      "/" + obj.Key,
			Size:      obj.Size,
			MediaType: obj.ContentType,
		}
		if strings.HasSuffix(obj.Key, "/") {
			item.Type = domain.ResourceDir
			item.Name = strings.TrimSuffix(item.Name, "/")
		}
		listing.Items = append(listing.Items, item)
	}

	return listing, nil
}

func (t *S3Target) exists(ctx context.Context, key string) (bool, error) {
	_, err := t.api.StatObject(ctx, t.bucket, key, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

func folderKey(name string) string {
	return strings.Trim(name, "/") + "/"
}

func splitEndpoint(endpoint string, useSSL bool) (string, bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return strings.TrimPrefix(endpoint, "//"), useSSL
	}
}

var _ Target = (*S3Target)(nil)
