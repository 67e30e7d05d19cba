package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/andresuchdata/dog-uploader/internal/domain"
	"github.com/andresuchdata/dog-uploader/internal/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "y0_test-token"

func newFakeYaDisk(t *testing.T) (*YaDisk, *fakeapi.Disk) {
	t.Helper()
	disk := fakeapi.NewDisk(testToken)
	srv := httptest.NewServer(disk.Handler())
	t.Cleanup(srv.Close)

	y, err := NewYaDisk(YaDiskConfig{BaseURL: srv.URL, Token: testToken, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return y, disk
}

func TestNewYaDisk_RequiresToken(t *testing.T) {
	_, err := NewYaDisk(YaDiskConfig{})
	assert.Error(t, err)
}

func TestNewYaDisk_DefaultBaseURL(t *testing.T) {
	y, err := NewYaDisk(YaDiskConfig{Token: testToken})
	require.NoError(t, err)
	assert.Equal(t, DefaultYaDiskBaseURL, y.baseURL)
}

func TestYaDisk_SendsOAuthHeader(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	y, err := NewYaDisk(YaDiskConfig{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)
	require.NoError(t, y.CreateFolder(context.Background(), "test_folder"))

	require.NotNil(t, got)
	assert.Equal(t, "OAuth "+testToken, got.Header.Get("Authorization"))
	assert.Equal(t, http.MethodPut, got.Method)
	assert.Equal(t, "/v1/disk/resources", got.URL.Path)
	assert.Equal(t, "test_folder", got.URL.Query().Get("path"))
}

func TestYaDisk_CreateFolder(t *testing.T) {
	y, disk := newFakeYaDisk(t)

	require.NoError(t, y.CreateFolder(context.Background(), "test_folder"))
	assert.Empty(t, disk.Files("test_folder"))
}

func TestYaDisk_CreateFolder_AlreadyExists(t *testing.T) {
	y, disk := newFakeYaDisk(t)
	disk.AddFolder("test_folder")

	err := y.CreateFolder(context.Background(), "test_folder")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrFolderCreation))

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
}

func TestYaDisk_CreateFolder_NonCreatedSuccessIsFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	y, err := NewYaDisk(YaDiskConfig{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	err = y.CreateFolder(context.Background(), "test_folder")
	assert.ErrorIs(t, err, ErrFolderCreation)
}

func TestYaDisk_Unauthorized(t *testing.T) {
	disk := fakeapi.NewDisk("another-token")
	srv := httptest.NewServer(disk.Handler())
	defer srv.Close()

	y, err := NewYaDisk(YaDiskConfig{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	_, err = y.ListFolder(context.Background(), "test_folder")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusUnauthorized, statusErr.StatusCode)
}

func TestYaDisk_UploadFromURL(t *testing.T) {
	y, disk := newFakeYaDisk(t)
	ctx := context.Background()
	require.NoError(t, y.CreateFolder(ctx, "test_folder"))

	source := "https://images.dog.ceo/breeds/collie-rough/n1.jpg"
	link, err := y.UploadFromURL(ctx, "test_folder", "collie-rough_n1.jpg", source)
	require.NoError(t, err)
	require.NotNil(t, link)
	assert.Equal(t, http.MethodGet, link.Method)
	assert.Contains(t, link.Href, "/v1/disk/operations/")

	assert.Equal(t, []fakeapi.DiskFile{{Name: "collie-rough_n1.jpg", SourceURL: source}}, disk.Files("test_folder"))
}

func TestYaDisk_UploadFromURL_Overwrites(t *testing.T) {
	y, disk := newFakeYaDisk(t)
	ctx := context.Background()
	require.NoError(t, y.CreateFolder(ctx, "test_folder"))

	_, err := y.UploadFromURL(ctx, "test_folder", "a.jpg", "https://example.test/old/a.jpg")
	require.NoError(t, err)
	_, err = y.UploadFromURL(ctx, "test_folder", "a.jpg", "https://example.test/new/a.jpg")
	require.NoError(t, err)

	files := disk.Files("test_folder")
	require.Len(t, files, 1)
	assert.Equal(t, "https://example.test/new/a.jpg", files[0].SourceURL)
}

func TestYaDisk_UploadFromURL_MissingFolder(t *testing.T) {
	y, _ := newFakeYaDisk(t)

	_, err := y.UploadFromURL(context.Background(), "missing", "a.jpg", "https://example.test/a.jpg")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusConflict, statusErr.StatusCode)
	assert.False(t, errors.Is(err, ErrFolderCreation))
}

func TestYaDisk_UploadFromURL_Query(t *testing.T) {
	var got *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"href":"https://example.test/op","method":"GET","templated":false}`))
	}))
	defer srv.Close()

	y, err := NewYaDisk(YaDiskConfig{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	_, err = y.UploadFromURL(context.Background(), "test_folder", "sub_abc.jpg", "https://images.dog.ceo/breed/sub/abc.jpg?x=1&y=2")
	require.NoError(t, err)

	require.NotNil(t, got)
	q := got.URL.Query()
	assert.Equal(t, http.MethodPost, got.Method)
	assert.Equal(t, "/v1/disk/resources/upload", got.URL.Path)
	assert.Equal(t, "/test_folder/sub_abc.jpg", q.Get("path"))
	assert.Equal(t, "https://images.dog.ceo/breed/sub/abc.jpg?x=1&y=2", q.Get("url"))
	assert.Equal(t, "true", q.Get("overwrite"))
}

func TestYaDisk_ListFolder(t *testing.T) {
	y, _ := newFakeYaDisk(t)
	ctx := context.Background()
	require.NoError(t, y.CreateFolder(ctx, "test_folder"))
	_, err := y.UploadFromURL(ctx, "test_folder", "collie-smooth_n2.jpg", "https://example.test/collie-smooth/n2.jpg")
	require.NoError(t, err)
	_, err = y.UploadFromURL(ctx, "test_folder", "collie-rough_n1.jpg", "https://example.test/collie-rough/n1.jpg")
	require.NoError(t, err)

	listing, err := y.ListFolder(ctx, "test_folder")
	require.NoError(t, err)
	assert.Equal(t, domain.ResourceDir, listing.Type)
	assert.Equal(t, "test_folder", listing.Name)
	assert.Equal(t, "disk:/test_folder", listing.Path)
	require.Len(t, listing.Items, 2)
	assert.Equal(t, "collie-rough_n1.jpg", listing.Items[0].Name)
	assert.Equal(t, domain.ResourceFile, listing.Items[0].Type)
	assert.Equal(t, "disk:/test_folder/collie-rough_n1.jpg", listing.Items[0].Path)
}

func TestYaDisk_ListFolder_NoEmbedded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/test_folder", r.URL.Query().Get("path"))
		_, _ = w.Write([]byte(`{"type":"dir","name":"test_folder"}`))
	}))
	defer srv.Close()

	y, err := NewYaDisk(YaDiskConfig{BaseURL: srv.URL, Token: testToken})
	require.NoError(t, err)

	listing, err := y.ListFolder(context.Background(), "test_folder")
	require.NoError(t, err)
	assert.NotNil(t, listing.Items)
	assert.Empty(t, listing.Items)
}

func TestYaDisk_ListFolder_NotFound(t *testing.T) {
	y, _ := newFakeYaDisk(t)

	_, err := y.ListFolder(context.Background(), "missing")
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "DiskNotFoundError")
}
