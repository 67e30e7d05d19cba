package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViper_Defaults(t *testing.T) {
	for _, key := range []string{"DOG_API_BASE_URL", "STORAGE_BACKEND", "YADISK_BASE_URL", "YADISK_TOKEN", "UPLOAD_FOLDER", "UPLOAD_BREEDS", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}

	cfg := FromViper(viper.New())

	assert.Equal(t, "https://dog.ceo/api", cfg.DogAPI.BaseURL)
	assert.Equal(t, BackendYaDisk, cfg.Storage.Backend)
	assert.Equal(t, "https://cloud-api.yandex.net", cfg.Storage.YaDisk.BaseURL)
	assert.Equal(t, "test_folder", cfg.Upload.Folder)
	assert.Equal(t, []string{"doberman", "bulldog", "collie"}, cfg.Upload.Breeds)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "us-east-1", cfg.Storage.S3.Region)
}

func TestFromViper_Environment(t *testing.T) {
	t.Setenv("YADISK_TOKEN", "secret")
	t.Setenv("UPLOAD_FOLDER", "dogs")
	t.Setenv("UPLOAD_BREEDS", " pug, ,hound ")
	t.Setenv("STORAGE_BACKEND", " S3 ")
	t.Setenv("S3_USE_SSL", "false")

	cfg := FromViper(viper.New())

	assert.Equal(t, "secret", cfg.Storage.YaDisk.Token)
	assert.Equal(t, "dogs", cfg.Upload.Folder)
	assert.Equal(t, []string{"pug", "hound"}, cfg.Upload.Breeds)
	assert.Equal(t, BackendS3, cfg.Storage.Backend)
	assert.False(t, cfg.Storage.S3.UseSSL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Storage: StorageConfig{
				Backend: BackendYaDisk,
				YaDisk:  YaDiskConfig{Token: "t"},
			},
			Upload: UploadConfig{Folder: "test_folder"},
		}
	}

	require.NoError(t, valid().Validate())

	cfg := valid()
	cfg.Storage.YaDisk.Token = ""
	assert.ErrorContains(t, cfg.Validate(), "YADISK_TOKEN")

	cfg = valid()
	cfg.Storage.Backend = BackendS3
	err := cfg.Validate()
	assert.ErrorContains(t, err, "S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET")

	cfg.Storage.S3 = S3Config{Endpoint: "e", AccessKey: "a", SecretKey: "s", Bucket: "b"}
	assert.NoError(t, cfg.Validate())

	cfg = valid()
	cfg.Storage.Backend = "ftp"
	assert.ErrorContains(t, cfg.Validate(), "unknown storage backend")

	cfg = valid()
	cfg.Upload.Folder = ""
	assert.ErrorContains(t, cfg.Validate(), "UPLOAD_FOLDER")
}

func TestSplitList(t *testing.T) {
	assert.Nil(t, SplitList(""))
	assert.Equal(t, []string{"a", "b"}, SplitList("a,,b,"))
}
