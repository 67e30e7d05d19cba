package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	BackendYaDisk = "yadisk"
	BackendS3     = "s3"
)

type Config struct {
	DogAPI  DogAPIConfig
	Storage StorageConfig
	Upload  UploadConfig
	Log     LogConfig
}

type DogAPIConfig struct {
	BaseURL string
}

type StorageConfig struct {
	Backend string
	YaDisk  YaDiskConfig
	S3      S3Config
}

type YaDiskConfig struct {
	BaseURL string
	Token   string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type UploadConfig struct {
	Folder string
	Breeds []string
}

type LogConfig struct {
	Level string
}

var (
	once     sync.Once
	instance *Config
)

// Load reads configuration from the environment (and .env, if present) once
// and returns the shared instance.
func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		instance = FromViper(viper.GetViper())
	})

	return instance
}

// FromViper applies defaults to v and builds a Config from it.
func FromViper(v *viper.Viper) *Config {
	v.SetDefault("DOG_API_BASE_URL", "https://dog.ceo/api")
	v.SetDefault("STORAGE_BACKEND", BackendYaDisk)
	v.SetDefault("YADISK_BASE_URL", "https://cloud-api.yandex.net")
	v.SetDefault("YADISK_TOKEN", "")
	v.SetDefault("S3_ENDPOINT", "")
	v.SetDefault("S3_ACCESS_KEY", "")
	v.SetDefault("S3_SECRET_KEY", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_USE_SSL", true)
	v.SetDefault("UPLOAD_FOLDER", "test_folder")
	v.SetDefault("UPLOAD_BREEDS", "doberman,bulldog,collie")
	v.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	v.AutomaticEnv()

	return &Config{
		DogAPI: DogAPIConfig{
			BaseURL: v.GetString("DOG_API_BASE_URL"),
		},
		Storage: StorageConfig{
			Backend: strings.ToLower(strings.TrimSpace(v.GetString("STORAGE_BACKEND"))),
			YaDisk: YaDiskConfig{
				BaseURL: v.GetString("YADISK_BASE_URL"),
				Token:   v.GetString("YADISK_TOKEN"),
			},
			S3: S3Config{
				Endpoint:  v.GetString("S3_ENDPOINT"),
				AccessKey: v.GetString("S3_ACCESS_KEY"),
				SecretKey: v.GetString("S3_SECRET_KEY"),
				Bucket:    v.GetString("S3_BUCKET"),
				Region:    v.GetString("S3_REGION"),
				UseSSL:    v.GetBool("S3_USE_SSL"),
			},
		},
		Upload: UploadConfig{
			Folder: v.GetString("UPLOAD_FOLDER"),
			Breeds: SplitList(v.GetString("UPLOAD_BREEDS")),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
	}
}

// Validate reports settings the selected storage backend cannot run without.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case BackendYaDisk:
		if c.Storage.YaDisk.Token == "" {
			return fmt.Errorf("YADISK_TOKEN is required for the %s backend", BackendYaDisk)
		}
	case BackendS3:
		var missing []string
		if c.Storage.S3.Endpoint == "" {
			missing = append(missing, "S3_ENDPOINT")
		}
		if c.Storage.S3.AccessKey == "" {
			missing = append(missing, "S3_ACCESS_KEY")
		}
		if c.Storage.S3.SecretKey == "" {
			missing = append(missing, "S3_SECRET_KEY")
		}
		if c.Storage.S3.Bucket == "" {
			missing = append(missing, "S3_BUCKET")
		}
		if len(missing) > 0 {
			return fmt.Errorf("%s required for the %s backend", strings.Join(missing, ", "), BackendS3)
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	if c.Upload.Folder == "" {
		return fmt.Errorf("UPLOAD_FOLDER must not be empty")
	}
	return nil
}

// SplitList splits a comma separated value, dropping blanks.
func SplitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
