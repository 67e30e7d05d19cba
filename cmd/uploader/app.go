package main

import (
	"context"
	"fmt"

	"github.com/andresuchdata/dog-uploader/internal/config"
	"github.com/andresuchdata/dog-uploader/internal/dogapi"
	"github.com/andresuchdata/dog-uploader/internal/domain"
	"github.com/andresuchdata/dog-uploader/internal/pipeline"
	"github.com/andresuchdata/dog-uploader/internal/storage"
	"github.com/andresuchdata/dog-uploader/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/urfave/cli/v2"
)

type ctxKey string

const configKey ctxKey = "config"

func newApp() *cli.App {
	return &cli.App{
		Name:  "uploader",
		Usage: "Upload random dog breed images to cloud storage and verify the result",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "log-level", Usage: "Log level (debug, info, warn, error)"},
			&cli.StringFlag{Name: "dog-api-url", Usage: "Dog API base URL"},
			&cli.StringFlag{Name: "storage", Usage: "Storage backend (yadisk or s3)"},
			&cli.StringFlag{Name: "yadisk-url", Usage: "Yandex Disk API base URL"},
			&cli.StringFlag{Name: "yadisk-token", Usage: "Yandex Disk OAuth token"},
			&cli.StringFlag{Name: "folder", Usage: "Destination folder"},
		},
		Before: loadConfig,
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Upload one image per sub-breed for each breed and verify the folder",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "breed",
						Usage: "Breed to upload (repeatable); defaults to UPLOAD_BREEDS",
					},
				},
				Action: runUpload,
			},
			{
				Name:      "sub-breeds",
				Usage:     "List the sub-breeds of a breed",
				ArgsUsage: "<breed>",
				Action:    listSubBreeds,
			},
			{
				Name:      "random-image",
				Usage:     "Print a random image URL for a breed",
				ArgsUsage: "<breed> [sub-breed]",
				Action:    randomImage,
			},
			{
				Name:      "create-folder",
				Usage:     "Create a folder in storage",
				ArgsUsage: "<name>",
				Action:    createFolder,
			},
			{
				Name:      "list-folder",
				Usage:     "Print a folder listing as JSON",
				ArgsUsage: "<name>",
				Action:    listFolder,
			},
			{
				Name:      "upload",
				Usage:     "Upload a single image URL into a folder under its derived name",
				ArgsUsage: "<folder> <url>",
				Action:    uploadOne,
			},
		},
	}
}

func loadConfig(c *cli.Context) error {
	base := config.Load()
	cfg := *base
	cfg.Upload.Breeds = append([]string(nil), base.Upload.Breeds...)

	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("dog-api-url") {
		cfg.DogAPI.BaseURL = c.String("dog-api-url")
	}
	if c.IsSet("storage") {
		cfg.Storage.Backend = c.String("storage")
	}
	if c.IsSet("yadisk-url") {
		cfg.Storage.YaDisk.BaseURL = c.String("yadisk-url")
	}
	if c.IsSet("yadisk-token") {
		cfg.Storage.YaDisk.Token = c.String("yadisk-token")
	}
	if c.IsSet("folder") {
		cfg.Upload.Folder = c.String("folder")
	}

	logger.SetLevel(cfg.Log.Level)

	c.Context = context.WithValue(c.Context, configKey, &cfg)
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	cfg, _ := c.Context.Value(configKey).(*config.Config)
	return cfg
}

func runUpload(c *cli.Context) error {
	cfg := configFrom(c)
	target, err := newTarget(cfg)
	if err != nil {
		return err
	}

	breeds := c.StringSlice("breed")
	if len(breeds) == 0 {
		breeds = cfg.Upload.Breeds
	}
	if len(breeds) == 0 {
		return fmt.Errorf("no breeds to upload")
	}

	source := dogapi.NewClient(cfg.DogAPI.BaseURL, nil)
	orch := pipeline.NewOrchestrator(source, target, cfg.Upload.Folder)

	reports, err := orch.RunAll(c.Context, breeds)
	for _, r := range reports {
		fmt.Fprintf(c.App.Writer, "%s: %d image(s) uploaded to %s\n", r.Breed, len(r.Uploads), r.Folder)
	}
	return err
}

func listSubBreeds(c *cli.Context) error {
	breed := c.Args().First()
	if breed == "" {
		return fmt.Errorf("breed is required")
	}

	cfg := configFrom(c)
	subs, err := dogapi.NewClient(cfg.DogAPI.BaseURL, nil).SubBreeds(c.Context, breed)
	if err != nil {
		return err
	}
	for _, s := range subs {
		fmt.Fprintln(c.App.Writer, s)
	}
	return nil
}

func randomImage(c *cli.Context) error {
	breed := c.Args().Get(0)
	if breed == "" {
		return fmt.Errorf("breed is required")
	}

	cfg := configFrom(c)
	u, err := dogapi.NewClient(cfg.DogAPI.BaseURL, nil).RandomImage(c.Context, breed, c.Args().Get(1))
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, u)
	return nil
}

func createFolder(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("folder name is required")
	}

	target, err := newTarget(configFrom(c))
	if err != nil {
		return err
	}
	if err := target.CreateFolder(c.Context, name); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "folder %s created\n", name)
	return nil
}

func listFolder(c *cli.Context) error {
	name := c.Args().First()
	if name == "" {
		return fmt.Errorf("folder name is required")
	}

	target, err := newTarget(configFrom(c))
	if err != nil {
		return err
	}
	listing, err := target.ListFolder(c.Context, name)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(listing, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, string(out))
	return nil
}

func uploadOne(c *cli.Context) error {
	folder, source := c.Args().Get(0), c.Args().Get(1)
	if folder == "" || source == "" {
		return fmt.Errorf("folder and url are required")
	}

	target, err := newTarget(configFrom(c))
	if err != nil {
		return err
	}

	name := domain.UploadName(source)
	if _, err := target.UploadFromURL(c.Context, folder, name, source); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s uploaded to %s\n", name, folder)
	return nil
}

func newTarget(cfg *config.Config) (storage.Target, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Storage.Backend {
	case config.BackendS3:
		return storage.NewS3Target(storage.S3Config{
			Endpoint:  cfg.Storage.S3.Endpoint,
			AccessKey: cfg.Storage.S3.AccessKey,
			SecretKey: cfg.Storage.S3.SecretKey,
			Bucket:    cfg.Storage.S3.Bucket,
			Region:    cfg.Storage.S3.Region,
			UseSSL:    cfg.Storage.S3.UseSSL,
		})
	default:
		return storage.NewYaDisk(storage.YaDiskConfig{
			BaseURL: cfg.Storage.YaDisk.BaseURL,
			Token:   cfg.Storage.YaDisk.Token,
		})
	}
}
