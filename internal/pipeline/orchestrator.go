package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/dog-uploader/internal/domain"
	"github.com/andresuchdata/dog-uploader/internal/storage"
	"github.com/andresuchdata/dog-uploader/pkg/logger"
)

// DefaultFolder is the destination folder used when none is configured.
const DefaultFolder = "test_folder"

// ImageSource resolves breed images.
type ImageSource interface {
	SubBreeds(ctx context.Context, breed string) ([]string, error)
	RandomImage(ctx context.Context, breed, subBreed string) (string, error)
}

// Report summarises a successful run for one breed.
type Report struct {
	Breed     string                `json:"breed"`
	SubBreeds []string              `json:"sub_breeds"`
	Folder    string                `json:"folder"`
	Uploads   []domain.Upload       `json:"uploads"`
	Listing   *domain.FolderListing `json:"listing"`
	Duration  time.Duration         `json:"duration"`
}

// Orchestrator uploads breed images into a single storage folder and
// verifies the result.
type Orchestrator struct {
	source ImageSource
	target storage.Target
	folder string
}

// NewOrchestrator creates a new Orchestrator. An empty folder falls back to
// DefaultFolder.
func NewOrchestrator(source ImageSource, target storage.Target, folder string) *Orchestrator {
	if folder == "" {
		folder = DefaultFolder
	}
	return &Orchestrator{
		source: source,
		target: target,
		folder: folder,
	}
}

// Folder returns the destination folder name.
func (o *Orchestrator) Folder() string {
	return o.folder
}

// Run creates the folder, uploads one image per sub-breed of breed (or one
// image of the breed itself), then lists the folder and verifies it. The
// first failing step aborts the run.
func (o *Orchestrator) Run(ctx context.Context, breed string) (*Report, error) {
	start := time.Now()
	log := logger.Log.With().Str("breed", breed).Str("folder", o.folder).Logger()

	if err := o.target.CreateFolder(ctx, o.folder); err != nil {
		return nil, err
	}
	log.Info().Msg("destination folder created")

	subBreeds, err := o.source.SubBreeds(ctx, breed)
	if err != nil {
		return nil, err
	}

	urls, err := ImageURLs(ctx, o.source, breed, subBreeds)
	if err != nil {
		return nil, err
	}
	log.Info().Int("sub_breeds", len(subBreeds)).Int("images", len(urls)).Msg("image urls resolved")

	uploads := make([]domain.Upload, 0, len(urls))
	for _, u := range urls {
		name := domain.UploadName(u)
		link, err := o.target.UploadFromURL(ctx, o.folder, name, u)
		if err != nil {
			return nil, err
		}
		log.Debug().Str("name", name).Str("source", u).Msg("image uploaded")
		uploads = append(uploads, domain.Upload{SourceURL: u, Name: name, Link: link})
	}

	listing, err := o.target.ListFolder(ctx, o.folder)
	if err != nil {
		return nil, err
	}

	if err := Verify(listing, o.folder, breed, len(urls)); err != nil {
		return nil, err
	}

	report := &Report{
		Breed:     breed,
		SubBreeds: subBreeds,
		Folder:    o.folder,
		Uploads:   uploads,
		Listing:   listing,
		Duration:  time.Since(start),
	}
	log.Info().Int("uploaded", len(uploads)).Dur("duration", report.Duration).Msg("upload verified")

	return report, nil
}

// RunAll runs each breed in order and stops at the first error.
func (o *Orchestrator) RunAll(ctx context.Context, breeds []string) ([]*Report, error) {
	reports := make([]*Report, 0, len(breeds))
	for _, breed := range breeds {
		report, err := o.Run(ctx, breed)
		if err != nil {
			return reports, fmt.Errorf("breed %s: %w", breed, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// ImageURLs fetches one random image URL per sub-breed, or exactly one for
// the breed itself when it has no sub-breeds.
func ImageURLs(ctx context.Context, source ImageSource, breed string, subBreeds []string) ([]string, error) {
	if len(subBreeds) == 0 {
		u, err := source.RandomImage(ctx, breed, "")
		if err != nil {
			return nil, err
		}
		return []string{u}, nil
	}

	urls := make([]string, 0, len(subBreeds))
	for _, sub := range subBreeds {
		u, err := source.RandomImage(ctx, breed, sub)
		if err != nil {
			return nil, err
		}
		urls = append(urls, u)
	}
	return urls, nil
}
