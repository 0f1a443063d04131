package drive

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DownloadOptions controls how export files are pulled from Drive.
type DownloadOptions struct {
	FolderID    string
	DownloadDir string
	// ModifiedAfter skips files not touched since that instant. Zero means
	// download everything.
	ModifiedAfter time.Time
}

// Downloader pulls sales and inventory exports from a Drive folder into a
// local directory, converting xlsx files to CSV on the way.
type Downloader struct {
	service *Service
}

func NewDownloader(s *Service) *Downloader {
	return &Downloader{service: s}
}

// DownloadFolderCSV downloads every CSV and xlsx export in the folder into
// DownloadDir and returns local CSV paths. xlsx files are converted to CSV
// and the intermediate xlsx is removed. Files of other types are skipped.
func (d *Downloader) DownloadFolderCSV(ctx context.Context, opts DownloadOptions) ([]string, error) {
	if opts.DownloadDir == "" {
		return nil, fmt.Errorf("download dir is required")
	}
	if err := os.MkdirAll(opts.DownloadDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download dir: %w", err)
	}

	files, err := d.service.ListFiles(ctx, opts.FolderID)
	if err != nil {
		return nil, err
	}

	var localPaths []string
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if !f.IsCSV() && !f.IsSpreadsheet() {
			log.Debug().Str("file", f.Name).Msg("not an export file, skipped")
			continue
		}
		if skip, err := modifiedBefore(f, opts.ModifiedAfter); err != nil {
			return nil, err
		} else if skip {
			continue
		}

		localPath := filepath.Join(opts.DownloadDir, f.Name)
		if err := d.downloadTo(ctx, f, localPath); err != nil {
			return nil, err
		}

		if f.IsCSV() {
			localPaths = append(localPaths, localPath)
			continue
		}

		csvPath := strings.TrimSuffix(localPath, filepath.Ext(localPath)) + ".csv"
		if err := convertXLSXToCSV(localPath, csvPath); err != nil {
			return nil, fmt.Errorf("failed to convert %s to csv: %w", f.Name, err)
		}
		// Best-effort remove of the intermediate xlsx.
		_ = os.Remove(localPath)
		localPaths = append(localPaths, csvPath)
	}

	return localPaths, nil
}

func (d *Downloader) downloadTo(ctx context.Context, f *File, localPath string) error {
	out, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("failed to create local file %s: %w", localPath, err)
	}
	defer out.Close()

	if err := d.service.DownloadFile(ctx, f.ID, out); err != nil {
		return fmt.Errorf("failed to download %s: %w", f.Name, err)
	}
	return nil
}

func modifiedBefore(f *File, cutoff time.Time) (bool, error) {
	if cutoff.IsZero() || f.ModifiedTime == "" {
		return false, nil
	}
	modified, err := time.Parse(time.RFC3339, f.ModifiedTime)
	if err != nil {
		return false, fmt.Errorf("bad modified time on %s: %w", f.Name, err)
	}
	return modified.Before(cutoff), nil
}
