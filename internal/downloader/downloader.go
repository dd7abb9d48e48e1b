// Package downloader mirrors remote share files into a local directory.
package downloader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"

	"ncdownloader/internal/models"
	"ncdownloader/pkg/utils"
)

// Fetcher provides file content streams, full or from an offset.
type Fetcher interface {
	Open(remotePath string) (io.ReadCloser, error)
	OpenRange(remotePath string, offset int64) (io.ReadCloser, error)
}

type Options struct {
	OutputDir string
	Resume    bool
	Progress  bool // draw a per-file progress bar on stderr
}

// PlanItem is one remote file with its download decision.
type PlanItem struct {
	Entry     models.RemoteEntry
	LocalPath string
	Offset    int64 // continue from this byte via a range request
	Skip      bool  // local copy already complete
}

type Summary struct {
	Download int
	Resume   int
	Skip     int
	Bytes    int64 // bytes still to transfer
}

// Plan decides per matched file whether to download, resume or skip,
// based on what already exists under the output directory. Without
// Resume every file is downloaded from scratch, overwriting local
// copies.
func Plan(files []models.RemoteEntry, opts Options) ([]PlanItem, error) {
	items := make([]PlanItem, 0, len(files))
	for _, e := range files {
		it := PlanItem{
			Entry:     e,
			LocalPath: filepath.Join(opts.OutputDir, filepath.FromSlash(e.Path)),
		}
		if opts.Resume {
			fi, err := os.Stat(it.LocalPath)
			switch {
			case err == nil && !fi.IsDir() && fi.Size() == e.Size:
				it.Skip = true
			case err == nil && !fi.IsDir() && fi.Size() < e.Size:
				it.Offset = fi.Size()
			case err != nil && !os.IsNotExist(err):
				return nil, fmt.Errorf("cannot stat %s: %w", it.LocalPath, err)
			}
			// a local file larger than the remote is re-downloaded from scratch
		}
		items = append(items, it)
	}
	return items, nil
}

func Summarize(items []PlanItem) Summary {
	var s Summary
	for _, it := range items {
		switch {
		case it.Skip:
			s.Skip++
		case it.Offset > 0:
			s.Resume++
			s.Bytes += it.Entry.Size - it.Offset
		default:
			s.Download++
			s.Bytes += it.Entry.Size
		}
	}
	return s
}

type Downloader struct {
	fetcher Fetcher
	opts    Options
}

func New(fetcher Fetcher, opts Options) *Downloader {
	return &Downloader{
		fetcher: fetcher,
		opts:    opts,
	}
}

// Run works through the plan one file at a time. A failed transfer is
// logged and recorded, and the remaining files are still attempted.
func (d *Downloader) Run(plan []PlanItem) *models.DownloadResult {
	start := time.Now()
	result := &models.DownloadResult{
		OutputDir:  d.opts.OutputDir,
		Items:      make([]models.DownloadItem, 0, len(plan)),
		TotalFiles: len(plan),
	}

	total := 0
	for _, it := range plan {
		if !it.Skip {
			total++
		}
	}

	n := 0
	for _, it := range plan {
		item := models.DownloadItem{
			RemotePath: it.Entry.Path,
			LocalPath:  it.LocalPath,
			Size:       it.Entry.Size,
		}

		switch {
		case it.Skip:
			item.Status = models.StatusSkipped
			result.Skipped++
			result.TotalSizeBytes += it.Entry.Size
		default:
			n++
			if err := d.fetch(it, n, total); err != nil {
				slog.Warn("download failed, continuing",
					"path", it.Entry.Path, "error", err)
				item.Status = models.StatusFailed
				item.Error = err.Error()
				result.Failed++
				break
			}
			if it.Offset > 0 {
				item.Status = models.StatusResumed
				result.Resumed++
			} else {
				item.Status = models.StatusDownloaded
				result.Downloaded++
			}
			result.TotalSizeBytes += it.Entry.Size
		}

		result.Items = append(result.Items, item)
	}

	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)
	result.OperationTime = utils.FormatTime(start)
	result.DownloadDuration = time.Since(start).String()
	return result
}

func (d *Downloader) fetch(it PlanItem, n, total int) error {
	if err := os.MkdirAll(filepath.Dir(it.LocalPath), 0o755); err != nil {
		return fmt.Errorf("cannot create directory for %s: %w", it.LocalPath, err)
	}

	var (
		stream io.ReadCloser
		out    *os.File
		err    error
	)
	if it.Offset > 0 {
		stream, err = d.fetcher.OpenRange(it.Entry.Path, it.Offset)
	} else {
		stream, err = d.fetcher.Open(it.Entry.Path)
	}
	if err != nil {
		return err
	}
	defer stream.Close()

	if it.Offset > 0 {
		out, err = os.OpenFile(it.LocalPath, os.O_WRONLY|os.O_APPEND, 0o644)
	} else {
		out, err = os.Create(it.LocalPath)
	}
	if err != nil {
		return fmt.Errorf("cannot open %s: %w", it.LocalPath, err)
	}
	defer out.Close()

	var w io.Writer = out
	if d.opts.Progress {
		bar := progressbar.DefaultBytes(it.Entry.Size-it.Offset,
			fmt.Sprintf("[%d/%d] %s", n, total, it.Entry.Path))
		defer bar.Close()
		w = io.MultiWriter(out, bar)
	}

	written, err := io.Copy(w, stream)
	if err != nil {
		return fmt.Errorf("transfer of %s failed: %w", it.Entry.Path, err)
	}
	if got := it.Offset + written; it.Entry.Size > 0 && got != it.Entry.Size {
		return fmt.Errorf("incomplete download of %s: got %d of %d bytes",
			it.Entry.Path, got, it.Entry.Size)
	}
	return nil
}
