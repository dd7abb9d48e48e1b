package models

import "time"

// RemoteEntry is a single item inside a share, with its path relative
// to the share root (no leading slash, forward slashes).
type RemoteEntry struct {
	Path        string    `json:"path"`
	IsDir       bool      `json:"is_dir"`
	Size        int64     `json:"size"`
	ModTime     time.Time `json:"mod_time"`
	ContentType string    `json:"content_type,omitempty"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
	Command   string `json:"command"`
}

type ListResult struct {
	ShareToken     string        `json:"share_token"`
	SourcePath     string        `json:"source_path"`
	Entries        []RemoteEntry `json:"entries"`
	TotalFiles     int           `json:"total_files"`
	TotalSizeBytes int64         `json:"total_size_bytes"`
	TotalSizeHuman string        `json:"total_size_human"`
}
