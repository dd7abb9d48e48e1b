package models

// Item status values produced by the downloader.
const (
	StatusDownloaded = "downloaded"
	StatusResumed    = "resumed"
	StatusSkipped    = "skipped"
	StatusFailed     = "failed"
)

type DownloadItem struct {
	RemotePath string `json:"remote_path"`
	LocalPath  string `json:"local_path"`
	Size       int64  `json:"size"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

type DownloadResult struct {
	ShareToken       string         `json:"share_token"`
	SourcePath       string         `json:"source_path"`
	OutputDir        string         `json:"output_dir"`
	Items            []DownloadItem `json:"items"`
	TotalFiles       int            `json:"total_files"`
	Downloaded       int            `json:"downloaded"`
	Resumed          int            `json:"resumed"`
	Skipped          int            `json:"skipped"`
	Failed           int            `json:"failed"`
	TotalSizeBytes   int64          `json:"total_size_bytes"`
	TotalSizeHuman   string         `json:"total_size_human"`
	OperationTime    string         `json:"operation_time"`
	DownloadDuration string         `json:"download_duration"`
}
