package api

import (
	"time"

	"github.com/debtcoder/debtcoder/internal/store"
)

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status        string  `json:"status"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// DiagnosticsResponse reports service internals.
type DiagnosticsResponse struct {
	Status               string     `json:"status"`
	Version              string     `json:"version"`
	PublicURL            string     `json:"public_url"`
	UptimeSeconds        float64    `json:"uptime_seconds"`
	MOTDExists           bool       `json:"motd_exists"`
	MOTDLastModified     *time.Time `json:"motd_last_modified"`
	UploadDir            string     `json:"upload_dir"`
	UploadFileCount      int        `json:"upload_file_count"`
	UploadDiskUsageBytes int64      `json:"upload_disk_usage_bytes"`
	SearchReady          bool       `json:"search_ready"`
	GoVersion            string     `json:"go_version"`
}

// TextFilePayload carries UTF-8 file contents.
type TextFilePayload struct {
	Content string `json:"content"`
}

// MOTDUpdateResponse confirms an MOTD write.
type MOTDUpdateResponse struct {
	Message      string    `json:"message"`
	BytesWritten int64     `json:"bytes_written"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UploadListingResponse lists the flat upload store.
type UploadListingResponse struct {
	Files []store.FileInfo `json:"files"`
}

// RenamePayload names the rename target.
type RenamePayload struct {
	Target string `json:"target"`
}

// CommandRequest carries one terminal-like command line.
type CommandRequest struct {
	Command string `json:"command"`
}

// FSListResponse lists a sandboxed directory.
type FSListResponse struct {
	Items []store.Entry `json:"items"`
}

// FSWritePayload writes a file under the sandboxed root.
type FSWritePayload struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

// FSDeletePayload names a file under the sandboxed root.
type FSDeletePayload struct {
	Filename string `json:"filename"`
}
