// Package uploader implements the image upload component: it validates a file
// locally, streams it to the external image endpoint as a multipart form, and
// tracks the upload lifecycle so the UI can render progress and retry states.
package uploader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Status is the upload lifecycle state.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusUploading Status = "uploading"
	StatusDone      Status = "done"
	StatusFailed    Status = "failed"
)

var (
	// ErrContentType is returned for non-image or disallowed content types.
	ErrContentType = errors.New("uploader: content type not allowed")
	// ErrFileTooLarge is returned when the file exceeds the configured maximum.
	ErrFileTooLarge = errors.New("uploader: file exceeds maximum size")
	// ErrEmptyFile is returned for zero-length uploads.
	ErrEmptyFile = errors.New("uploader: file is empty")
)

// allowedImageTypes is the image allowlist for uploads.
var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

// uploadResponse is the payload the external image endpoint returns.
type uploadResponse struct {
	URL string `json:"url"`
}

// State is a snapshot of the component for rendering.
type State struct {
	Status  Status `json:"status"`
	URL     string `json:"url"`
	Message string `json:"message"`
}

// Uploader posts image files to the external image endpoint. A failed upload
// records a user-facing message and returns the component to a retryable
// state; it never panics or propagates upstream failures as crashes.
type Uploader struct {
	endpoint string
	client   *http.Client
	maxBytes int64
	log      zerolog.Logger

	mu      sync.Mutex
	status  Status
	url     string
	message string
}

// New creates an uploader targeting the given endpoint with a maximum
// accepted file size in bytes.
func New(endpoint string, maxBytes int64, log zerolog.Logger) *Uploader {
	return &Uploader{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
		maxBytes: maxBytes,
		log:      log.With().Str("component", "uploader").Logger(),
		status:   StatusIdle,
	}
}

// Validate checks content type and size before any network call.
func (u *Uploader) Validate(contentType string, size int64) error {
	normalized := strings.TrimSpace(strings.ToLower(strings.Split(contentType, ";")[0]))
	if !allowedImageTypes[normalized] {
		return fmt.Errorf("%w: %q", ErrContentType, contentType)
	}
	if size <= 0 {
		return ErrEmptyFile
	}
	if size > u.maxBytes {
		return fmt.Errorf("%w: %d > %d bytes", ErrFileTooLarge, size, u.maxBytes)
	}
	return nil
}

// Upload validates the file and streams it to the image endpoint. On success
// the returned URL is also recorded in the component state.
func (u *Uploader) Upload(ctx context.Context, fileName, contentType string, size int64, r io.Reader) (string, error) {
	if err := u.Validate(contentType, size); err != nil {
		u.fail(err.Error())
		return "", err
	}

	u.setStatus(StatusUploading)

	pr, pw := io.Pipe()
	form := multipart.NewWriter(pw)
	go func() {
		part, err := form.CreateFormFile("image", uniqueFileName(fileName))
		if err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, r); err != nil {
			_ = pw.CloseWithError(err)
			return
		}
		_ = pw.CloseWithError(form.Close())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint, pr)
	if err != nil {
		u.fail("could not build upload request")
		return "", err
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	resp, err := u.client.Do(req)
	if err != nil {
		u.log.Error().Err(err).Msg("image upload failed")
		u.fail("upload failed, please try again")
		return "", fmt.Errorf("uploader: request failed: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		u.log.Error().Int("status", resp.StatusCode).Msg("image endpoint rejected upload")
		u.fail("upload failed, please try again")
		return "", fmt.Errorf("uploader: endpoint status %d", resp.StatusCode)
	}

	var payload uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil || payload.URL == "" {
		u.fail("upload failed, please try again")
		return "", fmt.Errorf("uploader: invalid endpoint response")
	}

	u.mu.Lock()
	u.status = StatusDone
	u.url = payload.URL
	u.message = ""
	u.mu.Unlock()

	return payload.URL, nil
}

// Reset returns the component to idle, dropping any recorded URL or message.
func (u *Uploader) Reset() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = StatusIdle
	u.url = ""
	u.message = ""
}

// State returns a snapshot of the component.
func (u *Uploader) State() State {
	u.mu.Lock()
	defer u.mu.Unlock()
	return State{Status: u.status, URL: u.url, Message: u.message}
}

func (u *Uploader) setStatus(s Status) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = s
}

func (u *Uploader) fail(message string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = StatusFailed
	u.message = message
}

// uniqueFileName suffixes the base name so repeat uploads never collide.
func uniqueFileName(fileName string) string {
	ext := path.Ext(fileName)
	base := strings.TrimSuffix(path.Base(fileName), ext)
	return fmt.Sprintf("%s_%s%s", base, uuid.NewString()[:8], ext)
}
