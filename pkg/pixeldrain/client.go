package pixeldrain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	apperrors "pixelgram/internal/errors"

	"github.com/sirupsen/logrus"
)

// Client is the remote file store surface consumed by the upload services:
// store a blob and group stored blobs into a shareable list.
type Client interface {
	UploadFile(ctx context.Context, path string) (string, error)
	CreateList(ctx context.Context, fileIDs []string, title string) (string, error)
	FileURL(id string) string
	ListURL(id string) string
}

// ClientConfig holds the settings for a store client
type ClientConfig struct {
	BaseURL       string
	APIKey        string
	UploadTimeout time.Duration // zero disables the caller-imposed upload timeout
	ListTimeout   time.Duration
}

type PixeldrainClient struct {
	baseURL       string
	apiKey        string
	uploadTimeout time.Duration
	listTimeout   time.Duration
	httpClient    *http.Client
	logger        *logrus.Logger
}

type idResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

type listEntry struct {
	ID string `json:"id"`
}

type listRequest struct {
	Title string      `json:"title,omitempty"`
	Files []listEntry `json:"files"`
}

func NewClient(cfg ClientConfig) Client {
	return NewClientWithLogger(cfg, logrus.New())
}

func NewClientWithLogger(cfg ClientConfig, logger *logrus.Logger) Client {
	return &PixeldrainClient{
		baseURL:       cfg.BaseURL,
		apiKey:        cfg.APIKey,
		uploadTimeout: cfg.UploadTimeout,
		listTimeout:   cfg.ListTimeout,
		httpClient:    &http.Client{},
		logger:        logger,
	}
}

// UploadFile streams the file at path to the store's blob-creation endpoint
// and returns the opaque file identifier. Single attempt, no retries.
func (c *PixeldrainClient) UploadFile(ctx context.Context, path string) (string, error) {
	if c.uploadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.uploadTimeout)
		defer cancel()
	}

	file, err := os.Open(path) // #nosec G304 - path was created by the attachment downloader
	if err != nil {
		return "", fmt.Errorf("failed to open file for upload: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat file for upload: %w", err)
	}

	name := filepath.Base(path)
	endpoint := fmt.Sprintf("%s/api/file/%s", c.baseURL, url.PathEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, file)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.ContentLength = info.Size()
	req.SetBasicAuth("", c.apiKey)

	c.logger.WithFields(logrus.Fields{
		"file": name,
		"size": info.Size(),
	}).Debug("Uploading file to store")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewStoreAPIError("/api/file", 0, err)
	}
	defer resp.Body.Close()

	var result idResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.NewStoreAPIError("/api/file", resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewStoreAPIError("/api/file", resp.StatusCode,
			fmt.Errorf("upload failed with status %d: %s", resp.StatusCode, result.Message))
	}

	if result.ID == "" {
		return "", apperrors.NewStoreNoIDError("/api/file")
	}

	c.logger.WithFields(logrus.Fields{
		"file":    name,
		"file_id": result.ID,
	}).Debug("File uploaded to store")

	return result.ID, nil
}

// CreateList groups the given file identifiers into a shareable list and
// returns the list identifier. Single attempt, no retries.
func (c *PixeldrainClient) CreateList(ctx context.Context, fileIDs []string, title string) (string, error) {
	if len(fileIDs) == 0 {
		return "", apperrors.New(apperrors.ErrCodeInvalidInput, "cannot create a list from zero files")
	}

	if c.listTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.listTimeout)
		defer cancel()
	}

	payload := listRequest{Title: title, Files: make([]listEntry, 0, len(fileIDs))}
	for _, id := range fileIDs {
		payload.Files = append(payload.Files, listEntry{ID: id})
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal list payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/list", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create list request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth("", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", apperrors.NewStoreAPIError("/api/list", 0, err)
	}
	defer resp.Body.Close()

	var result idResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", apperrors.NewStoreAPIError("/api/list", resp.StatusCode, fmt.Errorf("failed to decode response: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", apperrors.NewStoreAPIError("/api/list", resp.StatusCode,
			fmt.Errorf("list creation failed with status %d: %s", resp.StatusCode, result.Message))
	}

	if result.ID == "" {
		return "", apperrors.NewStoreNoIDError("/api/list")
	}

	return result.ID, nil
}

// FileURL returns the shareable link for a stored file.
func (c *PixeldrainClient) FileURL(id string) string {
	return fmt.Sprintf("%s/u/%s", c.baseURL, id)
}

// ListURL returns the shareable link for a file list.
func (c *PixeldrainClient) ListURL(id string) string {
	return fmt.Sprintf("%s/l/%s", c.baseURL, id)
}
