// Package yadisk uploads snapshots to Yandex Disk.
//
// An upload takes two requests: the REST API hands out a temporary upload URL for
// the target path, then the file is streamed to that URL with PUT.
package yadisk

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/constants"
)

const maxErrorBody = 4 << 10

// Upload phases reported in StatusError.
const (
	PhaseRequestURL = "request-url"
	PhaseUpload     = "upload"
)

// StatusError is returned when the API answers with an unexpected status code.
type StatusError struct {
	Phase      string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("yandex disk %s: unexpected status %d: %s", e.Phase, e.StatusCode, e.Body)
}

// YandexDisk implements the storage uploader for Yandex Disk.
type YandexDisk struct {
	cfg    config.YandexDiskConfig
	client *http.Client
}

type uploadLink struct {
	Href      string `json:"href"`
	Method    string `json:"method"`
	Templated bool   `json:"templated"`
}

// Init is a no-op; the OAuth token is sent with every request.
func (y *YandexDisk) Init(_ context.Context) error {
	return nil
}

// Name returns the name of the backend.
func (y *YandexDisk) Name() string {
	return string(config.TargetYandexDisk)
}

// Upload streams localPath to Yandex Disk and returns the remote path.
func (y *YandexDisk) Upload(ctx context.Context, localPath string) (string, error) {
	remotePath := path.Join("/", y.cfg.Path, filepath.Base(localPath))

	href, err := y.requestUploadURL(ctx, remotePath)
	if err != nil {
		return "", err
	}

	slog.DebugContext(ctx, "Uploading file to Yandex Disk", "file", localPath, "path", remotePath)
	if err := y.put(ctx, href, localPath); err != nil {
		return "", err
	}

	return remotePath, nil
}

func (y *YandexDisk) requestUploadURL(ctx context.Context, remotePath string) (string, error) {
	endpoint, err := url.Parse(strings.TrimRight(y.cfg.APIURL, "/") + "/resources/upload")
	if err != nil {
		return "", fmt.Errorf("invalid yandex disk api url: %w", err)
	}
	q := endpoint.Query()
	q.Set("path", remotePath)
	q.Set("overwrite", "true")
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "OAuth "+y.cfg.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("yandex disk %s: %w", PhaseRequestURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", newStatusError(PhaseRequestURL, resp)
	}

	var link uploadLink
	if err := json.NewDecoder(resp.Body).Decode(&link); err != nil {
		return "", fmt.Errorf("yandex disk %s: decoding response: %w", PhaseRequestURL, err)
	}
	if link.Href == "" {
		return "", fmt.Errorf("yandex disk %s: response has no upload href", PhaseRequestURL)
	}

	return link.Href, nil
}

func (y *YandexDisk) put(ctx context.Context, href, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, href, f)
	if err != nil {
		return err
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", constants.SnapshotContentType)

	resp, err := y.client.Do(req)
	if err != nil {
		return fmt.Errorf("yandex disk %s: %w", PhaseUpload, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return newStatusError(PhaseUpload, resp)
	}
	_, _ = io.Copy(io.Discard, resp.Body)

	return nil
}

func newStatusError(phase string, resp *http.Response) *StatusError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Phase:      phase,
		StatusCode: resp.StatusCode,
		Body:       strings.TrimSpace(string(body)),
	}
}

// NewYandexDisk creates a new Yandex Disk uploader whose requests are bounded by timeout.
func NewYandexDisk(cfg config.YandexDiskConfig, timeout time.Duration) *YandexDisk {
	return &YandexDisk{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}
