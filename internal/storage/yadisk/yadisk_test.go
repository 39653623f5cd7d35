package yadisk

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDisk struct {
	t            *testing.T
	urlStatus    int
	uploadStatus int
	uploaded     []byte
	requestPath  string
	overwrite    string
	auth         string
	contentType  string
}

func (f *fakeDisk) handler(srvURL func() string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/disk/resources/upload", func(w http.ResponseWriter, r *http.Request) {
		f.requestPath = r.URL.Query().Get("path")
		f.overwrite = r.URL.Query().Get("overwrite")
		f.auth = r.Header.Get("Authorization")
		if f.urlStatus != http.StatusOK {
			w.WriteHeader(f.urlStatus)
			_, _ = io.WriteString(w, `{"error":"DiskNotFoundError","description":"Resource not found."}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"href":"`+srvURL()+`/upload-target","method":"PUT","templated":false}`)
	})
	mux.HandleFunc("/upload-target", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, http.MethodPut, r.Method)
		f.contentType = r.Header.Get("Content-Type")
		body, err := io.ReadAll(r.Body)
		assert.NoError(f.t, err)
		f.uploaded = body
		w.WriteHeader(f.uploadStatus)
	})
	return mux
}

func newServer(t *testing.T, f *fakeDisk) *httptest.Server {
	t.Helper()
	var srv *httptest.Server
	srv = httptest.NewServer(f.handler(func() string { return srv.URL }))
	t.Cleanup(srv.Close)
	return srv
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup-1700000000000.db")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newTestDisk(srv *httptest.Server) *YandexDisk {
	return NewYandexDisk(config.YandexDiskConfig{
		Enabled: true,
		Token:   "token-123",
		Path:    "/backups",
		APIURL:  srv.URL + "/v1/disk",
	}, 5*time.Second)
}

func TestYandexDisk_Upload_Success(t *testing.T) {
	f := &fakeDisk{t: t, urlStatus: http.StatusOK, uploadStatus: http.StatusCreated}
	srv := newServer(t, f)
	local := writeFile(t, "snapshot bytes")

	remote, err := newTestDisk(srv).Upload(context.Background(), local)
	require.NoError(t, err)

	assert.Equal(t, "/backups/backup-1700000000000.db", remote)
	assert.Equal(t, "/backups/backup-1700000000000.db", f.requestPath)
	assert.Equal(t, "true", f.overwrite)
	assert.Equal(t, "OAuth token-123", f.auth)
	assert.Equal(t, "application/x-sqlite3", f.contentType)
	assert.Equal(t, []byte("snapshot bytes"), f.uploaded)
}

func TestYandexDisk_Upload_URLRequestNotFound(t *testing.T) {
	f := &fakeDisk{t: t, urlStatus: http.StatusNotFound, uploadStatus: http.StatusCreated}
	srv := newServer(t, f)

	_, err := newTestDisk(srv).Upload(context.Background(), writeFile(t, "x"))
	require.Error(t, err)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, PhaseRequestURL, statusErr.Phase)
	assert.Equal(t, http.StatusNotFound, statusErr.StatusCode)
	assert.Contains(t, statusErr.Body, "DiskNotFoundError")
	assert.Nil(t, f.uploaded)
}

func TestYandexDisk_Upload_UnexpectedUploadStatus(t *testing.T) {
	f := &fakeDisk{t: t, urlStatus: http.StatusOK, uploadStatus: http.StatusInsufficientStorage}
	srv := newServer(t, f)

	_, err := newTestDisk(srv).Upload(context.Background(), writeFile(t, "x"))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, PhaseUpload, statusErr.Phase)
	assert.Equal(t, http.StatusInsufficientStorage, statusErr.StatusCode)
}

func TestYandexDisk_Upload_OKInsteadOfCreatedIsFailure(t *testing.T) {
	f := &fakeDisk{t: t, urlStatus: http.StatusOK, uploadStatus: http.StatusOK}
	srv := newServer(t, f)

	_, err := newTestDisk(srv).Upload(context.Background(), writeFile(t, "x"))

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusOK, statusErr.StatusCode)
}

func TestYandexDisk_Upload_MissingHref(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	}))
	t.Cleanup(srv.Close)

	_, err := newTestDisk(srv).Upload(context.Background(), writeFile(t, "x"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no upload href")
}

func TestYandexDisk_Upload_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestDisk(srv).Upload(ctx, writeFile(t, "x"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded), err.Error())
}

func TestYandexDisk_Name(t *testing.T) {
	assert.Equal(t, "yandex-disk", NewYandexDisk(config.YandexDiskConfig{}, time.Second).Name())
}
