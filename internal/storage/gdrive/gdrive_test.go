package gdrive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func newTestDrive(t *testing.T, handler http.HandlerFunc) *GoogleDrive {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	g := NewGoogleDrive(config.GoogleDriveConfig{
		Enabled:         true,
		FolderID:        "folder-42",
		CredentialsPath: writeTempFile(t, "credentials.json", `{"type":"service_account"}`),
	})
	g.newService = func(ctx context.Context, _ []byte) (*drive.Service, error) {
		return drive.NewService(ctx,
			option.WithEndpoint(srv.URL+"/"),
			option.WithHTTPClient(srv.Client()),
		)
	}
	return g
}

func TestGoogleDrive_Upload_Success(t *testing.T) {
	var body string
	g := newTestDrive(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		data, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		body = string(data)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"file-123"}`)
	})
	local := writeTempFile(t, "backup-1700000000000.db", "sqlite bytes")

	require.NoError(t, g.Init(context.Background()))
	id, err := g.Upload(context.Background(), local)
	require.NoError(t, err)

	assert.Equal(t, "file-123", id)
	assert.Contains(t, body, `"name":"backup-1700000000000.db"`)
	assert.Contains(t, body, `"folder-42"`)
	assert.Contains(t, body, "application/x-sqlite3")
	assert.Contains(t, body, "sqlite bytes")
}

func TestGoogleDrive_Upload_APIError(t *testing.T) {
	g := newTestDrive(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"error":{"code":403,"message":"insufficient permissions"}}`)
	})

	require.NoError(t, g.Init(context.Background()))
	_, err := g.Upload(context.Background(), writeTempFile(t, "backup-1.db", "x"))
	require.Error(t, err)

	var apiErr *googleapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Code)
}

func TestGoogleDrive_Init_MissingCredentials(t *testing.T) {
	g := NewGoogleDrive(config.GoogleDriveConfig{
		FolderID:        "folder",
		CredentialsPath: filepath.Join(t.TempDir(), "missing.json"),
	})

	err := g.Init(context.Background())
	require.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "error reading google credentials")

	// The outcome of the first load is kept.
	require.NoError(t, os.WriteFile(g.cfg.CredentialsPath, []byte("{}"), 0600))
	require.ErrorIs(t, g.Init(context.Background()), os.ErrNotExist)
}

func TestGoogleDrive_Init_InvalidCredentials(t *testing.T) {
	g := NewGoogleDrive(config.GoogleDriveConfig{
		FolderID:        "folder",
		CredentialsPath: writeTempFile(t, "credentials.json", "not json"),
	})

	err := g.Init(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error creating google drive service")
}

func TestGoogleDrive_Upload_NotInitialized(t *testing.T) {
	g := NewGoogleDrive(config.GoogleDriveConfig{})
	_, err := g.Upload(context.Background(), "backup-1.db")
	require.ErrorIs(t, err, ErrNotInitialized)
}

func TestGoogleDrive_Name(t *testing.T) {
	assert.Equal(t, "google-drive", NewGoogleDrive(config.GoogleDriveConfig{}).Name())
}
