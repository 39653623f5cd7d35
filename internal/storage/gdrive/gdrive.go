// Package gdrive uploads snapshots to a Google Drive folder using a service account.
package gdrive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/constants"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ErrNotInitialized is returned when Upload is called before a successful Init.
var ErrNotInitialized = errors.New("google drive client not initialized")

type serviceFactory func(ctx context.Context, credentials []byte) (*drive.Service, error)

// GoogleDrive implements the storage uploader for Google Drive.
type GoogleDrive struct {
	cfg        config.GoogleDriveConfig
	newService serviceFactory

	once    sync.Once
	initErr error
	service *drive.Service
}

// Init reads the service account credentials and builds the Drive client.
// Credentials are loaded only once; later calls return the first outcome.
func (g *GoogleDrive) Init(ctx context.Context) error {
	g.once.Do(func() {
		data, err := os.ReadFile(g.cfg.CredentialsPath)
		if err != nil {
			g.initErr = fmt.Errorf("error reading google credentials: %w", err)
			return
		}

		// The client outlives this call's deadline; token refreshes must not inherit it.
		service, err := g.newService(context.WithoutCancel(ctx), data)
		if err != nil {
			g.initErr = fmt.Errorf("error creating google drive service: %w", err)
			return
		}
		g.service = service
	})
	return g.initErr
}

// Name returns the name of the backend.
func (g *GoogleDrive) Name() string {
	return string(config.TargetGoogleDrive)
}

// Upload creates a file named after localPath in the configured folder and returns its ID.
func (g *GoogleDrive) Upload(ctx context.Context, localPath string) (string, error) {
	if g.service == nil {
		return "", ErrNotInitialized
	}

	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	metadata := &drive.File{
		Name:    filepath.Base(localPath),
		Parents: []string{g.cfg.FolderID},
	}

	slog.DebugContext(ctx, "Uploading file to Google Drive", "file", localPath, "folder", g.cfg.FolderID)
	created, err := g.service.Files.Create(metadata).
		Media(f, googleapi.ContentType(constants.SnapshotContentType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		return "", err
	}

	return created.Id, nil
}

func newServiceFromJSON(ctx context.Context, credentials []byte) (*drive.Service, error) {
	creds, err := google.CredentialsFromJSON(ctx, credentials, drive.DriveFileScope)
	if err != nil {
		return nil, err
	}
	return drive.NewService(ctx, option.WithCredentials(creds))
}

// NewGoogleDrive creates a new Google Drive uploader. Credentials are read on Init.
func NewGoogleDrive(cfg config.GoogleDriveConfig) *GoogleDrive {
	return &GoogleDrive{
		cfg:        cfg,
		newService: newServiceFromJSON,
	}
}
