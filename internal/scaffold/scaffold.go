// Package scaffold creates the files a fresh installation needs.
package scaffold

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibare/dbkeeper/internal/constants"
	"gopkg.in/yaml.v3"
)

//go:embed template.env
var envTemplate []byte

// Artifact is one file or directory handled by Init.
type Artifact struct {
	Path    string
	Created bool
}

type processFile struct {
	Apps []processApp `yaml:"apps"`
}

type processApp struct {
	Name        string   `yaml:"name"`
	Script      string   `yaml:"script"`
	Args        []string `yaml:"args"`
	Cwd         string   `yaml:"cwd"`
	CronRestart string   `yaml:"cron_restart"`
	Autorestart bool     `yaml:"autorestart"`
	Watch       bool     `yaml:"watch"`
}

// Options describes where init writes its files.
type Options struct {
	// Dir is the working directory the artifacts are created in.
	Dir string
	// EnvFile is the dotenv file name, relative to Dir unless absolute.
	EnvFile string
	// BackupDir is the snapshot directory, relative to Dir unless absolute.
	BackupDir string
	// Binary is the executable the process descriptor starts.
	Binary string
	// Schedule is the cron expression for the process descriptor.
	Schedule string
}

func (o Options) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(o.Dir, p)
}

// Init writes the env template, the backup directory and the process descriptor.
// Existing files are never overwritten, so running it twice is a no-op.
func Init(ctx context.Context, opts Options) ([]Artifact, error) {
	var artifacts []Artifact

	envPath := opts.resolve(opts.EnvFile)
	created, err := writeNew(envPath, envTemplate)
	if err != nil {
		return artifacts, fmt.Errorf("error creating %s: %w", envPath, err)
	}
	artifacts = append(artifacts, Artifact{Path: envPath, Created: created})
	logArtifact(ctx, envPath, created)

	backupDir := opts.resolve(opts.BackupDir)
	created, err = mkdirNew(backupDir)
	if err != nil {
		return artifacts, fmt.Errorf("error creating backup directory %s: %w", backupDir, err)
	}
	artifacts = append(artifacts, Artifact{Path: backupDir, Created: created})
	logArtifact(ctx, backupDir, created)

	descriptor, err := processDescriptor(opts)
	if err != nil {
		return artifacts, err
	}
	processPath := opts.resolve(constants.ProcessFileName)
	created, err = writeNew(processPath, descriptor)
	if err != nil {
		return artifacts, fmt.Errorf("error creating %s: %w", processPath, err)
	}
	artifacts = append(artifacts, Artifact{Path: processPath, Created: created})
	logArtifact(ctx, processPath, created)

	return artifacts, nil
}

func processDescriptor(opts Options) ([]byte, error) {
	schedule := opts.Schedule
	if schedule == "" {
		schedule = constants.DefaultSchedule
	}

	data, err := yaml.Marshal(processFile{
		Apps: []processApp{{
			Name:        constants.ProgramIdentifier,
			Script:      opts.Binary,
			Args:        []string{"run", "--env-file", opts.resolve(opts.EnvFile)},
			Cwd:         opts.Dir,
			CronRestart: schedule,
			Autorestart: false,
			Watch:       false,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("error encoding process descriptor: %w", err)
	}
	return data, nil
}

func writeNew(path string, data []byte) (bool, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0600)
	if errors.Is(err, os.ErrExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	_, wErr := f.Write(data)
	if err := errors.Join(wErr, f.Close()); err != nil {
		_ = os.Remove(path)
		return false, err
	}
	return true, nil
}

func mkdirNew(path string) (bool, error) {
	info, err := os.Stat(path)
	if err == nil {
		if !info.IsDir() {
			return false, fmt.Errorf("%s exists and is not a directory", path)
		}
		return false, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return false, err
	}
	return true, os.MkdirAll(path, 0750)
}

func logArtifact(ctx context.Context, path string, created bool) {
	if created {
		slog.InfoContext(ctx, "Created", "path", path)
		return
	}
	slog.InfoContext(ctx, "Already exists; leaving untouched", "path", path)
}
