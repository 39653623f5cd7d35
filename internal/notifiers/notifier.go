// Package notifiers implements various notification mechanisms for backup events.
package notifiers

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/notifiers/discord"
	"github.com/hibare/dbkeeper/internal/storage"
)

var (
	// ErrNotifiersDisabled is returned when notifiers are globally disabled.
	ErrNotifiersDisabled = errors.New("notifiers are disabled")
)

// NotifiersIface defines the interface that all notifier implementations must satisfy.
// revive:disable-next-line exported
type NotifiersIface interface {
	Enabled() bool
	NotifyBackupSuccess(ctx context.Context, snapshot string, results []storage.Result) error
	NotifyBackupFailure(ctx context.Context, err error) error
	NotifyBackupDeleteFailure(ctx context.Context, err error) error
}

// NotifierStoreIface defines the interface for managing multiple notifiers.
type NotifierStoreIface interface {
	Enabled() bool
	NotifyBackupSuccess(ctx context.Context, snapshot string, results []storage.Result) error
	NotifyBackupFailure(ctx context.Context, err error) error
	NotifyBackupDeleteFailure(ctx context.Context, err error) error
	InitStore() error
}

// Notifier manages multiple notifier implementations.
type Notifier struct {
	cfg   *config.Config
	mu    sync.RWMutex
	store []NotifiersIface
}

func (n *Notifier) register(nf NotifiersIface) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.store = append(n.store, nf)
}

func (n *Notifier) each(ctx context.Context, event string, fn func(NotifiersIface) error) error {
	if !n.Enabled() {
		return ErrNotifiersDisabled
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	for _, notifier := range n.store {
		if !notifier.Enabled() {
			slog.DebugContext(ctx, "Notifier disabled; skipping "+event)
			continue
		}
		if err := fn(notifier); err != nil {
			slog.ErrorContext(ctx, "Failed to send "+event, "error", err)
		}
	}

	return nil
}

// Enabled checks if notifiers are globally enabled in the configuration.
func (n *Notifier) Enabled() bool {
	return n.cfg.Notifiers.Enabled
}

// NotifyBackupSuccess sends a backup success notification using all enabled notifiers.
func (n *Notifier) NotifyBackupSuccess(ctx context.Context, snapshot string, results []storage.Result) error {
	return n.each(ctx, "NotifyBackupSuccess", func(nf NotifiersIface) error {
		return nf.NotifyBackupSuccess(ctx, snapshot, results)
	})
}

// NotifyBackupFailure sends a backup failure notification using all enabled notifiers.
func (n *Notifier) NotifyBackupFailure(ctx context.Context, nErr error) error {
	return n.each(ctx, "NotifyBackupFailure", func(nf NotifiersIface) error {
		return nf.NotifyBackupFailure(ctx, nErr)
	})
}

// NotifyBackupDeleteFailure sends a backup deletion failure notification using all enabled notifiers.
func (n *Notifier) NotifyBackupDeleteFailure(ctx context.Context, nErr error) error {
	return n.each(ctx, "NotifyBackupDeleteFailure", func(nf NotifiersIface) error {
		return nf.NotifyBackupDeleteFailure(ctx, nErr)
	})
}

// InitStore initializes and registers all configured notifiers.
func (n *Notifier) InitStore() error {
	if !n.Enabled() {
		return nil
	}

	if n.cfg.Notifiers.Discord.Enabled {
		d, err := discord.NewDiscordNotifier(n.cfg)
		if err != nil {
			return err
		}
		n.register(d)
	}

	return nil
}

// NewNotifier creates a new Notifier instance with the provided configuration.
func NewNotifier(cfg *config.Config) NotifierStoreIface {
	return &Notifier{cfg: cfg}
}
