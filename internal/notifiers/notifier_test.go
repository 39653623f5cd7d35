package notifiers

import (
	"context"
	"errors"
	"testing"

	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	enabled bool
	failing bool
	events  []string
}

func (r *recordingNotifier) Enabled() bool { return r.enabled }

func (r *recordingNotifier) record(event string) error {
	r.events = append(r.events, event)
	if r.failing {
		return errors.New("webhook unreachable")
	}
	return nil
}

func (r *recordingNotifier) NotifyBackupSuccess(_ context.Context, snapshot string, _ []storage.Result) error {
	return r.record("success:" + snapshot)
}

func (r *recordingNotifier) NotifyBackupFailure(_ context.Context, err error) error {
	return r.record("failure:" + err.Error())
}

func (r *recordingNotifier) NotifyBackupDeleteFailure(_ context.Context, err error) error {
	return r.record("delete:" + err.Error())
}

func newTestNotifier(enabled bool, nfs ...NotifiersIface) *Notifier {
	n := &Notifier{cfg: &config.Config{Notifiers: config.NotifiersConfig{Enabled: enabled}}}
	for _, nf := range nfs {
		n.register(nf)
	}
	return n
}

func TestNotifier_Disabled(t *testing.T) {
	rec := &recordingNotifier{enabled: true}
	n := newTestNotifier(false, rec)

	err := n.NotifyBackupSuccess(context.Background(), "backup-1.db", nil)
	require.ErrorIs(t, err, ErrNotifiersDisabled)
	assert.Empty(t, rec.events)
}

func TestNotifier_FansOutToEnabledNotifiers(t *testing.T) {
	on := &recordingNotifier{enabled: true}
	off := &recordingNotifier{enabled: false}
	n := newTestNotifier(true, on, off)

	require.NoError(t, n.NotifyBackupSuccess(context.Background(), "backup-1.db", nil))
	require.NoError(t, n.NotifyBackupFailure(context.Background(), errors.New("source missing")))
	require.NoError(t, n.NotifyBackupDeleteFailure(context.Background(), errors.New("busy")))

	assert.Equal(t, []string{"success:backup-1.db", "failure:source missing", "delete:busy"}, on.events)
	assert.Empty(t, off.events)
}

func TestNotifier_FailingNotifierDoesNotStopOthers(t *testing.T) {
	broken := &recordingNotifier{enabled: true, failing: true}
	healthy := &recordingNotifier{enabled: true}
	n := newTestNotifier(true, broken, healthy)

	require.NoError(t, n.NotifyBackupFailure(context.Background(), errors.New("x")))
	assert.Len(t, broken.events, 1)
	assert.Len(t, healthy.events, 1)
}

func TestNotifier_InitStore_NothingConfigured(t *testing.T) {
	n := NewNotifier(&config.Config{Notifiers: config.NotifiersConfig{Enabled: true}})
	require.NoError(t, n.InitStore())
	assert.True(t, n.Enabled())
}
