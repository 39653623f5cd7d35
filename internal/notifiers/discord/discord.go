// Package discord sends backup run notifications to a Discord webhook.
package discord

import (
	"context"
	"fmt"

	"github.com/hibare/GoCommon/v2/pkg/notifiers/discord"
	"github.com/hibare/dbkeeper/internal/config"
	"github.com/hibare/dbkeeper/internal/constants"
	"github.com/hibare/dbkeeper/internal/storage"
)

const (
	successColor         = 1498748
	partialColor         = 16098851
	failureColor         = 14554702
	deletionFailureColor = 14590998
)

// Discord sends notifications to a Discord channel via webhook.
type Discord struct {
	Cfg    *config.Config
	client discord.ClientIface
}

// Enabled checks if the Discord notifier is enabled in the configuration.
func (d *Discord) Enabled() bool {
	return d.Cfg.Notifiers.Discord.Enabled
}

func uploadFields(results []storage.Result) []discord.EmbedField {
	fields := make([]discord.EmbedField, 0, len(results))
	for _, r := range results {
		value := "uploaded: " + r.RemoteID
		if !r.OK() {
			value = "failed: " + r.Err.Cause.Error()
		}
		fields = append(fields, discord.EmbedField{
			Name:   r.Target,
			Value:  value,
			Inline: false,
		})
	}
	return fields
}

// NotifyBackupSuccess sends a success notification to the Discord channel.
// Failed uploads turn the message into a partial success.
func (d *Discord) NotifyBackupSuccess(ctx context.Context, snapshot string, results []storage.Result) error {
	color := successColor
	title := "**DB Backup Successful**"
	for _, r := range results {
		if !r.OK() {
			color = partialColor
			title = "**DB Backup Completed With Upload Errors**"
			break
		}
	}

	fields := append([]discord.EmbedField{
		{
			Name:   "Snapshot",
			Value:  snapshot,
			Inline: false,
		},
	}, uploadFields(results)...)

	message := discord.Message{
		Embeds: []discord.Embed{
			{
				Color:  color,
				Fields: fields,
			},
		},
		Components: []discord.Component{},
		Username:   constants.ProgramIdentifier,
		Content:    fmt.Sprintf("%s - *%s*", title, d.Cfg.App.InstanceID),
	}

	return d.client.Send(ctx, &message)
}

// NotifyBackupFailure sends a failure notification to the Discord channel.
func (d *Discord) NotifyBackupFailure(ctx context.Context, err error) error {
	message := discord.Message{
		Embeds: []discord.Embed{
			{
				Title:       "Error",
				Description: err.Error(),
				Color:       failureColor,
			},
		},
		Components: []discord.Component{},
		Username:   constants.ProgramIdentifier,
		Content:    fmt.Sprintf("**DB Backup Failed** - *%s*", d.Cfg.App.InstanceID),
	}

	return d.client.Send(ctx, &message)
}

// NotifyBackupDeleteFailure sends a deletion failure notification to the Discord channel.
func (d *Discord) NotifyBackupDeleteFailure(ctx context.Context, err error) error {
	message := discord.Message{
		Embeds: []discord.Embed{
			{
				Title:       "Error",
				Description: err.Error(),
				Color:       deletionFailureColor,
			},
		},
		Components: []discord.Component{},
		Username:   constants.ProgramIdentifier,
		Content:    fmt.Sprintf("**DB Backup Deletion Failed** - *%s*", d.Cfg.App.InstanceID),
	}

	return d.client.Send(ctx, &message)
}

// NewDiscordNotifier creates a new Discord notifier instance.
func NewDiscordNotifier(cfg *config.Config) (*Discord, error) {
	client, err := discord.NewClient(discord.Options{
		WebhookURL: cfg.Notifiers.Discord.Webhook,
	})
	if err != nil {
		return nil, err
	}

	return &Discord{
		Cfg:    cfg,
		client: client,
	}, nil
}
