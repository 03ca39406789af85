// internal/progress/discord.go
//
// Discord webhook share target. Posts the share as an embed, with the
// rendered card attached when a Card func is set.

package progress

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

const shareColor = 0x7c3aed

// webhookExecutor is the part of *discordgo.Session used for sharing.
type webhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

const cardName = "emode.png"

// DiscordDeliverer posts shares to a Discord channel webhook.
type DiscordDeliverer struct {
	session   webhookExecutor
	webhookID string
	token     string

	// Card renders an image attached to the embed. Optional; a render
	// failure sends the embed without it.
	Card func(Share) ([]byte, error)
}

// NewDiscordDeliverer builds a deliverer for the webhook identified by id and token.
func NewDiscordDeliverer(id, token string) (*DiscordDeliverer, error) {
	if id == "" || token == "" {
		return nil, errors.New("discord webhook id and token are required")
	}
	// Webhook execution is authorized by the token in the URL; no bot login.
	s, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}
	return &DiscordDeliverer{session: s, webhookID: id, token: token}, nil
}

func (d *DiscordDeliverer) Deliver(ctx context.Context, s Share) error {
	params := &discordgo.WebhookParams{
		Embeds: []*discordgo.MessageEmbed{{
			Title:       s.Title,
			Description: s.Text,
			Color:       shareColor,
		}},
	}
	if d.Card != nil {
		if png, err := d.Card(s); err == nil {
			params.Files = []*discordgo.File{{Name: cardName, ContentType: "image/png", Reader: bytes.NewReader(png)}}
			params.Embeds[0].Image = &discordgo.MessageEmbedImage{URL: "attachment://" + cardName}
		}
	}
	if _, err := d.session.WebhookExecute(d.webhookID, d.token, true, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("discord webhook: %w", err)
	}
	return nil
}
