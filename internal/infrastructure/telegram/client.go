package telegram

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"VCScanner/internal/config"
	"VCScanner/internal/domain"
	"VCScanner/internal/ports"
)

// Client reads channel history over MTProto. The underlying gotd client must
// be running (see Run) before Fetch is usable.
type Client struct {
	client *telegram.Client
	logger *zap.Logger

	// Ready is closed once authentication completes.
	Ready chan struct{}
}

var _ ports.MessageSource = (*Client)(nil)

// NewClient wires MTProto credentials and a file-backed session.
func NewClient(cfg config.TelegramConfig, logger *zap.Logger) *Client {
	sessionFile := cfg.SessionFile
	if sessionFile == "" {
		sessionFile = "session.json"
	}

	client := telegram.NewClient(cfg.APIID, cfg.APIHash, telegram.Options{
		SessionStorage: &session.FileStorage{Path: sessionFile},
	})

	return &Client{
		client: client,
		logger: logger,
		Ready:  make(chan struct{}),
	}
}

// Run starts the client, authenticates, and blocks until the context is
// cancelled. The login code is read from stdin on first start; subsequent
// starts reuse the stored session.
func (c *Client) Run(ctx context.Context, phone string) error {
	return c.client.Run(ctx, func(ctx context.Context) error {
		if err := c.authenticate(ctx, phone); err != nil {
			return fmt.Errorf("telegram auth: %w", err)
		}
		c.logger.Info("telegram client authenticated")
		close(c.Ready)

		<-ctx.Done()
		return ctx.Err()
	})
}

func (c *Client) authenticate(ctx context.Context, phone string) error {
	flow := auth.NewFlow(
		auth.Constant(phone, "", auth.CodeAuthenticatorFunc(
			func(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
				fmt.Print("Enter Telegram login code: ")
				reader := bufio.NewReader(os.Stdin)
				code, err := reader.ReadString('\n')
				if err != nil {
					return "", err
				}
				return strings.TrimSpace(code), nil
			})),
		auth.SendCodeOptions{},
	)
	return flow.Run(ctx, c.client.Auth())
}

// Fetch returns up to limit recent messages from the channel, newest first as
// Telegram serves them. Messages without text are skipped.
func (c *Client) Fetch(ctx context.Context, channel string, limit int) ([]domain.RawMessage, error) {
	username := strings.TrimPrefix(channel, "@")

	peer, err := c.resolveChannel(ctx, username)
	if err != nil {
		return nil, err
	}

	history, err := c.client.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("get history %s: %w", channel, err)
	}

	var raw []tg.MessageClass
	switch h := history.(type) {
	case *tg.MessagesChannelMessages:
		raw = h.Messages
	case *tg.MessagesMessages:
		raw = h.Messages
	case *tg.MessagesMessagesSlice:
		raw = h.Messages
	default:
		return nil, fmt.Errorf("unexpected history type %T for %s", history, channel)
	}

	messages := make([]domain.RawMessage, 0, len(raw))
	for _, mc := range raw {
		msg, ok := mc.(*tg.Message)
		if !ok || msg.Message == "" {
			continue
		}
		messages = append(messages, domain.RawMessage{
			Source:    channel,
			MessageID: int64(msg.ID),
			Date:      time.Unix(int64(msg.Date), 0).UTC(),
			Text:      msg.Message,
			Permalink: fmt.Sprintf("https://t.me/%s/%d", username, msg.ID),
		})
	}

	c.logger.Debug("channel history fetched",
		zap.String("channel", channel),
		zap.Int("messages", len(messages)))
	return messages, nil
}

func (c *Client) resolveChannel(ctx context.Context, username string) (tg.InputPeerClass, error) {
	resolved, err := c.client.API().ContactsResolveUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("resolve @%s: %w", username, err)
	}

	for _, chat := range resolved.Chats {
		if ch, ok := chat.(*tg.Channel); ok {
			return &tg.InputPeerChannel{ChannelID: ch.ID, AccessHash: ch.AccessHash}, nil
		}
	}
	return nil, fmt.Errorf("@%s is not a channel", username)
}
