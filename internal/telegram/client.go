package telegram

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gotd/td/session"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/config"
	"github.com/leakguard/leakguard/internal/models"
)

// Client encapsulates the MTProto Telegram client used for scraping channel
// history.
type Client struct {
	*telegram.Client
	logger        *zap.Logger
	authCode      chan string
	AuthCompleted chan struct{}
}

// NewClient creates and initializes a new Telegram client.
func NewClient(cfg *config.Config, logger *zap.Logger) *Client {
	client := telegram.NewClient(cfg.Telegram.APIID, cfg.Telegram.APIHash, telegram.Options{
		Logger:         logger.Named("telegram"),
		SessionStorage: &session.FileStorage{Path: cfg.Telegram.SessionFile},
	})

	return &Client{
		Client:        client,
		logger:        logger,
		authCode:      make(chan string),
		AuthCompleted: make(chan struct{}),
	}
}

// Run starts the Telegram client and handles authentication. It blocks until
// ctx is cancelled.
func (c *Client) Run(ctx context.Context, phone string) error {
	return c.Client.Run(ctx, func(ctx context.Context) error {
		if err := c.auth(ctx, phone); err != nil {
			return fmt.Errorf("authentication failed: %w", err)
		}
		c.logger.Info("Telegram client started and authenticated")
		close(c.AuthCompleted)

		<-ctx.Done()
		return ctx.Err()
	})
}

// SubmitCode delivers a login code received out of band, typically through
// the REST API.
func (c *Client) SubmitCode(code string) {
	select {
	case c.authCode <- code:
	default:
		c.logger.Warn("Login code submitted while none was expected")
	}
}

func (c *Client) auth(ctx context.Context, phone string) error {
	flow := auth.NewFlow(
		auth.Constant(phone, "", auth.CodeAuthenticatorFunc(func(ctx context.Context, sentCode *tg.AuthSentCode) (string, error) {
			c.logger.Info("Waiting for Telegram login code via API")
			select {
			case code := <-c.authCode:
				return strings.TrimSpace(code), nil
			case <-ctx.Done():
				return "", ctx.Err()
			}
		})),
		auth.SendCodeOptions{},
	)

	return flow.Run(ctx, c.Client.Auth())
}

// Resolve looks up a public channel by username.
func (c *Client) Resolve(ctx context.Context, username string) (int64, int64, string, error) {
	username = strings.TrimPrefix(username, "@")

	res, err := c.API().ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return 0, 0, "", fmt.Errorf("failed to resolve username %q: %w", username, err)
	}

	for _, chat := range res.Chats {
		channel, ok := chat.(*tg.Channel)
		if !ok {
			continue
		}
		return channel.ID, channel.AccessHash, channel.Title, nil
	}

	return 0, 0, "", fmt.Errorf("username %q does not resolve to a channel", username)
}

// Messages fetches channel history newer than sinceID, returned oldest first.
func (c *Client) Messages(ctx context.Context, ch *models.Channel, sinceID int64, limit int) ([]models.ScrapedMessage, error) {
	peer := &tg.InputPeerChannel{
		ChannelID:  ch.TelegramID,
		AccessHash: ch.AccessHash,
	}

	hist, err := c.API().MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
		Peer:  peer,
		MinID: int(sinceID),
		Limit: limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	var raw []tg.MessageClass
	switch res := hist.(type) {
	case *tg.MessagesChannelMessages:
		raw = res.Messages
	case *tg.MessagesMessagesSlice:
		raw = res.Messages
	case *tg.MessagesMessages:
		raw = res.Messages
	default:
		return nil, fmt.Errorf("unexpected history response type %T", hist)
	}

	var scraped []models.ScrapedMessage
	for _, mc := range raw {
		msg, ok := mc.(*tg.Message)
		if !ok {
			continue
		}
		// MinID is advisory on some layers; enforce it here.
		if int64(msg.ID) <= sinceID {
			continue
		}

		sm := models.ScrapedMessage{
			TelegramMessageID: int64(msg.ID),
			Text:              msg.Message,
			Date:              time.Unix(int64(msg.Date), 0).UTC(),
			SenderUsername:    msg.PostAuthor,
		}
		if from, ok := msg.FromID.(*tg.PeerUser); ok {
			sm.SenderID = from.UserID
		}
		if media, ok := msg.GetMedia(); ok {
			sm.MediaType = mediaType(media)
		}
		scraped = append(scraped, sm)
	}

	// History arrives newest first; the collector expects oldest first.
	sort.Slice(scraped, func(i, j int) bool {
		return scraped[i].TelegramMessageID < scraped[j].TelegramMessageID
	})

	return scraped, nil
}

func mediaType(media tg.MessageMediaClass) string {
	switch media.(type) {
	case *tg.MessageMediaPhoto:
		return "photo"
	case *tg.MessageMediaDocument:
		return "document"
	case *tg.MessageMediaWebPage:
		return "webpage"
	default:
		return "other"
	}
}
