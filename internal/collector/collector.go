package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
	"github.com/leakguard/leakguard/internal/pipeline"
	"github.com/leakguard/leakguard/internal/repository"
)

// Fetcher is the Telegram-facing side of the collector.
type Fetcher interface {
	// Resolve looks up a channel by username and returns its Telegram id,
	// access hash and title.
	Resolve(ctx context.Context, username string) (id int64, accessHash int64, title string, err error)
	// Messages fetches channel history newer than sinceID, oldest first.
	Messages(ctx context.Context, ch *models.Channel, sinceID int64, limit int) ([]models.ScrapedMessage, error)
}

const fetchTimeout = 30 * time.Second

// Collector periodically scans every active channel for new messages and
// feeds them through the extraction pipeline. Channels are independent:
// a failure on one is logged and the scan moves on to the next.
type Collector struct {
	fetcher    Fetcher
	channels   repository.ChannelRepository
	messages   repository.MessageRepository
	pipe       *pipeline.Pipeline
	logger     *zap.Logger
	interval   time.Duration
	delay      time.Duration
	fetchLimit int
}

// New creates a Collector.
func New(
	fetcher Fetcher,
	channels repository.ChannelRepository,
	messages repository.MessageRepository,
	pipe *pipeline.Pipeline,
	interval time.Duration,
	delay time.Duration,
	fetchLimit int,
	logger *zap.Logger,
) *Collector {
	return &Collector{
		fetcher:    fetcher,
		channels:   channels,
		messages:   messages,
		pipe:       pipe,
		logger:     logger,
		interval:   interval,
		delay:      delay,
		fetchLimit: fetchLimit,
	}
}

// Run starts the periodic channel scanning loop. It blocks until ctx is
// cancelled.
func (c *Collector) Run(ctx context.Context) {
	c.logger.Info("Channel collector started", zap.Duration("interval", c.interval))

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Initial scan on startup.
	c.ScanAll(ctx)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Channel collector stopped")
			return
		case <-ticker.C:
			c.ScanAll(ctx)
		}
	}
}

// ScanAll runs one scan pass over every active channel.
func (c *Collector) ScanAll(ctx context.Context) {
	channels, err := c.channels.GetAllChannels()
	if err != nil {
		c.logger.Error("Failed to load channels", zap.Error(err))
		return
	}
	if len(channels) == 0 {
		c.logger.Info("No channels configured for monitoring")
		return
	}

	for i, ch := range channels {
		if ctx.Err() != nil {
			return
		}
		if !ch.Active {
			c.logger.Debug("Skipping inactive channel", zap.String("username", ch.Username))
			continue
		}

		if err := c.scanChannel(ctx, ch); err != nil {
			// A failing channel must not abort the others.
			c.logger.Error("Channel scan failed",
				zap.String("username", ch.Username),
				zap.Error(err))
		}

		// Pause between channels to avoid FLOOD_WAIT.
		if i < len(channels)-1 && c.delay > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.delay):
			}
		}
	}
}

// scanChannel walks Fetching -> Extracting -> Persisting for one channel.
func (c *Collector) scanChannel(ctx context.Context, ch *models.Channel) error {
	if ch.TelegramID == 0 {
		if err := c.resolveChannel(ctx, ch); err != nil {
			return fmt.Errorf("failed to resolve channel: %w", err)
		}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	scraped, err := c.fetcher.Messages(fetchCtx, ch, ch.LastMessageID, c.fetchLimit)
	cancel()
	if err != nil {
		return fmt.Errorf("failed to fetch messages: %w", err)
	}

	if len(scraped) == 0 {
		c.logger.Debug("No new messages", zap.String("username", ch.Username))
		return c.channels.UpdateScanState(ch.ID, ch.LastMessageID, time.Now().UTC())
	}

	c.logger.Info("Fetched new messages",
		zap.String("username", ch.Username),
		zap.Int("count", len(scraped)))

	maxID := ch.LastMessageID
	for _, sm := range scraped {
		msg := &models.Message{
			ChannelID:         ch.ID,
			TelegramMessageID: sm.TelegramMessageID,
			SenderID:          sm.SenderID,
			SenderUsername:    sm.SenderUsername,
			Text:              sm.Text,
			MessageDate:       sm.Date,
			MediaType:         sm.MediaType,
		}
		if sm.MediaType != "" {
			msg.MediaRef = fmt.Sprintf("https://t.me/%s/%d", ch.Username, sm.TelegramMessageID)
		}

		if _, err := c.messages.SaveMessage(msg); err != nil {
			c.logger.Error("Failed to save message",
				zap.String("username", ch.Username),
				zap.Int64("telegram_message_id", sm.TelegramMessageID),
				zap.Error(err))
			continue
		}

		if _, err := c.pipe.ProcessMessage(ctx, ch, msg, false); err != nil {
			c.logger.Error("Failed to process message",
				zap.String("username", ch.Username),
				zap.Int64("message_id", msg.ID),
				zap.Error(err))
			continue
		}

		if sm.TelegramMessageID > maxID {
			maxID = sm.TelegramMessageID
		}
	}

	return c.channels.UpdateScanState(ch.ID, maxID, time.Now().UTC())
}

func (c *Collector) resolveChannel(ctx context.Context, ch *models.Channel) error {
	id, accessHash, title, err := c.fetcher.Resolve(ctx, ch.Username)
	if err != nil {
		return err
	}
	ch.TelegramID = id
	ch.AccessHash = accessHash
	if title != "" {
		ch.Title = title
	}
	return c.channels.CreateChannel(ch)
}
