package search

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	opensearch "github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/config"
	"github.com/leakguard/leakguard/internal/models"
)

// messageDocument mirrors the relational message row for full-text querying.
type messageDocument struct {
	MessageID      int64     `json:"message_id"`
	ChannelID      int64     `json:"channel_id"`
	ChannelName    string    `json:"channel_name"`
	SenderID       int64     `json:"sender_id"`
	SenderUsername string    `json:"sender_username"`
	MessageText    string    `json:"message_text"`
	MessageDate    time.Time `json:"message_date"`
	ScrapedAt      time.Time `json:"scraped_at"`
	DataTypesFound []string  `json:"data_types_found"`
	ContentHash    string    `json:"content_hash"`
	Source         string    `json:"source"`
}

// leakDocument mirrors the relational leak row.
type leakDocument struct {
	LeakID         string    `json:"leak_id"`
	ChannelName    string    `json:"channel_name"`
	SenderUsername string    `json:"sender_username"`
	Category       string    `json:"category"`
	Value          string    `json:"value"`
	Severity       string    `json:"severity"`
	Status         string    `json:"status"`
	Context        string    `json:"context"`
	DetectedAt     time.Time `json:"detected_at"`
}

// Indexer pushes message and leak documents to OpenSearch.
type Indexer struct {
	client       *opensearch.Client
	messageIndex string
	leakIndex    string
	logger       *zap.Logger
}

// New creates an Indexer and verifies connectivity.
func New(cfg *config.Config, logger *zap.Logger) (*Indexer, error) {
	client, err := opensearch.NewClient(opensearch.Config{
		Addresses: []string{cfg.OpenSearch.URL},
		Username:  cfg.OpenSearch.Username,
		Password:  cfg.OpenSearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	res, err := client.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to opensearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("opensearch returned error on info: %s", res.String())
	}

	logger.Info("OpenSearch connection established")
	return &Indexer{
		client:       client,
		messageIndex: cfg.OpenSearch.MessageIndex,
		leakIndex:    cfg.OpenSearch.LeakIndex,
		logger:       logger,
	}, nil
}

// IndexMessage stores one document per message. The document id is derived
// from channel, message id and content hash so re-indexing is idempotent.
func (i *Indexer) IndexMessage(ctx context.Context, ch *models.Channel, msg *models.Message, categories []string) error {
	hash := contentHash(msg.Text)
	doc := messageDocument{
		MessageID:      msg.TelegramMessageID,
		ChannelID:      ch.TelegramID,
		ChannelName:    ch.Username,
		SenderID:       msg.SenderID,
		SenderUsername: msg.SenderUsername,
		MessageText:    msg.Text,
		MessageDate:    msg.MessageDate,
		ScrapedAt:      msg.ScrapedAt,
		DataTypesFound: categories,
		ContentHash:    hash,
		Source:         "telegram",
	}
	docID := fmt.Sprintf("%d_%d_%s", ch.TelegramID, msg.TelegramMessageID, hash)
	return i.index(ctx, i.messageIndex, docID, doc)
}

// IndexLeak stores one document per leak, keyed by the leak uuid.
func (i *Indexer) IndexLeak(ctx context.Context, ch *models.Channel, leak *models.Leak) error {
	doc := leakDocument{
		LeakID:         leak.UUID,
		ChannelName:    ch.Username,
		SenderUsername: leak.SenderUsername,
		Category:       leak.Category,
		Value:          leak.Value,
		Severity:       string(leak.Severity),
		Status:         leak.Status,
		Context:        leak.Context,
		DetectedAt:     leak.DetectedAt,
	}
	return i.index(ctx, i.leakIndex, leak.UUID, doc)
}

func (i *Indexer) index(ctx context.Context, index, docID string, doc interface{}) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	req := opensearchapi.IndexRequest{
		Index:      index,
		DocumentID: docID,
		Body:       bytes.NewReader(body),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("opensearch rejected document %s: %s", docID, res.String())
	}
	return nil
}

func contentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
