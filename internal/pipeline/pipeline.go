package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/classifier"
	"github.com/leakguard/leakguard/internal/extractor"
	"github.com/leakguard/leakguard/internal/models"
	"github.com/leakguard/leakguard/internal/repository"
)

// Indexer pushes documents to the search index. Failures are an upstream
// concern: the pipeline logs and moves on.
type Indexer interface {
	IndexMessage(ctx context.Context, ch *models.Channel, msg *models.Message, categories []string) error
	IndexLeak(ctx context.Context, ch *models.Channel, leak *models.Leak) error
}

// Archiver stores raw message snapshots in object storage.
type Archiver interface {
	ArchiveMessage(ctx context.Context, ch *models.Channel, msg *models.Message) error
}

// Notifier delivers an alert to an external channel.
type Notifier interface {
	Notify(ctx context.Context, alert *models.Alert, leak *models.Leak) error
}

// Result summarizes what one pipeline run produced.
type Result struct {
	Skipped  bool `json:"skipped"`
	Entities int  `json:"entities"`
	Leaks    int  `json:"leaks"`
	Alerts   int  `json:"alerts"`
}

// Pipeline runs extraction and classification for a single message and
// persists the outcome. Indexing, archiving and notification are best-effort
// side channels; the database is the source of truth.
type Pipeline struct {
	classifier *classifier.Classifier
	messages   repository.MessageRepository
	entities   repository.EntityRepository
	leaks      repository.LeakRepository
	alerts     repository.AlertRepository
	indexer    Indexer
	archiver   Archiver
	notifier   Notifier
	logger     *zap.Logger
	alertMin   models.Severity
}

// New creates a Pipeline. indexer, archiver and notifier may be nil when the
// corresponding backend is not configured.
func New(
	cls *classifier.Classifier,
	messages repository.MessageRepository,
	entities repository.EntityRepository,
	leaks repository.LeakRepository,
	alerts repository.AlertRepository,
	indexer Indexer,
	archiver Archiver,
	notifier Notifier,
	alertMin models.Severity,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		classifier: cls,
		messages:   messages,
		entities:   entities,
		leaks:      leaks,
		alerts:     alerts,
		indexer:    indexer,
		archiver:   archiver,
		notifier:   notifier,
		alertMin:   alertMin,
		logger:     logger,
	}
}

// ProcessMessage extracts and classifies one stored message. A message that
// has already been processed is skipped (idempotent no-op) unless force is
// set, in which case prior entities and leaks are removed and recomputed.
// Stored entities without the processed marker mean an earlier run failed
// midway; those partial results are discarded before re-extracting, so a
// retried message never accumulates duplicates.
func (p *Pipeline) ProcessMessage(ctx context.Context, ch *models.Channel, msg *models.Message, force bool) (Result, error) {
	if msg.ProcessedAt != nil && !force {
		return Result{Skipped: true}, nil
	}

	if msg.ProcessedAt != nil {
		if err := p.clearResults(msg.ID); err != nil {
			return Result{}, err
		}
	} else {
		count, err := p.entities.CountEntitiesForMessage(msg.ID)
		if err != nil {
			return Result{}, fmt.Errorf("failed to check prior entities: %w", err)
		}
		if count > 0 {
			if err := p.clearResults(msg.ID); err != nil {
				return Result{}, err
			}
		}
	}

	extracted := extractor.Extract(msg.Text)

	var result Result
	categories := make([]string, 0, len(extracted))
	for _, category := range extractor.Categories() {
		values, ok := extracted[category]
		if !ok {
			continue
		}
		categories = append(categories, string(category))
		for _, value := range values {
			entity := &models.ExtractedEntity{
				MessageID: msg.ID,
				Category:  string(category),
				Value:     value,
				Context:   extractor.Snippet(msg.Text, value),
			}
			if err := p.entities.SaveEntity(entity); err != nil {
				return result, fmt.Errorf("failed to save entity: %w", err)
			}
			result.Entities++
		}
	}

	leaks := p.classifier.Classify(classifier.Input{
		ChannelName:    ch.Username,
		SenderUsername: msg.SenderUsername,
		MessageText:    msg.Text,
	}, extracted)

	for i := range leaks {
		leak := &leaks[i]
		leak.MessageID = msg.ID
		leak.ChannelID = ch.ID
		if err := p.leaks.SaveLeak(leak); err != nil {
			return result, fmt.Errorf("failed to save leak: %w", err)
		}
		result.Leaks++

		if p.indexer != nil {
			if err := p.indexer.IndexLeak(ctx, ch, leak); err != nil {
				p.logger.Error("Failed to index leak", zap.String("uuid", leak.UUID), zap.Error(err))
			}
		}

		if models.SeverityAtLeast(leak.Severity, p.alertMin) {
			if err := p.raiseAlert(ctx, ch, leak); err != nil {
				p.logger.Error("Failed to raise alert", zap.String("uuid", leak.UUID), zap.Error(err))
			} else {
				result.Alerts++
			}
		}
	}

	if p.indexer != nil {
		if err := p.indexer.IndexMessage(ctx, ch, msg, categories); err != nil {
			p.logger.Error("Failed to index message", zap.Int64("message_id", msg.ID), zap.Error(err))
		}
	}

	if p.archiver != nil {
		if err := p.archiver.ArchiveMessage(ctx, ch, msg); err != nil {
			p.logger.Error("Failed to archive message", zap.Int64("message_id", msg.ID), zap.Error(err))
		}
	}

	now := time.Now().UTC()
	if err := p.messages.MarkProcessed(msg.ID, now); err != nil {
		return result, fmt.Errorf("failed to mark message processed: %w", err)
	}
	msg.ProcessedAt = &now

	return result, nil
}

func (p *Pipeline) clearResults(messageID int64) error {
	if err := p.entities.DeleteEntitiesForMessage(messageID); err != nil {
		return fmt.Errorf("failed to clear entities: %w", err)
	}
	if err := p.leaks.DeleteLeaksForMessage(messageID); err != nil {
		return fmt.Errorf("failed to clear leaks: %w", err)
	}
	return nil
}

func (p *Pipeline) raiseAlert(ctx context.Context, ch *models.Channel, leak *models.Leak) error {
	alert := &models.Alert{
		LeakID:   leak.ID,
		Title:    fmt.Sprintf("Credential leak detected: %s", leak.Category),
		Body:     fmt.Sprintf("A %s severity %s leak was detected in channel @%s.", leak.Severity, leak.Category, ch.Username),
		Priority: leak.Severity,
	}
	if err := p.alerts.SaveAlert(alert); err != nil {
		return err
	}

	if p.notifier != nil {
		if err := p.notifier.Notify(ctx, alert, leak); err != nil {
			p.logger.Error("Failed to deliver alert notification", zap.Int64("alert_id", alert.ID), zap.Error(err))
			return nil
		}
		if err := p.alerts.MarkNotified(alert.ID); err != nil {
			p.logger.Error("Failed to mark alert notified", zap.Int64("alert_id", alert.ID), zap.Error(err))
		}
	}
	return nil
}
