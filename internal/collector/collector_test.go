package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/classifier"
	"github.com/leakguard/leakguard/internal/models"
	"github.com/leakguard/leakguard/internal/pipeline"
	"github.com/leakguard/leakguard/internal/repository"
)

type fakeFetcher struct {
	failFor  map[string]error
	messages map[string][]models.ScrapedMessage
	resolved []string
}

func (f *fakeFetcher) Resolve(ctx context.Context, username string) (int64, int64, string, error) {
	f.resolved = append(f.resolved, username)
	return 4242, 99, "Resolved " + username, nil
}

func (f *fakeFetcher) Messages(ctx context.Context, ch *models.Channel, sinceID int64, limit int) ([]models.ScrapedMessage, error) {
	if err, ok := f.failFor[ch.Username]; ok {
		return nil, err
	}
	return f.messages[ch.Username], nil
}

type fakeChannelRepo struct {
	channels  []*models.Channel
	scanState map[int64]int64
	upserted  []string
}

func newFakeChannelRepo(channels ...*models.Channel) *fakeChannelRepo {
	return &fakeChannelRepo{channels: channels, scanState: make(map[int64]int64)}
}

func (f *fakeChannelRepo) CreateChannel(ch *models.Channel) error {
	f.upserted = append(f.upserted, ch.Username)
	return nil
}
func (f *fakeChannelRepo) GetAllChannels() ([]*models.Channel, error) { return f.channels, nil }
func (f *fakeChannelRepo) GetChannelByID(id int64) (*models.Channel, error) {
	for _, ch := range f.channels {
		if ch.ID == id {
			return ch, nil
		}
	}
	return nil, nil
}
func (f *fakeChannelRepo) GetChannelByUsername(username string) (*models.Channel, error) {
	return nil, nil
}
func (f *fakeChannelRepo) UpdateActive(id int64, active bool) error { return nil }
func (f *fakeChannelRepo) UpdateScanState(id int64, lastMessageID int64, scannedAt time.Time) error {
	f.scanState[id] = lastMessageID
	return nil
}

type fakeMessageRepo struct {
	saved []*models.Message
}

func (f *fakeMessageRepo) SaveMessage(msg *models.Message) (bool, error) {
	msg.ID = int64(len(f.saved) + 1)
	f.saved = append(f.saved, msg)
	return true, nil
}
func (f *fakeMessageRepo) GetMessageByID(id int64) (*models.Message, error) { return nil, nil }
func (f *fakeMessageRepo) GetMessagesByChannel(channelID int64, limit int) ([]*models.Message, error) {
	return nil, nil
}
func (f *fakeMessageRepo) MarkProcessed(id int64, at time.Time) error { return nil }
func (f *fakeMessageRepo) CountMessages() (int, error)                { return len(f.saved), nil }

type fakeEntityRepo struct{ saved map[int64]int }

func (f *fakeEntityRepo) SaveEntity(entity *models.ExtractedEntity) error {
	if f.saved == nil {
		f.saved = make(map[int64]int)
	}
	f.saved[entity.MessageID]++
	return nil
}
func (f *fakeEntityRepo) GetEntitiesByMessage(messageID int64) ([]*models.ExtractedEntity, error) {
	return nil, nil
}
func (f *fakeEntityRepo) CountEntitiesForMessage(messageID int64) (int, error) {
	return f.saved[messageID], nil
}
func (f *fakeEntityRepo) DeleteEntitiesForMessage(messageID int64) error {
	delete(f.saved, messageID)
	return nil
}

type fakeLeakRepo struct{ saved int }

func (f *fakeLeakRepo) SaveLeak(leak *models.Leak) error { f.saved++; return nil }
func (f *fakeLeakRepo) GetLeaks(filter repository.LeakFilter) ([]*models.Leak, error) {
	return nil, nil
}
func (f *fakeLeakRepo) GetLeakByID(id int64) (*models.Leak, error)       { return nil, nil }
func (f *fakeLeakRepo) UpdateLeakStatus(id int64, st string) error       { return nil }
func (f *fakeLeakRepo) DeleteLeaksForMessage(messageID int64) error      { return nil }
func (f *fakeLeakRepo) CountLeaksBySeverity() (map[string]int, error)    { return nil, nil }
func (f *fakeLeakRepo) CountLeaksByStatus() (map[string]int, error)      { return nil, nil }
func (f *fakeLeakRepo) GetRecentLeaks(limit int) ([]*models.Leak, error) { return nil, nil }

type fakeAlertRepo struct{}

func (f *fakeAlertRepo) SaveAlert(alert *models.Alert) error                { return nil }
func (f *fakeAlertRepo) GetAlerts(unreadOnly bool) ([]*models.Alert, error) { return nil, nil }
func (f *fakeAlertRepo) MarkRead(id int64, at time.Time) error              { return nil }
func (f *fakeAlertRepo) MarkNotified(id int64) error                        { return nil }

func newTestCollector(fetcher Fetcher, channels *fakeChannelRepo, messages *fakeMessageRepo) *Collector {
	cls := classifier.New(2)
	pipe := pipeline.New(cls, messages, &fakeEntityRepo{}, &fakeLeakRepo{}, &fakeAlertRepo{},
		nil, nil, nil, models.SeverityHigh, zap.NewNop())
	return New(fetcher, channels, messages, pipe, time.Minute, 0, 100, zap.NewNop())
}

func TestScanAllFailingChannelDoesNotBlockOthers(t *testing.T) {
	broken := &models.Channel{ID: 1, TelegramID: 100, Username: "broken", Active: true}
	healthy := &models.Channel{ID: 2, TelegramID: 200, Username: "healthy", Active: true, LastMessageID: 5}

	fetcher := &fakeFetcher{
		failFor: map[string]error{"broken": errors.New("FLOOD_WAIT")},
		messages: map[string][]models.ScrapedMessage{
			"healthy": {
				{TelegramMessageID: 6, Text: "nothing here", Date: time.Now()},
				{TelegramMessageID: 7, Text: "leak user@example.com", Date: time.Now()},
			},
		},
	}
	channels := newFakeChannelRepo(broken, healthy)
	messages := &fakeMessageRepo{}

	c := newTestCollector(fetcher, channels, messages)
	c.ScanAll(context.Background())

	if len(messages.saved) != 2 {
		t.Errorf("saved %d messages, want 2", len(messages.saved))
	}
	if got := channels.scanState[healthy.ID]; got != 7 {
		t.Errorf("healthy channel scan state = %d, want 7", got)
	}
	if _, ok := channels.scanState[broken.ID]; ok {
		t.Error("broken channel scan state must not advance")
	}
}

func TestScanAllSkipsInactiveChannels(t *testing.T) {
	inactive := &models.Channel{ID: 1, TelegramID: 100, Username: "paused", Active: false}
	fetcher := &fakeFetcher{
		failFor: map[string]error{"paused": errors.New("must not be fetched")},
	}
	channels := newFakeChannelRepo(inactive)
	messages := &fakeMessageRepo{}

	c := newTestCollector(fetcher, channels, messages)
	c.ScanAll(context.Background())

	if len(messages.saved) != 0 {
		t.Errorf("saved %d messages from an inactive channel", len(messages.saved))
	}
}

func TestScanChannelResolvesLazily(t *testing.T) {
	unresolved := &models.Channel{ID: 3, Username: "fresh", Active: true}
	fetcher := &fakeFetcher{
		messages: map[string][]models.ScrapedMessage{
			"fresh": {{TelegramMessageID: 1, Text: "hello", Date: time.Now()}},
		},
	}
	channels := newFakeChannelRepo(unresolved)
	messages := &fakeMessageRepo{}

	c := newTestCollector(fetcher, channels, messages)
	c.ScanAll(context.Background())

	if len(fetcher.resolved) != 1 || fetcher.resolved[0] != "fresh" {
		t.Fatalf("resolved = %v, want [fresh]", fetcher.resolved)
	}
	if unresolved.TelegramID != 4242 || unresolved.AccessHash != 99 {
		t.Errorf("channel identity not updated: %+v", unresolved)
	}
	if len(channels.upserted) != 1 {
		t.Errorf("resolved identity not persisted, upserts = %v", channels.upserted)
	}
}
