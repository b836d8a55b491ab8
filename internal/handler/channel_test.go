package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/leakguard/leakguard/internal/models"
	"github.com/leakguard/leakguard/internal/repository"
)

type fakeChannelRepo struct {
	channels map[string]*models.Channel
	created  []string
}

func newFakeChannelRepo(channels ...*models.Channel) *fakeChannelRepo {
	f := &fakeChannelRepo{channels: make(map[string]*models.Channel)}
	for _, ch := range channels {
		f.channels[ch.Username] = ch
	}
	return f
}

func (f *fakeChannelRepo) CreateChannel(ch *models.Channel) error {
	ch.ID = int64(len(f.channels) + 1)
	f.channels[ch.Username] = ch
	f.created = append(f.created, ch.Username)
	return nil
}
func (f *fakeChannelRepo) GetAllChannels() ([]*models.Channel, error) {
	var out []*models.Channel
	for _, ch := range f.channels {
		out = append(out, ch)
	}
	return out, nil
}
func (f *fakeChannelRepo) GetChannelByID(id int64) (*models.Channel, error) {
	for _, ch := range f.channels {
		if ch.ID == id {
			return ch, nil
		}
	}
	return nil, nil
}
func (f *fakeChannelRepo) GetChannelByUsername(username string) (*models.Channel, error) {
	return f.channels[username], nil
}
func (f *fakeChannelRepo) UpdateActive(id int64, active bool) error { return nil }
func (f *fakeChannelRepo) UpdateScanState(id int64, lastMessageID int64, scannedAt time.Time) error {
	return nil
}

func newChannelRouter(repo repository.ChannelRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewChannelHandler(repo, zap.NewNop())
	r := gin.New()
	r.POST("/channels", h.CreateChannel)
	return r
}

func postChannel(t *testing.T, router *gin.Engine, username string) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(map[string]string{"username": username})
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, "/channels", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCreateChannel(t *testing.T) {
	tests := []struct {
		name     string
		username string
		want     string
	}{
		{"plain username", "fresh_leaks", "fresh_leaks"},
		{"at prefix stripped", "@fresh_leaks", "fresh_leaks"},
		{"link prefix stripped", "https://t.me/fresh_leaks", "fresh_leaks"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeChannelRepo()
			router := newChannelRouter(repo)

			w := postChannel(t, router, tt.username)
			if w.Code != http.StatusCreated {
				t.Fatalf("status code = %d, want 201 (body: %s)", w.Code, w.Body.String())
			}
			ch, ok := repo.channels[tt.want]
			if !ok {
				t.Fatalf("channel %q not stored, have %v", tt.want, repo.created)
			}
			if !ch.Active {
				t.Error("new channel must start active")
			}
		})
	}
}

func TestCreateChannelInvalidUsername(t *testing.T) {
	repo := newFakeChannelRepo()
	router := newChannelRouter(repo)

	for _, username := range []string{"ab", "1starts_with_digit", "has space", "bad$chars"} {
		w := postChannel(t, router, username)
		if w.Code != http.StatusBadRequest {
			t.Errorf("username %q: status code = %d, want 400", username, w.Code)
		}
	}
	if len(repo.created) != 0 {
		t.Errorf("invalid usernames stored: %v", repo.created)
	}
}

func TestCreateChannelExistingReturnsStored(t *testing.T) {
	stored := &models.Channel{ID: 1, Username: "dumps", TelegramID: 4242, AccessHash: 99, Active: true}
	repo := newFakeChannelRepo(stored)
	router := newChannelRouter(repo)

	w := postChannel(t, router, "dumps")
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200 (body: %s)", w.Code, w.Body.String())
	}
	if len(repo.created) != 0 {
		t.Errorf("re-registration must not write, created %v", repo.created)
	}
	if stored.TelegramID != 4242 || stored.AccessHash != 99 {
		t.Errorf("stored identity changed: %+v", stored)
	}

	var resp struct {
		Channel models.Channel `json:"channel"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Channel.ID != stored.ID || resp.Channel.Username != "dumps" {
		t.Errorf("response channel = %+v, want the stored one", resp.Channel)
	}
}
