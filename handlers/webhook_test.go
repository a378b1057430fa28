package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"clipbook/config"
	"clipbook/models"
	"clipbook/services/messenger"

	"github.com/gin-gonic/gin"
)

type fakeEngine struct {
	mu       sync.Mutex
	handled  []string
	handleFn func(subjectID, text string) string
}

func (f *fakeEngine) HandleMessage(ctx context.Context, subjectID, text string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handled = append(f.handled, subjectID+":"+text)
	if f.handleFn != nil {
		return f.handleFn(subjectID, text)
	}
	return "ok: " + text
}

type fakeMessenger struct {
	mu       sync.Mutex
	sent     []string
	comments []string
}

func (f *fakeMessenger) SendMessage(ctx context.Context, recipientID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, recipientID+":"+text)
	return nil
}

func (f *fakeMessenger) GetUserProfile(ctx context.Context, userID string) (*messenger.UserProfile, error) {
	return &messenger.UserProfile{Name: "Dana"}, nil
}

func (f *fakeMessenger) ReplyToComment(ctx context.Context, commentID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, commentID+":"+text)
	return nil
}

func (f *fakeMessenger) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func (f *fakeMessenger) commentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.comments)
}

func verifyRequest(t *testing.T, h *WebhookHandler, query string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/webhook?"+query, nil)
	h.VerifyWebhookHandler(c)
	return w
}

func TestVerifyWebhook(t *testing.T) {
	config.AppConfig.VerifyToken = "secret-token"
	h := NewWebhookHandler(&fakeEngine{}, &fakeMessenger{}, nil)

	w := verifyRequest(t, h, "hub.mode=subscribe&hub.verify_token=secret-token&hub.challenge=12345")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Body.String() != "12345" {
		t.Fatalf("body = %q, want echoed challenge", w.Body.String())
	}

	w = verifyRequest(t, h, "hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 on bad token", w.Code)
	}

	w = verifyRequest(t, h, "hub.mode=unsubscribe&hub.verify_token=secret-token&hub.challenge=12345")
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403 on bad mode", w.Code)
	}
}

func postEnvelope(t *testing.T, h *WebhookHandler, envelope models.WebhookEnvelope) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	h.ReceiveWebhookHandler(c)
	return w
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met within deadline")
}

func TestReceiveWebhook_DeliversReply(t *testing.T) {
	engine := &fakeEngine{}
	msgr := &fakeMessenger{}
	h := NewWebhookHandler(engine, msgr, nil)

	w := postEnvelope(t, h, models.WebhookEnvelope{
		Object: "instagram",
		Entry: []models.WebhookEntry{{
			Messaging: []models.MessagingEvent{{
				Sender:    models.WebhookParty{ID: "user-1"},
				Recipient: models.WebhookParty{ID: "page-1"},
				Message:   &models.WebhookMessage{MID: "m1", Text: "hi"},
			}},
		}},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	waitFor(t, func() bool { return msgr.sentCount() == 1 })

	msgr.mu.Lock()
	defer msgr.mu.Unlock()
	if msgr.sent[0] != "user-1:ok: hi" {
		t.Fatalf("sent = %q, want engine reply to the sender", msgr.sent[0])
	}
}

func TestReceiveWebhook_SameSenderInOrder(t *testing.T) {
	engine := &fakeEngine{}
	msgr := &fakeMessenger{}
	h := NewWebhookHandler(engine, msgr, nil)

	events := make([]models.MessagingEvent, 3)
	for i, text := range []string{"first", "second", "third"} {
		events[i] = models.MessagingEvent{
			Sender:    models.WebhookParty{ID: "user-1"},
			Recipient: models.WebhookParty{ID: "page-1"},
			Message:   &models.WebhookMessage{MID: "m-" + text, Text: text},
		}
	}
	postEnvelope(t, h, models.WebhookEnvelope{
		Object: "instagram",
		Entry:  []models.WebhookEntry{{Messaging: events}},
	})

	waitFor(t, func() bool {
		engine.mu.Lock()
		defer engine.mu.Unlock()
		return len(engine.handled) == 3
	})

	engine.mu.Lock()
	defer engine.mu.Unlock()
	want := []string{"user-1:first", "user-1:second", "user-1:third"}
	for i := range want {
		if engine.handled[i] != want[i] {
			t.Fatalf("handled[%d] = %q, want %q (same-sender order broken)", i, engine.handled[i], want[i])
		}
	}
}

func TestReceiveWebhook_IgnoresNoise(t *testing.T) {
	engine := &fakeEngine{}
	msgr := &fakeMessenger{}
	h := NewWebhookHandler(engine, msgr, nil)

	postEnvelope(t, h, models.WebhookEnvelope{
		Object: "instagram",
		Entry: []models.WebhookEntry{{
			Messaging: []models.MessagingEvent{
				{
					// Echo of the page's own message.
					Sender:    models.WebhookParty{ID: "page-1"},
					Recipient: models.WebhookParty{ID: "page-1"},
					Message:   &models.WebhookMessage{MID: "m1", Text: "echo"},
				},
				{
					// Attachment-only delivery, no text.
					Sender:    models.WebhookParty{ID: "user-1"},
					Recipient: models.WebhookParty{ID: "page-1"},
					Message:   &models.WebhookMessage{MID: "m2"},
				},
				{
					// Read receipt, no message at all.
					Sender:    models.WebhookParty{ID: "user-2"},
					Recipient: models.WebhookParty{ID: "page-1"},
				},
			},
		}},
	})

	// Let the goroutines drain; nothing should reach the engine.
	time.Sleep(50 * time.Millisecond)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.handled) != 0 {
		t.Fatalf("noise events reached the engine: %v", engine.handled)
	}
}

func TestReceiveWebhook_NonInstagramObjectSkipped(t *testing.T) {
	engine := &fakeEngine{}
	h := NewWebhookHandler(engine, &fakeMessenger{}, nil)

	w := postEnvelope(t, h, models.WebhookEnvelope{Object: "page"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 even for skipped objects", w.Code)
	}
	time.Sleep(20 * time.Millisecond)
	engine.mu.Lock()
	defer engine.mu.Unlock()
	if len(engine.handled) != 0 {
		t.Fatalf("non-instagram object reached the engine")
	}
}

func TestReceiveWebhook_BookingCommentGetsNudge(t *testing.T) {
	msgr := &fakeMessenger{}
	h := NewWebhookHandler(&fakeEngine{}, msgr, nil)

	postEnvelope(t, h, models.WebhookEnvelope{
		Object: "instagram",
		Entry: []models.WebhookEntry{{
			Changes: []models.WebhookChange{
				{
					Field: "comments",
					Value: models.WebhookChangeValue{
						ID:   "c1",
						Text: "how do I book a cut?",
						From: &models.WebhookParty{ID: "user-1"},
					},
				},
				{
					Field: "comments",
					Value: models.WebhookChangeValue{
						ID:   "c2",
						Text: "nice photo!",
						From: &models.WebhookParty{ID: "user-2"},
					},
				},
			},
		}},
	})

	waitFor(t, func() bool { return msgr.commentCount() == 1 })
	msgr.mu.Lock()
	defer msgr.mu.Unlock()
	if msgr.comments[0][:3] != "c1:" {
		t.Fatalf("replied to the wrong comment: %q", msgr.comments[0])
	}
}
