package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"clipbook/models"
)

type scriptedGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *scriptedGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	if g.err != nil {
		return "", g.err
	}
	return g.reply, nil
}

func testService(gen TextGenerator) *DefaultIntelligenceService {
	return &DefaultIntelligenceService{
		Client:     gen,
		BarberName: "Clip",
		Location:   time.UTC,
		Timeout:    time.Second,
	}
}

func TestClassifyIntent(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		err   error
		want  models.Intent
	}{
		{name: "known label", reply: "booking_inquiry", want: models.IntentBookingInquiry},
		{name: "label with whitespace and case", reply: "  Confirm_Booking\n", want: models.IntentConfirmBooking},
		{name: "unknown label", reply: "schedule_me_in", want: models.IntentOther},
		{name: "chatty model output", reply: "The intent is: booking_inquiry", want: models.IntentOther},
		{name: "model failure", err: errors.New("quota exhausted"), want: models.IntentOther},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := testService(&scriptedGenerator{reply: tc.reply, err: tc.err})
			got := svc.ClassifyIntent(context.Background(), "hi", models.StageInitial)
			if got != tc.want {
				t.Fatalf("intent = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestClassifyIntent_PromptCarriesStage(t *testing.T) {
	gen := &scriptedGenerator{reply: "greeting"}
	svc := testService(gen)
	svc.ClassifyIntent(context.Background(), "hey", models.StageShowingAvailability)
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], string(models.StageShowingAvailability)) {
		t.Fatalf("prompt must carry the current stage")
	}
}

func TestExtractDateTime(t *testing.T) {
	ref := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		reply  string
		err    error
		want   time.Time
		wantOK bool
	}{
		{
			name:   "well formed",
			reply:  "2025-03-11 15:00",
			want:   time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{
			name:   "trailing newline",
			reply:  "2025-03-11 15:00\n",
			want:   time.Date(2025, 3, 11, 15, 0, 0, 0, time.UTC),
			wantOK: true,
		},
		{name: "none sentinel", reply: "NONE"},
		{name: "lowercase sentinel", reply: "none"},
		{name: "unparseable", reply: "tomorrow afternoon"},
		{name: "model failure", err: errors.New("quota exhausted")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := testService(&scriptedGenerator{reply: tc.reply, err: tc.err})
			got, ok := svc.ExtractDateTime(context.Background(), "whenever", ref)
			if ok != tc.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tc.wantOK)
			}
			if tc.wantOK && !got.Equal(tc.want) {
				t.Fatalf("instant = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtractDateTime_PromptAnchoredAtReferenceDay(t *testing.T) {
	gen := &scriptedGenerator{reply: "NONE"}
	svc := testService(gen)
	ref := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	svc.ExtractDateTime(context.Background(), "tomorrow", ref)
	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "2025-03-10") {
		t.Fatalf("prompt must anchor relative dates at the reference day")
	}
}

func TestAnswerQuestion_HistoryWindow(t *testing.T) {
	gen := &scriptedGenerator{reply: "  We do fades, yes!  "}
	svc := testService(gen)

	history := make([]models.Turn, 0, 8)
	for i := 0; i < 8; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		history = append(history, models.Turn{Role: role, Content: turnLabel(i)})
	}

	answer, err := svc.AnswerQuestion(context.Background(), "do you do fades?", history)
	if err != nil {
		t.Fatalf("AnswerQuestion error: %v", err)
	}
	if answer != "We do fades, yes!" {
		t.Fatalf("answer = %q, want trimmed model reply", answer)
	}

	prompt := gen.prompts[0]
	for i := 0; i < 8-qaHistoryWindow; i++ {
		if strings.Contains(prompt, turnLabel(i)) {
			t.Fatalf("prompt includes turn %d, outside the %d-turn window", i, qaHistoryWindow)
		}
	}
	for i := 8 - qaHistoryWindow; i < 8; i++ {
		if !strings.Contains(prompt, turnLabel(i)) {
			t.Fatalf("prompt missing recent turn %d", i)
		}
	}
}

func turnLabel(i int) string {
	return "turn-" + string(rune('a'+i))
}
