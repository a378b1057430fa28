// File: services/intelligence/geminiClient.go
package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"clipbook/models"
	"clipbook/utils"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// qaHistoryWindow bounds how many recent turns the Q&A prompt carries.
const qaHistoryWindow = 4

type GeminiClient struct {
	model *genai.GenerativeModel
}

func NewGeminiClient(apiKey string) *GeminiClient {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		panic(fmt.Sprintf("failed to create Gemini client: %v", err))
	}

	model := client.GenerativeModel("models/gemini-1.5-pro")
	return &GeminiClient{model: model}
}

func (g *GeminiClient) GenerateContent(ctx context.Context, prompt string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini generate error: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if textPart, ok := part.(genai.Text); ok {
			sb.WriteString(string(textPart))
		}
	}
	return sb.String(), nil
}

// TextGenerator is the raw prompt-in, text-out surface of the model client.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// DefaultIntelligenceService implements IntelligenceService on Gemini.
type DefaultIntelligenceService struct {
	Client     TextGenerator
	BarberName string
	Location   *time.Location
	Timeout    time.Duration // per-call bound; a timed-out call is a failed call
}

func NewDefaultIntelligenceService(apiKey, barberName string, loc *time.Location) *DefaultIntelligenceService {
	return &DefaultIntelligenceService{
		Client:     NewGeminiClient(apiKey),
		BarberName: barberName,
		Location:   loc,
		Timeout:    8 * time.Second,
	}
}

func (s *DefaultIntelligenceService) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return context.WithTimeout(ctx, timeout)
}

var knownIntents = map[models.Intent]bool{
	models.IntentBookingInquiry:  true,
	models.IntentConfirmBooking:  true,
	models.IntentCancelBooking:   true,
	models.IntentGeneralQuestion: true,
	models.IntentGreeting:        true,
	models.IntentOther:           true,
}

func (s *DefaultIntelligenceService) ClassifyIntent(ctx context.Context, text string, stage models.Stage) models.Intent {
	logger := utils.GetLogger()
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	prompt := fmt.Sprintf(`You are an intent classifier for a barber appointment booking system.
Current conversation stage: %s

Classify the user's message into ONE of these intents:
- booking_inquiry: User wants to book an appointment or asking about availability
- confirm_booking: User is confirming a proposed appointment time
- cancel_booking: User wants to cancel or reschedule
- general_question: Asking about services, prices, location, etc.
- greeting: Just saying hi/hello
- other: Anything else

Respond with ONLY the intent name, nothing else.

Message: %s`, stage, text)

	out, err := s.Client.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Error("intent classification failed, defaulting to other", zap.Error(err))
		return models.IntentOther
	}

	intent := models.Intent(strings.ToLower(strings.TrimSpace(out)))
	if !knownIntents[intent] {
		logger.Warn("classifier returned unknown label", zap.String("label", string(intent)))
		return models.IntentOther
	}
	return intent
}

func (s *DefaultIntelligenceService) ExtractDateTime(ctx context.Context, text string, referenceNow time.Time) (time.Time, bool) {
	logger := utils.GetLogger()
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	prompt := fmt.Sprintf(`Extract the date and time from the user's message.
If no specific time is mentioned, assume they want afternoon (2 PM).
Return in format: YYYY-MM-DD HH:MM
If no date can be extracted, return "NONE"

Examples:
- "tomorrow at 3pm" -> (tomorrow's date) 15:00
- "next monday" -> (calculate next Monday) 14:00
- "this saturday morning" -> (calculate Saturday) 10:00

Today is %s. Message: %s`, referenceNow.In(s.Location).Format("2006-01-02"), text)

	out, err := s.Client.GenerateContent(ctx, prompt)
	if err != nil {
		logger.Error("date/time extraction failed", zap.Error(err))
		return time.Time{}, false
	}

	result := strings.TrimSpace(out)
	if strings.EqualFold(result, "NONE") {
		return time.Time{}, false
	}

	instant, err := time.ParseInLocation("2006-01-02 15:04", result, s.Location)
	if err != nil {
		logger.Warn("extractor returned unparseable datetime", zap.String("result", result))
		return time.Time{}, false
	}
	return instant, true
}

func (s *DefaultIntelligenceService) AnswerQuestion(ctx context.Context, text string, history []models.Turn) (string, error) {
	ctx, cancel := s.callCtx(ctx)
	defer cancel()

	var sb strings.Builder
	fmt.Fprintf(&sb, `You are a helpful assistant for %s's barbershop.
Answer questions about:
- Services: haircuts, trims, beard grooming, fades, lineups
- Typical prices: $30-50 depending on service
- General booking information
- Location: (mention they should ask for specific address)

Keep responses friendly, concise, and encourage booking an appointment.
If you don't know something specific, say so and offer to have them book a consultation.

`, s.BarberName)

	if len(history) > qaHistoryWindow {
		history = history[len(history)-qaHistoryWindow:]
	}
	for _, turn := range history {
		fmt.Fprintf(&sb, "%s: %s\n", turn.Role, turn.Content)
	}
	fmt.Fprintf(&sb, "user: %s\n", text)

	answer, err := s.Client.GenerateContent(ctx, sb.String())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(answer), nil
}
