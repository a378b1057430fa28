// File: services/conversation/engine.go
package conversation

import (
	"context"
	"strconv"
	"strings"
	"time"

	ai "clipbook/services/intelligence"
	"clipbook/services/messenger"
	"clipbook/services/responder"
	"clipbook/services/scheduling"

	"clipbook/models"
	"clipbook/utils"

	"go.uber.org/zap"
)

// DefaultConversationEngine implements ConversationEngine. Every external
// call (classification, extraction, availability, booking, Q&A) degrades to
// a fallback or error reply; a failed call never leaves the conversation in
// an inconsistent stage.
type DefaultConversationEngine struct {
	AI           ai.IntelligenceService
	Availability scheduling.AvailabilityService
	Booking      scheduling.BookingCoordinator
	Messenger    messenger.MessengerService
	Responder    responder.Responder
	Store        ConversationStore

	Blocks        []models.TimeBlock
	LookaheadDays int
	HistoryLimit  int
	Tolerance     time.Duration // matching a confirmed time to an offered slot
	ServiceType   string
	Location      *time.Location

	// Now is the clock; tests override it.
	Now func() time.Time
}

func (e *DefaultConversationEngine) now() time.Time {
	if e.Now != nil {
		return e.Now().In(e.Location)
	}
	return time.Now().In(e.Location)
}

// HandleMessage classifies the message, applies the policy table for the
// subject's current stage, and returns the reply. The whole turn runs under
// the subject's conversation lock so turns apply in arrival order.
func (e *DefaultConversationEngine) HandleMessage(ctx context.Context, subjectID, text string) string {
	logger := utils.GetLogger()
	var reply string

	e.Store.WithConversation(subjectID, func(conv *models.Conversation) {
		now := e.now()
		conv.History = append(conv.History, models.Turn{Role: "user", Content: text, At: now})

		intent := e.AI.ClassifyIntent(ctx, text, conv.Stage)
		logger.Info("classified intent",
			zap.String("subjectID", subjectID),
			zap.String("intent", string(intent)),
			zap.String("stage", string(conv.Stage)))

		reply = e.handleIntent(ctx, conv, intent, text)

		conv.History = append(conv.History, models.Turn{Role: "assistant", Content: reply, At: e.now()})
		if len(conv.History) > e.HistoryLimit {
			conv.History = conv.History[len(conv.History)-e.HistoryLimit:]
		}
	})

	return reply
}

func (e *DefaultConversationEngine) handleIntent(ctx context.Context, conv *models.Conversation, intent models.Intent, text string) string {
	switch intent {
	case models.IntentGreeting:
		conv.Stage = models.StageGreeted
		return e.Responder.Greeting()

	case models.IntentBookingInquiry:
		return e.handleBookingInquiry(ctx, conv, text)

	case models.IntentConfirmBooking:
		if conv.Stage == models.StageShowingAvailability || conv.Stage == models.StageAwaitingConfirmation {
			return e.handleConfirmation(ctx, conv, text)
		}
		return e.Responder.Fallback()

	case models.IntentCancelBooking:
		return e.handleCancellation(ctx, conv)

	case models.IntentGeneralQuestion:
		if isServiceQuestion(text) {
			return e.Responder.ServiceInfo()
		}
		answer, err := e.AI.AnswerQuestion(ctx, text, conv.History)
		if err != nil {
			utils.GetLogger().Error("Q&A call failed", zap.Error(err))
			return e.Responder.Fallback()
		}
		return answer

	default:
		return e.Responder.Fallback()
	}
}

func (e *DefaultConversationEngine) handleBookingInquiry(ctx context.Context, conv *models.Conversation, text string) string {
	requested, ok := e.AI.ExtractDateTime(ctx, text, e.now())
	if !ok {
		conv.Stage = models.StageAskingDatetime
		return e.Responder.AskDatetime()
	}

	if !e.withinBusinessHours(requested) {
		conv.Stage = models.StageAskingDatetime
		return e.Responder.OutOfHours()
	}

	slots := e.Availability.PresentableSlots(ctx, requested, e.LookaheadDays)
	e.offerSlots(conv, slots)
	conv.Stage = models.StageShowingAvailability
	return e.Responder.Availability(slots)
}

func (e *DefaultConversationEngine) handleConfirmation(ctx context.Context, conv *models.Conversation, text string) string {
	logger := utils.GetLogger()

	requested, ok := e.resolveConfirmedSlot(ctx, conv, text)
	if !ok {
		conv.Stage = models.StageAwaitingConfirmation
		return e.Responder.ClarifyTime()
	}

	rec, err := e.Booking.Book(ctx, conv.SubjectID, requested, e.customerName(ctx, conv.SubjectID), e.ServiceType)
	switch {
	case err == nil:
		conv.Stage = models.StageCompleted
		conv.Booking = rec
		conv.OfferedSlots = nil
		return e.Responder.Confirmation(rec.Start)

	case scheduling.IsTimeNotAvailable(err):
		// Another booking landed between discovery and confirmation.
		// Re-show what is still open; the stage stays pre-completion.
		alternatives := e.Availability.PresentableSlots(ctx, requested, e.LookaheadDays)
		e.offerSlots(conv, alternatives)
		conv.Stage = models.StageShowingAvailability
		return e.Responder.TimeNotAvailable(alternatives)

	default:
		logger.Error("booking attempt failed", zap.String("subjectID", conv.SubjectID), zap.Error(err))
		return e.Responder.BookingError()
	}
}

func (e *DefaultConversationEngine) handleCancellation(ctx context.Context, conv *models.Conversation) string {
	logger := utils.GetLogger()
	conv.Stage = models.StageCancelled

	// The dialogue may have been evicted since the booking; fall back to the
	// record log for the subject's next appointment.
	rec := conv.Booking
	if rec == nil {
		found, err := e.Booking.UpcomingBooking(ctx, conv.SubjectID)
		if err != nil {
			logger.Warn("upcoming booking lookup failed",
				zap.String("subjectID", conv.SubjectID), zap.Error(err))
		} else {
			rec = found
		}
	}

	if rec != nil {
		if err := e.Booking.Cancel(ctx, rec.EventID); err != nil {
			logger.Error("cancellation failed",
				zap.String("eventID", rec.EventID), zap.Error(err))
			return e.Responder.BookingError()
		}
		conv.Booking = nil
	}
	return e.Responder.Cancellation()
}

// resolveConfirmedSlot matches the user's reply against the explicit set of
// offered slots: by list index, by an extracted time within tolerance of an
// offered slot (or a concrete time outright), or by bare assent when only
// one slot is on the table. Anything else is ambiguous.
func (e *DefaultConversationEngine) resolveConfirmedSlot(ctx context.Context, conv *models.Conversation, text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)

	if idx, err := strconv.Atoi(strings.TrimSuffix(trimmed, ".")); err == nil {
		if idx >= 1 && idx <= len(conv.OfferedSlots) {
			return conv.OfferedSlots[idx-1], true
		}
		return time.Time{}, false
	}

	if extracted, ok := e.AI.ExtractDateTime(ctx, text, e.now()); ok {
		for _, offered := range conv.OfferedSlots {
			diff := offered.Sub(extracted)
			if diff < 0 {
				diff = -diff
			}
			if diff < e.Tolerance {
				return offered, true
			}
		}
		// A concrete time that wasn't in the shown list still gets a shot;
		// re-validation decides whether it is actually open.
		return extracted, true
	}

	if isAssent(trimmed) && len(conv.OfferedSlots) == 1 {
		return conv.OfferedSlots[0], true
	}
	return time.Time{}, false
}

var serviceKeywords = []string{"service", "price", "cost", "how much", "offer"}

// isServiceQuestion routes services-and-prices questions to the canned
// info reply instead of the Q&A model.
func isServiceQuestion(text string) bool {
	lower := strings.ToLower(text)
	for _, kw := range serviceKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var assentPhrases = []string{"yes", "yep", "yeah", "confirm", "book it", "that works", "sounds good", "ok", "okay", "sure"}

func isAssent(text string) bool {
	lower := strings.ToLower(text)
	for _, phrase := range assentPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// customerName asks the messenger for the profile name; booking proceeds
// with a placeholder when the lookup fails.
func (e *DefaultConversationEngine) customerName(ctx context.Context, subjectID string) string {
	profile, err := e.Messenger.GetUserProfile(ctx, subjectID)
	if err != nil || profile == nil || profile.Name == "" {
		return "Customer"
	}
	return profile.Name
}

func (e *DefaultConversationEngine) offerSlots(conv *models.Conversation, slots []models.Slot) {
	starts := make([]time.Time, len(slots))
	for i, slot := range slots {
		starts[i] = slot.Start
	}
	conv.OfferedSlots = starts
}

// withinBusinessHours checks the instant against the configured blocks,
// split schedules included.
func (e *DefaultConversationEngine) withinBusinessHours(t time.Time) bool {
	t = t.In(e.Location)
	minutes := t.Hour()*60 + t.Minute()
	for _, block := range e.Blocks {
		if minutes >= block.Start && minutes < block.End {
			return true
		}
	}
	return false
}
