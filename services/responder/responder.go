// File: services/responder/responder.go
package responder

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"clipbook/models"
)

// slotDisplayFormat renders a slot start for replies, e.g.
// "Monday, November 4 at 02:00 PM".
const slotDisplayFormat = "Monday, January 2 at 03:04 PM"

// Responder renders user-facing reply text. It is a presentation
// collaborator: the conversation engine decides what to say, the responder
// decides how to phrase it.
type Responder interface {
	Greeting() string
	AskDatetime() string
	Availability(slots []models.Slot) string
	Confirmation(start time.Time) string
	ClarifyTime() string
	Cancellation() string
	TimeNotAvailable(alternatives []models.Slot) string
	BookingError() string
	Fallback() string
	OutOfHours() string
	ServiceInfo() string
}

// DefaultResponder picks randomly among canned variants so replies don't
// read like a form letter.
type DefaultResponder struct {
	BarberName string
	HoursStart string
	HoursEnd   string
	MaxListed  int // how many slots an availability reply enumerates
}

func (r *DefaultResponder) pick(variants []string) string {
	return variants[rand.Intn(len(variants))]
}

func (r *DefaultResponder) Greeting() string {
	return r.pick([]string{
		fmt.Sprintf("Hey! Thanks for reaching out. I'm here to help you book an appointment with %s. When would you like to come in?", r.BarberName),
		fmt.Sprintf("What's up! Looking to book a cut with %s? Let me know what day works for you!", r.BarberName),
		"Hey there! Ready to get fresh? When are you looking to book an appointment?",
		fmt.Sprintf("Hello! I can help you schedule an appointment with %s. What day were you thinking?", r.BarberName),
	})
}

func (r *DefaultResponder) AskDatetime() string {
	return r.pick([]string{
		"What day and time work best for you? Just let me know like 'tomorrow at 2pm' or 'next Monday morning'",
		"When would you like to come in? Give me a day and time, like 'Saturday at 3pm' or 'next week'",
		"What's your preferred day and time? I can check availability for you.",
		"When are you free? Let me know a day and time that works for you!",
	})
}

func (r *DefaultResponder) Availability(slots []models.Slot) string {
	if len(slots) == 0 {
		return "Sorry, I'm not seeing any available slots right now. Could you try a different day or time?"
	}

	limit := r.MaxListed
	if limit <= 0 {
		limit = 3
	}
	if len(slots) > limit {
		slots = slots[:limit]
	}

	var sb strings.Builder
	sb.WriteString("Here are the next available times:\n\n")
	for i, slot := range slots {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, slot.Start.Format(slotDisplayFormat))
	}
	sb.WriteString("\nWhich one works for you? Just reply with the number or the time!")
	return sb.String()
}

func (r *DefaultResponder) Confirmation(start time.Time) string {
	formatted := start.Format(slotDisplayFormat)
	reply := r.pick([]string{
		fmt.Sprintf("✅ You're all set! Your appointment is confirmed for %s. See you then!", formatted),
		fmt.Sprintf("🔥 Booked! You're scheduled for %s. Looking forward to it!", formatted),
		fmt.Sprintf("✂️ Perfect! You're confirmed for %s. We'll see you there!", formatted),
		fmt.Sprintf("📅 Done! Your appointment is locked in for %s. Can't wait to see you!", formatted),
	})
	return reply + "\n\nYou'll get a reminder before your appointment. If you need to cancel or reschedule, just let me know!"
}

func (r *DefaultResponder) ClarifyTime() string {
	return r.pick([]string{
		"Just to confirm - which time slot did you want? Let me know the specific time!",
		"Which one of those times works for you? Just tell me the day and time you prefer.",
		"Can you confirm which time you'd like? Just let me know!",
	})
}

func (r *DefaultResponder) Cancellation() string {
	return "No problem! If you have an existing appointment you'd like to cancel, please send me the date and time. Or if you want to reschedule, just let me know when works better for you!"
}

func (r *DefaultResponder) TimeNotAvailable(alternatives []models.Slot) string {
	reply := "Ah, that time just got taken."
	if len(alternatives) == 0 {
		return reply + " I'm not seeing anything else open nearby - want to try a different day?"
	}
	return reply + " Here's what else is open:\n\n" + r.listSlots(alternatives) + "\nAny of these work?"
}

func (r *DefaultResponder) listSlots(slots []models.Slot) string {
	limit := r.MaxListed
	if limit <= 0 {
		limit = 3
	}
	if len(slots) > limit {
		slots = slots[:limit]
	}
	var sb strings.Builder
	for i, slot := range slots {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, slot.Start.Format(slotDisplayFormat))
	}
	return sb.String()
}

func (r *DefaultResponder) BookingError() string {
	return "Oops, something went wrong creating your appointment. Can you try again? If this keeps happening, please DM us directly."
}

func (r *DefaultResponder) Fallback() string {
	return r.pick([]string{
		"Sorry, I didn't quite catch that. Are you looking to book an appointment? Let me know what day works for you!",
		"I want to make sure I help you right! Are you trying to book, reschedule, or cancel an appointment?",
		"Hmm, I'm not sure I understood. Want to book an appointment? Just tell me when you're free!",
	})
}

func (r *DefaultResponder) OutOfHours() string {
	return fmt.Sprintf("We're typically open from %s to %s. Can you choose a time during those hours?", r.HoursStart, r.HoursEnd)
}

func (r *DefaultResponder) ServiceInfo() string {
	return fmt.Sprintf(`Here's what %s offers:

✂️ Haircuts - Full service cuts
🧔 Beard Trims & Grooming
🔥 Fades & Tapers
✨ Lineups & Edge-ups

Prices typically range from $30-50 depending on the service.

Want to book an appointment? Let me know when you're free!`, r.BarberName)
}
