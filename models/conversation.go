package models

import "time"

// Stage is the current node of a subject's conversation state machine.
type Stage string

const (
	StageInitial              Stage = "initial"
	StageGreeted              Stage = "greeted"
	StageAskingDatetime       Stage = "asking_datetime"
	StageShowingAvailability  Stage = "showing_availability"
	StageAwaitingConfirmation Stage = "awaiting_confirmation"
	StageCompleted            Stage = "completed"
	StageCancelled            Stage = "cancelled"
)

// Terminal reports whether the stage marks the dialogue's topic closed.
// A new message after a terminal stage resumes the machine rather than
// erroring.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageCancelled
}

// Intent is the label the classifier assigns to an inbound message.
type Intent string

const (
	IntentBookingInquiry  Intent = "booking_inquiry"
	IntentConfirmBooking  Intent = "confirm_booking"
	IntentCancelBooking   Intent = "cancel_booking"
	IntentGeneralQuestion Intent = "general_question"
	IntentGreeting        Intent = "greeting"
	IntentOther           Intent = "other"
)

// Turn is one inbound or outbound message in a conversation.
type Turn struct {
	Role    string    `json:"role"` // "user" or "assistant"
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Conversation holds the per-subject dialogue state. Instances are owned by
// the conversation store and mutated only under its per-subject lock.
type Conversation struct {
	SubjectID    string         `json:"subjectId"`
	Stage        Stage          `json:"stage"`
	History      []Turn         `json:"history"`
	OfferedSlots []time.Time    `json:"offeredSlots,omitempty"` // slots presented in the last availability reply
	Booking      *BookingRecord `json:"booking,omitempty"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}
