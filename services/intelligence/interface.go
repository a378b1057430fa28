package ai

import (
	"context"
	"time"

	"clipbook/models"
)

// IntelligenceService is the opaque text-understanding collaborator:
// intent classification, date/time extraction and general Q&A.
type IntelligenceService interface {
	// ClassifyIntent labels the message given the current dialogue stage.
	// It degrades to IntentOther on any internal failure, never errors.
	ClassifyIntent(ctx context.Context, text string, stage models.Stage) models.Intent

	// ExtractDateTime pulls an appointment instant out of the message,
	// anchored at referenceNow. ok is false when nothing confident parses.
	ExtractDateTime(ctx context.Context, text string, referenceNow time.Time) (instant time.Time, ok bool)

	// AnswerQuestion handles general shop questions with bounded recent
	// history for context.
	AnswerQuestion(ctx context.Context, text string, history []models.Turn) (string, error)
}
