package conversation

import "context"

// ConversationEngine advances a subject's dialogue one inbound message at a
// time and returns the reply text to deliver.
type ConversationEngine interface {
	HandleMessage(ctx context.Context, subjectID, text string) string
}
