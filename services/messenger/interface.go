package messenger

import "context"

// UserProfile is the subset of profile fields the bot uses.
type UserProfile struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	ProfilePic string `json:"profile_pic"`
}

// MessengerService delivers outbound replies to an end user. Delivery is
// fire-and-log: a failed send is reported, never retried in a blocking way.
type MessengerService interface {
	SendMessage(ctx context.Context, recipientID, text string) error
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
	ReplyToComment(ctx context.Context, commentID, text string) error
}
