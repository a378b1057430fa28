// File: services/messenger/instagram.go
package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"clipbook/config"
	"clipbook/utils"

	"go.uber.org/zap"
)

const graphAPIVersion = "v21.0"

// Package-level HTTP client for Graph API calls.
var graphHTTPClient = &http.Client{Timeout: 10 * time.Second}

// DefaultInstagramService implements MessengerService against the Instagram
// Graph API.
type DefaultInstagramService struct {
	AccessToken string
	PageID      string
	BaseURL     string
}

func NewDefaultInstagramService() *DefaultInstagramService {
	logger := utils.GetLogger()
	svc := &DefaultInstagramService{
		AccessToken: config.AppConfig.InstagramAccessToken,
		PageID:      config.AppConfig.InstagramPageID,
		BaseURL:     fmt.Sprintf("https://graph.facebook.com/%s", graphAPIVersion),
	}
	if svc.AccessToken == "" || svc.PageID == "" {
		logger.Warn("Instagram credentials not fully configured")
	}
	return svc
}

func (s *DefaultInstagramService) SendMessage(ctx context.Context, recipientID, text string) error {
	logger := utils.GetLogger()

	payload := map[string]any{
		"recipient":    map[string]string{"id": recipientID},
		"message":      map[string]string{"text": text},
		"access_token": s.AccessToken,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+"/me/messages", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := graphHTTPClient.Do(req)
	if err != nil {
		logger.Error("failed to send message", zap.String("recipientID", recipientID), zap.Error(err))
		return fmt.Errorf("send message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		logger.Error("Graph API rejected message",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("response", respBody))
		return fmt.Errorf("send message: status %d", resp.StatusCode)
	}

	logger.Info("message sent", zap.String("recipientID", recipientID))
	return nil
}

func (s *DefaultInstagramService) GetUserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	logger := utils.GetLogger()

	params := url.Values{}
	params.Set("fields", "name,username,profile_pic")
	params.Set("access_token", s.AccessToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/%s?%s", s.BaseURL, userID, params.Encode()), nil)
	if err != nil {
		return nil, fmt.Errorf("build profile request: %w", err)
	}

	resp, err := graphHTTPClient.Do(req)
	if err != nil {
		logger.Error("failed to get user profile", zap.String("userID", userID), zap.Error(err))
		return nil, fmt.Errorf("get user profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get user profile: status %d", resp.StatusCode)
	}

	var profile UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decode user profile: %w", err)
	}
	return &profile, nil
}

func (s *DefaultInstagramService) ReplyToComment(ctx context.Context, commentID, text string) error {
	logger := utils.GetLogger()

	payload := map[string]string{
		"message":      text,
		"access_token": s.AccessToken,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal reply payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/%s/replies", s.BaseURL, commentID), bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("build reply request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := graphHTTPClient.Do(req)
	if err != nil {
		logger.Error("failed to reply to comment", zap.String("commentID", commentID), zap.Error(err))
		return fmt.Errorf("reply to comment: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("reply to comment: status %d", resp.StatusCode)
	}

	logger.Info("replied to comment", zap.String("commentID", commentID))
	return nil
}
