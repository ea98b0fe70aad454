package service

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCMService sends push notifications via Firebase Cloud Messaging.
// A nil *FCMService is a valid no-op transport, so callers never need to
// branch on whether push is configured.
type FCMService struct {
	client *messaging.Client
}

// NewFCMService creates an FCM service. Returns nil if Firebase is not configured.
func NewFCMService(serviceAccountPath string) *FCMService {
	if serviceAccountPath == "" {
		return nil
	}
	ctx := context.Background()
	opt := option.WithCredentialsFile(serviceAccountPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		log.Printf("[FCM] Failed to init Firebase app: %v", err)
		return nil
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		log.Printf("[FCM] Failed to get Messaging client: %v", err)
		return nil
	}
	return &FCMService{client: client}
}

// SendToTokens attempts delivery to every token and returns the tokens FCM
// reported as no longer registered. Other send errors are logged and the
// loop continues; a partial delivery is the normal case.
func (s *FCMService) SendToTokens(ctx context.Context, tokens []string, title, body string, data map[string]string) ([]string, error) {
	if s == nil || len(tokens) == 0 {
		return nil, nil
	}
	var invalid []string
	for _, token := range tokens {
		msg := &messaging.Message{
			Notification: &messaging.Notification{
				Title: title,
				Body:  body,
			},
			Data:  data,
			Token: token,
			Android: &messaging.AndroidConfig{
				Priority: "high",
				Notification: &messaging.AndroidNotification{
					ChannelID: "bubble_notifications",
					Sound:     "default",
				},
			},
			APNS: &messaging.APNSConfig{
				Payload: &messaging.APNSPayload{
					Aps: &messaging.Aps{
						Sound: "default",
						Badge: intPtr(1),
					},
				},
			},
		}
		if _, err := s.client.Send(ctx, msg); err != nil {
			if messaging.IsRegistrationTokenNotRegistered(err) {
				invalid = append(invalid, token)
				continue
			}
			log.Printf("[FCM] Send error: %v", err)
		}
	}
	return invalid, nil
}

func intPtr(n int) *int { return &n }
