// internal/services/push.go
package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"

	"github.com/aurelle/aurelle-backend/internal/config"
)

// PushMessage is one notification payload addressed to device tokens or a
// topic.
type PushMessage struct {
	Title    string
	Body     string
	ImageURL string
	Data     map[string]string
}

// PushResult reports per-token delivery outcomes. Unregistered lists tokens
// FCM no longer recognises; callers should deactivate them.
type PushResult struct {
	SuccessCount int
	FailureCount int
	Unregistered []string
}

// Pusher delivers push notifications. The production implementation wraps
// Firebase Cloud Messaging; tests substitute a fake.
type Pusher interface {
	SendToTokens(ctx context.Context, tokens []string, msg PushMessage) (*PushResult, error)
	SendToTopic(ctx context.Context, topic string, msg PushMessage) error
}

type fcmPusher struct {
	client *messaging.Client
}

func NewFCMPusher(ctx context.Context, cfg config.FirebaseConfig) (Pusher, error) {
	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize fcm client: %w", err)
	}

	return &fcmPusher{client: client}, nil
}

func (p *fcmPusher) notification(msg PushMessage) *messaging.Notification {
	return &messaging.Notification{
		Title:    msg.Title,
		Body:     msg.Body,
		ImageURL: msg.ImageURL,
	}
}

func (p *fcmPusher) SendToTokens(ctx context.Context, tokens []string, msg PushMessage) (*PushResult, error) {
	result := &PushResult{}

	// FCM caps multicast batches at 500 tokens.
	for start := 0; start < len(tokens); start += 500 {
		end := start + 500
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		resp, err := p.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
			Tokens:       batch,
			Notification: p.notification(msg),
			Data:         msg.Data,
		})
		if err != nil {
			return result, fmt.Errorf("fcm multicast failed: %w", err)
		}

		result.SuccessCount += resp.SuccessCount
		result.FailureCount += resp.FailureCount

		for i, sr := range resp.Responses {
			if sr.Error != nil && messaging.IsUnregistered(sr.Error) {
				result.Unregistered = append(result.Unregistered, batch[i])
			}
		}
	}

	return result, nil
}

func (p *fcmPusher) SendToTopic(ctx context.Context, topic string, msg PushMessage) error {
	_, err := p.client.Send(ctx, &messaging.Message{
		Topic:        topic,
		Notification: p.notification(msg),
		Data:         msg.Data,
	})
	if err != nil {
		return fmt.Errorf("fcm topic send failed: %w", err)
	}
	return nil
}
