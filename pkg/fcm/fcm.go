package fcm

import (
	"context"
	"fmt"
	"log"
	"time"

	"eshop-backend/pkg/push"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// multicastLimit is FCM's documented maximum token count per multicast call.
const multicastLimit = 500

// sendTimeout bounds each provider round trip. No cancellation token is
// threaded through delivery calls, so this deadline is the only bound on
// an individual call's duration.
const sendTimeout = 8 * time.Second

// Client wraps Firebase Cloud Messaging as a push.Gateway.
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new FCM client using the provided credentials file
func NewClient(credentialsFile string) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[FCM] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// MaxBatchSize returns the provider multicast limit.
func (c *Client) MaxBatchSize() int {
	return multicastLimit
}

// SendOne sends a push notification to a single device token.
func (c *Client) SendOne(ctx context.Context, token string, msg push.Message) push.Outcome {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	messageID, err := c.messagingClient.Send(ctx, buildMessage(token, msg))
	if err != nil {
		return push.Outcome{Token: token, Kind: classify(err), Err: err}
	}

	return push.Outcome{Token: token, Kind: push.Delivered, MessageID: messageID}
}

// SendMany sends a push notification to up to MaxBatchSize device tokens
// and returns one outcome per token, in token order.
func (c *Client) SendMany(ctx context.Context, tokens []string, msg push.Message) []push.Outcome {
	if len(tokens) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	multicast := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    msg.Title,
			Body:     msg.Body,
			ImageURL: msg.ImageURL,
		},
		Data: msg.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: msg.Title,
				Body:  msg.Body,
				Icon:  "/icon-192.svg",
			},
		},
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, multicast)
	if err != nil {
		// The whole batch failed before any per-token result came back
		// (network error, provider outage). That says nothing about the
		// tokens themselves.
		log.Printf("[FCM] Multicast call failed: %v", err)
		outcomes := make([]push.Outcome, len(tokens))
		for i, token := range tokens {
			outcomes[i] = push.Outcome{Token: token, Kind: push.TransientFailure, Err: err}
		}
		return outcomes
	}

	log.Printf("[FCM] Multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	outcomes := make([]push.Outcome, len(tokens))
	for i, resp := range response.Responses {
		if resp.Success {
			outcomes[i] = push.Outcome{Token: tokens[i], Kind: push.Delivered, MessageID: resp.MessageID}
			continue
		}
		outcomes[i] = push.Outcome{Token: tokens[i], Kind: classify(resp.Error), Err: resp.Error}
	}
	return outcomes
}

func buildMessage(token string, msg push.Message) *messaging.Message {
	return &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title:    msg.Title,
			Body:     msg.Body,
			ImageURL: msg.ImageURL,
		},
		Data: msg.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: msg.Title,
				Body:  msg.Body,
				Icon:  "/icon-192.svg",
			},
		},
	}
}

// classify maps a provider error to an outcome kind. Permanent means the
// token itself is dead: unregistered, structurally invalid, or registered
// to a different sender project. Anything unrecognized is transient so an
// unknown error kind can never unsubscribe a real user.
func classify(err error) push.OutcomeKind {
	switch {
	case messaging.IsUnregistered(err):
		return push.PermanentFailure
	case messaging.IsSenderIDMismatch(err):
		return push.PermanentFailure
	case errorutils.IsInvalidArgument(err):
		return push.PermanentFailure
	default:
		return push.TransientFailure
	}
}
