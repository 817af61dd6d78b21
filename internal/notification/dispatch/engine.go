package dispatch

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	notifdomain "eshop-backend/internal/notification/domain"
	"eshop-backend/pkg/push"
)

// Reason explains why a dispatch did not fully succeed.
type Reason string

const (
	ReasonNoToken            Reason = "no_token"
	ReasonEmptyRecipients    Reason = "empty_recipient_set"
	ReasonGatewayUnavailable Reason = "gateway_unavailable"
	ReasonDirectoryError     Reason = "directory_error"
	ReasonDeliveryFailed     Reason = "delivery_failed"
)

// DispatchResult is the aggregate outcome of one dispatch call. Every
// engine entry point returns one; none of them returns an error or lets
// a panic escape, so callers never need recovery logic to use the engine.
type DispatchResult struct {
	Success           bool   `json:"success"`
	Reason            Reason `json:"reason,omitempty"`
	Attempted         int    `json:"attempted"`
	Delivered         int    `json:"delivered"`
	TransientlyFailed int    `json:"transiently_failed"`
	PermanentlyFailed int    `json:"permanently_failed"`
}

// Directory is the slice of the recipient directory the engine consumes.
type Directory interface {
	GetToken(userID string) (string, error)
	ClearToken(userID string) error
	AllWithToken() ([]push.Recipient, error)
	BulkClearTokens(userIDs []string) (int64, error)
	ClearTokensByValue(tokens []string) (int64, error)
}

// RecordStore is the slice of the notification record store the engine
// consumes.
type RecordStore interface {
	Create(n *notifdomain.Notification) error
	CreateBatch(ns []notifdomain.Notification) error
}

// Engine resolves recipients, calls the delivery gateway, records
// notifications, and invalidates permanently dead tokens.
type Engine struct {
	gateway   push.Gateway
	directory Directory
	records   RecordStore
}

// NewEngine creates a dispatch engine. A nil gateway is allowed: every
// send then reports gateway_unavailable instead of failing hard, so the
// surrounding process keeps serving when the provider is not configured.
func NewEngine(gateway push.Gateway, directory Directory, records RecordStore) *Engine {
	return &Engine{
		gateway:   gateway,
		directory: directory,
		records:   records,
	}
}

// SendToUser resolves the user's device token and delivers one push
// notification. An in-app record is written whenever delivery was
// attempted, regardless of the outcome. A permanent delivery failure
// clears the user's token before returning.
func (e *Engine) SendToUser(ctx context.Context, userID, title, body, tag string, data map[string]string) DispatchResult {
	token, err := e.directory.GetToken(userID)
	if err != nil {
		log.Printf("[Dispatch] Failed to resolve token for user %s: %v", userID, err)
		return DispatchResult{Success: false, Reason: ReasonDirectoryError}
	}
	if token == "" {
		return DispatchResult{Success: false, Reason: ReasonNoToken}
	}

	if e.gateway == nil {
		e.appendRecord(userID, title, body, tag, data)
		return DispatchResult{Success: false, Reason: ReasonGatewayUnavailable, Attempted: 1, TransientlyFailed: 1}
	}

	outcome := e.gateway.SendOne(ctx, token, e.buildMessage(title, body, tag, data))
	e.appendRecord(userID, title, body, tag, data)

	result := DispatchResult{Attempted: 1}
	switch outcome.Kind {
	case push.Delivered:
		result.Success = true
		result.Delivered = 1
	case push.PermanentFailure:
		result.Reason = ReasonDeliveryFailed
		result.PermanentlyFailed = 1
		log.Printf("[Dispatch] Permanent delivery failure for user %s, clearing token: %v", userID, outcome.Err)
		if err := e.directory.ClearToken(userID); err != nil {
			log.Printf("[Dispatch] Failed to clear dead token for user %s: %v", userID, err)
		}
	default:
		result.Reason = ReasonDeliveryFailed
		result.TransientlyFailed = 1
		log.Printf("[Dispatch] Transient delivery failure for user %s: %v", userID, outcome.Err)
	}
	return result
}

// SendToUserAsync delivers on a background goroutine, best effort. The
// caller gets no result; failures surface only in the logs.
func (e *Engine) SendToUserAsync(userID, title, body, tag string, data map[string]string) {
	go func() {
		result := e.SendToUser(context.Background(), userID, title, body, tag, data)
		if !result.Success {
			log.Printf("[Dispatch] Async send to user %s did not succeed: %s", userID, result.Reason)
		}
	}()
}

// SendMulticast delivers one message to an explicit token list, chunked
// by the gateway's batch limit. Permanently dead tokens are cleared from
// the directory by value. No in-app records are written: a bare token
// carries no user identity.
func (e *Engine) SendMulticast(ctx context.Context, tokens []string, title, body, tag string, data map[string]string) DispatchResult {
	if len(tokens) == 0 {
		return DispatchResult{Success: false, Reason: ReasonEmptyRecipients}
	}
	if e.gateway == nil {
		return DispatchResult{
			Success:           false,
			Reason:            ReasonGatewayUnavailable,
			Attempted:         len(tokens),
			TransientlyFailed: len(tokens),
		}
	}

	result, dead := e.multicast(ctx, tokens, e.buildMessage(title, body, tag, data))

	if len(dead) > 0 {
		if _, err := e.directory.ClearTokensByValue(dead); err != nil {
			log.Printf("[Dispatch] Failed to clear %d dead tokens: %v", len(dead), err)
		}
	}
	return result
}

// SendToAllUsers snapshots every user with a token and multicasts to all
// of them. Each batch is dispatched independently; a failed batch is
// counted, never raised, and never aborts the remaining batches. One
// in-app record is written per snapshotted recipient.
func (e *Engine) SendToAllUsers(ctx context.Context, title, body, tag string, data map[string]string) DispatchResult {
	recipients, err := e.directory.AllWithToken()
	if err != nil {
		log.Printf("[Dispatch] Failed to snapshot recipients: %v", err)
		return DispatchResult{Success: false, Reason: ReasonDirectoryError}
	}
	if len(recipients) == 0 {
		return DispatchResult{Success: false, Reason: ReasonEmptyRecipients}
	}

	if e.gateway == nil {
		return DispatchResult{
			Success:           false,
			Reason:            ReasonGatewayUnavailable,
			Attempted:         len(recipients),
			TransientlyFailed: len(recipients),
		}
	}

	tokens := make([]string, len(recipients))
	owner := make(map[string]string, len(recipients))
	for i, r := range recipients {
		tokens[i] = r.Token
		owner[r.Token] = r.UserID
	}

	result, dead := e.multicast(ctx, tokens, e.buildMessage(title, body, tag, data))

	if len(dead) > 0 {
		deadUsers := make([]string, 0, len(dead))
		for _, token := range dead {
			if userID, ok := owner[token]; ok {
				deadUsers = append(deadUsers, userID)
			}
		}
		log.Printf("[Dispatch] Clearing %d permanently dead tokens", len(deadUsers))
		if _, err := e.directory.BulkClearTokens(deadUsers); err != nil {
			log.Printf("[Dispatch] Failed to bulk-clear dead tokens: %v", err)
		}
	}

	records := make([]notifdomain.Notification, len(recipients))
	payload := encodePayload(data)
	for i, r := range recipients {
		records[i] = notifdomain.Notification{
			UserID: r.UserID,
			Title:  title,
			Body:   body,
			Data:   payload,
			Type:   tag,
		}
	}
	if err := e.records.CreateBatch(records); err != nil {
		log.Printf("[Dispatch] Failed to write %d notification records: %v", len(records), err)
	}

	return result
}

// multicast fans the message out in gateway-sized batches, joins on all
// of them, and returns the aggregate plus the permanently failed tokens.
func (e *Engine) multicast(ctx context.Context, tokens []string, msg push.Message) (DispatchResult, []string) {
	batchSize := e.gateway.MaxBatchSize()
	if batchSize <= 0 {
		batchSize = 1
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		agg  = DispatchResult{Attempted: len(tokens)}
		dead []string
	)

	for start := 0; start < len(tokens); start += batchSize {
		end := start + batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		wg.Add(1)
		go func(batch []string) {
			defer wg.Done()
			outcomes := e.gateway.SendMany(ctx, batch, msg)

			mu.Lock()
			defer mu.Unlock()
			for _, outcome := range outcomes {
				switch outcome.Kind {
				case push.Delivered:
					agg.Delivered++
				case push.PermanentFailure:
					agg.PermanentlyFailed++
					dead = append(dead, outcome.Token)
				default:
					agg.TransientlyFailed++
				}
			}
		}(batch)
	}
	wg.Wait()

	agg.Success = agg.Delivered > 0
	if !agg.Success {
		agg.Reason = ReasonDeliveryFailed
	}
	return agg, dead
}

func (e *Engine) appendRecord(userID, title, body, tag string, data map[string]string) {
	record := &notifdomain.Notification{
		UserID: userID,
		Title:  title,
		Body:   body,
		Data:   encodePayload(data),
		Type:   tag,
	}
	if err := e.records.Create(record); err != nil {
		log.Printf("[Dispatch] Failed to write notification record for user %s: %v", userID, err)
	}
}

func (e *Engine) buildMessage(title, body, tag string, data map[string]string) push.Message {
	merged := make(map[string]string, len(data)+1)
	for k, v := range data {
		merged[k] = v
	}
	if tag != "" {
		merged["type"] = tag
	}
	return push.Message{Title: title, Body: body, Data: merged}
}

func encodePayload(data map[string]string) string {
	if len(data) == 0 {
		return "{}"
	}
	encoded, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}
