// Package notification delivers emitted signals to subscribers outside the
// API surface: Expo push messages to mobile devices and websocket broadcasts
// to connected dashboards.
package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/signalmaster/signal-engine/internal/logger"
	"github.com/signalmaster/signal-engine/pkg/errors"
)

// PushMessage is one notification destined for a set of device tokens.
type PushMessage struct {
	Tokens []string
	Title  string
	Body   string
	Data   map[string]interface{}
}

// Notifier sends push messages. Delivery is best effort; implementations
// report the last error but must not fail the emission that triggered them.
type Notifier interface {
	Send(ctx context.Context, msg PushMessage) error
}

const (
	expoPushURL = "https://exp.host/--/api/v2/push/send"

	// expoBatchSize is the Expo API limit per request.
	expoBatchSize = 100

	// expoTokenPrefix identifies valid Expo device tokens. Anything else is
	// silently dropped.
	expoTokenPrefix = "ExponentPushToken"

	defaultPushTimeout = 10 * time.Second
)

// IsExpoToken reports whether token looks like an Expo device token. The
// registration endpoint rejects anything else up front; Send filters again
// in case stale tokens survive in the store.
func IsExpoToken(token string) bool {
	return strings.HasPrefix(token, expoTokenPrefix)
}

// expoPushRequest is one message in the Expo send payload.
type expoPushRequest struct {
	To    []string               `json:"to"`
	Title string                 `json:"title"`
	Body  string                 `json:"body"`
	Sound string                 `json:"sound"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

// ExpoNotifier sends push notifications through the Expo push service.
type ExpoNotifier struct {
	client *http.Client
	url    string
	log    *logger.Logger
}

// NewExpoNotifier creates an ExpoNotifier with the default endpoint and
// timeout.
func NewExpoNotifier(log *logger.Logger) *ExpoNotifier {
	return &ExpoNotifier{
		client: &http.Client{Timeout: defaultPushTimeout},
		url:    expoPushURL,
		log:    log,
	}
}

// Send filters out non-Expo tokens and posts the message in batches of at
// most 100 tokens. A failed batch does not stop the remaining batches; the
// last batch error is returned.
func (n *ExpoNotifier) Send(ctx context.Context, msg PushMessage) error {
	tokens := make([]string, 0, len(msg.Tokens))

	for _, token := range msg.Tokens {
		if IsExpoToken(token) {
			tokens = append(tokens, token)
		}
	}

	if len(tokens) == 0 {
		return nil
	}

	var lastErr error

	for start := 0; start < len(tokens); start += expoBatchSize {
		end := start + expoBatchSize
		if end > len(tokens) {
			end = len(tokens)
		}

		if err := n.sendBatch(ctx, tokens[start:end], msg); err != nil {
			n.log.Error("push batch failed",
				zap.Int("batch_start", start),
				zap.Int("batch_size", end-start),
				zap.Error(err),
			)

			lastErr = err
		}
	}

	return lastErr
}

func (n *ExpoNotifier) sendBatch(ctx context.Context, tokens []string, msg PushMessage) error {
	payload := expoPushRequest{
		To:    tokens,
		Title: msg.Title,
		Body:  msg.Body,
		Sound: "default",
		Data:  msg.Data,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePushDispatchFailed, "failed to marshal push payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePushDispatchFailed, "failed to build push request")
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodePushDispatchFailed, "failed to send push batch")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))

		return errors.Newf(errors.ErrCodePushDispatchFailed,
			"expo push service returned %d: %s", resp.StatusCode, string(respBody))
	}

	n.log.Debug("push batch sent", zap.Int("tokens", len(tokens)))

	return nil
}

// LogNotifier logs messages instead of delivering them. Used when push
// delivery is disabled in configuration.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier creates a LogNotifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, msg PushMessage) error {
	n.log.Info("push delivery disabled, dropping message",
		zap.String("title", msg.Title),
		zap.Int("tokens", len(msg.Tokens)),
	)

	return nil
}
