package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"talk-to-me/internal/domain"
)

// ErrRequestFailed indica que el servidor respondió con un status no 2xx.
var ErrRequestFailed = errors.New("chat request failed")

// Replier define cómo se obtiene la respuesta del asistente para un turno.
type Replier interface {
	Reply(ctx context.Context, message string, history []domain.HistoryEntry) (string, error)
}

// HTTPClient implementa Replier contra POST /api/chat.
type HTTPClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPClient construye un cliente apuntando al servidor de chat.
func NewHTTPClient(baseURL string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Reply envía el mensaje y el historial previo y devuelve la respuesta del servidor.
func (c *HTTPClient) Reply(ctx context.Context, message string, history []domain.HistoryEntry) (string, error) {
	reqBody := domain.ChatRequest{
		Message: &message,
		History: history,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("chat error status",
			zap.Int("status", resp.StatusCode),
			zap.Int("body_bytes", len(respBody)),
		)
		return "", fmt.Errorf("%w: status=%d", ErrRequestFailed, resp.StatusCode)
	}

	var cr domain.ChatReply
	if err := json.Unmarshal(respBody, &cr); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	return cr.Reply, nil
}
