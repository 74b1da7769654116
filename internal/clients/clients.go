package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// NoFollowUp подставляется вместо ответа недоступного ассистента
const NoFollowUp = "Could not generate follow-up"

// CollaboratorError описывает сбой внешнего сервиса (транскрипция, LLM, similarity, эмоции)
type CollaboratorError struct {
	Collaborator string
	Err          error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s unavailable: %v", e.Collaborator, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}

func fail(collaborator string, err error) error {
	return &CollaboratorError{Collaborator: collaborator, Err: err}
}

// HTTP общий HTTP клиент для локальных сервисов инференса
type HTTP struct{ c *http.Client }

// NewHTTP создает клиент с таймаутом; 0 означает таймаут по умолчанию
func NewHTTP(timeout time.Duration) *HTTP {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &HTTP{c: &http.Client{Timeout: timeout}}
}

// postJSON отправляет JSON и декодирует JSON ответ в out
func (h *HTTP) postJSON(ctx context.Context, url string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return h.do(req, out)
}

func (h *HTTP) do(req *http.Request, out any) error {
	resp, err := h.c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}

func endpoint(base, path string) string {
	return strings.TrimRight(base, "/") + path
}
