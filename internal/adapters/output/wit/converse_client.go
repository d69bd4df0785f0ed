package wit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"messenger-connect/configs"
	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure ConverseClientAdapter implements ConverseClient interface
var _ output.ConverseClient = (*ConverseClientAdapter)(nil)

// Retry configuration constants
const (
	maxRetryAttempts = 3
	initialDelay     = 500 * time.Millisecond
)

// ConverseClientAdapter struct - Output adapter for the Wit converse API.
// One Converse call maps to one step of a turn: the first call carries the
// user's text as the q parameter, follow-up calls carry only the context.
type ConverseClientAdapter struct {
	httpClient *http.Client
	baseURL    string
	token      string
	apiVersion string
}

// NewConverseClientAdapter func - Creates new converse client adapter
func NewConverseClientAdapter(config configs.Wit) (*ConverseClientAdapter, error) {
	if config.Token == "" {
		return nil, fmt.Errorf("missing wit token")
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = "https://api.wit.ai"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	apiVersion := config.APIVersion
	if apiVersion == "" {
		apiVersion = "20160516"
	}

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 10 * time.Second
	}

	adapter := &ConverseClientAdapter{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		token:      config.Token,
		apiVersion: apiVersion,
	}

	logrus.Infof("Converse client adapter initialized with base URL: %s, timeout: %v", baseURL, timeout)

	return adapter, nil
}

// Converse asks the decision service for the next directive of a turn
func (a *ConverseClientAdapter) Converse(ctx context.Context, sessionID, text string, sessionContext domain.SessionContext) (*domain.ActionDirective, error) {
	if sessionContext == nil {
		sessionContext = domain.SessionContext{}
	}
	bodyBytes, err := json.Marshal(sessionContext)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal context: %w", err)
	}

	endpoint := fmt.Sprintf("%s/converse?v=%s&session_id=%s", a.baseURL, a.apiVersion, url.QueryEscape(sessionID))
	if text != "" {
		endpoint += "&q=" + url.QueryEscape(text)
	}

	resp, err := a.retryWithBackoff(ctx, func() (*http.Response, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+a.token)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")
		return a.httpClient.Do(req)
	})
	if err != nil {
		return nil, fmt.Errorf("converse request failed: %w", err)
	}
	defer resp.Body.Close()

	var apiResp converseAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse converse response: %w", err)
	}

	directive := &domain.ActionDirective{
		Action:     apiResp.Action,
		Message:    apiResp.Msg,
		Entities:   apiResp.Entities,
		Confidence: apiResp.Confidence,
	}

	switch apiResp.Type {
	case "stop":
		directive.Type = domain.DirectiveTypeStop
	case "msg":
		directive.Type = domain.DirectiveTypeMessage
	case "action":
		directive.Type = domain.DirectiveTypeAction
	default:
		return nil, fmt.Errorf("unexpected converse response type %q", apiResp.Type)
	}

	return directive, nil
}

// retryWithBackoff retries transient failures a small number of times.
// 4xx responses are never retried; 5xx and network errors are.
func (a *ConverseClientAdapter) retryWithBackoff(ctx context.Context, operation func() (*http.Response, error)) (*http.Response, error) {
	var lastErr error
	delay := initialDelay

	for attempt := 1; attempt <= maxRetryAttempts; attempt++ {
		resp, err := operation()

		if err != nil {
			if !isTransientError(err) {
				return nil, err
			}
			lastErr = err
			logrus.Warnf("Converse attempt %d/%d failed: %v, retrying in %v", attempt, maxRetryAttempts, err, delay)
		} else {
			if resp.StatusCode < 500 {
				if resp.StatusCode >= 400 {
					body, _ := io.ReadAll(resp.Body)
					resp.Body.Close()
					return nil, fmt.Errorf("status %d - %s", resp.StatusCode, string(body))
				}
				return resp, nil
			}
			body, _ := io.ReadAll(resp.Body)
			resp.Body.Close()
			lastErr = fmt.Errorf("server error: status %d - %s", resp.StatusCode, string(body))
			logrus.Warnf("Converse attempt %d/%d failed with status %d, retrying in %v", attempt, maxRetryAttempts, resp.StatusCode, delay)
		}

		if attempt < maxRetryAttempts {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay *= 2
		}
	}

	return nil, fmt.Errorf("converse unavailable: %w", lastErr)
}

func isTransientError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused") ||
		strings.Contains(strings.ToLower(err.Error()), "connection reset") ||
		strings.Contains(err.Error(), "EOF")
}

// converseAPIResponse represents one step response from the converse endpoint
type converseAPIResponse struct {
	Type       string          `json:"type"`
	Msg        string          `json:"msg"`
	Action     string          `json:"action"`
	Entities   domain.Entities `json:"entities"`
	Confidence float64         `json:"confidence"`
}
