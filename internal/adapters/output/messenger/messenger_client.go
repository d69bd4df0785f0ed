package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"messenger-connect/configs"
	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time check to ensure MessengerClientAdapter implements MessengerClient interface
var _ output.MessengerClient = (*MessengerClientAdapter)(nil)

// MessengerClientAdapter struct - Output adapter for the Messenger Send API
type MessengerClientAdapter struct {
	httpClient *http.Client
	baseURL    string
	pageToken  string
}

// NewMessengerClientAdapter func - Creates new Messenger Send API client adapter
func NewMessengerClientAdapter(config configs.Messenger) (*MessengerClientAdapter, error) {
	if config.PageToken == "" {
		return nil, fmt.Errorf("missing messenger page token")
	}

	baseURL := config.GraphBaseURL
	if baseURL == "" {
		baseURL = "https://graph.facebook.com"
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	timeout := time.Duration(config.Timeout) * time.Second
	if config.Timeout <= 0 {
		timeout = 10 * time.Second
	}

	adapter := &MessengerClientAdapter{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		pageToken:  config.PageToken,
	}

	logrus.Infof("Messenger client adapter initialized with base URL: %s, timeout: %v", baseURL, timeout)

	return adapter, nil
}

// SendText delivers a plain text message to a user by PSID
func (a *MessengerClientAdapter) SendText(ctx context.Context, recipientID, text string) error {
	body := sendAPIRequest{
		Recipient: recipient{ID: recipientID},
		Message:   outgoingMessage{Text: text},
	}
	return a.send(ctx, recipientID, body)
}

// SendMerchantCard delivers a generic-template card to a user by PSID
func (a *MessengerClientAdapter) SendMerchantCard(ctx context.Context, recipientID string, card domain.MerchantCard) error {
	body := sendAPIRequest{
		Recipient: recipient{ID: recipientID},
		Message: outgoingMessage{
			Attachment: &attachment{
				Type: "template",
				Payload: templatePayload{
					TemplateType: "generic",
					Elements: []templateElement{
						{
							Title:    card.Title,
							Subtitle: card.Subtitle,
							ImageURL: card.ImageURL,
							DefaultAction: &defaultAction{
								Type: "web_url",
								URL:  card.LinkURL,
							},
						},
					},
				},
			},
		},
	}
	return a.send(ctx, recipientID, body)
}

// send posts one Send API request. A non-2xx status or an error payload in a
// 2xx response both surface as *domain.DeliveryError.
func (a *MessengerClientAdapter) send(ctx context.Context, recipientID string, body sendAPIRequest) error {
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal send request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/me/messages?access_token=%s", a.baseURL, url.QueryEscape(a.pageToken))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return fmt.Errorf("failed to create send request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(req)
	if err != nil {
		return &domain.DeliveryError{Recipient: recipientID, Reason: "request failed", Err: err}
	}
	defer resp.Body.Close()

	var apiResp sendAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		if resp.StatusCode >= 400 {
			return &domain.DeliveryError{Recipient: recipientID, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
		}
		return fmt.Errorf("failed to parse send response: %w", err)
	}

	if apiResp.Error != nil {
		return &domain.DeliveryError{
			Recipient: recipientID,
			Reason:    fmt.Sprintf("%s (code %d)", apiResp.Error.Message, apiResp.Error.Code),
		}
	}
	if resp.StatusCode >= 400 {
		return &domain.DeliveryError{Recipient: recipientID, Reason: fmt.Sprintf("status %d", resp.StatusCode)}
	}

	logrus.Infof("Delivered message %s to %s", apiResp.MessageID, recipientID)
	return nil
}

// Wire structures for the Send API

type sendAPIRequest struct {
	Recipient recipient       `json:"recipient"`
	Message   outgoingMessage `json:"message"`
}

type recipient struct {
	ID string `json:"id"`
}

type outgoingMessage struct {
	Text       string      `json:"text,omitempty"`
	Attachment *attachment `json:"attachment,omitempty"`
}

type attachment struct {
	Type    string          `json:"type"`
	Payload templatePayload `json:"payload"`
}

type templatePayload struct {
	TemplateType string            `json:"template_type"`
	Elements     []templateElement `json:"elements"`
}

type templateElement struct {
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle,omitempty"`
	ImageURL      string         `json:"image_url,omitempty"`
	DefaultAction *defaultAction `json:"default_action,omitempty"`
}

type defaultAction struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

type sendAPIResponse struct {
	RecipientID string `json:"recipient_id"`
	MessageID   string `json:"message_id"`
	Error       *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}
