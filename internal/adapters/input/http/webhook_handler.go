package http

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"messenger-connect/internal/domain"
	"messenger-connect/internal/ports/input"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// WebhookHandler struct - Primary/Driving adapter for the Messenger webhook
type WebhookHandler struct {
	service     input.WebhookService
	appSecret   string
	verifyToken string
}

// NewWebhookHandler func - Creates new Messenger webhook handler
func NewWebhookHandler(service input.WebhookService, appSecret, verifyToken string) *WebhookHandler {
	return &WebhookHandler{
		service:     service,
		appSecret:   appSecret,
		verifyToken: verifyToken,
	}
}

// Verify func - Handles the platform's GET verification handshake.
// The challenge is echoed only when the supplied verify token matches.
func (h *WebhookHandler) Verify(c *fiber.Ctx) error {
	if c.Query("hub.mode") == "subscribe" &&
		h.verifyToken != "" &&
		c.Query("hub.verify_token") == h.verifyToken {
		return c.Status(fiber.StatusOK).SendString(c.Query("hub.challenge"))
	}
	return c.SendStatus(fiber.StatusBadRequest)
}

// HandleWebhook func - Handles incoming POST webhook deliveries.
// The raw body signature is verified before parsing; missing and mismatched
// signatures are both rejected with 401. Events are dispatched asynchronously
// and the response does not wait for turn completion.
func (h *WebhookHandler) HandleWebhook(c *fiber.Ctx) error {
	body := c.Body()

	if err := h.verifySignature(c.Get("X-Hub-Signature"), body); err != nil {
		logrus.Warnf("Rejected webhook delivery: %v", err)
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request signature",
		})
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		logrus.Errorf("Failed to parse webhook payload: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Malformed payload",
		})
	}

	if payload.Object != "page" {
		// Not a page subscription; acknowledge and ignore.
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ignored"})
	}

	events := make([]domain.WebhookEvent, 0)
	for _, entry := range payload.Entry {
		for _, messaging := range entry.Messaging {
			if event := convertMessagingEvent(messaging); event != nil {
				events = append(events, *event)
			}
		}
	}

	if err := h.service.HandleWebhook(domain.WebhookRequest{Events: events}); err != nil {
		logrus.Errorf("Failed to dispatch webhook events: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status":  "error",
			"message": "Failed to process webhook",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "success"})
}

// verifySignature checks the X-Hub-Signature header: "sha1=" followed by the
// hex HMAC-SHA1 of the raw body keyed with the app secret.
func (h *WebhookHandler) verifySignature(header string, body []byte) error {
	if header == "" {
		return domain.ErrSignatureMissing
	}

	method, signature, found := strings.Cut(header, "=")
	if !found || method != "sha1" {
		return domain.ErrSignatureMismatch
	}

	mac := hmac.New(sha1.New, []byte(h.appSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.ErrSignatureMismatch
	}
	return nil
}

// convertMessagingEvent - Converts a wire messaging event to a domain event
func convertMessagingEvent(messaging messagingEvent) *domain.WebhookEvent {
	event := &domain.WebhookEvent{
		SenderID:    messaging.Sender.ID,
		RecipientID: messaging.Recipient.ID,
		Timestamp:   time.UnixMilli(messaging.Timestamp),
	}

	switch {
	case messaging.Message != nil:
		event.Type = domain.MessengerEventTypeMessage
		event.MessageID = messaging.Message.MID
		event.Text = messaging.Message.Text
		event.IsEcho = messaging.Message.IsEcho
		event.HasAttachments = len(messaging.Message.Attachments) > 0

	case messaging.Postback != nil:
		event.Type = domain.MessengerEventTypePostback
		event.Text = messaging.Postback.Payload

	case messaging.Delivery != nil:
		event.Type = domain.MessengerEventTypeDelivery

	case messaging.Read != nil:
		event.Type = domain.MessengerEventTypeRead

	default:
		logrus.Infof("Received unsupported messaging event from %s", messaging.Sender.ID)
		return nil
	}

	return event
}

// Wire structures for the Messenger webhook envelope

type webhookPayload struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID        string           `json:"id"`
	Time      int64            `json:"time"`
	Messaging []messagingEvent `json:"messaging"`
}

type messagingEvent struct {
	Sender    participant      `json:"sender"`
	Recipient participant      `json:"recipient"`
	Timestamp int64            `json:"timestamp"`
	Message   *messageContent  `json:"message,omitempty"`
	Postback  *postbackContent `json:"postback,omitempty"`
	Delivery  *json.RawMessage `json:"delivery,omitempty"`
	Read      *json.RawMessage `json:"read,omitempty"`
}

type participant struct {
	ID string `json:"id"`
}

type messageContent struct {
	MID         string            `json:"mid"`
	Text        string            `json:"text"`
	IsEcho      bool              `json:"is_echo"`
	Attachments []json.RawMessage `json:"attachments"`
}

type postbackContent struct {
	Payload string `json:"payload"`
}
