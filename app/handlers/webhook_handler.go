package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/brynwhyman/sell-my-stuff/app/repositories"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const maxWebhookBodyBytes = 1 << 20

const checkoutCompletedEvent = "checkout.session.completed"

// SaleProcessor finalizes a completed checkout. Errors are anomalies to
// record, not reasons to reject the delivery.
type SaleProcessor interface {
	HandleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error
}

// WebhookHandler authenticates inbound Stripe events and routes completed
// checkouts to the sale flow.
//
// Response policy: once an event is authenticated it is acknowledged with
// 200 whether it was processed or deliberately ignored, so the provider does
// not endlessly retry events this system has decided to skip. Only
// authentication and format failures produce a client error, and those never
// touch any state.
type WebhookHandler struct {
	webhookSecret string
	saleSvc       SaleProcessor
	eventRepo     repositories.WebhookEventRepositoryImpl
}

func NewWebhookHandler(webhookSecret string, saleSvc SaleProcessor, eventRepo repositories.WebhookEventRepositoryImpl) *WebhookHandler {
	return &WebhookHandler{
		webhookSecret: webhookSecret,
		saleSvc:       saleSvc,
		eventRepo:     eventRepo,
	}
}

func (h *WebhookHandler) StripeWebhookPost(w http.ResponseWriter, r *http.Request) {
	if h.webhookSecret == "" {
		log.Println("WebhookHandler: webhook secret not configured, rejecting delivery")
		http.Error(w, "Webhook secret not configured", http.StatusBadRequest)
		return
	}

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
	if err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	event, err := webhook.ConstructEventWithOptions(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.Printf("WebhookHandler: signature verification failed: %v", err)
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	record := &models.WebhookEvent{
		ProviderEventID: event.ID,
		EventType:       string(event.Type),
		SignatureValid:  true,
	}
	if err := h.eventRepo.Record(r.Context(), record); err != nil {
		log.Printf("WebhookHandler: failed to record event %s: %v", event.ID, err)
	}

	if event.Type != checkoutCompletedEvent {
		// Deliberate policy: everything else is acknowledged and ignored.
		h.markProcessed(r.Context(), record.ID, "")
		w.WriteHeader(http.StatusOK)
		return
	}

	if event.Data == nil {
		log.Printf("WebhookHandler: event %s carries no data object", event.ID)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		log.Printf("WebhookHandler: malformed checkout session in event %s: %v", event.ID, err)
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	var anomaly string
	if err := h.saleSvc.HandleCheckoutCompleted(r.Context(), &session); err != nil {
		log.Printf("WebhookHandler: anomaly processing event %s: %v", event.ID, err)
		anomaly = err.Error()
	}
	h.markProcessed(r.Context(), record.ID, anomaly)

	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) markProcessed(ctx context.Context, id uint, anomaly string) {
	if err := h.eventRepo.MarkProcessed(ctx, id, anomaly); err != nil {
		log.Printf("WebhookHandler: failed to mark event %d processed: %v", id, err)
	}
}
