package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"
)

const testWebhookSecret = "whsec_test_secret"

type fakeSaleProcessor struct {
	calls    int
	sessions []*stripe.CheckoutSession
	err      error
}

func (f *fakeSaleProcessor) HandleCheckoutCompleted(_ context.Context, session *stripe.CheckoutSession) error {
	f.calls++
	f.sessions = append(f.sessions, session)
	return f.err
}

type fakeEventRepo struct {
	recorded  []*models.WebhookEvent
	processed map[uint]string
	nextID    uint
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{processed: map[uint]string{}}
}

func (f *fakeEventRepo) Record(_ context.Context, event *models.WebhookEvent) error {
	for _, existing := range f.recorded {
		if existing.ProviderEventID == event.ProviderEventID {
			// Duplicate delivery: conflict drops the insert, ID stays zero.
			return nil
		}
	}
	f.nextID++
	event.ID = f.nextID
	f.recorded = append(f.recorded, event)
	return nil
}

func (f *fakeEventRepo) MarkProcessed(_ context.Context, id uint, processingError string) error {
	if id == 0 {
		return nil
	}
	f.processed[id] = processingError
	return nil
}

func (f *fakeEventRepo) Recent(context.Context, int) ([]models.WebhookEvent, error) {
	return nil, nil
}

func eventPayload(eventID, eventType, dataObject string) string {
	return fmt.Sprintf(`{"id":%q,"type":%q,"data":{"object":%s}}`, eventID, eventType, dataObject)
}

func signedRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	now := time.Now()
	signature := webhook.ComputeSignature(now, []byte(payload), testWebhookSecret)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%x", now.Unix(), signature))
	return req
}

func TestStripeWebhookUnconfiguredSecret(t *testing.T) {
	processor := &fakeSaleProcessor{}
	repo := newFakeEventRepo()
	h := NewWebhookHandler("", processor, repo)

	rec := httptest.NewRecorder()
	h.StripeWebhookPost(rec, signedRequest(t, eventPayload("evt_1", "checkout.session.completed", `{"id":"cs_1"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, processor.calls)
	assert.Empty(t, repo.recorded)
}

func TestStripeWebhookBadSignature(t *testing.T) {
	processor := &fakeSaleProcessor{}
	repo := newFakeEventRepo()
	h := NewWebhookHandler(testWebhookSecret, processor, repo)

	payload := eventPayload("evt_1", "checkout.session.completed", `{"id":"cs_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=deadbeef", time.Now().Unix()))

	rec := httptest.NewRecorder()
	h.StripeWebhookPost(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, processor.calls, "an unauthenticated delivery must not touch any state")
	assert.Empty(t, repo.recorded)
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	processor := &fakeSaleProcessor{}
	repo := newFakeEventRepo()
	h := NewWebhookHandler(testWebhookSecret, processor, repo)

	payload := eventPayload("evt_1", "checkout.session.completed", `{"id":"cs_1"}`)
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))

	rec := httptest.NewRecorder()
	h.StripeWebhookPost(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, processor.calls)
}

func TestStripeWebhookIgnoresOtherEventTypes(t *testing.T) {
	processor := &fakeSaleProcessor{}
	repo := newFakeEventRepo()
	h := NewWebhookHandler(testWebhookSecret, processor, repo)

	rec := httptest.NewRecorder()
	h.StripeWebhookPost(rec, signedRequest(t, eventPayload("evt_2", "payment_intent.succeeded", `{"id":"pi_1"}`)))

	assert.Equal(t, http.StatusOK, rec.Code, "authenticated events are always acknowledged")
	assert.Equal(t, 0, processor.calls)
	require.Len(t, repo.recorded, 1)
	assert.Equal(t, "payment_intent.succeeded", repo.recorded[0].EventType)
	assert.Equal(t, "", repo.processed[repo.recorded[0].ID])
}

func TestStripeWebhookProcessesCheckoutCompleted(t *testing.T) {
	processor := &fakeSaleProcessor{}
	repo := newFakeEventRepo()
	h := NewWebhookHandler(testWebhookSecret, processor, repo)

	payload := eventPayload("evt_3", "checkout.session.completed",
		`{"id":"cs_1","metadata":{"item_id":"7"}}`)

	rec := httptest.NewRecorder()
	h.StripeWebhookPost(rec, signedRequest(t, payload))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, processor.calls)
	assert.Equal(t, "cs_1", processor.sessions[0].ID)
	assert.Equal(t, "7", processor.sessions[0].Metadata["item_id"])

	require.Len(t, repo.recorded, 1)
	assert.True(t, repo.recorded[0].SignatureValid)
	assert.Equal(t, "", repo.processed[repo.recorded[0].ID])
}

func TestStripeWebhookMissingDataObject(t *testing.T) {
	processor := &fakeSaleProcessor{}
	repo := newFakeEventRepo()
	h := NewWebhookHandler(testWebhookSecret, processor, repo)

	// Correctly signed but carries no data object at all.
	payload := `{"id":"evt_nodata","type":"checkout.session.completed"}`

	rec := httptest.NewRecorder()
	h.StripeWebhookPost(rec, signedRequest(t, payload))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, processor.calls)
}

func TestStripeWebhookAnomalyStillAcknowledged(t *testing.T) {
	processor := &fakeSaleProcessor{err: errors.New("no item matches this checkout session")}
	repo := newFakeEventRepo()
	h := NewWebhookHandler(testWebhookSecret, processor, repo)

	rec := httptest.NewRecorder()
	h.StripeWebhookPost(rec, signedRequest(t, eventPayload("evt_4", "checkout.session.completed", `{"id":"cs_1"}`)))

	assert.Equal(t, http.StatusOK, rec.Code, "processing anomalies never fail the acknowledgment")
	require.Len(t, repo.recorded, 1)
	assert.Contains(t, repo.processed[repo.recorded[0].ID], "no item matches")
}

func TestStripeWebhookDuplicateDelivery(t *testing.T) {
	processor := &fakeSaleProcessor{}
	repo := newFakeEventRepo()
	h := NewWebhookHandler(testWebhookSecret, processor, repo)

	payload := eventPayload("evt_5", "checkout.session.completed", `{"id":"cs_1","metadata":{"item_id":"7"}}`)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.StripeWebhookPost(rec, signedRequest(t, payload))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	// Both deliveries reach the sale flow; the SOLD transition itself is
	// what makes redelivery harmless. The audit table keeps one row.
	assert.Equal(t, 2, processor.calls)
	assert.Len(t, repo.recorded, 1)
}
