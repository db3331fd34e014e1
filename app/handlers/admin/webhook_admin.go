package admin

import (
	"log"
	"net/http"

	"github.com/brynwhyman/sell-my-stuff/app/models"
)

type AdminWebhooksPageData struct {
	Title         string
	Events        []models.WebhookEvent
	Message       string
	MessageStatus string
}

// WebhooksPage shows the most recent provider deliveries and any recorded
// processing anomalies, for eyeballing data-consistency problems.
func (h *AdminHandler) WebhooksPage(w http.ResponseWriter, r *http.Request) {
	events, err := h.eventRepo.Recent(r.Context(), 100)
	if err != nil {
		log.Printf("Admin WebhooksPage: failed to fetch events: %v", err)
		http.Error(w, "Failed to fetch webhook events", http.StatusInternalServerError)
		return
	}

	_ = h.render.HTML(w, http.StatusOK, "admin/webhooks", AdminWebhooksPageData{
		Title:  "Webhook Events",
		Events: events,
	})
}
