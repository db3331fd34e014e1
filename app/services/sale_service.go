package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	stripe "github.com/stripe/stripe-go/v79"
	"gorm.io/gorm"
)

// ErrUnresolvedItem means the event could not be attributed to any stored
// item. The delivery is acknowledged anyway; the error is only recorded.
var ErrUnresolvedItem = errors.New("no item matches this checkout session")

// ItemStore is the slice of the item repository the sale flow needs.
type ItemStore interface {
	GetByID(ctx context.Context, id uint) (*models.Item, error)
	FindByPriceID(ctx context.Context, priceID string) (*models.Item, error)
	MarkSold(ctx context.Context, id uint) (bool, error)
}

type Notifier interface {
	NotifySale(item *models.Item, buyer BuyerDetails) error
}

type BuyerDetails struct {
	Name  string
	Email string
	Phone string
}

// SaleService finalizes sales from verified checkout.session.completed
// events: resolve the session to an item, transition it to SOLD exactly
// once, then best-effort deactivate the payment link and notify.
type SaleService struct {
	items    ItemStore
	provider PaymentProvider
	notifier Notifier
}

func NewSaleService(items ItemStore, provider PaymentProvider, notifier Notifier) *SaleService {
	return &SaleService{
		items:    items,
		provider: provider,
		notifier: notifier,
	}
}

// HandleCheckoutCompleted processes one completed checkout. A returned error
// is an anomaly for the audit log, never a reason to fail the HTTP
// acknowledgment: by the time this runs the event is authenticated, and the
// provider's own redelivery is the only retry policy we rely on.
func (s *SaleService) HandleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	item, err := s.resolveItem(ctx, session)
	if err != nil {
		return err
	}
	if item == nil {
		// No line items or no price information. Nothing to do.
		log.Printf("SaleService: session %s carries no price information, ignoring", session.ID)
		return nil
	}

	transitioned, err := s.items.MarkSold(ctx, item.ID)
	if err != nil {
		return fmt.Errorf("mark item %d sold: %w", item.ID, err)
	}
	if !transitioned {
		// Already SOLD: a duplicate delivery. Expected and harmless.
		log.Printf("SaleService: item %d already sold, duplicate delivery for session %s", item.ID, session.ID)
		return nil
	}

	log.Printf("SaleService: item %d (%s) marked SOLD via session %s", item.ID, item.Slug, session.ID)

	// Everything past the transition is best effort and must never undo it.
	if item.StripePaymentLinkID != "" {
		if err := s.provider.DeactivatePaymentLink(ctx, item.StripePaymentLinkID); err != nil {
			log.Printf("SaleService: failed to deactivate payment link for item %d: %v", item.ID, err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.NotifySale(item, buyerFromSession(session)); err != nil {
			log.Printf("SaleService: failed to send sale notifications for item %d: %v", item.ID, err)
		}
	}

	return nil
}

// resolveItem attributes a checkout session to a stored item.
//
// Strategy 1: the item id smuggled through payment link metadata.
// Strategy 2: the first line item's price id, looked up against the items'
// stored price ids. A (nil, nil) return means the session carries no price
// information and cannot be attributed at all.
func (s *SaleService) resolveItem(ctx context.Context, session *stripe.CheckoutSession) (*models.Item, error) {
	if raw, ok := session.Metadata["item_id"]; ok && raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			log.Printf("SaleService: malformed item_id %q in session %s metadata, trying price lookup", raw, session.ID)
		} else {
			item, err := s.items.GetByID(ctx, uint(id))
			if err == nil {
				return item, nil
			}
			log.Printf("SaleService: item %d from session %s metadata not found, trying price lookup: %v", id, session.ID, err)
		}
	}

	priceID, err := s.provider.FirstLineItemPrice(ctx, session.ID)
	if err != nil {
		if errors.Is(err, ErrNoLinePrice) {
			return nil, nil
		}
		return nil, fmt.Errorf("line item lookup for session %s: %w", session.ID, err)
	}

	item, err := s.items.FindByPriceID(ctx, priceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: price %s, session %s", ErrUnresolvedItem, priceID, session.ID)
		}
		return nil, fmt.Errorf("price lookup %s for session %s: %w", priceID, session.ID, err)
	}
	return item, nil
}

// buyerFromSession pulls the buyer's contact details out of the session.
// Every field may be absent. The payment link's buyer_name custom field wins
// over the name Stripe collected, as it is what the buyer typed in full.
func buyerFromSession(session *stripe.CheckoutSession) BuyerDetails {
	var buyer BuyerDetails
	if session.CustomerDetails != nil {
		buyer.Name = session.CustomerDetails.Name
		buyer.Email = session.CustomerDetails.Email
		buyer.Phone = session.CustomerDetails.Phone
	}
	for _, field := range session.CustomFields {
		if field.Key == "buyer_name" && field.Text != nil && field.Text.Value != "" {
			buyer.Name = field.Text.Value
		}
	}
	return buyer
}
