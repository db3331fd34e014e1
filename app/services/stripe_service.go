package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

var (
	ErrStripeNotConfigured = errors.New("stripe secret key not configured")

	// ErrNoLinePrice means the checkout session carried no line item price,
	// so the sale cannot be attributed to an item.
	ErrNoLinePrice = errors.New("checkout session has no line item price")
)

type PaymentLinkDetails struct {
	PaymentLinkID  string
	PaymentLinkURL string
	ProductID      string
	PriceID        string
}

// PaymentProvider is the slice of the payment provider's API this app uses.
// StripeService is the real implementation; tests substitute fakes.
type PaymentProvider interface {
	CreatePaymentLinkForItem(ctx context.Context, item *models.Item) (*PaymentLinkDetails, error)
	DeactivatePaymentLink(ctx context.Context, paymentLinkID string) error
	FirstLineItemPrice(ctx context.Context, sessionID string) (string, error)
}

type StripeService struct {
	api                 *client.API
	confirmationMessage string
}

func NewStripeService(secretKey, confirmationMessage string) *StripeService {
	s := &StripeService{confirmationMessage: confirmationMessage}
	if secretKey != "" {
		api := &client.API{}
		api.Init(secretKey, nil)
		s.api = api
	}
	return s
}

// CreatePaymentLinkForItem creates a Product, a one-time Price and a Payment
// Link for the item. The link collects buyer contact details for pickup
// coordination and carries the item id in metadata so the webhook can resolve
// the sale without a line-item lookup. The link is later deactivated by the
// webhook after the first successful payment.
func (s *StripeService) CreatePaymentLinkForItem(ctx context.Context, item *models.Item) (*PaymentLinkDetails, error) {
	if s.api == nil {
		return nil, ErrStripeNotConfigured
	}

	itemID := strconv.FormatUint(uint64(item.ID), 10)

	productParams := &stripe.ProductParams{
		Name:        stripe.String(productName(item)),
		Description: stripe.String(productDescription(item)),
	}
	productParams.Context = ctx
	productParams.AddMetadata("item_id", itemID)
	productParams.AddMetadata("item_title", item.Title)

	product, err := s.api.Products.New(productParams)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	priceParams := &stripe.PriceParams{
		Product:    stripe.String(product.ID),
		UnitAmount: stripe.Int64(amountMinorUnits(item.Price)),
		Currency:   stripe.String(strings.ToLower(item.Currency)),
	}
	priceParams.Context = ctx

	price, err := s.api.Prices.New(priceParams)
	if err != nil {
		return nil, fmt.Errorf("create price: %w", err)
	}

	linkParams := &stripe.PaymentLinkParams{
		LineItems: []*stripe.PaymentLinkLineItemParams{
			{
				Price:    stripe.String(price.ID),
				Quantity: stripe.Int64(1),
			},
		},
		PhoneNumberCollection: &stripe.PaymentLinkPhoneNumberCollectionParams{
			Enabled: stripe.Bool(true),
		},
		CustomFields: []*stripe.PaymentLinkCustomFieldParams{
			{
				Key: stripe.String("buyer_name"),
				Label: &stripe.PaymentLinkCustomFieldLabelParams{
					Type:   stripe.String("custom"),
					Custom: stripe.String("Full Name"),
				},
				Type: stripe.String("text"),
			},
		},
		InvoiceCreation: &stripe.PaymentLinkInvoiceCreationParams{
			Enabled: stripe.Bool(true),
			InvoiceData: &stripe.PaymentLinkInvoiceCreationInvoiceDataParams{
				Description: stripe.String(productName(item)),
				Metadata:    map[string]string{"item_id": itemID},
			},
		},
		AfterCompletion: &stripe.PaymentLinkAfterCompletionParams{
			Type: stripe.String("hosted_confirmation"),
			HostedConfirmation: &stripe.PaymentLinkAfterCompletionHostedConfirmationParams{
				CustomMessage: stripe.String(s.confirmationMessage),
			},
		},
	}
	linkParams.Context = ctx
	linkParams.AddMetadata("item_id", itemID)
	linkParams.AddMetadata("item_title", item.Title)

	link, err := s.api.PaymentLinks.New(linkParams)
	if err != nil {
		return nil, fmt.Errorf("create payment link: %w", err)
	}

	return &PaymentLinkDetails{
		PaymentLinkID:  link.ID,
		PaymentLinkURL: link.URL,
		ProductID:      product.ID,
		PriceID:        price.ID,
	}, nil
}

// DeactivatePaymentLink sets the link inactive so no further payments can be
// made against it. Callers treat failures as non-fatal; the local SOLD status
// is the source of truth, not the provider's link state.
func (s *StripeService) DeactivatePaymentLink(ctx context.Context, paymentLinkID string) error {
	if s.api == nil {
		return nil
	}
	params := &stripe.PaymentLinkParams{
		Active: stripe.Bool(false),
	}
	params.Context = ctx
	_, err := s.api.PaymentLinks.Update(paymentLinkID, params)
	if err != nil {
		return fmt.Errorf("deactivate payment link %s: %w", paymentLinkID, err)
	}
	return nil
}

// FirstLineItemPrice fetches the checkout session's line items and returns
// the price id of the first one. Single-item sales have exactly one.
func (s *StripeService) FirstLineItemPrice(ctx context.Context, sessionID string) (string, error) {
	if s.api == nil {
		return "", ErrStripeNotConfigured
	}

	params := &stripe.CheckoutSessionListLineItemsParams{
		Session: stripe.String(sessionID),
	}
	params.Context = ctx
	params.Limit = stripe.Int64(1)

	iter := s.api.CheckoutSessions.ListLineItems(params)
	for iter.Next() {
		lineItem := iter.LineItem()
		if lineItem.Price == nil || lineItem.Price.ID == "" {
			return "", ErrNoLinePrice
		}
		return lineItem.Price.ID, nil
	}
	if err := iter.Err(); err != nil {
		return "", fmt.Errorf("list line items for session %s: %w", sessionID, err)
	}
	return "", ErrNoLinePrice
}

func productName(item *models.Item) string {
	return fmt.Sprintf("#%d - %s", item.ID, item.Title)
}

func productDescription(item *models.Item) string {
	if item.Description == "" {
		return fmt.Sprintf("Item #%d", item.ID)
	}
	runes := []rune(item.Description)
	if len(runes) > 500 {
		return string(runes[:500])
	}
	return item.Description
}

// amountMinorUnits converts a decimal amount to integer minor currency
// units, truncating any sub-cent remainder.
func amountMinorUnits(price decimal.Decimal) int64 {
	return price.Mul(decimal.NewFromInt(100)).IntPart()
}
