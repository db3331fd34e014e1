package services

import (
	"context"
	"strings"
	"testing"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmountMinorUnits(t *testing.T) {
	tests := []struct {
		price string
		want  int64
	}{
		{"0.01", 1},
		{"1", 100},
		{"12.50", 1250},
		{"120", 12000},
		{"19.999", 1999}, // sub-cent remainder truncates
		{"0.005", 0},
	}

	for _, tt := range tests {
		t.Run(tt.price, func(t *testing.T) {
			price, err := decimal.NewFromString(tt.price)
			require.NoError(t, err)
			assert.Equal(t, tt.want, amountMinorUnits(price))
		})
	}
}

func TestProductName(t *testing.T) {
	item := &models.Item{ID: 42, Title: "Old Couch"}
	assert.Equal(t, "#42 - Old Couch", productName(item))
}

func TestProductDescription(t *testing.T) {
	t.Run("empty description gets a placeholder", func(t *testing.T) {
		item := &models.Item{ID: 42}
		assert.Equal(t, "Item #42", productDescription(item))
	})

	t.Run("short description passes through", func(t *testing.T) {
		item := &models.Item{ID: 42, Description: "Comfy, some wear."}
		assert.Equal(t, "Comfy, some wear.", productDescription(item))
	})

	t.Run("long description truncates to 500 runes", func(t *testing.T) {
		item := &models.Item{ID: 42, Description: strings.Repeat("ä", 600)}
		got := productDescription(item)
		assert.Equal(t, 500, len([]rune(got)))
		assert.Equal(t, strings.Repeat("ä", 500), got)
	})
}

func TestStripeServiceUnconfigured(t *testing.T) {
	svc := NewStripeService("", "thanks")

	_, err := svc.CreatePaymentLinkForItem(context.Background(), &models.Item{ID: 1, Title: "Lamp"})
	assert.ErrorIs(t, err, ErrStripeNotConfigured)

	_, err = svc.FirstLineItemPrice(context.Background(), "cs_test_1")
	assert.ErrorIs(t, err, ErrStripeNotConfigured)

	// Deactivation is best effort; unconfigured means nothing to do.
	assert.NoError(t, svc.DeactivatePaymentLink(context.Background(), "plink_123"))
}
