package services

import (
	"errors"
	"testing"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"
)

func mailerConfig() MailerConfig {
	return MailerConfig{
		Host:       "smtp.example.com",
		Port:       587,
		Username:   "seller",
		Password:   "secret",
		From:       "sales@example.com",
		AdminEmail: "admin@example.com",
	}
}

func soldItem() *models.Item {
	return &models.Item{
		ID:       3,
		Title:    "Bookshelf",
		Price:    decimal.NewFromInt(45),
		Currency: "NZD",
		Status:   models.ItemStatusSold,
	}
}

func TestNotifySaleUnconfiguredSkips(t *testing.T) {
	m := NewMailer(MailerConfig{})
	m.send = func(...*gomail.Message) error {
		t.Fatal("send should not be called without SMTP config")
		return nil
	}

	assert.NoError(t, m.NotifySale(soldItem(), BuyerDetails{Email: "jo@example.com"}))
}

func TestNotifySaleSendsBuyerAndAdmin(t *testing.T) {
	m := NewMailer(mailerConfig())

	var sent []*gomail.Message
	m.send = func(messages ...*gomail.Message) error {
		sent = append(sent, messages...)
		return nil
	}

	buyer := BuyerDetails{Name: "Jo Smith", Email: "jo@example.com", Phone: "+6421000000"}
	require.NoError(t, m.NotifySale(soldItem(), buyer))

	require.Len(t, sent, 2)
	assert.Equal(t, []string{"jo@example.com"}, sent[0].GetHeader("To"))
	assert.Equal(t, []string{"admin@example.com"}, sent[1].GetHeader("To"))
}

func TestNotifySaleNoBuyerEmail(t *testing.T) {
	m := NewMailer(mailerConfig())

	var sent []*gomail.Message
	m.send = func(messages ...*gomail.Message) error {
		sent = append(sent, messages...)
		return nil
	}

	require.NoError(t, m.NotifySale(soldItem(), BuyerDetails{Name: "Jo Smith"}))

	require.Len(t, sent, 1, "without a buyer address only the admin alert goes out")
	assert.Equal(t, []string{"admin@example.com"}, sent[0].GetHeader("To"))
}

func TestNotifySaleNoAdminEmail(t *testing.T) {
	cfg := mailerConfig()
	cfg.AdminEmail = ""
	m := NewMailer(cfg)

	var sent []*gomail.Message
	m.send = func(messages ...*gomail.Message) error {
		sent = append(sent, messages...)
		return nil
	}

	require.NoError(t, m.NotifySale(soldItem(), BuyerDetails{Email: "jo@example.com"}))

	require.Len(t, sent, 1)
	assert.Equal(t, []string{"jo@example.com"}, sent[0].GetHeader("To"))
}

func TestNotifySaleSendFailuresAreIndependent(t *testing.T) {
	m := NewMailer(mailerConfig())

	var attempts int
	m.send = func(...*gomail.Message) error {
		attempts++
		if attempts == 1 {
			return errors.New("mailbox full")
		}
		return nil
	}

	err := m.NotifySale(soldItem(), BuyerDetails{Email: "jo@example.com"})

	require.Error(t, err)
	assert.Equal(t, 2, attempts, "a failed buyer receipt never blocks the admin alert")
}

func TestAdminAlertBodyFillsMissingFields(t *testing.T) {
	body := adminAlertBody(soldItem(), BuyerDetails{Name: "Jo Smith"})

	assert.Contains(t, body, "Jo Smith")
	assert.Contains(t, body, "(not provided)")
	assert.Contains(t, body, "NZD 45.00")
}

func TestBuyerReceiptBody(t *testing.T) {
	t.Run("with name", func(t *testing.T) {
		body := buyerReceiptBody(soldItem(), BuyerDetails{Name: "Jo Smith"})
		assert.Contains(t, body, "Hi Jo Smith,")
		assert.Contains(t, body, "Bookshelf")
	})

	t.Run("without name", func(t *testing.T) {
		body := buyerReceiptBody(soldItem(), BuyerDetails{})
		assert.Contains(t, body, "Hi,\n")
	})
}
