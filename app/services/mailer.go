package services

import (
	"fmt"
	"log"
	"strings"

	"github.com/brynwhyman/sell-my-stuff/app/models"
	"gopkg.in/gomail.v2"
)

type MailerConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	AdminEmail string
}

// Mailer sends the post-sale emails. Notification is a convenience, not a
// correctness requirement: with no transport configured it skips silently,
// and each send is independent of the others.
type Mailer struct {
	config MailerConfig
	send   func(messages ...*gomail.Message) error
}

func NewMailer(cfg MailerConfig) *Mailer {
	m := &Mailer{config: cfg}
	m.send = func(messages ...*gomail.Message) error {
		dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
		return dialer.DialAndSend(messages...)
	}
	return m
}

func (m *Mailer) NotifySale(item *models.Item, buyer BuyerDetails) error {
	if m.config.Host == "" || m.config.From == "" {
		log.Printf("Mailer: SMTP not configured, skipping sale notifications for item %d", item.ID)
		return nil
	}

	var errs []string
	for _, msg := range m.saleMessages(item, buyer) {
		if err := m.send(msg); err != nil {
			to := strings.Join(msg.GetHeader("To"), ",")
			log.Printf("Mailer: failed to send %q to %s: %v", msg.GetHeader("Subject"), to, err)
			errs = append(errs, err.Error())
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("sale notifications: %s", strings.Join(errs, "; "))
	}
	return nil
}

// saleMessages builds the buyer receipt (only when we have an address) and
// the admin sale alert (only when an admin address is configured).
func (m *Mailer) saleMessages(item *models.Item, buyer BuyerDetails) []*gomail.Message {
	var messages []*gomail.Message

	if buyer.Email != "" {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.config.From)
		msg.SetHeader("To", buyer.Email)
		msg.SetHeader("Subject", fmt.Sprintf("Your purchase: %s", item.Title))
		msg.SetBody("text/plain", buyerReceiptBody(item, buyer))
		messages = append(messages, msg)
	}

	if m.config.AdminEmail != "" {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.config.From)
		msg.SetHeader("To", m.config.AdminEmail)
		msg.SetHeader("Subject", fmt.Sprintf("Item sold: %s", item.Title))
		msg.SetBody("text/plain", adminAlertBody(item, buyer))
		messages = append(messages, msg)
	}

	return messages
}

func buyerReceiptBody(item *models.Item, buyer BuyerDetails) string {
	var b strings.Builder
	if buyer.Name != "" {
		fmt.Fprintf(&b, "Hi %s,\n\n", buyer.Name)
	} else {
		b.WriteString("Hi,\n\n")
	}
	fmt.Fprintf(&b, "Thanks for your purchase!\n\n")
	fmt.Fprintf(&b, "Item: %s\n", item.Title)
	fmt.Fprintf(&b, "Price: %s %s\n\n", item.Currency, item.Price.StringFixed(2))
	b.WriteString("We'll be in touch shortly to arrange pickup.\n")
	return b.String()
}

func adminAlertBody(item *models.Item, buyer BuyerDetails) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Item #%d just sold.\n\n", item.ID)
	fmt.Fprintf(&b, "Item: %s\n", item.Title)
	fmt.Fprintf(&b, "Price: %s %s\n\n", item.Currency, item.Price.StringFixed(2))
	b.WriteString("Buyer details:\n")
	fmt.Fprintf(&b, "  Name:  %s\n", orUnknown(buyer.Name))
	fmt.Fprintf(&b, "  Email: %s\n", orUnknown(buyer.Email))
	fmt.Fprintf(&b, "  Phone: %s\n", orUnknown(buyer.Phone))
	return b.String()
}

func orUnknown(s string) string {
	if s == "" {
		return "(not provided)"
	}
	return s
}
