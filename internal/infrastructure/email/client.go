// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"html"
	"os"
	"strings"

	"github.com/resendlabs/resend-go"

	"github.com/owlcart/owlcart-go/internal/domain/entities/cart"
	"github.com/owlcart/owlcart-go/internal/domain/entities/pricing"
	"github.com/owlcart/owlcart-go/pkg/config"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendOrderReceipt(toEmail, orderID string, items []*cart.Item, breakdown pricing.Breakdown) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: config.ReceiptEmailFrom,
		fromName:  config.ReceiptEmailFromName,
	}, nil
}

// SendOrderReceipt composes and sends the order receipt email.
func (c *ResendClient) SendOrderReceipt(toEmail, orderID string, items []*cart.Item, breakdown pricing.Breakdown) error {
	subject := fmt.Sprintf("Your OwlCart order %s", orderID)

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: subject,
		Html:    receiptHTML(orderID, items, breakdown),
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send order receipt via Resend: %w", err)
	}

	return nil
}

func receiptHTML(orderID string, items []*cart.Item, breakdown pricing.Breakdown) string {
	var sb strings.Builder
	sb.WriteString(`<div style="font-family: sans-serif; max-width: 520px; margin: 0 auto;">`)
	sb.WriteString(fmt.Sprintf(`<h2>Order %s confirmed</h2>`, orderID))
	sb.WriteString(`<table style="width: 100%; border-collapse: collapse;">`)
	for _, item := range items {
		sb.WriteString(fmt.Sprintf(
			`<tr><td style="padding: 4px 0;">%s &times; %d</td><td style="text-align: right;">%.2f</td></tr>`,
			html.EscapeString(item.Name), item.Quantity, item.Price*float64(item.Quantity)))
	}
	sb.WriteString(fmt.Sprintf(`<tr><td style="padding-top: 8px;">Subtotal</td><td style="text-align: right;">%.2f</td></tr>`, breakdown.Subtotal))
	if breakdown.AppliedDiscount > 0 {
		sb.WriteString(fmt.Sprintf(`<tr><td>Discount</td><td style="text-align: right;">-%.2f</td></tr>`, breakdown.AppliedDiscount))
	}
	sb.WriteString(fmt.Sprintf(`<tr><td>Delivery fee</td><td style="text-align: right;">%.2f</td></tr>`, breakdown.DeliveryFee))
	sb.WriteString(fmt.Sprintf(`<tr><td>Convenience fee</td><td style="text-align: right;">%.2f</td></tr>`, breakdown.ConvenienceFee))
	sb.WriteString(fmt.Sprintf(`<tr><td style="font-weight: bold; padding-top: 8px;">Total</td><td style="text-align: right; font-weight: bold;">%.2f</td></tr>`, breakdown.Total))
	sb.WriteString(`</table></div>`)
	return sb.String()
}
