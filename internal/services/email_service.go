package services

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	sesv2 "github.com/aws/aws-sdk-go-v2/service/sesv2"
	sestypes "github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/pricing"
)

// EmailService sends the itemized landed-price quote to the customer after
// checkout, via AWS SES (SESv2 API).
type EmailService struct {
	sesClient *sesv2.Client
	fromEmail string
}

// NewEmailService creates an email service using the ambient AWS config
func NewEmailService(cfg aws.Config) *EmailService {
	region := cfg.Region
	if region == "" {
		region = os.Getenv("SES_AWS_REGION")
		if region == "" {
			region = os.Getenv("AWS_DEFAULT_REGION")
		}
		if region == "" {
			region = "eu-west-1"
		}
	}
	cfg.Region = region
	return &EmailService{
		sesClient: sesv2.NewFromConfig(cfg),
		fromEmail: os.Getenv("SES_FROM_EMAIL"),
	}
}

// Enabled reports whether a sender address is configured
func (e *EmailService) Enabled() bool { return e != nil && e.fromEmail != "" }

// SendOrderConfirmation emails the customer the order reference and the full
// price itemization. The quote must show every breakdown component, never
// only the total.
func (e *EmailService) SendOrderConfirmation(ctx context.Context, toEmail string, order *models.Order) error {
	subject := fmt.Sprintf("KoriDirect - Order %s confirmed", shortRef(order.ID))
	body := e.generateOrderEmailHTML(order)
	return e.sendEmail(ctx, toEmail, subject, body)
}

// sendEmail sends an email via AWS SESv2 using the instance role
func (e *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody string) error {
	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(e.fromEmail),
		Destination:      &sestypes.Destination{ToAddresses: []string{toEmail}},
		Content: &sestypes.EmailContent{
			Simple: &sestypes.Message{
				Subject: &sestypes.Content{Data: aws.String(subject)},
				Body:    &sestypes.Body{Html: &sestypes.Content{Data: aws.String(htmlBody)}},
			},
		},
	}
	if _, err := e.sesClient.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// shortRef shortens an order UUID for display in subjects
func shortRef(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return strings.ToUpper(id[:i])
	}
	return id
}

func fcfa(amount int64) string {
	s, err := pricing.Format(float64(amount), pricing.CurrencyXOF)
	if err != nil {
		return fmt.Sprintf("%d FCFA", amount)
	}
	return s
}

// generateOrderEmailHTML renders the order confirmation with the itemized
// landed-price breakdown.
func (e *EmailService) generateOrderEmailHTML(order *models.Order) string {
	var items strings.Builder
	for _, it := range order.Items {
		items.WriteString(fmt.Sprintf(
			`<tr><td>%s</td><td style="text-align:center">%d</td><td style="text-align:right">%s</td></tr>`,
			it.ProductName, it.Quantity, fcfa(it.LineTotal),
		))
	}

	return fmt.Sprintf(`
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <title>Order confirmed</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; color: #1a1a1a;">
    <h2>Thank you for your order</h2>
    <p>Order reference: <strong>%s</strong></p>
    <table width="100%%" cellpadding="6" style="border-collapse: collapse;">
        <tr style="border-bottom: 1px solid #ddd;"><th align="left">Item</th><th>Qty</th><th align="right">Line total</th></tr>
        %s
    </table>
    <h3>Price breakdown</h3>
    <table cellpadding="4">
        <tr><td>Supplier cost</td><td align="right">%s</td></tr>
        <tr><td>Transport</td><td align="right">%s</td></tr>
        <tr><td>Customs duty</td><td align="right">%s</td></tr>
        <tr><td>Service margin</td><td align="right">%s</td></tr>
        <tr style="font-weight: bold; border-top: 1px solid #ddd;"><td>Total</td><td align="right">%s</td></tr>
    </table>
    <p>Our commercial team will contact you to confirm payment and delivery.</p>
</body>
</html>`,
		shortRef(order.ID),
		items.String(),
		fcfa(order.SupplierCost),
		fcfa(order.TransportCost),
		fcfa(order.CustomsCost),
		fcfa(order.Margin),
		fcfa(order.Total),
	)
}
