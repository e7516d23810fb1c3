package email

import (
	"bytes"
	"html/template"
	"log"
)

// TemplateManager holds the parsed email templates.
type TemplateManager struct {
	QuoteIssuedTmpl    *template.Template
	PaymentReceiptTmpl *template.Template
	QuoteExpiredTmpl   *template.Template
}

// NewTemplateManager parses all email templates at startup.
func NewTemplateManager() (*TemplateManager, error) {
	quoteIssuedTmpl, err := template.New("quoteIssued").Parse(quoteIssuedTemplate)
	if err != nil {
		return nil, err
	}

	paymentReceiptTmpl, err := template.New("paymentReceipt").Parse(paymentReceiptTemplate)
	if err != nil {
		return nil, err
	}

	quoteExpiredTmpl, err := template.New("quoteExpired").Parse(quoteExpiredTemplate)
	if err != nil {
		return nil, err
	}

	log.Println("Email templates parsed successfully.")
	return &TemplateManager{
		QuoteIssuedTmpl:    quoteIssuedTmpl,
		PaymentReceiptTmpl: paymentReceiptTmpl,
		QuoteExpiredTmpl:   quoteExpiredTmpl,
	}, nil
}

// QuoteIssuedData holds the dynamic data for the quote-issued email.
type QuoteIssuedData struct {
	QuoteID    string
	Total      string
	PayBy      string
	DriverName string
}

// PaymentReceiptData holds the dynamic data for the payment receipt email.
type PaymentReceiptData struct {
	ReservationID string
	QuoteID       string
	Total         string
	TripStart     string
	PaymentRef    string
}

// QuoteExpiredData holds the dynamic data for the quote-expired email.
type QuoteExpiredData struct {
	QuoteID string
}

// GenerateQuoteIssuedEmailHTML executes the quote-issued template with the provided data.
func (tm *TemplateManager) GenerateQuoteIssuedEmailHTML(data QuoteIssuedData) (string, error) {
	var body bytes.Buffer
	if err := tm.QuoteIssuedTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GeneratePaymentReceiptEmailHTML executes the payment receipt template.
func (tm *TemplateManager) GeneratePaymentReceiptEmailHTML(data PaymentReceiptData) (string, error) {
	var body bytes.Buffer
	if err := tm.PaymentReceiptTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// GenerateQuoteExpiredEmailHTML executes the quote-expired template.
func (tm *TemplateManager) GenerateQuoteExpiredEmailHTML(data QuoteExpiredData) (string, error) {
	var body bytes.Buffer
	if err := tm.QuoteExpiredTmpl.Execute(&body, data); err != nil {
		return "", err
	}
	return body.String(), nil
}

// --- HTML Template Definitions ---

const quoteIssuedTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Your Charter Quote Is Ready</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Your Quote Is Ready</h2>
	<p>Good news! Your charter trip request <strong>{{.QuoteID}}</strong> has been priced.</p>
	<p>Total: <strong>{{.Total}}</strong></p>
	{{if .DriverName}}<p>Your assigned driver will be {{.DriverName}}.</p>{{end}}
	<p>Please complete your payment by <strong>{{.PayBy}}</strong> to confirm your reservation.</p>
	<p>If payment is not received by then, the quote will expire and pricing and availability may change.</p>
</body>
</html>
`

const paymentReceiptTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Payment Receipt</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Thank You for Your Payment</h2>
	<p>Your reservation <strong>{{.ReservationID}}</strong> is confirmed.</p>
	<p>Quote: {{.QuoteID}}</p>
	<p>Amount paid: <strong>{{.Total}}</strong></p>
	<p>Trip departure: {{.TripStart}}</p>
	<p>Payment reference: {{.PaymentRef}}</p>
	<p>We look forward to serving you. Safe travels!</p>
</body>
</html>
`

const quoteExpiredTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Your Quote Has Expired</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h2>Quote Expired</h2>
	<p>The payment window for quote <strong>{{.QuoteID}}</strong> has passed, so the quote is no longer payable.</p>
	<p>Vehicle and driver availability has been released. You can submit a new request at any time and we will price it again.</p>
</body>
</html>
`
