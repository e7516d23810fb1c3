package notify

import (
	"context"
	"fmt"
	"time"

	"charter-booking/internal/models"
	"charter-booking/pkg/email"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Emailer sends transactional mail for quote lifecycle events. Recipient
// addresses are looked up from the users table since quotes only carry the
// user ID.
type Emailer struct {
	db            *pgxpool.Pool
	sender        email.ServiceInterface
	templates     *email.TemplateManager
	paymentWindow time.Duration
}

// NewEmailer creates an Emailer backed by the given sender and templates.
func NewEmailer(db *pgxpool.Pool, sender email.ServiceInterface, templates *email.TemplateManager, paymentWindow time.Duration) *Emailer {
	if paymentWindow <= 0 {
		paymentWindow = 24 * time.Hour
	}
	return &Emailer{db: db, sender: sender, templates: templates, paymentWindow: paymentWindow}
}

func (e *Emailer) lookupEmail(ctx context.Context, userID string) (string, error) {
	var address string
	err := e.db.QueryRow(ctx, "SELECT email FROM users WHERE id = $1", userID).Scan(&address)
	if err != nil {
		return "", fmt.Errorf("notify: look up email for user %s: %w", userID, err)
	}
	return address, nil
}

// SendQuoteIssued notifies the customer that their quote has been priced and
// is payable.
func (e *Emailer) SendQuoteIssued(ctx context.Context, userID string, quote *models.Quote) error {
	to, err := e.lookupEmail(ctx, userID)
	if err != nil {
		return err
	}

	data := email.QuoteIssuedData{QuoteID: quote.ID}
	if quote.Pricing != nil {
		data.Total = fmt.Sprintf("$%.2f", quote.Pricing.Total)
	}
	if quote.QuotedAt != nil {
		data.PayBy = quote.QuotedAt.Add(e.paymentWindow).Format("Jan 2, 2006 15:04 MST")
	}

	html, err := e.templates.GenerateQuoteIssuedEmailHTML(data)
	if err != nil {
		return err
	}
	plain := fmt.Sprintf("Your charter quote %s is ready. Total: %s. Please pay by %s to confirm.", data.QuoteID, data.Total, data.PayBy)
	return e.sender.SendEmail(ctx, to, "Your Charter Quote Is Ready", plain, html)
}

// SendPaymentReceipt confirms a completed payment and the resulting reservation.
func (e *Emailer) SendPaymentReceipt(ctx context.Context, userID string, res *models.Reservation) error {
	to, err := e.lookupEmail(ctx, userID)
	if err != nil {
		return err
	}

	data := email.PaymentReceiptData{
		ReservationID: res.ID,
		QuoteID:       res.QuoteID,
		Total:         fmt.Sprintf("$%.2f", res.OriginalPricing.Total),
		TripStart:     res.TripStartAt.Format("Jan 2, 2006 15:04"),
		PaymentRef:    res.PaymentRef,
	}
	html, err := e.templates.GeneratePaymentReceiptEmailHTML(data)
	if err != nil {
		return err
	}
	plain := fmt.Sprintf("Payment received. Reservation %s is confirmed for %s. Reference: %s.", data.ReservationID, data.TripStart, data.PaymentRef)
	return e.sender.SendEmail(ctx, to, "Payment Receipt - Reservation Confirmed", plain, html)
}

// SendQuoteExpired tells the customer their payment window lapsed.
func (e *Emailer) SendQuoteExpired(ctx context.Context, userID string, quote *models.Quote) error {
	to, err := e.lookupEmail(ctx, userID)
	if err != nil {
		return err
	}

	html, err := e.templates.GenerateQuoteExpiredEmailHTML(email.QuoteExpiredData{QuoteID: quote.ID})
	if err != nil {
		return err
	}
	plain := fmt.Sprintf("The payment window for quote %s has passed and the quote is no longer payable.", quote.ID)
	return e.sender.SendEmail(ctx, to, "Your Charter Quote Has Expired", plain, html)
}
