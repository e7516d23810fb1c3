package pdf

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"time"

	"charter-booking/internal/models"
)

// Renderer produces the quote document delivered to customers. The document
// body is rendered from an HTML template; when a converter endpoint is
// configured the HTML is posted there and the PDF bytes come back, otherwise
// the raw HTML is returned so local setups work without a converter.
type Renderer struct {
	tmpl          *template.Template
	converterURL  string
	paymentWindow time.Duration
	httpClient    *http.Client
}

// NewRenderer parses the quote document template at startup.
func NewRenderer(converterURL string, paymentWindow time.Duration) (*Renderer, error) {
	tmpl, err := template.New("quoteDocument").Parse(quoteDocumentTemplate)
	if err != nil {
		return nil, err
	}
	if paymentWindow <= 0 {
		paymentWindow = 24 * time.Hour
	}
	return &Renderer{
		tmpl:          tmpl,
		converterURL:  converterURL,
		paymentWindow: paymentWindow,
		httpClient:    &http.Client{Timeout: 15 * time.Second},
	}, nil
}

type documentData struct {
	QuoteID     string
	TripType    string
	TripStart   string
	TripEnd     string
	Passengers  int
	DriverName  string
	QuotedAt    string
	Breakdown   *models.PriceBreakdown
	PayDeadline string
}

// RenderQuoteDocument builds the priced-quote document for a quote.
func (r *Renderer) RenderQuoteDocument(ctx context.Context, quote *models.Quote, driver *models.Driver) ([]byte, error) {
	if quote.Pricing == nil || quote.QuotedAt == nil {
		return nil, fmt.Errorf("pdf: quote %s has not been priced", quote.ID)
	}

	data := documentData{
		QuoteID:    quote.ID,
		TripType:   string(quote.TripType),
		Passengers: quote.PassengerCount,
		QuotedAt:   quote.QuotedAt.Format("Jan 2, 2006 15:04 MST"),
		Breakdown:  quote.Pricing,
	}
	if quote.TripStartAt != nil {
		data.TripStart = quote.TripStartAt.Format("Jan 2, 2006 15:04")
	}
	if quote.TripEndAt != nil {
		data.TripEnd = quote.TripEndAt.Format("Jan 2, 2006 15:04")
	}
	if driver != nil {
		data.DriverName = driver.FullName
	}
	data.PayDeadline = quote.QuotedAt.Add(r.paymentWindow).Format("Jan 2, 2006 15:04 MST")

	var body bytes.Buffer
	if err := r.tmpl.Execute(&body, data); err != nil {
		return nil, fmt.Errorf("pdf: render quote document: %w", err)
	}

	if r.converterURL == "" {
		return body.Bytes(), nil
	}
	return r.convert(ctx, body.Bytes())
}

// convert posts the rendered HTML to the converter service.
func (r *Renderer) convert(ctx context.Context, html []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.converterURL, bytes.NewReader(html))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/html")

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pdf: converter request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pdf: converter returned status %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

const quoteDocumentTemplate = `
<!DOCTYPE html>
<html>
<head>
	<title>Charter Quote {{.QuoteID}}</title>
</head>
<body style="font-family: Arial, sans-serif;">
	<h1>Charter Trip Quote</h1>
	<p>Quote reference: <strong>{{.QuoteID}}</strong></p>
	<p>Issued: {{.QuotedAt}}</p>
	<h2>Trip Details</h2>
	<table>
		<tr><td>Trip type</td><td>{{.TripType}}</td></tr>
		<tr><td>Departure</td><td>{{.TripStart}}</td></tr>
		<tr><td>Return / end</td><td>{{.TripEnd}}</td></tr>
		<tr><td>Passengers</td><td>{{.Passengers}}</td></tr>
		{{if .DriverName}}<tr><td>Driver</td><td>{{.DriverName}}</td></tr>{{end}}
	</table>
	<h2>Price Breakdown</h2>
	<table>
		<tr><td>Base fare</td><td>{{printf "%.2f" .Breakdown.BaseFare}}</td></tr>
		<tr><td>Distance fare</td><td>{{printf "%.2f" .Breakdown.DistanceFare}}</td></tr>
		<tr><td>Driver charge</td><td>{{printf "%.2f" .Breakdown.DriverCharge}}</td></tr>
		<tr><td>Fuel and maintenance</td><td>{{printf "%.2f" .Breakdown.FuelMaintenance}}</td></tr>
		<tr><td>Night charge</td><td>{{printf "%.2f" .Breakdown.NightCharge}}</td></tr>
		<tr><td>Amenities</td><td>{{printf "%.2f" .Breakdown.AmenitiesTotal}}</td></tr>
		<tr><td>Subtotal</td><td>{{printf "%.2f" .Breakdown.Subtotal}}</td></tr>
		<tr><td>Tax</td><td>{{printf "%.2f" .Breakdown.Tax}}</td></tr>
		<tr><td><strong>Total</strong></td><td><strong>{{printf "%.2f" .Breakdown.Total}}</strong></td></tr>
	</table>
	<p>This quote is payable until <strong>{{.PayDeadline}}</strong>. After that the price and availability are no longer guaranteed.</p>
</body>
</html>
`
