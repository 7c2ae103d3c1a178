package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/qrserve/qrserve/internal/orders"
	"github.com/qrserve/qrserve/internal/payments"
)

// ReceiptData is everything a rendered receipt needs.
type ReceiptData struct {
	RestaurantName string
	Payment        *payments.Payment
	Order          *orders.Order
}

// ReceiptRenderer turns a recorded payment into a PDF receipt.
type ReceiptRenderer struct {
	client  *Client
	printer *message.Printer
}

// NewReceiptRenderer constructs a renderer backed by Gotenberg.
func NewReceiptRenderer(client *Client) *ReceiptRenderer {
	return &ReceiptRenderer{client: client, printer: message.NewPrinter(language.English)}
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
body { font-family: monospace; width: 320px; margin: 0 auto; }
h1 { font-size: 16px; text-align: center; }
table { width: 100%; border-collapse: collapse; }
td.amount { text-align: right; }
tr.total td { border-top: 1px solid #000; font-weight: bold; }
.meta { font-size: 11px; color: #444; }
</style>
</head>
<body>
<h1>{{.RestaurantName}}</h1>
<p class="meta">Table {{.TableLabel}}<br>Paid {{.PaidAt}} ({{.Method}})<br>Receipt #{{.PaymentID}}</p>
<table>
{{range .Lines}}<tr><td>{{.Quantity}}x {{.Name}}</td><td class="amount">{{.Amount}}</td></tr>
{{end}}<tr class="total"><td>Total</td><td class="amount">{{.Total}}</td></tr>
</table>
</body>
</html>`))

type receiptLine struct {
	Quantity int
	Name     string
	Amount   string
}

type receiptView struct {
	RestaurantName string
	TableLabel     string
	PaidAt         string
	Method         string
	PaymentID      int64
	Lines          []receiptLine
	Total          string
}

// Render produces the receipt PDF bytes.
func (r *ReceiptRenderer) Render(ctx context.Context, data ReceiptData) ([]byte, error) {
	if data.Payment == nil || data.Order == nil {
		return nil, fmt.Errorf("report: receipt data incomplete")
	}
	view := receiptView{
		RestaurantName: data.RestaurantName,
		TableLabel:     data.Order.TableLabel,
		PaidAt:         data.Payment.RecordedAt.Format(time.RFC1123),
		Method:         string(data.Payment.Method),
		PaymentID:      data.Payment.ID,
		Total:          r.formatCents(data.Payment.AmountCents),
	}
	for _, l := range data.Order.Lines {
		view.Lines = append(view.Lines, receiptLine{
			Quantity: l.Quantity,
			Name:     l.Name,
			Amount:   r.formatCents(l.LineTotal()),
		})
	}

	var buf bytes.Buffer
	if err := receiptTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("report: render receipt template: %w", err)
	}
	return r.client.RenderHTML(ctx, buf.String())
}

// formatCents renders integer cents with grouping, e.g. 1234567 -> "12,345.67".
func (r *ReceiptRenderer) formatCents(cents int64) string {
	return r.printer.Sprintf("%d.%02d", cents/100, cents%100)
}
