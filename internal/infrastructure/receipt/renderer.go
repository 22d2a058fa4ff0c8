// Package receipt renders printable bill receipts as PDF.
package receipt

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"bakerypos/internal/core/types"
	"bakerypos/internal/domain/documents/bill"
	"bakerypos/internal/domain/shop"
)

var colorGray = &props.Color{Red: 100, Green: 100, Blue: 100}

// ProfileSource supplies the shop header. It is read on every render, so
// profile edits show up on the next receipt.
type ProfileSource interface {
	Profile(ctx context.Context) (*shop.Profile, error)
}

// Renderer implements bill.ReceiptRenderer with maroto.
type Renderer struct {
	profiles ProfileSource
	loc      *time.Location
	printer  *message.Printer
}

var _ bill.ReceiptRenderer = (*Renderer)(nil)

// NewRenderer creates a receipt renderer. Times print in loc.
func NewRenderer(profiles ProfileSource, loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	return &Renderer{
		profiles: profiles,
		loc:      loc,
		printer:  message.NewPrinter(language.English),
	}
}

// page is one render: the profile plus the number printer.
type page struct {
	*Renderer
	shop *shop.Profile
}

// Render builds the receipt PDF of b.
func (r *Renderer) Render(ctx context.Context, b *bill.Bill) ([]byte, error) {
	profile, err := r.profiles.Profile(ctx)
	if err != nil {
		return nil, fmt.Errorf("receipt: load shop profile: %w", err)
	}
	p := page{Renderer: r, shop: profile}

	cfg := config.NewBuilder().
		WithPageSize(pagesize.A5).
		WithLeftMargin(8).WithRightMargin(8).
		WithTopMargin(8).WithBottomMargin(8).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle("Receipt "+b.BillNumber, true).
		WithAuthor(profile.Name, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(p.headerRow())
	m.AddRows(p.billInfoRow(b))
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.3}))
	m.AddRows(itemHeaderRow())
	m.AddRows(p.itemRows(b)...)
	m.AddRows(line.NewRow(2, props.Line{Thickness: 0.3}))
	m.AddRows(p.totalRows(b)...)
	m.AddRows(p.footerRows(b)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("receipt: generate %s: %w", b.BillNumber, err)
	}
	return doc.GetBytes(), nil
}

// Money formats an amount with thousands separators and 2 decimals,
// prefixed with currency when it is set.
func (r *Renderer) Money(currency string, v types.Money) string {
	s := r.printer.Sprint(number.Decimal(v.InexactFloat64(), number.Scale(2)))
	if currency == "" {
		return s
	}
	return currency + " " + s
}

func (p page) money(v types.Money) string {
	return p.Money(p.shop.Currency, v)
}

func (p page) headerRow() core.Row {
	return row.New(20).Add(
		col.New(12).Add(
			text.New(p.shop.Name, props.Text{Style: fontstyle.Bold, Size: 13, Align: align.Center, Top: 1}),
			text.New(p.shop.Address, props.Text{Size: 8, Align: align.Center, Top: 9, Color: colorGray}),
			text.New(p.shop.Phone, props.Text{Size: 8, Align: align.Center, Top: 14, Color: colorGray}),
		),
	)
}

func (p page) billInfoRow(b *bill.Bill) core.Row {
	status := "PAID"
	if b.Status == bill.StatusCancelled {
		status = "CANCELLED"
	}
	return row.New(12).Add(
		col.New(6).Add(
			text.New("Bill "+b.BillNumber, props.Text{Style: fontstyle.Bold, Size: 9, Top: 1}),
			text.New(b.CreatedAt.In(p.loc).Format("2006-01-02 15:04"), props.Text{Size: 8, Top: 6, Color: colorGray}),
		),
		col.New(6).Add(
			text.New(status, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 1}),
			text.New(string(b.PaymentMethod), props.Text{Size: 8, Align: align.Right, Top: 6, Color: colorGray}),
		),
	)
}

func itemHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{Style: fontstyle.Bold, Size: 8, Align: a, Top: 1}))
	}
	return row.New(6).Add(
		h("Item", 6, align.Left),
		h("Qty", 2, align.Center),
		h("Price", 2, align.Right),
		h("Total", 2, align.Right),
	)
}

func (p page) itemRows(b *bill.Bill) []core.Row {
	rows := make([]core.Row, 0, len(b.Lines))
	for _, l := range b.Lines {
		rows = append(rows, row.New(6).Add(
			col.New(6).Add(text.New(l.ItemName, props.Text{Size: 8, Top: 1})),
			col.New(2).Add(text.New(l.Quantity.String(), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(p.money(l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
			col.New(2).Add(text.New(p.money(l.TotalPrice), props.Text{Size: 8, Align: align.Right, Top: 1})),
		))
	}
	return rows
}

func (p page) totalRows(b *bill.Bill) []core.Row {
	pair := func(label, value string, bold bool) core.Row {
		style := fontstyle.Normal
		size := 8.0
		if bold {
			style = fontstyle.Bold
			size = 10
		}
		return row.New(6).Add(
			col.New(6),
			col.New(3).Add(text.New(label, props.Text{Style: style, Size: size, Align: align.Right, Top: 1})),
			col.New(3).Add(text.New(value, props.Text{Style: style, Size: size, Align: align.Right, Top: 1})),
		)
	}

	rows := []core.Row{pair("Subtotal", p.money(b.Subtotal), false)}
	if b.DiscountAmount.IsPositive() {
		rows = append(rows, pair(fmt.Sprintf("Discount (%s%%)", b.DiscountPercent.String()), "-"+p.money(b.DiscountAmount), false))
	}
	if b.TaxAmount.IsPositive() {
		rows = append(rows, pair("Tax", p.money(b.TaxAmount), false))
	}
	rows = append(rows,
		pair("TOTAL", p.money(b.Total), true),
		pair("Paid", p.money(b.AmountPaid), false),
		pair("Change", p.money(b.ChangeAmount), false),
	)
	return rows
}

func (p page) footerRows(b *bill.Bill) []core.Row {
	rows := []core.Row{row.New(4)}
	if b.Notes != "" {
		rows = append(rows, row.New(6).Add(col.New(12).Add(
			text.New(b.Notes, props.Text{Size: 7, Color: colorGray, Top: 1}),
		)))
	}
	rows = append(rows, row.New(28).Add(
		col.New(4).Add(code.NewQr(b.BillNumber, props.Rect{Percent: 90, Center: true})),
		col.New(8).Add(text.New(p.shop.ReceiptFooter, props.Text{Size: 8, Top: 8, Left: 3, Color: colorGray})),
	))
	return rows
}
