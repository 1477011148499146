// Package ticket renders walk-in booking tickets for printing
package ticket

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/smarttransit/walkin-pos/internal/models"
)

// Renderer turns a confirmed booking into a printable document
type Renderer interface {
	Render(booking models.CompletedBooking) ([]byte, error)
}

// PDFRenderer prints A5 portrait tickets
type PDFRenderer struct {
	companyName string
	currency    string
	utf8Font    string
}

// Option configures a PDFRenderer
type Option func(*PDFRenderer)

// WithCompanyName sets the ticket header
func WithCompanyName(name string) Option {
	return func(r *PDFRenderer) {
		if strings.TrimSpace(name) != "" {
			r.companyName = name
		}
	}
}

// WithCurrency sets the currency label printed before amounts
func WithCurrency(currency string) Option {
	return func(r *PDFRenderer) {
		if strings.TrimSpace(currency) != "" {
			r.currency = currency
		}
	}
}

// WithUTF8Font embeds the TrueType font at path so names outside Latin-1
// print correctly. Without it the core Helvetica font is used and text is
// translated to cp1252, with unmappable runes printed as '.'.
func WithUTF8Font(path string) Option {
	return func(r *PDFRenderer) {
		if strings.TrimSpace(path) != "" {
			r.utf8Font = path
		}
	}
}

// NewPDFRenderer creates a PDFRenderer
func NewPDFRenderer(opts ...Option) *PDFRenderer {
	r := &PDFRenderer{
		companyName: "Smart Transit",
		currency:    "LKR",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render builds the ticket PDF
func (r *PDFRenderer) Render(b models.CompletedBooking) ([]byte, error) {
	if strings.TrimSpace(b.ReferenceCode) == "" {
		return nil, fmt.Errorf("render ticket: booking has no reference code")
	}

	pdf := gofpdf.New("P", "mm", "A5", "")
	family, text := r.setupFont(pdf)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("render ticket %s: load font: %w", b.ReferenceCode, err)
	}

	pdf.SetTitle("Ticket "+b.ReferenceCode, true)
	pdf.SetAuthor(r.companyName, true)
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pdf.SetFont(family, "B", 16)
	pdf.CellFormat(0, 9, text(r.companyName), "", 1, "C", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.CellFormat(0, 6, "Walk-in Bus Ticket", "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "B", 14)
	pdf.CellFormat(0, 10, text("Ref: "+b.ReferenceCode), "TB", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(family, "", 11)
	for _, line := range r.lines(b) {
		pdf.CellFormat(35, 7, line[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 7, text(": "+line[1]), "", 1, "L", false, 0, "")
	}

	pdf.Ln(4)
	pdf.SetFont(family, "B", 13)
	pdf.CellFormat(0, 9, text("Total: "+r.formatAmount(b.TotalAmount)), "T", 1, "R", false, 0, "")

	pdf.Ln(4)
	pdf.SetFont(family, "I", 9)
	pdf.MultiCell(0, 5, "Valid for one passenger on the departure shown. Please present this ticket when boarding.", "", "", false)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render ticket %s: %w", b.ReferenceCode, err)
	}
	return buf.Bytes(), nil
}

// setupFont returns the font family to use and the encoder for text cells
func (r *PDFRenderer) setupFont(pdf *gofpdf.Fpdf) (string, func(string) string) {
	if r.utf8Font == "" {
		return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
	}
	const family = "TicketSans"
	for _, style := range []string{"", "B", "I"} {
		pdf.AddUTF8Font(family, style, r.utf8Font)
	}
	return family, func(s string) string { return s }
}

func (r *PDFRenderer) lines(b models.CompletedBooking) [][2]string {
	return [][2]string{
		{"Route", safe(b.Schedule.RouteLabel())},
		{"Date / Time", safe(strings.TrimSpace(b.Schedule.DepartureDate + " " + b.Schedule.DepartureTime))},
		{"Bus", safe(b.Schedule.BusNumber)},
		{"Seat", fmt.Sprintf("%d", b.SeatNumber)},
		{"Passenger", safe(b.PassengerName)},
		{"Phone", safe(b.PassengerPhone)},
		{"Payment", fmt.Sprintf("%s (%s)", b.PaymentMethod, b.PaymentStatus)},
		{"Status", safe(b.Status)},
		{"Issued", b.IssuedAt.Format("2006-01-02 15:04")},
	}
}

func (r *PDFRenderer) formatAmount(amount float64) string {
	return fmt.Sprintf("%s %.2f", r.currency, amount)
}

func safe(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "-"
	}
	return s
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// Filename returns the download name for a booking's ticket
func Filename(b models.CompletedBooking) string {
	ref := unsafeFilenameChars.ReplaceAllString(b.ReferenceCode, "_")
	if ref == "" {
		ref = "UNKNOWN"
	}
	return fmt.Sprintf("TICKET_%s.pdf", ref)
}
