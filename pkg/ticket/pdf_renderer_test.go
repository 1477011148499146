package ticket

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/smarttransit/walkin-pos/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleBooking() models.CompletedBooking {
	return models.CompletedBooking{
		ReferenceCode: "PNR123",
		Status:        "confirmed",
		Schedule: models.Schedule{
			ID:            "sch-1",
			Origin:        "Colombo",
			Destination:   "Kandy",
			DepartureDate: "2026-10-14",
			DepartureTime: "08:30",
			BusNumber:     "NB-1234",
			TotalSeats:    45,
			Fare:          850,
		},
		SeatNumber:     4,
		PassengerName:  "Nimal Perera",
		PassengerPhone: "0771234567",
		TotalAmount:    850,
		PaymentMethod:  models.PaymentMethodCash,
		PaymentStatus:  models.PaymentStatusPaid,
		IssuedAt:       time.Date(2026, 10, 14, 8, 0, 0, 0, time.UTC),
	}
}

func TestPDFRenderer_Render(t *testing.T) {
	r := NewPDFRenderer(WithCompanyName("Colombo Express"))

	doc, err := r.Render(sampleBooking())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
	assert.Greater(t, len(doc), 500)
}

func TestPDFRenderer_EmptyFields(t *testing.T) {
	b := sampleBooking()
	b.PassengerPhone = ""
	b.Schedule = models.Schedule{}

	doc, err := NewPDFRenderer().Render(b)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestPDFRenderer_MissingReference(t *testing.T) {
	b := sampleBooking()
	b.ReferenceCode = " "

	_, err := NewPDFRenderer().Render(b)
	assert.Error(t, err)
}

func TestPDFRenderer_AccentedPassengerName(t *testing.T) {
	b := sampleBooking()
	b.PassengerName = "José Pérez"
	b.Schedule.Origin = "Nuwara Eliya – Hatton"

	doc, err := NewPDFRenderer(WithCompanyName("Señor Express")).Render(b)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(doc, []byte("%PDF")))
}

func TestPDFRenderer_CoreFontEncodesCP1252(t *testing.T) {
	family, text := NewPDFRenderer().setupFont(gofpdf.New("P", "mm", "A5", ""))

	assert.Equal(t, "Helvetica", family)
	assert.Equal(t, "Jos\xe9 P\xe9rez", text("José Pérez"))
	assert.Equal(t, "\x80 850", text("€ 850"))
	assert.Equal(t, "..", text("ශ්"))
}

func TestPDFRenderer_MissingUTF8Font(t *testing.T) {
	r := NewPDFRenderer(WithUTF8Font(filepath.Join(t.TempDir(), "missing.ttf")))

	_, err := r.Render(sampleBooking())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load font")
}

func TestOptions_IgnoreBlank(t *testing.T) {
	r := NewPDFRenderer(WithCompanyName(""), WithCurrency(" "), WithUTF8Font(""))
	assert.Equal(t, "Smart Transit", r.companyName)
	assert.Empty(t, r.utf8Font)
	assert.Equal(t, "LKR 850.00", r.formatAmount(850))

	r = NewPDFRenderer(WithCurrency("USD"))
	assert.Equal(t, "USD 12.50", r.formatAmount(12.5))
}

func TestFilename(t *testing.T) {
	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"Plain", "PNR123", "TICKET_PNR123.pdf"},
		{"Unsafe characters", "PNR/12 3", "TICKET_PNR_12_3.pdf"},
		{"Empty", "", "TICKET_UNKNOWN.pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := sampleBooking()
			b.ReferenceCode = tt.ref
			assert.Equal(t, tt.want, Filename(b))
		})
	}
}
