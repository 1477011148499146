package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	validNumbers := []struct {
		input    string
		expected string
		name     string
	}{
		{"0771234567", "0771234567", "Standard format"},
		{"077 123 4567", "0771234567", "With spaces"},
		{"077-123-4567", "0771234567", "With dashes"},
		{"077.123.4567", "0771234567", "With dots"},
		{"(077) 123 4567", "0771234567", "With parentheses"},
		{"0701234567", "0701234567", "Mobitel 070"},
		{"0721234567", "0721234567", "Hutch 072"},
		{"0741234567", "0741234567", "Dialog 074"},
		{"0751234567", "0751234567", "Airtel 075"},
		{"94771234567", "0771234567", "With country code"},
		{"+94 77 123 4567", "0771234567", "With plus country code and spaces"},
		{"077-123 4567", "0771234567", "Mixed separators"},
	}

	for _, tc := range validNumbers {
		t.Run(tc.name, func(t *testing.T) {
			sanitized, err := validator.Validate(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, sanitized)
		})
	}
}

func TestValidate_InvalidNumbers(t *testing.T) {
	validator := NewPhoneValidator()

	invalidNumbers := []struct {
		input       string
		expectedErr error
		name        string
	}{
		{"", ErrEmptyPhone, "Empty string"},
		{"     ", ErrEmptyPhone, "Only spaces"},
		{"123", ErrInvalidLength, "Too short"},
		{"07712345678", ErrInvalidLength, "Too long"},
		{"0791234567", ErrInvalidPrefix, "Invalid prefix 079"},
		{"0731234567", ErrInvalidPrefix, "Invalid prefix 073"},
		{"0112345678", ErrInvalidPrefix, "Landline"},
		{"077123456a", ErrInvalidFormat, "Contains letters"},
		{"077 123 456!", ErrInvalidFormat, "Contains special characters"},
	}

	for _, tc := range invalidNumbers {
		t.Run(tc.name, func(t *testing.T) {
			_, err := validator.Validate(tc.input)
			assert.Equal(t, tc.expectedErr, err)
		})
	}
}

func TestSanitize(t *testing.T) {
	validator := NewPhoneValidator()

	tests := []struct {
		input    string
		expected string
		name     string
	}{
		{"0771234567", "0771234567", "Already clean"},
		{"+94771234567", "0771234567", "With country code and plus"},
		{"  077-123-4567\t", "0771234567", "Surrounding whitespace"},
		{"077 - 123 - 4567", "0771234567", "Multiple separators"},
		{"94 77", "9477", "Short number keeps country digits"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, validator.Sanitize(tc.input))
		})
	}
}

func TestIsValidPrefix(t *testing.T) {
	validator := NewPhoneValidator()

	for _, phone := range []string{"0701234567", "0711234567", "0741234567", "0781234567"} {
		assert.True(t, validator.IsValidPrefix(phone), phone)
	}
	for _, phone := range []string{"0691234567", "0731234567", "0791234567", "07", ""} {
		assert.False(t, validator.IsValidPrefix(phone), phone)
	}
}

func BenchmarkValidate(b *testing.B) {
	validator := NewPhoneValidator()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = validator.Validate("077-123-4567")
	}
}
