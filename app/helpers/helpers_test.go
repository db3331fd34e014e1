package helpers

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestGenerateSlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Old Couch", "old-couch"},
		{"Kåre's Lamp", "kares-lamp"},
		{"  Trimmed  ", "trimmed"},
		{"SHOUTING TITLE", "shouting-title"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, GenerateSlug(tt.in))
	}
}

func TestFormatPrice(t *testing.T) {
	assert.Equal(t, "NZD $120.00", FormatPrice("NZD", decimal.NewFromInt(120)))
	assert.Equal(t, "NZD $9.50", FormatPrice("NZD", decimal.RequireFromString("9.5")))
}

func TestPasswordCompare(t *testing.T) {
	hash := HashPassword("open sesame")

	assert.True(t, PasswordCompare(hash, []byte("open sesame")))
	assert.False(t, PasswordCompare(hash, []byte("wrong")))
	assert.False(t, PasswordCompare("", []byte("open sesame")))
}
