package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{123456, "1,23,456"},
		{4500000, "45,00,000"},
		{123456789, "12,34,56,789"},
		{1234.5, "1,234.5"},
		{1234.56789, "1,234.568"},
		{-250000, "-2,50,000"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, Number(tc.in), "Number(%v)", tc.in)
	}
}

func TestCurrency(t *testing.T) {
	assert.Equal(t, "0", Currency(0, false))
	assert.Equal(t, "₹45,00,000", Currency(4500000, false))
	assert.Equal(t, "₹1,235", Currency(1234.6, false))
	assert.Equal(t, "₹1,234.60", Currency(1234.6, true))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "₹1.5Cr", Short(15000000))
	assert.Equal(t, "₹2Cr", Short(20000000))
	assert.Equal(t, "₹45L", Short(4500000))
	assert.Equal(t, "₹12.5K", Short(12500))
	assert.Equal(t, "₹750", Short(750))
	assert.Equal(t, "0", Short(0))
}

func TestPriceRange(t *testing.T) {
	assert.Equal(t, "", PriceRange(0, 0, false))
	assert.Equal(t, "Up to ₹50L", PriceRange(0, 5000000, true))
	assert.Equal(t, "From ₹25,00,000", PriceRange(2500000, 0, false))
	assert.Equal(t, "₹25L", PriceRange(2500000, 2500000, true))
	assert.Equal(t, "₹25L - ₹1.2Cr", PriceRange(2500000, 12000000, true))
}

func TestParseCurrency(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"₹45,00,000", 4500000},
		{"1.2Cr", 12000000},
		{"1.2 crore", 12000000},
		{"2 Crores", 20000000},
		{"45L", 4500000},
		{"45 Lakh", 4500000},
		{"45 Lakhs onwards", 4500000},
		{"Rs. 62.5 lakhs", 6250000},
		{"30 lac", 3000000},
		{"12k", 12000},
		{"1250 sq ft", 1250},
		{"call us", 0},
		{"12kg", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.InDelta(t, tc.want, ParseCurrency(tc.in), 0.001, tc.in)
	}
}
