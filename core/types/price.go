// Package types - Price types
package types

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency identifies the currency a price is expressed in
type Currency struct {
	// Code is the ISO 4217 code
	Code string `json:"code"`

	// Symbol is the display prefix
	Symbol string `json:"symbol"`
}

// CurrencyIDR is the Indonesian rupiah, the currency of the training data
var CurrencyIDR = Currency{Code: "IDR", Symbol: "Rp"}

// String returns the currency code
func (c Currency) String() string {
	return c.Code
}

// Price is a predicted sale price
type Price struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency Currency        `json:"currency"`
}

// NewPrice builds a price rounded to two decimal places
func NewPrice(amount float64, currency Currency) Price {
	return Price{
		Amount:   decimal.NewFromFloat(amount).Round(2),
		Currency: currency,
	}
}

var displayPrinter = message.NewPrinter(language.English)

// Format renders the price with grouped thousands and two decimals,
// e.g. "Rp 125,500,000.00"
func (p Price) Format() string {
	amount, _ := p.Amount.Round(2).Float64()
	formatted := displayPrinter.Sprintf("%.2f", amount)
	if p.Currency.Symbol == "" {
		return formatted
	}
	return p.Currency.Symbol + " " + formatted
}

// String implements fmt.Stringer
func (p Price) String() string {
	return p.Format()
}
