// Package currency converts SAR amounts into the display currencies.
package currency

import (
	"fmt"
	"math"
	"strings"

	"github.com/iAm-AliHaider/real-estate-investment-calculator/pkg/constants"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency is a display currency with its rate against SAR.
type Currency struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Rate   float64 `json:"rate"`
}

var currencies = []Currency{
	{Code: constants.BaseCurrency, Name: "Saudi Riyal", Symbol: "SAR", Rate: 1},
	{Code: "USD", Name: "US Dollar", Symbol: "$", Rate: 0.27},
	{Code: "EUR", Name: "Euro", Symbol: "€", Rate: 0.24},
	{Code: "GBP", Name: "British Pound", Symbol: "£", Rate: 0.21},
	{Code: "AED", Name: "UAE Dirham", Symbol: "AED", Rate: 0.98},
}

// List returns the supported currencies, base currency first.
func List() []Currency {
	return append([]Currency(nil), currencies...)
}

// Base returns the currency all amounts are calculated in.
func Base() Currency {
	return currencies[0]
}

// Lookup finds a currency by code, ignoring case. An empty code selects the base currency.
func Lookup(code string) (Currency, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Base(), nil
	}
	for _, c := range currencies {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return Currency{}, fmt.Errorf("unsupported currency %q", code)
}

// Convert scales a SAR amount into c.
func (c Currency) Convert(amount float64) float64 {
	return amount * c.Rate
}

// Display converts amount and renders it rounded to whole units with grouped
// thousands, e.g. "$ 1,234".
func (c Currency) Display(amount float64) string {
	p := message.NewPrinter(language.English)
	v := math.Round(c.Convert(amount))
	if v == 0 {
		return p.Sprintf("%s %d", c.Symbol, 0)
	}
	if v < 0 {
		return p.Sprintf("-%s %.0f", c.Symbol, -v)
	}
	return p.Sprintf("%s %.0f", c.Symbol, v)
}
