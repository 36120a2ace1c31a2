package currency

// Static rates against a USD base. Unknown currencies fall back to rate 1 on
// purpose: callers never recover from a failed conversion, so an identity
// rate keeps submission working instead of blocking it.
var rates = map[string]float64{
	"USD": 1,
	"EUR": 0.85,
	"GBP": 0.73,
	"INR": 83.12,
	"CAD": 1.36,
	"AUD": 1.52,
	"JPY": 149.34,
	"CNY": 7.24,
}

// Rate returns the multiplier that converts an amount in from-currency into
// to-currency. Same currency is always 1.
func Rate(fromCurrency, toCurrency string) float64 {
	if fromCurrency == toCurrency {
		return 1
	}

	fromRate, ok := rates[fromCurrency]
	if !ok {
		fromRate = 1
	}
	toRate, ok := rates[toCurrency]
	if !ok {
		toRate = 1
	}

	return toRate / fromRate
}

// Convert maps an amount from one currency to another using the static table.
func Convert(amount float64, fromCurrency, toCurrency string) float64 {
	return amount * Rate(fromCurrency, toCurrency)
}
