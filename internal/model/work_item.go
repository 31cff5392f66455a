package model

import "strings"

// WorkStatus is the review state of a work item.
type WorkStatus string

const (
	// WorkStatusPending marks items awaiting review.
	WorkStatusPending WorkStatus = "pending"
	// WorkStatusAccepted marks items accepted for use in scenarios.
	WorkStatusAccepted WorkStatus = "accepted"
	// WorkStatusRejected marks items rejected during review.
	WorkStatusRejected WorkStatus = "rejected"
)

// Valid reports whether s is a known status.
func (s WorkStatus) Valid() bool {
	switch s {
	case WorkStatusPending, WorkStatusAccepted, WorkStatusRejected:
		return true
	}
	return false
}

// WorkItem is a priced unit of construction work scoped to one discipline.
type WorkItem struct {
	ID         string     `json:"id"`
	CategoryID string     `json:"categoryId"`
	Name       string     `json:"name"`
	Currency   string     `json:"currency,omitempty"`
	Unit       string     `json:"unit"`
	Source     string     `json:"source"`
	Status     WorkStatus `json:"status"`
	Price      float64    `json:"price"`
	Score      float64    `json:"score"`
}

// defaultCurrencies are dropped on import; display falls back to the language symbol.
var defaultCurrencies = map[string]struct{}{
	"RUB": {}, "RUR": {}, "РУБ": {}, "₽": {}, "USD": {}, "DOLLAR": {}, "$": {},
}

// NormalizeCurrency returns "" for currencies covered by the language default
// and the original code otherwise.
func NormalizeCurrency(currency string) string {
	c := strings.ToUpper(strings.TrimSpace(currency))
	if c == "" {
		return ""
	}
	if _, ok := defaultCurrencies[c]; ok {
		return ""
	}
	return currency
}

// DisplayCurrency returns the symbol used when rendering the item's price.
func (w WorkItem) DisplayCurrency(lang Language) string {
	if NormalizeCurrency(w.Currency) == "" {
		return lang.CurrencySymbol()
	}
	return w.Currency
}
