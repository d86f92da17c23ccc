package currency

import (
	"errors"
	"time"
)

// Base is the platform's accounting currency (West African CFA franc).
// Product prices and fees are stored in it.
const Base = "XOF"

var ErrUnknownCurrency = errors.New("unknown currency")

// Currency is one row of the rate table: how many FCFA one unit is worth.
type Currency struct {
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Symbol      string    `json:"symbol"`
	ValueInFCFA float64   `json:"value_in_fcfa"`
	UpdatedAt   time.Time `json:"updated_at,omitempty"`
}

// staticRates backs the table when a row is missing or the database is unreachable.
var staticRates = []Currency{
	{Code: "XOF", Name: "Franc CFA", Symbol: "FCFA", ValueInFCFA: 1},
	{Code: "EUR", Name: "Euro", Symbol: "€", ValueInFCFA: 655.957},
	{Code: "USD", Name: "US Dollar", Symbol: "$", ValueInFCFA: 600},
}
