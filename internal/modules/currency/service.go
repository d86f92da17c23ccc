package currency

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

// Conversion is the result of converting a base amount into another currency.
type Conversion struct {
	Amount   decimal.Decimal
	Currency string
	// Rate is value_in_fcfa of the target currency at conversion time.
	Rate decimal.Decimal
}

// Service converts amounts between XOF and the display/settlement currencies.
type Service interface {
	List(ctx context.Context) ([]*Currency, error)
	Rate(ctx context.Context, code string) (decimal.Decimal, error)
	Convert(ctx context.Context, amountXOF decimal.Decimal, to string) (Conversion, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) List(ctx context.Context) ([]*Currency, error) {
	rates := s.rates(ctx)
	out := make([]*Currency, 0, len(rates))
	for _, c := range rates {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *service) Rate(ctx context.Context, code string) (decimal.Decimal, error) {
	code, err := Normalize(code)
	if err != nil {
		return decimal.Zero, err
	}
	c, ok := s.rates(ctx)[code]
	if !ok || c.ValueInFCFA <= 0 {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s", ErrUnknownCurrency, code)
	}
	return decimal.NewFromFloat(c.ValueInFCFA), nil
}

func (s *service) Convert(ctx context.Context, amountXOF decimal.Decimal, to string) (Conversion, error) {
	code, err := Normalize(to)
	if err != nil {
		return Conversion{}, err
	}
	rate, err := s.Rate(ctx, code)
	if err != nil {
		return Conversion{}, err
	}
	return Conversion{
		Amount:   FromBase(amountXOF, rate, code),
		Currency: code,
		Rate:     rate,
	}, nil
}

// rates merges the static table with the database rows; database rows win.
func (s *service) rates(ctx context.Context) map[string]*Currency {
	out := make(map[string]*Currency, len(staticRates))
	for i := range staticRates {
		c := staticRates[i]
		out[c.Code] = &c
	}
	rows, err := s.repo.ListCurrencies(ctx)
	if err != nil {
		log.Printf("currency: load rates: %v (using static table)", err)
		return out
	}
	for _, c := range rows {
		code := strings.ToUpper(strings.TrimSpace(c.Code))
		if c.ValueInFCFA <= 0 {
			continue
		}
		c.Code = code
		out[code] = c
	}
	out[Base].ValueInFCFA = 1
	return out
}

// Normalize validates an ISO 4217 code and returns it upper-cased.
// An empty code means the base currency.
func Normalize(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return Base, nil
	}
	unit, err := currency.ParseISO(code)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrUnknownCurrency, code)
	}
	return unit.String(), nil
}

// Scale returns the number of decimal places amounts in code are rounded to
// (0 for XOF, 2 for USD and EUR).
func Scale(code string) int32 {
	unit, err := currency.ParseISO(code)
	if err != nil {
		return 2
	}
	scale, _ := currency.Standard.Rounding(unit)
	return int32(scale)
}

// FromBase converts an XOF amount into code at rate, rounded to the
// currency's scale.
func FromBase(amountXOF, rate decimal.Decimal, code string) decimal.Decimal {
	return amountXOF.Div(rate).Round(Scale(code))
}

// ToBase converts an amount expressed in a currency back to XOF given the rate
// recorded at conversion time.
func ToBase(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(Scale(Base))
}
