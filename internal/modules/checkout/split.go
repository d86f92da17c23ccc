package checkout

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sahelmarket/marketplace-backend/internal/modules/catalog"
)

// FeePolicy decides which orders of a checkout carry the deliverer fee.
type FeePolicy string

const (
	// FeeFirstOrder puts the whole deliverer fee on the first order.
	FeeFirstOrder FeePolicy = "first_order"
	// FeeProportional spreads it like the shipping fee.
	FeeProportional FeePolicy = "proportional"
)

// ParseFeePolicy falls back to FeeFirstOrder for unknown values.
func ParseFeePolicy(s string) FeePolicy {
	if FeePolicy(strings.ToLower(strings.TrimSpace(s))) == FeeProportional {
		return FeeProportional
	}
	return FeeFirstOrder
}

// Line is one validated cart line.
type Line struct {
	Product  *catalog.Product
	Quantity int
}

// LineTotal is price × quantity in XOF.
func (l Line) LineTotal() decimal.Decimal {
	return decimal.NewFromFloat(l.Product.Price).Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// SellerGroup is the part of a cart that becomes one order. Amounts are XOF.
type SellerGroup struct {
	SellerID    uuid.UUID
	Lines       []Line
	Subtotal    decimal.Decimal
	ShippingFee decimal.Decimal
	DeliveryFee decimal.Decimal
}

func (g *SellerGroup) Total() decimal.Decimal {
	return g.Subtotal.Add(g.ShippingFee).Add(g.DeliveryFee)
}

// Split groups lines by seller, in order of first appearance, and allocates
// the shipping and deliverer fees across the groups. The allocated fees
// always add up to the inputs exactly.
func Split(lines []Line, shippingFee, delivererFee decimal.Decimal, policy FeePolicy) []*SellerGroup {
	var groups []*SellerGroup
	bySeller := make(map[uuid.UUID]*SellerGroup)
	for _, l := range lines {
		g, ok := bySeller[l.Product.SellerID]
		if !ok {
			g = &SellerGroup{SellerID: l.Product.SellerID}
			bySeller[g.SellerID] = g
			groups = append(groups, g)
		}
		g.Lines = append(g.Lines, l)
		g.Subtotal = g.Subtotal.Add(l.LineTotal())
	}
	if len(groups) == 0 {
		return nil
	}

	weights := make([]decimal.Decimal, len(groups))
	for i, g := range groups {
		weights[i] = g.Subtotal
	}
	for i, share := range allocate(shippingFee, weights) {
		groups[i].ShippingFee = share
	}

	switch policy {
	case FeeProportional:
		for i, share := range allocate(delivererFee, weights) {
			groups[i].DeliveryFee = share
		}
	default:
		groups[0].DeliveryFee = delivererFee
	}
	return groups
}

// allocate splits total by weight, rounding each share down to whole francs;
// the last share takes the remainder.
func allocate(total decimal.Decimal, weights []decimal.Decimal) []decimal.Decimal {
	shares := make([]decimal.Decimal, len(weights))
	sum := decimal.Zero
	for _, w := range weights {
		sum = sum.Add(w)
	}
	if sum.IsZero() {
		shares[len(shares)-1] = total
		return shares
	}

	given := decimal.Zero
	for i := 0; i < len(weights)-1; i++ {
		shares[i] = total.Mul(weights[i]).Div(sum).Truncate(0)
		given = given.Add(shares[i])
	}
	shares[len(shares)-1] = total.Sub(given)
	return shares
}
