package checkout

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sahelmarket/marketplace-backend/internal/modules/catalog"
)

func line(seller uuid.UUID, price float64, qty int) Line {
	return Line{Product: &catalog.Product{ID: uuid.New(), SellerID: seller, Price: price}, Quantity: qty}
}

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestSplitGroupsBySellerInCartOrder(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	groups := Split([]Line{
		line(b, 1000, 1),
		line(a, 2500, 2),
		line(b, 500, 3),
	}, d(1000), d(700), FeeFirstOrder)

	require.Len(t, groups, 2)
	assert.Equal(t, b, groups[0].SellerID)
	assert.Len(t, groups[0].Lines, 2)
	assert.True(t, groups[0].Subtotal.Equal(d(2500)))
	assert.True(t, groups[1].Subtotal.Equal(d(5000)))

	// 1000 × 2500/7500 = 333.33 → 333, the rest goes to the last group.
	assert.True(t, groups[0].ShippingFee.Equal(d(333)))
	assert.True(t, groups[1].ShippingFee.Equal(d(667)))

	assert.True(t, groups[0].DeliveryFee.Equal(d(700)))
	assert.True(t, groups[1].DeliveryFee.IsZero())
}

func TestSplitProportionalDelivererFee(t *testing.T) {
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	groups := Split([]Line{line(a, 1000, 1), line(b, 1000, 1), line(c, 1000, 1)},
		d(1000), d(500), FeeProportional)

	require.Len(t, groups, 3)
	assert.Equal(t, "333", groups[0].ShippingFee.String())
	assert.Equal(t, "333", groups[1].ShippingFee.String())
	assert.Equal(t, "334", groups[2].ShippingFee.String())
	assert.Equal(t, "166", groups[0].DeliveryFee.String())
	assert.Equal(t, "168", groups[2].DeliveryFee.String())
}

func TestSplitTotalsAlwaysAddUp(t *testing.T) {
	cases := []struct {
		prices   []float64
		shipping int64
		fee      int64
	}{
		{[]float64{1}, 1000, 0},
		{[]float64{1, 1, 1, 1, 1, 1}, 3, 1},
		{[]float64{19999, 1, 350}, 1000, 1500},
		{[]float64{0.5, 1200.25, 99}, 1001, 333},
		{[]float64{7, 13, 17, 19, 23}, 0, 0},
	}
	for _, policy := range []FeePolicy{FeeFirstOrder, FeeProportional} {
		for _, tc := range cases {
			var lines []Line
			subtotal := decimal.Zero
			for _, p := range tc.prices {
				l := line(uuid.New(), p, 2)
				lines = append(lines, l)
				subtotal = subtotal.Add(l.LineTotal())
			}

			groups := Split(lines, d(tc.shipping), d(tc.fee), policy)
			require.Len(t, groups, len(tc.prices))

			sum := decimal.Zero
			for _, g := range groups {
				assert.False(t, g.ShippingFee.IsNegative())
				assert.False(t, g.DeliveryFee.IsNegative())
				sum = sum.Add(g.Total())
			}
			want := subtotal.Add(d(tc.shipping)).Add(d(tc.fee))
			assert.True(t, want.Equal(sum), "policy %s prices %v: want %s got %s", policy, tc.prices, want, sum)
		}
	}
}

func TestParseFeePolicy(t *testing.T) {
	assert.Equal(t, FeeProportional, ParseFeePolicy(" Proportional "))
	assert.Equal(t, FeeFirstOrder, ParseFeePolicy("first_order"))
	assert.Equal(t, FeeFirstOrder, ParseFeePolicy(""))
	assert.Equal(t, FeeFirstOrder, ParseFeePolicy("random"))
}

func TestSplitEmpty(t *testing.T) {
	assert.Nil(t, Split(nil, d(1000), d(0), FeeFirstOrder))
}
