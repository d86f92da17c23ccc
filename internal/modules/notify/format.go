package notify

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sahelmarket/marketplace-backend/internal/modules/currency"
	"github.com/sahelmarket/marketplace-backend/internal/modules/order"
)

var printer = message.NewPrinter(language.French)

// FormatAmount renders an amount with French digit grouping and the
// currency's standard number of decimals, e.g. "12 500 XOF".
func FormatAmount(amount float64, code string) string {
	scale := int(currency.Scale(code))
	return printer.Sprint(number.Decimal(amount, number.Scale(scale))) + " " + code
}

var methodLabels = map[order.PaymentMethod]string{
	order.MethodCashOnDelivery: "Paiement à la livraison",
	order.MethodMobileMoney:    "Mobile money",
	order.MethodPayPal:         "PayPal",
}

// OrdersPlacedText is the chat message announcing a checkout.
func OrdersPlacedText(orders []*order.Order) string {
	var b strings.Builder
	b.WriteString("🛒 Nouvelle commande\n")
	var totalXOF float64
	for _, o := range orders {
		fmt.Fprintf(&b, "• Commande %s · vendeur %s · %d article(s) · %s\n",
			shortID(o.ID.String()), shortID(o.SellerID.String()), countItems(o), FormatAmount(o.Total, o.Currency))
		totalXOF += o.TotalXOF
	}
	if len(orders) > 0 {
		fmt.Fprintf(&b, "Total: %s\nPaiement: %s", FormatAmount(totalXOF, currency.Base), methodLabels[orders[0].PaymentMethod])
	}
	return b.String()
}

// OrdersPlacedEmail is the HTML confirmation sent to the client.
func OrdersPlacedEmail(orders []*order.Order) string {
	var b strings.Builder
	b.WriteString("<strong>Merci pour votre achat !</strong><br><br>")
	for _, o := range orders {
		fmt.Fprintf(&b, "Commande <strong>%s</strong> : %s<br>", html.EscapeString(o.ID.String()), html.EscapeString(FormatAmount(o.Total, o.Currency)))
		for _, it := range o.Items {
			fmt.Fprintf(&b, "&nbsp;&nbsp;%d × %s<br>", it.Quantity, html.EscapeString(it.ProductName))
		}
	}
	if len(orders) > 0 {
		fmt.Fprintf(&b, "<br>Mode de paiement : <strong>%s</strong>", methodLabels[orders[0].PaymentMethod])
	}
	return b.String()
}

func countItems(o *order.Order) int {
	n := 0
	for _, it := range o.Items {
		n += it.Quantity
	}
	return n
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
