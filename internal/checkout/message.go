package checkout

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/safar/go-storefront/internal/models"
	"github.com/shopspring/decimal"
)

type Line struct {
	Name      string
	UnitPrice decimal.Decimal
	Quantity  int
}

func (l Line) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

type Customer struct {
	Name    string
	Phone   string
	Address string
}

func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// OrderRef is the short reference shown to the customer and the shop admin.
func OrderRef(order *models.Order) string {
	return strings.ToUpper(strings.ReplaceAll(order.ID.String(), "-", "")[:8])
}

// ComposeMessage renders the order summary sent to the shop over chat.
func ComposeMessage(order *models.Order, c Customer, lines []Line, total decimal.Decimal) string {
	var b strings.Builder

	fmt.Fprintf(&b, "New order #%s\n\n", OrderRef(order))
	fmt.Fprintf(&b, "Name: %s\n", c.Name)
	fmt.Fprintf(&b, "Phone: %s\n", c.Phone)
	fmt.Fprintf(&b, "Address: %s\n\n", c.Address)

	b.WriteString("Items:\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "- %s x%d @ %s = %s\n", l.Name, l.Quantity, l.UnitPrice.StringFixed(2), l.Subtotal().StringFixed(2))
	}

	fmt.Fprintf(&b, "\nTotal: %s", total.StringFixed(2))

	return b.String()
}

// DeepLink builds <base>/<recipient>?text=<text> with spaces as %20.
func DeepLink(base, recipient, text string) string {
	escaped := strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
	return strings.TrimRight(base, "/") + "/" + url.PathEscape(recipient) + "?text=" + escaped
}
