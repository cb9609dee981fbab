package cart

import "github.com/shopspring/decimal"

// LineView is one rendered cart row.
type LineView struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Image     string `json:"image,omitempty"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// View is the display model derived from the cart state: rows, a formatted
// grand total and the badge count.
type View struct {
	Lines []LineView `json:"lines"`
	Total string     `json:"total"`
	Count int        `json:"count"`
	Empty bool       `json:"empty"`
}

// Project derives the display model from a line snapshot. It holds no state
// of its own: projecting the same snapshot twice yields identical views.
func Project(lines []Line) View {
	view := View{
		Lines: make([]LineView, 0, len(lines)),
		Empty: len(lines) == 0,
	}

	total := decimal.Zero
	for _, line := range lines {
		subtotal := line.Subtotal()
		total = total.Add(subtotal)
		view.Count += line.Quantity
		view.Lines = append(view.Lines, LineView{
			ProductID: line.ProductID,
			Name:      line.Name,
			Image:     line.Image,
			Quantity:  line.Quantity,
			UnitPrice: FormatMoney(line.UnitPrice),
			Subtotal:  FormatMoney(subtotal),
		})
	}

	view.Total = FormatMoney(total)
	return view
}

// FormatMoney renders a single-currency amount with two decimal places.
func FormatMoney(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}
