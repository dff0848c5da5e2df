package domain

import "strings"

const (
	// PreorderTag is appended to the display name of preorder lines.
	PreorderTag = "(PreOrder)"

	// Preorders are charged a deposit of one tenth of the listed price.
	preorderDepositDivisor = 10
)

// EffectiveLine is the priced view of a cart line. It is derived on read and
// never stored.
type EffectiveLine struct {
	ProductID      string `json:"product_id"`
	DisplayName    string `json:"display_name"`
	Thumbnail      string `json:"thumbnail,omitempty"`
	Qty            int    `json:"qty"`
	UnitPrice      int64  `json:"unit_price"`
	LineTotal      int64  `json:"line_total"`
	UnitPriceLabel string `json:"unit_price_label"`
	LineTotalLabel string `json:"line_total_label"`
	IsPreorder     bool   `json:"is_preorder"`
}

func hasPreorderTag(name string) bool {
	return strings.Contains(strings.ToLower(name), strings.ToLower(PreorderTag))
}

// IsPreorder reports whether p is sold as a preorder, either by type or by a
// "(PreOrder)" marker in its name.
func IsPreorder(p Product) bool {
	return p.Type == ProductTypePreorder || hasPreorderTag(p.DisplayBase())
}

// EffectivePrice is the unit price actually charged for p.
func EffectivePrice(p Product) int64 {
	price := p.ListPrice()
	if !IsPreorder(p) {
		return price
	}
	return floorDiv(price, preorderDepositDivisor)
}

// DepositPrice is the preorder deposit for p regardless of its type.
func DepositPrice(p Product) int64 {
	return floorDiv(p.ListPrice(), preorderDepositDivisor)
}

// DisplayName returns the name shown for p, tagged once for preorders.
func DisplayName(p Product) string {
	name := p.DisplayBase()
	if IsPreorder(p) && !hasPreorderTag(name) {
		return name + " " + PreorderTag
	}
	return name
}

// PriceLine derives the effective line for a cart line.
func PriceLine(line CartLine) EffectiveLine {
	unit := EffectivePrice(line.Product)
	total := unit * int64(line.Qty)
	return EffectiveLine{
		ProductID:      line.Product.ID,
		DisplayName:    DisplayName(line.Product),
		Thumbnail:      line.Product.Thumbnail(),
		Qty:            line.Qty,
		UnitPrice:      unit,
		LineTotal:      total,
		UnitPriceLabel: FormatVND(unit),
		LineTotalLabel: FormatVND(total),
		IsPreorder:     IsPreorder(line.Product),
	}
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
