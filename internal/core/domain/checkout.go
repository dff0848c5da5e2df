package domain

// CheckoutItem is one entry of the checkout handoff payload.
type CheckoutItem struct {
	Product Product `json:"product"`
	Qty     int     `json:"qty"`
}

// CheckoutPayload is what the cart hands to the checkout flow.
type CheckoutPayload []CheckoutItem

// PayloadFromLines builds the handoff payload from cart lines, skipping
// lines with a non-positive quantity.
func PayloadFromLines(lines []CartLine) CheckoutPayload {
	payload := make(CheckoutPayload, 0, len(lines))
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		payload = append(payload, CheckoutItem{Product: line.Product, Qty: line.Qty})
	}
	return payload
}

// BuyNow builds a single-item payload that bypasses the cart.
func BuyNow(p Product) CheckoutPayload {
	return CheckoutPayload{{Product: p, Qty: 1}}
}

func (p CheckoutPayload) Lines() []CartLine {
	lines := make([]CartLine, len(p))
	for i, item := range p {
		lines[i] = CartLine{Product: item.Product, Qty: item.Qty}
	}
	return lines
}

// ToOrderItems prices the payload into delivery items charged at the
// effective unit price.
func (p CheckoutPayload) ToOrderItems() []OrderItem {
	items := make([]OrderItem, 0, len(p))
	for _, item := range p {
		if item.Qty <= 0 {
			continue
		}
		items = append(items, OrderItem{
			ProductID: item.Product.ID,
			Name:      DisplayName(item.Product),
			Price:     Ptr(EffectivePrice(item.Product)),
			Quantity:  Ptr(item.Qty),
			Images:    item.Product.Images,
		})
	}
	return items
}
