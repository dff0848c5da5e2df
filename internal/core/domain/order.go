package domain

import "time"

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusShipped   OrderStatus = "shipped"
	OrderStatusDelivered OrderStatus = "delivered"
)

// Valid reports whether s is one of the statuses an admin can set.
func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) Label() string {
	switch s {
	case OrderStatusPending:
		return "Đang xử lý"
	case OrderStatusShipped:
		return "Đang giao hàng"
	default:
		return "Đã giao hàng"
	}
}

type Address struct {
	Recipient string `json:"recipient" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	Street    string `json:"street" validate:"required"`
	District  string `json:"district"`
	City      string `json:"city" validate:"required"`
}

// OrderItem is a product line of a delivery. Price and Quantity are optional
// on the wire.
type OrderItem struct {
	ProductID string   `json:"productId,omitempty"`
	Name      string   `json:"name"`
	Price     *int64   `json:"price,omitempty"`
	Quantity  *int     `json:"quantity,omitempty"`
	Images    []string `json:"images,omitempty"`
}

// Delivery is the backend's order record.
type Delivery struct {
	ID         string      `json:"_id,omitempty"`
	UserID     string      `json:"userId,omitempty"`
	Username   string      `json:"username"`
	Items      []OrderItem `json:"items"`
	Address    Address     `json:"address"`
	Status     OrderStatus `json:"status,omitempty"`
	TotalPrice *int64      `json:"totalPrice,omitempty"`
	CreatedAt  *time.Time  `json:"createdAt,omitempty"`
}

// CanConfirmReceived reports whether a customer may mark d as delivered.
func (d Delivery) CanConfirmReceived(s Session) bool {
	return !s.IsAdmin() && d.Username == s.Username && d.Status == OrderStatusShipped
}

// VisibleTo filters deliveries down to what the session may see: admins see
// everything, customers only their own orders.
func VisibleTo(deliveries []Delivery, s Session) []Delivery {
	if s.IsAdmin() {
		return deliveries
	}
	out := make([]Delivery, 0, len(deliveries))
	for _, d := range deliveries {
		if d.Username == s.Username {
			out = append(out, d)
		}
	}
	return out
}
