package enums

import "fmt"

// OrderStatus tracks a tailoring order through its production lifecycle.
type OrderStatus string

const (
	OrderStatusNew              OrderStatus = "new"
	OrderStatusMaterialSelected OrderStatus = "material_selected"
	OrderStatusCutting          OrderStatus = "cutting"
	OrderStatusStitching        OrderStatus = "stitching"
	OrderStatusFinishing        OrderStatus = "finishing"
	OrderStatusReady            OrderStatus = "ready"
	OrderStatusDelivered        OrderStatus = "delivered"
	OrderStatusCancelled        OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusNew,
	OrderStatusMaterialSelected,
	OrderStatusCutting,
	OrderStatusStitching,
	OrderStatusFinishing,
	OrderStatusReady,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// String implements fmt.Stringer.
func (o OrderStatus) String() string {
	return string(o)
}

// IsValid reports whether the value is a known OrderStatus.
func (o OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == o {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (o OrderStatus) IsTerminal() bool {
	return o == OrderStatusDelivered || o == OrderStatusCancelled
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
