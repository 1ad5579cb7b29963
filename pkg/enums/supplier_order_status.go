package enums

import "fmt"

// SupplierOrderStatus tracks the lifecycle of a relayed supplier order.
type SupplierOrderStatus string

const (
	SupplierOrderStatusPending   SupplierOrderStatus = "pending"
	SupplierOrderStatusSent      SupplierOrderStatus = "sent"
	SupplierOrderStatusConfirmed SupplierOrderStatus = "confirmed"
	SupplierOrderStatusShipped   SupplierOrderStatus = "shipped"
	SupplierOrderStatusDelivered SupplierOrderStatus = "delivered"
	SupplierOrderStatusCancelled SupplierOrderStatus = "cancelled"
)

var validSupplierOrderStatuses = []SupplierOrderStatus{
	SupplierOrderStatusPending,
	SupplierOrderStatusSent,
	SupplierOrderStatusConfirmed,
	SupplierOrderStatusShipped,
	SupplierOrderStatusDelivered,
	SupplierOrderStatusCancelled,
}

// forward progression order; cancelled sits outside the chain.
var supplierOrderStatusRank = map[SupplierOrderStatus]int{
	SupplierOrderStatusSent:      1,
	SupplierOrderStatusConfirmed: 2,
	SupplierOrderStatusShipped:   3,
	SupplierOrderStatusDelivered: 4,
}

// String implements fmt.Stringer.
func (s SupplierOrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SupplierOrderStatus.
func (s SupplierOrderStatus) IsValid() bool {
	for _, candidate := range validSupplierOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s SupplierOrderStatus) IsTerminal() bool {
	return s == SupplierOrderStatusDelivered || s == SupplierOrderStatusCancelled
}

// CanTransitionTo reports whether the ledger state machine permits moving from
// s to next. Forward-only along pending→sent→confirmed→shipped→delivered;
// pending may only leave via sent or cancelled, and cancelled is reachable
// from pending, sent, and confirmed. A remote poll may skip intermediate
// post-send states (sent→delivered is legal), but never skips the send itself.
func (s SupplierOrderStatus) CanTransitionTo(next SupplierOrderStatus) bool {
	if s == next {
		return false
	}
	if s.IsTerminal() {
		return false
	}
	if next == SupplierOrderStatusCancelled {
		return s == SupplierOrderStatusPending || s == SupplierOrderStatusSent || s == SupplierOrderStatusConfirmed
	}
	if s == SupplierOrderStatusPending {
		return next == SupplierOrderStatusSent
	}
	from, ok := supplierOrderStatusRank[s]
	if !ok {
		return false
	}
	to, ok := supplierOrderStatusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// ParseSupplierOrderStatus converts raw input into a SupplierOrderStatus.
func ParseSupplierOrderStatus(value string) (SupplierOrderStatus, error) {
	for _, candidate := range validSupplierOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid supplier order status %q", value)
}
