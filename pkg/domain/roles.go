package domain

// Role identifies which kind of observer is looking at the order
// stream. Each role sees a different slice of a restaurant's orders.
type Role string

const (
	// RoleExpo is the kitchen pass board: only orders waiting to go out.
	RoleExpo Role = "expo"
	// RoleAdmin is the operations kanban: every non-terminal order.
	RoleAdmin Role = "admin"
	// RoleTracker is the customer page: exactly one order, by id.
	RoleTracker Role = "tracker"
	// RoleKitchen is a mutating actor label used for audit, not a view.
	RoleKitchen Role = "kitchen"
)

// Filter is the role-specific visibility predicate.
type Filter struct {
	Role    Role   `json:"role"`
	OrderID string `json:"order_id,omitempty"`
}

func (f Filter) Match(order Order) bool {
	switch f.Role {
	case RoleExpo:
		return order.Status == StatusReady
	case RoleTracker:
		return order.ID == f.OrderID
	default:
		return !order.Status.Terminal()
	}
}
