package domain

type Status string

const (
	StatusPending    Status = "pending"
	StatusPreparing  Status = "preparing"
	StatusReady      Status = "ready"
	StatusDelivering Status = "delivering"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

type Fulfillment string

const (
	FulfillmentTable    Fulfillment = "table"
	FulfillmentDelivery Fulfillment = "delivery"
	FulfillmentPickup   Fulfillment = "pickup"
	FulfillmentBuffet   Fulfillment = "buffet"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPreparing, StatusReady, StatusDelivering,
		StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal statuses accept no further transitions.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (f Fulfillment) Valid() bool {
	switch f {
	case FulfillmentTable, FulfillmentDelivery, FulfillmentPickup, FulfillmentBuffet:
		return true
	}
	return false
}

// successors holds the forward edges that do not depend on the
// fulfillment kind. The READY edge set is kind-specific and resolved
// in NextStatuses.
var successors = map[Status][]Status{
	StatusPending:    {StatusPreparing},
	StatusPreparing:  {StatusReady},
	StatusDelivering: {StatusCompleted},
}

// NextStatuses returns the legal successor set for an order of the
// given fulfillment kind currently in status from. CANCELLED is a legal
// target from every non-terminal status.
func NextStatuses(kind Fulfillment, from Status) []Status {
	if from.Terminal() {
		return nil
	}

	var next []Status
	if from == StatusReady {
		switch kind {
		case FulfillmentDelivery:
			next = []Status{StatusDelivering}
		case FulfillmentPickup:
			// pickup may hand off at the counter or go out with a courier
			next = []Status{StatusDelivering, StatusCompleted}
		default: // table and buffet are delivered in-house by staff
			next = []Status{StatusCompleted}
		}
	} else {
		next = append(next, successors[from]...)
	}

	return append(next, StatusCancelled)
}

// CanTransition reports whether from -> to is a legal move for the
// given fulfillment kind.
func CanTransition(kind Fulfillment, from, to Status) bool {
	for _, s := range NextStatuses(kind, from) {
		if s == to {
			return true
		}
	}
	return false
}
