package order

import "strings"

type Status string

const (
	StatusPending       Status = "PENDING"
	StatusConfirmed     Status = "CONFIRMED"
	StatusProcessing    Status = "PROCESSING"
	StatusShipped       Status = "SHIPPED"
	StatusDelivered     Status = "DELIVERED"
	StatusCancelled     Status = "CANCELLED"
	StatusRefundPending Status = "REFUND_PENDING"
)

// validNext is the complete transition table. A status missing from a row is
// rejected; REFUND_PENDING is reachable only from paid, undelivered states.
var validNext = map[Status]map[Status]bool{
	StatusPending:       {StatusConfirmed: true, StatusCancelled: true},
	StatusConfirmed:     {StatusProcessing: true, StatusCancelled: true, StatusRefundPending: true},
	StatusProcessing:    {StatusShipped: true, StatusRefundPending: true},
	StatusShipped:       {StatusDelivered: true, StatusRefundPending: true},
	StatusRefundPending: {StatusCancelled: true},
	StatusDelivered:     {},
	StatusCancelled:     {},
}

// Statuses lists every order status in lifecycle order.
func Statuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusProcessing,
		StatusShipped,
		StatusDelivered,
		StatusCancelled,
		StatusRefundPending,
	}
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func (s Status) Valid() bool {
	_, ok := validNext[s]
	return ok
}

func (s Status) Terminal() bool {
	return s.Valid() && len(validNext[s]) == 0
}

// ParseStatus accepts a status name case-insensitively.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if !s.Valid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}
