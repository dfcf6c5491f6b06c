package orders

// Order lifecycle: the forward chain pending → confirmed → processing →
// shipped → delivered, with cancelled, returned and refunded as side exits.
const (
	StatusPending    = "pending"
	StatusConfirmed  = "confirmed"
	StatusProcessing = "processing"
	StatusShipped    = "shipped"
	StatusDelivered  = "delivered"
	StatusCancelled  = "cancelled"
	StatusReturned   = "returned"
	StatusRefunded   = "refunded"
)

// Payment settlement is tracked separately from fulfilment.
const (
	PaymentUnpaid   = "unpaid"
	PaymentPaid     = "paid"
	PaymentRefunded = "refunded"
)

var transitions = map[string][]string{
	StatusPending:    {StatusConfirmed, StatusCancelled},
	StatusConfirmed:  {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered},
	StatusDelivered:  {StatusReturned},
	StatusCancelled:  {StatusRefunded},
	StatusReturned:   {StatusRefunded},
	StatusRefunded:   {},
}

// IsValidStatus reports whether s names a known order status.
func IsValidStatus(s string) bool {
	_, ok := transitions[s]
	return ok
}

// CanTransition reports whether an order may move from one status to another.
// Unknown statuses never transition.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition exists from s.
func IsTerminal(s string) bool {
	return len(transitions[s]) == 0
}
