package logkey

// Keys used for structured logging across the service.
const (
	TraceID = "Trace ID"
	ERROR   = "Error"

	UserID    = "UserID"
	SessionID = "SessionID"
	ProductID = "ProductID"
	OrderID   = "OrderID"
	CouponID  = "CouponID"
)
