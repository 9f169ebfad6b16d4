package shared

// Task types routed through the background queue
const (
	TypeExpirePendingOrders = "order:expire_pending"
)

// Queue names by priority
const (
	QueueBooking = "booking"
	QueueDefault = "default"
)
