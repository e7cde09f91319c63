package enums

type OrderStatus string

const (
	OrderStatusUnpaid OrderStatus = "unpaid"
	OrderStatusBooked OrderStatus = "booked"
)
