package domain

import "time"

// OrderStatusCreated is the status every freshly assembled order starts with.
const OrderStatusCreated = "created"

type Order struct {
	ID        int64
	UserID    int64
	ProductID int64
	Status    string // free-form, overwritable until persisted
	CreatedAt time.Time
}
