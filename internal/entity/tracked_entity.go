package entity

import (
	"time"

	"github.com/google/uuid"
)

// Tracked is the embedded base for every resource visible to sync clients.
// Id is the server-side surrogate key and never leaves the process; clients
// address resources by ExtId. Updated is the sole basis for optimistic
// concurrency and sync windowing, and strictly increases on every mutation.
type Tracked struct {
	Id      int64
	ExtId   uuid.UUID
	Created time.Time
	Updated time.Time
	Deleted bool
}
