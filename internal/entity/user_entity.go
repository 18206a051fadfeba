package entity

import "time"

// User is not a tracked resource: it carries no tombstone and is never
// listed through sync windows. It only acts as the quota parent for
// notebooks and tasks.
type User struct {
	Id       int64
	Username string
	Email    string
	Password string
	Created  time.Time
}
