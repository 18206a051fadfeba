package entity

type Task struct {
	Tracked
	UserId      int64
	Done        bool
	Title       string
	Description string
}
