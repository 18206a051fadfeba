package entity

type Notebook struct {
	Tracked
	UserId int64
	Name   string
}
