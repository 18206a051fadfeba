package entity

type Note struct {
	Tracked
	NotebookId int64
	Title      string
	Text       string
}
