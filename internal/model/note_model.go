package model

type Note struct {
	Tracked    `gorm:"embedded"`
	NotebookId int64  `gorm:"not null;index"`
	Title      string `gorm:"type:varchar(128);not null"`
	Text       string `gorm:"type:text"`
}

func (Note) TableName() string {
	return "notes"
}
