package model

type Task struct {
	Tracked     `gorm:"embedded"`
	UserId      int64  `gorm:"not null;index"`
	Done        bool   `gorm:"not null;default:false"`
	Title       string `gorm:"type:varchar(128);not null"`
	Description string `gorm:"type:text"`
}

func (Task) TableName() string {
	return "tasks"
}
