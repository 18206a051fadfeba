package model

type Notebook struct {
	Tracked `gorm:"embedded"`
	UserId  int64  `gorm:"not null;index"`
	Name    string `gorm:"type:varchar(128);not null"`

	// Expiring or evicting a notebook tombstone takes its notes with it,
	// matching the cascade the sweep counts rely on.
	Notes []Note `gorm:"foreignKey:NotebookId;references:Id;constraint:OnDelete:CASCADE"`
}

func (Notebook) TableName() string {
	return "notebooks"
}
