package dbmodels

type Comment struct {
	BaseModel
	TaskID  string `gorm:"type:varchar(36);index"`
	UserID  string `gorm:"type:varchar(36)"`
	User    *User  `gorm:"foreignKey:UserID"`
	Content string
}
