package dbmodels

type Attachment struct {
	BaseModel
	TaskID   string `gorm:"type:varchar(36);index"`
	UserID   string `gorm:"type:varchar(36)"`
	User     *User  `gorm:"foreignKey:UserID"`
	Filename string
	Filepath string
	FileSize int64
	MimeType string `gorm:"type:varchar(255)"`
}

type UploadFileInfo struct {
	TaskID      string
	UserID      string
	FileName    string
	ContentType string
}
