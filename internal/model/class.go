package model

// swagger:model Class
type Class struct {
	UUIDBase
	Name        string `gorm:"size:255;not null" json:"name"`
	Description string `gorm:"type:text" json:"description"`
	TeacherID   uint   `gorm:"index;type:bigint unsigned" json:"teacherId"`
	Archived    bool   `gorm:"default:false" json:"archived"`
}

func (Class) TableName() string {
	return "classes"
}

type ClassMember struct {
	UUIDBase
	ClassID string `gorm:"index;type:varchar(36);uniqueIndex:idx_class_user" json:"classId"`
	UserID  uint   `gorm:"type:bigint unsigned;uniqueIndex:idx_class_user" json:"userId"`
}

func (ClassMember) TableName() string {
	return "class_members"
}
