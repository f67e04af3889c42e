package model

type MaterialStatus string

const (
	MaterialInProgress MaterialStatus = "in_progress"
	MaterialCompleted  MaterialStatus = "completed"
)

// swagger:model Material
type Material struct {
	UUIDBase
	ClassID    string `gorm:"index;type:varchar(36)" json:"classId"`
	Topic      string `gorm:"size:255" json:"topic"`
	Title      string `gorm:"size:255;not null" json:"title"`
	FileURL    string `gorm:"size:512" json:"fileUrl"`
	UploaderID uint   `gorm:"type:bigint unsigned" json:"uploaderId"`
}

func (Material) TableName() string {
	return "materials"
}

// MaterialProgress records a student's completion state for one material.
type MaterialProgress struct {
	UUIDBase
	MaterialID string         `gorm:"type:varchar(36);uniqueIndex:idx_material_user" json:"materialId"`
	UserID     uint           `gorm:"type:bigint unsigned;uniqueIndex:idx_material_user" json:"userId"`
	Status     MaterialStatus `gorm:"size:20;default:'in_progress'" json:"status"`
}

func (MaterialProgress) TableName() string {
	return "materials_progress"
}
