package model

// Panel 构件登记表 — 对应 panels（由构件登记模块维护，本引擎只读）
type Panel struct {
	PanelID        string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"panel_id"`
	JobID          string `gorm:"type:uuid;not null;index"                       json:"job_id"`
	PanelMark      string `gorm:"type:varchar(50);not null"                      json:"panel_mark"`
	BuildingNumber int    `gorm:"not null;default:1"                             json:"building_number"`
	Level          string `gorm:"type:varchar(50);not null"                      json:"level"`
	BaseModel
}

// TableName 指定表名
func (Panel) TableName() string { return "panels" }

// LevelPanelCount 按楼层聚合的构件数量
type LevelPanelCount struct {
	Level string
	Count int
}
