package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
)

// PanelRepository 构件登记数据访问接口（只读）
type PanelRepository interface {
	// CountByLevel 统计某项目各楼层的构件数量
	CountByLevel(ctx context.Context, jobID string) ([]model.LevelPanelCount, error)
	ListByJob(ctx context.Context, jobID string) ([]model.Panel, error)
}

type panelRepo struct {
	db *gorm.DB
}

// NewPanelRepo 创建 PanelRepository 实例
func NewPanelRepo(db *gorm.DB) PanelRepository {
	return &panelRepo{db: db}
}

func (r *panelRepo) CountByLevel(ctx context.Context, jobID string) ([]model.LevelPanelCount, error) {
	var counts []model.LevelPanelCount
	err := r.db.WithContext(ctx).
		Model(&model.Panel{}).
		Select("level, COUNT(*) AS count").
		Where("job_id = ?", jobID).
		Group("level").
		Scan(&counts).Error
	return counts, err
}

func (r *panelRepo) ListByJob(ctx context.Context, jobID string) ([]model.Panel, error) {
	var panels []model.Panel
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("level ASC, panel_mark ASC").
		Find(&panels).Error
	return panels, err
}
