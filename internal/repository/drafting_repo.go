package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
)

// DraftingMilestoneRepository 深化设计节点数据访问接口
type DraftingMilestoneRepository interface {
	GetByID(ctx context.Context, id string) (*model.DraftingMilestone, error)
	ListByPanelIDs(ctx context.Context, panelIDs []string) ([]model.DraftingMilestone, error)
	ListByJob(ctx context.Context, jobID string) ([]model.DraftingMilestone, error)
	// SaveProjection 一个事务内新建 creates，并仅更新 updates 的日期与关联字段（保留状态与指派）
	SaveProjection(ctx context.Context, creates []model.DraftingMilestone, updates []model.DraftingMilestone) error
	UpdateAssignment(ctx context.Context, m *model.DraftingMilestone) error
}

type draftingMilestoneRepo struct {
	db *gorm.DB
}

// NewDraftingMilestoneRepo 创建 DraftingMilestoneRepository 实例
func NewDraftingMilestoneRepo(db *gorm.DB) DraftingMilestoneRepository {
	return &draftingMilestoneRepo{db: db}
}

func (r *draftingMilestoneRepo) GetByID(ctx context.Context, id string) (*model.DraftingMilestone, error) {
	var m model.DraftingMilestone
	err := r.db.WithContext(ctx).
		Where("milestone_id = ?", id).
		First(&m).Error
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *draftingMilestoneRepo) ListByPanelIDs(ctx context.Context, panelIDs []string) ([]model.DraftingMilestone, error) {
	var ms []model.DraftingMilestone
	if len(panelIDs) == 0 {
		return ms, nil
	}
	err := r.db.WithContext(ctx).
		Where("panel_id IN ?", panelIDs).
		Find(&ms).Error
	return ms, err
}

func (r *draftingMilestoneRepo) ListByJob(ctx context.Context, jobID string) ([]model.DraftingMilestone, error) {
	var ms []model.DraftingMilestone
	err := r.db.WithContext(ctx).
		Preload("Panel").
		Where("job_id = ?", jobID).
		Order("drafting_window_start ASC NULLS LAST, level ASC").
		Find(&ms).Error
	return ms, err
}

func (r *draftingMilestoneRepo) SaveProjection(ctx context.Context, creates []model.DraftingMilestone, updates []model.DraftingMilestone) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(creates) > 0 {
			if err := tx.CreateInBatches(&creates, 200).Error; err != nil {
				return err
			}
		}
		for _, m := range updates {
			err := tx.Model(&model.DraftingMilestone{}).
				Where("panel_id = ?", m.PanelID).
				Updates(map[string]interface{}{
					"job_id":                m.JobID,
					"level":                 m.Level,
					"production_slot_id":    m.ProductionSlotID,
					"production_date":       m.ProductionDate,
					"drawing_due_date":      m.DrawingDueDate,
					"drafting_window_start": m.DraftingWindowStart,
					"updated_at":            gorm.Expr("CURRENT_TIMESTAMP"),
				}).Error
			if err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *draftingMilestoneRepo) UpdateAssignment(ctx context.Context, m *model.DraftingMilestone) error {
	return r.db.WithContext(ctx).
		Model(&model.DraftingMilestone{}).
		Where("milestone_id = ?", m.MilestoneID).
		Updates(map[string]interface{}{
			"assigned_resource_id": m.AssignedResourceID,
			"proposed_start_date":  m.ProposedStartDate,
			"status":               m.Status,
			"updated_by":           m.UpdatedBy,
			"updated_at":           gorm.Expr("CURRENT_TIMESTAMP"),
		}).Error
}
