package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
	pkgerrors "github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/errors"
)

// ProductionSlotRepository 生产排期数据访问接口
type ProductionSlotRepository interface {
	GetByID(ctx context.Context, id string) (*model.ProductionSlot, error)
	ListByJob(ctx context.Context, jobID string) ([]model.ProductionSlot, error)
	// ListActive 查询未完成的排期；jobID 为空时查询全部项目
	ListActive(ctx context.Context, jobID string) ([]model.ProductionSlot, error)
	// ReplaceByJob 在同一事务内删除并重建项目的全部排期
	ReplaceByJob(ctx context.Context, jobID string, slots []model.ProductionSlot) error
	UpdateStatus(ctx context.Context, slot *model.ProductionSlot) error
	// ApplyAdjustments 先写调整记录再更新排期日期，整体在一个事务内完成
	ApplyAdjustments(ctx context.Context, slots []*model.ProductionSlot, logs []model.SlotAdjustment) error
	Delete(ctx context.Context, id string) error
}

// SlotAdjustmentRepository 排期调整记录数据访问接口（只读，写入经由 ApplyAdjustments）
type SlotAdjustmentRepository interface {
	ListBySlot(ctx context.Context, slotID string, offset, limit int) ([]model.SlotAdjustment, int64, error)
	ListByJob(ctx context.Context, jobID string) ([]model.SlotAdjustment, error)
}

// lockJob 获取事务级 advisory lock，事务结束时自动释放
func lockJob(tx *gorm.DB, scope, jobID string) error {
	return tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", scope+":"+jobID).Error
}

// ── ProductionSlot Repository 实现 ──

type productionSlotRepo struct {
	db *gorm.DB
}

// NewProductionSlotRepo 创建 ProductionSlotRepository 实例
func NewProductionSlotRepo(db *gorm.DB) ProductionSlotRepository {
	return &productionSlotRepo{db: db}
}

func (r *productionSlotRepo) GetByID(ctx context.Context, id string) (*model.ProductionSlot, error) {
	var slot model.ProductionSlot
	err := r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		First(&slot).Error
	if err != nil {
		return nil, err
	}
	return &slot, nil
}

func (r *productionSlotRepo) ListByJob(ctx context.Context, jobID string) ([]model.ProductionSlot, error) {
	var slots []model.ProductionSlot
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("level_order ASC, building_number ASC").
		Find(&slots).Error
	return slots, err
}

func (r *productionSlotRepo) ListActive(ctx context.Context, jobID string) ([]model.ProductionSlot, error) {
	var slots []model.ProductionSlot
	db := r.db.WithContext(ctx).
		Where("status != ?", model.SlotStatusCompleted)
	if jobID != "" {
		db = db.Where("job_id = ?", jobID)
	}
	err := db.Order("job_id ASC, level_order ASC").Find(&slots).Error
	return slots, err
}

func (r *productionSlotRepo) ReplaceByJob(ctx context.Context, jobID string, slots []model.ProductionSlot) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockJob(tx, "production_slots", jobID); err != nil {
			return err
		}
		// 硬删除：整表重建，调整历史保存在 slot_adjustments 中
		if err := tx.Where("job_id = ?", jobID).Delete(&model.ProductionSlot{}).Error; err != nil {
			return err
		}
		if len(slots) > 0 {
			if err := tx.Create(&slots).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *productionSlotRepo) UpdateStatus(ctx context.Context, slot *model.ProductionSlot) error {
	return updateSlotVersioned(r.db.WithContext(ctx), slot)
}

func (r *productionSlotRepo) ApplyAdjustments(ctx context.Context, slots []*model.ProductionSlot, logs []model.SlotAdjustment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(logs) > 0 {
			if err := tx.Create(&logs).Error; err != nil {
				return err
			}
		}
		for _, slot := range slots {
			if err := updateSlotVersioned(tx, slot); err != nil {
				return err
			}
		}
		return nil
	})
}

// updateSlotVersioned 带版本号校验的更新；失败时不修改内存中的版本号
func updateSlotVersioned(db *gorm.DB, slot *model.ProductionSlot) error {
	oldVersion := slot.Version
	result := db.
		Model(&model.ProductionSlot{}).
		Where("slot_id = ? AND version = ?", slot.SlotID, oldVersion).
		Updates(map[string]interface{}{
			"slot_date":  slot.SlotDate,
			"status":     slot.Status,
			"is_booked":  slot.IsBooked,
			"updated_by": slot.UpdatedBy,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	slot.Version = oldVersion + 1
	return nil
}

func (r *productionSlotRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("slot_id = ?", id).
		Delete(&model.ProductionSlot{}).Error
}

// ── SlotAdjustment Repository 实现 ──

type slotAdjustmentRepo struct {
	db *gorm.DB
}

// NewSlotAdjustmentRepo 创建 SlotAdjustmentRepository 实例
func NewSlotAdjustmentRepo(db *gorm.DB) SlotAdjustmentRepository {
	return &slotAdjustmentRepo{db: db}
}

func (r *slotAdjustmentRepo) ListBySlot(ctx context.Context, slotID string, offset, limit int) ([]model.SlotAdjustment, int64, error) {
	var logs []model.SlotAdjustment
	var total int64

	db := r.db.WithContext(ctx).Model(&model.SlotAdjustment{}).
		Where("slot_id = ?", slotID)

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&logs).Error
	return logs, total, err
}

func (r *slotAdjustmentRepo) ListByJob(ctx context.Context, jobID string) ([]model.SlotAdjustment, error) {
	var logs []model.SlotAdjustment
	err := r.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Order("created_at ASC").
		Find(&logs).Error
	return logs, err
}
