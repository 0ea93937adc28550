package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
)

// ProgrammeMutation 基于当前条目计算新的完整条目集合；返回错误时不写入
type ProgrammeMutation func(current []model.ProgrammeEntry) ([]model.ProgrammeEntry, error)

// ProgrammeEntryRepository 楼层周期表数据访问接口
type ProgrammeEntryRepository interface {
	ListByJob(ctx context.Context, jobID string) ([]model.ProgrammeEntry, error)
	// Mutate 在持有项目锁的同一事务内读取、计算并整体重写项目的全部条目
	Mutate(ctx context.Context, jobID string, fn ProgrammeMutation) error
}

type programmeEntryRepo struct {
	db *gorm.DB
}

// NewProgrammeEntryRepo 创建 ProgrammeEntryRepository 实例
func NewProgrammeEntryRepo(db *gorm.DB) ProgrammeEntryRepository {
	return &programmeEntryRepo{db: db}
}

func (r *programmeEntryRepo) ListByJob(ctx context.Context, jobID string) ([]model.ProgrammeEntry, error) {
	return listProgramme(r.db.WithContext(ctx), jobID)
}

func listProgramme(db *gorm.DB, jobID string) ([]model.ProgrammeEntry, error) {
	var entries []model.ProgrammeEntry
	err := db.
		Where("job_id = ?", jobID).
		Order("sequence_order ASC").
		Find(&entries).Error
	return entries, err
}

func (r *programmeEntryRepo) Mutate(ctx context.Context, jobID string, fn ProgrammeMutation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 先加锁再读取，并发修改按到达顺序串行
		if err := lockJob(tx, "programme_entries", jobID); err != nil {
			return err
		}
		current, err := listProgramme(tx, jobID)
		if err != nil {
			return err
		}
		next, err := fn(current)
		if err != nil {
			return err
		}
		if err := tx.Where("job_id = ?", jobID).Delete(&model.ProgrammeEntry{}).Error; err != nil {
			return err
		}
		if len(next) > 0 {
			if err := tx.Create(&next).Error; err != nil {
				return err
			}
		}
		return nil
	})
}
