package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
)

// HolidayRepository 节假日数据访问接口
type HolidayRepository interface {
	Create(ctx context.Context, h *model.Holiday) error
	GetByID(ctx context.Context, id string) (*model.Holiday, error)
	// ListByTypes 查询指定日历类型在 [from, to] 内的节假日
	ListByTypes(ctx context.Context, calendarTypes []string, from, to time.Time) ([]model.Holiday, error)
	// BatchUpsert 按 (calendar_type, date) 幂等写入，已存在时仅更新名称
	BatchUpsert(ctx context.Context, holidays []model.Holiday) (int64, error)
	Delete(ctx context.Context, id string) error
}

type holidayRepo struct {
	db *gorm.DB
}

// NewHolidayRepo 创建 HolidayRepository 实例
func NewHolidayRepo(db *gorm.DB) HolidayRepository {
	return &holidayRepo{db: db}
}

func (r *holidayRepo) Create(ctx context.Context, h *model.Holiday) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *holidayRepo) GetByID(ctx context.Context, id string) (*model.Holiday, error) {
	var h model.Holiday
	err := r.db.WithContext(ctx).
		Where("holiday_id = ?", id).
		First(&h).Error
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func (r *holidayRepo) ListByTypes(ctx context.Context, calendarTypes []string, from, to time.Time) ([]model.Holiday, error) {
	var holidays []model.Holiday
	err := r.db.WithContext(ctx).
		Where("calendar_type IN ? AND date BETWEEN ? AND ?", calendarTypes, from, to).
		Order("date ASC").
		Find(&holidays).Error
	return holidays, err
}

func (r *holidayRepo) BatchUpsert(ctx context.Context, holidays []model.Holiday) (int64, error) {
	if len(holidays) == 0 {
		return 0, nil
	}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "calendar_type"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "updated_at"}),
		}).
		Create(&holidays)
	return result.RowsAffected, result.Error
}

func (r *holidayRepo) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Where("holiday_id = ?", id).
		Delete(&model.Holiday{}).Error
}
