package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
)

// JobRepository 项目数据访问接口（只读）
type JobRepository interface {
	GetByID(ctx context.Context, id string) (*model.Job, error)
	ListByIDs(ctx context.Context, ids []string) ([]model.Job, error)
}

type jobRepo struct {
	db *gorm.DB
}

// NewJobRepo 创建 JobRepository 实例
func NewJobRepo(db *gorm.DB) JobRepository {
	return &jobRepo{db: db}
}

func (r *jobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	var job model.Job
	err := r.db.WithContext(ctx).
		Preload("Factory").
		Where("job_id = ?", id).
		First(&job).Error
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *jobRepo) ListByIDs(ctx context.Context, ids []string) ([]model.Job, error) {
	var jobs []model.Job
	if len(ids) == 0 {
		return jobs, nil
	}
	err := r.db.WithContext(ctx).
		Where("job_id IN ?", ids).
		Find(&jobs).Error
	return jobs, err
}

// ── Factory Repository ──

// FactoryRepository 工厂数据访问接口（只读）
type FactoryRepository interface {
	GetByID(ctx context.Context, id string) (*model.Factory, error)
}

type factoryRepo struct {
	db *gorm.DB
}

// NewFactoryRepo 创建 FactoryRepository 实例
func NewFactoryRepo(db *gorm.DB) FactoryRepository {
	return &factoryRepo{db: db}
}

func (r *factoryRepo) GetByID(ctx context.Context, id string) (*model.Factory, error) {
	var f model.Factory
	err := r.db.WithContext(ctx).
		Where("factory_id = ?", id).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}
