package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
)

// CompanySettingsRepository 公司排期设置数据访问接口
type CompanySettingsRepository interface {
	Get(ctx context.Context) (*model.CompanySettings, error)
}

type companySettingsRepo struct {
	db *gorm.DB
}

// NewCompanySettingsRepo 创建 CompanySettingsRepository 实例
func NewCompanySettingsRepo(db *gorm.DB) CompanySettingsRepository {
	return &companySettingsRepo{db: db}
}

func (r *companySettingsRepo) Get(ctx context.Context) (*model.CompanySettings, error) {
	var cfg model.CompanySettings
	err := r.db.WithContext(ctx).First(&cfg).Error
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}
