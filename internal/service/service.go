package service

import (
	"go.uber.org/zap"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/config"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/repository"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Slot      SlotService
	Drafting  DraftingService
	Programme ProgrammeService
	Holiday   HolidayService
	Export    ExportService
}

// NewService 创建 Service 聚合；rdb 为 nil 时排期重算只依赖数据库锁
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	var locker JobLocker
	if rdb != nil {
		locker = rdb
	}
	return &Service{
		Slot:      NewSlotService(repo, cfg.Scheduling, locker, logger),
		Drafting:  NewDraftingService(repo, cfg.Scheduling, logger),
		Programme: NewProgrammeService(repo, cfg.Scheduling, logger),
		Holiday:   NewHolidayService(repo, logger),
		Export:    NewExportService(repo, logger),
	}
}
