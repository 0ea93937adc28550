package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Job               JobRepository
	Factory           FactoryRepository
	CompanySettings   CompanySettingsRepository
	Holiday           HolidayRepository
	Panel             PanelRepository
	ProgrammeEntry    ProgrammeEntryRepository
	ProductionSlot    ProductionSlotRepository
	SlotAdjustment    SlotAdjustmentRepository
	DraftingMilestone DraftingMilestoneRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Job:               NewJobRepo(db),
		Factory:           NewFactoryRepo(db),
		CompanySettings:   NewCompanySettingsRepo(db),
		Holiday:           NewHolidayRepo(db),
		Panel:             NewPanelRepo(db),
		ProgrammeEntry:    NewProgrammeEntryRepo(db),
		ProductionSlot:    NewProductionSlotRepo(db),
		SlotAdjustment:    NewSlotAdjustmentRepo(db),
		DraftingMilestone: NewDraftingMilestoneRepo(db),
	}
}
