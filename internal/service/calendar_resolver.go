package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/config"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/repository"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/workcal"
)

// calendarResolver 每次调用解析一次 项目 > 工厂 > 公司 的覆盖链，产出不可变的日历值
type calendarResolver struct {
	repo   *repository.Repository
	cfg    config.SchedulingConfig
	logger *zap.Logger
}

func newCalendarResolver(repo *repository.Repository, cfg config.SchedulingConfig, logger *zap.Logger) *calendarResolver {
	return &calendarResolver{repo: repo, cfg: cfg, logger: logger}
}

// holidayTypesFor 日历类型 → 需要加载的节假日类型（州日历同时包含 BOTH）
func holidayTypesFor(calendarType string) []string {
	switch calendarType {
	case model.CalendarTypeNSW:
		return []string{model.CalendarTypeNSW, model.CalendarTypeBoth}
	case model.CalendarTypeBoth:
		return []string{model.CalendarTypeVIC, model.CalendarTypeNSW, model.CalendarTypeBoth}
	default:
		return []string{model.CalendarTypeVIC, model.CalendarTypeBoth}
	}
}

// companySettings 读取公司设置；未初始化时返回 nil（各字段回落默认值）
func (r *calendarResolver) companySettings(ctx context.Context) (*model.CompanySettings, error) {
	settings, err := r.repo.CompanySettings.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return settings, nil
}

// factoryFor 返回项目关联的工厂；未关联或不存在时返回 nil
func (r *calendarResolver) factoryFor(ctx context.Context, job *model.Job) (*model.Factory, error) {
	if job.Factory != nil {
		return job.Factory, nil
	}
	if job.FactoryID == nil || *job.FactoryID == "" {
		return nil, nil
	}
	f, err := r.repo.Factory.GetByID(ctx, *job.FactoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			r.logger.Warn("项目关联的工厂不存在，使用公司默认日历",
				zap.String("job_id", job.JobID), zap.String("factory_id", *job.FactoryID))
			return nil, nil
		}
		return nil, err
	}
	return f, nil
}

// maskOrDefault 解析存储的掩码；无效或没有工作日时返回 ok=false
func (r *calendarResolver) maskOrDefault(days model.IntArray, source string) (workcal.Mask, bool) {
	if len(days) == 0 {
		return workcal.MondayToFriday, false
	}
	m, err := workcal.MaskFromInts(days)
	if err != nil || !m.HasWorkingDay() {
		r.logger.Warn("工作日掩码无效，忽略该配置", zap.String("source", source), zap.Ints("work_days", days), zap.Error(err))
		return workcal.MondayToFriday, false
	}
	return m, true
}

// productionCalendar 解析项目的生产日历
// 工厂存在且不继承公司设置 → 工厂掩码；否则 → 公司生产掩码；都不可用 → 周一至周五
func (r *calendarResolver) productionCalendar(ctx context.Context, job *model.Job, around time.Time) (workcal.Calendar, error) {
	factory, err := r.factoryFor(ctx, job)
	if err != nil {
		return workcal.Calendar{}, err
	}
	settings, err := r.companySettings(ctx)
	if err != nil {
		return workcal.Calendar{}, err
	}

	mask, resolved := workcal.MondayToFriday, false
	if factory != nil && !factory.InheritWorkDays {
		mask, resolved = r.maskOrDefault(factory.WorkDays, "factory")
	}
	if !resolved && settings != nil {
		mask, _ = r.maskOrDefault(settings.ProductionWorkDays, "company")
	}

	calendarType := model.CalendarTypeVIC
	if factory != nil && model.IsValidCalendarType(factory.CalendarType) {
		calendarType = factory.CalendarType
	}

	from := around.AddDate(-r.cfg.HolidayWindowYears, 0, 0)
	to := around.AddDate(r.cfg.HolidayWindowYears, 0, 0)
	return r.build(ctx, mask, calendarType, from, to)
}

// draftingCalendar 解析深化设计日历（公司深化设计掩码 + 公司深化设计节假日类型）
func (r *calendarResolver) draftingCalendar(ctx context.Context, settings *model.CompanySettings, from, to time.Time) (workcal.Calendar, error) {
	mask := workcal.MondayToFriday
	calendarType := model.CalendarTypeVIC
	if settings != nil {
		mask, _ = r.maskOrDefault(settings.DraftingWorkDays, "company_drafting")
		if model.IsValidCalendarType(settings.DraftingCalendarType) {
			calendarType = settings.DraftingCalendarType
		}
	}
	return r.build(ctx, mask, calendarType,
		from.AddDate(-r.cfg.HolidayWindowYears, 0, 0),
		to.AddDate(r.cfg.HolidayWindowYears, 0, 0))
}

func (r *calendarResolver) build(ctx context.Context, mask workcal.Mask, calendarType string, from, to time.Time) (workcal.Calendar, error) {
	holidays, err := r.repo.Holiday.ListByTypes(ctx, holidayTypesFor(calendarType), workcal.Date(from), workcal.Date(to))
	if err != nil {
		return workcal.Calendar{}, err
	}
	dates := make([]time.Time, 0, len(holidays))
	for _, h := range holidays {
		dates = append(dates, h.Date)
	}
	cal, err := workcal.New(mask, dates)
	if err != nil {
		return workcal.Calendar{}, err
	}
	r.logger.Debug("工作日历已解析",
		zap.String("calendar_type", calendarType),
		zap.Ints("work_days", mask.Ints()),
		zap.Int("holidays", cal.HolidayCount()),
	)
	return cal, nil
}
