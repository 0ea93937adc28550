package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/config"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/repository"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/workcal"
)

// ── 深化设计模块业务错误 ──

var (
	ErrMilestoneNotFound  = errors.New("深化设计节点不存在")
	ErrMilestoneCompleted = errors.New("深化设计节点已完成，不可重新指派")
)

// DraftingService 深化设计计划业务接口
type DraftingService interface {
	// GenerateDraftingProgram 由未完成的生产排期反推每个构件的出图节点；JobID 为空时处理全部项目
	GenerateDraftingProgram(ctx context.Context, req *dto.GenerateDraftingRequest) (*dto.GenerateDraftingResponse, error)
	AssignDraftingResource(ctx context.Context, milestoneID string, req *dto.AssignDraftingRequest, callerID string) (*dto.DraftingMilestoneResponse, error)
	ListMilestones(ctx context.Context, jobID string) ([]dto.DraftingMilestoneResponse, error)
}

type draftingService struct {
	repo      *repository.Repository
	cfg       config.SchedulingConfig
	calendars *calendarResolver
	logger    *zap.Logger
}

// NewDraftingService 创建 DraftingService 实例
func NewDraftingService(repo *repository.Repository, cfg config.SchedulingConfig, logger *zap.Logger) DraftingService {
	return &draftingService{
		repo:      repo,
		cfg:       cfg,
		calendars: newCalendarResolver(repo, cfg, logger),
		logger:    logger,
	}
}

// draftingDays 深化设计各阶段天数（深化设计日历工作日）
type draftingDays struct {
	productionWindow int
	ifcLead          int
	toAchieveIfc     int
}

// resolveDays 覆盖链：项目 > 公司设置 > 系统默认
func resolveDays(jobValue, companyValue *int, fallback int) int {
	if jobValue != nil && *jobValue > 0 {
		return *jobValue
	}
	if companyValue != nil && *companyValue > 0 {
		return *companyValue
	}
	return fallback
}

func (s *draftingService) daysFor(job *model.Job, settings *model.CompanySettings) draftingDays {
	var cw, ci, ca *int
	if settings != nil {
		cw, ci, ca = settings.ProductionWindowDays, settings.IfcDaysInAdvance, settings.DaysToAchieveIfc
	}
	return draftingDays{
		productionWindow: resolveDays(job.ProductionWindowDays, cw, s.cfg.DefaultProductionWindowDays),
		ifcLead:          resolveDays(job.IfcDaysInAdvance, ci, s.cfg.DefaultIfcLeadDays),
		toAchieveIfc:     resolveDays(job.DaysToAchieveIfc, ca, s.cfg.DefaultDaysToAchieveIfc),
	}
}

// ════════════════════════════════════════════════════════════
// GenerateDraftingProgram — 生产日期 → 出图节点
// ════════════════════════════════════════════════════════════
//
//   productionWindowStart = Subtract(productionDate, productionWindow)
//   drawingDue            = Subtract(productionWindowStart, ifcLead)
//   draftingWindowStart   = Subtract(drawingDue, toAchieveIfc)
//
// 已存在的节点只更新日期与关联字段，状态与指派保持不变。

func (s *draftingService) GenerateDraftingProgram(ctx context.Context, req *dto.GenerateDraftingRequest) (*dto.GenerateDraftingResponse, error) {
	jobFilter := ""
	if req != nil {
		jobFilter = req.JobID
	}
	if jobFilter != "" {
		if _, err := s.repo.Job.GetByID(ctx, jobFilter); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrJobNotFound
			}
			s.logger.Error("查询项目失败", zap.String("job_id", jobFilter), zap.Error(err))
			return nil, err
		}
	}

	// 1. 未完成的排期
	slots, err := s.repo.ProductionSlot.ListActive(ctx, jobFilter)
	if err != nil {
		s.logger.Error("查询未完成排期失败", zap.Error(err))
		return nil, err
	}
	resp := &dto.GenerateDraftingResponse{}
	if len(slots) == 0 {
		return resp, nil
	}

	slotsByJob := make(map[string][]*model.ProductionSlot)
	var jobIDs []string
	earliest, latest := slots[0].SlotDate, slots[0].SlotDate
	for i := range slots {
		sl := &slots[i]
		if _, ok := slotsByJob[sl.JobID]; !ok {
			jobIDs = append(jobIDs, sl.JobID)
		}
		slotsByJob[sl.JobID] = append(slotsByJob[sl.JobID], sl)
		if sl.SlotDate.Before(earliest) {
			earliest = sl.SlotDate
		}
		if sl.SlotDate.After(latest) {
			latest = sl.SlotDate
		}
	}

	jobs, err := s.repo.Job.ListByIDs(ctx, jobIDs)
	if err != nil {
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}

	// 2. 深化设计日历（覆盖全部排期日期）
	settings, err := s.calendars.companySettings(ctx)
	if err != nil {
		s.logger.Error("查询公司设置失败", zap.Error(err))
		return nil, err
	}
	cal, err := s.calendars.draftingCalendar(ctx, settings, earliest, latest)
	if err != nil {
		s.logger.Error("解析深化设计日历失败", zap.Error(err))
		return nil, err
	}

	// 3. 逐项目投影
	var creates, updates []model.DraftingMilestone
	for i := range jobs {
		job := &jobs[i]
		c, u, err := s.projectJob(ctx, job, slotsByJob[job.JobID], cal, s.daysFor(job, settings))
		if err != nil {
			return nil, err
		}
		creates = append(creates, c...)
		updates = append(updates, u...)
	}

	// 4. 一个事务内写入
	if err := s.repo.DraftingMilestone.SaveProjection(ctx, creates, updates); err != nil {
		s.logger.Error("写入深化设计节点失败", zap.Error(err))
		return nil, err
	}

	resp.Created = len(creates)
	resp.Updated = len(updates)
	s.logger.Info("深化设计计划已生成",
		zap.String("job_filter", jobFilter),
		zap.Int("jobs", len(jobs)),
		zap.Int("created", resp.Created),
		zap.Int("updated", resp.Updated),
	)
	return resp, nil
}

func (s *draftingService) projectJob(ctx context.Context, job *model.Job, slots []*model.ProductionSlot, cal workcal.Calendar, days draftingDays) ([]model.DraftingMilestone, []model.DraftingMilestone, error) {
	panels, err := s.repo.Panel.ListByJob(ctx, job.JobID)
	if err != nil {
		s.logger.Error("查询项目构件失败", zap.String("job_id", job.JobID), zap.Error(err))
		return nil, nil, err
	}
	if len(panels) == 0 {
		return nil, nil, nil
	}

	slotsByKey := make(map[string][]*model.ProductionSlot, len(slots))
	for _, sl := range slots {
		key := normalizeLevelKey(sl.Level)
		slotsByKey[key] = append(slotsByKey[key], sl)
	}

	panelIDs := make([]string, 0, len(panels))
	for _, p := range panels {
		panelIDs = append(panelIDs, p.PanelID)
	}
	existing, err := s.repo.DraftingMilestone.ListByPanelIDs(ctx, panelIDs)
	if err != nil {
		s.logger.Error("查询已有深化设计节点失败", zap.String("job_id", job.JobID), zap.Error(err))
		return nil, nil, err
	}
	existingByPanel := make(map[string]struct{}, len(existing))
	for _, m := range existing {
		existingByPanel[m.PanelID] = struct{}{}
	}

	var creates, updates []model.DraftingMilestone
	for _, p := range panels {
		slot := matchSlot(slotsByKey[normalizeLevelKey(p.Level)], p.BuildingNumber)
		if slot == nil {
			continue
		}

		productionDate := workcal.Date(slot.SlotDate)
		windowStart := cal.SubtractWorkingDays(productionDate, days.productionWindow)
		drawingDue := cal.SubtractWorkingDays(windowStart, days.ifcLead)
		draftingStart := cal.SubtractWorkingDays(drawingDue, days.toAchieveIfc)

		slotID := slot.SlotID
		m := model.DraftingMilestone{
			PanelID:             p.PanelID,
			JobID:               job.JobID,
			Level:               slot.Level,
			ProductionSlotID:    &slotID,
			ProductionDate:      &productionDate,
			DrawingDueDate:      &drawingDue,
			DraftingWindowStart: &draftingStart,
		}
		if _, ok := existingByPanel[p.PanelID]; ok {
			updates = append(updates, m)
			continue
		}
		m.MilestoneID = uuid.New().String()
		m.Status = model.DraftingStatusNotScheduled
		creates = append(creates, m)
	}
	return creates, updates, nil
}

// matchSlot 同楼层多栋时优先匹配同栋号，否则取第一条
func matchSlot(candidates []*model.ProductionSlot, building int) *model.ProductionSlot {
	if len(candidates) == 0 {
		return nil
	}
	for _, c := range candidates {
		if c.BuildingNumber == building {
			return c
		}
	}
	return candidates[0]
}

// ════════════════════════════════════════════════════════════
// AssignDraftingResource
// ════════════════════════════════════════════════════════════

func (s *draftingService) AssignDraftingResource(ctx context.Context, milestoneID string, req *dto.AssignDraftingRequest, callerID string) (*dto.DraftingMilestoneResponse, error) {
	var proposed *time.Time
	if req.ProposedStartDate != "" {
		d, err := workcal.ParseDate(req.ProposedStartDate)
		if err != nil {
			return nil, ErrInvalidDate
		}
		proposed = &d
	}

	m, err := s.repo.DraftingMilestone.GetByID(ctx, milestoneID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMilestoneNotFound
		}
		s.logger.Error("查询深化设计节点失败", zap.String("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}
	if m.Status == model.DraftingStatusCompleted {
		return nil, ErrMilestoneCompleted
	}

	assignee := req.AssignedResourceID
	m.AssignedResourceID = &assignee
	m.ProposedStartDate = proposed
	m.Status = model.DraftingStatusScheduled
	m.UpdatedBy = &callerID

	if err := s.repo.DraftingMilestone.UpdateAssignment(ctx, m); err != nil {
		s.logger.Error("指派深化设计资源失败", zap.String("milestone_id", milestoneID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("深化设计资源已指派",
		zap.String("milestone_id", milestoneID),
		zap.String("assignee", assignee),
		zap.String("operator", callerID),
	)
	resp := toDraftingMilestoneResponse(m)
	return &resp, nil
}

// ════════════════════════════════════════════════════════════
// ListMilestones
// ════════════════════════════════════════════════════════════

func (s *draftingService) ListMilestones(ctx context.Context, jobID string) ([]dto.DraftingMilestoneResponse, error) {
	if _, err := s.repo.Job.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询项目失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	ms, err := s.repo.DraftingMilestone.ListByJob(ctx, jobID)
	if err != nil {
		s.logger.Error("查询深化设计节点失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DraftingMilestoneResponse, 0, len(ms))
	for i := range ms {
		result = append(result, toDraftingMilestoneResponse(&ms[i]))
	}
	return result, nil
}

func toDraftingMilestoneResponse(m *model.DraftingMilestone) dto.DraftingMilestoneResponse {
	resp := dto.DraftingMilestoneResponse{
		ID:                  m.MilestoneID,
		PanelID:             m.PanelID,
		JobID:               m.JobID,
		Level:               m.Level,
		ProductionSlotID:    m.ProductionSlotID,
		ProductionDate:      formatDatePtr(m.ProductionDate),
		DrawingDueDate:      formatDatePtr(m.DrawingDueDate),
		DraftingWindowStart: formatDatePtr(m.DraftingWindowStart),
		Status:              string(m.Status),
		AssignedResourceID:  m.AssignedResourceID,
		ProposedStartDate:   formatDatePtr(m.ProposedStartDate),
	}
	if m.Panel != nil {
		resp.PanelMark = m.Panel.PanelMark
	}
	return resp
}
