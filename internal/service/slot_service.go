package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/config"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/repository"
	pkgerrors "github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/errors"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/workcal"
)

// ── 生产排期模块业务错误 ──

var (
	ErrJobNotFound            = errors.New("项目不存在")
	ErrSlotNotFound           = errors.New("生产排期不存在")
	ErrJobMissingStartDate    = errors.New("项目未设置生产开始日期")
	ErrJobMissingCycleTime    = errors.New("项目未设置有效的每层生产周期")
	ErrLevelRangeUnresolvable = errors.New("无法解析项目楼层范围")
	ErrInvalidDate            = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrInvalidSlotTransition  = errors.New("排期当前状态不允许该操作")
	ErrRegenerationInProgress = errors.New("该项目排期正在重新生成，请稍后重试")
)

// IsValidationError 是否为输入/项目数据校验类错误（对应 400）
func IsValidationError(err error) bool {
	return errors.Is(err, ErrJobMissingStartDate) ||
		errors.Is(err, ErrJobMissingCycleTime) ||
		errors.Is(err, ErrLevelRangeUnresolvable) ||
		errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidCycleDays) ||
		errors.Is(err, ErrDuplicateProgrammeEntry) ||
		errors.Is(err, ErrReorderUnknownEntry) ||
		errors.Is(err, ErrInvalidCalendarType) ||
		errors.Is(err, ErrInvalidICS)
}

const (
	timestampLayout = "2006-01-02T15:04:05Z"
	defaultBuilding = 1
	slotLockScope   = "slots"
)

// slotNamespace 排期 ID 的 UUIDv5 命名空间；(job, building, level) 相同则 ID 相同
var slotNamespace = uuid.MustParse("6f1c2a8e-4b7d-5e90-9a3c-2d8e7f1b4c60")

// JobLocker 项目级互斥锁（Redis 实现见 pkg/redis）
type JobLocker interface {
	AcquireJobLock(ctx context.Context, scope, jobID string, ttl time.Duration) (func(), error)
}

// SlotService 生产排期业务接口
type SlotService interface {
	// GenerateSlots 按项目楼层与周期重新生成全部排期（整体替换）
	GenerateSlots(ctx context.Context, jobID string, req *dto.GenerateSlotsRequest, callerID string) (*dto.GenerateSlotsResponse, error)
	ListSlots(ctx context.Context, jobID string) ([]dto.SlotResponse, error)
	// AdjustSlot 调整排期日期，可选级联顺延后续楼层
	AdjustSlot(ctx context.Context, slotID string, req *dto.AdjustSlotRequest, callerID string) (*dto.AdjustSlotResponse, error)
	BookSlot(ctx context.Context, slotID, callerID string) (*dto.SlotResponse, error)
	CompleteSlot(ctx context.Context, slotID, callerID string) (*dto.SlotResponse, error)
	DeleteSlot(ctx context.Context, slotID string) error
	ListAdjustments(ctx context.Context, slotID string, req *dto.SlotAdjustmentListRequest) ([]dto.SlotAdjustmentResponse, int64, error)
	// CheckLevelCoverage 对比项目楼层与构件登记楼层（仅诊断，不修改数据）
	CheckLevelCoverage(ctx context.Context, jobID string) (*dto.LevelCoverageResponse, error)
}

type slotService struct {
	repo      *repository.Repository
	cfg       config.SchedulingConfig
	calendars *calendarResolver
	locker    JobLocker
	logger    *zap.Logger
}

// NewSlotService 创建 SlotService 实例；locker 可为 nil（仅依赖数据库 advisory lock）
func NewSlotService(repo *repository.Repository, cfg config.SchedulingConfig, locker JobLocker, logger *zap.Logger) SlotService {
	return &slotService{
		repo:      repo,
		cfg:       cfg,
		calendars: newCalendarResolver(repo, cfg, logger),
		locker:    locker,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// GenerateSlots — 逆推楼层生产日期
// ════════════════════════════════════════════════════════════
//
// 对排序后的每个楼层：
//   onSite = AddWorkingDays(start, 之前各层周期之和)
//   slot   = SubtractWorkingDays(onSite, leadDays)

func (s *slotService) GenerateSlots(ctx context.Context, jobID string, req *dto.GenerateSlotsRequest, callerID string) (*dto.GenerateSlotsResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	// 1. 项目数据校验
	if job.ProductionStartDate == nil {
		return nil, ErrJobMissingStartDate
	}
	if job.ExpectedCycleTimePerFloor == nil || *job.ExpectedCycleTimePerFloor <= 0 {
		return nil, ErrJobMissingCycleTime
	}
	start := workcal.Date(*job.ProductionStartDate)

	var warnings []string

	// 2. 楼层解析与排序
	resolved := ResolveLevelRange(job.LowestLevel, job.HighestLevel, job.Levels)
	if len(resolved.Levels) == 0 {
		return nil, ErrLevelRangeUnresolvable
	}
	if resolved.Lossy {
		warnings = append(warnings, fmt.Sprintf("楼层范围 %s ~ %s 无法展开，仅按上下限两层生成", job.LowestLevel, job.HighestLevel))
	}
	for _, dup := range resolved.Duplicates {
		warnings = append(warnings, fmt.Sprintf("楼层列表中 %s 重复，已忽略", dup))
	}
	levels := SortLevels(resolved.Levels)

	// 3. 构件数量
	counts, err := s.panelCountsByKey(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if req != nil && req.SkipEmptyLevels {
		kept := levels[:0:0]
		for _, level := range levels {
			if counts[normalizeLevelKey(level)] > 0 {
				kept = append(kept, level)
			}
		}
		if skipped := len(levels) - len(kept); skipped > 0 {
			warnings = append(warnings, fmt.Sprintf("已跳过 %d 个无构件楼层", skipped))
		}
		levels = kept
	}

	// 4. 每层周期：1 号楼周期表条目之和（分段浇筑累加），否则取项目默认值
	cycles, err := s.programmeCycles(ctx, jobID)
	if err != nil {
		return nil, err
	}

	// 5. 生产日历
	cal, err := s.calendars.productionCalendar(ctx, job, start)
	if err != nil {
		s.logger.Error("解析生产日历失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}

	leadDays := s.cfg.DefaultLeadDays
	if job.DaysInAdvance != nil && *job.DaysInAdvance >= 0 {
		leadDays = *job.DaysInAdvance
	}

	// 6. 项目级互斥（Redis 可选，数据库 advisory lock 始终生效）
	release, err := s.acquireLock(ctx, jobID)
	if err != nil {
		return nil, err
	}
	defer release()

	// 7. 被重置的已预订/已完成/待确认排期
	existing, err := s.repo.ProductionSlot.ListByJob(ctx, jobID)
	if err != nil {
		s.logger.Error("查询已有排期失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	for _, old := range existing {
		if old.Status != model.SlotStatusScheduled {
			warnings = append(warnings, fmt.Sprintf("楼层 %s 的排期（状态 %s，日期 %s）已被重置",
				old.Level, old.Status, old.SlotDate.Format(workcal.DateLayout)))
		}
	}

	// 8. 逐层推算
	slots := make([]model.ProductionSlot, 0, len(levels))
	running := 0
	for i, level := range levels {
		key := normalizeLevelKey(level)
		cycle := *job.ExpectedCycleTimePerFloor
		if c, ok := cycles[key]; ok {
			cycle = c
		}

		onSite := cal.AddWorkingDays(start, running)
		slotDate := cal.SubtractWorkingDays(onSite, leadDays)
		running += cycle

		slot := model.ProductionSlot{
			SlotID:         slotIDFor(jobID, defaultBuilding, level),
			JobID:          jobID,
			BuildingNumber: defaultBuilding,
			Level:          level,
			LevelOrder:     i + 1,
			PanelCount:     counts[key],
			SlotDate:       slotDate,
			Status:         model.SlotStatusScheduled,
		}
		slot.Version = 1
		slot.CreatedBy = &callerID
		slot.UpdatedBy = &callerID
		slots = append(slots, slot)
	}

	// 9. 整体替换
	if err := s.repo.ProductionSlot.ReplaceByJob(ctx, jobID, slots); err != nil {
		s.logger.Error("写入生产排期失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("生产排期已生成",
		zap.String("job_id", jobID),
		zap.Int("levels", len(slots)),
		zap.Int("lead_days", leadDays),
		zap.Int("warnings", len(warnings)),
	)

	resp := &dto.GenerateSlotsResponse{
		JobID:    jobID,
		Slots:    make([]dto.SlotResponse, 0, len(slots)),
		Warnings: warnings,
	}
	if resp.Warnings == nil {
		resp.Warnings = []string{}
	}
	for i := range slots {
		resp.Slots = append(resp.Slots, toSlotResponse(&slots[i]))
	}
	return resp, nil
}

func slotIDFor(jobID string, building int, level string) string {
	return uuid.NewSHA1(slotNamespace, []byte(jobID+"|"+strconv.Itoa(building)+"|"+level)).String()
}

func (s *slotService) acquireLock(ctx context.Context, jobID string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	release, err := s.locker.AcquireJobLock(ctx, slotLockScope, jobID, s.cfg.RegenLockTTL)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrLockNotAcquired) {
			return nil, ErrRegenerationInProgress
		}
		// Redis 不可用时降级为仅数据库锁
		s.logger.Warn("获取 Redis 项目锁失败，降级为数据库锁", zap.String("job_id", jobID), zap.Error(err))
		return func() {}, nil
	}
	return release, nil
}

func (s *slotService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.repo.Job.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		s.logger.Error("查询项目失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return job, nil
}

// panelCountsByKey 按楼层比较键汇总构件数量
func (s *slotService) panelCountsByKey(ctx context.Context, jobID string) (map[string]int, error) {
	rows, err := s.repo.Panel.CountByLevel(ctx, jobID)
	if err != nil {
		s.logger.Error("统计楼层构件数量失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[normalizeLevelKey(r.Level)] += r.Count
	}
	return counts, nil
}

func (s *slotService) programmeCycles(ctx context.Context, jobID string) (map[string]int, error) {
	entries, err := s.repo.ProgrammeEntry.ListByJob(ctx, jobID)
	if err != nil {
		s.logger.Error("查询楼层周期表失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	cycles := make(map[string]int)
	for _, e := range entries {
		if e.BuildingNumber != defaultBuilding {
			continue
		}
		cycles[normalizeLevelKey(e.Level)] += e.CycleDays
	}
	return cycles, nil
}

// ════════════════════════════════════════════════════════════
// ListSlots
// ════════════════════════════════════════════════════════════

func (s *slotService) ListSlots(ctx context.Context, jobID string) ([]dto.SlotResponse, error) {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return nil, err
	}
	slots, err := s.repo.ProductionSlot.ListByJob(ctx, jobID)
	if err != nil {
		s.logger.Error("查询生产排期失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.SlotResponse, 0, len(slots))
	for i := range slots {
		result = append(result, toSlotResponse(&slots[i]))
	}
	return result, nil
}

// ════════════════════════════════════════════════════════════
// AdjustSlot — 日期调整与级联顺延
// ════════════════════════════════════════════════════════════
//
// 级联：delta = 新日期 - 原日期（日历日）；同项目 level_order >= 源排期的其他排期
// 统一平移 delta（不区分状态），每条写一条级联调整记录。

func (s *slotService) AdjustSlot(ctx context.Context, slotID string, req *dto.AdjustSlotRequest, callerID string) (*dto.AdjustSlotResponse, error) {
	newDate, err := workcal.ParseDate(req.NewDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	slot, err := s.getSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !slot.Status.CanTransitionTo(model.SlotStatusPendingUpdate) {
		return nil, ErrInvalidSlotTransition
	}

	prevDate := workcal.Date(slot.SlotDate)
	delta := workcal.DaysBetween(prevDate, newDate)
	originID := uuid.New().String()

	logs := []model.SlotAdjustment{{
		AdjustmentID:    originID,
		SlotID:          slot.SlotID,
		JobID:           slot.JobID,
		PreviousDate:    prevDate,
		NewDate:         newDate,
		Reason:          req.Reason,
		ChangedBy:       callerID,
		ClientConfirmed: req.ClientConfirmed,
	}}
	slot.SlotDate = newDate
	slot.Status = model.SlotStatusPendingUpdate
	slot.UpdatedBy = &callerID
	changed := []*model.ProductionSlot{slot}

	if req.CascadeToLater && delta != 0 {
		others, err := s.repo.ProductionSlot.ListByJob(ctx, slot.JobID)
		if err != nil {
			s.logger.Error("查询同项目排期失败", zap.String("job_id", slot.JobID), zap.Error(err))
			return nil, err
		}
		for i := range others {
			o := &others[i]
			if o.SlotID == slot.SlotID || o.LevelOrder < slot.LevelOrder {
				continue
			}
			prev := workcal.Date(o.SlotDate)
			shifted := prev.AddDate(0, 0, delta)
			origin := originID
			logs = append(logs, model.SlotAdjustment{
				AdjustmentID:       uuid.New().String(),
				SlotID:             o.SlotID,
				JobID:              o.JobID,
				PreviousDate:       prev,
				NewDate:            shifted,
				Reason:             fmt.Sprintf("级联调整（源调整 %s）：%s", originID, req.Reason),
				ChangedBy:          callerID,
				ClientConfirmed:    req.ClientConfirmed,
				Cascaded:           true,
				OriginAdjustmentID: &origin,
			})
			o.SlotDate = shifted
			o.UpdatedBy = &callerID
			changed = append(changed, o)
		}
	}

	if err := s.repo.ProductionSlot.ApplyAdjustments(ctx, changed, logs); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("写入排期调整失败", zap.String("slot_id", slotID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("排期已调整",
		zap.String("slot_id", slotID),
		zap.String("previous_date", prevDate.Format(workcal.DateLayout)),
		zap.String("new_date", newDate.Format(workcal.DateLayout)),
		zap.Int("cascaded", len(changed)-1),
		zap.String("operator", callerID),
	)

	resp := &dto.AdjustSlotResponse{
		Slot:          toSlotResponse(slot),
		Adjustments:   make([]dto.SlotAdjustmentResponse, 0, len(logs)),
		CascadedCount: len(changed) - 1,
	}
	for i := range logs {
		resp.Adjustments = append(resp.Adjustments, toSlotAdjustmentResponse(&logs[i]))
	}
	return resp, nil
}

// ════════════════════════════════════════════════════════════
// BookSlot / CompleteSlot / DeleteSlot
// ════════════════════════════════════════════════════════════

func (s *slotService) BookSlot(ctx context.Context, slotID, callerID string) (*dto.SlotResponse, error) {
	return s.transition(ctx, slotID, model.SlotStatusBooked, callerID)
}

func (s *slotService) CompleteSlot(ctx context.Context, slotID, callerID string) (*dto.SlotResponse, error) {
	return s.transition(ctx, slotID, model.SlotStatusCompleted, callerID)
}

func (s *slotService) transition(ctx context.Context, slotID string, next model.SlotStatus, callerID string) (*dto.SlotResponse, error) {
	slot, err := s.getSlot(ctx, slotID)
	if err != nil {
		return nil, err
	}
	if !slot.Status.CanTransitionTo(next) {
		return nil, ErrInvalidSlotTransition
	}

	slot.Status = next
	if next == model.SlotStatusBooked {
		slot.IsBooked = true
	}
	slot.UpdatedBy = &callerID

	if err := s.repo.ProductionSlot.UpdateStatus(ctx, slot); err != nil {
		if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
			s.logger.Error("更新排期状态失败", zap.String("slot_id", slotID), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("排期状态已变更",
		zap.String("slot_id", slotID),
		zap.String("status", string(next)),
		zap.String("operator", callerID),
	)

	resp := toSlotResponse(slot)
	return &resp, nil
}

func (s *slotService) DeleteSlot(ctx context.Context, slotID string) error {
	if _, err := s.getSlot(ctx, slotID); err != nil {
		return err
	}
	if err := s.repo.ProductionSlot.Delete(ctx, slotID); err != nil {
		s.logger.Error("删除排期失败", zap.String("slot_id", slotID), zap.Error(err))
		return err
	}
	return nil
}

func (s *slotService) getSlot(ctx context.Context, slotID string) (*model.ProductionSlot, error) {
	slot, err := s.repo.ProductionSlot.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("查询排期失败", zap.String("slot_id", slotID), zap.Error(err))
		return nil, err
	}
	if !slot.Status.IsValid() {
		s.logger.Error("排期状态无效", zap.String("slot_id", slotID), zap.String("status", string(slot.Status)))
		return nil, fmt.Errorf("排期 %s 状态无效: %q", slotID, slot.Status)
	}
	return slot, nil
}

// ════════════════════════════════════════════════════════════
// ListAdjustments
// ════════════════════════════════════════════════════════════

func (s *slotService) ListAdjustments(ctx context.Context, slotID string, req *dto.SlotAdjustmentListRequest) ([]dto.SlotAdjustmentResponse, int64, error) {
	if _, err := s.getSlot(ctx, slotID); err != nil {
		return nil, 0, err
	}
	logs, total, err := s.repo.SlotAdjustment.ListBySlot(ctx, slotID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询调整记录失败", zap.String("slot_id", slotID), zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.SlotAdjustmentResponse, 0, len(logs))
	for i := range logs {
		result = append(result, toSlotAdjustmentResponse(&logs[i]))
	}
	return result, total, nil
}

// ════════════════════════════════════════════════════════════
// CheckLevelCoverage
// ════════════════════════════════════════════════════════════

func (s *slotService) CheckLevelCoverage(ctx context.Context, jobID string) (*dto.LevelCoverageResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.Panel.CountByLevel(ctx, jobID)
	if err != nil {
		s.logger.Error("统计楼层构件数量失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}

	jobLevels := SortLevels(ResolveLevelRange(job.LowestLevel, job.HighestLevel, job.Levels).Levels)
	jobKeys := make(map[string]struct{}, len(jobLevels))
	for _, l := range jobLevels {
		jobKeys[normalizeLevelKey(l)] = struct{}{}
	}

	countByKey := make(map[string]int, len(rows))
	panelLevels := make([]string, 0, len(rows))
	resp := &dto.LevelCoverageResponse{
		JobLevels:   jobLevels,
		EmptyLevels: []string{},
		ExtraLevels: []string{},
		PanelCounts: make(map[string]int),
	}
	for _, r := range rows {
		key := normalizeLevelKey(r.Level)
		countByKey[key] += r.Count
		panelLevels = append(panelLevels, r.Level)
		if _, ok := jobKeys[key]; !ok {
			resp.ExtraLevels = append(resp.ExtraLevels, r.Level)
			resp.PanelCounts[r.Level] += r.Count
		}
	}
	for _, l := range jobLevels {
		n := countByKey[normalizeLevelKey(l)]
		resp.PanelCounts[l] = n
		if n == 0 {
			resp.EmptyLevels = append(resp.EmptyLevels, l)
		}
	}
	resp.PanelLevels = SortLevels(panelLevels)
	resp.ExtraLevels = SortLevels(resp.ExtraLevels)
	resp.HasMismatch = len(resp.EmptyLevels) > 0 || len(resp.ExtraLevels) > 0
	return resp, nil
}

// ── 转换 ──

func toSlotResponse(slot *model.ProductionSlot) dto.SlotResponse {
	return dto.SlotResponse{
		ID:             slot.SlotID,
		JobID:          slot.JobID,
		BuildingNumber: slot.BuildingNumber,
		Level:          slot.Level,
		LevelOrder:     slot.LevelOrder,
		PanelCount:     slot.PanelCount,
		SlotDate:       slot.SlotDate.Format(workcal.DateLayout),
		Status:         string(slot.Status),
		IsBooked:       slot.IsBooked,
		Version:        slot.Version,
		UpdatedAt:      slot.UpdatedAt.Format(timestampLayout),
	}
}

func toSlotAdjustmentResponse(l *model.SlotAdjustment) dto.SlotAdjustmentResponse {
	return dto.SlotAdjustmentResponse{
		ID:                 l.AdjustmentID,
		SlotID:             l.SlotID,
		JobID:              l.JobID,
		PreviousDate:       l.PreviousDate.Format(workcal.DateLayout),
		NewDate:            l.NewDate.Format(workcal.DateLayout),
		Reason:             l.Reason,
		ChangedBy:          l.ChangedBy,
		ClientConfirmed:    l.ClientConfirmed,
		Cascaded:           l.Cascaded,
		OriginAdjustmentID: l.OriginAdjustmentID,
		CreatedAt:          l.CreatedAt.Format(timestampLayout),
	}
}

// formatDatePtr 可空日期格式化
func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(workcal.DateLayout)
	return &s
}

// sortSlotsByOrder 按 level_order 排序（内存数据）
func sortSlotsByOrder(slots []model.ProductionSlot) {
	sort.SliceStable(slots, func(i, j int) bool {
		if slots[i].LevelOrder != slots[j].LevelOrder {
			return slots[i].LevelOrder < slots[j].LevelOrder
		}
		return slots[i].BuildingNumber < slots[j].BuildingNumber
	})
}
