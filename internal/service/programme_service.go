package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
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

// ── 楼层周期表模块业务错误 ──

var (
	ErrProgrammeEntryNotFound  = errors.New("周期表条目不存在")
	ErrDuplicateProgrammeEntry = errors.New("同一楼层、栋号与分段标签的条目重复")
	ErrInvalidCycleDays        = errors.New("周期天数必须大于 0")
	ErrReorderUnknownEntry     = errors.New("排序列表包含不属于该项目的条目")
)

// ProgrammeService 楼层周期表业务接口
//
// 每次修改都会：
//   - 将 sequence_order 重排为 0..n-1
//   - 按项目生产开始日期在生产日历上重算预计起止日期（手工日期保持不变）
//   - 在持有项目锁的同一事务内读取并整体替换项目的全部条目
type ProgrammeService interface {
	GetProgramme(ctx context.Context, jobID string) ([]dto.ProgrammeEntryResponse, error)
	SaveProgramme(ctx context.Context, jobID string, req *dto.SaveProgrammeRequest, callerID string) ([]dto.ProgrammeEntryResponse, error)
	// SplitEntry 将一个条目拆分为两段浇筑
	SplitEntry(ctx context.Context, jobID, entryID, callerID string) ([]dto.ProgrammeEntryResponse, error)
	ReorderEntries(ctx context.Context, jobID string, req *dto.ReorderProgrammeRequest, callerID string) ([]dto.ProgrammeEntryResponse, error)
	DeleteEntry(ctx context.Context, jobID, entryID, callerID string) ([]dto.ProgrammeEntryResponse, error)
}

type programmeService struct {
	repo      *repository.Repository
	calendars *calendarResolver
	logger    *zap.Logger
}

// NewProgrammeService 创建 ProgrammeService 实例
func NewProgrammeService(repo *repository.Repository, cfg config.SchedulingConfig, logger *zap.Logger) ProgrammeService {
	return &programmeService{
		repo:      repo,
		calendars: newCalendarResolver(repo, cfg, logger),
		logger:    logger,
	}
}

func (s *programmeService) GetProgramme(ctx context.Context, jobID string) ([]dto.ProgrammeEntryResponse, error) {
	if _, err := s.getJob(ctx, jobID); err != nil {
		return nil, err
	}
	entries, err := s.repo.ProgrammeEntry.ListByJob(ctx, jobID)
	if err != nil {
		s.logger.Error("查询楼层周期表失败", zap.String("job_id", jobID), zap.Error(err))
		return nil, err
	}
	return toProgrammeResponses(entries), nil
}

// ════════════════════════════════════════════════════════════
// SaveProgramme — 整体保存（数组顺序即施工顺序）
// ════════════════════════════════════════════════════════════

func (s *programmeService) SaveProgramme(ctx context.Context, jobID string, req *dto.SaveProgrammeRequest, callerID string) ([]dto.ProgrammeEntryResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(req.Entries))
	entries := make([]model.ProgrammeEntry, 0, len(req.Entries))
	for _, in := range req.Entries {
		if in.CycleDays < 1 {
			return nil, ErrInvalidCycleDays
		}
		building := in.BuildingNumber
		if building <= 0 {
			building = defaultBuilding
		}
		level := strings.TrimSpace(in.Level)

		var label *string
		if in.PourLabel != nil && strings.TrimSpace(*in.PourLabel) != "" {
			l := strings.TrimSpace(*in.PourLabel)
			label = &l
		}
		key := entryKey(building, level, label)
		if _, dup := seen[key]; dup {
			return nil, ErrDuplicateProgrammeEntry
		}
		seen[key] = struct{}{}

		manualStart, err := parseOptionalDate(in.ManualStart)
		if err != nil {
			return nil, err
		}
		manualEnd, err := parseOptionalDate(in.ManualEnd)
		if err != nil {
			return nil, err
		}

		id := in.ID
		if id == "" {
			id = uuid.New().String()
		}
		e := model.ProgrammeEntry{
			EntryID:        id,
			JobID:          jobID,
			BuildingNumber: building,
			Level:          level,
			LevelOrder:     LevelRank(level),
			PourLabel:      label,
			CycleDays:      in.CycleDays,
			ManualStart:    manualStart,
			ManualEnd:      manualEnd,
			Notes:          in.Notes,
		}
		e.CreatedBy = &callerID
		entries = append(entries, e)
	}

	return s.mutate(ctx, job, callerID, func([]model.ProgrammeEntry) ([]model.ProgrammeEntry, error) {
		return entries, nil
	})
}

// ════════════════════════════════════════════════════════════
// SplitEntry — 拆分浇筑
// ════════════════════════════════════════════════════════════
//
// 两段周期均为 max(1, ceil(c/2))；未设标签时原条目记为 A、新条目为 B，
// 否则新标签为原标签末位字符递增（Z/z/9 后追加 "2"），跳过同楼层同栋已用标签。

func (s *programmeService) SplitEntry(ctx context.Context, jobID, entryID, callerID string) ([]dto.ProgrammeEntryResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	var origLabel, newLabel string
	var half int
	resp, err := s.mutate(ctx, job, callerID, func(entries []model.ProgrammeEntry) ([]model.ProgrammeEntry, error) {
		idx := indexOfEntry(entries, entryID)
		if idx < 0 {
			return nil, ErrProgrammeEntryNotFound
		}
		orig := entries[idx]

		used := make(map[string]struct{})
		levelKey := normalizeLevelKey(orig.Level)
		for i, e := range entries {
			if i == idx || e.BuildingNumber != orig.BuildingNumber || normalizeLevelKey(e.Level) != levelKey {
				continue
			}
			if l := e.PourLabelValue(); l != "" {
				used[l] = struct{}{}
			}
		}

		origLabel = orig.PourLabelValue()
		if origLabel == "" {
			origLabel = nextFreeLabel("A", used)
		}
		used[origLabel] = struct{}{}
		newLabel = nextFreeLabel(nextPourLabel(origLabel), used)

		half = splitCycle(orig.CycleDays)
		kept := origLabel
		entries[idx].CycleDays = half
		entries[idx].PourLabel = &kept

		label := newLabel
		added := model.ProgrammeEntry{
			EntryID:        uuid.New().String(),
			JobID:          jobID,
			BuildingNumber: orig.BuildingNumber,
			Level:          orig.Level,
			LevelOrder:     orig.LevelOrder,
			PourLabel:      &label,
			CycleDays:      half,
		}
		added.CreatedBy = &callerID

		result := make([]model.ProgrammeEntry, 0, len(entries)+1)
		result = append(result, entries[:idx+1]...)
		result = append(result, added)
		result = append(result, entries[idx+1:]...)
		return result, nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("周期表条目已拆分",
		zap.String("job_id", jobID),
		zap.String("entry_id", entryID),
		zap.String("labels", origLabel+"/"+newLabel),
		zap.Int("cycle_days", half),
	)
	return resp, nil
}

// splitCycle 拆分后每段周期
func splitCycle(c int) int {
	half := (c + 1) / 2
	if half < 1 {
		return 1
	}
	return half
}

// nextPourLabel 末位字符递增；Z/z/9 或非字母数字时追加 "2"
func nextPourLabel(label string) string {
	if label == "" {
		return "A"
	}
	last := label[len(label)-1]
	switch {
	case last >= 'A' && last < 'Z', last >= 'a' && last < 'z', last >= '0' && last < '9':
		return label[:len(label)-1] + string(last+1)
	default:
		return label + "2"
	}
}

func nextFreeLabel(label string, used map[string]struct{}) string {
	for {
		if _, taken := used[label]; !taken {
			return label
		}
		label = nextPourLabel(label)
	}
}

// ════════════════════════════════════════════════════════════
// ReorderEntries / DeleteEntry
// ════════════════════════════════════════════════════════════

func (s *programmeService) ReorderEntries(ctx context.Context, jobID string, req *dto.ReorderProgrammeRequest, callerID string) ([]dto.ProgrammeEntryResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, job, callerID, func(entries []model.ProgrammeEntry) ([]model.ProgrammeEntry, error) {
		byID := make(map[string]model.ProgrammeEntry, len(entries))
		for _, e := range entries {
			byID[e.EntryID] = e
		}

		placed := make(map[string]struct{}, len(req.EntryIDs))
		result := make([]model.ProgrammeEntry, 0, len(entries))
		for _, id := range req.EntryIDs {
			e, ok := byID[id]
			if !ok {
				return nil, ErrReorderUnknownEntry
			}
			if _, dup := placed[id]; dup {
				continue
			}
			placed[id] = struct{}{}
			result = append(result, e)
		}
		// 未列出的条目保持原相对顺序追加在后
		for _, e := range entries {
			if _, ok := placed[e.EntryID]; !ok {
				result = append(result, e)
			}
		}
		return result, nil
	})
}

func (s *programmeService) DeleteEntry(ctx context.Context, jobID, entryID, callerID string) ([]dto.ProgrammeEntryResponse, error) {
	job, err := s.getJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, job, callerID, func(entries []model.ProgrammeEntry) ([]model.ProgrammeEntry, error) {
		idx := indexOfEntry(entries, entryID)
		if idx < 0 {
			return nil, ErrProgrammeEntryNotFound
		}
		return append(entries[:idx:idx], entries[idx+1:]...), nil
	})
}

// ── 内部 ──

func (s *programmeService) getJob(ctx context.Context, jobID string) (*model.Job, error) {
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

// mutate 在项目锁内读取当前条目并应用 fn，随后重排序号、重算预计日期并整体写回。
// 生产日历在加锁前解析，事务内只做内存计算。
func (s *programmeService) mutate(ctx context.Context, job *model.Job, callerID string, fn repository.ProgrammeMutation) ([]dto.ProgrammeEntryResponse, error) {
	estimate, err := s.estimator(ctx, job)
	if err != nil {
		return nil, err
	}

	var saved []model.ProgrammeEntry
	err = s.repo.ProgrammeEntry.Mutate(ctx, job.JobID, func(current []model.ProgrammeEntry) ([]model.ProgrammeEntry, error) {
		next, err := fn(current)
		if err != nil {
			return nil, err
		}
		for i := range next {
			next[i].SequenceOrder = i
			next[i].UpdatedBy = &callerID
		}
		estimate(next)
		saved = next
		return next, nil
	})
	if err != nil {
		if !errors.Is(err, ErrProgrammeEntryNotFound) && !IsValidationError(err) {
			s.logger.Error("写入楼层周期表失败", zap.String("job_id", job.JobID), zap.Error(err))
		}
		return nil, err
	}
	return toProgrammeResponses(saved), nil
}

// estimator 返回预计日期计算函数：
// 预计开始 = Add(项目开始, 之前周期之和)，预计结束 = Add(预计开始, 本条周期)；未设开始日期时清空
func (s *programmeService) estimator(ctx context.Context, job *model.Job) (func([]model.ProgrammeEntry), error) {
	if job.ProductionStartDate == nil {
		return func(entries []model.ProgrammeEntry) {
			for i := range entries {
				entries[i].EstimatedStart = nil
				entries[i].EstimatedEnd = nil
			}
		}, nil
	}

	jobStart := workcal.Date(*job.ProductionStartDate)
	cal, err := s.calendars.productionCalendar(ctx, job, jobStart)
	if err != nil {
		s.logger.Error("解析生产日历失败", zap.String("job_id", job.JobID), zap.Error(err))
		return nil, err
	}

	return func(entries []model.ProgrammeEntry) {
		running := 0
		for i := range entries {
			start := cal.AddWorkingDays(jobStart, running)
			end := cal.AddWorkingDays(start, entries[i].CycleDays)
			entries[i].EstimatedStart = &start
			entries[i].EstimatedEnd = &end
			running += entries[i].CycleDays
		}
	}, nil
}

func indexOfEntry(entries []model.ProgrammeEntry, id string) int {
	for i := range entries {
		if entries[i].EntryID == id {
			return i
		}
	}
	return -1
}

func entryKey(building int, level string, label *string) string {
	l := ""
	if label != nil {
		l = *label
	}
	return fmt.Sprintf("%d|%s|%s", building, normalizeLevelKey(level), l)
}

func parseOptionalDate(s *string) (*time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil, nil
	}
	d, err := workcal.ParseDate(*s)
	if err != nil {
		return nil, ErrInvalidDate
	}
	return &d, nil
}

func toProgrammeResponses(entries []model.ProgrammeEntry) []dto.ProgrammeEntryResponse {
	result := make([]dto.ProgrammeEntryResponse, 0, len(entries))
	for i := range entries {
		e := &entries[i]
		result = append(result, dto.ProgrammeEntryResponse{
			ID:             e.EntryID,
			JobID:          e.JobID,
			BuildingNumber: e.BuildingNumber,
			Level:          e.Level,
			LevelOrder:     e.LevelOrder,
			SequenceOrder:  e.SequenceOrder,
			PourLabel:      e.PourLabel,
			CycleDays:      e.CycleDays,
			EstimatedStart: formatDatePtr(e.EstimatedStart),
			EstimatedEnd:   formatDatePtr(e.EstimatedEnd),
			ManualStart:    formatDatePtr(e.ManualStart),
			ManualEnd:      formatDatePtr(e.ManualEnd),
			Notes:          e.Notes,
		})
	}
	return result
}
