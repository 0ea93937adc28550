package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/config"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/repository"
	pkgerrors "github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/errors"
)

// ── Mock JobRepository ──

type mockJobRepo struct {
	jobs map[string]*model.Job
}

func newMockJobRepo() *mockJobRepo {
	return &mockJobRepo{jobs: make(map[string]*model.Job)}
}

func (m *mockJobRepo) GetByID(_ context.Context, id string) (*model.Job, error) {
	if j, ok := m.jobs[id]; ok {
		cp := *j
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJobRepo) ListByIDs(_ context.Context, ids []string) ([]model.Job, error) {
	var result []model.Job
	for _, id := range ids {
		if j, ok := m.jobs[id]; ok {
			result = append(result, *j)
		}
	}
	return result, nil
}

// ── Mock FactoryRepository ──

type mockFactoryRepo struct {
	factories map[string]*model.Factory
}

func newMockFactoryRepo() *mockFactoryRepo {
	return &mockFactoryRepo{factories: make(map[string]*model.Factory)}
}

func (m *mockFactoryRepo) GetByID(_ context.Context, id string) (*model.Factory, error) {
	if f, ok := m.factories[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock CompanySettingsRepository ──

type mockCompanySettingsRepo struct {
	settings *model.CompanySettings
}

func (m *mockCompanySettingsRepo) Get(_ context.Context) (*model.CompanySettings, error) {
	if m.settings == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return m.settings, nil
}

// ── Mock HolidayRepository ──

type mockHolidayRepo struct {
	holidays map[string]*model.Holiday
}

func newMockHolidayRepo() *mockHolidayRepo {
	return &mockHolidayRepo{holidays: make(map[string]*model.Holiday)}
}

func (m *mockHolidayRepo) Create(_ context.Context, h *model.Holiday) error {
	for _, existing := range m.holidays {
		if existing.CalendarType == h.CalendarType && existing.Date.Equal(h.Date) {
			return gorm.ErrDuplicatedKey
		}
	}
	if h.HolidayID == "" {
		h.HolidayID = "hol-" + h.CalendarType + "-" + h.Date.Format("20060102")
	}
	m.holidays[h.HolidayID] = h
	return nil
}

func (m *mockHolidayRepo) GetByID(_ context.Context, id string) (*model.Holiday, error) {
	if h, ok := m.holidays[id]; ok {
		return h, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockHolidayRepo) ListByTypes(_ context.Context, types []string, from, to time.Time) ([]model.Holiday, error) {
	allowed := make(map[string]bool, len(types))
	for _, t := range types {
		allowed[t] = true
	}
	var result []model.Holiday
	for _, h := range m.holidays {
		if !allowed[h.CalendarType] || h.Date.Before(from) || h.Date.After(to) {
			continue
		}
		result = append(result, *h)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (m *mockHolidayRepo) BatchUpsert(_ context.Context, holidays []model.Holiday) (int64, error) {
	for i := range holidays {
		h := holidays[i]
		replaced := false
		for _, existing := range m.holidays {
			if existing.CalendarType == h.CalendarType && existing.Date.Equal(h.Date) {
				existing.Name = h.Name
				replaced = true
				break
			}
		}
		if !replaced {
			m.holidays[h.HolidayID] = &h
		}
	}
	return int64(len(holidays)), nil
}

func (m *mockHolidayRepo) Delete(_ context.Context, id string) error {
	delete(m.holidays, id)
	return nil
}

// ── Mock PanelRepository ──

type mockPanelRepo struct {
	panels []model.Panel
}

func (m *mockPanelRepo) CountByLevel(_ context.Context, jobID string) ([]model.LevelPanelCount, error) {
	counts := make(map[string]int)
	var order []string
	for _, p := range m.panels {
		if p.JobID != jobID {
			continue
		}
		if _, ok := counts[p.Level]; !ok {
			order = append(order, p.Level)
		}
		counts[p.Level]++
	}
	result := make([]model.LevelPanelCount, 0, len(order))
	for _, l := range order {
		result = append(result, model.LevelPanelCount{Level: l, Count: counts[l]})
	}
	return result, nil
}

func (m *mockPanelRepo) ListByJob(_ context.Context, jobID string) ([]model.Panel, error) {
	var result []model.Panel
	for _, p := range m.panels {
		if p.JobID == jobID {
			result = append(result, p)
		}
	}
	return result, nil
}

// ── Mock ProgrammeEntryRepository ──

type mockProgrammeEntryRepo struct {
	mu      sync.Mutex
	entries map[string][]model.ProgrammeEntry
	// replaced 记录成功写回的次数
	replaced int
}

func newMockProgrammeEntryRepo() *mockProgrammeEntryRepo {
	return &mockProgrammeEntryRepo{entries: make(map[string][]model.ProgrammeEntry)}
}

func (m *mockProgrammeEntryRepo) ListByJob(_ context.Context, jobID string) ([]model.ProgrammeEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(jobID), nil
}

func (m *mockProgrammeEntryRepo) list(jobID string) []model.ProgrammeEntry {
	src := m.entries[jobID]
	result := make([]model.ProgrammeEntry, len(src))
	copy(result, src)
	sort.SliceStable(result, func(i, j int) bool { return result[i].SequenceOrder < result[j].SequenceOrder })
	return result
}

// Mutate 以互斥锁模拟事务内的项目锁
func (m *mockProgrammeEntryRepo) Mutate(_ context.Context, jobID string, fn repository.ProgrammeMutation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(m.list(jobID))
	if err != nil {
		return err
	}
	cp := make([]model.ProgrammeEntry, len(next))
	copy(cp, next)
	m.entries[jobID] = cp
	m.replaced++
	return nil
}

// ── Mock ProductionSlotRepository ──

type mockProductionSlotRepo struct {
	slots map[string]*model.ProductionSlot
	// conflict 为 true 时版本更新返回乐观锁冲突
	conflict bool
	// adjustments 接收 ApplyAdjustments 写入的调整记录
	adjustments *mockSlotAdjustmentRepo
}

func newMockProductionSlotRepo(adjustments *mockSlotAdjustmentRepo) *mockProductionSlotRepo {
	return &mockProductionSlotRepo{slots: make(map[string]*model.ProductionSlot), adjustments: adjustments}
}

func (m *mockProductionSlotRepo) put(slot model.ProductionSlot) {
	if slot.Version == 0 {
		slot.Version = 1
	}
	m.slots[slot.SlotID] = &slot
}

func (m *mockProductionSlotRepo) GetByID(_ context.Context, id string) (*model.ProductionSlot, error) {
	if s, ok := m.slots[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProductionSlotRepo) ListByJob(_ context.Context, jobID string) ([]model.ProductionSlot, error) {
	var result []model.ProductionSlot
	for _, s := range m.slots {
		if s.JobID == jobID {
			result = append(result, *s)
		}
	}
	sortSlotsByOrder(result)
	return result, nil
}

func (m *mockProductionSlotRepo) ListActive(_ context.Context, jobID string) ([]model.ProductionSlot, error) {
	var result []model.ProductionSlot
	for _, s := range m.slots {
		if s.Status == model.SlotStatusCompleted {
			continue
		}
		if jobID != "" && s.JobID != jobID {
			continue
		}
		result = append(result, *s)
	}
	sortSlotsByOrder(result)
	return result, nil
}

func (m *mockProductionSlotRepo) ReplaceByJob(_ context.Context, jobID string, slots []model.ProductionSlot) error {
	for id, s := range m.slots {
		if s.JobID == jobID {
			delete(m.slots, id)
		}
	}
	for _, s := range slots {
		m.put(s)
	}
	return nil
}

func (m *mockProductionSlotRepo) update(slot *model.ProductionSlot) error {
	stored, ok := m.slots[slot.SlotID]
	if !ok || m.conflict || stored.Version != slot.Version {
		return pkgerrors.ErrOptimisticLock
	}
	slot.Version++
	cp := *slot
	m.slots[slot.SlotID] = &cp
	return nil
}

func (m *mockProductionSlotRepo) UpdateStatus(_ context.Context, slot *model.ProductionSlot) error {
	return m.update(slot)
}

func (m *mockProductionSlotRepo) ApplyAdjustments(_ context.Context, slots []*model.ProductionSlot, logs []model.SlotAdjustment) error {
	if m.conflict {
		return pkgerrors.ErrOptimisticLock
	}
	for _, s := range slots {
		if err := m.update(s); err != nil {
			return err
		}
	}
	m.adjustments.logs = append(m.adjustments.logs, logs...)
	return nil
}

func (m *mockProductionSlotRepo) Delete(_ context.Context, id string) error {
	delete(m.slots, id)
	return nil
}

// ── Mock SlotAdjustmentRepository ──

type mockSlotAdjustmentRepo struct {
	logs []model.SlotAdjustment
}

func (m *mockSlotAdjustmentRepo) ListBySlot(_ context.Context, slotID string, offset, limit int) ([]model.SlotAdjustment, int64, error) {
	var all []model.SlotAdjustment
	for _, l := range m.logs {
		if l.SlotID == slotID {
			all = append(all, l)
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockSlotAdjustmentRepo) ListByJob(_ context.Context, jobID string) ([]model.SlotAdjustment, error) {
	var result []model.SlotAdjustment
	for _, l := range m.logs {
		if l.JobID == jobID {
			result = append(result, l)
		}
	}
	return result, nil
}

// ── Mock DraftingMilestoneRepository ──

type mockDraftingMilestoneRepo struct {
	byPanel map[string]*model.DraftingMilestone
}

func newMockDraftingMilestoneRepo() *mockDraftingMilestoneRepo {
	return &mockDraftingMilestoneRepo{byPanel: make(map[string]*model.DraftingMilestone)}
}

func (m *mockDraftingMilestoneRepo) GetByID(_ context.Context, id string) (*model.DraftingMilestone, error) {
	for _, ms := range m.byPanel {
		if ms.MilestoneID == id {
			cp := *ms
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDraftingMilestoneRepo) ListByPanelIDs(_ context.Context, panelIDs []string) ([]model.DraftingMilestone, error) {
	var result []model.DraftingMilestone
	for _, id := range panelIDs {
		if ms, ok := m.byPanel[id]; ok {
			result = append(result, *ms)
		}
	}
	return result, nil
}

func (m *mockDraftingMilestoneRepo) ListByJob(_ context.Context, jobID string) ([]model.DraftingMilestone, error) {
	var result []model.DraftingMilestone
	for _, ms := range m.byPanel {
		if ms.JobID == jobID {
			result = append(result, *ms)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].PanelID < result[j].PanelID })
	return result, nil
}

func (m *mockDraftingMilestoneRepo) SaveProjection(_ context.Context, creates, updates []model.DraftingMilestone) error {
	for i := range creates {
		c := creates[i]
		m.byPanel[c.PanelID] = &c
	}
	for _, u := range updates {
		existing := m.byPanel[u.PanelID]
		existing.JobID = u.JobID
		existing.Level = u.Level
		existing.ProductionSlotID = u.ProductionSlotID
		existing.ProductionDate = u.ProductionDate
		existing.DrawingDueDate = u.DrawingDueDate
		existing.DraftingWindowStart = u.DraftingWindowStart
	}
	return nil
}

func (m *mockDraftingMilestoneRepo) UpdateAssignment(_ context.Context, ms *model.DraftingMilestone) error {
	existing, ok := m.byPanel[ms.PanelID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	existing.AssignedResourceID = ms.AssignedResourceID
	existing.ProposedStartDate = ms.ProposedStartDate
	existing.Status = ms.Status
	return nil
}

// ── 测试环境 ──

type testEnv struct {
	repo        *repository.Repository
	jobs        *mockJobRepo
	factories   *mockFactoryRepo
	settings    *mockCompanySettingsRepo
	holidays    *mockHolidayRepo
	panels      *mockPanelRepo
	programme   *mockProgrammeEntryRepo
	slots       *mockProductionSlotRepo
	adjustments *mockSlotAdjustmentRepo
	milestones  *mockDraftingMilestoneRepo
	cfg         config.SchedulingConfig
	logger      *zap.Logger
}

func newTestEnv() *testEnv {
	adjustments := &mockSlotAdjustmentRepo{}
	env := &testEnv{
		jobs:        newMockJobRepo(),
		factories:   newMockFactoryRepo(),
		settings:    &mockCompanySettingsRepo{},
		holidays:    newMockHolidayRepo(),
		panels:      &mockPanelRepo{},
		programme:   newMockProgrammeEntryRepo(),
		slots:       newMockProductionSlotRepo(adjustments),
		adjustments: adjustments,
		milestones:  newMockDraftingMilestoneRepo(),
		cfg:         config.DefaultSchedulingConfig(),
		logger:      zap.NewNop(),
	}
	env.repo = &repository.Repository{
		Job:               env.jobs,
		Factory:           env.factories,
		CompanySettings:   env.settings,
		Holiday:           env.holidays,
		Panel:             env.panels,
		ProgrammeEntry:    env.programme,
		ProductionSlot:    env.slots,
		SlotAdjustment:    env.adjustments,
		DraftingMilestone: env.milestones,
	}
	return env
}

// ── 测试数据辅助 ──

func intPtr(n int) *int { return &n }

func strPtr(s string) *string { return &s }

func mustDate(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func datePtr(s string) *time.Time {
	d := mustDate(s)
	return &d
}
