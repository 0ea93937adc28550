package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/model"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/repository"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/workcal"
)

// ── 节假日模块业务错误 ──

var (
	ErrHolidayNotFound     = errors.New("节假日不存在")
	ErrHolidayExists       = errors.New("该日历类型在此日期已有节假日")
	ErrInvalidCalendarType = errors.New("日历类型无效，应为 VIC / NSW / BOTH")
	ErrInvalidICS          = errors.New("ICS 文件无法解析")
)

// HolidayService 节假日维护接口
type HolidayService interface {
	List(ctx context.Context, req *dto.HolidayListRequest) ([]dto.HolidayResponse, error)
	Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error)
	Delete(ctx context.Context, id string) error
	// ImportICS 导入公共假期订阅，按 (calendar_type, date) 幂等写入
	ImportICS(ctx context.Context, calendarType string, r io.Reader, callerID string) (*dto.ImportHolidaysResponse, error)
}

type holidayService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewHolidayService 创建 HolidayService 实例
func NewHolidayService(repo *repository.Repository, logger *zap.Logger) HolidayService {
	return &holidayService{repo: repo, logger: logger}
}

func (s *holidayService) List(ctx context.Context, req *dto.HolidayListRequest) ([]dto.HolidayResponse, error) {
	types := []string{model.CalendarTypeVIC, model.CalendarTypeNSW, model.CalendarTypeBoth}
	if req.CalendarType != "" {
		if !model.IsValidCalendarType(req.CalendarType) {
			return nil, ErrInvalidCalendarType
		}
		types = []string{req.CalendarType}
	}

	// 默认范围：去年 1 月 1 日 ~ 后年 12 月 31 日
	year := time.Now().UTC().Year()
	from := time.Date(year-1, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year+2, time.December, 31, 0, 0, 0, 0, time.UTC)
	var err error
	if req.From != "" {
		if from, err = workcal.ParseDate(req.From); err != nil {
			return nil, ErrInvalidDate
		}
	}
	if req.To != "" {
		if to, err = workcal.ParseDate(req.To); err != nil {
			return nil, ErrInvalidDate
		}
	}

	holidays, err := s.repo.Holiday.ListByTypes(ctx, types, from, to)
	if err != nil {
		s.logger.Error("查询节假日失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.HolidayResponse, 0, len(holidays))
	for i := range holidays {
		result = append(result, toHolidayResponse(&holidays[i]))
	}
	return result, nil
}

func (s *holidayService) Create(ctx context.Context, req *dto.CreateHolidayRequest, callerID string) (*dto.HolidayResponse, error) {
	if !model.IsValidCalendarType(req.CalendarType) {
		return nil, ErrInvalidCalendarType
	}
	date, err := workcal.ParseDate(req.Date)
	if err != nil {
		return nil, ErrInvalidDate
	}

	h := &model.Holiday{
		HolidayID:    uuid.New().String(),
		CalendarType: req.CalendarType,
		Date:         date,
		Name:         req.Name,
	}
	h.CreatedBy = &callerID
	h.UpdatedBy = &callerID

	if err := s.repo.Holiday.Create(ctx, h); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrHolidayExists
		}
		s.logger.Error("创建节假日失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("节假日已创建",
		zap.String("calendar_type", h.CalendarType),
		zap.String("date", req.Date),
		zap.String("operator", callerID),
	)
	resp := toHolidayResponse(h)
	return &resp, nil
}

func (s *holidayService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.Holiday.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHolidayNotFound
		}
		s.logger.Error("查询节假日失败", zap.Error(err))
		return err
	}
	if err := s.repo.Holiday.Delete(ctx, id); err != nil {
		s.logger.Error("删除节假日失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *holidayService) ImportICS(ctx context.Context, calendarType string, r io.Reader, callerID string) (*dto.ImportHolidaysResponse, error) {
	if !model.IsValidCalendarType(calendarType) {
		return nil, ErrInvalidCalendarType
	}
	holidays, err := ParseHolidayICS(r, calendarType)
	if err != nil {
		s.logger.Warn("ICS 解析失败", zap.Error(err))
		return nil, ErrInvalidICS
	}

	for i := range holidays {
		holidays[i].HolidayID = uuid.New().String()
		holidays[i].CreatedBy = &callerID
		holidays[i].UpdatedBy = &callerID
	}

	written, err := s.repo.Holiday.BatchUpsert(ctx, holidays)
	if err != nil {
		s.logger.Error("写入节假日失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("节假日 ICS 导入完成",
		zap.String("calendar_type", calendarType),
		zap.Int("parsed", len(holidays)),
		zap.Int64("written", written),
	)
	return &dto.ImportHolidaysResponse{Parsed: len(holidays), Written: int(written)}, nil
}

func sortHolidays(hs []model.Holiday) {
	sort.SliceStable(hs, func(i, j int) bool { return hs[i].Date.Before(hs[j].Date) })
}

func toHolidayResponse(h *model.Holiday) dto.HolidayResponse {
	return dto.HolidayResponse{
		ID:           h.HolidayID,
		CalendarType: h.CalendarType,
		Date:         h.Date.Format(workcal.DateLayout),
		Name:         h.Name,
	}
}
