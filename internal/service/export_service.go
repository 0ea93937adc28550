package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/repository"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/workcal"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoSlots      = errors.New("该项目暂无生产排期")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response。
type ExportService interface {
	// ExportSlots 导出项目生产排期及调整记录为 Excel
	ExportSlots(ctx context.Context, jobID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

var slotStatusNames = map[string]string{
	"SCHEDULED":      "已排期",
	"PENDING_UPDATE": "待确认",
	"BOOKED":         "已预订",
	"COMPLETED":      "已完成",
}

// ═══════════════════════════════════════════════════════════
// ExportSlots — 导出生产排期
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "生产排期"：| 顺序 | 楼层 | 栋号 | 构件数 | 生产日期 | 状态 | 已预订 |
//   - Sheet "调整记录"：| 楼层 | 原日期 | 新日期 | 原因 | 操作人 | 客户确认 | 级联 | 时间 |

func (s *exportService) ExportSlots(ctx context.Context, jobID string) (*bytes.Buffer, string, error) {
	// 1. 项目
	job, err := s.repo.Job.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrJobNotFound
		}
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 排期与调整记录
	slots, err := s.repo.ProductionSlot.ListByJob(ctx, jobID)
	if err != nil {
		s.logger.Error("查询生产排期失败", zap.Error(err))
		return nil, "", err
	}
	if len(slots) == 0 {
		return nil, "", ErrExportNoSlots
	}
	sortSlotsByOrder(slots)

	logs, err := s.repo.SlotAdjustment.ListByJob(ctx, jobID)
	if err != nil {
		s.logger.Error("查询调整记录失败", zap.Error(err))
		return nil, "", err
	}
	levelBySlot := make(map[string]string, len(slots))
	for _, sl := range slots {
		levelBySlot[sl.SlotID] = sl.Level
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	sheet := "生产排期"
	idx, _ := f.NewSheet(sheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	headers := []string{"顺序", "楼层", "栋号", "构件数", "生产日期", "状态", "已预订"}
	f.SetCellValue(sheet, "A1", fmt.Sprintf("%s %s — 生产排期", job.JobNumber, job.Name))
	f.MergeCell(sheet, "A1", cell(colName(len(headers)-1), 1))
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	writeHeader(f, sheet, 2, headers, headerStyle)
	f.SetColWidth(sheet, "B", "B", 14)
	f.SetColWidth(sheet, "E", "F", 14)

	row := 3
	for _, sl := range slots {
		booked := ""
		if sl.IsBooked {
			booked = "是"
		}
		values := []interface{}{
			sl.LevelOrder,
			sl.Level,
			sl.BuildingNumber,
			sl.PanelCount,
			sl.SlotDate.Format(workcal.DateLayout),
			statusName(string(sl.Status)),
			booked,
		}
		for i, v := range values {
			f.SetCellValue(sheet, cell(colName(i), row), v)
		}
		row++
	}

	logSheet := "调整记录"
	f.NewSheet(logSheet)
	writeHeader(f, logSheet, 1, []string{"楼层", "原日期", "新日期", "原因", "操作人", "客户确认", "级联", "时间"}, headerStyle)
	f.SetColWidth(logSheet, "D", "D", 40)
	row = 2
	for _, l := range logs {
		confirmed, cascaded := "", ""
		if l.ClientConfirmed {
			confirmed = "是"
		}
		if l.Cascaded {
			cascaded = "是"
		}
		values := []interface{}{
			levelBySlot[l.SlotID],
			l.PreviousDate.Format(workcal.DateLayout),
			l.NewDate.Format(workcal.DateLayout),
			l.Reason,
			l.ChangedBy,
			confirmed,
			cascaded,
			l.CreatedAt.Format(timestampLayout),
		}
		for i, v := range values {
			f.SetCellValue(logSheet, cell(colName(i), row), v)
		}
		row++
	}

	// 4. 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("生产排期_%s.xlsx", job.JobNumber)
	return buf, filename, nil
}

// ── 辅助函数 ──

func writeHeader(f *excelize.File, sheet string, row int, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheet, cell("A", row), cell(colName(len(headers)-1), row), style)
}

func statusName(status string) string {
	if n, ok := slotStatusNames[status]; ok {
		return n
	}
	return status
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
