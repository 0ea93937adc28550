package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/api/middleware"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/dto"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/internal/service"
	pkgerrors "github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/errors"
	"github.com/Khevashi-Sunnassee/BUILDPLUS-CONSTRUCT-sub005/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock SlotService ──

type mockSlotService struct {
	generateResult *dto.GenerateSlotsResponse
	generateReq    *dto.GenerateSlotsRequest
	callerID       string
	listResult     []dto.SlotResponse
	adjustResult   *dto.AdjustSlotResponse
	slotResult     *dto.SlotResponse
	logs           []dto.SlotAdjustmentResponse
	logsTotal      int64
	coverage       *dto.LevelCoverageResponse
	err            error
}

func (m *mockSlotService) GenerateSlots(_ context.Context, _ string, req *dto.GenerateSlotsRequest, callerID string) (*dto.GenerateSlotsResponse, error) {
	m.generateReq = req
	m.callerID = callerID
	return m.generateResult, m.err
}
func (m *mockSlotService) ListSlots(_ context.Context, _ string) ([]dto.SlotResponse, error) {
	return m.listResult, m.err
}
func (m *mockSlotService) AdjustSlot(_ context.Context, _ string, _ *dto.AdjustSlotRequest, callerID string) (*dto.AdjustSlotResponse, error) {
	m.callerID = callerID
	return m.adjustResult, m.err
}
func (m *mockSlotService) BookSlot(_ context.Context, _, _ string) (*dto.SlotResponse, error) {
	return m.slotResult, m.err
}
func (m *mockSlotService) CompleteSlot(_ context.Context, _, _ string) (*dto.SlotResponse, error) {
	return m.slotResult, m.err
}
func (m *mockSlotService) DeleteSlot(_ context.Context, _ string) error {
	return m.err
}
func (m *mockSlotService) ListAdjustments(_ context.Context, _ string, _ *dto.SlotAdjustmentListRequest) ([]dto.SlotAdjustmentResponse, int64, error) {
	return m.logs, m.logsTotal, m.err
}
func (m *mockSlotService) CheckLevelCoverage(_ context.Context, _ string) (*dto.LevelCoverageResponse, error) {
	return m.coverage, m.err
}

// ── Mock DraftingService ──

type mockDraftingService struct {
	generateResult *dto.GenerateDraftingResponse
	generateReq    *dto.GenerateDraftingRequest
	assignResult   *dto.DraftingMilestoneResponse
	list           []dto.DraftingMilestoneResponse
	err            error
}

func (m *mockDraftingService) GenerateDraftingProgram(_ context.Context, req *dto.GenerateDraftingRequest) (*dto.GenerateDraftingResponse, error) {
	m.generateReq = req
	return m.generateResult, m.err
}
func (m *mockDraftingService) AssignDraftingResource(_ context.Context, _ string, _ *dto.AssignDraftingRequest, _ string) (*dto.DraftingMilestoneResponse, error) {
	return m.assignResult, m.err
}
func (m *mockDraftingService) ListMilestones(_ context.Context, _ string) ([]dto.DraftingMilestoneResponse, error) {
	return m.list, m.err
}

// ── Mock ProgrammeService ──

type mockProgrammeService struct {
	entries []dto.ProgrammeEntryResponse
	entryID string
	reorder *dto.ReorderProgrammeRequest
	err     error
}

func (m *mockProgrammeService) GetProgramme(_ context.Context, _ string) ([]dto.ProgrammeEntryResponse, error) {
	return m.entries, m.err
}
func (m *mockProgrammeService) SaveProgramme(_ context.Context, _ string, _ *dto.SaveProgrammeRequest, _ string) ([]dto.ProgrammeEntryResponse, error) {
	return m.entries, m.err
}
func (m *mockProgrammeService) SplitEntry(_ context.Context, _, entryID, _ string) ([]dto.ProgrammeEntryResponse, error) {
	m.entryID = entryID
	return m.entries, m.err
}
func (m *mockProgrammeService) ReorderEntries(_ context.Context, _ string, req *dto.ReorderProgrammeRequest, _ string) ([]dto.ProgrammeEntryResponse, error) {
	m.reorder = req
	return m.entries, m.err
}
func (m *mockProgrammeService) DeleteEntry(_ context.Context, _, entryID, _ string) ([]dto.ProgrammeEntryResponse, error) {
	m.entryID = entryID
	return m.entries, m.err
}

// ── Mock HolidayService ──

type mockHolidayService struct {
	list         []dto.HolidayResponse
	created      *dto.HolidayResponse
	imported     *dto.ImportHolidaysResponse
	importedBody string
	calendarType string
	err          error
}

func (m *mockHolidayService) List(_ context.Context, _ *dto.HolidayListRequest) ([]dto.HolidayResponse, error) {
	return m.list, m.err
}
func (m *mockHolidayService) Create(_ context.Context, _ *dto.CreateHolidayRequest, _ string) (*dto.HolidayResponse, error) {
	return m.created, m.err
}
func (m *mockHolidayService) Delete(_ context.Context, _ string) error {
	return m.err
}
func (m *mockHolidayService) ImportICS(_ context.Context, calendarType string, r io.Reader, _ string) (*dto.ImportHolidaysResponse, error) {
	b, _ := io.ReadAll(r)
	m.importedBody = string(b)
	m.calendarType = calendarType
	return m.imported, m.err
}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportSlots(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withActor 模拟 Actor 中间件注入操作人
func withActor(h gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("user_id", "planner-1")
		h(c)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func serve(r *gin.Engine, method, path string, body io.Reader) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	r.ServeHTTP(w, req)
	return w
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// ═══════════════════════════════════════════════════════════
// SlotHandler Tests
// ═══════════════════════════════════════════════════════════

func TestSlotHandler_GenerateSlots_Success(t *testing.T) {
	mock := &mockSlotService{generateResult: &dto.GenerateSlotsResponse{JobID: "job-1", Warnings: []string{"w"}}}
	h := NewSlotHandler(mock)
	r := gin.New()
	r.POST("/jobs/:id/slots/generate", withActor(h.GenerateSlots))

	w := serve(r, "POST", "/jobs/job-1/slots/generate", jsonBody(dto.GenerateSlotsRequest{SkipEmptyLevels: true}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.generateReq == nil || !mock.generateReq.SkipEmptyLevels {
		t.Error("expected skip_empty_levels to be bound")
	}
	if mock.callerID != "planner-1" {
		t.Errorf("expected caller planner-1, got %s", mock.callerID)
	}
}

func TestSlotHandler_GenerateSlots_EmptyBody(t *testing.T) {
	mock := &mockSlotService{generateResult: &dto.GenerateSlotsResponse{JobID: "job-1"}}
	h := NewSlotHandler(mock)
	r := gin.New()
	r.POST("/jobs/:id/slots/generate", withActor(h.GenerateSlots))

	w := serve(r, "POST", "/jobs/job-1/slots/generate", nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 without body, got %d", w.Code)
	}
}

func TestSlotHandler_GenerateSlots_Unauthenticated(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{})
	r := gin.New()
	r.POST("/jobs/:id/slots/generate", h.GenerateSlots)

	w := serve(r, "POST", "/jobs/job-1/slots/generate", nil)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestSlotHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"job not found", service.ErrJobNotFound, http.StatusNotFound, 20101},
		{"missing start date", service.ErrJobMissingStartDate, http.StatusBadRequest, 20103},
		{"regeneration in progress", service.ErrRegenerationInProgress, http.StatusConflict, 20105},
		{"optimistic lock", pkgerrors.ErrOptimisticLock, http.StatusConflict, 20106},
		{"unexpected", errors.New("db down"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSlotHandler(&mockSlotService{err: tt.err})
			r := gin.New()
			r.POST("/jobs/:id/slots/generate", withActor(h.GenerateSlots))

			w := serve(r, "POST", "/jobs/job-1/slots/generate", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestSlotHandler_AdjustSlot(t *testing.T) {
	mock := &mockSlotService{adjustResult: &dto.AdjustSlotResponse{CascadedCount: 2}}
	h := NewSlotHandler(mock)
	r := gin.New()
	r.PUT("/slots/:id/adjust", withActor(h.AdjustSlot))

	w := serve(r, "PUT", "/slots/slot-1/adjust", jsonBody(map[string]interface{}{
		"new_date":         "2025-01-10",
		"reason":           "模具延期",
		"cascade_to_later": true,
	}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// 缺少原因
	w = serve(r, "PUT", "/slots/slot-1/adjust", jsonBody(map[string]interface{}{"new_date": "2025-01-10"}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without reason, got %d", w.Code)
	}
}

func TestSlotHandler_BookSlot_InvalidTransition(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{err: service.ErrInvalidSlotTransition})
	r := gin.New()
	r.POST("/slots/:id/book", withActor(h.BookSlot))

	w := serve(r, "POST", "/slots/slot-1/book", nil)
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestSlotHandler_ListAdjustments_Paged(t *testing.T) {
	mock := &mockSlotService{
		logs:      []dto.SlotAdjustmentResponse{{ID: "a1"}},
		logsTotal: 21,
	}
	h := NewSlotHandler(mock)
	r := gin.New()
	r.GET("/slots/:id/adjustments", h.ListAdjustments)

	w := serve(r, "GET", "/slots/slot-1/adjustments?page=2&page_size=10", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.TotalPages != 3 || body.Data.Pagination.Page != 2 {
		t.Errorf("unexpected pagination: %+v", body.Data.Pagination)
	}
}

func TestSlotHandler_DeleteSlot_NotFound(t *testing.T) {
	h := NewSlotHandler(&mockSlotService{err: service.ErrSlotNotFound})
	r := gin.New()
	r.DELETE("/slots/:id", h.DeleteSlot)

	w := serve(r, "DELETE", "/slots/missing", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DraftingHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDraftingHandler_Generate(t *testing.T) {
	mock := &mockDraftingService{generateResult: &dto.GenerateDraftingResponse{Created: 3}}
	h := NewDraftingHandler(mock)
	r := gin.New()
	r.POST("/drafting/generate", withActor(h.Generate))

	w := serve(r, "POST", "/drafting/generate", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.generateReq == nil || mock.generateReq.JobID != "" {
		t.Error("expected empty job filter when body is omitted")
	}
}

func TestDraftingHandler_Assign_Completed(t *testing.T) {
	h := NewDraftingHandler(&mockDraftingService{err: service.ErrMilestoneCompleted})
	r := gin.New()
	r.PUT("/drafting/:id/assign", withActor(h.Assign))

	w := serve(r, "PUT", "/drafting/m-1/assign", jsonBody(dto.AssignDraftingRequest{
		AssignedResourceID: "0b6f8f0e-3c55-4c1c-9a53-1f5ad2f5a001",
	}))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestDraftingHandler_Assign_BadJSON(t *testing.T) {
	h := NewDraftingHandler(&mockDraftingService{})
	r := gin.New()
	r.PUT("/drafting/:id/assign", withActor(h.Assign))

	w := serve(r, "PUT", "/drafting/m-1/assign", strings.NewReader("invalid json"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ProgrammeHandler Tests
// ═══════════════════════════════════════════════════════════

func TestProgrammeHandler_SplitEntry(t *testing.T) {
	mock := &mockProgrammeService{entries: []dto.ProgrammeEntryResponse{{ID: "e1"}, {ID: "e2"}}}
	h := NewProgrammeHandler(mock)
	r := gin.New()
	r.POST("/jobs/:id/programme/:entryId/split", withActor(h.SplitEntry))

	w := serve(r, "POST", "/jobs/job-1/programme/e1/split", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.entryID != "e1" {
		t.Errorf("expected entry e1, got %s", mock.entryID)
	}
}

func TestProgrammeHandler_Save_OversizedChunkedBody(t *testing.T) {
	mock := &mockProgrammeService{}
	h := NewProgrammeHandler(mock)
	r := gin.New()
	r.PUT("/jobs/:id/programme", middleware.BodyLimit(16, 22013), withActor(h.SaveProgramme))

	// 未声明长度，只能在读取时截断
	body := io.MultiReader(strings.NewReader(`{"entries":[{"building_number":1,`), strings.NewReader(`"level":"L1"}]}`))
	req := httptest.NewRequest("PUT", "/jobs/job-1/programme", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != 22013 || resp.Details != "请求体上限 16B" {
		t.Errorf("unexpected payload: %+v", resp)
	}
}

func TestProgrammeHandler_Reorder(t *testing.T) {
	mock := &mockProgrammeService{}
	h := NewProgrammeHandler(mock)
	r := gin.New()
	r.PUT("/jobs/:id/programme/reorder", withActor(h.ReorderEntries))

	ids := []string{"0b6f8f0e-3c55-4c1c-9a53-1f5ad2f5a001", "0b6f8f0e-3c55-4c1c-9a53-1f5ad2f5a002"}
	w := serve(r, "PUT", "/jobs/job-1/programme/reorder", jsonBody(dto.ReorderProgrammeRequest{EntryIDs: ids}))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.reorder == nil || len(mock.reorder.EntryIDs) != 2 {
		t.Error("expected entry ids to be bound")
	}

	// 空列表
	w = serve(r, "PUT", "/jobs/job-1/programme/reorder", jsonBody(dto.ReorderProgrammeRequest{}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for empty list, got %d", w.Code)
	}
}

func TestProgrammeHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantCode   int
	}{
		{service.ErrProgrammeEntryNotFound, http.StatusNotFound, 22102},
		{service.ErrReorderUnknownEntry, http.StatusBadRequest, 22103},
		{service.ErrDuplicateProgrammeEntry, http.StatusBadRequest, 22103},
		{service.ErrJobNotFound, http.StatusNotFound, 22101},
	}
	for _, tt := range tests {
		h := NewProgrammeHandler(&mockProgrammeService{err: tt.err})
		r := gin.New()
		r.DELETE("/jobs/:id/programme/:entryId", withActor(h.DeleteEntry))

		w := serve(r, "DELETE", "/jobs/job-1/programme/e1", nil)
		if w.Code != tt.wantStatus {
			t.Errorf("%v: expected %d, got %d", tt.err, tt.wantStatus, w.Code)
		}
		resp := parseResponse(w)
		if resp.Code != tt.wantCode {
			t.Errorf("%v: expected code %d, got %d", tt.err, tt.wantCode, resp.Code)
		}
		if tt.wantCode == 22103 && resp.Details != tt.err.Error() {
			t.Errorf("expected validation details %q, got %q", tt.err.Error(), resp.Details)
		}
	}
}

// ═══════════════════════════════════════════════════════════
// HolidayHandler Tests
// ═══════════════════════════════════════════════════════════

func TestHolidayHandler_Create_Duplicate(t *testing.T) {
	h := NewHolidayHandler(&mockHolidayService{err: service.ErrHolidayExists})
	r := gin.New()
	r.POST("/holidays", withActor(h.Create))

	w := serve(r, "POST", "/holidays", jsonBody(dto.CreateHolidayRequest{
		CalendarType: "VIC", Date: "2025-11-04", Name: "Melbourne Cup",
	}))
	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
}

func TestHolidayHandler_Create_InvalidType(t *testing.T) {
	h := NewHolidayHandler(&mockHolidayService{})
	r := gin.New()
	r.POST("/holidays", withActor(h.Create))

	w := serve(r, "POST", "/holidays", jsonBody(dto.CreateHolidayRequest{
		CalendarType: "QLD", Date: "2025-11-04", Name: "x",
	}))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func multipartBody(t *testing.T, fields map[string]string, fileContent string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		_ = mw.WriteField(k, v)
	}
	if fileContent != "" {
		fw, err := mw.CreateFormFile("file", "holidays.ics")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		_, _ = fw.Write([]byte(fileContent))
	}
	_ = mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHolidayHandler_ImportICS_File(t *testing.T) {
	mock := &mockHolidayService{imported: &dto.ImportHolidaysResponse{Parsed: 1, Written: 1}}
	h := NewHolidayHandler(mock)
	r := gin.New()
	r.POST("/holidays/import", withActor(h.ImportICS))

	body, contentType := multipartBody(t, map[string]string{"calendar_type": "VIC"}, "BEGIN:VCALENDAR")
	req := httptest.NewRequest("POST", "/holidays/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.importedBody != "BEGIN:VCALENDAR" || mock.calendarType != "VIC" {
		t.Errorf("unexpected import args: %q %q", mock.importedBody, mock.calendarType)
	}
}

func TestHolidayHandler_ImportICS_URL(t *testing.T) {
	mock := &mockHolidayService{imported: &dto.ImportHolidaysResponse{}}
	h := NewHolidayHandler(mock)
	h.fetch = func(url string) (io.ReadCloser, error) {
		if url != "webcal://example.com/vic.ics" {
			return nil, errors.New("unexpected url")
		}
		return io.NopCloser(strings.NewReader("FROM-URL")), nil
	}
	r := gin.New()
	r.POST("/holidays/import", withActor(h.ImportICS))

	body, contentType := multipartBody(t, map[string]string{"calendar_type": "NSW", "url": "webcal://example.com/vic.ics"}, "")
	req := httptest.NewRequest("POST", "/holidays/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if mock.importedBody != "FROM-URL" {
		t.Errorf("expected fetched content, got %q", mock.importedBody)
	}
}

func TestHolidayHandler_ImportICS_MissingSource(t *testing.T) {
	h := NewHolidayHandler(&mockHolidayService{})
	r := gin.New()
	r.POST("/holidays/import", withActor(h.ImportICS))

	body, contentType := multipartBody(t, map[string]string{"calendar_type": "VIC"}, "")
	req := httptest.NewRequest("POST", "/holidays/import", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// ExportHandler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_ExportSlots_Success(t *testing.T) {
	h := NewExportHandler(&mockExportService{
		buf:      bytes.NewBufferString("PK-fake-xlsx"),
		filename: "生产排期_J-001.xlsx",
	})
	r := gin.New()
	r.GET("/jobs/:id/slots/export", h.ExportSlots)

	w := serve(r, "GET", "/jobs/job-1/slots/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "filename*=UTF-8''") {
		t.Errorf("unexpected content disposition: %s", cd)
	}
	if w.Body.String() != "PK-fake-xlsx" {
		t.Errorf("unexpected body: %s", w.Body.String())
	}
}

func TestExportHandler_ExportSlots_NoSlots(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrExportNoSlots})
	r := gin.New()
	r.GET("/jobs/:id/slots/export", h.ExportSlots)

	w := serve(r, "GET", "/jobs/job-1/slots/export", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 24102 {
		t.Errorf("expected code 24102, got %d", resp.Code)
	}
}
