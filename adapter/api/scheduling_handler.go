package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-app/tempora/internal/scheduling/application/commands"
	"github.com/tempora-app/tempora/internal/scheduling/application/preview"
	"github.com/tempora-app/tempora/internal/scheduling/application/queries"
	"github.com/tempora-app/tempora/internal/scheduling/domain"
)

// SchedulingHandler adapts the scheduling commands and queries to HTTP.
type SchedulingHandler struct {
	runPreview    *commands.RunPreviewHandler
	applyPreview  *commands.ApplyPreviewHandler
	cancelPreview *commands.CancelPreviewHandler
	retryPreview  *commands.RetryPreviewHandler
	placeTask     *commands.PlaceTaskHandler
	sweepMissed   *commands.SweepMissedHandler
	getSchedule   *queries.GetScheduleHandler
	findSlots     *queries.FindAvailableSlotsHandler
	previews      preview.Store

	// defaultUserID serves requests that carry no user_id.
	defaultUserID uuid.UUID
	logger        *slog.Logger
}

// NewSchedulingHandler creates a SchedulingHandler.
func NewSchedulingHandler(
	runPreview *commands.RunPreviewHandler,
	applyPreview *commands.ApplyPreviewHandler,
	cancelPreview *commands.CancelPreviewHandler,
	retryPreview *commands.RetryPreviewHandler,
	placeTask *commands.PlaceTaskHandler,
	sweepMissed *commands.SweepMissedHandler,
	getSchedule *queries.GetScheduleHandler,
	findSlots *queries.FindAvailableSlotsHandler,
	previews preview.Store,
	defaultUserID uuid.UUID,
	logger *slog.Logger,
) *SchedulingHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulingHandler{
		runPreview:    runPreview,
		applyPreview:  applyPreview,
		cancelPreview: cancelPreview,
		retryPreview:  retryPreview,
		placeTask:     placeTask,
		sweepMissed:   sweepMissed,
		getSchedule:   getSchedule,
		findSlots:     findSlots,
		previews:      previews,
		defaultUserID: defaultUserID,
		logger:        logger,
	}
}

// Wire DTOs

type runPreviewRequest struct {
	UserID     string    `json:"user_id,omitempty"`
	RangeStart time.Time `json:"range_start"`
	RangeEnd   time.Time `json:"range_end"`
}

type placeTaskRequest struct {
	UserID string    `json:"user_id,omitempty"`
	TaskID string    `json:"task_id"`
	Start  time.Time `json:"start"`
}

type blockResponse struct {
	ID          string    `json:"id"`
	TaskID      string    `json:"task_id"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	DurationMin int       `json:"duration_min"`
	Completed   bool      `json:"completed"`
	SplitPart   int       `json:"split_part,omitempty"`
	SplitTotal  int       `json:"split_total,omitempty"`
	SplitReason string    `json:"split_reason,omitempty"`
}

type unplacedResponse struct {
	TaskID string `json:"task_id"`
	Title  string `json:"title"`
	Reason string `json:"reason"`
}

type previewResponse struct {
	RangeStart     time.Time          `json:"range_start"`
	RangeEnd       time.Time          `json:"range_end"`
	Blocks         []blockResponse    `json:"blocks"`
	Unplaced       []unplacedResponse `json:"unplaced"`
	Suggestions    []string           `json:"suggestions,omitempty"`
	UtilizationPct float64            `json:"utilization_pct"`
	Success        bool               `json:"success"`
	ComputedAt     time.Time          `json:"computed_at"`
}

type scheduleEntryResponse struct {
	Block blockResponse `json:"block"`
	Title string        `json:"title"`
}

type slotResponse struct {
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	DurationMin int       `json:"duration_min"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func toBlockResponse(b *domain.ScheduleBlock) blockResponse {
	resp := blockResponse{
		ID:          b.ID().String(),
		TaskID:      b.TaskID().String(),
		StartTime:   b.StartTime(),
		EndTime:     b.EndTime(),
		DurationMin: int(b.Duration().Minutes()),
		Completed:   b.IsCompleted(),
	}
	if s := b.Split(); s != nil {
		resp.SplitPart = s.Part
		resp.SplitTotal = s.Total
		resp.SplitReason = string(s.Reason)
	}
	return resp
}

func toPreviewResponse(session *preview.Session) previewResponse {
	resp := previewResponse{
		RangeStart:     session.RangeStart,
		RangeEnd:       session.RangeEnd,
		Blocks:         make([]blockResponse, 0, len(session.Result.Blocks)),
		Unplaced:       make([]unplacedResponse, 0, len(session.Result.Unplaced)),
		Suggestions:    session.Result.Suggestions,
		UtilizationPct: session.Result.UtilizationPct,
		Success:        session.Result.Success(),
		ComputedAt:     session.Result.ComputedAt,
	}
	for _, b := range session.Result.Blocks {
		resp.Blocks = append(resp.Blocks, toBlockResponse(b))
	}
	for _, u := range session.Result.Unplaced {
		resp.Unplaced = append(resp.Unplaced, unplacedResponse{
			TaskID: u.TaskID.String(),
			Title:  u.Title,
			Reason: string(u.Reason),
		})
	}
	return resp
}

// Handlers

// RunPreview handles POST /api/v1/preview.
func (h *SchedulingHandler) RunPreview(w http.ResponseWriter, r *http.Request) {
	var req runPreviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	userID, err := h.resolveUser(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}

	session, err := h.runPreview.Handle(r.Context(), commands.RunPreviewCommand{
		UserID:     userID,
		RangeStart: req.RangeStart,
		RangeEnd:   req.RangeEnd,
	})
	if errors.Is(err, commands.ErrInvalidRange) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewResponse(session))
}

// GetPreview handles GET /api/v1/preview.
func (h *SchedulingHandler) GetPreview(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUser(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}

	session, err := h.previews.Get(r.Context(), userID)
	if errors.Is(err, preview.ErrNoActivePreview) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewResponse(session))
}

// ApplyPreview handles POST /api/v1/preview/apply.
func (h *SchedulingHandler) ApplyPreview(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUser(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}

	session, err := h.applyPreview.Handle(r.Context(), commands.ApplyPreviewCommand{UserID: userID})
	switch {
	case errors.Is(err, preview.ErrNoActivePreview):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, commands.ErrStalePreview):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewResponse(session))
}

// RetryPreview handles POST /api/v1/preview/retry.
func (h *SchedulingHandler) RetryPreview(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUser(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}

	session, err := h.retryPreview.Handle(r.Context(), commands.RetryPreviewCommand{UserID: userID})
	if errors.Is(err, preview.ErrNoActivePreview) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toPreviewResponse(session))
}

// CancelPreview handles DELETE /api/v1/preview.
func (h *SchedulingHandler) CancelPreview(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUser(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}

	err = h.cancelPreview.Handle(r.Context(), commands.CancelPreviewCommand{UserID: userID})
	if errors.Is(err, preview.ErrNoActivePreview) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// PlaceTask handles POST /api/v1/blocks.
func (h *SchedulingHandler) PlaceTask(w http.ResponseWriter, r *http.Request) {
	var req placeTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	userID, err := h.resolveUser(req.UserID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}
	taskID, err := uuid.Parse(req.TaskID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid task_id"})
		return
	}

	block, err := h.placeTask.Handle(r.Context(), commands.PlaceTaskCommand{
		UserID: userID,
		TaskID: taskID,
		Start:  req.Start,
	})
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, commands.ErrPlacementConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case errors.Is(err, domain.ErrInvalidTransition):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
		return
	case err != nil:
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBlockResponse(block))
}

// SweepMissed handles POST /api/v1/sweep.
func (h *SchedulingHandler) SweepMissed(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUser(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}

	missed, err := h.sweepMissed.Handle(r.Context(), commands.SweepMissedCommand{
		UserID: userID,
		Now:    time.Now().UTC(),
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"missed": missed})
}

// GetSchedule handles GET /api/v1/schedule.
func (h *SchedulingHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUser(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}
	start, end, err := parseRangeParams(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	entries, err := h.getSchedule.Handle(r.Context(), queries.GetScheduleQuery{
		UserID:     userID,
		RangeStart: start,
		RangeEnd:   end,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	resp := make([]scheduleEntryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, scheduleEntryResponse{
			Block: toBlockResponse(entry.Block),
			Title: entry.Task.Title(),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// FindAvailableSlots handles GET /api/v1/slots.
func (h *SchedulingHandler) FindAvailableSlots(w http.ResponseWriter, r *http.Request) {
	userID, err := h.resolveUser(r.URL.Query().Get("user_id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user_id"})
		return
	}

	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid date, use YYYY-MM-DD"})
			return
		}
	}
	var minDuration time.Duration
	if raw := r.URL.Query().Get("min"); raw != "" {
		minDuration, err = time.ParseDuration(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid min duration"})
			return
		}
	}

	windows, err := h.findSlots.Handle(r.Context(), queries.FindAvailableSlotsQuery{
		UserID:      userID,
		Date:        date,
		MinDuration: minDuration,
	})
	if err != nil {
		h.serverError(w, r, err)
		return
	}

	resp := make([]slotResponse, 0, len(windows))
	for _, win := range windows {
		resp = append(resp, slotResponse{
			Start:       win.Start,
			End:         win.End,
			DurationMin: int(win.Duration().Minutes()),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Helpers

func (h *SchedulingHandler) resolveUser(raw string) (uuid.UUID, error) {
	if raw == "" {
		return h.defaultUserID, nil
	}
	return uuid.Parse(raw)
}

func (h *SchedulingHandler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.ErrorContext(r.Context(), "request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
}

func parseRangeParams(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	if raw := q.Get("from"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid from, use RFC 3339")
		}
		start = parsed
	}
	if raw := q.Get("to"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return time.Time{}, time.Time{}, errors.New("invalid to, use RFC 3339")
		}
		end = parsed
	}
	return start, end, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
