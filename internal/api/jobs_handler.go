package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Afrothundr/broccoli-scheduler/internal/domain"
	"github.com/Afrothundr/broccoli-scheduler/internal/queue"
)

// JobDispatcher enqueues validated payloads. *queue.Dispatcher satisfies it.
type JobDispatcher interface {
	Enqueue(ctx context.Context, p queue.Payload, delay time.Duration) (uuid.UUID, error)
}

// JobsHandler handles the job enqueue endpoints.
type JobsHandler struct {
	dispatcher JobDispatcher
	validator  *validator.Validate
	logger     *slog.Logger
}

// NewJobsHandler creates a new JobsHandler with the given dispatcher.
// If logger is nil, the default logger is used.
func NewJobsHandler(dispatcher JobDispatcher, logger *slog.Logger) *JobsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &JobsHandler{
		dispatcher: dispatcher,
		validator:  validator.New(),
		logger:     logger.With(slog.String("component", "jobs_handler")),
	}
}

// UpdateItems handles POST /api/jobs/items/update.
func (h *JobsHandler) UpdateItems(w http.ResponseWriter, r *http.Request) {
	var req UpdateItemsRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	status, err := domain.ParseItemStatus(req.Status)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid item status: "+req.Status)
		return
	}

	payload := &queue.ItemUpdatePayload{IDs: req.IDs, Status: status}
	delay := time.Duration(req.DelaySeconds) * time.Second
	h.enqueue(w, r, payload, delay)
}

// ProcessReceipt handles POST /api/jobs/receipts/process.
func (h *JobsHandler) ProcessReceipt(w http.ResponseWriter, r *http.Request) {
	var req ProcessReceiptRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	payload := &queue.ImageProcessPayload{ReceiptID: req.ReceiptID, URL: req.URL}
	h.enqueue(w, r, payload, 0)
}

// DailyReport handles POST /api/jobs/reports/daily.
func (h *JobsHandler) DailyReport(w http.ResponseWriter, r *http.Request) {
	var req DailyReportRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	payload := &queue.DailyReportPayload{UserID: req.UserID}
	h.enqueue(w, r, payload, 0)
}

// decodeAndValidate parses the body into dst and runs struct validation,
// writing the 400 itself on failure.
func (h *JobsHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := DecodeJSON(r, dst); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid request format")
		return false
	}
	if err := h.validator.Struct(dst); err != nil {
		RespondWithError(w, http.StatusBadRequest, "Validation error: "+err.Error())
		return false
	}
	return true
}

// enqueue submits the payload and writes the 202 response. Validation
// failures inside the dispatcher map to 400, everything else to 500.
func (h *JobsHandler) enqueue(w http.ResponseWriter, r *http.Request, p queue.Payload, delay time.Duration) {
	id, err := h.dispatcher.Enqueue(r.Context(), p, delay)
	if err != nil {
		if errors.Is(err, queue.ErrInvalidPayload) || errors.Is(err, queue.ErrPayloadMismatch) {
			RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("failed to enqueue job", "queue", p.Queue(), "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Failed to enqueue job")
		return
	}

	RespondWithJSON(w, http.StatusAccepted, EnqueueResponse{
		JobID: id.String(),
		Queue: string(p.Queue()),
	})
}
