package api

// UpdateItemsRequest asks for a batch item status change, optionally
// deferred by DelaySeconds.
type UpdateItemsRequest struct {
	IDs          []int64 `json:"ids" validate:"required,min=1,dive,gt=0"`
	Status       string  `json:"status" validate:"required,oneof=FRESH OLD BAD EATEN"`
	DelaySeconds int64   `json:"delay_seconds" validate:"gte=0"`
}

// ProcessReceiptRequest asks for a receipt image to be scraped.
type ProcessReceiptRequest struct {
	ReceiptID int64  `json:"receipt_id" validate:"required,gt=0"`
	URL       string `json:"url" validate:"required,url"`
}

// DailyReportRequest asks for a one-off report for a single user.
type DailyReportRequest struct {
	UserID int64 `json:"user_id" validate:"required,gt=0"`
}

// EnqueueResponse confirms a job was accepted.
type EnqueueResponse struct {
	JobID string `json:"job_id"`
	Queue string `json:"queue"`
}
