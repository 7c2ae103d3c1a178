package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskReceiptRender renders a PDF receipt for a recorded payment.
	TaskReceiptRender = "receipt:render"
	// TaskSessionPurge removes expired session rows.
	TaskSessionPurge = "sessions:purge"
	// TaskIdempotencyCleanup prunes old idempotency keys.
	TaskIdempotencyCleanup = "idempotency:cleanup"
)

// ReceiptRenderPayload identifies the payment to render.
type ReceiptRenderPayload struct {
	PaymentID int64 `json:"paymentId"`
}

// NewReceiptRenderTask constructs an Asynq task.
func NewReceiptRenderTask(payload ReceiptRenderPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskReceiptRender, data), nil
}

// NewSessionPurgeTask constructs the periodic session purge task.
func NewSessionPurgeTask() *asynq.Task {
	return asynq.NewTask(TaskSessionPurge, nil)
}

// NewIdempotencyCleanupTask constructs the periodic key cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}
