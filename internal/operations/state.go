package operations

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// OperationStatus represents the overall operation status.
type OperationStatus string

const (
	OperationStatusPending   OperationStatus = "pending"
	OperationStatusRunning   OperationStatus = "running"
	OperationStatusCompleted OperationStatus = "completed"
	OperationStatusFailed    OperationStatus = "failed"
	OperationStatusCancelled OperationStatus = "cancelled"
)

// Context keys for data passed between steps.
const (
	CtxDataset    = "dataset"
	CtxReport     = "report"
	CtxResult     = "result"
	CtxExportPath = "export_path"
)

// OperationState is the complete state of one pipeline run.
type OperationState struct {
	mu sync.RWMutex

	ID        string          `json:"id"`
	Status    OperationStatus `json:"status"`
	StartTime time.Time       `json:"start_time"`
	EndTime   *time.Time      `json:"end_time,omitempty"`

	Steps map[string]*StepState `json:"steps"`

	// Data handed from one step to the next, keyed by the Ctx constants.
	context map[string]any

	Error string `json:"error,omitempty"`
}

// NewOperationState creates a pending operation with a fresh ID.
func NewOperationState() *OperationState {
	return &OperationState{
		ID:        uuid.New().String(),
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Steps:     make(map[string]*StepState),
		context:   make(map[string]any),
	}
}

// Start marks the operation as running.
func (o *OperationState) Start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Status = OperationStatusRunning
	o.StartTime = time.Now()
}

// Complete marks the operation as completed.
func (o *OperationState) Complete() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusCompleted
}

// Fail marks the operation as failed.
func (o *OperationState) Fail(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusFailed
	if err != nil {
		o.Error = err.Error()
	}
}

// Cancel marks the operation as cancelled.
func (o *OperationState) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := time.Now()
	o.EndTime = &now
	o.Status = OperationStatusCancelled
}

// GetStep returns the state of one step.
func (o *OperationState) GetStep(stepID string) *StepState {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Steps[stepID]
}

// SetStep records the state of one step.
func (o *OperationState) SetStep(stepID string, state *StepState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Steps[stepID] = state
}

// GetContext retrieves a value from the operation context.
func (o *OperationState) GetContext(key string) (any, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	val, ok := o.context[key]
	return val, ok
}

// SetContext sets a value in the operation context.
func (o *OperationState) SetContext(key string, value any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.context[key] = value
}

// GetStatus returns the current status under the read lock.
func (o *OperationState) GetStatus() OperationStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.Status
}
