package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"datadeck/internal/infrastructure"
)

// Event types emitted while an operation runs. They match the message
// types the websocket hub delivers to clients.
const (
	EventStatus   = "operation:status"
	EventProgress = "operation:progress"
	EventComplete = "operation:complete"
	EventError    = "operation:error"
)

// Broadcaster receives operation lifecycle events. The websocket hub
// implements it; a nil broadcaster is replaced with a no-op.
type Broadcaster interface {
	Broadcast(messageType string, data any)
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(string, any) {}

// Manager executes pipeline steps sequentially and reports progress.
type Manager struct {
	logger      *slog.Logger
	broadcaster Broadcaster
}

// NewManager creates a manager with the given logger and broadcaster.
func NewManager(logger *slog.Logger, broadcaster Broadcaster) *Manager {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}
	if broadcaster == nil {
		broadcaster = noopBroadcaster{}
	}
	return &Manager{
		logger:      logger.With(slog.String("component", "operations.manager")),
		broadcaster: broadcaster,
	}
}

// Run executes the steps in order against the state. It stops at the first
// failure. A context cancellation marks the operation cancelled.
func (m *Manager) Run(ctx context.Context, state *OperationState, steps []Step) error {
	if len(steps) == 0 {
		return fmt.Errorf("operation %s: no steps", state.ID)
	}

	state.Start()
	m.broadcastStatus(state)
	m.logger.InfoContext(ctx, "operation started",
		slog.String("operation_id", state.ID),
		slog.Int("steps", len(steps)))

	start := time.Now()
	for i, step := range steps {
		stepState := NewStepState(step.ID(), step.Name())
		state.SetStep(step.ID(), stepState)

		if err := m.runStep(ctx, state, stepState, step, i, len(steps)); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				state.Cancel()
				m.broadcastStatus(state)
				m.logger.WarnContext(ctx, "operation cancelled",
					slog.String("operation_id", state.ID),
					slog.String("step", step.ID()))
				return err
			}

			state.Fail(err)
			m.broadcaster.Broadcast(EventError, map[string]any{
				"operation_id": state.ID,
				"step":         step.ID(),
				"message":      err.Error(),
			})
			m.logger.ErrorContext(ctx, "operation failed",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.String("error", err.Error()))
			return err
		}
	}

	state.Complete()
	m.broadcaster.Broadcast(EventComplete, map[string]any{
		"operation_id": state.ID,
		"steps":        state.Steps,
	})
	m.logger.InfoContext(ctx, "operation completed",
		slog.String("operation_id", state.ID),
		slog.Duration("duration", time.Since(start)))
	return nil
}

func (m *Manager) runStep(ctx context.Context, state *OperationState, stepState *StepState, step Step, idx, total int) error {
	if err := ctx.Err(); err != nil {
		stepState.Fail(err)
		return err
	}

	if err := step.Validate(state); err != nil {
		stepState.Fail(err)
		return err
	}

	stepState.Start()
	m.broadcastProgress(state, step, idx, total, "started")
	m.logger.DebugContext(ctx, "step started",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()))

	if err := step.Execute(ctx, state); err != nil {
		stepState.Fail(err)
		return err
	}

	stepState.Complete()
	m.broadcastProgress(state, step, idx+1, total, "completed")
	m.logger.DebugContext(ctx, "step completed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", stepState.Duration()))
	return nil
}

func (m *Manager) broadcastStatus(state *OperationState) {
	m.broadcaster.Broadcast(EventStatus, map[string]any{
		"operation_id": state.ID,
		"status":       state.GetStatus(),
	})
}

func (m *Manager) broadcastProgress(state *OperationState, step Step, done, total int, message string) {
	m.broadcaster.Broadcast(EventProgress, map[string]any{
		"operation_id": state.ID,
		"step":         step.ID(),
		"progress":     done * 100 / total,
		"message":      message,
	})
}
