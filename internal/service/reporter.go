package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-desk/internal/domain"
	"github.com/spec-kit/complaint-desk/internal/notification"
	"github.com/spec-kit/complaint-desk/internal/simulator"
	apperrors "github.com/spec-kit/complaint-desk/pkg/util"
)

// detailTimeLayout renders server timestamps inside notification details.
const detailTimeLayout = "02 January 2006, 03:04 PM"

// reporter funnels every outcome into the notification slot.
type reporter struct {
	notices *notification.Center
	logger  *zap.Logger
}

func (r reporter) success(message string, opts ...notification.Option) {
	if r.notices == nil {
		return
	}
	r.notices.Show(domain.NotificationSuccess, message, opts...)
}

func (r reporter) info(message string) {
	if r.notices == nil {
		return
	}
	r.notices.Show(domain.NotificationInfo, message)
}

// fail shows err and returns it unchanged. User-correctable problems are
// warnings; everything else is an error.
func (r reporter) fail(err error) error {
	if err == nil {
		return nil
	}
	de := apperrors.ToDomainError(err)
	if de.Code == apperrors.CodeInternal {
		r.logger.Error("operation failed", zap.Error(err))
	}
	if r.notices == nil {
		return err
	}
	kind := domain.NotificationError
	switch de.Code {
	case apperrors.CodeValidation, apperrors.CodeTransitionInProgress, apperrors.CodeWorkerNotFound:
		kind = domain.NotificationWarning
	}
	r.notices.Show(kind, de.Message)
	return err
}

// errSuperseded marks a commit refused because Abandon handed the task on.
var errSuperseded = errors.New("transition superseded")

func supersededError(slot string) error {
	return apperrors.NewConflict("request was superseded by a newer one", map[string]any{"slot": slot})
}

// simulatorError maps simulator envelope errors onto the domain taxonomy.
func simulatorError(op simulator.Operation, slot string, err error) error {
	switch {
	case errors.Is(err, simulator.ErrSlotBusy):
		return apperrors.NewTransitionInProgress(slot)
	case errors.Is(err, simulator.ErrStaleResult):
		return supersededError(slot)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return apperrors.NewSimulatedFailure(string(op))
	}
	return err
}
