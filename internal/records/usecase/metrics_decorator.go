package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/fieldvault/fieldvault/internal/metrics"
	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

// recordUseCaseWithMetrics decorates RecordUseCase with metrics instrumentation.
type recordUseCaseWithMetrics struct {
	next    RecordUseCase
	metrics metrics.BusinessMetrics
}

// NewRecordUseCaseWithMetrics wraps a RecordUseCase with metrics recording.
func NewRecordUseCaseWithMetrics(useCase RecordUseCase, m metrics.BusinessMetrics) RecordUseCase {
	return &recordUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (r *recordUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	r.metrics.RecordOperation(ctx, "records", operation, status)
	r.metrics.RecordDuration(ctx, "records", operation, time.Since(start), status)
}

// Create records metrics for record creation.
func (r *recordUseCaseWithMetrics) Create(
	ctx context.Context,
	input CreateRecordInput,
) (*recordsDomain.RecordView, error) {
	start := time.Now()
	view, err := r.next.Create(ctx, input)
	r.record(ctx, "record_create", start, err)
	return view, err
}

// Update records metrics for partial updates.
func (r *recordUseCaseWithMetrics) Update(
	ctx context.Context,
	id uuid.UUID,
	fields recordsDomain.FieldChanges,
) (*recordsDomain.RecordView, error) {
	start := time.Now()
	view, err := r.next.Update(ctx, id, fields)
	r.record(ctx, "record_update", start, err)
	return view, err
}

// Get records metrics for single-record reads.
func (r *recordUseCaseWithMetrics) Get(ctx context.Context, id uuid.UUID) (*recordsDomain.RecordView, error) {
	start := time.Now()
	view, err := r.next.Get(ctx, id)
	r.record(ctx, "record_get", start, err)
	return view, err
}

// ListByOwner records metrics for owner listings.
func (r *recordUseCaseWithMetrics) ListByOwner(
	ctx context.Context,
	ownerID int64,
	offset, limit int,
) ([]*recordsDomain.RecordView, error) {
	start := time.Now()
	views, err := r.next.ListByOwner(ctx, ownerID, offset, limit)
	r.record(ctx, "record_list", start, err)
	return views, err
}

// Delete records metrics for record deletion.
func (r *recordUseCaseWithMetrics) Delete(ctx context.Context, id uuid.UUID) error {
	start := time.Now()
	err := r.next.Delete(ctx, id)
	r.record(ctx, "record_delete", start, err)
	return err
}
