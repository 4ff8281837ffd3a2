package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/period"
)

// RecordService orchestrates record writes across storage and AMQP.
type RecordService struct {
	store     RecordStore
	publisher EventPublisher
	calc      *period.Calculator
	summaries SummaryInvalidator
}

// NewRecordService wires the service. publisher and summaries may be nil.
func NewRecordService(store RecordStore, publisher EventPublisher, calc *period.Calculator, summaries SummaryInvalidator) *RecordService {
	return &RecordService{
		store:     store,
		publisher: publisher,
		calc:      calc,
		summaries: summaries,
	}
}

// CreateRecord saves a record locally and announces it.
func (s *RecordService) CreateRecord(ctx context.Context, r core.Record) (core.Record, error) {
	if err := r.Validate(); err != nil {
		return core.Record{}, err
	}

	saved, err := s.store.CreateRecord(ctx, r)
	if err != nil {
		return core.Record{}, fmt.Errorf("save record: %w", err)
	}
	s.invalidate()

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping record.created")
		return saved, nil
	}
	// The record is stored; a lost event only delays downstream consumers.
	if err := s.publisher.PublishRecordCreated(ctx, saved); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record created", "id", saved.ID, "error", err)
	}

	return saved, nil
}

// DeleteRecord soft deletes a record and announces it.
func (s *RecordService) DeleteRecord(ctx context.Context, id int64) error {
	if err := s.store.SoftDeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("soft delete record: %w", err)
	}
	s.invalidate()

	if s.publisher == nil {
		slog.WarnContext(ctx, "AMQP publisher not available, skipping record.deleted")
		return nil
	}
	if err := s.publisher.PublishRecordDeleted(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish record deleted", "id", id, "error", err)
	}

	return nil
}

func (s *RecordService) GetRecord(ctx context.Context, id int64) (core.Record, error) {
	return s.store.GetRecord(ctx, id)
}

// ListRecords returns the records of an explicit range.
func (s *RecordService) ListRecords(ctx context.Context, r core.DateRange) ([]core.Record, error) {
	records, err := s.store.ListRecords(ctx, r)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// ListForPeriod returns the records of the period of kind that is offset
// periods away from the one containing date.
func (s *RecordService) ListForPeriod(ctx context.Context, date time.Time, kind core.PeriodKind, offset int) (core.DateRange, []core.Record, error) {
	r := s.calc.Range(s.calc.Advance(date, kind, offset), kind)
	records, err := s.ListRecords(ctx, r)
	if err != nil {
		return core.DateRange{}, nil, err
	}
	return r, records, nil
}

func (s *RecordService) invalidate() {
	if s.summaries != nil {
		s.summaries.InvalidateSummaries()
	}
}
