package service

import (
	"context"
	"fmt"

	"stakehouse/events"
	"stakehouse/models"
)

// RecordBalanceChange records a balance history entry and emits the balance
// change event. This is the single entry point for all wallet mutations, so
// every internal balance change leaves exactly one audit record.
func RecordBalanceChange(ctx context.Context, uow UnitOfWork, entry *models.BalanceEntry) error {
	if err := uow.BalanceHistoryRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	uow.EventBus().Publish(events.BalanceChangeEvent{
		Address:      entry.Address,
		OldBalance:   entry.BalanceBefore,
		NewBalance:   entry.BalanceAfter,
		ChangeAmount: entry.ChangeAmount,
		EntryType:    entry.EntryType,
	})

	return nil
}

// Helper to get a pointer to a RelatedType
func relatedTypePtr(rt models.RelatedType) *models.RelatedType {
	return &rt
}
