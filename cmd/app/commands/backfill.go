package commands

import (
	"context"
	"fmt"
	"log/slog"

	recordsUsecase "github.com/fieldvault/fieldvault/internal/records/usecase"
)

// RunBackfill migrates legacy plaintext columns to their encrypted
// counterparts in batches. With dryRun set it only reports how many rows still
// hold unmigrated plaintext and changes nothing. Safe to re-run: rows already
// carrying ciphertext are never touched, so an interrupted run resumes where
// it stopped.
func RunBackfill(
	ctx context.Context,
	backfillUseCase recordsUsecase.BackfillUseCase,
	logger *slog.Logger,
	dryRun bool,
) error {
	if dryRun {
		pending, err := backfillUseCase.Pending(ctx)
		if err != nil {
			return fmt.Errorf("failed to count pending rows: %w", err)
		}

		logger.Info("backfill dry run", slog.Int("pending_rows", pending))
		return nil
	}

	migrated, err := backfillUseCase.Run(ctx)
	if err != nil {
		return fmt.Errorf("backfill failed after %d rows: %w", migrated, err)
	}

	logger.Info("backfill completed", slog.Int("migrated_rows", migrated))
	return nil
}
