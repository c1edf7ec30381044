package commands

import (
	"context"
	"fmt"
	"log/slog"

	recordsUsecase "github.com/fieldvault/fieldvault/internal/records/usecase"
)

// RunProvisionDefaults seeds the default placeholder records for an owner.
// Idempotent: entries the owner already has are left untouched.
func RunProvisionDefaults(
	ctx context.Context,
	provisionUseCase recordsUsecase.ProvisionUseCase,
	logger *slog.Logger,
	ownerID int64,
) error {
	if ownerID <= 0 {
		return fmt.Errorf("owner-id must be a positive integer")
	}

	if err := provisionUseCase.EnsureDefaults(ctx, ownerID); err != nil {
		return fmt.Errorf("failed to provision default records: %w", err)
	}

	logger.Info("default records provisioned", slog.Int64("owner_id", ownerID))
	return nil
}
