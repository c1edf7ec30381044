package usecase

import (
	"context"
	"log/slog"

	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

// provisionUseCase seeds placeholder records for newly created owners.
//
// Creation goes through the mutation gateway, never the repository, so the
// placeholder rows obey the same encryption guarantees as any other write.
type provisionUseCase struct {
	gateway RecordUseCase
	repo    RecordRepository
	logger  *slog.Logger
}

// NewProvisionUseCase creates the default-entry provisioner.
func NewProvisionUseCase(
	gateway RecordUseCase,
	repo RecordRepository,
	logger *slog.Logger,
) ProvisionUseCase {
	return &provisionUseCase{
		gateway: gateway,
		repo:    repo,
		logger:  logger,
	}
}

// EnsureDefaults creates any missing placeholder records for the owner.
// Existence is checked per (owner, display name), so retries and repeated
// invocations never duplicate an entry.
func (p *provisionUseCase) EnsureDefaults(ctx context.Context, ownerID int64) error {
	for _, displayName := range recordsDomain.DefaultDisplayNames {
		exists, err := p.repo.ExistsByOwnerAndName(ctx, ownerID, displayName)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		_, err = p.gateway.Create(ctx, CreateRecordInput{
			OwnerID:     ownerID,
			RecordType:  recordsDomain.DefaultRecordType,
			DisplayName: displayName,
			CreatedBy:   "provisioner",
		})
		if err != nil {
			return err
		}

		p.logger.Info("default record provisioned",
			slog.Int64("owner_id", ownerID),
			slog.String("display_name", displayName),
		)
	}
	return nil
}
