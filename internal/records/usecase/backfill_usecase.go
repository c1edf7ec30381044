package usecase

import (
	"context"
	"log/slog"

	cryptoService "github.com/fieldvault/fieldvault/internal/crypto/service"
	apperrors "github.com/fieldvault/fieldvault/internal/errors"
	recordsDomain "github.com/fieldvault/fieldvault/internal/records/domain"
)

// backfillUseCase migrates legacy plaintext columns into ciphertext columns.
//
// The job is a pure function over "rows needing migration": each batch is
// re-selected with the same predicate, so rows migrated by a previous run (or
// a previous batch) never show up again. The legacy columns are left in place
// for a manual verification window; cleanup is a separate, deliberate step.
type backfillUseCase struct {
	repo      RecordRepository
	codec     cryptoService.FieldCodec
	domain    string
	batchSize int
	logger    *slog.Logger
}

// NewBackfillUseCase creates the backfill driver bound to the given
// encryption domain.
func NewBackfillUseCase(
	repo RecordRepository,
	codec cryptoService.FieldCodec,
	domain string,
	batchSize int,
	logger *slog.Logger,
) BackfillUseCase {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &backfillUseCase{
		repo:      repo,
		codec:     codec,
		domain:    domain,
		batchSize: batchSize,
		logger:    logger,
	}
}

// Run migrates all pending rows in batches and returns the number of rows
// migrated. Rows already holding ciphertext are never re-encrypted, so
// repeated runs are safe and the second run over a migrated dataset touches
// zero rows.
func (b *backfillUseCase) Run(ctx context.Context) (int, error) {
	migrated := 0

	for {
		records, err := b.repo.ListNeedingBackfill(ctx, b.batchSize)
		if err != nil {
			return migrated, err
		}
		if len(records) == 0 {
			return migrated, nil
		}

		progressed := 0
		for _, record := range records {
			columns, err := b.migrationColumns(ctx, record)
			if err != nil {
				return migrated, err
			}
			if len(columns) == 0 {
				continue
			}
			if err := b.repo.UpdatePartial(ctx, record.ID, columns); err != nil {
				return migrated, err
			}
			migrated++
			progressed++
		}

		// Every selected row must produce at least one migrated column, or the
		// same rows would be selected forever.
		if progressed == 0 {
			return migrated, apperrors.New("backfill made no progress")
		}

		b.logger.Info("backfill batch migrated",
			slog.String("domain", b.domain),
			slog.Int("batch_rows", progressed),
			slog.Int("total_rows", migrated),
		)
	}
}

// Pending returns the number of rows a Run would migrate.
func (b *backfillUseCase) Pending(ctx context.Context) (int, error) {
	return b.repo.CountNeedingBackfill(ctx)
}

// migrationColumns encrypts every legacy value whose ciphertext column is
// still null. Columns already migrated are skipped.
func (b *backfillUseCase) migrationColumns(
	ctx context.Context,
	record *recordsDomain.Record,
) (map[string]any, error) {
	type legacyColumn struct {
		name   string
		enc    *string
		legacy *string
	}
	pairs := []legacyColumn{
		{"username_enc", record.UsernameEnc, record.UsernameLegacy},
		{"password_enc", record.PasswordEnc, record.PasswordLegacy},
		{"url_enc", record.URLEnc, record.URLLegacy},
		{"host_enc", record.HostEnc, record.HostLegacy},
		{"notes_enc", record.NotesEnc, record.NotesLegacy},
		{"metadata_enc", record.MetadataEnc, record.MetadataLegacy},
	}

	columns := make(map[string]any)
	for _, pair := range pairs {
		if pair.enc != nil || pair.legacy == nil || *pair.legacy == "" {
			continue
		}
		ciphertext, err := b.codec.EncryptField(ctx, b.domain, pair.legacy)
		if err != nil {
			return nil, err
		}
		columns[pair.name] = ciphertext
	}
	return columns, nil
}
