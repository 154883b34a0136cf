package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/Rrens/health-insights/internal/domain"
	"github.com/Rrens/health-insights/internal/repository/mongo"
)

// ErrArchiveDisabled is returned when no archive backend is configured
var ErrArchiveDisabled = errors.New("analysis archive is disabled")

// HistoryArchive stores encrypted snapshots of a user's analysis history
type HistoryArchive interface {
	Save(ctx context.Context, userID uuid.UUID, records []domain.AnalysisRecord) (*mongo.ArchiveEntry, error)
	List(ctx context.Context, userID uuid.UUID) ([]mongo.ArchiveEntry, error)
	Load(ctx context.Context, userID uuid.UUID, id string) ([]domain.AnalysisRecord, error)
}

type historySource interface {
	History(ctx context.Context, userID uuid.UUID) ([]domain.AnalysisRecord, error)
}

// ArchiveService snapshots the current analysis history into the archive
type ArchiveService struct {
	archive HistoryArchive
	history historySource
}

// NewArchiveService creates a new archive service. archive may be nil.
func NewArchiveService(archive HistoryArchive, analyses *AnalysisService) *ArchiveService {
	return &ArchiveService{archive: archive, history: analyses}
}

// Archive stores the user's current history. An empty history is rejected.
func (s *ArchiveService) Archive(ctx context.Context, userID uuid.UUID) (*mongo.ArchiveEntry, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}

	records, err := s.history.History(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, domain.NewValidationError("history", "has no analyses to archive")
	}

	entry, err := s.archive.Save(ctx, userID, records)
	if err != nil {
		return nil, err
	}

	log.Info().Str("user_id", userID.String()).Str("archive_id", entry.ID).Int("records", entry.RecordCount).Msg("Analysis history archived")
	return entry, nil
}

// List returns the user's archives, newest first
func (s *ArchiveService) List(ctx context.Context, userID uuid.UUID) ([]mongo.ArchiveEntry, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.List(ctx, userID)
}

// Load returns the records of one archive owned by the user
func (s *ArchiveService) Load(ctx context.Context, userID uuid.UUID, id string) ([]domain.AnalysisRecord, error) {
	if s.archive == nil {
		return nil, ErrArchiveDisabled
	}
	return s.archive.Load(ctx, userID, id)
}
