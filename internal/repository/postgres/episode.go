package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/aafiyacare/homecare-api/internal/model"
	"github.com/aafiyacare/homecare-api/internal/repository"
)

const episodeColumns = `id, patient_id, referral_source, diagnosis_summary, care_plan, status,
	started_at, closed_at, close_reason, created_at, updated_at`

type episodeRepository struct {
	db *sqlx.DB
}

func NewEpisodeRepository(db *sqlx.DB) repository.EpisodeRepository {
	return &episodeRepository{db: db}
}

func (r *episodeRepository) Create(ctx context.Context, episode *model.CareEpisode) error {
	query := `
		INSERT INTO care_episodes (
			id, patient_id, referral_source, diagnosis_summary, care_plan, status,
			started_at, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	episode.CreatedAt = time.Now()
	episode.UpdatedAt = episode.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		episode.ID,
		episode.PatientID,
		episode.ReferralSource,
		episode.DiagnosisSummary,
		episode.CarePlan,
		episode.Status,
		episode.StartedAt,
		episode.CreatedAt,
		episode.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create episode: %w", err)
	}
	return nil
}

func (r *episodeRepository) Get(ctx context.Context, id uuid.UUID) (*model.CareEpisode, error) {
	query := fmt.Sprintf(`SELECT %s FROM care_episodes WHERE id = $1`, episodeColumns)
	var episode model.CareEpisode
	if err := r.db.GetContext(ctx, &episode, query, id); err != nil {
		return nil, notFound(err, "episode")
	}
	return &episode, nil
}

func (r *episodeRepository) Update(ctx context.Context, episode *model.CareEpisode) error {
	query := `
		UPDATE care_episodes
		SET referral_source = $2, diagnosis_summary = $3, care_plan = $4, status = $5,
			closed_at = $6, close_reason = $7, updated_at = $8
		WHERE id = $1
	`
	episode.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		episode.ID,
		episode.ReferralSource,
		episode.DiagnosisSummary,
		episode.CarePlan,
		episode.Status,
		episode.ClosedAt,
		episode.CloseReason,
		episode.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update episode: %w", err)
	}
	return requireRow(result, "episode")
}

func (r *episodeRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.CareEpisode, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM care_episodes WHERE patient_id = $1 ORDER BY started_at DESC`,
		episodeColumns)
	var episodes []*model.CareEpisode
	if err := r.db.SelectContext(ctx, &episodes, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list episodes: %w", err)
	}
	return episodes, nil
}

func (r *episodeRepository) GetOpenByPatient(ctx context.Context, patientID uuid.UUID) (*model.CareEpisode, error) {
	query := fmt.Sprintf(
		`SELECT %s FROM care_episodes WHERE patient_id = $1 AND status IN ('open', 'on_hold') ORDER BY started_at DESC LIMIT 1`,
		episodeColumns)
	var episode model.CareEpisode
	if err := r.db.GetContext(ctx, &episode, query, patientID); err != nil {
		return nil, notFound(err, "episode")
	}
	return &episode, nil
}
