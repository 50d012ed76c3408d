package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"cozylogic-backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const generationColumns = `id, room_id, user_id, provider, prompt_version, output_image_path, watermarked,
	explanation, recommendations, recommendations_raw, created_at, deleted_at, hard_deleted_at`

func scanGeneration(row rowScanner) (*models.Generation, error) {
	var (
		g    models.Generation
		recs []byte
	)
	err := row.Scan(
		&g.ID, &g.RoomID, &g.UserID, &g.Provider, &g.PromptVersion, &g.OutputImagePath, &g.Watermarked,
		&g.Explanation, &recs, &g.RecommendationsRaw, &g.CreatedAt, &g.DeletedAt, &g.HardDeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(recs) > 0 {
		g.Recommendations = json.RawMessage(recs)
	}
	return &g, nil
}

func (d *DatabaseClient) queryGenerations(ctx context.Context, query string, args ...any) ([]models.Generation, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Generation
	for rows.Next() {
		g, err := scanGeneration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, rows.Err()
}

// CreateGeneration inserts the record of a finished pipeline run.
func (d *DatabaseClient) CreateGeneration(ctx context.Context, g *models.Generation) (*models.Generation, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO generations (id, room_id, user_id, provider, prompt_version, output_image_path, watermarked, explanation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+generationColumns,
		g.ID, g.RoomID, g.UserID, g.Provider, g.PromptVersion, g.OutputImagePath, g.Watermarked, g.Explanation,
	)
	created, err := scanGeneration(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create generation: %w", err)
	}
	return created, nil
}

// SetRecommendations stores either the parsed payload or the raw reply.
func (d *DatabaseClient) SetRecommendations(ctx context.Context, generationID, userID uuid.UUID, parsed json.RawMessage, raw string) error {
	var recs, rawText sql.NullString
	if len(parsed) > 0 {
		recs = sql.NullString{String: string(parsed), Valid: true}
	} else {
		rawText = sql.NullString{String: raw, Valid: true}
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE generations SET recommendations = $3::jsonb, recommendations_raw = $4
		WHERE id = $1 AND user_id = $2
	`, generationID, userID, recs, rawText)
	if err != nil {
		return fmt.Errorf("failed to store recommendations: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("failed to store recommendations: %w", ErrNotFound)
	}
	return nil
}

// GetGeneration reads a generation owned by userID, deleted or not.
func (d *DatabaseClient) GetGeneration(ctx context.Context, generationID, userID uuid.UUID) (*models.Generation, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE id = $1 AND user_id = $2
	`, generationID, userID)
	g, err := scanGeneration(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get generation: %w", notFound(err))
	}
	return g, nil
}

// ListActiveGenerations returns the user's non-deleted generations, newest first.
func (d *DatabaseClient) ListActiveGenerations(ctx context.Context, userID uuid.UUID) ([]models.Generation, error) {
	gens, err := d.queryGenerations(ctx, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE user_id = $1 AND deleted_at IS NULL
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list generations: %w", err)
	}
	return gens, nil
}

// ListPendingHardDeletes returns soft-deleted rows whose object is still
// stored. A valid roomID narrows the result to one room.
func (d *DatabaseClient) ListPendingHardDeletes(ctx context.Context, userID uuid.UUID, roomID uuid.NullUUID) ([]models.Generation, error) {
	gens, err := d.queryGenerations(ctx, `
		SELECT `+generationColumns+`
		FROM generations
		WHERE user_id = $1 AND deleted_at IS NOT NULL AND hard_deleted_at IS NULL
			AND ($2::uuid IS NULL OR room_id = $2::uuid)
		ORDER BY created_at ASC
	`, userID, roomID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending hard deletes: %w", err)
	}
	return gens, nil
}

// SoftDeleteGenerations sets deleted_at on the given live rows and returns
// how many changed.
func (d *DatabaseClient) SoftDeleteGenerations(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := d.db.ExecContext(ctx, `
		UPDATE generations SET deleted_at = $3
		WHERE user_id = $1 AND id = ANY($2::uuid[]) AND deleted_at IS NULL
	`, userID, pq.Array(uuidStrings(ids)), at)
	if err != nil {
		return 0, fmt.Errorf("failed to soft delete generations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

// SoftDeleteRoomGenerations soft-deletes every live generation of a room.
func (d *DatabaseClient) SoftDeleteRoomGenerations(ctx context.Context, roomID, userID uuid.UUID, at time.Time) (int64, error) {
	res, err := d.db.ExecContext(ctx, `
		UPDATE generations SET deleted_at = $3
		WHERE room_id = $1 AND user_id = $2 AND deleted_at IS NULL
	`, roomID, userID, at)
	if err != nil {
		return 0, fmt.Errorf("failed to soft delete room generations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

// MarkHardDeleted records that the stored objects of ids are gone.
func (d *DatabaseClient) MarkHardDeleted(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := d.db.ExecContext(ctx, `
		UPDATE generations SET hard_deleted_at = $3
		WHERE user_id = $1 AND id = ANY($2::uuid[]) AND hard_deleted_at IS NULL
	`, userID, pq.Array(uuidStrings(ids)), at); err != nil {
		return fmt.Errorf("failed to mark hard deleted: %w", err)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
