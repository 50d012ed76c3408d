package supabase

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cozylogic-backend/internal/lifecycle"
	"cozylogic-backend/internal/models"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ErrNotFound is returned when a row does not exist or is not owned by the
// caller. It wraps sql.ErrNoRows.
var ErrNotFound = fmt.Errorf("not found: %w", sql.ErrNoRows)

// ErrRoomBusy is returned when a room cannot be changed because a
// generation is in flight.
var ErrRoomBusy = errors.New("room has a generation in flight")

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing handle.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

func (d *DatabaseClient) DB() *sql.DB { return d.db }

func (d *DatabaseClient) Close() error { return d.db.Close() }

func (d *DatabaseClient) Ping(ctx context.Context) error { return d.db.PingContext(ctx) }

const roomColumns = `id, user_id, room_type, goal, style_key, budget_tier, input_image_path,
	status, generation_status, generation_error, created_at, updated_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRoom(row rowScanner) (*models.Room, error) {
	var (
		r   models.Room
		gen sql.NullString
	)
	err := row.Scan(
		&r.ID, &r.UserID, &r.RoomType, &r.Goal, &r.StyleKey, &r.BudgetTier, &r.InputImagePath,
		&r.Status, &gen, &r.GenerationError, &r.CreatedAt, &r.UpdatedAt, &r.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	r.GenerationStatus = lifecycle.GenerationStatus(gen.String)
	return &r, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateRoom inserts a draft room.
func (d *DatabaseClient) CreateRoom(ctx context.Context, room *models.Room) (*models.Room, error) {
	row := d.db.QueryRowContext(ctx, `
		INSERT INTO rooms (id, user_id, room_type, goal, style_key, budget_tier, input_image_path, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+roomColumns,
		room.ID, room.UserID, string(room.RoomType), string(room.Goal), string(room.StyleKey),
		string(room.BudgetTier), room.InputImagePath, string(lifecycle.RoomDraft),
	)
	created, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return created, nil
}

// GetRoom reads a live room by id alone so callers can tell a missing room
// from one owned by someone else.
func (d *DatabaseClient) GetRoom(ctx context.Context, roomID uuid.UUID) (*models.Room, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+roomColumns+`
		FROM rooms
		WHERE id = $1 AND deleted_at IS NULL
	`, roomID)
	room, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get room: %w", notFound(err))
	}
	return room, nil
}

// UpdateSelections applies a partial selection update. Rooms with a
// generation in flight are not touched and report ErrNotFound.
func (d *DatabaseClient) UpdateSelections(ctx context.Context, roomID, userID uuid.UUID, sel models.Selections) (*models.Room, error) {
	row := d.db.QueryRowContext(ctx, `
		UPDATE rooms
		SET room_type = COALESCE($3, room_type),
			goal = COALESCE($4, goal),
			style_key = COALESCE($5, style_key),
			budget_tier = COALESCE($6, budget_tier),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
			AND status NOT IN ('queued', 'generating')
		RETURNING `+roomColumns,
		roomID, userID,
		nullableString((*string)(sel.RoomType)),
		nullableString((*string)(sel.Goal)),
		nullableString((*string)(sel.StyleKey)),
		nullableString((*string)(sel.BudgetTier)),
	)
	room, err := scanRoom(row)
	if err != nil {
		return nil, fmt.Errorf("failed to update room: %w", notFound(err))
	}
	return room, nil
}

// TransitionRoom moves generation_status to `to` and mirrors the coarse
// status, but only if the current value is a legal predecessor. A move to
// queued additionally requires the coarse status to be idle. It reports
// whether a row was updated.
func (d *DatabaseClient) TransitionRoom(ctx context.Context, roomID, userID uuid.UUID, to lifecycle.GenerationStatus, reason string) (bool, error) {
	preds := lifecycle.Predecessors(to)
	if len(preds) == 0 {
		return false, fmt.Errorf("%w: nothing leads to %q", lifecycle.ErrIllegalTransition, to)
	}
	from := make([]string, len(preds))
	for i, p := range preds {
		from[i] = string(p)
	}

	var genErr sql.NullString
	if to == lifecycle.GenError {
		genErr = sql.NullString{String: reason, Valid: true}
	}

	query := `
		UPDATE rooms
		SET status = $3, generation_status = $4, generation_error = $5, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
			AND COALESCE(generation_status, '') = ANY($6)`
	if to == lifecycle.GenQueued {
		query += `
			AND status NOT IN ('queued', 'generating')`
	}

	res, err := d.db.ExecContext(ctx, query,
		roomID, userID, string(lifecycle.RoomStatusFor(to)), string(to), genErr, pq.Array(from),
	)
	if err != nil {
		return false, fmt.Errorf("failed to move room to %s: %w", to, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n > 0, nil
}

// SoftDeleteRoom marks the room deleted. alreadyDeleted is true when it was
// deleted before this call. Rooms with a generation in flight are not
// touched and report ErrRoomBusy.
func (d *DatabaseClient) SoftDeleteRoom(ctx context.Context, roomID, userID uuid.UUID, at time.Time) (alreadyDeleted bool, err error) {
	deleted, err := d.roomDeleted(ctx, roomID, userID)
	if err != nil || deleted {
		return deleted, err
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE rooms SET deleted_at = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND deleted_at IS NULL
			AND status NOT IN ('queued', 'generating')
	`, roomID, userID, at)
	if err != nil {
		return false, fmt.Errorf("failed to delete room: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	// A concurrent delete may have won.
	deleted, err = d.roomDeleted(ctx, roomID, userID)
	if err != nil || deleted {
		return deleted, err
	}
	return false, ErrRoomBusy
}

func (d *DatabaseClient) roomDeleted(ctx context.Context, roomID, userID uuid.UUID) (bool, error) {
	var deletedAt sql.NullTime
	err := d.db.QueryRowContext(ctx, `
		SELECT deleted_at FROM rooms WHERE id = $1 AND user_id = $2
	`, roomID, userID).Scan(&deletedAt)
	if err != nil {
		return false, fmt.Errorf("failed to get room: %w", notFound(err))
	}
	return deletedAt.Valid, nil
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
