package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/ezanim/backend/internal/db"
	"github.com/ezanim/backend/internal/models"
)

// PostgresVideoRequestRepository provides PostgreSQL-backed persistence for
// video requests.
type PostgresVideoRequestRepository struct {
	pool db.Pool
}

// NewPostgresVideoRequestRepository constructs a request repository backed by PostgreSQL.
func NewPostgresVideoRequestRepository(pool db.Pool) *PostgresVideoRequestRepository {
	return &PostgresVideoRequestRepository{pool: pool}
}

// Create persists a new video request record.
func (r *PostgresVideoRequestRepository) Create(ctx context.Context, request models.VideoRequest) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO video_requests (id, prompt, script, html_content, audio_path, duration, aspect_ratio, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `, request.ID, request.Prompt, request.Script, request.HTMLContent, request.AudioPath,
		request.Duration, string(request.AspectRatio), string(request.Status), request.CreatedAt, request.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert video request: %w", err)
	}

	return nil
}

// Get fetches a video request by id.
func (r *PostgresVideoRequestRepository) Get(ctx context.Context, id string) (models.VideoRequest, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.VideoRequest{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, prompt, script, html_content, audio_path, duration, aspect_ratio, status, created_at, updated_at
        FROM video_requests
        WHERE id = $1
    `, id)

	var request models.VideoRequest
	var aspect, status string
	if err := row.Scan(&request.ID, &request.Prompt, &request.Script, &request.HTMLContent,
		&request.AudioPath, &request.Duration, &aspect, &status, &request.CreatedAt, &request.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.VideoRequest{}, ErrNotFound
		}
		return models.VideoRequest{}, fmt.Errorf("select video request: %w", err)
	}
	request.AspectRatio = models.AspectRatio(aspect)
	request.Status = models.Status(status)

	return request, nil
}

// Update replaces an existing video request record.
func (r *PostgresVideoRequestRepository) Update(ctx context.Context, request models.VideoRequest) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE video_requests
        SET script = $2, html_content = $3, audio_path = $4, duration = $5, status = $6, updated_at = $7
        WHERE id = $1
    `, request.ID, request.Script, request.HTMLContent, request.AudioPath,
		request.Duration, string(request.Status), request.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video request: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// PostgresVideoRepository provides PostgreSQL-backed persistence for rendered
// videos.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

// Save upserts the rendered video for a request.
func (r *PostgresVideoRepository) Save(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, video_request_id, url, storage_key, duration, width, height, fps, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        ON CONFLICT (video_request_id)
        DO UPDATE SET id = EXCLUDED.id, url = EXCLUDED.url, storage_key = EXCLUDED.storage_key,
            duration = EXCLUDED.duration, width = EXCLUDED.width, height = EXCLUDED.height,
            fps = EXCLUDED.fps, created_at = EXCLUDED.created_at
    `, video.ID, video.VideoRequestID, video.URL, video.StorageKey,
		video.Duration, video.Width, video.Height, video.FPS, video.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert video: %w", err)
	}

	return nil
}

// FindByRequestID fetches the rendered video for a request.
func (r *PostgresVideoRepository) FindByRequestID(ctx context.Context, videoRequestID string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT id, video_request_id, url, storage_key, duration, width, height, fps, created_at
        FROM videos
        WHERE video_request_id = $1
    `, videoRequestID)

	var video models.Video
	if err := row.Scan(&video.ID, &video.VideoRequestID, &video.URL, &video.StorageKey,
		&video.Duration, &video.Width, &video.Height, &video.FPS, &video.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}
