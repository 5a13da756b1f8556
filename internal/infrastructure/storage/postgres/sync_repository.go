package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/exp/slog"

	"marketsync/internal/domain/catalog"
	"marketsync/internal/domain/sync"
)

// SyncRepository хранилище журнала синхронизации и чекпоинтов для PostgreSQL
type SyncRepository struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewSyncRepository(pool *pgxpool.Pool, log *slog.Logger) *SyncRepository {
	return &SyncRepository{
		pool: pool,
		log:  log.With("component", "sync_repository"),
	}
}

func (r *SyncRepository) SaveQueueRecord(ctx context.Context, rec *sync.QueueRecord) error {
	const query = `
		INSERT INTO sync_queue
			(id, user_id, business_id, device_id, entity_type, entity_id,
			 sync_id, operation, payload, client_timestamp, status, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.pool.Exec(ctx, query,
		rec.ID, rec.UserID, rec.BusinessID, rec.DeviceID, rec.EntityType,
		rec.EntityID, rec.SyncID, rec.Operation, rec.Payload,
		rec.ClientTimestamp, rec.Status, rec.ProcessedAt)
	if err != nil {
		r.log.Error("failed to save queue record", "entity_id", rec.EntityID, "error", err)
		return fmt.Errorf("save queue record: %w", err)
	}
	return nil
}

func (r *SyncRepository) GetQueueRecord(ctx context.Context, businessID int, id string) (*sync.QueueRecord, error) {
	const query = `
		SELECT id, user_id, business_id, device_id, entity_type, entity_id,
		       sync_id, operation, payload, client_timestamp, status,
		       COALESCE(resolution, ''), processed_at, resolved_at
		FROM sync_queue
		WHERE business_id = $1 AND id = $2`

	rec, err := scanQueueRecord(r.pool.QueryRow(ctx, query, businessID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get queue record: %w", err)
	}
	return rec, nil
}

func (r *SyncRepository) ListConflicts(ctx context.Context, businessID int) ([]sync.QueueRecord, error) {
	const query = `
		SELECT id, user_id, business_id, device_id, entity_type, entity_id,
		       sync_id, operation, payload, client_timestamp, status,
		       COALESCE(resolution, ''), processed_at, resolved_at
		FROM sync_queue
		WHERE business_id = $1 AND status = 'conflict'
		ORDER BY processed_at ASC`

	rows, err := r.pool.Query(ctx, query, businessID)
	if err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}
	defer rows.Close()

	var records []sync.QueueRecord
	for rows.Next() {
		rec, err := scanQueueRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conflict: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

// MarkResolved переводит конфликтную запись в resolved. Запись со статусом
// conflict мутирует ровно один раз - условие status = 'conflict' сохраняет
// неизменность остального журнала.
func (r *SyncRepository) MarkResolved(ctx context.Context, businessID int, id string, resolution sync.Resolution, resolvedAt time.Time) error {
	const query = `
		UPDATE sync_queue
		SET status = 'resolved', resolution = $3, resolved_at = $4
		WHERE business_id = $1 AND id = $2 AND status = 'conflict'`

	tag, err := r.pool.Exec(ctx, query, businessID, id, resolution, resolvedAt)
	if err != nil {
		return fmt.Errorf("mark resolved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sync.ErrConflictNotFound
	}
	return nil
}

// CompletedDeletesSince лента удалений: завершенные delete-записи, а также
// разрешенные конфликты, в которых победил клиентский delete
func (r *SyncRepository) CompletedDeletesSince(ctx context.Context, businessID int, kinds []catalog.Kind, since time.Time) ([]sync.QueueRecord, error) {
	const query = `
		SELECT id, user_id, business_id, device_id, entity_type, entity_id,
		       sync_id, operation, payload, client_timestamp, status,
		       COALESCE(resolution, ''), processed_at, resolved_at
		FROM sync_queue
		WHERE business_id = $1
		  AND entity_type = ANY($2)
		  AND operation = 'delete'
		  AND (status = 'completed'
		       OR (status = 'resolved' AND resolution <> 'keep_server'))
		  AND COALESCE(resolved_at, processed_at) > $3
		ORDER BY COALESCE(resolved_at, processed_at) ASC`

	types := make([]string, len(kinds))
	for i, k := range kinds {
		types[i] = string(k)
	}

	rows, err := r.pool.Query(ctx, query, businessID, types, since)
	if err != nil {
		return nil, fmt.Errorf("completed deletes since: %w", err)
	}
	defer rows.Close()

	var records []sync.QueueRecord
	for rows.Next() {
		rec, err := scanQueueRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan deletion record: %w", err)
		}
		if rec.ResolvedAt != nil {
			rec.ProcessedAt = *rec.ResolvedAt
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

func (r *SyncRepository) PruneCompletedDeletes(ctx context.Context, businessID int, before time.Time) (int64, error) {
	const query = `
		DELETE FROM sync_queue
		WHERE business_id = $1
		  AND operation = 'delete'
		  AND status = 'completed'
		  AND processed_at < $2`

	tag, err := r.pool.Exec(ctx, query, businessID, before)
	if err != nil {
		return 0, fmt.Errorf("prune completed deletes: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SyncRepository) GetCheckpoint(ctx context.Context, userID, businessID int, deviceID string) (*sync.Checkpoint, error) {
	const query = `
		SELECT user_id, business_id, device_id, entity_type, last_sync_at
		FROM sync_checkpoints
		WHERE user_id = $1 AND business_id = $2 AND device_id = $3 AND entity_type = $4`

	var cp sync.Checkpoint
	err := r.pool.QueryRow(ctx, query, userID, businessID, deviceID, sync.CheckpointAll).Scan(
		&cp.UserID, &cp.BusinessID, &cp.DeviceID, &cp.EntityType, &cp.LastSyncAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}
	return &cp, nil
}

// AdvanceCheckpoint upsert с GREATEST: чекпоинт не откатывается назад,
// повторный push или pull идемпотентен на уровне чекпоинта
func (r *SyncRepository) AdvanceCheckpoint(ctx context.Context, cp *sync.Checkpoint) error {
	const query = `
		INSERT INTO sync_checkpoints (user_id, business_id, device_id, entity_type, last_sync_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, business_id, device_id, entity_type) DO UPDATE SET
			last_sync_at = GREATEST(sync_checkpoints.last_sync_at, EXCLUDED.last_sync_at)`

	_, err := r.pool.Exec(ctx, query,
		cp.UserID, cp.BusinessID, cp.DeviceID, cp.EntityType, cp.LastSyncAt)
	if err != nil {
		r.log.Error("failed to advance checkpoint", "device_id", cp.DeviceID, "error", err)
		return fmt.Errorf("advance checkpoint: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQueueRecord(row rowScanner) (*sync.QueueRecord, error) {
	var rec sync.QueueRecord
	err := row.Scan(
		&rec.ID, &rec.UserID, &rec.BusinessID, &rec.DeviceID, &rec.EntityType,
		&rec.EntityID, &rec.SyncID, &rec.Operation, &rec.Payload,
		&rec.ClientTimestamp, &rec.Status, &rec.Resolution,
		&rec.ProcessedAt, &rec.ResolvedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
