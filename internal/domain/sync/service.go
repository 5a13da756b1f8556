package sync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/slog"

	"marketsync/internal/app/server/api/http/middleware/auth"
	"marketsync/internal/domain/catalog"
)

// Servicer интерфейс сервиса синхронизации
type Servicer interface {
	// Push применяет пакет изменений устройства, конфликты ставит в очередь
	Push(ctx context.Context, req PushRequest) (*PushResponse, error)

	// Pull возвращает страницу серверных изменений после чекпоинта
	Pull(ctx context.Context, req PullRequest) (*PullResponse, error)

	// FullSync возвращает полное состояние каталога для нового устройства
	FullSync(ctx context.Context, req FullSyncRequest) (*FullSyncResponse, error)

	// Checkpoint возвращает текущий чекпоинт устройства
	Checkpoint(ctx context.Context, deviceID string) (*CheckpointResponse, error)

	// Conflicts возвращает неразрешенные конфликты
	Conflicts(ctx context.Context) (*ConflictsResponse, error)

	// Resolve разрешает конфликт указанным способом
	Resolve(ctx context.Context, conflictID string, req ResolveRequest) (*ResolveResponse, error)
}

// ServiceConfig конфигурация сервиса синхронизации
type ServiceConfig struct {
	// PageSize максимальный размер страницы pull-выборки
	PageSize int
	// RetentionDays горизонт хранения завершенных delete-записей журнала,
	// 0 - хранить бессрочно. Горизонт должен превышать любой правдоподобный
	// срок жизни устройства офлайн, иначе удаления потеряются.
	RetentionDays int
}

// Service реализация протокола push/pull синхронизации
type Service struct {
	repo     Repository
	store    catalog.Store
	detector *Detector
	applier  *Applier
	log      *slog.Logger
	config   *ServiceConfig
}

// NewService создает сервис синхронизации
func NewService(repo Repository, store catalog.Store, log *slog.Logger, config *ServiceConfig) *Service {
	if config == nil {
		config = &ServiceConfig{PageSize: 100}
	}
	if config.PageSize <= 0 {
		config.PageSize = 100
	}

	return &Service{
		repo:     repo,
		store:    store,
		detector: NewDetector(store),
		applier:  NewApplier(store),
		log:      log,
		config:   config,
	}
}

// Push обрабатывает пакет изменений в порядке списка. Пакет не атомарен:
// каждое изменение применяется в своей атомарной единице, частичный успех
// ожидаем и отражается поштучно. Чекпоинт двигается вперед безусловно -
// конфликтные и упавшие изменения долговечно записаны в очереди и не
// требуют повторного pull.
func (s *Service) Push(ctx context.Context, req PushRequest) (*PushResponse, error) {
	userID, businessID, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}
	if req.DeviceID == "" {
		return nil, ErrDeviceRequired
	}

	start := time.Now().UTC()

	results := make([]Result, 0, len(req.Changes))
	for _, ch := range req.Changes {
		results = append(results, s.processChange(ctx, userID, businessID, req.DeviceID, ch, start))
	}

	if err := s.advanceCheckpoint(ctx, userID, businessID, req.DeviceID, start); err != nil {
		return nil, fmt.Errorf("advance checkpoint: %w", err)
	}

	s.pruneQueue(ctx, businessID, start)

	return &PushResponse{
		Status:          "Ok",
		Results:         results,
		ServerTimestamp: start,
	}, nil
}

// processChange обрабатывает одно изменение: детекция конфликта, применение
// либо постановка в очередь. Ничто здесь не прерывает остальной пакет.
func (s *Service) processChange(ctx context.Context, userID, businessID int, deviceID string, ch Change, start time.Time) Result {
	res := Result{
		EntityID:        ch.EntityID,
		SyncID:          ch.SyncID,
		ServerTimestamp: start,
	}

	if !ch.EntityType.Valid() {
		res.Error = fmt.Sprintf("%s: %s", errUnsupportedEntity, ch.EntityType)
		return res
	}

	conflict, snapshot, err := s.detector.Check(ctx, businessID, ch)
	if err != nil {
		res.Error = err.Error()
		return res
	}

	if conflict {
		return s.enqueueConflict(ctx, userID, businessID, deviceID, ch, snapshot, start, res)
	}

	err = s.applier.Apply(ctx, businessID, ch, ch.ClientTimestamp, start)
	if errors.Is(err, catalog.ErrStaleEntity) {
		// Проигранная гонка между детекцией и условной записью: другое
		// устройство успело записать. Исход тот же, что у детекции.
		snapshot, snapErr := s.store.Snapshot(ctx, ch.EntityType, businessID, ch.EntityID)
		if snapErr != nil {
			s.log.Warn("failed to snapshot entity for conflict", "entity_id", ch.EntityID, "error", snapErr)
		}
		return s.enqueueConflict(ctx, userID, businessID, deviceID, ch, snapshot, start, res)
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}

	rec := s.newQueueRecord(userID, businessID, deviceID, ch, StatusCompleted, start)
	if err := s.repo.SaveQueueRecord(ctx, rec); err != nil {
		// Мутация каталога уже закоммичена, но без записи журнала
		// удаление не попадет в ленту - честно сообщаем об ошибке
		s.log.Error("failed to save queue record", "entity_id", ch.EntityID, "error", err)
		res.Error = fmt.Sprintf("record sync journal: %v", err)
		return res
	}

	res.Success = true
	return res
}

func (s *Service) enqueueConflict(ctx context.Context, userID, businessID int, deviceID string, ch Change, snapshot json.RawMessage, start time.Time, res Result) Result {
	rec := s.newQueueRecord(userID, businessID, deviceID, ch, StatusConflict, start)
	if err := s.repo.SaveQueueRecord(ctx, rec); err != nil {
		s.log.Error("failed to save conflict record", "entity_id", ch.EntityID, "error", err)
		res.Error = fmt.Sprintf("record conflict: %v", err)
		return res
	}

	res.Error = errConflictDetected
	res.ConflictData = snapshot
	return res
}

func (s *Service) newQueueRecord(userID, businessID int, deviceID string, ch Change, status Status, processedAt time.Time) *QueueRecord {
	return &QueueRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		BusinessID:      businessID,
		DeviceID:        deviceID,
		EntityType:      ch.EntityType,
		EntityID:        ch.EntityID,
		SyncID:          ch.SyncID,
		Operation:       ch.Operation,
		Payload:         ch.Payload,
		ClientTimestamp: ch.ClientTimestamp,
		Status:          status,
		ProcessedAt:     processedAt,
	}
}

// Pull собирает страницу изменений строго после чекпоинта, по возрастанию
// updated_at. Мягко удаленные сущности отдаются операцией delete по живой
// таблице; жестко удаленные восстанавливаются из журнала. После сборки
// чекпоинт двигается к началу pull, а has_more сигнализирует обрезание.
func (s *Service) Pull(ctx context.Context, req PullRequest) (*PullResponse, error) {
	userID, businessID, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}
	if req.DeviceID == "" {
		return nil, ErrDeviceRequired
	}

	start := time.Now().UTC()

	since := req.LastSyncAt
	if since.IsZero() {
		cp, err := s.repo.GetCheckpoint(ctx, userID, businessID, req.DeviceID)
		if err != nil {
			return nil, fmt.Errorf("get checkpoint: %w", err)
		}
		if cp != nil {
			since = cp.LastSyncAt
		}
	}

	kinds := req.EntityTypes
	if len(kinds) == 0 {
		kinds = []catalog.Kind{catalog.KindProduct, catalog.KindCategory, catalog.KindImage}
	}

	limit := s.config.PageSize
	var items []PulledChange
	var hardKinds []catalog.Kind

	for _, k := range kinds {
		policy, ok := s.applier.DeletionPolicy(k)
		if !ok {
			return nil, fmt.Errorf("%s: %s", errUnsupportedEntity, k)
		}
		if s.applier.Pullable(k) {
			live, err := s.pullLive(ctx, businessID, k, since, limit+1)
			if err != nil {
				return nil, err
			}
			items = append(items, live...)
		}
		if policy == DeleteHard {
			hardKinds = append(hardKinds, k)
		}
	}

	if len(hardKinds) > 0 {
		deletes, err := s.repo.CompletedDeletesSince(ctx, businessID, hardKinds, since)
		if err != nil {
			return nil, fmt.Errorf("scan deletion feed: %w", err)
		}
		for _, rec := range deletes {
			items = append(items, PulledChange{
				EntityType:      rec.EntityType,
				EntityID:        rec.EntityID,
				SyncID:          rec.SyncID,
				Operation:       OpDelete,
				ServerTimestamp: rec.ProcessedAt,
			})
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ServerTimestamp.Before(items[j].ServerTimestamp)
	})

	hasMore := len(items) > limit
	if hasMore {
		items = items[:limit]
	}
	if items == nil {
		items = []PulledChange{}
	}

	if err := s.advanceCheckpoint(ctx, userID, businessID, req.DeviceID, start); err != nil {
		return nil, fmt.Errorf("advance checkpoint: %w", err)
	}

	return &PullResponse{
		Status:          "Ok",
		Changes:         items,
		ServerTimestamp: start,
		HasMore:         hasMore,
	}, nil
}

// pullLive выбирает из живой таблицы сущности, измененные после since.
// Клиент делает upsert, поэтому create от update не различается: активная
// сущность всегда отдается как update, мягко удаленная - как delete.
func (s *Service) pullLive(ctx context.Context, businessID int, kind catalog.Kind, since time.Time, limit int) ([]PulledChange, error) {
	var items []PulledChange

	switch kind {
	case catalog.KindProduct:
		products, err := s.store.ProductsSince(ctx, businessID, since, limit)
		if err != nil {
			return nil, fmt.Errorf("products since checkpoint: %w", err)
		}
		for i := range products {
			item, err := livePulledChange(kind, products[i].ID, products[i].Deleted, products[i].UpdatedAt, products[i])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	case catalog.KindCategory:
		categories, err := s.store.CategoriesSince(ctx, businessID, since, limit)
		if err != nil {
			return nil, fmt.Errorf("categories since checkpoint: %w", err)
		}
		for i := range categories {
			item, err := livePulledChange(kind, categories[i].ID, categories[i].Deleted, categories[i].UpdatedAt, categories[i])
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	return items, nil
}

func livePulledChange(kind catalog.Kind, id string, deleted bool, updatedAt time.Time, entity any) (PulledChange, error) {
	op := OpUpdate
	var data json.RawMessage
	if deleted {
		op = OpDelete
	} else {
		raw, err := json.Marshal(entity)
		if err != nil {
			return PulledChange{}, fmt.Errorf("encode %s %s: %w", kind, id, err)
		}
		data = raw
	}

	return PulledChange{
		EntityType:      kind,
		EntityID:        id,
		Operation:       op,
		Data:            data,
		ServerTimestamp: updatedAt,
	}, nil
}

// FullSync возвращает полное активное состояние каталога и инициализирует
// чекпоинт текущим моментом. Детекция конфликтов не выполняется: у нового
// устройства нет состояния, с которым можно конфликтовать.
func (s *Service) FullSync(ctx context.Context, req FullSyncRequest) (*FullSyncResponse, error) {
	userID, businessID, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}
	if req.DeviceID == "" {
		return nil, ErrDeviceRequired
	}

	start := time.Now().UTC()

	products, err := s.store.ListProducts(ctx, businessID, false)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	categories, err := s.store.ListCategories(ctx, businessID, false)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}

	if err := s.advanceCheckpoint(ctx, userID, businessID, req.DeviceID, start); err != nil {
		return nil, fmt.Errorf("advance checkpoint: %w", err)
	}

	return &FullSyncResponse{
		Status:          "Ok",
		Products:        products,
		Categories:      categories,
		ServerTimestamp: start,
	}, nil
}

// Checkpoint возвращает текущий чекпоинт устройства
func (s *Service) Checkpoint(ctx context.Context, deviceID string) (*CheckpointResponse, error) {
	userID, businessID, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}
	if deviceID == "" {
		return nil, ErrDeviceRequired
	}

	cp, err := s.repo.GetCheckpoint(ctx, userID, businessID, deviceID)
	if err != nil {
		return nil, fmt.Errorf("get checkpoint: %w", err)
	}

	resp := &CheckpointResponse{
		Status:   "Ok",
		DeviceID: deviceID,
	}
	if cp != nil {
		resp.LastSyncAt = cp.LastSyncAt
	}
	return resp, nil
}

// Conflicts возвращает записи очереди со статусом conflict
func (s *Service) Conflicts(ctx context.Context) (*ConflictsResponse, error) {
	_, businessID, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}

	conflicts, err := s.repo.ListConflicts(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("list conflicts: %w", err)
	}

	return &ConflictsResponse{
		Status: "Ok",
		Data:   conflicts,
	}, nil
}

// Resolve разрешает конфликт. Единственное место, где конфликтующая
// запись вообще применяется: push-путь никогда не сливает автоматически.
// Детекция обходится - решение уже принял человек.
func (s *Service) Resolve(ctx context.Context, conflictID string, req ResolveRequest) (*ResolveResponse, error) {
	_, businessID, ok := auth.GetIdentity(ctx)
	if !ok {
		return nil, fmt.Errorf("user not authenticated")
	}

	rec, err := s.repo.GetQueueRecord(ctx, businessID, conflictID)
	if err != nil {
		return nil, fmt.Errorf("get conflict: %w", err)
	}
	if rec == nil {
		return nil, ErrConflictNotFound
	}
	if rec.Status != StatusConflict {
		return nil, ErrAlreadyResolved
	}

	now := time.Now().UTC()

	switch req.Resolution {
	case ResolutionKeepServer:
		// Сервер уже хранит выбранное состояние
	case ResolutionKeepClient:
		ch := changeFromRecord(rec, rec.Payload)
		if err := s.applier.Apply(ctx, businessID, ch, now, now); err != nil {
			return nil, fmt.Errorf("apply client version: %w", err)
		}
	case ResolutionMerge:
		if len(req.MergedData) == 0 {
			return nil, ErrMergedDataRequired
		}
		ch := changeFromRecord(rec, req.MergedData)
		if err := s.applier.Apply(ctx, businessID, ch, now, now); err != nil {
			return nil, fmt.Errorf("apply merged version: %w", err)
		}
	default:
		return nil, ErrUnknownResolution
	}

	if err := s.repo.MarkResolved(ctx, businessID, conflictID, req.Resolution, now); err != nil {
		return nil, fmt.Errorf("mark resolved: %w", err)
	}

	return &ResolveResponse{
		Status:  "Ok",
		Message: "Conflict resolved successfully",
	}, nil
}

func changeFromRecord(rec *QueueRecord, payload json.RawMessage) Change {
	return Change{
		EntityType:      rec.EntityType,
		EntityID:        rec.EntityID,
		SyncID:          rec.SyncID,
		Operation:       rec.Operation,
		Payload:         payload,
		ClientTimestamp: rec.ClientTimestamp,
	}
}

func (s *Service) advanceCheckpoint(ctx context.Context, userID, businessID int, deviceID string, at time.Time) error {
	return s.repo.AdvanceCheckpoint(ctx, &Checkpoint{
		UserID:     userID,
		BusinessID: businessID,
		DeviceID:   deviceID,
		EntityType: CheckpointAll,
		LastSyncAt: at,
	})
}

func (s *Service) pruneQueue(ctx context.Context, businessID int, now time.Time) {
	if s.config.RetentionDays <= 0 {
		return
	}
	horizon := now.AddDate(0, 0, -s.config.RetentionDays)
	pruned, err := s.repo.PruneCompletedDeletes(ctx, businessID, horizon)
	if err != nil {
		s.log.Warn("failed to prune sync queue", "error", err)
		return
	}
	if pruned > 0 {
		s.log.Debug("pruned completed delete records", "count", pruned)
	}
}
