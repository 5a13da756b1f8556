package client

import (
	"context"
	"encoding/json"
	"fmt"
	gosync "sync"
	"time"

	"golang.org/x/exp/slog"

	"marketsync/internal/domain/catalog"
	"marketsync/internal/domain/sync"
)

// SyncService гоняет журнал локальных правок на сервер и накатывает
// серверные изменения на локальную копию каталога
type SyncService struct {
	app       *App
	log       *slog.Logger
	batchSize int

	mu        gosync.Mutex
	isSyncing bool
	stats     SyncStats
}

func NewSyncService(app *App) *SyncService {
	batch := app.config.BatchSize
	if batch <= 0 {
		batch = 50
	}
	return &SyncService{
		app:       app,
		log:       app.log,
		batchSize: batch,
	}
}

// Sync выполняет полный проход: сперва push журнала, затем pull
// серверных изменений. Порядок важен: отправленные правки не должны
// перетираться собственным эхом из pull.
func (s *SyncService) Sync(ctx context.Context) (*SyncResult, error) {
	s.mu.Lock()
	if s.isSyncing {
		s.mu.Unlock()
		return nil, fmt.Errorf("синхронизация уже выполняется")
	}
	s.isSyncing = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.isSyncing = false
		s.mu.Unlock()
	}()

	result := &SyncResult{StartTime: time.Now()}

	if err := s.push(ctx, result); err != nil {
		s.finish(result, false)
		return result, fmt.Errorf("ошибка отправки изменений: %w", err)
	}

	if err := s.pull(ctx, result); err != nil {
		s.finish(result, false)
		return result, fmt.Errorf("ошибка получения изменений: %w", err)
	}

	s.finish(result, true)
	return result, nil
}

// push отправляет журнал пачками, пока он не опустеет. Правка уходит из
// журнала и при успехе, и при конфликте: конфликтная копия уже лежит в
// очереди сервера и ждет разрешения. Правки с прочими ошибками остаются
// в журнале до следующего прохода.
func (s *SyncService) push(ctx context.Context, result *SyncResult) error {
	for {
		pending, err := s.app.storage.PendingChanges(s.batchSize)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			return nil
		}

		changes := make([]sync.Change, 0, len(pending))
		bySyncID := make(map[string]*PendingChange, len(pending))
		for _, p := range pending {
			changes = append(changes, sync.Change{
				EntityType:      p.EntityType,
				EntityID:        p.EntityID,
				SyncID:          p.SyncID,
				Operation:       p.Operation,
				Payload:         p.Payload,
				ClientTimestamp: p.ClientTimestamp,
			})
			bySyncID[p.SyncID] = p
		}

		resp, err := s.app.httpClient.Push(ctx, sync.PushRequest{
			DeviceID: s.app.deviceID,
			Changes:  changes,
		})
		if err != nil {
			return err
		}

		removed := 0
		for _, res := range resp.Results {
			p, ok := bySyncID[res.SyncID]
			if !ok {
				continue
			}

			switch {
			case res.Success:
				result.Uploaded++
			case len(res.ConflictData) > 0 || res.Error == "Conflict detected":
				result.Conflicts++
				s.log.Warn("Конфликт синхронизации",
					"entity_type", p.EntityType,
					"entity_id", p.EntityID,
				)
			default:
				result.Errors = append(result.Errors, SyncError{
					EntityID:  res.EntityID,
					Operation: string(p.Operation),
					Error:     res.Error,
					Timestamp: time.Now(),
				})
				continue
			}

			if err := s.app.storage.RemovePending(p.Seq); err != nil {
				return err
			}
			removed++
		}

		// Вся пачка осталась в журнале - повторять в этом проходе
		// бессмысленно
		if removed == 0 {
			return nil
		}
	}
}

// pull забирает серверные изменения постранично и накатывает их на
// локальную копию. Отметка двигается по serverTimestamp последнего
// принятого изменения, поэтому оборванный проход продолжится с места
// обрыва.
func (s *SyncService) pull(ctx context.Context, result *SyncResult) error {
	since, err := s.app.storage.Checkpoint(sync.CheckpointAll)
	if err != nil {
		return err
	}

	for {
		resp, err := s.app.httpClient.Pull(ctx, sync.PullRequest{
			DeviceID:   s.app.deviceID,
			LastSyncAt: since,
		})
		if err != nil {
			return err
		}

		for _, ch := range resp.Changes {
			if err := s.applyPulled(ch); err != nil {
				result.Errors = append(result.Errors, SyncError{
					EntityID:  ch.EntityID,
					Operation: string(ch.Operation),
					Error:     err.Error(),
					Timestamp: time.Now(),
				})
				continue
			}
			result.Downloaded++
			since = ch.ServerTimestamp
		}

		if !resp.HasMore {
			since = resp.ServerTimestamp
			break
		}

		if err := s.app.storage.SetCheckpoint(sync.CheckpointAll, since); err != nil {
			return err
		}
	}

	return s.app.storage.SetCheckpoint(sync.CheckpointAll, since)
}

// applyPulled накатывает одно серверное изменение. Сущности с
// неотправленными локальными правками не трогаем: их судьбу решит
// ближайший push.
func (s *SyncService) applyPulled(ch sync.PulledChange) error {
	dirty, err := s.app.storage.HasPending(ch.EntityType, ch.EntityID)
	if err != nil {
		return err
	}
	if dirty {
		s.log.Debug("Пропуск серверного изменения: есть локальные правки",
			"entity_type", ch.EntityType,
			"entity_id", ch.EntityID,
		)
		return nil
	}

	switch ch.EntityType {
	case catalog.KindProduct:
		if ch.Operation == sync.OpDelete {
			// Удаление неизвестного товара не считаем ошибкой
			_ = s.app.storage.MarkProductDeleted(ch.EntityID, ch.ServerTimestamp)
			return nil
		}
		var p catalog.Product
		if err := json.Unmarshal(ch.Data, &p); err != nil {
			return fmt.Errorf("ошибка разбора товара: %w", err)
		}
		return s.app.storage.SaveProduct(&p)

	case catalog.KindCategory:
		if ch.Operation == sync.OpDelete {
			_ = s.app.storage.MarkCategoryDeleted(ch.EntityID, ch.ServerTimestamp)
			return nil
		}
		var c catalog.Category
		if err := json.Unmarshal(ch.Data, &c); err != nil {
			return fmt.Errorf("ошибка разбора категории: %w", err)
		}
		return s.app.storage.SaveCategory(&c)

	case catalog.KindImage:
		// Сервер присылает по изображениям только удаления
		if ch.Operation == sync.OpDelete {
			return s.app.storage.DeleteImage(ch.EntityID)
		}
		return nil
	}

	return fmt.Errorf("неизвестный вид сущности: %s", ch.EntityType)
}

// FullSync заменяет локальную копию каталога полным состоянием сервера.
// Журнал неотправленных правок при этом сохраняется.
func (s *SyncService) FullSync(ctx context.Context) (*SyncResult, error) {
	result := &SyncResult{StartTime: time.Now()}

	resp, err := s.app.httpClient.FullSync(ctx, sync.FullSyncRequest{DeviceID: s.app.deviceID})
	if err != nil {
		s.finish(result, false)
		return result, err
	}

	if err := s.app.storage.ResetCatalog(); err != nil {
		s.finish(result, false)
		return result, err
	}

	for i := range resp.Products {
		if err := s.app.storage.SaveProduct(&resp.Products[i]); err != nil {
			s.finish(result, false)
			return result, err
		}
		result.Downloaded++
	}
	for i := range resp.Categories {
		if err := s.app.storage.SaveCategory(&resp.Categories[i]); err != nil {
			s.finish(result, false)
			return result, err
		}
		result.Downloaded++
	}

	if err := s.app.storage.SetCheckpoint(sync.CheckpointAll, resp.ServerTimestamp); err != nil {
		s.finish(result, false)
		return result, err
	}

	s.finish(result, true)
	return result, nil
}

// GetStats возвращает копию накопленной статистики
func (s *SyncService) GetStats() SyncStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *SyncService) finish(result *SyncResult, ok bool) {
	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)
	result.Success = ok && len(result.Errors) == 0

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.TotalSyncs++
	s.stats.TotalUploaded += result.Uploaded
	s.stats.TotalDownloaded += result.Downloaded
	s.stats.TotalConflicts += result.Conflicts
	if result.Success {
		s.stats.LastSuccessful = result.EndTime
	} else {
		s.stats.LastFailed = result.EndTime
	}
}
