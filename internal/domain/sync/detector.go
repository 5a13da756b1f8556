package sync

import (
	"context"
	"encoding/json"
	"fmt"

	"marketsync/internal/domain/catalog"
)

// Detector решает, конфликтует ли входящее изменение с текущим состоянием
// сервера. Решение - чистая функция от (updated_at сущности, заявленного
// клиентом времени): сервер новее строго - конфликт, равенство конфликтом
// не считается (клиент считается догнавшим), отсутствие сущности -
// не конфликт (это create либо сущность уже удалена).
type Detector struct {
	store catalog.Store
}

func NewDetector(store catalog.Store) *Detector {
	return &Detector{store: store}
}

// Check возвращает признак конфликта и снимок серверного состояния
// сущности (для conflict_data в ответе)
func (d *Detector) Check(ctx context.Context, businessID int, ch Change) (bool, json.RawMessage, error) {
	updatedAt, exists, err := d.store.UpdatedAt(ctx, ch.EntityType, businessID, ch.EntityID)
	if err != nil {
		return false, nil, fmt.Errorf("get entity updated_at: %w", err)
	}
	if !exists {
		return false, nil, nil
	}
	if !updatedAt.After(ch.ClientTimestamp) {
		return false, nil, nil
	}

	snapshot, err := d.store.Snapshot(ctx, ch.EntityType, businessID, ch.EntityID)
	if err != nil {
		return true, nil, fmt.Errorf("get entity snapshot: %w", err)
	}
	return true, snapshot, nil
}
