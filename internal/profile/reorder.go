package profile

import (
	"fmt"

	"gorm.io/gorm"
)

// reorderScope 令每个 id 的 display_order 等于其下标。orderedIDs 必须恰好是
// 序列内的 id 集合，否则不写入。调用方需在事务中执行。
func reorderScope[T any](tx *gorm.DB, scope map[string]any, orderedIDs []uint) error {
	var existing []uint
	if err := tx.Model(new(T)).Where(scope).Pluck("id", &existing).Error; err != nil {
		return fmt.Errorf("load scope ids: %w", err)
	}
	if !sameIDSet(existing, orderedIDs) {
		return invalid("ordered_ids", "some IDs are invalid")
	}
	for i, id := range orderedIDs {
		err := tx.Model(new(T)).
			Where(scope).
			Where("id = ?", id).
			Update("display_order", i).Error
		if err != nil {
			return fmt.Errorf("update display order: %w", err)
		}
	}
	return nil
}

func sameIDSet(existing, requested []uint) bool {
	if len(existing) != len(requested) {
		return false
	}
	want := make(map[uint]struct{}, len(existing))
	for _, id := range existing {
		want[id] = struct{}{}
	}
	for _, id := range requested {
		if _, ok := want[id]; !ok {
			return false
		}
		delete(want, id)
	}
	return len(want) == 0
}

// closeGap 将被删位置之后的条目依次前移一位，保持序列为 0..n-1。
func closeGap[T any](tx *gorm.DB, scope map[string]any, removedOrder int) error {
	err := tx.Model(new(T)).
		Where(scope).
		Where("display_order > ?", removedOrder).
		UpdateColumn("display_order", gorm.Expr("display_order - 1")).Error
	if err != nil {
		return fmt.Errorf("close display order gap: %w", err)
	}
	return nil
}
