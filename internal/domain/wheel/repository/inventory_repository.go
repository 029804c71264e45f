package repository

import (
	"loyalty_wheel/internal/domain/wheel/model"

	"gorm.io/gorm"
)

// InventoryRepository 库存卫兵：prize.stock 的唯一写入口
// 扣减必须是单条条件更新语句，先读后写在并发下会丢失更新
type InventoryRepository interface {
	// DecrementStock 条件扣减一件库存，返回扣减后的剩余量（仅用于观测）
	// 库存已为 0 时返回 ErrStockExhausted
	DecrementStock(tx *gorm.DB, prizeID string) (int, error)
}

type inventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) InventoryRepository {
	return &inventoryRepository{db: db}
}

func (r *inventoryRepository) DecrementStock(tx *gorm.DB, prizeID string) (int, error) {
	db := tx
	if db == nil {
		db = r.db
	}

	// "减一，且仅当还有库存"必须在同一条语句里完成；
	// RETURNING 带回剩余量，RowsAffected 为 0 即已售罄
	var remaining int
	result := db.Raw(
		"UPDATE prizes SET stock = stock - 1 WHERE id = ? AND stock > 0 AND deleted_at IS NULL RETURNING stock",
		prizeID,
	).Scan(&remaining)

	if result.Error != nil {
		return 0, result.Error
	}
	if result.RowsAffected == 0 {
		return 0, model.ErrStockExhausted
	}
	return remaining, nil
}
