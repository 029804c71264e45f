package repository

import (
	"errors"

	"loyalty_wheel/internal/domain/campaign/model"

	"gorm.io/gorm"
)

type CampaignRepository interface {
	Create(campaign *model.Campaign) error
	GetByID(id string) (*model.Campaign, error)
	GetByIDWithPrizes(id string) (*model.Campaign, error)
	GetActiveByTenant(tenantID string) (*model.Campaign, error)
	GetList(tenantID string, offset, limit int) ([]model.Campaign, int64, error)
	Activate(id, tenantID string) error
	Archive(id, tenantID string) error

	CreatePrize(prize *model.Prize) error
	GetPrizeByID(id string) (*model.Prize, error)
	UpdatePrize(prize *model.Prize) error
}

type campaignRepository struct {
	db *gorm.DB
}

func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(campaign *model.Campaign) error {
	return r.db.Create(campaign).Error
}

func (r *campaignRepository) GetByID(id string) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.db.First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) GetByIDWithPrizes(id string) (*model.Campaign, error) {
	var campaign model.Campaign
	if err := r.db.Preload("Prizes").First(&campaign, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) GetActiveByTenant(tenantID string) (*model.Campaign, error) {
	var campaign model.Campaign
	err := r.db.Preload("Prizes").
		Where("tenant_id = ? AND status = ?", tenantID, model.StatusActive).
		First(&campaign).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) GetList(tenantID string, offset, limit int) ([]model.Campaign, int64, error) {
	var campaigns []model.Campaign
	var total int64

	query := r.db.Model(&model.Campaign{}).Where("tenant_id = ?", tenantID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&campaigns).Error
	return campaigns, total, err
}

// Activate 激活活动：同一事务内归档当前 active 活动，保证每个租户最多一个 active
// （数据库侧还有 (tenant_id) WHERE status='active' 的部分唯一索引兜底）
func (r *campaignRepository) Activate(id, tenantID string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Campaign{}).
			Where("tenant_id = ? AND status = ? AND id <> ?", tenantID, model.StatusActive, id).
			Update("status", model.StatusArchived).Error; err != nil {
			return err
		}

		result := tx.Model(&model.Campaign{}).
			Where("id = ? AND tenant_id = ? AND status = ?", id, tenantID, model.StatusDraft).
			Update("status", model.StatusActive)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return model.ErrCampaignNotFound
		}
		return nil
	})
}

// Archive 软归档：奖券仍引用该活动，因此从不硬删除
func (r *campaignRepository) Archive(id, tenantID string) error {
	result := r.db.Model(&model.Campaign{}).
		Where("id = ? AND tenant_id = ?", id, tenantID).
		Update("status", model.StatusArchived)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return model.ErrCampaignNotFound
	}
	return nil
}

// --- Prize ---

func (r *campaignRepository) CreatePrize(prize *model.Prize) error {
	return r.db.Create(prize).Error
}

func (r *campaignRepository) GetPrizeByID(id string) (*model.Prize, error) {
	var prize model.Prize
	if err := r.db.First(&prize, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrPrizeNotFound
		}
		return nil, err
	}
	return &prize, nil
}

// UpdatePrize 更新奖品配置（权重/文案），已发出奖券持有文案快照，不受影响
func (r *campaignRepository) UpdatePrize(prize *model.Prize) error {
	return r.db.Model(&model.Prize{}).
		Where("id = ?", prize.ID).
		Updates(map[string]interface{}{
			"label":  prize.Label,
			"color":  prize.Color,
			"weight": prize.Weight,
			"stock":  prize.Stock,
		}).Error
}
