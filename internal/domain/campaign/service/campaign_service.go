package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"loyalty_wheel/internal/domain/campaign/model"
	"loyalty_wheel/internal/domain/campaign/repository"
	"loyalty_wheel/pkg/cache"
)

// 缓存键常量
// 活动快照只缓存配置字段（权重/文案/有效期），库存扣减永远走数据库条件更新，
// 所以快照里略有滞后的 stock 不影响正确性：扣减失败会触发重抽
const (
	PlayableCampaignKeyPrefix = "campaign:playable:"
	PlayableCampaignTTL       = time.Second * 30
)

type CampaignService interface {
	CreateCampaign(campaign *model.Campaign) (*model.Campaign, error)
	GetCampaign(tenantID, id string) (*model.Campaign, error)
	GetCampaigns(tenantID string, offset, limit int) ([]model.Campaign, int64, error)
	Activate(tenantID, id string) error
	Archive(tenantID, id string) error

	AddPrize(tenantID, campaignID string, prize *model.Prize) (*model.Prize, error)
	UpdatePrize(tenantID, prizeID string, prize *model.Prize) (*model.Prize, error)

	// GetActiveCampaign 顾客扫码入口：按租户取当前 active 活动（渲染转盘用）
	GetActiveCampaign(tenantID string) (*model.Campaign, error)

	// GetPlayableCampaign 抽奖读路径：带缓存加载活动及奖品目录
	GetPlayableCampaign(ctx context.Context, id string) (*model.Campaign, error)
}

type campaignService struct {
	repo  repository.CampaignRepository
	cache cache.CacheService
}

func NewCampaignService(repo repository.CampaignRepository, cache cache.CacheService) CampaignService {
	return &campaignService{repo: repo, cache: cache}
}

func (s *campaignService) playableKey(id string) string {
	return fmt.Sprintf("%s%s", PlayableCampaignKeyPrefix, id)
}

func (s *campaignService) invalidate(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	_ = s.cache.Delete(ctx, s.playableKey(id))
}

func (s *campaignService) CreateCampaign(campaign *model.Campaign) (*model.Campaign, error) {
	if campaign.ValidityDays <= 0 {
		campaign.ValidityDays = 30
	}
	campaign.Status = model.StatusDraft

	if err := s.repo.Create(campaign); err != nil {
		return nil, err
	}
	return campaign, nil
}

func (s *campaignService) GetCampaign(tenantID, id string) (*model.Campaign, error) {
	campaign, err := s.repo.GetByIDWithPrizes(id)
	if err != nil {
		return nil, err
	}
	if campaign.TenantID != tenantID {
		return nil, model.ErrCampaignNotFound
	}
	return campaign, nil
}

func (s *campaignService) GetCampaigns(tenantID string, offset, limit int) ([]model.Campaign, int64, error) {
	return s.repo.GetList(tenantID, offset, limit)
}

func (s *campaignService) Activate(tenantID, id string) error {
	// 事务内归档当前 active 活动再激活目标，保证"每租户一个 active"不变式
	if err := s.repo.Activate(id, tenantID); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *campaignService) Archive(tenantID, id string) error {
	if err := s.repo.Archive(id, tenantID); err != nil {
		return err
	}
	s.invalidate(id)
	return nil
}

func (s *campaignService) AddPrize(tenantID, campaignID string, prize *model.Prize) (*model.Prize, error) {
	campaign, err := s.repo.GetByID(campaignID)
	if err != nil {
		return nil, err
	}
	if campaign.TenantID != tenantID {
		return nil, model.ErrCampaignNotFound
	}
	// 只允许在草稿状态下调整奖品目录
	if campaign.Status != model.StatusDraft {
		return nil, model.ErrCampaignNotDraft
	}
	if prize.Weight <= 0 {
		return nil, errors.New("prize weight must be positive")
	}
	if prize.Stock != nil && *prize.Stock < 0 {
		return nil, errors.New("prize stock cannot be negative")
	}

	prize.CampaignID = campaignID
	if err := s.repo.CreatePrize(prize); err != nil {
		return nil, err
	}
	s.invalidate(campaignID)
	return prize, nil
}

func (s *campaignService) UpdatePrize(tenantID, prizeID string, input *model.Prize) (*model.Prize, error) {
	prize, err := s.repo.GetPrizeByID(prizeID)
	if err != nil {
		return nil, err
	}
	campaign, err := s.repo.GetByID(prize.CampaignID)
	if err != nil {
		return nil, err
	}
	if campaign.TenantID != tenantID {
		return nil, model.ErrPrizeNotFound
	}
	if input.Weight <= 0 {
		return nil, errors.New("prize weight must be positive")
	}

	prize.Label = input.Label
	prize.Color = input.Color
	prize.Weight = input.Weight
	prize.Stock = input.Stock

	if err := s.repo.UpdatePrize(prize); err != nil {
		return nil, err
	}
	s.invalidate(prize.CampaignID)
	return prize, nil
}

func (s *campaignService) GetActiveCampaign(tenantID string) (*model.Campaign, error) {
	campaign, err := s.repo.GetActiveByTenant(tenantID)
	if err != nil {
		return nil, err
	}
	if !campaign.WithinWindow(time.Now()) {
		return nil, model.ErrCampaignNotActive
	}
	return campaign, nil
}

// GetPlayableCampaign 读穿缓存：未命中则回源数据库并回填
func (s *campaignService) GetPlayableCampaign(ctx context.Context, id string) (*model.Campaign, error) {
	key := s.playableKey(id)

	var cached model.Campaign
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		return &cached, nil
	}

	campaign, err := s.repo.GetByIDWithPrizes(id)
	if err != nil {
		return nil, err
	}

	// 缓存回填失败不影响读路径
	_ = s.cache.Set(ctx, key, campaign, PlayableCampaignTTL)
	return campaign, nil
}
