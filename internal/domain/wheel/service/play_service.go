package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	campaignModel "loyalty_wheel/internal/domain/campaign/model"
	campaignService "loyalty_wheel/internal/domain/campaign/service"
	"loyalty_wheel/internal/domain/wheel/model"
	"loyalty_wheel/internal/domain/wheel/repository"
	"loyalty_wheel/internal/pkg/worker"
	"loyalty_wheel/pkg/logger"
	"loyalty_wheel/pkg/metrics"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// PlayService 抽奖主流程
type PlayService interface {
	// Play 执行一次抽奖：防重 -> 选奖 -> 扣库存 -> 发券，全程单事务
	Play(ctx context.Context, campaignID, identity, playerName string) (*model.RewardTicket, error)
}

type playService struct {
	db        *gorm.DB
	campaigns campaignService.CampaignService
	tickets   repository.TicketRepository
	inventory repository.InventoryRepository
	crm       *worker.WorkerPool

	// rand.Rand 不是并发安全的，抽奖是热路径，用互斥锁保护
	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewPlayService(
	db *gorm.DB,
	campaigns campaignService.CampaignService,
	tickets repository.TicketRepository,
	inventory repository.InventoryRepository,
	crm *worker.WorkerPool,
) PlayService {
	return &playService{
		db:        db,
		campaigns: campaigns,
		tickets:   tickets,
		inventory: inventory,
		crm:       crm,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (s *playService) draw(prizes []campaignModel.Prize, excluded map[string]bool) (*campaignModel.Prize, error) {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return DrawPrize(prizes, excluded, s.rng)
}

func (s *playService) Play(ctx context.Context, campaignID, identity, playerName string) (*model.RewardTicket, error) {
	start := time.Now()
	ticket, err := s.play(ctx, campaignID, identity, playerName)
	metrics.RecordPlay(playResult(err), time.Since(start))
	return ticket, err
}

// playResult 把业务错误折叠成有限的指标标签值，防止标签基数失控
func playResult(err error) string {
	switch {
	case err == nil:
		return "issued"
	case errors.Is(err, model.ErrAlreadyPlayed):
		return "already_played"
	case errors.Is(err, model.ErrNoEligiblePrizes):
		return "no_eligible_prizes"
	case errors.Is(err, model.ErrInvalidIdentity):
		return "invalid_identity"
	case errors.Is(err, campaignModel.ErrCampaignNotFound),
		errors.Is(err, campaignModel.ErrCampaignNotActive):
		return "campaign_unavailable"
	default:
		return "error"
	}
}

func (s *playService) play(ctx context.Context, campaignID, rawIdentity, playerName string) (*model.RewardTicket, error) {
	identity, err := NormalizeIdentity(rawIdentity)
	if err != nil {
		return nil, err
	}

	campaign, err := s.campaigns.GetPlayableCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if campaign.Status != campaignModel.StatusActive || !campaign.WithinWindow(now) {
		return nil, campaignModel.ErrCampaignNotActive
	}

	var ticket *model.RewardTicket
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 参与防重：唯一索引冲突即已参与，整个事务回滚
		attempt := &model.PlayAttempt{CampaignID: campaign.ID, Identity: identity}
		if err := s.tickets.CreateAttempt(tx, attempt); err != nil {
			return err
		}

		// 2. 选奖 + 扣库存：抽中的奖品售罄则排除后重抽，
		// 事务回滚会自动归还已扣的库存，所以失败路径无需补偿
		prize, err := s.reservePrize(tx, campaign)
		if err != nil {
			return err
		}

		// 3. 发券：文案快照 + 按活动配置计算有效期
		issuedAt := time.Now()
		ticket = &model.RewardTicket{
			CampaignID: campaign.ID,
			PrizeID:    prize.ID,
			PrizeLabel: prize.Label,
			PlayerName: playerName,
			Contact:    identity,
			IssuedAt:   issuedAt,
			ExpiresAt:  issuedAt.AddDate(0, 0, campaign.ValidityDays),
			Status:     model.TicketAvailable,
		}
		return s.tickets.CreateTicket(tx, ticket)
	})
	if err != nil {
		return nil, err
	}

	logger.Log.Info("ticket issued",
		zap.String("ticketId", ticket.ID),
		zap.String("campaignId", campaign.ID),
		zap.String("prizeLabel", ticket.PrizeLabel),
	)

	// CRM 同步走后台队列，失败不影响已发出的奖券
	s.crm.AddTask(worker.ContactTask{
		TicketID:   ticket.ID,
		CampaignID: campaign.ID,
		TenantID:   campaign.TenantID,
		PlayerName: playerName,
		Contact:    identity,
	})

	return ticket, nil
}

// reservePrize 在事务内完成"选奖 + 条件扣减"
// 不限库存的活动（或 stock 为 NULL 的奖品）直接跳过扣减；
// 扣减失败（售罄）把该奖品排除后重抽，直到候选耗尽
func (s *playService) reservePrize(tx *gorm.DB, campaign *campaignModel.Campaign) (*campaignModel.Prize, error) {
	excluded := make(map[string]bool)
	for {
		prize, err := s.draw(campaign.Prizes, excluded)
		if err != nil {
			return nil, err
		}

		if !campaign.StockLimited || prize.Stock == nil {
			return prize, nil
		}

		remaining, err := s.inventory.DecrementStock(tx, prize.ID)
		if err == nil {
			// 扣减后的余量只用于观测，不回传给玩家
			if remaining == 0 {
				logger.Log.Info("prize sold out",
					zap.String("campaignId", campaign.ID),
					zap.String("prizeId", prize.ID),
				)
			}
			return prize, nil
		}
		if !errors.Is(err, model.ErrStockExhausted) {
			return nil, err
		}

		// 缓存里的快照可能滞后于真实库存，售罄只是触发重抽，不是错误
		metrics.RedrawsTotal.Inc()
		excluded[prize.ID] = true
	}
}
