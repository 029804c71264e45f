package service

import (
	"errors"
	"time"

	"loyalty_wheel/internal/domain/wheel/model"
	"loyalty_wheel/internal/domain/wheel/repository"
	"loyalty_wheel/pkg/metrics"
	"loyalty_wheel/pkg/utils"
)

const (
	DefaultFeedPageSize = 20
	MaxFeedPageSize     = 100
)

// TicketPage 奖券流的一页
type TicketPage struct {
	Tickets    []model.RewardTicket `json:"tickets"`
	NextCursor string               `json:"nextCursor,omitempty"`
	HasMore    bool                 `json:"hasMore"`
}

type TicketService interface {
	GetTicket(id string) (*model.RewardTicket, error)

	// Redeem 核销奖券；奖券已被核销时返回 (原奖券, ErrAlreadyRedeemed)，
	// 前台据此展示首次核销时间
	Redeem(id string) (*model.RewardTicket, error)

	// ListTickets 租户奖券流，游标分页
	ListTickets(tenantID, cursor string, pageSize int) (*TicketPage, error)
}

type ticketService struct {
	repo repository.TicketRepository
}

func NewTicketService(repo repository.TicketRepository) TicketService {
	return &ticketService{repo: repo}
}

func (s *ticketService) GetTicket(id string) (*model.RewardTicket, error) {
	return s.repo.GetByID(id)
}

func (s *ticketService) Redeem(id string) (*model.RewardTicket, error) {
	ticket, err := s.redeem(id)
	metrics.RecordRedemption(redemptionResult(err))
	return ticket, err
}

func redemptionResult(err error) string {
	switch {
	case err == nil:
		return "redeemed"
	case errors.Is(err, model.ErrAlreadyRedeemed):
		return "already_redeemed"
	case errors.Is(err, model.ErrTicketExpired):
		return "expired"
	case errors.Is(err, model.ErrTicketNotFound):
		return "not_found"
	default:
		return "error"
	}
}

func (s *ticketService) redeem(id string) (*model.RewardTicket, error) {
	ticket, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}

	// 已核销优先于过期：重复扫已核销的旧券要看到首次核销时间，而不是"已过期"
	if ticket.Status == model.TicketRedeemed {
		return ticket, model.ErrAlreadyRedeemed
	}

	now := time.Now()
	// 过期在核销时强制检查：状态不会因过期改写，只是拒绝核销
	if ticket.Expired(now) {
		return ticket, model.ErrTicketExpired
	}

	rows, err := s.repo.Redeem(id, now)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		// 条件更新没命中：并发核销或读取后被别人抢先，重读拿真实状态
		current, err := s.repo.GetByID(id)
		if err != nil {
			return nil, err
		}
		if current.Status == model.TicketRedeemed {
			return current, model.ErrAlreadyRedeemed
		}
		return nil, model.ErrTicketNotFound
	}

	ticket.Status = model.TicketRedeemed
	ticket.RedeemedAt = &now
	return ticket, nil
}

func (s *ticketService) ListTickets(tenantID, rawCursor string, pageSize int) (*TicketPage, error) {
	cursor, err := utils.DecodeCursor(rawCursor)
	if err != nil {
		return nil, err
	}

	if pageSize <= 0 {
		pageSize = DefaultFeedPageSize
	}
	if pageSize > MaxFeedPageSize {
		pageSize = MaxFeedPageSize
	}

	tickets, err := s.repo.ListByTenant(tenantID, cursor, pageSize)
	if err != nil {
		return nil, err
	}

	page := &TicketPage{Tickets: tickets}
	// 取满一页说明后面可能还有：游标指向本页最后一行
	if len(tickets) == pageSize {
		last := tickets[len(tickets)-1]
		page.HasMore = true
		page.NextCursor = utils.EncodeCursor(utils.TicketCursor{
			IssuedAt: last.IssuedAt,
			ID:       last.ID,
		})
	}
	return page, nil
}
