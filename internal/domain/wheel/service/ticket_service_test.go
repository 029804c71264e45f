package service

import (
	"testing"
	"time"

	"loyalty_wheel/internal/domain/wheel/model"
	baseModel "loyalty_wheel/pkg/model"
	"loyalty_wheel/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testTicket(id string, status model.TicketStatus, expiresAt time.Time) *model.RewardTicket {
	return &model.RewardTicket{
		BaseModel:  baseModel.BaseModel{ID: id},
		CampaignID: "camp-1",
		PrizeID:    "prize-1",
		PrizeLabel: "Free Coffee",
		Contact:    "guest@mail.com",
		IssuedAt:   time.Now().Add(-time.Hour),
		ExpiresAt:  expiresAt,
		Status:     status,
	}
}

func TestRedeem(t *testing.T) {
	t.Run("Available ticket is redeemed", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		ticket := testTicket("t-1", model.TicketAvailable, time.Now().Add(time.Hour))
		repo.On("GetByID", "t-1").Return(ticket, nil)
		repo.On("Redeem", "t-1", mock.AnythingOfType("time.Time")).Return(int64(1), nil)

		got, err := svc.Redeem("t-1")

		assert.NoError(t, err)
		assert.Equal(t, model.TicketRedeemed, got.Status)
		assert.NotNil(t, got.RedeemedAt)
		repo.AssertExpectations(t)
	})

	t.Run("Second redemption returns conflict with original ticket", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		redeemedAt := time.Now().Add(-time.Minute)
		redeemed := testTicket("t-1", model.TicketRedeemed, time.Now().Add(time.Hour))
		redeemed.RedeemedAt = &redeemedAt

		repo.On("GetByID", "t-1").Return(redeemed, nil)

		got, err := svc.Redeem("t-1")

		assert.ErrorIs(t, err, model.ErrAlreadyRedeemed)
		// 返回原奖券，前台能展示首次核销时间
		assert.NotNil(t, got)
		assert.Equal(t, &redeemedAt, got.RedeemedAt)
		repo.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything)
	})

	t.Run("Redeemed ticket past expiry still reports the redemption", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		// 已核销且已过期：冲突优先于过期，否则首次核销时间被"已过期"盖住
		redeemedAt := time.Now().Add(-48 * time.Hour)
		ticket := testTicket("t-1", model.TicketRedeemed, time.Now().Add(-time.Hour))
		ticket.RedeemedAt = &redeemedAt

		repo.On("GetByID", "t-1").Return(ticket, nil)

		got, err := svc.Redeem("t-1")

		assert.ErrorIs(t, err, model.ErrAlreadyRedeemed)
		assert.Equal(t, &redeemedAt, got.RedeemedAt)
		repo.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything)
	})

	t.Run("Lost race on conditional update maps to already redeemed", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		available := testTicket("t-1", model.TicketAvailable, time.Now().Add(time.Hour))
		redeemed := testTicket("t-1", model.TicketRedeemed, time.Now().Add(time.Hour))

		// 读到 available，但条件更新 0 行：另一请求抢先核销
		repo.On("GetByID", "t-1").Return(available, nil).Once()
		repo.On("Redeem", "t-1", mock.AnythingOfType("time.Time")).Return(int64(0), nil)
		repo.On("GetByID", "t-1").Return(redeemed, nil).Once()

		got, err := svc.Redeem("t-1")

		assert.ErrorIs(t, err, model.ErrAlreadyRedeemed)
		assert.Equal(t, model.TicketRedeemed, got.Status)
	})

	t.Run("Expired ticket cannot be redeemed", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		expired := testTicket("t-1", model.TicketAvailable, time.Now().Add(-time.Second))
		repo.On("GetByID", "t-1").Return(expired, nil)

		_, err := svc.Redeem("t-1")

		assert.ErrorIs(t, err, model.ErrTicketExpired)
		repo.AssertNotCalled(t, "Redeem", mock.Anything, mock.Anything)
	})

	t.Run("Ticket valid until the exact expiry instant", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		// 过期边界：expires_at 在未来一分钟，仍可核销
		ticket := testTicket("t-1", model.TicketAvailable, time.Now().Add(time.Minute))
		repo.On("GetByID", "t-1").Return(ticket, nil)
		repo.On("Redeem", "t-1", mock.AnythingOfType("time.Time")).Return(int64(1), nil)

		_, err := svc.Redeem("t-1")
		assert.NoError(t, err)
	})

	t.Run("Unknown ticket returns not found", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		repo.On("GetByID", "missing").Return(nil, model.ErrTicketNotFound)

		_, err := svc.Redeem("missing")
		assert.ErrorIs(t, err, model.ErrTicketNotFound)
	})
}

func TestListTickets(t *testing.T) {
	makeTickets := func(n int, from time.Time) []model.RewardTicket {
		tickets := make([]model.RewardTicket, n)
		for i := 0; i < n; i++ {
			tickets[i] = *testTicket("t-"+string(rune('a'+i)), model.TicketAvailable, from.Add(time.Hour))
			tickets[i].IssuedAt = from.Add(-time.Duration(i) * time.Minute)
		}
		return tickets
	}

	t.Run("Full page carries next cursor", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		tickets := makeTickets(3, time.Now())
		repo.On("ListByTenant", "tenant-1", (*utils.TicketCursor)(nil), 3).Return(tickets, nil)

		page, err := svc.ListTickets("tenant-1", "", 3)

		assert.NoError(t, err)
		assert.True(t, page.HasMore)
		assert.NotEmpty(t, page.NextCursor)

		// 游标指向本页最后一行
		cursor, err := utils.DecodeCursor(page.NextCursor)
		assert.NoError(t, err)
		last := tickets[len(tickets)-1]
		assert.Equal(t, last.ID, cursor.ID)
		assert.True(t, last.IssuedAt.Equal(cursor.IssuedAt))
	})

	t.Run("Short page means end of feed", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		tickets := makeTickets(2, time.Now())
		repo.On("ListByTenant", "tenant-1", (*utils.TicketCursor)(nil), 20).Return(tickets, nil)

		page, err := svc.ListTickets("tenant-1", "", 0) // 0 -> 默认页大小

		assert.NoError(t, err)
		assert.False(t, page.HasMore)
		assert.Empty(t, page.NextCursor)
	})

	t.Run("Cursor is decoded and forwarded", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		issuedAt := time.Now().Add(-time.Hour).Truncate(time.Millisecond)
		raw := utils.EncodeCursor(utils.TicketCursor{IssuedAt: issuedAt, ID: "t-x"})

		repo.On("ListByTenant", "tenant-1", mock.MatchedBy(func(c *utils.TicketCursor) bool {
			return c != nil && c.ID == "t-x" && c.IssuedAt.Equal(issuedAt)
		}), 10).Return([]model.RewardTicket{}, nil)

		page, err := svc.ListTickets("tenant-1", raw, 10)

		assert.NoError(t, err)
		assert.False(t, page.HasMore)
		repo.AssertExpectations(t)
	})

	t.Run("Invalid cursor is rejected", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		_, err := svc.ListTickets("tenant-1", "not-base64!!!", 10)
		assert.ErrorIs(t, err, utils.ErrInvalidCursor)
		repo.AssertNotCalled(t, "ListByTenant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Page size is clamped to the maximum", func(t *testing.T) {
		repo := new(MockTicketRepository)
		svc := NewTicketService(repo)

		repo.On("ListByTenant", "tenant-1", (*utils.TicketCursor)(nil), MaxFeedPageSize).Return([]model.RewardTicket{}, nil)

		_, err := svc.ListTickets("tenant-1", "", 10000)
		assert.NoError(t, err)
		repo.AssertExpectations(t)
	})
}
