package repository

import (
	"errors"
	"time"

	"loyalty_wheel/internal/domain/wheel/model"
	"loyalty_wheel/pkg/utils"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation Postgres 唯一约束冲突
const pgUniqueViolation = "23505"

type TicketRepository interface {
	// CreateAttempt 参与门卫：依赖 (campaign_id, identity) 唯一索引，
	// 冲突即该身份已参与过
	CreateAttempt(tx *gorm.DB, attempt *model.PlayAttempt) error

	CreateTicket(tx *gorm.DB, ticket *model.RewardTicket) error
	GetByID(id string) (*model.RewardTicket, error)

	// Redeem 条件核销：只有 status='available' 的行会被更新，
	// 返回受影响行数，两个并发核销最多一个成功
	Redeem(id string, now time.Time) (int64, error)

	// ListByTenant 键集分页：按 (issued_at DESC, id DESC) 排序，
	// cursor 为上一页最后一行的排序键
	ListByTenant(tenantID string, cursor *utils.TicketCursor, limit int) ([]model.RewardTicket, error)
}

type ticketRepository struct {
	db *gorm.DB
}

func NewTicketRepository(db *gorm.DB) TicketRepository {
	return &ticketRepository{db: db}
}

func (r *ticketRepository) CreateAttempt(tx *gorm.DB, attempt *model.PlayAttempt) error {
	db := tx
	if db == nil {
		db = r.db
	}

	if err := db.Create(attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return model.ErrAlreadyPlayed
		}
		return err
	}
	return nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func (r *ticketRepository) CreateTicket(tx *gorm.DB, ticket *model.RewardTicket) error {
	db := tx
	if db == nil {
		db = r.db
	}
	return db.Create(ticket).Error
}

func (r *ticketRepository) GetByID(id string) (*model.RewardTicket, error) {
	var ticket model.RewardTicket
	if err := r.db.First(&ticket, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) Redeem(id string, now time.Time) (int64, error) {
	result := r.db.Model(&model.RewardTicket{}).
		Where("id = ? AND status = ?", id, model.TicketAvailable).
		Updates(map[string]interface{}{
			"status":      model.TicketRedeemed,
			"redeemed_at": now,
		})
	return result.RowsAffected, result.Error
}

func (r *ticketRepository) ListByTenant(tenantID string, cursor *utils.TicketCursor, limit int) ([]model.RewardTicket, error) {
	// 软删除作用域只覆盖主表，活动表的 deleted_at 要在 JOIN 条件里自己过滤
	query := r.db.Model(&model.RewardTicket{}).
		Joins("JOIN campaigns ON campaigns.id = reward_tickets.campaign_id AND campaigns.deleted_at IS NULL").
		Where("campaigns.tenant_id = ?", tenantID)

	if cursor != nil {
		query = query.Where(
			"reward_tickets.issued_at < ? OR (reward_tickets.issued_at = ? AND reward_tickets.id < ?)",
			cursor.IssuedAt, cursor.IssuedAt, cursor.ID,
		)
	}

	var tickets []model.RewardTicket
	err := query.
		Order("reward_tickets.issued_at DESC, reward_tickets.id DESC").
		Limit(limit).
		Find(&tickets).Error
	return tickets, err
}
