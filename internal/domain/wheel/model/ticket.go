package model

import (
	"errors"
	"time"

	baseModel "loyalty_wheel/pkg/model"
)

// TicketStatus 奖券状态：闭合枚举，只有 available -> redeemed 一条迁移路径
// 过期不是存储状态，由 expires_at 在读取/核销时推导
type TicketStatus string

const (
	TicketAvailable TicketStatus = "available"
	TicketRedeemed  TicketStatus = "redeemed"
)

// 抽奖/核销业务错误，handler 用 errors.Is 映射到业务码
var (
	ErrInvalidIdentity  = errors.New("identity must be an email or phone number")
	ErrAlreadyPlayed    = errors.New("identity has already played this campaign")
	ErrNoEligiblePrizes = errors.New("no eligible prizes in campaign")
	ErrStockExhausted   = errors.New("prize stock exhausted")
	ErrTicketNotFound   = errors.New("ticket not found")
	ErrAlreadyRedeemed  = errors.New("ticket has already been redeemed")
	ErrTicketExpired    = errors.New("ticket has expired")
)

// PlayAttempt 参与记录：(campaign_id, identity) 唯一索引是防重复参与的唯一依据
// 应用层先查后插在并发双击下有竞态，必须依赖数据库约束
type PlayAttempt struct {
	baseModel.BaseModel
	CampaignID string `gorm:"type:uuid;not null;uniqueIndex:idx_play_attempts_campaign_identity" json:"campaignId"`
	Identity   string `gorm:"type:varchar(255);not null;uniqueIndex:idx_play_attempts_campaign_identity" json:"identity"`
}

func (PlayAttempt) TableName() string {
	return "play_attempts"
}

// RewardTicket 中奖记录。prize_label 是发奖时的文案快照，
// 后续奖品编辑不回写历史奖券
type RewardTicket struct {
	baseModel.BaseModel
	CampaignID string       `gorm:"type:uuid;index;not null" json:"campaignId"`
	PrizeID    string       `gorm:"type:uuid;not null" json:"prizeId"`
	PrizeLabel string       `gorm:"type:varchar(100);not null" json:"prizeLabel"`
	PlayerName string       `gorm:"type:varchar(100)" json:"playerName"`
	Contact    string       `gorm:"type:varchar(255);not null" json:"contact"`
	IssuedAt   time.Time    `gorm:"not null;index" json:"issuedAt"`
	ExpiresAt  time.Time    `gorm:"not null" json:"expiresAt"`
	Status     TicketStatus `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	RedeemedAt *time.Time   `json:"redeemedAt,omitempty"`
}

func (RewardTicket) TableName() string {
	return "reward_tickets"
}

// Expired 判断奖券在给定时刻是否已过期
func (t *RewardTicket) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}
