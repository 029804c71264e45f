package model

import (
	"errors"
	"time"

	baseModel "loyalty_wheel/pkg/model"
)

// CampaignStatus 活动状态：闭合枚举，所有模块共用，避免散落的字符串字面量
type CampaignStatus string

const (
	StatusDraft    CampaignStatus = "draft"
	StatusActive   CampaignStatus = "active"
	StatusArchived CampaignStatus = "archived"
)

// 活动模块业务错误
var (
	ErrCampaignNotFound  = errors.New("campaign not found")
	ErrCampaignNotActive = errors.New("campaign is not active")
	ErrCampaignNotDraft  = errors.New("campaign can only be modified in draft status")
	ErrPrizeNotFound     = errors.New("prize not found")
)

// Campaign 抽奖活动：每个租户（餐厅）同一时间最多一个 active 活动
type Campaign struct {
	baseModel.BaseModel
	TenantID     string         `gorm:"type:uuid;index;not null" json:"tenantId"`
	Title        string         `gorm:"type:varchar(100);not null" json:"title"`
	Status       CampaignStatus `gorm:"type:varchar(20);not null;default:'draft'" json:"status"`
	ActionType   string         `gorm:"type:varchar(50);not null" json:"actionType"` // 参与条件，如 leave_review
	ValidityDays int            `gorm:"not null;default:30" json:"validityDays"`     // 奖券有效期（天）
	MinSpend     *float64       `json:"minSpend,omitempty"`                          // 最低消费条件，可选
	StartsAt     *time.Time     `json:"startsAt,omitempty"`                          // 活动时间窗口，可选
	EndsAt       *time.Time     `json:"endsAt,omitempty"`
	StockLimited bool           `gorm:"not null;default:false" json:"stockLimited"` // 是否启用奖品库存上限

	Prizes []Prize `gorm:"foreignKey:CampaignID" json:"prizes,omitempty"`
}

// Prize 奖品：weight 为相对中奖权重，stock 为 NULL 表示不限量
// 库存只允许通过 wheel 模块的条件扣减语句修改
type Prize struct {
	baseModel.BaseModel
	CampaignID string `gorm:"type:uuid;index;not null" json:"campaignId"`
	Label      string `gorm:"type:varchar(100);not null" json:"label"`
	Color      string `gorm:"type:varchar(20)" json:"color"`
	Weight     int    `gorm:"not null" json:"weight"`
	Stock      *int   `json:"stock,omitempty"`
}

// WithinWindow 判断当前时间是否在活动时间窗口内（未配置窗口则恒为真）
func (c *Campaign) WithinWindow(now time.Time) bool {
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}
