package utils

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// TicketCursor 奖券流游标：最后一行的 (issuedAt, id)
// 排序键为 (issued_at DESC, id DESC)，偏移分页在持续写入的流上会漂移/重复，
// 因此用键集（keyset）游标
type TicketCursor struct {
	IssuedAt time.Time `json:"issuedAt"`
	ID       string    `json:"id"`
}

var ErrInvalidCursor = errors.New("invalid cursor")

// EncodeCursor 游标编码为不透明字符串 (base64 JSON)
func EncodeCursor(c TicketCursor) string {
	b, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(b)
}

// DecodeCursor 解析游标；空字符串表示第一页
func DecodeCursor(s string) (*TicketCursor, error) {
	if s == "" {
		return nil, nil
	}
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	var c TicketCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, ErrInvalidCursor
	}
	if c.ID == "" || c.IssuedAt.IsZero() {
		return nil, ErrInvalidCursor
	}
	return &c, nil
}
