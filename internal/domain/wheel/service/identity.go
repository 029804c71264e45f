package service

import (
	"regexp"
	"strings"

	"loyalty_wheel/internal/domain/wheel/model"
)

var (
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{6,15}$`)
)

// NormalizeIdentity 归一化玩家身份标识
// 邮箱统一小写，手机号去掉空格/横线/括号，归一化后再做唯一性判断，
// 否则 "A@x.com" 和 "a@x.com" 会被当成两个人
func NormalizeIdentity(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", model.ErrInvalidIdentity
	}

	if strings.Contains(s, "@") {
		s = strings.ToLower(s)
		if !emailPattern.MatchString(s) {
			return "", model.ErrInvalidIdentity
		}
		return s, nil
	}

	// 手机号：剥掉常见分隔符后校验
	s = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "").Replace(s)
	if !phonePattern.MatchString(s) {
		return "", model.ErrInvalidIdentity
	}
	return s, nil
}
