package service

import (
	"math/rand"

	campaignModel "loyalty_wheel/internal/domain/campaign/model"
	"loyalty_wheel/internal/domain/wheel/model"
)

// DrawPrize 按权重抽取一个奖品，返回奖品 ID
// 算法：累加正权重得到总量 T，在 [0, T) 取均匀随机数，
// 沿累计权重区间扫描，落点所在区间即中奖奖品
//
// 权重 <= 0 的奖品视为禁用，不进入候选；excluded 中的奖品同样跳过
// （重抽时用来排除已售罄的奖品）。候选为空返回 ErrNoEligiblePrizes
func DrawPrize(prizes []campaignModel.Prize, excluded map[string]bool, r *rand.Rand) (*campaignModel.Prize, error) {
	total := 0
	for i := range prizes {
		if prizes[i].Weight <= 0 || excluded[prizes[i].ID] {
			continue
		}
		total += prizes[i].Weight
	}
	if total <= 0 {
		return nil, model.ErrNoEligiblePrizes
	}

	roll := r.Intn(total)
	for i := range prizes {
		if prizes[i].Weight <= 0 || excluded[prizes[i].ID] {
			continue
		}
		roll -= prizes[i].Weight
		if roll < 0 {
			return &prizes[i], nil
		}
	}

	// total > 0 时扫描必然命中，这里只是让编译器安心
	return nil, model.ErrNoEligiblePrizes
}
