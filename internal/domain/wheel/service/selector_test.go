package service

import (
	"math/rand"
	"testing"

	campaignModel "loyalty_wheel/internal/domain/campaign/model"
	"loyalty_wheel/internal/domain/wheel/model"
	baseModel "loyalty_wheel/pkg/model"

	"github.com/stretchr/testify/assert"
)

func testPrize(id string, weight int) campaignModel.Prize {
	return campaignModel.Prize{
		BaseModel: baseModel.BaseModel{ID: id},
		Label:     "Prize " + id,
		Weight:    weight,
	}
}

func TestDrawPrize(t *testing.T) {
	t.Run("Single prize always wins", func(t *testing.T) {
		prizes := []campaignModel.Prize{testPrize("a", 10)}
		r := rand.New(rand.NewSource(1))

		for i := 0; i < 100; i++ {
			prize, err := DrawPrize(prizes, nil, r)
			assert.NoError(t, err)
			assert.Equal(t, "a", prize.ID)
		}
	})

	t.Run("Zero and negative weights are skipped", func(t *testing.T) {
		prizes := []campaignModel.Prize{
			testPrize("disabled", 0),
			testPrize("negative", -5),
			testPrize("active", 3),
		}
		r := rand.New(rand.NewSource(42))

		for i := 0; i < 200; i++ {
			prize, err := DrawPrize(prizes, nil, r)
			assert.NoError(t, err)
			assert.Equal(t, "active", prize.ID)
		}
	})

	t.Run("Excluded prizes never win", func(t *testing.T) {
		prizes := []campaignModel.Prize{
			testPrize("a", 10),
			testPrize("b", 10),
		}
		excluded := map[string]bool{"a": true}
		r := rand.New(rand.NewSource(7))

		for i := 0; i < 200; i++ {
			prize, err := DrawPrize(prizes, excluded, r)
			assert.NoError(t, err)
			assert.Equal(t, "b", prize.ID)
		}
	})

	t.Run("No eligible prizes returns error", func(t *testing.T) {
		r := rand.New(rand.NewSource(1))

		_, err := DrawPrize(nil, nil, r)
		assert.ErrorIs(t, err, model.ErrNoEligiblePrizes)

		_, err = DrawPrize([]campaignModel.Prize{testPrize("a", 0)}, nil, r)
		assert.ErrorIs(t, err, model.ErrNoEligiblePrizes)

		_, err = DrawPrize([]campaignModel.Prize{testPrize("a", 5)}, map[string]bool{"a": true}, r)
		assert.ErrorIs(t, err, model.ErrNoEligiblePrizes)
	})

	t.Run("Distribution roughly follows weights", func(t *testing.T) {
		prizes := []campaignModel.Prize{
			testPrize("common", 90),
			testPrize("rare", 10),
		}
		r := rand.New(rand.NewSource(2024))

		const draws = 10000
		counts := make(map[string]int)
		for i := 0; i < draws; i++ {
			prize, err := DrawPrize(prizes, nil, r)
			assert.NoError(t, err)
			counts[prize.ID]++
		}

		// 期望 9:1，给 3 个百分点的容差
		commonRatio := float64(counts["common"]) / draws
		assert.InDelta(t, 0.9, commonRatio, 0.03)
		assert.Equal(t, draws, counts["common"]+counts["rare"])
	})
}
