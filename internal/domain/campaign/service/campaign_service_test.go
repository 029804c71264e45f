package service

import (
	"context"
	"testing"

	"loyalty_wheel/internal/domain/campaign/model"
	"loyalty_wheel/pkg/cache"
	baseModel "loyalty_wheel/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCampaignRepository is a mock of CampaignRepository
type MockCampaignRepository struct {
	mock.Mock
}

func (m *MockCampaignRepository) Create(campaign *model.Campaign) error {
	args := m.Called(campaign)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetByID(id string) (*model.Campaign, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) GetByIDWithPrizes(id string) (*model.Campaign, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) GetActiveByTenant(tenantID string) (*model.Campaign, error) {
	args := m.Called(tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Campaign), args.Error(1)
}

func (m *MockCampaignRepository) GetList(tenantID string, offset, limit int) ([]model.Campaign, int64, error) {
	args := m.Called(tenantID, offset, limit)
	return args.Get(0).([]model.Campaign), args.Get(1).(int64), args.Error(2)
}

func (m *MockCampaignRepository) Activate(id, tenantID string) error {
	args := m.Called(id, tenantID)
	return args.Error(0)
}

func (m *MockCampaignRepository) Archive(id, tenantID string) error {
	args := m.Called(id, tenantID)
	return args.Error(0)
}

func (m *MockCampaignRepository) CreatePrize(prize *model.Prize) error {
	args := m.Called(prize)
	return args.Error(0)
}

func (m *MockCampaignRepository) GetPrizeByID(id string) (*model.Prize, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Prize), args.Error(1)
}

func (m *MockCampaignRepository) UpdatePrize(prize *model.Prize) error {
	args := m.Called(prize)
	return args.Error(0)
}

func testCampaign(id, tenantID string, status model.CampaignStatus) *model.Campaign {
	return &model.Campaign{
		BaseModel:    baseModel.BaseModel{ID: id},
		TenantID:     tenantID,
		Title:        "Spring Wheel",
		Status:       status,
		ActionType:   "leave_review",
		ValidityDays: 30,
	}
}

func TestCreateCampaign(t *testing.T) {
	t.Run("Defaults validity and forces draft status", func(t *testing.T) {
		repo := new(MockCampaignRepository)
		svc := NewCampaignService(repo, cache.NewMemoryCache())

		repo.On("Create", mock.AnythingOfType("*model.Campaign")).Return(nil)

		created, err := svc.CreateCampaign(&model.Campaign{
			TenantID:   "tenant-1",
			Title:      "New Wheel",
			ActionType: "leave_review",
			Status:     model.StatusActive, // 客户端无权直接创建 active 活动
		})

		assert.NoError(t, err)
		assert.Equal(t, model.StatusDraft, created.Status)
		assert.Equal(t, 30, created.ValidityDays)
	})
}

func TestGetCampaignTenantIsolation(t *testing.T) {
	repo := new(MockCampaignRepository)
	svc := NewCampaignService(repo, cache.NewMemoryCache())

	campaign := testCampaign("camp-1", "tenant-1", model.StatusActive)
	repo.On("GetByIDWithPrizes", "camp-1").Return(campaign, nil)

	// 别的租户拿不到这个活动
	_, err := svc.GetCampaign("tenant-2", "camp-1")
	assert.ErrorIs(t, err, model.ErrCampaignNotFound)

	got, err := svc.GetCampaign("tenant-1", "camp-1")
	assert.NoError(t, err)
	assert.Equal(t, "camp-1", got.ID)
}

func TestAddPrize(t *testing.T) {
	t.Run("Draft campaign accepts prizes", func(t *testing.T) {
		repo := new(MockCampaignRepository)
		svc := NewCampaignService(repo, cache.NewMemoryCache())

		repo.On("GetByID", "camp-1").Return(testCampaign("camp-1", "tenant-1", model.StatusDraft), nil)
		repo.On("CreatePrize", mock.AnythingOfType("*model.Prize")).Return(nil)

		prize, err := svc.AddPrize("tenant-1", "camp-1", &model.Prize{Label: "Free Coffee", Weight: 10})

		assert.NoError(t, err)
		assert.Equal(t, "camp-1", prize.CampaignID)
	})

	t.Run("Active campaign rejects prize changes", func(t *testing.T) {
		repo := new(MockCampaignRepository)
		svc := NewCampaignService(repo, cache.NewMemoryCache())

		repo.On("GetByID", "camp-1").Return(testCampaign("camp-1", "tenant-1", model.StatusActive), nil)

		_, err := svc.AddPrize("tenant-1", "camp-1", &model.Prize{Label: "Free Coffee", Weight: 10})

		assert.ErrorIs(t, err, model.ErrCampaignNotDraft)
		repo.AssertNotCalled(t, "CreatePrize", mock.Anything)
	})

	t.Run("Non-positive weight is rejected", func(t *testing.T) {
		repo := new(MockCampaignRepository)
		svc := NewCampaignService(repo, cache.NewMemoryCache())

		repo.On("GetByID", "camp-1").Return(testCampaign("camp-1", "tenant-1", model.StatusDraft), nil)

		_, err := svc.AddPrize("tenant-1", "camp-1", &model.Prize{Label: "Broken", Weight: 0})
		assert.Error(t, err)
	})
}

func TestGetPlayableCampaign(t *testing.T) {
	t.Run("Second read is served from cache", func(t *testing.T) {
		repo := new(MockCampaignRepository)
		svc := NewCampaignService(repo, cache.NewMemoryCache())

		campaign := testCampaign("camp-1", "tenant-1", model.StatusActive)
		repo.On("GetByIDWithPrizes", "camp-1").Return(campaign, nil).Once()

		first, err := svc.GetPlayableCampaign(context.Background(), "camp-1")
		assert.NoError(t, err)

		second, err := svc.GetPlayableCampaign(context.Background(), "camp-1")
		assert.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)

		// 回源只发生一次
		repo.AssertExpectations(t)
	})

	t.Run("Activate invalidates the snapshot", func(t *testing.T) {
		repo := new(MockCampaignRepository)
		svc := NewCampaignService(repo, cache.NewMemoryCache())

		draft := testCampaign("camp-1", "tenant-1", model.StatusDraft)
		active := testCampaign("camp-1", "tenant-1", model.StatusActive)

		repo.On("GetByIDWithPrizes", "camp-1").Return(draft, nil).Once()
		repo.On("Activate", "camp-1", "tenant-1").Return(nil)
		repo.On("GetByIDWithPrizes", "camp-1").Return(active, nil).Once()

		got, err := svc.GetPlayableCampaign(context.Background(), "camp-1")
		assert.NoError(t, err)
		assert.Equal(t, model.StatusDraft, got.Status)

		assert.NoError(t, svc.Activate("tenant-1", "camp-1"))

		got, err = svc.GetPlayableCampaign(context.Background(), "camp-1")
		assert.NoError(t, err)
		assert.Equal(t, model.StatusActive, got.Status)
	})
}
