package handler

import (
	"errors"
	"net/http"
	"time"

	"loyalty_wheel/internal/domain/campaign/model"
	"loyalty_wheel/internal/domain/campaign/service"
	"loyalty_wheel/internal/pkg/middleware"
	"loyalty_wheel/pkg/response"
	"loyalty_wheel/pkg/utils"

	"github.com/gin-gonic/gin"
)

type CampaignHandler struct {
	service service.CampaignService
}

func NewCampaignHandler(service service.CampaignService) *CampaignHandler {
	return &CampaignHandler{service: service}
}

type CreateCampaignInput struct {
	Title        string     `json:"title" binding:"required"`
	ActionType   string     `json:"actionType" binding:"required"`
	ValidityDays int        `json:"validityDays" binding:"omitempty,min=1"`
	MinSpend     *float64   `json:"minSpend"`
	StartsAt     *time.Time `json:"startsAt"`
	EndsAt       *time.Time `json:"endsAt"`
	StockLimited bool       `json:"stockLimited"`
}

func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var input CreateCampaignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	campaign := &model.Campaign{
		TenantID:     middleware.TenantID(c),
		Title:        input.Title,
		ActionType:   input.ActionType,
		ValidityDays: input.ValidityDays,
		MinSpend:     input.MinSpend,
		StartsAt:     input.StartsAt,
		EndsAt:       input.EndsAt,
		StockLimited: input.StockLimited,
	}

	created, err := h.service.CreateCampaign(campaign)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, created)
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaign, err := h.service.GetCampaign(middleware.TenantID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrCampaignNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCampaignNotFound, "Campaign not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, campaign)
}

// GetActiveCampaign 顾客扫码后的公开入口，返回当前 active 活动及奖品目录
func (h *CampaignHandler) GetActiveCampaign(c *gin.Context) {
	campaign, err := h.service.GetActiveCampaign(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCampaignNotFound):
			response.Error(c, http.StatusNotFound, response.ErrCampaignNotFound, "No active campaign")
		case errors.Is(err, model.ErrCampaignNotActive):
			response.Fail(c, response.ErrCampaignNotActive, "Campaign is outside its active window")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}
	response.Success(c, campaign)
}

func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	var p utils.Pagination
	if err := c.ShouldBindQuery(&p); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}
	offset, limit := p.GetPageOffset()

	campaigns, total, err := h.service.GetCampaigns(middleware.TenantID(c), offset, limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}

	response.Success(c, utils.PageResult{
		List:  campaigns,
		Total: total,
		Page:  p.Page,
		Limit: limit,
	})
}

func (h *CampaignHandler) Activate(c *gin.Context) {
	if err := h.service.Activate(middleware.TenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, model.ErrCampaignNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCampaignNotFound, "Campaign not found or not in draft status")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, "Campaign activated")
}

func (h *CampaignHandler) Archive(c *gin.Context) {
	if err := h.service.Archive(middleware.TenantID(c), c.Param("id")); err != nil {
		if errors.Is(err, model.ErrCampaignNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCampaignNotFound, "Campaign not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, "Campaign archived")
}

type PrizeInput struct {
	Label  string `json:"label" binding:"required"`
	Color  string `json:"color"`
	Weight int    `json:"weight" binding:"required,min=1"`
	Stock  *int   `json:"stock" binding:"omitempty,min=0"`
}

func (h *CampaignHandler) AddPrize(c *gin.Context) {
	var input PrizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	prize := &model.Prize{
		Label:  input.Label,
		Color:  input.Color,
		Weight: input.Weight,
		Stock:  input.Stock,
	}

	created, err := h.service.AddPrize(middleware.TenantID(c), c.Param("id"), prize)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrCampaignNotFound):
			response.Error(c, http.StatusNotFound, response.ErrCampaignNotFound, "Campaign not found")
		case errors.Is(err, model.ErrCampaignNotDraft):
			response.Fail(c, response.ErrCampaignConflict, "Campaign can only be modified in draft status")
		default:
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		}
		return
	}

	response.Success(c, created)
}

func (h *CampaignHandler) UpdatePrize(c *gin.Context) {
	var input PrizeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	prize := &model.Prize{
		Label:  input.Label,
		Color:  input.Color,
		Weight: input.Weight,
		Stock:  input.Stock,
	}

	updated, err := h.service.UpdatePrize(middleware.TenantID(c), c.Param("id"), prize)
	if err != nil {
		if errors.Is(err, model.ErrPrizeNotFound) || errors.Is(err, model.ErrCampaignNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrCampaignNotFound, "Prize not found")
			return
		}
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	response.Success(c, updated)
}
