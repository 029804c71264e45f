package handler

import (
	"errors"
	"net/http"

	campaignModel "loyalty_wheel/internal/domain/campaign/model"
	"loyalty_wheel/internal/domain/wheel/model"
	"loyalty_wheel/internal/domain/wheel/service"
	"loyalty_wheel/pkg/response"

	"github.com/gin-gonic/gin"
)

// PlayHandler 抽奖接口（顾客侧，无需认证）
type PlayHandler struct {
	service service.PlayService
}

func NewPlayHandler(service service.PlayService) *PlayHandler {
	return &PlayHandler{service: service}
}

type PlayInput struct {
	Identity   string `json:"identity" binding:"required"`
	PlayerName string `json:"playerName" binding:"omitempty,max=100"`
}

func (h *PlayHandler) Play(c *gin.Context) {
	var input PlayInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		return
	}

	ticket, err := h.service.Play(c.Request.Context(), c.Param("id"), input.Identity, input.PlayerName)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidIdentity):
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, err.Error())
		case errors.Is(err, campaignModel.ErrCampaignNotFound):
			response.Error(c, http.StatusNotFound, response.ErrCampaignNotFound, "Campaign not found")
		case errors.Is(err, campaignModel.ErrCampaignNotActive):
			response.Fail(c, response.ErrCampaignNotActive, "Campaign is not active")
		case errors.Is(err, model.ErrAlreadyPlayed):
			// 409：同一身份重复参与
			response.Error(c, http.StatusConflict, response.ErrAlreadyPlayed, "This identity has already played")
		case errors.Is(err, model.ErrNoEligiblePrizes):
			response.Fail(c, response.ErrNoEligiblePrizes, "No prizes available")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}

	response.Success(c, ticket)
}
