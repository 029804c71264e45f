package handler

import (
	"errors"
	"net/http"
	"strconv"

	"loyalty_wheel/internal/domain/wheel/model"
	"loyalty_wheel/internal/domain/wheel/service"
	"loyalty_wheel/internal/pkg/middleware"
	"loyalty_wheel/pkg/response"
	"loyalty_wheel/pkg/utils"

	"github.com/gin-gonic/gin"
)

// TicketHandler 奖券接口（商户员工侧）
type TicketHandler struct {
	service service.TicketService
}

func NewTicketHandler(service service.TicketService) *TicketHandler {
	return &TicketHandler{service: service}
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticket, err := h.service.GetTicket(c.Param("id"))
	if err != nil {
		if errors.Is(err, model.ErrTicketNotFound) {
			response.Error(c, http.StatusNotFound, response.ErrTicketNotFound, "Ticket not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, ticket)
}

func (h *TicketHandler) Redeem(c *gin.Context) {
	ticket, err := h.service.Redeem(c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTicketNotFound):
			response.Error(c, http.StatusNotFound, response.ErrTicketNotFound, "Ticket not found")
		case errors.Is(err, model.ErrAlreadyRedeemed):
			// 附带原奖券，前台展示首次核销时间
			response.ErrorWithData(c, http.StatusConflict, response.ErrAlreadyRedeemed,
				"Ticket has already been redeemed", ticket)
		case errors.Is(err, model.ErrTicketExpired):
			response.Fail(c, response.ErrTicketExpired, "Ticket has expired")
		default:
			response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		}
		return
	}
	response.Success(c, ticket)
}

func (h *TicketHandler) ListTickets(c *gin.Context) {
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", "0"))

	page, err := h.service.ListTickets(middleware.TenantID(c), c.Query("cursor"), pageSize)
	if err != nil {
		if errors.Is(err, utils.ErrInvalidCursor) {
			response.Error(c, http.StatusBadRequest, response.ErrInvalidParam, "Invalid cursor")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.ErrServerInternal, err.Error())
		return
	}
	response.Success(c, page)
}
