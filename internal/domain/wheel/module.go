package wheel

import (
	"loyalty_wheel/internal/domain/wheel/handler"
	"loyalty_wheel/internal/domain/wheel/repository"
	"loyalty_wheel/internal/domain/wheel/service"
	"loyalty_wheel/internal/pkg/middleware"
	"loyalty_wheel/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// WheelModule 抽奖与奖券模块
type WheelModule struct{}

func init() {
	registry.Register(&WheelModule{})
}

func (m *WheelModule) Name() string {
	return "wheel"
}

func (m *WheelModule) Priority() int {
	// 依赖 campaign 模块注入的 CampaignService，必须在其之后初始化
	return 20
}

func (m *WheelModule) Init(ctx *registry.ModuleContext) error {
	ticketRepo := repository.NewTicketRepository(ctx.DB)
	inventoryRepo := repository.NewInventoryRepository(ctx.DB)

	playService := service.NewPlayService(ctx.DB, ctx.CampaignService, ticketRepo, inventoryRepo, ctx.CRMPool)
	ticketService := service.NewTicketService(ticketRepo)

	playHandler := handler.NewPlayHandler(playService)
	ticketHandler := handler.NewTicketHandler(ticketService)

	setupRoutes(ctx.Router, playHandler, ticketHandler)
	return nil
}

func setupRoutes(r *gin.Engine, play *handler.PlayHandler, ticket *handler.TicketHandler) {
	// 抽奖是顾客扫码后的公开入口，不走认证
	r.POST("/campaigns/:id/play", play.Play)

	// 奖券查询与核销是商户员工操作
	tickets := r.Group("/tickets")
	tickets.Use(middleware.AuthMiddleware())
	{
		tickets.GET("", ticket.ListTickets)
		tickets.GET("/:id", ticket.GetTicket)
		tickets.POST("/:id/redeem", ticket.Redeem)
	}
}
