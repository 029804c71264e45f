package campaign

import (
	"loyalty_wheel/internal/domain/campaign/handler"
	"loyalty_wheel/internal/domain/campaign/repository"
	"loyalty_wheel/internal/domain/campaign/service"
	"loyalty_wheel/internal/pkg/middleware"
	"loyalty_wheel/internal/pkg/registry"

	"github.com/gin-gonic/gin"
)

// CampaignModule 活动配置模块
type CampaignModule struct{}

func init() {
	registry.Register(&CampaignModule{})
}

func (m *CampaignModule) Name() string {
	return "campaign"
}

func (m *CampaignModule) Priority() int {
	return 10
}

func (m *CampaignModule) Init(ctx *registry.ModuleContext) error {
	// 1. 依赖注入
	cRepo := repository.NewCampaignRepository(ctx.DB)
	cService := service.NewCampaignService(cRepo, ctx.Cache)
	cHandler := handler.NewCampaignHandler(cService)

	// 2. 路由注册
	setupRoutes(ctx.Router, cHandler)

	// 3. 供 wheel 模块复用同一个 service 实例
	ctx.CampaignService = cService

	return nil
}

func setupRoutes(r *gin.Engine, h *handler.CampaignHandler) {
	// 顾客扫码落地页：按租户取当前 active 活动，公开访问
	r.GET("/tenants/:id/campaign", h.GetActiveCampaign)

	g := r.Group("/campaigns")

	// 活动配置全部是商户员工操作，需要认证
	authorized := g.Group("")
	authorized.Use(middleware.AuthMiddleware())
	{
		authorized.GET("", h.GetCampaigns)
		authorized.GET("/:id", h.GetCampaign)

		// 写操作需要管理员权限
		admin := authorized.Group("")
		admin.Use(middleware.AdminMiddleware())
		{
			admin.POST("", h.CreateCampaign)
			admin.POST("/:id/activate", h.Activate)
			admin.POST("/:id/archive", h.Archive)
			admin.POST("/:id/prizes", h.AddPrize)
		}
	}

	// 奖品更新单独挂在 /prizes 下
	prizes := r.Group("/prizes")
	prizes.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		prizes.PUT("/:id", h.UpdatePrize)
	}
}
