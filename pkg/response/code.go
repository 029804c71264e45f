package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 活动模块错误 100xx
	ErrCampaignNotFound  = 10001
	ErrCampaignNotActive = 10002
	ErrCampaignConflict  = 10003

	// 抽奖模块错误 200xx
	// 库存售罄不单独对外：售罄触发重抽，候选耗尽统一报 ErrNoEligiblePrizes
	ErrAlreadyPlayed    = 20001
	ErrNoEligiblePrizes = 20002

	// 奖券模块错误 300xx
	ErrTicketNotFound  = 30001
	ErrAlreadyRedeemed = 30002
	ErrTicketExpired   = 30003

	// 认证错误 400xx
	ErrTokenInvalid = 40001
	ErrNoPermission = 40002

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
