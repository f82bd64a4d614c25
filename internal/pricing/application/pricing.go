package application

// PricingService 定价服务门面，聚合命令与查询服务。
type PricingService struct {
	Command *PricingCommandService
	Query   *PricingQueryService
}

// NewPricingService 构造函数。
func NewPricingService(command *PricingCommandService, query *PricingQueryService) *PricingService {
	return &PricingService{
		Command: command,
		Query:   query,
	}
}
