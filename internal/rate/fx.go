package rate

import (
	pricingdomain "github.com/vagaparlabs/vagapark/internal/pricing/domain"
	ratedomain "github.com/vagaparlabs/vagapark/internal/rate/domain"
	"github.com/vagaparlabs/vagapark/internal/rate/repository"
	"github.com/vagaparlabs/vagapark/internal/rate/service"
	"go.uber.org/fx"
)

var Module = fx.Module("rate.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
	fx.Provide(func(repo ratedomain.Repository) pricingdomain.ConfigStore { return repo }),
)
