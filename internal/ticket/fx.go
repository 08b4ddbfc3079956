package ticket

import (
	"github.com/vagaparlabs/vagapark/internal/ticket/repository"
	"github.com/vagaparlabs/vagapark/internal/ticket/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ticket.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
