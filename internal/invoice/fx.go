package invoice

import (
	"github.com/smallbiznis/worksuite/internal/invoice/repository"
	"github.com/smallbiznis/worksuite/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
