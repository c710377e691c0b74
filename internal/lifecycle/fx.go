package lifecycle

import (
	"github.com/smallbiznis/worksuite/internal/lifecycle/domain"
	"github.com/smallbiznis/worksuite/internal/lifecycle/repository"
	"github.com/smallbiznis/worksuite/internal/lifecycle/service"
	"go.uber.org/fx"
)

var Module = fx.Module("lifecycle.service",
	fx.Provide(domain.NewGraph),
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
