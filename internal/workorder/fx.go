package workorder

import (
	"github.com/smallbiznis/polarops/internal/workorder/repository"
	"github.com/smallbiznis/polarops/internal/workorder/service"
	"go.uber.org/fx"
)

var Module = fx.Module("workorder.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
