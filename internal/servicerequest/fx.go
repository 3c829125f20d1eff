package servicerequest

import (
	"github.com/smallbiznis/polarops/internal/servicerequest/repository"
	"github.com/smallbiznis/polarops/internal/servicerequest/service"
	"go.uber.org/fx"
)

var Module = fx.Module("servicerequest.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
