package analytics

import (
	"github.com/smallbiznis/polarops/internal/analytics/domain"
	"github.com/smallbiznis/polarops/internal/analytics/generator"
	"github.com/smallbiznis/polarops/internal/analytics/livefeed"
	"github.com/smallbiznis/polarops/internal/analytics/repository"
	"github.com/smallbiznis/polarops/internal/analytics/service"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(repository.Provide),
	fx.Provide(livefeed.NewHub),
	fx.Provide(service.NewRecorder),
	fx.Provide(asRecorder, asTemperatureRecorder),
	fx.Provide(generator.New),
	fx.Provide(asGenerator, asDataGenerator),
	fx.Provide(service.New),
)

func asRecorder(r *service.Recorder) domain.Recorder { return r }

func asTemperatureRecorder(r *service.Recorder) generator.TemperatureRecorder { return r }

func asGenerator(g *generator.Generator) domain.Generator { return g }

func asDataGenerator(g *generator.Generator) equipmentdomain.DataGenerator { return g }
