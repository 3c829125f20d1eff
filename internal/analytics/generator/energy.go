package generator

import (
	"context"
	"time"

	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
)

const (
	energyReadingsPerDay = 4
	energySlotHours      = 24 / energyReadingsPerDay

	daytimeStartHour  = 8
	daytimeEndHour    = 20
	daytimeMultiplier = 1.20
	weekendMultiplier = 0.85
	energyNoise       = 0.1
)

var baseConsumption = map[equipmentdomain.EquipmentType]float64{
	equipmentdomain.TypeFreezer:        180,
	equipmentdomain.TypeColdRoom:       500,
	equipmentdomain.TypeRefrigerator:   120,
	equipmentdomain.TypeAirConditioner: 800,
	equipmentdomain.TypeCooler:         150,
}

const defaultBaseConsumption = 200

// BaseConsumption is the load used for synthetic energy readings. A positive
// recorded average wins over the per-type default.
func BaseConsumption(equipment *equipmentdomain.Equipment) float64 {
	if equipment.EnergyConsumptionAverage > 0 {
		return equipment.EnergyConsumptionAverage
	}
	if base, ok := baseConsumption[equipment.Type]; ok {
		return base
	}
	return defaultBaseConsumption
}

// consumptionAt applies the daytime and weekend multipliers and up to 5%
// noise to base for the slot at the given hour of a day starting on weekday.
func consumptionAt(random Random, base float64, hour int, weekday time.Weekday) float64 {
	value := base
	if hour >= daytimeStartHour && hour <= daytimeEndHour {
		value *= daytimeMultiplier
	}
	if weekday == time.Saturday || weekday == time.Sunday {
		value *= weekendMultiplier
	}
	value *= 1 + (random.Float64()-0.5)*energyNoise
	if value < 0 {
		return 0
	}
	return value
}

func (g *Generator) generateEnergyHistory(ctx context.Context, equipment *equipmentdomain.Equipment, start time.Time) (int, error) {
	base := BaseConsumption(equipment)
	unit := equipment.EnergyConsumptionUnit
	if unit == "" {
		unit = equipmentdomain.DefaultEnergyUnit
	}

	now := g.clock.Now()
	written := 0
	for day := 0; day < g.days; day++ {
		dayStart := start.Add(time.Duration(day) * 24 * time.Hour)
		// The weekend factor follows the day the slots belong to, not the slot clock.
		weekday := dayStart.Weekday()
		for slot := 0; slot < energyReadingsPerDay; slot++ {
			hour := slot * energySlotHours
			at := dayStart.Add(time.Duration(hour) * time.Hour)
			reading := &analyticsdomain.EnergyReading{
				ID:          g.genID.Generate(),
				OrgID:       equipment.OrgID,
				EquipmentID: equipment.ID,
				Consumption: consumptionAt(g.random, base, hour, weekday),
				Unit:        unit,
				Status:      analyticsdomain.ReadingNormal,
				Source:      analyticsdomain.SourceGenerator,
				RecordedAt:  at,
				CreatedAt:   now,
			}
			if err := g.repo.InsertEnergyReading(ctx, g.db, reading); err != nil {
				return written, err
			}
			g.metrics.RecordReadingIngest(ctx, "energy", string(analyticsdomain.SourceGenerator))
			written++
		}
	}
	return written, nil
}
