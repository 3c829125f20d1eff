package generator

import (
	"context"
	"time"

	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
	"github.com/smallbiznis/polarops/pkg/db"
	"go.uber.org/zap"
)

const day = 24 * time.Hour

// generateDailyAverages skips days that already have an average or have no
// readings. Concurrent runs racing on the same day lose on the unique index
// and are skipped.
func (g *Generator) generateDailyAverages(ctx context.Context, equipment *equipmentdomain.Equipment, from time.Time, days int) (int, error) {
	log := g.log.With(zap.String("equipment_id", equipment.ID.String()))
	first := from.UTC().Truncate(day)

	created := 0
	for i := 0; i < days; i++ {
		dayStart := first.AddDate(0, 0, i)

		existing, err := g.repo.FindDailyAverage(ctx, g.db, equipment.ID, dayStart)
		if err != nil {
			log.Debug("daily average lookup failed, treating as absent",
				zap.Time("date", dayStart),
				zap.Error(err),
			)
			existing = nil
		}
		if existing != nil {
			continue
		}

		readings, err := g.repo.ListTemperatureReadings(ctx, g.db, equipment.ID, dayStart, dayStart.Add(day))
		if err != nil {
			return created, err
		}
		avg, lowest, highest, ok := analyticsdomain.Summarize(readings)
		if !ok {
			continue
		}

		average := &analyticsdomain.DailyTemperatureAverage{
			ID:                 g.genID.Generate(),
			OrgID:              equipment.OrgID,
			EquipmentID:        equipment.ID,
			Date:               dayStart,
			AverageTemperature: avg,
			MinTemperature:     lowest,
			MaxTemperature:     highest,
			ReadingCount:       len(readings),
			CreatedAt:          g.clock.Now(),
		}
		if err := g.repo.InsertDailyAverage(ctx, g.db, average); err != nil {
			if db.IsDuplicateKeyErr(err) {
				log.Debug("daily average already exists", zap.Time("date", dayStart))
				continue
			}
			log.Warn("insert daily average", zap.Time("date", dayStart), zap.Error(err))
			continue
		}
		created++
	}

	g.metrics.RecordDailyAverages(ctx, created)
	return created, nil
}
