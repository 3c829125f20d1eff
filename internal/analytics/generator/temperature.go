package generator

import (
	"context"
	"math"
	"time"

	analyticsdomain "github.com/smallbiznis/polarops/internal/analytics/domain"
	equipmentdomain "github.com/smallbiznis/polarops/internal/equipment/domain"
)

const (
	diurnalAmplitude = 0.10
	noiseAmplitude   = 0.15
	spikeAmplitude   = 0.40
	// spikePercent is the chance per hour, in percent, of an anomaly spike.
	spikePercent = 3
	clampMargin  = 0.5
)

// temperatureAt returns the simulated temperature for the given hour of a day
// within the optimal band [lo, hi].
func temperatureAt(random Random, lo, hi float64, hour int) float64 {
	mid := (lo + hi) / 2
	span := hi - lo

	value := mid + math.Sin(float64(hour-6)*math.Pi/12)*span*diurnalAmplitude

	noise := (random.Float64() - 0.5) * span * noiseAmplitude
	if random.IntN(100) < spikePercent {
		sign := 1.0
		if random.IntN(2) == 0 {
			sign = -1.0
		}
		noise = sign * span * spikeAmplitude
	}
	value += noise

	value = clamp(value, lo-span*clampMargin, hi+span*clampMargin)
	return clamp(value, analyticsdomain.MinTemperature, analyticsdomain.MaxTemperature)
}

func (g *Generator) generateTemperatureHistory(ctx context.Context, equipment *equipmentdomain.Equipment, start time.Time) (int, error) {
	written := 0
	for day := 0; day < g.days; day++ {
		for hour := 0; hour < 24; hour++ {
			at := start.Add(time.Duration(day)*24*time.Hour + time.Duration(hour)*time.Hour)
			value := temperatureAt(g.random, equipment.OptimalTemperatureMin, equipment.OptimalTemperatureMax, hour)
			if _, err := g.recorder.RecordTemperature(ctx, equipment, value, at, analyticsdomain.SourceGenerator); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
