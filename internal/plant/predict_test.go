package plant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/steveyegge/flaxsim/internal/config"
	"github.com/steveyegge/flaxsim/internal/types"
)

func TestPredictFromStart(t *testing.T) {
	cfg := config.Default()
	pred := Predict(types.PlantState{}, 0, cfg)

	assert.Equal(t, 100, pred.DaysToMaturity)
	// 10*0.4 + 50*1.0 + 15*1.2 + 25*0.2 = 77
	assert.Equal(t, 77.0, pred.PredictedHeight)
	// 10*1.2 + 50*1.0 + 15*0.6 + 25*0.2 = 76
	assert.Equal(t, 76.0, pred.PredictedRootLength)
	// 15*2.5 + 25*0.2 = 42.5 -> 43 (round half away from zero)
	assert.Equal(t, 43, pred.PredictedFlowers)
}

func TestPredictMidRun(t *testing.T) {
	cfg := config.Default()
	st := types.PlantState{Height: 60, RootLength: 70, Flowers: 10}
	pred := Predict(st, 70, cfg)

	assert.Equal(t, 30, pred.DaysToMaturity)
	assert.InDelta(t, 60+5*1.2+25*0.2, pred.PredictedHeight, 1e-9)
	assert.Equal(t, 10+int(5*2.5+25*0.2+0.5), pred.PredictedFlowers)
}

func TestPredictCapsAndFinishedRun(t *testing.T) {
	cfg := config.Default()
	st := types.PlantState{Height: 119, RootLength: 119, Flowers: 49}
	pred := Predict(st, 1, cfg)
	assert.Equal(t, cfg.Plant.MaxHeight, pred.PredictedHeight)
	assert.Equal(t, cfg.Plant.MaxFlowers, pred.PredictedFlowers)

	done := Predict(st, 100, cfg)
	assert.Zero(t, done.DaysToMaturity)
	assert.Equal(t, 119.0, done.PredictedHeight)
}

func TestRecommend(t *testing.T) {
	recs := Recommend(config.Default(), types.PhaseGrowth)
	assert.Len(t, recs, 4)
	assert.Equal(t, types.ParamTemperature, recs[0].Param)
	assert.Equal(t, 20.0, recs[0].Setpoint)
	assert.Equal(t, 150.0, recs[2].Setpoint)
	assert.Equal(t, 15.0, recs[3].Setpoint)
}
