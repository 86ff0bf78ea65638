package indicators

import (
	"fmt"

	"spx-trader/internal/models"
)

// VolumeSMA calculates the simple moving average of volume.
type VolumeSMA struct {
	period int
}

// NewVolumeSMA creates a new volume SMA indicator.
func NewVolumeSMA(period int) *VolumeSMA {
	return &VolumeSMA{period: period}
}

func (v *VolumeSMA) Name() string {
	return fmt.Sprintf("VolumeSMA_%d", v.period)
}

func (v *VolumeSMA) Period() int {
	return v.period
}

func (v *VolumeSMA) Calculate(candles []models.Candle) ([]float64, error) {
	if v.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(candles) < v.period {
		return nil, ErrInsufficientData
	}

	result := make([]float64, len(candles))
	vols := make([]float64, len(candles))
	for i, c := range candles {
		vols[i] = float64(c.Volume)
	}
	for i := v.period - 1; i < len(candles); i++ {
		result[i] = mean(vols[i-v.period+1 : i+1])
	}
	return result, nil
}
