// Package predict fits a price estimate over the active catalog.
//
// The model is an ordinary least-squares fit of price against model year and
// mileage. It is deliberately small: catalogs run in the hundreds of records,
// so the normal equations are solved directly. The model is rebuilt from the
// persisted catalog and consumes nothing else.
package predict

import (
	"errors"
	"math"
	"time"

	"dealersync/feature/inventory/models"
)

// ErrModelUnavailable is returned when too few usable records exist to fit,
// or when the feature matrix is degenerate (e.g. every vehicle shares the
// same year and mileage).
var ErrModelUnavailable = errors.New("price model unavailable")

// minSamples is the smallest catalog a fit is attempted on.
const minSamples = 3

// Model is a fitted linear price estimator.
type Model struct {
	Intercept   float64   `json:"intercept"`
	YearCoef    float64   `json:"year_coef"`
	MileageCoef float64   `json:"mileage_coef"`
	Samples     int       `json:"samples"`
	MAE         float64   `json:"mae"`
	TrainedAt   time.Time `json:"trained_at"`
}

// Fit builds a model from the given vehicles. Records without a year or with
// a zero price are excluded: zero means unknown there, not free.
func Fit(vehicles []models.Vehicle) (*Model, error) {
	var usable []models.Vehicle
	for _, v := range vehicles {
		if v.Year == nil || v.Price <= 0 {
			continue
		}
		usable = append(usable, v)
	}
	if len(usable) < minSamples {
		return nil, ErrModelUnavailable
	}

	// Normal equations for price ~ 1 + year + mileage.
	var xtx [3][3]float64
	var xty [3]float64
	for _, v := range usable {
		row := [3]float64{1, float64(*v.Year), float64(v.MileageKm)}
		y := float64(v.Price)
		for i := 0; i < 3; i++ {
			for j := 0; j < 3; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * y
		}
	}

	beta, ok := solve3(xtx, xty)
	if !ok {
		return nil, ErrModelUnavailable
	}

	m := &Model{
		Intercept:   beta[0],
		YearCoef:    beta[1],
		MileageCoef: beta[2],
		Samples:     len(usable),
		TrainedAt:   time.Now().UTC(),
	}

	// In-sample MAE, reported alongside predictions for operator judgment.
	var absErr float64
	for _, v := range usable {
		absErr += math.Abs(m.Predict(&v) - float64(v.Price))
	}
	m.MAE = absErr / float64(len(usable))

	return m, nil
}

// Predict estimates a price for the vehicle. A missing year falls back to the
// intercept-and-mileage estimate.
func (m *Model) Predict(v *models.Vehicle) float64 {
	est := m.Intercept + m.MileageCoef*float64(v.MileageKm)
	if v.Year != nil {
		est += m.YearCoef * float64(*v.Year)
	}
	return est
}

// solve3 solves a 3x3 linear system with Gaussian elimination and partial
// pivoting. ok is false for a singular (degenerate) system.
func solve3(a [3][3]float64, b [3]float64) ([3]float64, bool) {
	const eps = 1e-9

	for col := 0; col < 3; col++ {
		// Pivot on the largest remaining entry in this column.
		pivot := col
		for row := col + 1; row < 3; row++ {
			if math.Abs(a[row][col]) > math.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math.Abs(a[pivot][col]) < eps {
			return [3]float64{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		b[col], b[pivot] = b[pivot], b[col]

		for row := col + 1; row < 3; row++ {
			factor := a[row][col] / a[col][col]
			for k := col; k < 3; k++ {
				a[row][k] -= factor * a[col][k]
			}
			b[row] -= factor * b[col]
		}
	}

	var x [3]float64
	for row := 2; row >= 0; row-- {
		sum := b[row]
		for k := row + 1; k < 3; k++ {
			sum -= a[row][k] * x[k]
		}
		x[row] = sum / a[row][row]
	}
	return x, true
}
