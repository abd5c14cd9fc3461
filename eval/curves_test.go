/*
Copyright © 2021 the SOCSEM authors.
This file is part of SOCSEM.

SOCSEM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SOCSEM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SOCSEM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package eval holds statistical checks of the fitted response curves'
// overall behavior, as opposed to the point checks in the main package
// tests.
package eval

import (
	"math"
	"testing"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/spatialmodel/socsem"
)

// At low temperatures the logistic production curve a/(1+b e^(-kT)) is
// dominated by its denominator, so log production is nearly linear in
// temperature with slope k and intercept log(a/b). A linear regression
// over 1 to 10 °C recovers both for the temperate forest curve.
func TestProductionLogLinear(t *testing.T) {
	const (
		k         = 0.160745
		logAOverB = -3.4730528187625835 // log(20/644.7)
	)

	m := socsem.NewModel()
	eq, err := m.Equation(socsem.TemperateForest)
	if err != nil {
		t.Fatal(err)
	}

	var temps, logProduction []float64
	for temp := 1.; temp <= 10; temp++ {
		production, _ := eq.Components(temp, 30)
		temps = append(temps, temp)
		logProduction = append(logProduction, math.Log(production))
	}

	slope, intercept, rsquared, _, _, _ := stats.LinearRegression(temps, logProduction)
	if math.Abs(slope-k)/k > 0.01 {
		t.Errorf("low-temperature log production slope %g; want ≈ %g", slope, k)
	}
	if math.Abs(intercept-logAOverB) > 0.01 {
		t.Errorf("low-temperature log production intercept %g; want ≈ %g", intercept, logAOverB)
	}
	if rsquared < 0.999 {
		t.Errorf("low-temperature log production r² = %g; want > 0.999", rsquared)
	}
}

// Uptake magnitude peaks at the fitted optimum soil moisture and falls
// off monotonically on both sides of it.
func TestUptakeMoistureOptimum(t *testing.T) {
	optima := map[socsem.Landcover]float64{
		socsem.Grassland:       12.5,
		socsem.BorealForest:    12.5,
		socsem.TemperateForest: 24.6,
		socsem.TropicalForest:  24.6,
		socsem.Agricultural:    17.7,
	}

	m := socsem.NewModel()
	const soilTemp = 15.
	for lc, thetaOpt := range optima {
		eq, err := m.Equation(lc)
		if err != nil {
			t.Fatal(err)
		}

		best, bestSW := 0., math.NaN()
		prev := 0.
		rising := true
		for sw := 0.5; sw <= 60; sw += 0.5 {
			_, uptake := eq.Components(soilTemp, sw)
			if uptake > 0 {
				t.Fatalf("%v: positive uptake %g at sw=%g", lc, uptake, sw)
			}
			if uptake < best {
				best, bestSW = uptake, sw
			}
			if rising && math.Abs(uptake) < math.Abs(prev) {
				rising = false
			} else if !rising && math.Abs(uptake) > math.Abs(prev)+1.e-12 {
				t.Errorf("%v: uptake magnitude not unimodal near sw=%g", lc, sw)
			}
			prev = uptake
		}
		if math.Abs(bestSW-thetaOpt) > 0.5 {
			t.Errorf("%v: maximum uptake at sw=%g; want ≈ %g", lc, bestSW, thetaOpt)
		}
	}
}

// Wetland emission grows monotonically with temperature toward its
// asymptote and stays below it.
func TestWetlandMonotonic(t *testing.T) {
	const asymptote = 295.

	m := socsem.NewModel()
	eq, err := m.Equation(socsem.Wetland)
	if err != nil {
		t.Fatal(err)
	}

	prev := 0.
	for temp := 1.; temp <= 40; temp++ {
		flux := eq.Evaluate(temp, math.NaN())
		if flux <= prev {
			t.Errorf("wetland flux %g at %g °C not greater than %g at %g °C",
				flux, temp, prev, temp-1)
		}
		if flux >= asymptote {
			t.Errorf("wetland flux %g at %g °C exceeds asymptote %g", flux, temp, asymptote)
		}
		prev = flux
	}
}
