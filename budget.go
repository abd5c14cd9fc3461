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

package socsem

import (
	"fmt"
	"math"

	"github.com/ctessum/unit"
)

// Molar masses [g mol-1].
const (
	mwOCS = 60.075 // carbonyl sulfide
	mwS   = 32.065 // sulfur
)

const (
	earthRadius    = 6.3710e6 // [m]
	secondsPerYear = 3.1536e7 // 365-day year

	// gramsPerPmol converts a molar OCS flux [pmol] to a sulfur mass [g];
	// each OCS molecule carries one sulfur atom.
	gramsPerPmol = 1.e-12 * mwS
)

// CellAreas returns the area [m2] of each cell of grid g under the given
// geographic registration, in the same row-major order as the data
// arrays. Cells are treated as patches of a sphere, so area varies with
// latitude but not longitude.
func (g *FluxGrid) CellAreas(def GridDef) []float64 {
	areas := make([]float64, 0, g.Ny*g.Nx)
	dλ := def.Dx * math.Pi / 180
	for j := 0; j < g.Ny; j++ {
		φ1 := (def.S + float64(j)*def.Dy) * math.Pi / 180
		φ2 := (def.S + float64(j+1)*def.Dy) * math.Pi / 180
		a := earthRadius * earthRadius * dλ * (math.Sin(φ2) - math.Sin(φ1))
		for i := 0; i < g.Nx; i++ {
			areas = append(areas, a)
		}
	}
	return areas
}

// Budget integrates the time-averaged net flux of grid g over the given
// geographic registration and returns the result as a sulfur mass rate
// [kg S s-1; positive = emission]. The molar flux of OCS equals the
// molar flux of S, so the conversion uses the molar mass of sulfur
// directly.
func (g *FluxGrid) Budget(def GridDef) *unit.Unit {
	areas := g.CellAreas(def)
	var pmolPerSecond float64
	for i, a := range areas {
		pmolPerSecond += g.Flux.Elements[i] * a
	}
	kgPerSecond := pmolPerSecond * gramsPerPmol * 1.e-3
	return unit.New(kgPerSecond, unit.Dimensions{
		unit.MassDim: 1,
		unit.TimeDim: -1,
	})
}

// GgSPerYear converts a sulfur mass rate, as returned by Budget, to
// Gg S yr-1, the unit soil OCS budgets are usually reported in.
func GgSPerYear(rate *unit.Unit) (float64, error) {
	if err := rate.Check(unit.Dimensions{unit.MassDim: 1, unit.TimeDim: -1}); err != nil {
		return 0, fmt.Errorf("socsem: budget rate: %v", err)
	}
	const kgPerGg = 1.e6
	return rate.Value() / kgPerGg * secondsPerYear, nil
}
