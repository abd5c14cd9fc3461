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
)

// Valid and practical soil moisture ranges [% VWC]. Moisture outside the
// practical band is accepted but flagged as extrapolation: the model was
// fit mostly between 2 and 45% VWC.
const (
	soilwMin = 0.
	soilwMax = 100.

	practicalSoilwMin = 2.
	practicalSoilwMax = 50.
)

// A RangeError reports soil moisture input that the model cannot use:
// either a value outside [0, 100] % VWC, or a missing (NaN) value for a
// category whose equation consumes moisture.
type RangeError struct {
	Soilw     float64
	Landcover Landcover
}

func (e *RangeError) Error() string {
	if math.IsNaN(e.Soilw) {
		return fmt.Sprintf("socsem: soil moisture is required for land cover %s but was not provided",
			e.Landcover)
	}
	return fmt.Sprintf("socsem: soil moisture %g%% VWC is outside the valid range [0, 100]",
		e.Soilw)
}

// Validate checks one set of evaluation inputs. Soil moisture may be NaN
// to mean "not provided"; that is allowed when the equation selected by
// lc has no moisture term or when the frozen-soil shortcut makes the
// moisture value irrelevant (soilTemp ≤ 0). A non-NaN moisture outside
// [0, 100] % VWC fails regardless of category or temperature.
func (m *Model) Validate(soilTemp, soilw float64, lc Landcover) error {
	eq, err := m.Equation(lc)
	if err != nil {
		return err
	}
	if !math.IsNaN(soilw) && (soilw < soilwMin || soilw > soilwMax) {
		return &RangeError{Soilw: soilw, Landcover: lc}
	}
	if math.IsNaN(soilw) && eq.usesMoisture && soilTemp > 0 {
		return &RangeError{Soilw: soilw, Landcover: lc}
	}
	return nil
}
