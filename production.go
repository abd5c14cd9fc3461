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

import "math"

// Abiotic OCS production increases exponentially with temperature. The
// fits below are from lab soil incubation experiments, scaled to field
// observations where available, with the form
//
//	flux = a / (1 + b e^(-k T)), k > 0.
//
// The asymptote a is set to the maximum flux observed in the field (or,
// failing that, in incubations); it should not be reached under
// environmental conditions. The curve passes through (0, a/(1+b)).
// The coefficients are fixed constants from SOCSEM v8.0.1 and must not
// be re-estimated.

// Fit coefficients by source site.
const (
	// Los Amigos Research Station, Peru (r² = 0.96). No additional
	// rainforest measurements were available, so the maximum incubation
	// observation is arbitrarily tripled.
	pruA = 2.7 * 3
	pruK = 0.123581
	pruB = 205.

	// Willow Creek Forest Tall Tower Site, WI (r² = 0.997). Temperate and
	// boreal forests are assumed (likely incorrectly) to share this curve.
	wrcA = 20.
	wrcK = 0.160745
	wrcB = 644.7

	// DOE ARM Southern Great Plains wheat field, OK (r² = 0.79).
	sgpA = 83.
	sgpK = 0.087689
	sgpB = 146.9

	// Stunt Ranch UC Reserve, CA, savannah (r² = 0.98).
	stuntA = 3.9
	stuntK = 0.115481
	stuntB = 286.

	// Mollie Beattie Habitat Community, Port Aransas, TX (r² = 0.64).
	// The asymptote is the maximum value recorded by DeLaune et al. (2002).
	txA = 295.
	txK = 0.07855407
	txB = 41.16705972
)

func logisticProduction(a, k, b, soilTemp float64) float64 {
	return a / (1 + b*math.Exp(-k*soilTemp))
}

// rainforestProduction returns abiotic OCS production from tropical
// forest soil [pmol m-2 s-1] at the given soil temperature [°C].
func rainforestProduction(soilTemp float64) float64 {
	return logisticProduction(pruA, pruK, pruB, soilTemp)
}

// forestProduction returns abiotic OCS production from temperate or
// boreal forest soil [pmol m-2 s-1] at the given soil temperature [°C].
func forestProduction(soilTemp float64) float64 {
	return logisticProduction(wrcA, wrcK, wrcB, soilTemp)
}

// agProduction returns abiotic OCS production from agricultural soil
// [pmol m-2 s-1] at the given soil temperature [°C].
func agProduction(soilTemp float64) float64 {
	return logisticProduction(sgpA, sgpK, sgpB, soilTemp)
}

// grassProduction returns abiotic OCS production from grassland soil
// [pmol m-2 s-1] at the given soil temperature [°C].
func grassProduction(soilTemp float64) float64 {
	return logisticProduction(stuntA, stuntK, stuntB, soilTemp)
}

// wetlandProduction returns OCS emission from wetland soil
// [pmol m-2 s-1] at the given soil temperature [°C]. Wetland emissions
// are so large that uptake is within the uncertainty of production, so
// this is the entire wetland flux.
func wetlandProduction(soilTemp float64) float64 {
	return logisticProduction(txA, txK, txB, soilTemp)
}
