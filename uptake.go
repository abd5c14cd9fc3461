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

// Biotic OCS uptake has an optimum temperature and soil moisture, with
// less uptake as conditions deviate from the optimum (first
// characterized by Kesselmeier et al. 1999, with further data in van
// Diest and Kesselmeier 2008). The moisture response reuses the NO
// production model of Behrendt et al. 2014, repurposed for OCS
// consumption. For each category the parameters are: the maximum uptake
// optFlux, the soil moisture θopt at maximum uptake, an "other" uptake
// fluxAtThetaG at a separate moisture θg > θopt, and fits describing how
// temperature alters optFlux and fluxAtThetaG. Production per
// production.go has been subtracted from the underlying observations
// before fitting. The model does not support freezing temperatures;
// fluxes at or below 0 °C are approximated as 0, though this is known to
// be incorrect for some systems, and the role of lichen and bryophytes
// is ignored.

// curveShape returns the Behrendt shape parameter a, typically 1 to 3,
// growing toward ~30 as θopt approaches θg.
func curveShape(optFlux, fluxAtThetaG, thetaG, thetaOpt float64) float64 {
	return math.Log(optFlux/fluxAtThetaG) /
		(math.Log(thetaOpt/thetaG) + thetaG/thetaOpt - 1)
}

// moistureResponse returns the flux at the given moisture (or, for the
// temperature sub-fits below, at the given temperature standing in for
// moisture) on the Behrendt curve defined by the remaining parameters.
func moistureResponse(theta, optFlux, fluxAtThetaG, thetaG, thetaOpt float64) float64 {
	a := curveShape(optFlux, fluxAtThetaG, thetaG, thetaOpt)
	rise := math.Pow(theta/thetaOpt, a)
	fall := math.Exp(-a * (theta/thetaOpt - 1))
	return optFlux * rise * fall
}

// Optimum soil moistures [% VWC].
const (
	grassOptSW     = 12.5 // fits to Stunt Ranch field and lab data
	borealOptSW    = 12.5 // "Siberian" soils and Hyytiälä, Finland
	temperateOptSW = 24.6 // average of 3 Willow Creek incubations
	tropicalOptSW  = 24.6 // temperate forest value reused for lack of data
	agOptSW        = 17.7 // average of 3 Bondville incubations
)

// "Other" soil moistures θg [% VWC].
const (
	grassThetaG     = 26.9
	borealThetaG    = 19.3
	temperateThetaG = 51.
	tropicalThetaG  = 31.
	agThetaG        = 22.
)

// grassUptake returns biotic OCS uptake by grassland soil
// [pmol m-2 s-1], based on Stunt Ranch field and lab data (Sun et al.
// 2016; Whelan et al. 2016).
func grassUptake(soilTemp, soilw float64) float64 {
	optUptake := moistureResponse(soilTemp, -4.5, -1.48268657, 25., 10.86745456)
	otherUptake := moistureResponse(soilTemp, -2.33809598, -1.27719641, 25., 14.75202332)
	return moistureResponse(soilw, optUptake, otherUptake, grassThetaG, grassOptSW)
}

// borealUptake returns biotic OCS uptake by boreal forest soil
// [pmol m-2 s-1], based on "Siberian" soil data from van Diest and
// Kesselmeier (2008) and field data from Hyytiälä, Finland (Sun et al.
// 2018). The boreal uptake optimum is at a much higher temperature (25
// to 30 °C) than for other soils (~15 °C), perhaps because of
// extremophiles in soils with large temperature swings.
func borealUptake(soilTemp, soilw float64) float64 {
	optUptake := moistureResponse(soilTemp, -18.24779932, -12., 35., 28.05488082)
	otherUptake := moistureResponse(soilTemp, -5.89511395, -3.76628476, 35., 28.05488082)
	return moistureResponse(soilw, optUptake, otherUptake, borealThetaG, borealOptSW)
}

// temperateUptake returns biotic OCS uptake by temperate forest soil
// [pmol m-2 s-1], based on Willow Creek (US-WCr) incubations informed by
// field data from Harvard Forest (Wehr et al. 2017) and Wind River
// (Rastogi et al. 2018). The optimum uptake is fixed at the highest
// uptake recorded at Wind River; the fit at θg has an r² of 0.9 with 4
// data points.
func temperateUptake(soilTemp, soilw float64) float64 {
	const optUptake = -12.6
	otherUptake := -0.17629655*soilTemp + 0.47914552
	return moistureResponse(soilw, optUptake, otherUptake, temperateThetaG, temperateOptSW)
}

// tropicalUptake returns biotic OCS uptake by tropical forest soil
// [pmol m-2 s-1], based on incubations of soil from Los Amigos Research
// Station, Peru (Whelan et al. 2016). The optimum is the highest uptake
// seen in incubations; the "other" uptake is the average of 7 incubation
// measurements from 10 to 40 °C at ~31% VWC.
func tropicalUptake(soilTemp, soilw float64) float64 {
	const (
		optUptake   = -2.7
		otherUptake = -0.86
	)
	return moistureResponse(soilw, optUptake, otherUptake, tropicalThetaG, tropicalOptSW)
}

// agUptake returns biotic OCS uptake by agricultural soil
// [pmol m-2 s-1], based on Bondville (US-Bo1) incubations and field data
// from an Oklahoma wheat field (Maseyk et al. 2014). The apparent
// increase of maximum uptake with temperature suggests the production
// correction may be too strong, though the agricultural production curve
// is based on field data alone.
func agUptake(soilTemp, soilw float64) float64 {
	const (
		optUptake   = -9.7
		otherUptake = -5.36 // Bondville incubations from 20.9 to 22.2% VWC
	)
	return moistureResponse(soilw, optUptake, otherUptake, agThetaG, agOptSW)
}
