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

// Package socsem implements the Whelan et al. (2021) Soil OCS Exchange
// Model (SOCSEM), an empirical regression model of the exchange of
// carbonyl sulfide (OCS, also written COS) between soils and the
// atmosphere.
//
// The model estimates a soil-atmosphere OCS flux from three inputs: soil
// surface temperature [°C], soil volumetric water content [% VWC], and a
// land cover category. Each land cover category maps to a fitted
// empirical response curve; there is no transport, diffusion, or
// microbial kinetics simulation. Fluxes are reported in
// pmol OCS m⁻² s⁻¹, where positive values are emission to the atmosphere
// and negative values are uptake from the atmosphere.
//
// The flux for each category is the sum of an abiotic production term,
// which increases exponentially with temperature (first noted by Liu et
// al. 2010 in lab incubations and observed in the field by Maseyk et al.
// 2014), and a biotic uptake term with an optimum soil moisture,
// following the shape of the NO production model of Behrendt et al.
// 2014. The fitted coefficients assume an ambient atmospheric OCS
// concentration of 0.5 ppb (AmbientOCS) and cannot be trivially rescaled
// for other ambient concentrations.
//
// Works cited:
//
//	Whelan et al. 2016 https://doi.org/10.5194/acp-16-3711-2016
//	Whelan and Rhew 2015 https://doi.org/10.1007/s10533-016-0207-7
//	Whelan et al. 2013 https://doi.org/10.1016/j.atmosenv.2013.02.048
//	Commane et al. 2015 https://doi.org/10.1073/pnas.1504131112
//	Liu et al. 2010 https://doi.org/10.5194/bg-7-753-2010
//	Maseyk et al. 2014 https://doi.org/10.1073/pnas.1319132111
//	Meredith et al. 2018 https://doi.org/10.3390/soilsystems2030037
//	Sun et al. 2018 https://doi.org/10.5194/acp-18-1363-2018
//	Van Diest and Kesselmeier 2008 https://doi.org/10.5194/bg-5-475-2008
package socsem

// Version gives the version of the model that this package implements.
const Version = "8.0.1"

// AmbientOCS is the background atmospheric OCS concentration [ppb]
// assumed when the model coefficients were fit. It is documentation, not
// a runtime input: the fitted curves are sensitive to the assumed
// ambient concentration and do not rescale linearly for other values.
const AmbientOCS = 0.5
