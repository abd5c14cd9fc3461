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

// An Equation is the fitted flux response for one land cover category.
// Evaluation is pure and deterministic; all input checking happens in
// Validate before an Equation is invoked.
type Equation struct {
	name string

	// production and uptake are the abiotic and biotic flux components
	// [pmol m-2 s-1]. Either or both may be nil, meaning that component
	// is zero.
	production func(soilTemp float64) float64
	uptake     func(soilTemp, soilw float64) float64

	// usesMoisture reports whether the uptake component consumes soil
	// moisture. Categories without moisture terms accept NaN soilw.
	usesMoisture bool
}

// Name returns the land cover name the equation was fit for.
func (eq *Equation) Name() string { return eq.name }

// UsesMoisture reports whether the equation consumes soil moisture.
func (eq *Equation) UsesMoisture() bool { return eq.usesMoisture }

// Components returns the abiotic production and biotic uptake flux
// components [pmol m-2 s-1] at the given soil temperature [°C] and soil
// moisture [% VWC]. The six fitted vegetated categories return zero
// components at or below freezing, matching the fits; the wetland curve
// has no internal temperature cutoff, which is why Flux applies the
// frozen-soil shortcut uniformly.
func (eq *Equation) Components(soilTemp, soilw float64) (production, uptake float64) {
	if eq.uptake != nil {
		// The combined fit is only defined above freezing.
		if soilTemp <= 0 {
			return 0, 0
		}
		uptake = eq.uptake(soilTemp, soilw)
	}
	if eq.production != nil {
		production = eq.production(soilTemp)
	}
	return production, uptake
}

// Evaluate returns the net soil OCS flux [pmol m-2 s-1; positive =
// emission] at the given soil temperature [°C] and soil moisture
// [% VWC].
func (eq *Equation) Evaluate(soilTemp, soilw float64) float64 {
	production, uptake := eq.Components(soilTemp, soilw)
	return production + uptake
}

// An Estimate is the result of one guarded flux evaluation.
type Estimate struct {
	// Flux is the net soil OCS flux [pmol m-2 s-1]; positive values are
	// emission to the atmosphere and negative values are uptake.
	Flux float64

	// Production and Uptake are the abiotic and biotic components of
	// Flux [pmol m-2 s-1].
	Production, Uptake float64

	// Extrapolated reports that soil moisture was outside the [2, 50]
	// % VWC band the model was mostly fit within, so confidence in the
	// result is lower.
	Extrapolated bool
}

// A Model dispatches land cover categories to their fitted equations.
// The coefficient data is immutable; the dispatch table is per-Model, so
// aliases set with Alias do not affect other Model values. Models are
// safe for concurrent use once constructed.
type Model struct {
	equations map[Landcover]*Equation
}

// NewModel returns a Model with the standard v8 dispatch table. Desert
// and ice map to a shared constant-zero equation. Tundra, for which no
// dedicated fit exists, shares temperate forest's equation as an
// approximation until tundra data becomes available; use Alias to point
// it elsewhere.
func NewModel() *Model {
	grass := &Equation{name: "grassland", production: grassProduction,
		uptake: grassUptake, usesMoisture: true}
	temperate := &Equation{name: "temperate_forest", production: forestProduction,
		uptake: temperateUptake, usesMoisture: true}
	boreal := &Equation{name: "boreal_forest", production: forestProduction,
		uptake: borealUptake, usesMoisture: true}
	tropical := &Equation{name: "tropical_forest", production: rainforestProduction,
		uptake: tropicalUptake, usesMoisture: true}
	ag := &Equation{name: "agricultural", production: agProduction,
		uptake: agUptake, usesMoisture: true}
	wetland := &Equation{name: "wetland", production: wetlandProduction}
	zero := &Equation{name: "none"}

	return &Model{
		equations: map[Landcover]*Equation{
			Grassland:       grass,
			TemperateForest: temperate,
			BorealForest:    boreal,
			TropicalForest:  tropical,
			Agricultural:    ag,
			Wetland:         wetland,
			Tundra:          temperate,
			Desert:          zero,
			Ice:             zero,
		},
	}
}

// Equation returns the equation that land cover lc dispatches to. It
// deliberately repeats the category check done by Validate so that it is
// safe to call standalone.
func (m *Model) Equation(lc Landcover) (*Equation, error) {
	eq, ok := m.equations[lc]
	if !ok {
		return nil, UnknownLandcoverError(lc.String())
	}
	return eq, nil
}

// Alias points land cover from at the equation currently used by land
// cover to. It exists so that the tundra approximation can be revised
// without touching the fitted equations.
func (m *Model) Alias(from, to Landcover) error {
	eq, err := m.Equation(to)
	if err != nil {
		return err
	}
	if _, err := m.Equation(from); err != nil {
		return err
	}
	m.equations[from] = eq
	return nil
}

// Flux validates the inputs and returns the net soil OCS flux
// [pmol m-2 s-1; positive = emission] for the given soil temperature
// [°C], soil moisture [% VWC; NaN if not available], and land cover.
// Frozen soil (soilTemp ≤ 0) returns zero flux for every category: the
// sub-zero behavior of the fits is unreliable, so v8 applies the
// shortcut uniformly rather than trusting each curve below freezing.
func (m *Model) Flux(soilTemp, soilw float64, lc Landcover) (float64, error) {
	est, err := m.Estimate(soilTemp, soilw, lc)
	if err != nil {
		return 0, err
	}
	return est.Flux, nil
}

// Estimate is Flux but additionally reports the production/uptake split
// and whether soil moisture was outside the well-constrained [2, 50]
// % VWC band.
func (m *Model) Estimate(soilTemp, soilw float64, lc Landcover) (Estimate, error) {
	if err := m.Validate(soilTemp, soilw, lc); err != nil {
		return Estimate{}, err
	}
	if soilTemp <= 0 {
		return Estimate{}, nil
	}
	eq := m.equations[lc]
	production, uptake := eq.Components(soilTemp, soilw)
	return Estimate{
		Flux:       production + uptake,
		Production: production,
		Uptake:     uptake,
		Extrapolated: eq.usesMoisture &&
			(soilw < practicalSoilwMin || soilw > practicalSoilwMax),
	}, nil
}
