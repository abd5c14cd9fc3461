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

import "fmt"

// Landcover is a land cover category determining which fitted equation
// is used to estimate soil OCS flux. The set of categories is closed:
// values outside the enumeration below are input errors.
type Landcover int

// The land cover categories accepted by the model.
const (
	Grassland Landcover = iota
	TemperateForest
	BorealForest
	TropicalForest
	Agricultural
	Wetland
	Tundra
	Desert
	Ice
)

// Landcovers lists all valid land cover categories in a fixed order.
var Landcovers = []Landcover{Grassland, TemperateForest, BorealForest,
	TropicalForest, Agricultural, Wetland, Tundra, Desert, Ice}

var landcoverNames = map[Landcover]string{
	Grassland:       "grassland",
	TemperateForest: "temperate_forest",
	BorealForest:    "boreal_forest",
	TropicalForest:  "tropical_forest",
	Agricultural:    "agricultural",
	Wetland:         "wetland",
	Tundra:          "tundra",
	Desert:          "desert",
	Ice:             "ice",
}

func (lc Landcover) String() string {
	if s, ok := landcoverNames[lc]; ok {
		return s
	}
	return fmt.Sprintf("Landcover(%d)", int(lc))
}

// ParseLandcover converts a land cover name to a Landcover. Accepted
// names are grassland, temperate_forest, boreal_forest, tropical_forest,
// agricultural, wetland, tundra, desert, and ice.
func ParseLandcover(name string) (Landcover, error) {
	for lc, s := range landcoverNames {
		if s == name {
			return lc, nil
		}
	}
	return -1, UnknownLandcoverError(name)
}

// UnknownLandcoverError is returned when a land cover category is not in
// the closed set accepted by the model.
type UnknownLandcoverError string

func (e UnknownLandcoverError) Error() string {
	return fmt.Sprintf("socsem: '%s' is not a valid land cover category; "+
		"valid options are grassland, temperate_forest, boreal_forest, "+
		"tropical_forest, agricultural, wetland, tundra, desert, and ice", string(e))
}

// USGS is a lookup table to go from USGS land use classes, as used for
// example in the WRF LU_INDEX variable, to SOCSEM land cover categories.
// Classes without vegetated soil (urban, water, barren) map to the
// constant-zero desert equation, and snow or ice maps to ice.
var USGS = []Landcover{
	Desert,          //'Urban and Built-Up Land'
	Agricultural,    //'Dryland Cropland and Pasture'
	Agricultural,    //'Irrigated Cropland and Pasture'
	Agricultural,    //'Mixed Dryland/Irrigated Cropland and Pasture'
	Agricultural,    //'Cropland/Grassland Mosaic'
	Agricultural,    //'Cropland/Woodland Mosaic'
	Grassland,       //'Grassland'
	Grassland,       //'Shrubland'
	Grassland,       //'Mixed Shrubland/Grassland'
	Grassland,       //'Savanna'
	TemperateForest, //'Deciduous Broadleaf Forest'
	BorealForest,    //'Deciduous Needleleaf Forest'
	TropicalForest,  //'Evergreen Broadleaf Forest'
	TemperateForest, //'Evergreen Needleleaf Forest'
	TemperateForest, //'Mixed Forest'
	Desert,          //'Water Bodies'
	Wetland,         //'Herbaceous Wetland'
	Wetland,         //'Wooded Wetland'
	Desert,          //'Barren or Sparsely Vegetated'
	Tundra,          //'Herbaceous Tundra'
	Tundra,          //'Wooded Tundra'
	Tundra,          //'Mixed Tundra'
	Desert,          //'Bare Ground Tundra'
	Ice,             //'Snow or Ice'
	Desert,          //'Playa'
	Desert,          //'Lava'
	Desert,          //'White Sand'
}

// FromUSGS converts a 1-based USGS land use class index, as stored in
// WRF output files, to a SOCSEM land cover category.
func FromUSGS(class int) (Landcover, error) {
	if class < 1 || class > len(USGS) {
		return -1, fmt.Errorf("socsem: invalid USGS land use class %d; "+
			"valid classes are 1 through %d", class, len(USGS))
	}
	return USGS[class-1], nil
}
