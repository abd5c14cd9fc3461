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
	"encoding/csv"
	"io/ioutil"
	"math"
	"os"
	"testing"
)

const testOutputFilename = "testOutput.csv"

func TestReadRecords(t *testing.T) {
	recs, err := ReadRecords("testdata/sites.csv")
	if err != nil {
		t.Fatal(err)
	}
	if len(recs) != 8 {
		t.Fatalf("read %d records; want 8", len(recs))
	}

	r := recs[0]
	if r.Site != "stunt_ranch" || r.Landcover != Grassland ||
		r.SoilTemp != 15 || r.SoilW != 15 {
		t.Errorf("first record: %+v", r)
	}

	// Empty soilw fields are NaN.
	for _, i := range []int{5, 6} {
		if !math.IsNaN(recs[i].SoilW) {
			t.Errorf("record %d (%s): soilw %g; want NaN", i, recs[i].Site, recs[i].SoilW)
		}
	}
}

func TestReadRecordsErrors(t *testing.T) {
	write := func(name, contents string) string {
		if err := ioutil.WriteFile(name, []byte(contents), 0644); err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { os.Remove(name) })
		return name
	}

	badLandcover := write("testBadLandcover.csv",
		"site,time,landcover,soil_temp,soilw\na,t,rainforest,15,15\n")
	if _, err := ReadRecords(badLandcover); err == nil {
		t.Error("invalid land cover name accepted")
	}

	badTemp := write("testBadTemp.csv",
		"site,time,landcover,soil_temp,soilw\na,t,grassland,warm,15\n")
	if _, err := ReadRecords(badTemp); err == nil {
		t.Error("unparseable temperature accepted")
	}

	badFields := write("testBadFields.csv",
		"site,time,landcover,soil_temp\na,t,grassland,15\n")
	if _, err := ReadRecords(badFields); err == nil {
		t.Error("wrong field count accepted")
	}

	if _, err := ReadRecords("testMissingFile.csv"); err == nil {
		t.Error("missing file accepted")
	}
}

func TestOutputterExpressions(t *testing.T) {
	results := []Result{
		{
			Record:   Record{Site: "a", Landcover: Grassland, SoilTemp: 15, SoilW: 15},
			Estimate: Estimate{Flux: -3.75, Production: 0.08, Uptake: -3.83},
		},
		{
			Record:   Record{Site: "b", Landcover: Wetland, SoilTemp: 25, SoilW: math.NaN()},
			Estimate: Estimate{Flux: 43.5, Production: 43.5, Extrapolated: true},
		},
	}

	o, err := NewOutputter("", map[string]string{
		"NetFlux":  "Flux",
		"Emission": "max(Flux, 0)",
		"Sink":     "min(Flux, 0)",
		"Total":    "sum(Production, Uptake)",
		"Extrap":   "Extrapolated * Flux",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	cols, err := o.Results(results)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		want []float64
	}{
		{"NetFlux", []float64{-3.75, 43.5}},
		{"Emission", []float64{0, 43.5}},
		{"Sink", []float64{-3.75, 0}},
		{"Total", []float64{-3.75, 43.5}},
		{"Extrap", []float64{0, 43.5}},
	}
	for _, tt := range tests {
		for i, want := range tt.want {
			if different(cols[tt.name][i], want, testTolerance) {
				t.Errorf("%s[%d]: %g != %g", tt.name, i, cols[tt.name][i], want)
			}
		}
	}
}

func TestOutputterBadExpressions(t *testing.T) {
	if _, err := NewOutputter("", map[string]string{"a": "Flux +"}, nil); err == nil {
		t.Error("malformed expression accepted")
	}
	if _, err := NewOutputter("", map[string]string{"a": "Concentration * 2"}, nil); err == nil {
		t.Error("undefined variable accepted")
	}
	if _, err := NewOutputter("out.shp", map[string]string{"ThisNameIsTooLong": "Flux"}, nil); err == nil {
		t.Error("long shapefile field name accepted")
	}
	if _, err := NewOutputter("out.shp", map[string]string{"bad name": "Flux"}, nil); err == nil {
		t.Error("shapefile field name with space accepted")
	}
	// Long names are fine for non-shapefile output.
	if _, err := NewOutputter("out.csv", map[string]string{"ThisNameIsTooLong": "Flux"}, nil); err != nil {
		t.Errorf("long CSV column name rejected: %v", err)
	}
}

func TestWriteResults(t *testing.T) {
	m := NewModel()
	recs, err := ReadRecords("testdata/sites.csv")
	if err != nil {
		t.Fatal(err)
	}
	results := make([]Result, len(recs))
	for i, r := range recs {
		est, err := m.Estimate(r.SoilTemp, r.SoilW, r.Landcover)
		if err != nil {
			t.Fatal(err)
		}
		results[i] = Result{Record: r, Estimate: est}
	}

	defer os.Remove(testOutputFilename)
	o, err := NewOutputter(testOutputFilename, map[string]string{
		"NetFlux":    "Flux",
		"Production": "Production",
		"Uptake":     "Uptake",
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := o.WriteResults(results); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(testOutputFilename)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	lines, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(lines) != len(results)+1 {
		t.Fatalf("output has %d lines; want %d", len(lines), len(results)+1)
	}
	wantHeader := []string{"site", "time", "landcover", "soil_temp", "soilw",
		"extrapolated", "NetFlux", "Production", "Uptake"}
	for i, h := range wantHeader {
		if lines[0][i] != h {
			t.Errorf("header column %d: %s; want %s", i, lines[0][i], h)
		}
	}
	// NaN soilw comes out as an empty field.
	if lines[6][4] != "" {
		t.Errorf("missing soilw written as %q; want empty", lines[6][4])
	}
	// Frozen tundra record has zero flux.
	if lines[7][6] != "0" {
		t.Errorf("frozen record flux written as %q; want 0", lines[7][6])
	}
}
