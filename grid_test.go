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
	"io"
	"os"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// fakeMet supplies in-memory gridded data for testing the grid driver.
type fakeMet struct {
	soilT, soilW, landuse []*sparse.DenseArray
	ny, nx                int
}

func next(arrays []*sparse.DenseArray) NextData {
	var i int
	return func() (*sparse.DenseArray, error) {
		if i >= len(arrays) {
			return nil, io.EOF
		}
		a := arrays[i]
		i++
		return a, nil
	}
}

func (f *fakeMet) SoilT() NextData   { return next(f.soilT) }
func (f *fakeMet) SoilW() NextData   { return next(f.soilW) }
func (f *fakeMet) Landuse() NextData { return next(f.landuse) }
func (f *fakeMet) Nx() (int, error)  { return f.nx, nil }
func (f *fakeMet) Ny() (int, error)  { return f.ny, nil }

func constArray(v float64, ny, nx int) *sparse.DenseArray {
	a := sparse.ZerosDense(ny, nx)
	for i := range a.Elements {
		a.Elements[i] = v
	}
	return a
}

func testMet() *fakeMet {
	const ny, nx = 2, 3
	lu := constArray(float64(Wetland), ny, nx)
	lu.Set(float64(Desert), 0, 0)
	return &fakeMet{
		// Wetland at 25 °C in the first step, frozen in the second.
		soilT:   []*sparse.DenseArray{constArray(25, ny, nx), constArray(-5, ny, nx)},
		soilW:   []*sparse.DenseArray{constArray(25, ny, nx), constArray(25, ny, nx)},
		landuse: []*sparse.DenseArray{lu, lu},
		ny:      ny,
		nx:      nx,
	}
}

func TestRunGrid(t *testing.T) {
	const wetlandFlux25 = 43.533216412670676

	g, err := RunGrid(NewModel(), testMet())
	if err != nil {
		t.Fatal(err)
	}
	if g.Steps != 2 {
		t.Fatalf("averaged %d steps; want 2", g.Steps)
	}

	// The frozen second step halves the time average.
	want := wetlandFlux25 / 2
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			flux := g.Flux.Get(j, i)
			if j == 0 && i == 0 { // desert cell
				if flux != 0 {
					t.Errorf("desert cell flux %g; want 0", flux)
				}
				continue
			}
			if different(flux, want, testTolerance) {
				t.Errorf("cell (%d, %d) flux %g; want %g", j, i, flux, want)
			}
			if different(g.Production.Get(j, i), want, testTolerance) {
				t.Errorf("cell (%d, %d) production %g; want %g", j, i, g.Production.Get(j, i), want)
			}
			if g.Uptake.Get(j, i) != 0 {
				t.Errorf("cell (%d, %d) wetland uptake %g; want 0", j, i, g.Uptake.Get(j, i))
			}
			if g.Extrapolated.Get(j, i) != 0 {
				t.Errorf("cell (%d, %d) extrapolated fraction %g; want 0", j, i, g.Extrapolated.Get(j, i))
			}
		}
	}
}

func TestRunGridBadInput(t *testing.T) {
	met := testMet()
	met.soilW[0].Set(150, 1, 1) // out of range
	if _, err := RunGrid(NewModel(), met); err == nil {
		t.Error("out-of-range grid moisture accepted")
	}

	met = testMet()
	met.landuse[0].Set(99, 1, 1)
	if _, err := RunGrid(NewModel(), met); err == nil {
		t.Error("invalid grid land use accepted")
	}

	empty := &fakeMet{ny: 2, nx: 3}
	if _, err := RunGrid(NewModel(), empty); err == nil {
		t.Error("empty meteorology accepted")
	}
}

func TestWriteNetCDF(t *testing.T) {
	g, err := RunGrid(NewModel(), testMet())
	if err != nil {
		t.Fatal(err)
	}

	const outFile = "testFlux.ncf"
	defer os.Remove(outFile)
	if err := g.WriteNetCDF(outFile); err != nil {
		t.Fatal(err)
	}

	f, err := os.Open(outFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ff, err := cdf.Open(f)
	if err != nil {
		t.Fatal(err)
	}

	dims := ff.Header.Lengths("SoilFlux")
	if len(dims) != 2 || dims[0] != g.Ny || dims[1] != g.Nx {
		t.Fatalf("SoilFlux dimensions %v; want [%d %d]", dims, g.Ny, g.Nx)
	}
	if u := ff.Header.GetAttribute("SoilFlux", "units").(string); u != "pmol m-2 s-1" {
		t.Errorf("SoilFlux units %q", u)
	}

	r := ff.Reader("SoilFlux", nil, nil)
	buf := r.Zero(-1)
	if _, err := r.Read(buf); err != nil {
		t.Fatal(err)
	}
	for i, v := range buf.([]float32) {
		if different(float64(v), g.Flux.Elements[i], 1.e-6) {
			t.Errorf("element %d: read %g; wrote %g", i, v, g.Flux.Elements[i])
		}
	}
}

func TestGridCells(t *testing.T) {
	g := &FluxGrid{Ny: 2, Nx: 3}
	def := GridDef{W: -120, S: 30, Dx: 0.5, Dy: 0.5}
	cells := g.Cells(def)
	if len(cells) != 6 {
		t.Fatalf("got %d cells; want 6", len(cells))
	}
	b := cells[0].Bounds()
	if b.Min.X != -120 || b.Min.Y != 30 || b.Max.X != -119.5 || b.Max.Y != 30.5 {
		t.Errorf("first cell bounds %+v", b)
	}
	b = cells[5].Bounds()
	if b.Min.X != -119 || b.Min.Y != 30.5 || b.Max.X != -118.5 || b.Max.Y != 31 {
		t.Errorf("last cell bounds %+v", b)
	}
}
