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
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/ctessum/cdf"
	"github.com/ctessum/geom"
	"github.com/ctessum/sparse"
)

// A FluxGrid holds time-averaged gridded model output on a regular grid.
type FluxGrid struct {
	// Ny and Nx are the grid dimensions in the south-north and
	// west-east directions, respectively.
	Ny, Nx int

	// Flux, Production, and Uptake are time averages
	// [pmol m-2 s-1; positive flux = emission].
	Flux, Production, Uptake *sparse.DenseArray

	// Extrapolated is the fraction of time steps in which each cell's
	// soil moisture was outside the well-constrained range.
	Extrapolated *sparse.DenseArray

	// Steps is the number of time steps averaged over.
	Steps int
}

// RunGrid evaluates the model for every cell and time step of the
// meteorology in data, returning time-averaged results. Evaluation
// within each time step is split across runtime.GOMAXPROCS(-1) workers
// by grid row. Any invalid cell input aborts the run; gridded
// meteorology is expected to be physically consistent, so an invalid
// cell means a unit or classification problem rather than a data gap.
func RunGrid(m *Model, data MetData) (*FluxGrid, error) {
	nx, err := data.Nx()
	if err != nil {
		return nil, err
	}
	ny, err := data.Ny()
	if err != nil {
		return nil, err
	}
	g := &FluxGrid{
		Ny:           ny,
		Nx:           nx,
		Flux:         sparse.ZerosDense(ny, nx),
		Production:   sparse.ZerosDense(ny, nx),
		Uptake:       sparse.ZerosDense(ny, nx),
		Extrapolated: sparse.ZerosDense(ny, nx),
	}

	soilTFunc := data.SoilT()
	soilWFunc := data.SoilW()
	landuseFunc := data.Landuse()

	for {
		soilT, err := soilTFunc()
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, err
		}
		soilW, err := soilWFunc()
		if err != nil {
			return nil, err
		}
		landuse, err := landuseFunc()
		if err != nil {
			return nil, err
		}
		if err := g.addTimestep(m, soilT, soilW, landuse); err != nil {
			return nil, err
		}
		g.Steps++
	}
	if g.Steps == 0 {
		return nil, fmt.Errorf("socsem: gridded run has no time steps")
	}
	for _, a := range []*sparse.DenseArray{g.Flux, g.Production, g.Uptake, g.Extrapolated} {
		for i, v := range a.Elements {
			a.Elements[i] = v / float64(g.Steps)
		}
	}
	return g, nil
}

// addTimestep accumulates one time step of per-cell estimates. Workers
// own disjoint rows, so they write to the accumulator arrays without
// locking.
func (g *FluxGrid) addTimestep(m *Model, soilT, soilW, landuse *sparse.DenseArray) error {
	nprocs := runtime.GOMAXPROCS(-1)
	errChan := make(chan error, nprocs)
	var wg sync.WaitGroup
	for p := 0; p < nprocs; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for j := p; j < g.Ny; j += nprocs {
				for i := 0; i < g.Nx; i++ {
					lc := Landcover(f2i(landuse.Get(j, i)))
					est, err := m.Estimate(soilT.Get(j, i), soilW.Get(j, i), lc)
					if err != nil {
						errChan <- fmt.Errorf("socsem: grid cell (%d, %d): %v", j, i, err)
						return
					}
					g.Flux.AddVal(est.Flux, j, i)
					g.Production.AddVal(est.Production, j, i)
					g.Uptake.AddVal(est.Uptake, j, i)
					if est.Extrapolated {
						g.Extrapolated.AddVal(1, j, i)
					}
				}
			}
		}(p)
	}
	wg.Wait()
	close(errChan)
	return <-errChan
}

// gridVars lists the output grid variables, their source arrays within
// a FluxGrid, and their metadata.
func (g *FluxGrid) gridVars() ([]string, map[string]*sparse.DenseArray, map[string]string, map[string]string) {
	names := []string{"SoilFlux", "Production", "Uptake", "ExtrapFrac"}
	arrays := map[string]*sparse.DenseArray{
		"SoilFlux":   g.Flux,
		"Production": g.Production,
		"Uptake":     g.Uptake,
		"ExtrapFrac": g.Extrapolated,
	}
	descriptions := map[string]string{
		"SoilFlux":   "time-averaged net soil OCS flux; positive = emission to the atmosphere",
		"Production": "time-averaged abiotic soil OCS production",
		"Uptake":     "time-averaged biotic soil OCS uptake",
		"ExtrapFrac": "fraction of time steps with soil moisture outside the well-constrained range",
	}
	units := map[string]string{
		"SoilFlux":   "pmol m-2 s-1",
		"Production": "pmol m-2 s-1",
		"Uptake":     "pmol m-2 s-1",
		"ExtrapFrac": "fraction",
	}
	return names, arrays, descriptions, units
}

// WriteNetCDF writes the time-averaged grids to a NetCDF file at
// outfile.
func (g *FluxGrid) WriteNetCDF(outfile string) error {
	h := cdf.NewHeader([]string{"y", "x"}, []int{g.Ny, g.Nx})
	h.AddAttribute("", "model", "SOCSEM v"+Version)
	h.AddAttribute("", "sign_convention", "positive flux = emission to the atmosphere")
	h.AddAttribute("", "time_steps_averaged", []int32{int32(g.Steps)})

	names, arrays, descriptions, units := g.gridVars()
	for _, v := range names {
		h.AddVariable(v, []string{"y", "x"}, []float32{0})
		h.AddAttribute(v, "description", descriptions[v])
		h.AddAttribute(v, "units", units[v])
	}
	h.Define()
	for _, err := range h.Check() {
		return fmt.Errorf("socsem: creating flux netcdf file: %v", err)
	}

	ff, err := os.Create(outfile)
	if err != nil {
		return fmt.Errorf("socsem: creating flux netcdf file: %v", err)
	}
	defer ff.Close()
	f, err := cdf.Create(ff, h)
	if err != nil {
		return fmt.Errorf("socsem: creating flux netcdf file: %v", err)
	}
	for _, v := range names {
		a := arrays[v]
		buf := make([]float32, len(a.Elements))
		for i, val := range a.Elements {
			buf[i] = float32(val)
		}
		w := f.Writer(v, []int{0, 0}, []int{g.Ny, g.Nx})
		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("socsem: writing flux netcdf variable %s: %v", v, err)
		}
	}
	return cdf.UpdateNumRecs(ff)
}

// A GridDef describes the geographic registration of a regular
// latitude-longitude grid: the longitude W and latitude S of the
// southwest corner and the cell sizes Dx and Dy [degrees].
type GridDef struct {
	W, S, Dx, Dy float64
}

// Cells returns the cell polygons of grid g under the given geographic
// registration, in the same row-major order as the data arrays.
func (g *FluxGrid) Cells(def GridDef) []geom.Polygonal {
	cells := make([]geom.Polygonal, 0, g.Ny*g.Nx)
	for j := 0; j < g.Ny; j++ {
		for i := 0; i < g.Nx; i++ {
			x := def.W + float64(i)*def.Dx
			y := def.S + float64(j)*def.Dy
			cells = append(cells, geom.Polygon{{
				{X: x, Y: y},
				{X: x + def.Dx, Y: y},
				{X: x + def.Dx, Y: y + def.Dy},
				{X: x, Y: y + def.Dy},
				{X: x, Y: y},
			}})
		}
	}
	return cells
}

// WriteShapefile writes the time-averaged grids, registered to the
// given geographic grid definition, to a shapefile at fileName.
func (g *FluxGrid) WriteShapefile(fileName string, def GridDef) error {
	names, arrays, _, _ := g.gridVars()
	data := make(map[string][]float64)
	for _, v := range names {
		data[v] = arrays[v].Elements
	}
	return WriteShapefile(fileName, g.Cells(def), data)
}
