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
	"strings"
	"time"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// NextData is a type of function that returns gridded data for the next
// time step. It should return the io.EOF error after the last time step.
type NextData func() (*sparse.DenseArray, error)

// MetData is an interface to gridded meteorology and land use data for
// driving the model over a grid.
type MetData interface {
	// SoilT returns an iterator over surface-layer soil temperature
	// [°C].
	SoilT() NextData

	// SoilW returns an iterator over surface-layer volumetric soil
	// moisture [% VWC].
	SoilW() NextData

	// Landuse returns an iterator over the land cover category of each
	// grid cell, encoded as float64(Landcover).
	Landuse() NextData

	// Nx and Ny return the grid dimensions in the west-east and
	// south-north directions, respectively.
	Nx() (int, error)
	Ny() (int, error)
}

// inDateFormat is the format in which simulation start and end dates
// are expressed.
const inDateFormat = "20060102"

// wrfFormat is the format in which dates appear in WRF output file names.
const wrfFormat = "2006-01-02_15_04_05"

// WRF reads meteorology from WRF output files. The variables used are
// TSLB (soil temperature [K]), SMOIS (volumetric soil moisture
// [fraction]), and LU_INDEX (USGS land use class).
type WRF struct {
	start, end time.Time

	wrfOut string

	recordDelta, fileDelta time.Duration

	msgChan chan string
}

// NewWRF initializes a WRF meteorology reader from the given
// configuration information.
// WRFOut is the location of WRF output files.
// [DATE] should be used as a wild card for the simulation date.
// startDate and endDate are the dates of the beginning and end of the
// simulation, respectively, in the format "YYYYMMDD".
// If msgChan is not nil, status messages will be sent to it.
func NewWRF(WRFOut, startDate, endDate string, msgChan chan string) (*WRF, error) {
	w := WRF{
		wrfOut:  WRFOut,
		msgChan: msgChan,
	}

	var err error
	w.start, err = time.Parse(inDateFormat, startDate)
	if err != nil {
		return nil, fmt.Errorf("socsem: WRF reader start time: %v", err)
	}
	w.end, err = time.Parse(inDateFormat, endDate)
	if err != nil {
		return nil, fmt.Errorf("socsem: WRF reader end time: %v", err)
	}
	if !w.end.After(w.start) {
		return nil, fmt.Errorf("socsem: WRF reader end time %v is not after start time %v", w.end, w.start)
	}

	w.recordDelta, err = time.ParseDuration("1h")
	if err != nil {
		return nil, fmt.Errorf("socsem: WRF reader recordDelta: %v", err)
	}
	w.fileDelta, err = time.ParseDuration("24h")
	if err != nil {
		return nil, fmt.Errorf("socsem: WRF reader fileDelta: %v", err)
	}
	return &w, nil
}

// SoilT returns an iterator over top-layer soil temperature [°C],
// converted from the WRF TSLB variable [K].
func (w *WRF) SoilT() NextData {
	tslbFunc := w.nextData("TSLB", readNCFSurfaceLayer)
	return func() (*sparse.DenseArray, error) {
		tslb, err := tslbFunc()
		if err != nil {
			return nil, err
		}
		out := sparse.ZerosDense(tslb.Shape...)
		for i, v := range tslb.Elements {
			out.Elements[i] = v - 273.15
		}
		return out, nil
	}
}

// SoilW returns an iterator over top-layer soil moisture [% VWC],
// converted from the WRF SMOIS variable [m3 m-3].
func (w *WRF) SoilW() NextData {
	smoisFunc := w.nextData("SMOIS", readNCFSurfaceLayer)
	return func() (*sparse.DenseArray, error) {
		smois, err := smoisFunc()
		if err != nil {
			return nil, err
		}
		out := sparse.ZerosDense(smois.Shape...)
		for i, v := range smois.Elements {
			out.Elements[i] = v * 100
		}
		return out, nil
	}
}

// Landuse returns an iterator over the land cover category of each grid
// cell, converted from the WRF LU_INDEX variable using the USGS lookup
// table.
func (w *WRF) Landuse() NextData {
	luFunc := w.nextData("LU_INDEX", readNCF)
	return func() (*sparse.DenseArray, error) {
		lu, err := luFunc()
		if err != nil {
			return nil, err
		}
		out := sparse.ZerosDense(lu.Shape...)
		for i, v := range lu.Elements {
			lc, err := FromUSGS(f2i(v))
			if err != nil {
				return nil, err
			}
			out.Elements[i] = float64(lc)
		}
		return out, nil
	}
}

// Nx returns the number of grid cells in the west-east direction.
func (w *WRF) Nx() (int, error) {
	f, ff, err := ncfFromTemplate(w.wrfOut, wrfFormat, w.start)
	if err != nil {
		return -1, fmt.Errorf("socsem: WRF reader Nx: %v", err)
	}
	defer f.Close()
	dims := ff.Header.Lengths("LU_INDEX")
	if len(dims) == 0 {
		return -1, fmt.Errorf("socsem: WRF reader Nx: variable LU_INDEX not in file")
	}
	return dims[len(dims)-1], nil
}

// Ny returns the number of grid cells in the south-north direction.
func (w *WRF) Ny() (int, error) {
	f, ff, err := ncfFromTemplate(w.wrfOut, wrfFormat, w.start)
	if err != nil {
		return -1, fmt.Errorf("socsem: WRF reader Ny: %v", err)
	}
	defer f.Close()
	dims := ff.Header.Lengths("LU_INDEX")
	if len(dims) < 2 {
		return -1, fmt.Errorf("socsem: WRF reader Ny: variable LU_INDEX not in file")
	}
	return dims[len(dims)-2], nil
}

func (w *WRF) nextData(varName string, readFunc readNCFFunc) NextData {
	return nextDataNCF(w.wrfOut, wrfFormat, varName, w.start, w.end, w.recordDelta, w.fileDelta, readFunc, w.msgChan)
}

// nextDataNCF returns a function that sequentially retrieves time series data
// for the specified variable (varName) from a series of NetCDF files
// with the given file name template between the given start and end times.
// recordDelta and fileDelta specify the length of time between each record
// within a file and each file, respectively. dateFormat is the format
// in which dates appear in the filename.
func nextDataNCF(fileTemplate string, dateFormat string, varName string, start, end time.Time, recordDelta, fileDelta time.Duration, readFunc readNCFFunc, msgChan chan string) NextData {
	recordsPerFile := int(fileDelta / recordDelta)
	var i int
	date := start
	return func() (*sparse.DenseArray, error) {
		if !date.Before(end) {
			return nil, io.EOF
		}
		f, ff, err := ncfFromTemplate(fileTemplate, dateFormat, date)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		data, err := readFunc(varName, ff, i)
		if err != nil {
			return nil, err
		}
		i++
		if i == recordsPerFile {
			if msgChan != nil {
				fileName := strings.Replace(fileTemplate, "[DATE]", date.Format(dateFormat), -1)
				msgChan <- fmt.Sprintf("Read %d records of %s from %s", i, varName, fileName)
			}
			i = 0
			date = date.Add(fileDelta)
		}
		return data, err
	}
}

// readNCFFunc is a function that can read information from a
// NetCDF file.
type readNCFFunc func(varName string, file *cdf.File, index int) (*sparse.DenseArray, error)

// readNCF reads variable varName out of netcdf file ff at the index 0
// value specified by hour.
func readNCF(varName string, ff *cdf.File, hour int) (*sparse.DenseArray, error) {
	dims := ff.Header.Lengths(varName)
	if len(dims) == 0 {
		return nil, fmt.Errorf("socsem: read netcdf: variable %v not in file", varName)
	}
	dims = dims[1:]
	nread := 1
	for _, dim := range dims {
		nread *= dim
	}
	start, end := make([]int, len(dims)+1), make([]int, len(dims)+1)
	start[0], end[0] = hour, hour+1
	r := ff.Reader(varName, start, end)
	buf := r.Zero(nread)
	_, err := r.Read(buf)
	if err != nil {
		return nil, fmt.Errorf("socsem: read netcdf variable %s: %v", varName, err)
	}
	data := sparse.ZerosDense(dims...)
	for i, val := range buf.([]float32) {
		data.Elements[i] = float64(val)
	}
	return data, nil
}

// readNCFSurfaceLayer reads the top soil layer of the soil-layer-resolved
// variable varName out of netcdf file ff at the index 0 value specified
// by hour. WRF stores soil layers from the surface downward, so the top
// layer is layer index 0.
func readNCFSurfaceLayer(varName string, ff *cdf.File, hour int) (*sparse.DenseArray, error) {
	data, err := readNCF(varName, ff, hour)
	if err != nil {
		return nil, err
	}
	if len(data.Shape) != 3 {
		return nil, fmt.Errorf("socsem: read netcdf variable %s: expected 3 non-time dimensions but got %d",
			varName, len(data.Shape))
	}
	ny, nx := data.Shape[1], data.Shape[2]
	out := sparse.ZerosDense(ny, nx)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			out.Set(data.Get(0, j, i), j, i)
		}
	}
	return out, nil
}

// ncfFromTemplate opens a NetCDF file from the given template, where
// "[DATE]" in the template is replaced by the given date in the given
// format.
func ncfFromTemplate(fileTemplate, dateFormat string, date time.Time) (*os.File, *cdf.File, error) {
	d := date.Format(dateFormat)
	file := strings.Replace(fileTemplate, "[DATE]", d, -1)
	f, err := os.Open(file)
	if err != nil {
		return nil, nil, err
	}
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, nil, err
	}
	return f, ff, err
}

// f2i converts a float to an int (rounding).
func f2i(f float64) int {
	return int(f + 0.5)
}
