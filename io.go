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
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"
	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/shp"
	goshp "github.com/jonas-p/go-shp"
	"github.com/tealeg/xlsx"
	"gonum.org/v1/gonum/floats"
)

// A Record is one site observation to evaluate the model for. The input
// loader is responsible for supplying soil temperature in °C (not
// K or °F) and soil moisture as a percentage (not a fraction), already
// classified into the model's land cover enumeration.
type Record struct {
	// Site names the observation site.
	Site string

	// Time is the observation timestamp. It is carried through to the
	// output unchanged.
	Time string

	Landcover Landcover
	SoilTemp  float64 // [°C]
	SoilW     float64 // [% VWC]; NaN if not measured.
}

// A Result pairs a Record with its flux estimate.
type Result struct {
	Record
	Estimate
}

// ReadRecords reads site records from the file at path, which may be a
// CSV file or a Microsoft Excel workbook (.xlsx). The expected columns
// are site, time, landcover, soil_temp [°C], and soilw [% VWC]; a header
// row is required and an empty soilw field means the measurement is
// missing. CSV lines starting with '#' are comments.
func ReadRecords(path string) ([]Record, error) {
	if strings.HasSuffix(path, ".xlsx") {
		return readRecordsXLSX(path)
	}
	return readRecordsCSV(path)
}

const recordFields = 5

func readRecordsCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("socsem: opening site records: %v", err)
	}
	defer f.Close()
	r := csv.NewReader(f)
	r.Comment = '#'

	lines, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("socsem: in file %s: %v", path, err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("socsem: in file %s: no header line", path)
	}
	recs := make([]Record, 0, len(lines)-1)
	for i, line := range lines[1:] { // Skip the header.
		rec, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("socsem: in file %s line %d: %v", path, i+2, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func readRecordsXLSX(path string) ([]Record, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("socsem: opening xlsx file: %v", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("socsem: in file %s: no sheets", path)
	}
	s := f.Sheets[0]
	var recs []Record
	for j := 1; j < s.MaxRow; j++ { // Skip the header.
		line := make([]string, recordFields)
		var empty = true
		for i := 0; i < recordFields; i++ {
			line[i] = strings.TrimSpace(s.Cell(j, i).Value)
			if line[i] != "" {
				empty = false
			}
		}
		if empty {
			continue
		}
		rec, err := parseRecord(line)
		if err != nil {
			return nil, fmt.Errorf("socsem: in file %s row %d: %v", path, j+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func parseRecord(line []string) (Record, error) {
	if len(line) != recordFields {
		return Record{}, fmt.Errorf("unsupported number of fields %d; need %d "+
			"(site, time, landcover, soil_temp, soilw)", len(line), recordFields)
	}
	lc, err := ParseLandcover(strings.TrimSpace(line[2]))
	if err != nil {
		return Record{}, err
	}
	t, err := strconv.ParseFloat(strings.TrimSpace(line[3]), 64)
	if err != nil {
		return Record{}, fmt.Errorf("soil_temp: %v", err)
	}
	sw := math.NaN()
	if v := strings.TrimSpace(line[4]); v != "" {
		sw, err = strconv.ParseFloat(v, 64)
		if err != nil {
			return Record{}, fmt.Errorf("soilw: %v", err)
		}
	}
	return Record{
		Site:      strings.TrimSpace(line[0]),
		Time:      strings.TrimSpace(line[1]),
		Landcover: lc,
		SoilTemp:  t,
		SoilW:     sw,
	}, nil
}

// Outputter is a holder for output parameters.
//
// outputVariables maps the names of the variables that should appear in
// the output to expressions defining how they are calculated from the
// model variables Flux, Production, Uptake, SoilTemp, SoilW, and
// Extrapolated (1 if the estimate is a low-confidence extrapolation,
// otherwise 0). Expressions may also use the functions in
// outputFunctions.
type Outputter struct {
	fileName        string
	outputVariables map[string]string
	outputFunctions map[string]govaluate.ExpressionFunction
	expressions     map[string]*govaluate.EvaluableExpression
}

// modelVariables lists the variables available to output expressions.
var modelVariables = []string{"Flux", "Production", "Uptake", "SoilTemp",
	"SoilW", "Extrapolated"}

// NewOutputter initializes a new Outputter holder and adds a set of
// default output functions. Default functions include:
//
// 'exp(x)' which applies the exponential function e^x.
//
// 'sum(x, y, ...)', 'min(x, y, ...)', and 'max(x, y, ...)' which
// combine their arguments.
//
// Additional functions can be passed in outputFunctions.
func NewOutputter(fileName string, outputVariables map[string]string, outputFunctions map[string]govaluate.ExpressionFunction) (*Outputter, error) {
	gather := func(arg ...interface{}) ([]float64, error) {
		if len(arg) == 0 {
			return nil, fmt.Errorf("socsem: function needs at least 1 argument")
		}
		vals := make([]float64, len(arg))
		for i, a := range arg {
			v, ok := a.(float64)
			if !ok {
				return nil, fmt.Errorf("socsem: function argument %v is not a number", a)
			}
			vals[i] = v
		}
		return vals, nil
	}
	defaultOutputFuncs := map[string]govaluate.ExpressionFunction{
		"exp": func(arg ...interface{}) (interface{}, error) {
			if len(arg) != 1 {
				return nil, fmt.Errorf("socsem: got %d arguments for function 'exp', but needs 1", len(arg))
			}
			return (float64)(math.Exp(arg[0].(float64))), nil
		},
		"sum": func(arg ...interface{}) (interface{}, error) {
			vals, err := gather(arg...)
			if err != nil {
				return nil, err
			}
			return floats.Sum(vals), nil
		},
		"min": func(arg ...interface{}) (interface{}, error) {
			vals, err := gather(arg...)
			if err != nil {
				return nil, err
			}
			return floats.Min(vals), nil
		},
		"max": func(arg ...interface{}) (interface{}, error) {
			vals, err := gather(arg...)
			if err != nil {
				return nil, err
			}
			return floats.Max(vals), nil
		},
	}
	for key, val := range outputFunctions {
		defaultOutputFuncs[key] = val
	}

	o := Outputter{
		fileName:        fileName,
		outputVariables: outputVariables,
		outputFunctions: defaultOutputFuncs,
		expressions:     make(map[string]*govaluate.EvaluableExpression),
	}
	if strings.HasSuffix(fileName, ".shp") {
		if err := checkOutputNames(outputVariables); err != nil {
			return nil, err
		}
	}
	for name, expr := range o.outputVariables {
		e, err := govaluate.NewEvaluableExpressionWithFunctions(expr, o.outputFunctions)
		if err != nil {
			return nil, fmt.Errorf("socsem: output variable %s: %v", name, err)
		}
		vars := make(map[string]struct{})
		for _, v := range modelVariables {
			vars[v] = struct{}{}
		}
		for _, v := range e.Vars() {
			if _, ok := vars[v]; !ok {
				return nil, fmt.Errorf("socsem: output variable %s: undefined variable name '%s'", name, v)
			}
		}
		o.expressions[name] = e
	}
	return &o, nil
}

// checkOutputNames checks (1) if any output variable names exceed 10
// characters and (2) if any output variable names include characters
// that are unsupported in shapefile field names.
func checkOutputNames(o map[string]string) error {
	for key := range o {
		long := len(key) > 10
		noCharError, err := regexp.MatchString("^[A-Za-z]\\w*$", key)
		if err != nil {
			panic(err)
		}
		if long && !noCharError {
			return fmt.Errorf("socsem: output variable name '%s' exceeds 10 characters and includes unsupported character(s)", key)
		} else if long {
			return fmt.Errorf("socsem: output variable name '%s' exceeds 10 characters", key)
		} else if !noCharError {
			return fmt.Errorf("socsem: output variable name '%s' includes unsupported characters", key)
		}
	}
	return nil
}

// Names returns the output variable names in sorted order.
func (o *Outputter) Names() []string {
	names := make([]string, 0, len(o.outputVariables))
	for name := range o.outputVariables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Results evaluates the output variable expressions for each of the
// given results, returning one column per output variable.
func (o *Outputter) Results(results []Result) (map[string][]float64, error) {
	out := make(map[string][]float64)
	for name := range o.outputVariables {
		out[name] = make([]float64, len(results))
	}
	for i, r := range results {
		extrapolated := 0.
		if r.Extrapolated {
			extrapolated = 1.
		}
		params := map[string]interface{}{
			"Flux":         r.Flux,
			"Production":   r.Production,
			"Uptake":       r.Uptake,
			"SoilTemp":     r.SoilTemp,
			"SoilW":        r.SoilW,
			"Extrapolated": extrapolated,
		}
		for name, e := range o.expressions {
			v, err := e.Evaluate(params)
			if err != nil {
				return nil, fmt.Errorf("socsem: evaluating output variable %s: %v", name, err)
			}
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("socsem: output variable %s is not numeric: %v", name, v)
			}
			out[name][i] = f
		}
	}
	return out, nil
}

// WriteResults writes the given results, along with the output variable
// columns defined by o, to o's output file in CSV format.
func (o *Outputter) WriteResults(results []Result) error {
	cols, err := o.Results(results)
	if err != nil {
		return err
	}
	names := o.Names()

	f, err := os.Create(o.fileName)
	if err != nil {
		return fmt.Errorf("socsem: creating output file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	header := append([]string{"site", "time", "landcover", "soil_temp",
		"soilw", "extrapolated"}, names...)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("socsem: writing output file: %v", err)
	}
	for i, r := range results {
		line := []string{
			r.Site,
			r.Time,
			r.Landcover.String(),
			strconv.FormatFloat(r.SoilTemp, 'g', -1, 64),
			formatSoilW(r.SoilW),
			strconv.FormatBool(r.Extrapolated),
		}
		for _, name := range names {
			line = append(line, strconv.FormatFloat(cols[name][i], 'g', -1, 64))
		}
		if err := w.Write(line); err != nil {
			return fmt.Errorf("socsem: writing output file: %v", err)
		}
	}
	w.Flush()
	return w.Error()
}

func formatSoilW(sw float64) string {
	if math.IsNaN(sw) {
		return ""
	}
	return strconv.FormatFloat(sw, 'g', -1, 64)
}

// wgs84 is the projection definition written alongside shapefile output.
// Gridded model output is on a regular latitude-longitude grid.
const wgs84 = `GEOGCS["GCS_WGS_1984",DATUM["D_WGS_1984",SPHEROID["WGS_1984",6378137,298.257223563]],PRIMEM["Greenwich",0],UNIT["Degree",0.017453292519943295]]`

// WriteShapefile writes the given data columns for the given grid cell
// geometries to a shapefile at fileName, replacing any existing file
// extension with .shp and creating a .prj sidecar file.
func WriteShapefile(fileName string, cells []geom.Polygonal, data map[string][]float64) error {
	vars := make([]string, 0, len(data))
	for v := range data {
		vars = append(vars, v)
	}
	sort.Strings(vars)
	namesOnly := make(map[string]string)
	for _, v := range vars {
		namesOnly[v] = v
	}
	if err := checkOutputNames(namesOnly); err != nil {
		return err
	}
	fields := make([]goshp.Field, len(vars))
	for i, v := range vars {
		fields[i] = goshp.FloatField(v, 14, 8)
	}

	fileBase := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	fileName = fileBase + ".shp"
	shape, err := shp.NewEncoderFromFields(fileName, goshp.POLYGON, fields...)
	if err != nil {
		return fmt.Errorf("socsem: creating output shapefile: %v", err)
	}
	for i, c := range cells {
		outFields := make([]interface{}, len(vars))
		for j, v := range vars {
			outFields[j] = data[v][i]
		}
		if err = shape.EncodeFields(c, outFields...); err != nil {
			return fmt.Errorf("socsem: writing output shapefile: %v", err)
		}
	}
	shape.Close()

	f, err := os.Create(fileBase + ".prj")
	if err != nil {
		return fmt.Errorf("socsem: creating output prj file: %v", err)
	}
	fmt.Fprint(f, wgs84)
	return f.Close()
}
