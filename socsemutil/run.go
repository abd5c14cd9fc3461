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

package socsemutil

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/socsem"
	"github.com/spf13/cobra"
)

var logger *logrus.Logger

func init() {
	logger = logrus.StandardLogger()
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})
}

// Run evaluates the model for each record in siteFile and writes the
// output variables specified by outputVars to outputFile.
//
// LogFile is the path to the desired logfile location.
//
// If skipBadRecords is true, records that fail input validation are
// skipped with a warning instead of aborting the run.
func Run(cmd *cobra.Command, LogFile, outputFile string, outputVars map[string]string, siteFile string, skipBadRecords bool, m *socsem.Model) error {
	logfile, err := os.Create(LogFile)
	if err != nil {
		return fmt.Errorf("socsem: creating log file: %v", err)
	}
	defer logfile.Close()
	mw := io.MultiWriter(cmd.OutOrStdout(), logfile)
	logger.Out = mw

	o, err := socsem.NewOutputter(outputFile, outputVars, nil)
	if err != nil {
		return err
	}

	recs, err := socsem.ReadRecords(siteFile)
	if err != nil {
		return err
	}
	logger.Infof("Read %d site records from %s", len(recs), siteFile)

	var results []socsem.Result
	var skipped, extrapolated int
	for _, rec := range recs {
		est, err := m.Estimate(rec.SoilTemp, rec.SoilW, rec.Landcover)
		if err != nil {
			if !skipBadRecords {
				return fmt.Errorf("socsem: site %s at %s: %v", rec.Site, rec.Time, err)
			}
			logger.Warnf("Skipping site %s at %s: %v", rec.Site, rec.Time, err)
			skipped++
			continue
		}
		if est.Extrapolated {
			logger.Warnf("Site %s at %s: soil moisture %g%% VWC is outside the "+
				"well-constrained range; flux is an extrapolation", rec.Site, rec.Time, rec.SoilW)
			extrapolated++
		}
		results = append(results, socsem.Result{Record: rec, Estimate: est})
	}
	if len(results) == 0 {
		return fmt.Errorf("socsem: no valid site records")
	}

	fluxes := make([]float64, len(results))
	for i, r := range results {
		fluxes[i] = r.Flux
	}
	logger.Infof("Evaluated %d records (%d skipped, %d extrapolated)",
		len(results), skipped, extrapolated)
	logger.Infof("Flux [pmol m-2 s-1]: mean %.3g, min %.3g, max %.3g, stddev %.3g",
		stats.StatsMean(fluxes), stats.StatsMin(fluxes), stats.StatsMax(fluxes),
		stats.StatsSampleStandardDeviation(fluxes))

	if err := o.WriteResults(results); err != nil {
		return err
	}
	logger.Infof("Wrote results to %s", outputFile)
	return nil
}

// RunGrid evaluates the model for every grid cell and time step of the
// WRF meteorology in the files specified by WRFOut (with [DATE] as a
// wild card for the simulation date) between startDate and endDate
// ("YYYYMMDD"), and writes time-averaged fluxes to outputFile in NetCDF
// format. If shapefile is not empty, the fluxes are additionally
// written there as a shapefile registered to the grid definition def.
func RunGrid(cmd *cobra.Command, LogFile, outputFile, shapefile, WRFOut, startDate, endDate string, def socsem.GridDef, m *socsem.Model) error {
	logfile, err := os.Create(LogFile)
	if err != nil {
		return fmt.Errorf("socsem: creating log file: %v", err)
	}
	defer logfile.Close()
	mw := io.MultiWriter(cmd.OutOrStdout(), logfile)
	logger.Out = mw

	msgChan := outChan()
	wrf, err := socsem.NewWRF(WRFOut, startDate, endDate, msgChan)
	if err != nil {
		return err
	}

	g, err := socsem.RunGrid(m, wrf)
	if err != nil {
		return err
	}
	logger.Infof("Averaged fluxes over %d time steps on a %d x %d grid",
		g.Steps, g.Ny, g.Nx)

	budget, err := socsem.GgSPerYear(g.Budget(def))
	if err != nil {
		return err
	}
	logger.Infof("Domain net flux: %.4g Gg S yr-1 (positive = emission)", budget)

	if err := g.WriteNetCDF(outputFile); err != nil {
		return err
	}
	logger.Infof("Wrote gridded results to %s", outputFile)

	if shapefile != "" {
		if err := g.WriteShapefile(shapefile, def); err != nil {
			return err
		}
		logger.Infof("Wrote gridded results to %s", shapefile)
	}
	return nil
}

// Curves writes a CSV table of each land cover category's flux response
// to outputFile, sampling soil temperature from tempMin to tempMax and
// soil moisture from soilwMin to soilwMax in increments of step.
func Curves(outputFile string, tempMin, tempMax, soilwMin, soilwMax, step float64, m *socsem.Model) error {
	if step <= 0 {
		return fmt.Errorf("socsem: curve tabulation step %g must be positive", step)
	}
	if tempMax < tempMin || soilwMax < soilwMin {
		return fmt.Errorf("socsem: empty curve tabulation range")
	}

	f, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("socsem: creating output file: %v", err)
	}
	defer f.Close()
	w := csv.NewWriter(f)
	if err := w.Write([]string{"landcover", "soil_temp", "soilw",
		"flux", "production", "uptake"}); err != nil {
		return fmt.Errorf("socsem: writing output file: %v", err)
	}

	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	for _, lc := range socsem.Landcovers {
		eq, err := m.Equation(lc)
		if err != nil {
			return err
		}
		for soilTemp := tempMin; soilTemp <= tempMax; soilTemp += step {
			for soilw := soilwMin; soilw <= soilwMax; soilw += step {
				est, err := m.Estimate(soilTemp, soilw, lc)
				if err != nil {
					return err
				}
				if err := w.Write([]string{lc.String(), format(soilTemp), format(soilw),
					format(est.Flux), format(est.Production), format(est.Uptake)}); err != nil {
					return fmt.Errorf("socsem: writing output file: %v", err)
				}
				if !eq.UsesMoisture() {
					// One moisture column is enough for categories
					// without a moisture term.
					break
				}
			}
		}
	}
	w.Flush()
	return w.Error()
}
