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

// Package socsemutil provides commands and utilities for running the
// SOCSEM soil OCS flux model.
package socsemutil

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/socsem"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to SOCSEM.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "SiteFile",
			usage: `
              SiteFile is the path to the site records to evaluate the model
              for, in CSV or xlsx format with columns site, time, landcover,
              soil_temp [°C], and soilw [% VWC]. An empty soilw field means
              no measurement is available.`,
			defaultVal: "sites.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile is the path to the desired output file location.`,
			defaultVal: "output.csv",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags(), curvesCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile is the path to the desired logfile location. If LogFile
              is left blank, the logfile will be saved in the same location
              as the OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "OutputVariables",
			usage: `
              OutputVariables specifies which model variables should be
              included in the output file, as a mapping from output names to
              expressions in terms of Flux, Production, Uptake, SoilTemp,
              SoilW, and Extrapolated.`,
			defaultVal: map[string]string{"NetFlux": "Flux"},
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "SkipBadRecords",
			usage: `
              SkipBadRecords specifies whether site records that fail input
              validation should be skipped with a warning instead of aborting
              the run.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{runCmd.Flags()},
		},
		{
			name: "Aliases",
			usage: `
              Aliases overrides the equation used for land cover categories,
              as a mapping from category to category; for example
              {"tundra": "boreal_forest"} makes tundra use the boreal forest
              equation instead of the default temperate forest approximation.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{runCmd.Flags(), gridCmd.Flags()},
		},
		{
			name: "WRFOut",
			usage: `
              WRFOut is the location of WRF output files containing the TSLB,
              SMOIS, and LU_INDEX variables. [DATE] should be used as a wild
              card for the simulation date.`,
			defaultVal: "wrfout_d01_[DATE]",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "StartDate",
			usage: `
              StartDate is the date of the beginning of the simulation.
              Format = "YYYYMMDD".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "EndDate",
			usage: `
              EndDate is the date of the end of the simulation.
              Format = "YYYYMMDD".`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.W",
			usage: `
              Grid.W is the longitude of the southwest corner of the grid
              [degrees].`,
			defaultVal: -180.,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.S",
			usage: `
              Grid.S is the latitude of the southwest corner of the grid
              [degrees].`,
			defaultVal: -90.,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Dx",
			usage: `
              Grid.Dx is the west-east size of the grid cells [degrees].`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Grid.Dy",
			usage: `
              Grid.Dy is the south-north size of the grid cells [degrees].`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Shapefile",
			usage: `
              Shapefile is the path to an optional shapefile copy of the
              gridded output. If it is left blank, no shapefile is written.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{gridCmd.Flags()},
		},
		{
			name: "Curves.TempMin",
			usage: `
              Curves.TempMin is the lowest soil temperature to tabulate the
              response curves at [°C].`,
			defaultVal: 0.,
			flagsets:   []*pflag.FlagSet{curvesCmd.Flags()},
		},
		{
			name: "Curves.TempMax",
			usage: `
              Curves.TempMax is the highest soil temperature to tabulate the
              response curves at [°C].`,
			defaultVal: 40.,
			flagsets:   []*pflag.FlagSet{curvesCmd.Flags()},
		},
		{
			name: "Curves.SoilwMin",
			usage: `
              Curves.SoilwMin is the lowest soil moisture to tabulate the
              response curves at [% VWC].`,
			defaultVal: 2.,
			flagsets:   []*pflag.FlagSet{curvesCmd.Flags()},
		},
		{
			name: "Curves.SoilwMax",
			usage: `
              Curves.SoilwMax is the highest soil moisture to tabulate the
              response curves at [% VWC].`,
			defaultVal: 50.,
			flagsets:   []*pflag.FlagSet{curvesCmd.Flags()},
		},
		{
			name: "Curves.Step",
			usage: `
              Curves.Step is the tabulation step size for both temperature
              [°C] and moisture [% VWC].`,
			defaultVal: 1.,
			flagsets:   []*pflag.FlagSet{curvesCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("SOCSEM")

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case float64:
				if option.shorthand == "" {
					set.Float64(option.name, option.defaultVal.(float64), option.usage)
				} else {
					set.Float64P(option.name, option.shorthand, option.defaultVal.(float64), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := string(b.Bytes())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(runCmd)
	Root.AddCommand(gridCmd)
	Root.AddCommand(curvesCmd)
}

// outChan returns a channel printing to standard output.
func outChan() chan string {
	outChan := make(chan string)
	go func() {
		for {
			msg := <-outChan
			fmt.Println(msg)
		}
	}()
	return outChan
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("socsem: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "socsem",
	Short: "An empirical soil carbonyl sulfide flux model.",
	Long: `SOCSEM estimates the exchange of carbonyl sulfide (OCS) between soils
and the atmosphere from soil temperature, soil moisture, and land cover.
Use the subcommands specified below to access the model functionality.

Refer to the subcommand documentation for configuration options and default
settings. Configuration can be changed by using a configuration file (and
providing the path to the file using the --config flag), by using command-line
arguments, or by setting environment variables in the format 'SOCSEM_var'
where 'var' is the name of the variable to be set. Refer to
https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of SOCSEM.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("SOCSEM v%s\n", socsem.Version)
	},
	DisableAutoGenTag: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Estimate fluxes for site records.",
	Long: `run evaluates the model for each record in SiteFile and writes the
selected output variables to OutputFile.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		outputVars, err := checkOutputVars(GetStringMapString("OutputVariables", Cfg))
		if err != nil {
			return err
		}
		m, err := ModelFromConfig(Cfg)
		if err != nil {
			return err
		}
		return Run(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			outputVars,
			expandString(Cfg.GetString("SiteFile")),
			Cfg.GetBool("SkipBadRecords"),
			m)
	},
	DisableAutoGenTag: true,
}

var gridCmd = &cobra.Command{
	Use:   "grid",
	Short: "Estimate fluxes over a meteorology grid.",
	Long: `grid evaluates the model for every grid cell and time step of the WRF
meteorology specified by WRFOut, StartDate, and EndDate, and writes
time-averaged fluxes to OutputFile in NetCDF format (and optionally to
Shapefile).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		m, err := ModelFromConfig(Cfg)
		if err != nil {
			return err
		}
		def := socsem.GridDef{
			W:  Cfg.GetFloat64("Grid.W"),
			S:  Cfg.GetFloat64("Grid.S"),
			Dx: Cfg.GetFloat64("Grid.Dx"),
			Dy: Cfg.GetFloat64("Grid.Dy"),
		}
		return RunGrid(
			cmd,
			checkLogFile(Cfg.GetString("LogFile"), outputFile),
			outputFile,
			expandString(Cfg.GetString("Shapefile")),
			expandString(Cfg.GetString("WRFOut")),
			Cfg.GetString("StartDate"),
			Cfg.GetString("EndDate"),
			def,
			m)
	},
	DisableAutoGenTag: true,
}

var curvesCmd = &cobra.Command{
	Use:   "curves",
	Short: "Tabulate the fitted response curves.",
	Long: `curves writes CSV tables of each land cover category's flux response
across the configured soil temperature and moisture ranges, for inspection or
plotting with external tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		outputFile, err := checkOutputFile(Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		m, err := ModelFromConfig(Cfg)
		if err != nil {
			return err
		}
		return Curves(
			outputFile,
			Cfg.GetFloat64("Curves.TempMin"),
			Cfg.GetFloat64("Curves.TempMax"),
			Cfg.GetFloat64("Curves.SoilwMin"),
			Cfg.GetFloat64("Curves.SoilwMax"),
			Cfg.GetFloat64("Curves.Step"),
			m)
	},
	DisableAutoGenTag: true,
}
