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
	"testing"

	"github.com/BurntSushi/toml"
	"github.com/kr/pretty"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/socsem"
)

func testConfig(t *testing.T) *viper.Viper {
	cfg := viper.New()
	cfg.SetConfigFile("testdata/config.toml")
	if err := cfg.ReadInConfig(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

// The configuration file parses the same through viper as through a
// direct TOML decode.
func TestConfigFile(t *testing.T) {
	type config struct {
		SiteFile        string
		OutputFile      string
		LogFile         string
		SkipBadRecords  bool
		OutputVariables map[string]string
		Aliases         map[string]string
	}
	var direct config
	if _, err := toml.DecodeFile("testdata/config.toml", &direct); err != nil {
		t.Fatal(err)
	}

	cfg := testConfig(t)
	viperConfig := config{
		SiteFile:        cfg.GetString("SiteFile"),
		OutputFile:      cfg.GetString("OutputFile"),
		LogFile:         cfg.GetString("LogFile"),
		SkipBadRecords:  cfg.GetBool("SkipBadRecords"),
		OutputVariables: GetStringMapString("OutputVariables", cfg),
		Aliases:         GetStringMapString("Aliases", cfg),
	}
	if diff := pretty.Diff(direct, viperConfig); len(diff) != 0 {
		t.Errorf("configuration mismatch: %v", diff)
	}
}

func TestModelFromConfig(t *testing.T) {
	m, err := ModelFromConfig(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}

	// The fixture aliases tundra to boreal forest.
	tundra, err := m.Flux(15, 15, socsem.Tundra)
	if err != nil {
		t.Fatal(err)
	}
	boreal, err := m.Flux(15, 15, socsem.BorealForest)
	if err != nil {
		t.Fatal(err)
	}
	if tundra != boreal {
		t.Errorf("aliased tundra flux %g != boreal forest flux %g", tundra, boreal)
	}

	bad := viper.New()
	bad.Set("Aliases", map[string]string{"tundra": "rainforest"})
	if _, err := ModelFromConfig(bad); err == nil {
		t.Error("invalid alias target accepted")
	}
}

func TestCheckOutputVars(t *testing.T) {
	if _, err := checkOutputVars(map[string]string{}); err == nil {
		t.Error("empty output variables accepted")
	}
	vars, err := checkOutputVars(map[string]string{"a": "Flux +\nProduction"})
	if err != nil {
		t.Fatal(err)
	}
	if vars["a"] != "Flux + Production" {
		t.Errorf("newline not removed: %q", vars["a"])
	}
	// A newline becomes a space; surrounding whitespace is kept as is.
	vars, err = checkOutputVars(map[string]string{"a": "Flux +\n Production"})
	if err != nil {
		t.Fatal(err)
	}
	if vars["a"] != "Flux +  Production" {
		t.Errorf("newline replacement altered surrounding whitespace: %q", vars["a"])
	}
}

func TestCheckOutputFile(t *testing.T) {
	if _, err := checkOutputFile(""); err == nil {
		t.Error("empty output file accepted")
	}
	if _, err := checkOutputFile("/nonexistent_dir_for_test/out.csv"); err == nil {
		t.Error("missing output directory accepted")
	}
	if _, err := checkOutputFile("testOut.csv"); err != nil {
		t.Errorf("valid output file rejected: %v", err)
	}
}

func TestCheckLogFile(t *testing.T) {
	if got := checkLogFile("", "out/results.csv"); got != "out/results.log" {
		t.Errorf("default log file %q", got)
	}
	if got := checkLogFile("my.log", "out/results.csv"); got != "my.log" {
		t.Errorf("explicit log file %q", got)
	}
}

func TestGetStringMapStringJSON(t *testing.T) {
	cfg := viper.New()
	cfg.Set("OutputVariables", `{"NetFlux": "Flux"}`)
	got := GetStringMapString("OutputVariables", cfg)
	if got["NetFlux"] != "Flux" {
		t.Errorf("JSON form parsed to %v", got)
	}
}
