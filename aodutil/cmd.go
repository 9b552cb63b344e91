/*
Copyright © 2026 the AODSubset authors.
This file is part of AODSubset.

AODSubset is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

AODSubset is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with AODSubset.  If not, see <http://www.gnu.org/licenses/>.
*/

// Package aodutil contains the command-line interface for aodsubset.
package aodutil

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lnashier/viper"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aodsubset"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gonum.org/v1/plot/vg"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

// DefaultFiles are the AATSR aerosol retrievals from the Aerosol CCI
// project for the first five orbits of 11 April 2008.
var DefaultFiles = []string{
	"resources/WorkshopData2016/AerosolCCI/20080411002335-ESACCI-L2P_AEROSOL-AER_PRODUCTS-AATSR-ENVISAT-ORAC_31962-fv03.04.nc",
	"resources/WorkshopData2016/AerosolCCI/20080411020411-ESACCI-L2P_AEROSOL-AER_PRODUCTS-AATSR-ENVISAT-ORAC_31963-fv03.04.nc",
	"resources/WorkshopData2016/AerosolCCI/20080411034447-ESACCI-L2P_AEROSOL-AER_PRODUCTS-AATSR-ENVISAT-ORAC_31964-fv03.04.nc",
	"resources/WorkshopData2016/AerosolCCI/20080411052523-ESACCI-L2P_AEROSOL-AER_PRODUCTS-AATSR-ENVISAT-ORAC_31965-fv03.04.nc",
	"resources/WorkshopData2016/AerosolCCI/20080411070559-ESACCI-L2P_AEROSOL-AER_PRODUCTS-AATSR-ENVISAT-ORAC_31966-fv03.04.nc",
}

// defaultRegions returns the default regions in the format
// used by the Regions configuration variable.
func defaultRegions() map[string][]float64 {
	o := make(map[string][]float64)
	for _, b := range aodsubset.AfricaBoxes() {
		o[b.Name] = []float64{b.LatMin, b.LatMax, b.LonMin, b.LonMax}
	}
	return o
}

func init() {
	// Options are the configuration options available to aodsubset.
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
			name: "Files",
			usage: `
              Files specifies the satellite data files to subset. The
              files must be in netCDF classic or 64-bit offset format.
              Paths may contain environment variables and may be
              http(s) URLs or blob storage locations
              (gs://, s3://, or file://).`,
			shorthand:  "f",
			defaultVal: DefaultFiles,
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "Variable",
			usage: `
              Variable specifies the name of the data variable to read
              from each file.`,
			defaultVal: "AOD550",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "Regions",
			usage: `
              Regions specifies the bounding boxes that samples are kept
              within, as a map of region names to
              [latitude min, latitude max, longitude min, longitude max]
              in degrees. Samples exactly on a region edge are excluded.`,
			defaultVal: defaultRegions(),
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "RegionsGeoJSON",
			usage: `
              RegionsGeoJSON optionally specifies the path to a GeoJSON
              Polygon or MultiPolygon file. The bounding rectangle of each
              polygon is added to the regions specified in Regions.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "OutputFile",
			usage: `
              OutputFile specifies the path to the desired output PNG
              image location. It can include environment variables
              and can be a blob storage location.`,
			shorthand:  "o",
			defaultVal: "aod_africa.png",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "SubsetDir",
			usage: `
              SubsetDir optionally specifies a directory where the subset
              of each input file will be saved in netCDF format.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "PlotWidth",
			usage: `
              PlotWidth specifies the width of the output image in inches.`,
			defaultVal: 8.0,
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "PlotHeight",
			usage: `
              PlotHeight specifies the height of the output image in inches.`,
			defaultVal: 6.0,
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "Title",
			usage: `
              Title specifies the title of the output image.`,
			defaultVal: "Aerosol optical depth over Africa",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "LogFile",
			usage: `
              LogFile specifies the path to the desired logfile location. It
              can include environment variables. If LogFile is left blank,
              the logfile will be saved in the same location as the
              OutputFile.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{subsetCmd.Flags()},
		},
		{
			name: "Verbose",
			usage: `
              Verbose specifies whether to log debugging information.`,
			shorthand:  "v",
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("AODSUBSET")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch v := option.defaultVal.(type) {
			case string:
				set.StringP(option.name, option.shorthand, v, option.usage)
			case []string:
				set.StringSliceP(option.name, option.shorthand, v, option.usage)
			case bool:
				set.BoolP(option.name, option.shorthand, v, option.usage)
			case float64:
				set.Float64P(option.name, option.shorthand, v, option.usage)
			case map[string][]float64:
				// Maps are specified as JSON on the command line.
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(v)
				set.StringP(option.name, option.shorthand, b.String(), option.usage)
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
	Root.AddCommand(subsetCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(os.ExpandEnv(cfgpath))
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("aodutil: problem reading configuration file: %w", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "aodsubset",
	Short: "Subset satellite aerosol retrievals by region.",
	Long: `aodsubset reads aerosol optical depth retrievals from satellite data files,
keeps the samples that fall strictly inside a set of latitude/longitude
bounding boxes (by default, northern and southern Africa), and plots the result.

Refer to the subcommand documentation for configuration options and default settings.
Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'AODSUBSET_var' where 'var' is the
name of the variable to be set. Many configuration variables are additionally
allowed to contain environment variables within them.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of aodsubset.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("AODSubset v%s\n", aodsubset.Version)
	},
	DisableAutoGenTag: true,
}

// subsetCmd subsets and plots the input files.
var subsetCmd = &cobra.Command{
	Use:   "subset",
	Short: "Subset and plot satellite data",
	Long: `subset reads the variable specified by the Variable configuration
field from each of the Files, keeps the samples that are strictly inside at
least one of the Regions, and plots the kept samples from all files
together in the image specified by OutputFile. If SubsetDir is specified,
the kept samples from each file are additionally saved there in netCDF format.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		outputFile, err := checkOutputFile(ctx, Cfg.GetString("OutputFile"))
		if err != nil {
			return err
		}
		subsetDir, err := checkSubsetDir(ctx, Cfg.GetString("SubsetDir"))
		if err != nil {
			return err
		}
		files, err := checkFiles(expandStringSlice(Cfg.GetStringSlice("Files")))
		if err != nil {
			return err
		}
		regions, err := getRegions("Regions", Cfg)
		if err != nil {
			return err
		}
		if g := os.ExpandEnv(Cfg.GetString("RegionsGeoJSON")); g != "" {
			g, err = maybeDownload(ctx, g, logrus.StandardLogger())
			if err != nil {
				return err
			}
			more, err := parseRegionsGeoJSON(g)
			if err != nil {
				return err
			}
			regions = append(regions, more...)
		}
		if len(regions) == 0 {
			return fmt.Errorf("aodutil: no regions are specified. Please fill in " +
				"the Regions or RegionsGeoJSON configuration and try again")
		}

		return Run(ctx, cmd,
			checkLogFile(os.ExpandEnv(Cfg.GetString("LogFile")), outputFile),
			outputFile,
			subsetDir,
			files,
			os.ExpandEnv(Cfg.GetString("Variable")),
			regions,
			Cfg.GetString("Title"),
			vg.Length(Cfg.GetFloat64("PlotWidth"))*vg.Inch,
			vg.Length(Cfg.GetFloat64("PlotHeight"))*vg.Inch,
			Cfg.GetBool("Verbose"),
			aodsubset.NetCDFLoader{},
		)
	},
	DisableAutoGenTag: true,
}
