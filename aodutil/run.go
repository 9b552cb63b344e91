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

package aodutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/aodsubset"
	"github.com/spatialmodel/aodsubset/cloud"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

// newLogger returns a logger that writes to w.
func newLogger(w io.Writer, verbose bool) *logrus.Logger {
	log := logrus.New()
	log.Out = w
	log.Formatter = &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	}
	log.Level = logrus.InfoLevel
	if verbose {
		log.Level = logrus.DebugLevel
	}
	return log
}

// Run subsets and plots satellite data.
//
// CobraCommand is the cobra.Command instance where Run is called from.
// Log messages are written to its output as well as to LogFile.
//
// LogFile is the path to the desired logfile location.
//
// OutputFile is the path to the desired output PNG image location.
//
// SubsetDir, if not empty, is the directory where the subset of each
// input file is saved in netCDF format.
//
// Files are the paths to the input files. They are loaded, subset, and
// plotted in the given order.
//
// Variable is the name of the data variable to load from each file.
//
// Regions are the bounding boxes that samples are kept within.
//
// Title, PlotWidth, and PlotHeight specify the title and size of the
// output image.
//
// If Verbose is true, debugging information is logged.
//
// loader reads the samples from each file.
//
// LogFile, OutputFile, SubsetDir, and Files can be blob storage
// locations, and Files can additionally be http(s) URLs.
func Run(ctx context.Context, CobraCommand *cobra.Command, LogFile, OutputFile, SubsetDir string,
	Files []string, Variable string, Regions []aodsubset.BoundingBox,
	Title string, PlotWidth, PlotHeight vg.Length, Verbose bool,
	loader aodsubset.Loader) error {

	startTime := time.Now()

	if !(PlotWidth > 0 && PlotHeight > 0) {
		return fmt.Errorf("aodutil: plot dimensions must be > 0 but are %v×%v", PlotWidth, PlotHeight)
	}

	var upload uploader
	defer upload.cleanup()

	logfile, err := os.Create(upload.maybeUpload(LogFile))
	if err != nil {
		return fmt.Errorf("aodutil: problem creating log file: %w", err)
	}
	defer logfile.Close()
	log := newLogger(io.MultiWriter(CobraCommand.OutOrStdout(), logfile), Verbose)

	outputFile := upload.maybeUpload(OutputFile)
	if upload.err != nil {
		return upload.err
	}

	for _, r := range Regions {
		log.WithField("region", r.Name).Debugf("using region %s", r)
	}

	rs := make(aodsubset.ResultSet, 0, len(Files))
	for i, f := range Files {
		if err := ctx.Err(); err != nil {
			return err
		}
		s, err := loadAndFilter(ctx, log, f, Variable, Regions, loader)
		if err != nil {
			return err
		}
		rs = append(rs, s)

		if SubsetDir == "" {
			continue
		}
		p := upload.maybeUpload(subsetPath(SubsetDir, i, f))
		if upload.err != nil {
			return upload.err
		}
		if err := writeSubset(log, s, p); err != nil {
			return err
		}
	}

	fig, err := aodsubset.Plot(rs, Regions, Title)
	if err != nil {
		return err
	}
	w, err := os.Create(outputFile)
	if err != nil {
		return fmt.Errorf("aodutil: creating output file: %w", err)
	}
	if err = fig.WritePNG(w, PlotWidth, PlotHeight); err != nil {
		w.Close()
		return err
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("aodutil: closing output file: %w", err)
	}

	log.WithFields(logrus.Fields{
		"files": len(rs),
		"kept":  rs.Len(),
	}).Infof("finished in %v; output saved to %s", time.Since(startTime), OutputFile)

	if err = logfile.Close(); err != nil {
		return fmt.Errorf("aodutil: closing log file: %w", err)
	}
	return upload.upload(ctx)
}

// loadAndFilter loads the given variable from file f and returns
// the samples that are within regions.
func loadAndFilter(ctx context.Context, log logrus.FieldLogger, f, variable string,
	regions []aodsubset.BoundingBox, loader aodsubset.Loader) (*aodsubset.Samples, error) {

	local, err := maybeDownload(ctx, f, log)
	if err != nil {
		return nil, err
	}
	s, err := loader.Load(local, variable)
	if err != nil {
		return nil, fmt.Errorf("aodutil: loading %s: %w", f, err)
	}
	s.Source = f
	sub := aodsubset.Filter(s, regions)

	sum := sub.Summary()
	log.WithFields(logrus.Fields{
		"file":     f,
		"variable": variable,
		"samples":  s.Len(),
		"kept":     sub.Len(),
		"mean":     sum.Mean,
	}).Info("subset file")
	log.WithFields(logrus.Fields{
		"file":  f,
		"valid": sum.Valid,
		"std":   sum.StdDev,
		"min":   sum.Min,
		"max":   sum.Max,
	}).Debug("subset statistics")
	return sub, nil
}

// subsetPath returns the location in dir where the subset of
// input file number i, located at f, should be saved.
func subsetPath(dir string, i int, f string) string {
	name := downloadName(f)
	name = fmt.Sprintf("%02d_%s_subset.nc", i, strings.TrimSuffix(name, filepath.Ext(name)))
	if cloud.IsBlob(dir) {
		return strings.TrimSuffix(dir, "/") + "/" + name
	}
	return filepath.Join(dir, name)
}

// writeSubset saves s in netCDF format at the given path. Empty
// subsets are skipped.
func writeSubset(log logrus.FieldLogger, s *aodsubset.Samples, path string) error {
	if s.Len() == 0 {
		log.WithField("file", s.Source).Warn("no samples within regions; skipping subset file")
		return nil
	}
	w, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("aodutil: creating subset file: %w", err)
	}
	if err = s.WriteNetCDF(w); err != nil {
		w.Close()
		return fmt.Errorf("aodutil: writing subset of %s: %w", s.Source, err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("aodutil: writing subset of %s: %w", s.Source, err)
	}
	log.WithField("file", s.Source).Debugf("saved subset to %s", path)
	return nil
}
