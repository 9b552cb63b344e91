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
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/encoding/geojson"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/aodsubset"
	"github.com/spatialmodel/aodsubset/cloud"
	"github.com/spf13/cast"
)

// expandStringSlice expands the environment variables in a slice of strings.
func expandStringSlice(s []string) []string {
	for i := 0; i < len(s); i++ {
		s[i] = os.ExpandEnv(s[i])
	}
	return s
}

// checkFiles makes sure that at least one input file is specified.
func checkFiles(files []string) ([]string, error) {
	var o []string
	for _, f := range files {
		if f = strings.TrimSpace(f); f != "" {
			o = append(o, f)
		}
	}
	if len(o) == 0 {
		return nil, fmt.Errorf("aodutil: there are no input files specified. Please fill in " +
			"the Files configuration and try again")
	}
	return o, nil
}

// checkOutputFile makes sure that the output file is specified and its
// directory exists, and expand any environment variables.
func checkOutputFile(ctx context.Context, f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`aodutil: you need to specify an output file configuration variable (for example: OutputFile="aod_africa.png")`)
	}
	f = os.ExpandEnv(f)
	if err := checkLocation(ctx, f, filepath.Dir(f)); err != nil {
		return f, fmt.Errorf("aodutil: checking OutputFile location: %w", err)
	}
	return f, nil
}

// checkSubsetDir makes sure that the subset directory, if specified,
// exists, and expands any environment variables.
func checkSubsetDir(ctx context.Context, d string) (string, error) {
	if d == "" {
		return "", nil
	}
	d = os.ExpandEnv(d)
	if err := checkLocation(ctx, d, d); err != nil {
		return d, fmt.Errorf("aodutil: checking SubsetDir location: %w", err)
	}
	return d, nil
}

// checkLocation checks that the bucket for path can be opened if path
// is a blob, or that localDir is an existing directory otherwise.
func checkLocation(ctx context.Context, path, localDir string) error {
	if cloud.IsBlob(path) {
		u, err := url.Parse(path)
		if err != nil {
			return err
		}
		bucket, err := cloud.OpenBucket(ctx, u.Scheme+"://"+u.Host)
		if err != nil {
			return err
		}
		return bucket.Close()
	}
	fi, err := os.Stat(localDir)
	if err != nil {
		return err
	}
	if !fi.IsDir() {
		return fmt.Errorf("%s is not a directory", localDir)
	}
	return nil
}

// checkLogFile fills in a default value for the log file path if one isn't
// specified.
func checkLogFile(logFile, outputFile string) string {
	if logFile == "" {
		logFile = strings.TrimSuffix(outputFile, filepath.Ext(outputFile)) + ".log"
	}
	return logFile
}

// getRegions returns the bounding boxes specified by a viper
// configuration variable, accounting for the fact that it might be
// a json object if it was set from a command line argument or an
// environment variable. The boxes are sorted by name and are checked
// for validity.
func getRegions(varName string, cfg *viper.Viper) ([]aodsubset.BoundingBox, error) {
	regions := make(map[string][]float64)
	switch v := cfg.Get(varName).(type) {
	case nil:
	case map[string][]float64:
		regions = v
	case map[string]interface{}:
		for name, val := range v {
			s, err := cast.ToSliceE(val)
			if err != nil {
				return nil, fmt.Errorf("aodutil: parsing %s region %s: %w", varName, name, err)
			}
			regions[name] = make([]float64, len(s))
			for i, x := range s {
				if regions[name][i], err = cast.ToFloat64E(x); err != nil {
					return nil, fmt.Errorf("aodutil: parsing %s region %s: %w", varName, name, err)
				}
			}
		}
	case string:
		if strings.TrimSpace(v) == "" {
			break
		}
		if err := json.Unmarshal([]byte(v), &regions); err != nil {
			return nil, fmt.Errorf("aodutil: parsing %s: %w", varName, err)
		}
	default:
		return nil, fmt.Errorf("aodutil: invalid type for %s: %#v", varName, v)
	}

	names := make([]string, 0, len(regions))
	for name := range regions {
		names = append(names, name)
	}
	sort.Strings(names)

	boxes := make([]aodsubset.BoundingBox, len(names))
	for i, name := range names {
		r := regions[name]
		if len(r) != 4 {
			return nil, fmt.Errorf("aodutil: %s region %s should have 4 values "+
				"[latitude min, latitude max, longitude min, longitude max] but has %d",
				varName, name, len(r))
		}
		boxes[i] = aodsubset.BoundingBox{Name: name, LatMin: r[0], LatMax: r[1], LonMin: r[2], LonMax: r[3]}
		if err := boxes[i].Check(); err != nil {
			return nil, fmt.Errorf("aodutil: %s: %w", varName, err)
		}
	}
	return boxes, nil
}

// geoJSONGeometry is the envelope of a GeoJSON geometry object.
type geoJSONGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// parseRegionsGeoJSON returns the bounding rectangles of the polygons in
// the given GeoJSON file. Coordinates are expected to be longitude and
// latitude in degrees. Regions are named after the file, with an index
// suffix for MultiPolygons.
func parseRegionsGeoJSON(file string) ([]aodsubset.BoundingBox, error) {
	b, err := ioutil.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("aodutil: reading RegionsGeoJSON file: %w", err)
	}
	var g geoJSONGeometry
	if err := json.Unmarshal(b, &g); err != nil {
		return nil, fmt.Errorf("aodutil: decoding RegionsGeoJSON: %w", err)
	}
	name := strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
	if g.Type != "MultiPolygon" {
		box, err := polygonBox(name, b)
		if err != nil {
			return nil, err
		}
		return []aodsubset.BoundingBox{box}, nil
	}

	// The geojson decoder only handles single polygons, so each member
	// is decoded as a Polygon document of its own.
	var members []json.RawMessage
	if err := json.Unmarshal(g.Coordinates, &members); err != nil {
		return nil, fmt.Errorf("aodutil: decoding RegionsGeoJSON: %w", err)
	}
	if len(members) == 0 {
		return nil, fmt.Errorf("aodutil: RegionsGeoJSON MultiPolygon has no polygons")
	}
	boxes := make([]aodsubset.BoundingBox, len(members))
	for i, c := range members {
		pb, err := json.Marshal(geoJSONGeometry{Type: "Polygon", Coordinates: c})
		if err != nil {
			return nil, fmt.Errorf("aodutil: decoding RegionsGeoJSON: %w", err)
		}
		if boxes[i], err = polygonBox(fmt.Sprintf("%s_%d", name, i), pb); err != nil {
			return nil, err
		}
	}
	return boxes, nil
}

// polygonBox returns the checked bounding box of the GeoJSON Polygon in b.
func polygonBox(name string, b []byte) (aodsubset.BoundingBox, error) {
	g, err := geojson.Decode(b)
	if err != nil {
		return aodsubset.BoundingBox{}, fmt.Errorf("aodutil: decoding RegionsGeoJSON: %w", err)
	}
	p, ok := g.(geom.Polygon)
	if !ok {
		return aodsubset.BoundingBox{}, fmt.Errorf("aodutil: invalid RegionsGeoJSON geometry type %T", g)
	}
	box := aodsubset.NewBoundingBox(name, p.Bounds())
	if err := box.Check(); err != nil {
		return aodsubset.BoundingBox{}, fmt.Errorf("aodutil: RegionsGeoJSON %s: %w", name, err)
	}
	return box, nil
}
