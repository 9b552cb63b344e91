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

package aodsubset

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/ctessum/cdf"
)

// Names that are tried, in order, when looking for coordinate variables.
var (
	latitudeNames  = []string{"latitude", "lat", "Latitude"}
	longitudeNames = []string{"longitude", "lon", "Longitude"}
)

// ErrNoSamples is returned when attempting to write an empty collection.
var ErrNoSamples = errors.New("aodsubset: no samples to write")

// Loader reads a variable and its coordinates from a data file.
type Loader interface {
	Load(path, variable string) (*Samples, error)
}

// NetCDFLoader loads samples from NetCDF classic or 64-bit offset
// files (NetCDF 4 and greater not supported).
type NetCDFLoader struct{}

// Load implements Loader.
func (NetCDFLoader) Load(path, variable string) (*Samples, error) {
	return Load(path, variable)
}

// Load reads the named variable along with its latitude and longitude
// coordinates from the NetCDF file at path. Fill values are replaced
// with NaN and packed integer data are unpacked using the scale_factor
// and add_offset attributes. Multi-dimensional variables are flattened
// in row-major order, so the coordinate variables must have the same
// number of elements as the data variable.
func Load(path, variable string) (*Samples, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("aodsubset: opening file %s: %w", path, err)
	}
	defer f.Close()
	nc, err := cdf.Open(f)
	if err != nil {
		return nil, fmt.Errorf("aodsubset: opening file %s: %w", path, err)
	}

	latName, err := findVariable(nc.Header, latitudeNames)
	if err != nil {
		return nil, fmt.Errorf("aodsubset: file %s: %w", path, err)
	}
	lonName, err := findVariable(nc.Header, longitudeNames)
	if err != nil {
		return nil, fmt.Errorf("aodsubset: file %s: %w", path, err)
	}
	if nc.Header.Lengths(variable) == nil {
		return nil, fmt.Errorf("aodsubset: file %s: variable %s not found", path, variable)
	}

	lats, err := readVar(nc, latName)
	if err != nil {
		return nil, fmt.Errorf("aodsubset: reading variable %s from file %s: %w", latName, path, err)
	}
	lons, err := readVar(nc, lonName)
	if err != nil {
		return nil, fmt.Errorf("aodsubset: reading variable %s from file %s: %w", lonName, path, err)
	}
	vals, err := readVar(nc, variable)
	if err != nil {
		return nil, fmt.Errorf("aodsubset: reading variable %s from file %s: %w", variable, path, err)
	}
	if len(lats) != len(vals) || len(lons) != len(vals) {
		return nil, fmt.Errorf("aodsubset: file %s: %s, %s and %s must have the same number of elements but have %d, %d and %d",
			path, latName, lonName, variable, len(lats), len(lons), len(vals))
	}

	s := &Samples{
		Variable: variable,
		Units:    stringAttribute(nc.Header, variable, "units"),
		Source:   path,
		Data:     make([]Sample, len(vals)),
	}
	for i, v := range vals {
		s.Data[i] = Sample{Latitude: lats[i], Longitude: lons[i], Value: v}
	}
	return s, nil
}

// findVariable returns the first of names that is a variable in h.
func findVariable(h *cdf.Header, names []string) (string, error) {
	for _, n := range names {
		if h.Lengths(n) != nil {
			return n, nil
		}
	}
	return "", fmt.Errorf("none of the variables %v were found", names)
}

// readVar reads a numeric variable from a NetCDF file, converting it to
// float64 and applying the fill value and packing attributes.
func readVar(nc *cdf.File, v string) ([]float64, error) {
	if nc.Header.IsRecordVariable(v) {
		return nil, fmt.Errorf("record variables are not supported")
	}
	r := nc.Reader(v, nil, nil)
	dataI := r.Zero(-1)
	if _, ok := dataI.([]uint8); ok {
		return nil, fmt.Errorf("byte and character variables are not supported")
	}
	if _, err := r.Read(dataI); err != nil {
		return nil, err
	}
	data := toFloat64(dataI)

	fill := []float64{}
	for _, a := range []string{"_FillValue", "missing_value"} {
		if fv, ok := numericAttribute(nc.Header, v, a); ok {
			fill = append(fill, fv)
		}
	}
	scale, hasScale := numericAttribute(nc.Header, v, "scale_factor")
	offset, hasOffset := numericAttribute(nc.Header, v, "add_offset")

	for i, d := range data {
		for _, fv := range fill {
			if d == fv {
				d = math.NaN()
				break
			}
		}
		if hasScale {
			d *= scale
		}
		if hasOffset {
			d += offset
		}
		data[i] = d
	}
	return data, nil
}

// toFloat64 converts a slice returned by a cdf reader to float64.
func toFloat64(dataI interface{}) []float64 {
	switch d := dataI.(type) {
	case []float64:
		return d
	case []float32:
		o := make([]float64, len(d))
		for i, v := range d {
			o[i] = float64(v)
		}
		return o
	case []int32:
		o := make([]float64, len(d))
		for i, v := range d {
			o[i] = float64(v)
		}
		return o
	case []int16:
		o := make([]float64, len(d))
		for i, v := range d {
			o[i] = float64(v)
		}
		return o
	default:
		panic(fmt.Errorf("aodsubset: unsupported data type %T", dataI))
	}
}

// numericAttribute returns the first value of a numeric attribute.
func numericAttribute(h *cdf.Header, v, a string) (float64, bool) {
	switch at := h.GetAttribute(v, a).(type) {
	case []float64:
		if len(at) > 0 {
			return at[0], true
		}
	case []float32:
		if len(at) > 0 {
			return float64(at[0]), true
		}
	case []int32:
		if len(at) > 0 {
			return float64(at[0]), true
		}
	case []int16:
		if len(at) > 0 {
			return float64(at[0]), true
		}
	}
	return 0, false
}

func stringAttribute(h *cdf.Header, v, a string) string {
	if s, ok := h.GetAttribute(v, a).(string); ok {
		return s
	}
	return ""
}

// WriteNetCDF writes s to w as a NetCDF classic file with a single
// "pixel" dimension and latitude, longitude and data variables.
// Files written this way can be read back with Load.
// ErrNoSamples is returned if s is empty, because NetCDF classic files
// cannot hold zero-length fixed dimensions.
func (s *Samples) WriteNetCDF(w *os.File) error {
	if s.Len() == 0 {
		return ErrNoSamples
	}
	variable := s.Variable
	if variable == "" {
		variable = "value"
	}

	h := cdf.NewHeader([]string{"pixel"}, []int{s.Len()})
	h.AddAttribute("", "comment", "Satellite samples subset to geographic regions")
	if s.Source != "" {
		h.AddAttribute("", "source", s.Source)
	}

	h.AddVariable("latitude", []string{"pixel"}, []float64{0})
	h.AddAttribute("latitude", "units", "degrees_north")
	h.AddVariable("longitude", []string{"pixel"}, []float64{0})
	h.AddAttribute("longitude", "units", "degrees_east")
	h.AddVariable(variable, []string{"pixel"}, []float64{0})
	h.AddAttribute(variable, "_FillValue", []float64{math.NaN()})
	if s.Units != "" {
		h.AddAttribute(variable, "units", s.Units)
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return fmt.Errorf("aodsubset: writing netcdf header: %w", err)
	}

	lats := make([]float64, s.Len())
	lons := make([]float64, s.Len())
	vals := make([]float64, s.Len())
	for i, d := range s.Data {
		lats[i] = d.Latitude
		lons[i] = d.Longitude
		vals[i] = d.Value
	}
	for _, vv := range []struct {
		name string
		data interface{}
	}{{"latitude", lats}, {"longitude", lons}, {variable, vals}} {
		if err := writeNCF(f, vv.name, vv.data); err != nil {
			return fmt.Errorf("aodsubset: writing variable %s to netcdf file: %w", vv.name, err)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, v string, data interface{}) error {
	end := f.Header.Lengths(v)
	start := make([]int, len(end))
	_, err := f.Writer(v, start, end).Write(data)
	return err
}
