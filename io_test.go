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
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/kr/pretty"
)

// ncVar describes a variable to be written to a test NetCDF file.
type ncVar struct {
	name  string
	dims  []string
	data  interface{}
	attrs [][2]interface{} // name, value
}

// writeTestNCF creates a NetCDF file at path with the given dimensions
// and variables.
func writeTestNCF(t *testing.T, path string, dims []string, lengths []int, vars []ncVar) {
	t.Helper()
	h := cdf.NewHeader(dims, lengths)
	h.AddAttribute("", "comment", "test data")
	for _, v := range vars {
		h.AddVariable(v.name, v.dims, v.data)
		for _, a := range v.attrs {
			h.AddAttribute(v.name, a[0].(string), a[1])
		}
	}
	h.Define()

	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	nc, err := cdf.Create(f, h)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range vars {
		end := nc.Header.Lengths(v.name)
		if _, err := nc.Writer(v.name, make([]int, len(end)), end).Write(v.data); err != nil {
			t.Fatalf("writing %s: %v", v.name, err)
		}
	}
	if err := cdf.UpdateNumRecs(f); err != nil {
		t.Fatal(err)
	}
}

func tempDir(t *testing.T) (string, func()) {
	t.Helper()
	dir, err := ioutil.TempDir("", "aodsubset")
	if err != nil {
		t.Fatal(err)
	}
	return dir, func() { os.RemoveAll(dir) }
}

func TestWriteLoadNetCDF(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "subset.nc")

	s := &Samples{
		Variable: "AOD550",
		Units:    "1",
		Source:   "orbit_31962.nc",
		Data: []Sample{
			{Latitude: 5.25, Longitude: 12.5, Value: 0.31},
			{Latitude: -10.125, Longitude: 30, Value: math.NaN()},
			{Latitude: 45, Longitude: -20.75, Value: 1.2},
		},
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteNetCDF(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	got, err := Load(path, "AOD550")
	if err != nil {
		t.Fatal(err)
	}
	if got.Variable != "AOD550" || got.Units != "1" || got.Source != path {
		t.Errorf("metadata: have %+v", got)
	}
	if got.Len() != s.Len() {
		t.Fatalf("have %d samples, want %d", got.Len(), s.Len())
	}
	for i, want := range s.Data {
		have := got.At(i)
		if have.Latitude != want.Latitude || have.Longitude != want.Longitude {
			t.Errorf("sample %d: have location (%g, %g), want (%g, %g)", i,
				have.Latitude, have.Longitude, want.Latitude, want.Longitude)
		}
		if math.IsNaN(want.Value) != math.IsNaN(have.Value) ||
			(!math.IsNaN(want.Value) && want.Value != have.Value) {
			t.Errorf("sample %d: have value %g, want %g", i, have.Value, want.Value)
		}
	}
}

func TestWriteNetCDFEmpty(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	f, err := os.Create(filepath.Join(dir, "empty.nc"))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := testSamples().WriteNetCDF(f); !errors.Is(err, ErrNoSamples) {
		t.Errorf("have error %v, want %v", err, ErrNoSamples)
	}
}

func TestLoadFillValue(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "fill.nc")
	writeTestNCF(t, path, []string{"pixel_number"}, []int{4}, []ncVar{
		{name: "lat", dims: []string{"pixel_number"}, data: []float32{1, 2, 3, 4}},
		{name: "lon", dims: []string{"pixel_number"}, data: []float32{10, 20, 30, 40}},
		{
			name: "AOD550", dims: []string{"pixel_number"},
			data:  []float32{0.5, -999, 0.25, -999},
			attrs: [][2]interface{}{{"_FillValue", []float32{-999}}, {"units", "1"}},
		},
	})

	got, err := Load(path, "AOD550")
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{
		{Latitude: 1, Longitude: 10, Value: 0.5},
		{Latitude: 2, Longitude: 20, Value: math.NaN()},
		{Latitude: 3, Longitude: 30, Value: 0.25},
		{Latitude: 4, Longitude: 40, Value: math.NaN()},
	}
	checkSamples(t, got.Data, want)
	if got.Units != "1" {
		t.Errorf("units: have %q, want %q", got.Units, "1")
	}
}

func TestLoadPacked(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "packed.nc")
	writeTestNCF(t, path, []string{"pixel_number"}, []int{3}, []ncVar{
		{name: "latitude", dims: []string{"pixel_number"}, data: []float64{-5, 0, 5}},
		{name: "longitude", dims: []string{"pixel_number"}, data: []float64{15, 16, 17}},
		{
			name: "AOD550", dims: []string{"pixel_number"},
			data: []int16{100, -32767, 400},
			attrs: [][2]interface{}{
				{"_FillValue", []int16{-32767}},
				{"scale_factor", []float32{0.5}},
				{"add_offset", []float64{1}},
			},
		},
	})

	got, err := Load(path, "AOD550")
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{
		{Latitude: -5, Longitude: 15, Value: 51},
		{Latitude: 0, Longitude: 16, Value: math.NaN()},
		{Latitude: 5, Longitude: 17, Value: 201},
	}
	checkSamples(t, got.Data, want)
}

func TestLoadSwath(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	path := filepath.Join(dir, "swath.nc")
	writeTestNCF(t, path, []string{"y", "x"}, []int{2, 3}, []ncVar{
		{name: "latitude", dims: []string{"y", "x"}, data: []float32{1, 1, 1, 2, 2, 2}},
		{name: "longitude", dims: []string{"y", "x"}, data: []float32{10, 11, 12, 10, 11, 12}},
		{name: "AOD550", dims: []string{"y", "x"}, data: []float32{0, 1, 2, 3, 4, 5}},
	})

	got, err := Load(path, "AOD550")
	if err != nil {
		t.Fatal(err)
	}
	want := []Sample{
		{Latitude: 1, Longitude: 10, Value: 0},
		{Latitude: 1, Longitude: 11, Value: 1},
		{Latitude: 1, Longitude: 12, Value: 2},
		{Latitude: 2, Longitude: 10, Value: 3},
		{Latitude: 2, Longitude: 11, Value: 4},
		{Latitude: 2, Longitude: 12, Value: 5},
	}
	checkSamples(t, got.Data, want)
}

func TestLoadErrors(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()

	good := filepath.Join(dir, "good.nc")
	writeTestNCF(t, good, []string{"pixel"}, []int{2}, []ncVar{
		{name: "latitude", dims: []string{"pixel"}, data: []float32{1, 2}},
		{name: "longitude", dims: []string{"pixel"}, data: []float32{1, 2}},
		{name: "AOD550", dims: []string{"pixel"}, data: []float32{1, 2}},
	})
	noLat := filepath.Join(dir, "nolat.nc")
	writeTestNCF(t, noLat, []string{"pixel"}, []int{2}, []ncVar{
		{name: "longitude", dims: []string{"pixel"}, data: []float32{1, 2}},
		{name: "AOD550", dims: []string{"pixel"}, data: []float32{1, 2}},
	})
	mismatch := filepath.Join(dir, "mismatch.nc")
	writeTestNCF(t, mismatch, []string{"pixel", "other"}, []int{2, 3}, []ncVar{
		{name: "latitude", dims: []string{"pixel"}, data: []float32{1, 2}},
		{name: "longitude", dims: []string{"pixel"}, data: []float32{1, 2}},
		{name: "AOD550", dims: []string{"other"}, data: []float32{1, 2, 3}},
	})
	text := filepath.Join(dir, "text.nc")
	if err := ioutil.WriteFile(text, []byte("not a netcdf file"), 0644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, path, variable string
	}{
		{name: "missing file", path: filepath.Join(dir, "nothing.nc"), variable: "AOD550"},
		{name: "not netcdf", path: text, variable: "AOD550"},
		{name: "missing variable", path: good, variable: "AOD870"},
		{name: "missing latitude", path: noLat, variable: "AOD550"},
		{name: "length mismatch", path: mismatch, variable: "AOD550"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := Load(test.path, test.variable); err == nil {
				t.Error("expected an error")
			}
		})
	}

	if _, err := (NetCDFLoader{}).Load(good, "AOD550"); err != nil {
		t.Errorf("loading good file: %v", err)
	}
}

// checkSamples compares samples, treating NaN values as equal.
func checkSamples(t *testing.T, have, want []Sample) {
	t.Helper()
	if len(have) != len(want) {
		t.Fatalf("have %d samples, want %d", len(have), len(want))
	}
	replaceNaN := func(s []Sample) []Sample {
		o := make([]Sample, len(s))
		for i, d := range s {
			if math.IsNaN(d.Value) {
				d.Value = -1e30
			}
			o[i] = d
		}
		return o
	}
	h, w := replaceNaN(have), replaceNaN(want)
	if !reflect.DeepEqual(h, w) {
		t.Errorf("samples differ:\n%v", pretty.Diff(h, w))
	}
}
