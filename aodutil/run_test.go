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
	"bytes"
	"context"
	"fmt"
	"io/ioutil"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spatialmodel/aodsubset"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot/vg"
)

// fakeLoader returns copies of the samples stored under each path.
type fakeLoader map[string][]aodsubset.Sample

func (l fakeLoader) Load(path, variable string) (*aodsubset.Samples, error) {
	d, ok := l[path]
	if !ok {
		return nil, fmt.Errorf("no such file %s", path)
	}
	return &aodsubset.Samples{
		Variable: variable,
		Units:    "1",
		Source:   path,
		Data:     append([]aodsubset.Sample{}, d...),
	}, nil
}

var testFiles = fakeLoader{
	"orbit_31962.nc": {
		{Latitude: 5, Longitude: 5, Value: 0.1},
		{Latitude: 5, Longitude: -5, Value: 0.2},
		{Latitude: -20, Longitude: 5, Value: 0.3},
		{Latitude: 30, Longitude: -20, Value: math.NaN()},
	},
	"orbit_31963.nc": {
		{Latitude: 70, Longitude: 5, Value: 0.4},
	},
	"orbit_31964.nc": {
		{Latitude: 20, Longitude: 20, Value: 0.5},
		{Latitude: 25, Longitude: -10, Value: 0.6},
		{Latitude: 0, Longitude: 60, Value: 0.7},
	},
}

func runTest(ctx context.Context, out *bytes.Buffer, logFile, outputFile, subsetDir string, files []string, l aodsubset.Loader) error {
	cmd := &cobra.Command{}
	cmd.SetOutput(out)
	return Run(ctx, cmd, logFile, outputFile, subsetDir,
		files, "AOD550", aodsubset.AfricaBoxes(), "test", 4*vg.Inch, 3*vg.Inch, true, l)
}

func checkPNG(t *testing.T, path string) {
	t.Helper()
	b, err := ioutil.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.HasPrefix(b, []byte("\x89PNG\r\n\x1a\n")) {
		t.Errorf("%s is not a png image", path)
	}
}

func TestRun(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	out := new(bytes.Buffer)
	files := []string{"orbit_31962.nc", "orbit_31963.nc", "orbit_31964.nc"}

	err := runTest(context.Background(), out, filepath.Join(dir, "aod.log"), filepath.Join(dir, "aod.png"), dir, files, testFiles)
	if err != nil {
		t.Fatal(err)
	}
	checkPNG(t, filepath.Join(dir, "aod.png"))

	wantKept := map[string][]float64{
		"00_orbit_31962_subset.nc": {0.1, math.NaN()},
		"02_orbit_31964_subset.nc": {0.5, 0.6},
	}
	for name, want := range wantKept {
		s, err := aodsubset.Load(filepath.Join(dir, name), "AOD550")
		if err != nil {
			t.Errorf("%s: %v", name, err)
			continue
		}
		if s.Len() != len(want) {
			t.Errorf("%s: have %d samples, want %d", name, s.Len(), len(want))
			continue
		}
		for i, w := range want {
			v := s.At(i).Value
			if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
				t.Errorf("%s sample %d: have %g, want %g", name, i, v, w)
			}
		}
	}
	if _, err := os.Stat(filepath.Join(dir, "01_orbit_31963_subset.nc")); !os.IsNotExist(err) {
		t.Error("empty subset should not be saved")
	}

	log, err := ioutil.ReadFile(filepath.Join(dir, "aod.log"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"file=orbit_31962.nc", "kept=2", "kept=0", "no samples within regions"} {
		if !strings.Contains(string(log), want) {
			t.Errorf("log file does not contain %q:\n%s", want, log)
		}
	}
	if out.String() != string(log) {
		t.Error("command output and log file differ")
	}
}

func TestRunNoSubsetDir(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	err := runTest(context.Background(), new(bytes.Buffer), filepath.Join(dir, "aod.log"), filepath.Join(dir, "aod.png"), "",
		[]string{"orbit_31962.nc"}, testFiles)
	if err != nil {
		t.Fatal(err)
	}
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 2 {
		t.Errorf("have %d output files, want 2 (image and log)", len(files))
	}
}

func TestRunLoadError(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	err := runTest(context.Background(), new(bytes.Buffer), filepath.Join(dir, "aod.log"), filepath.Join(dir, "aod.png"), "",
		[]string{"orbit_31962.nc", "missing.nc"}, testFiles)
	if err == nil || !strings.Contains(err.Error(), "missing.nc") {
		t.Errorf("expected error loading missing.nc, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "aod.png")); !os.IsNotExist(err) {
		t.Error("no image should be created when loading fails")
	}
}

func TestRunCanceled(t *testing.T) {
	dir, cleanup := tempDir(t)
	defer cleanup()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := runTest(ctx, new(bytes.Buffer), filepath.Join(dir, "aod.log"), filepath.Join(dir, "aod.png"), "",
		[]string{"orbit_31962.nc"}, testFiles)
	if err != context.Canceled {
		t.Errorf("have error %v, want %v", err, context.Canceled)
	}
}

func TestRunBlobOutput(t *testing.T) {
	os.Mkdir("testbucket_run", os.ModePerm)
	defer os.RemoveAll("testbucket_run")

	err := runTest(context.Background(), new(bytes.Buffer),
		"file://testbucket_run/aod.log", "file://testbucket_run/aod.png", "file://testbucket_run/subsets",
		[]string{"orbit_31962.nc"}, testFiles)
	if err != nil {
		t.Fatal(err)
	}
	checkPNG(t, "testbucket_run/aod.png")
	for _, f := range []string{"testbucket_run/aod.log", "testbucket_run/subsets/00_orbit_31962_subset.nc"} {
		if _, err := os.Stat(f); err != nil {
			t.Error(err)
		}
	}
}

func TestRunBlobOutputLoadError(t *testing.T) {
	os.Mkdir("testbucket_run_err", os.ModePerm)
	defer os.RemoveAll("testbucket_run_err")
	dir, cleanup := tempDir(t)
	defer cleanup()
	uploadTempRoot = dir
	defer func() { uploadTempRoot = "" }()

	err := runTest(context.Background(), new(bytes.Buffer),
		"file://testbucket_run_err/aod.log", "file://testbucket_run_err/aod.png", "file://testbucket_run_err/subsets",
		[]string{"orbit_31962.nc", "missing.nc"}, testFiles)
	if err == nil {
		t.Fatal("expected error loading missing.nc")
	}
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, f := range files {
		t.Errorf("temporary output %s was not removed", f.Name())
	}
	if _, err := os.Stat("testbucket_run_err/aod.png"); !os.IsNotExist(err) {
		t.Error("no image should be uploaded when loading fails")
	}
}

func TestRunPlotSize(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetOutput(new(bytes.Buffer))
	err := Run(context.Background(), cmd, "aod.log", "aod.png", "", []string{"orbit_31962.nc"}, "AOD550",
		aodsubset.AfricaBoxes(), "", 0, 3*vg.Inch, false, testFiles)
	if err == nil {
		t.Error("expected an error for zero plot width")
	}
}

func TestSubsetPath(t *testing.T) {
	for _, test := range []struct {
		dir, f string
		i      int
		want   string
	}{
		{dir: "out", f: "data/orbit.nc", i: 3, want: filepath.Join("out", "03_orbit_subset.nc")},
		{dir: "gs://bucket/subsets/", f: "https://example.com/orbit.nc", i: 0, want: "gs://bucket/subsets/00_orbit_subset.nc"},
		{dir: "s3://bucket", f: "s3://other/dir/orbit.nc", i: 12, want: "s3://bucket/12_orbit_subset.nc"},
	} {
		if have := subsetPath(test.dir, test.i, test.f); have != test.want {
			t.Errorf("subsetPath(%q, %d, %q) = %q; want %q", test.dir, test.i, test.f, have, test.want)
		}
	}
}
