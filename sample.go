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
	"math"

	"github.com/ctessum/geom"
)

// Sample is a single geolocated measurement.
type Sample struct {
	Latitude  float64 // degrees north
	Longitude float64 // degrees east
	Value     float64
}

// Samples is an ordered collection of samples read from a single
// source, along with metadata that describes the measured variable.
// The metadata is carried through subsetting unchanged.
type Samples struct {
	// Variable is the name of the measured variable, e.g. AOD550.
	Variable string

	// Units are the units of Value, if known.
	Units string

	// Source is the location the samples were read from.
	Source string

	Data []Sample
}

// Len returns the number of samples in s.
func (s *Samples) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Data)
}

// At returns the sample at index i.
func (s *Samples) At(i int) Sample { return s.Data[i] }

// Subset returns a new collection containing the samples for which
// mask is true, in their original order. It panics if mask is not
// the same length as s.
func (s *Samples) Subset(mask []bool) *Samples {
	if len(mask) != s.Len() {
		panic("aodsubset: mask length does not match number of samples")
	}
	o := s.emptyCopy()
	for i, keep := range mask {
		if keep {
			o.Data = append(o.Data, s.Data[i])
		}
	}
	return o
}

// emptyCopy returns a collection with the same metadata as s
// and no samples.
func (s *Samples) emptyCopy() *Samples {
	return &Samples{
		Variable: s.Variable,
		Units:    s.Units,
		Source:   s.Source,
		Data:     []Sample{},
	}
}

// Bounds returns the longitude (X) and latitude (Y) extent of the
// samples. Samples with NaN coordinates are skipped.
func (s *Samples) Bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, d := range s.Data {
		if math.IsNaN(d.Latitude) || math.IsNaN(d.Longitude) {
			continue
		}
		b.Extend(geom.NewBoundsPoint(geom.Point{X: d.Longitude, Y: d.Latitude}))
	}
	return b
}

// ResultSet holds one filtered collection per input file, in input order.
type ResultSet []*Samples

// Len returns the total number of samples across all collections.
func (rs ResultSet) Len() int {
	n := 0
	for _, s := range rs {
		n += s.Len()
	}
	return n
}

// bounds returns the combined extent of the collections in rs.
func (rs ResultSet) bounds() *geom.Bounds {
	b := geom.NewBounds()
	for _, s := range rs {
		if s == nil {
			continue
		}
		if sb := s.Bounds(); !sb.Empty() {
			b.Extend(sb)
		}
	}
	return b
}

// valueRange returns the minimum and maximum non-NaN values in rs.
// ok is false if there are no such values.
func (rs ResultSet) valueRange() (min, max float64, ok bool) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, s := range rs {
		if s == nil {
			continue
		}
		for _, d := range s.Data {
			if math.IsNaN(d.Value) {
				continue
			}
			min = math.Min(min, d.Value)
			max = math.Max(max, d.Value)
			ok = true
		}
	}
	return min, max, ok
}
