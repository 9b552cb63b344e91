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

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Summary holds summary statistics for the values in a collection.
// Statistics are calculated over non-NaN values only and are NaN
// if there are none.
type Summary struct {
	N, Valid               int
	Mean, StdDev, Min, Max float64
}

// Summary calculates summary statistics for s.
func (s *Samples) Summary() Summary {
	o := Summary{
		N:      s.Len(),
		Mean:   math.NaN(),
		StdDev: math.NaN(),
		Min:    math.NaN(),
		Max:    math.NaN(),
	}
	vals := make([]float64, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if v := s.Data[i].Value; !math.IsNaN(v) {
			vals = append(vals, v)
		}
	}
	o.Valid = len(vals)
	if o.Valid == 0 {
		return o
	}
	o.Min = floats.Min(vals)
	o.Max = floats.Max(vals)
	if o.Valid == 1 {
		o.Mean = vals[0]
		o.StdDev = 0
		return o
	}
	o.Mean, o.StdDev = stat.MeanStdDev(vals, nil)
	return o
}
