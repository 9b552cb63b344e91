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

// Mask returns a slice the same length as s where element i is true
// if sample i lies strictly inside at least one of boxes.
func Mask(s *Samples, boxes []BoundingBox) []bool {
	mask := make([]bool, s.Len())
	for i := 0; i < s.Len(); i++ {
		d := s.Data[i]
		for _, b := range boxes {
			if b.Contains(d.Latitude, d.Longitude) {
				mask[i] = true
				break
			}
		}
	}
	return mask
}

// Filter returns a new collection holding the samples in s that lie
// strictly inside at least one of boxes. Order and metadata are
// preserved and s is not modified. Samples with NaN coordinates are
// dropped.
func Filter(s *Samples, boxes []BoundingBox) *Samples {
	if s == nil {
		return &Samples{Data: []Sample{}}
	}
	o := s.emptyCopy()
	for _, d := range s.Data {
		for _, b := range boxes {
			if b.Contains(d.Latitude, d.Longitude) {
				o.Data = append(o.Data, d)
				break
			}
		}
	}
	return o
}
