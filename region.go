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
	"fmt"

	"github.com/ctessum/geom"
)

// BoundingBox is an axis-aligned latitude/longitude rectangle.
// Points on the edges of the box are not inside it.
type BoundingBox struct {
	Name                           string
	LatMin, LatMax, LonMin, LonMax float64
}

// Default regions used to subset data over Africa.
var (
	NorthernAfrica = BoundingBox{Name: "northern_africa", LatMin: -20, LatMax: 50, LonMin: 0, LonMax: 40}
	SouthernAfrica = BoundingBox{Name: "southern_africa", LatMin: 10, LatMax: 50, LonMin: -40, LonMax: 0}
)

// AfricaBoxes returns the default northern and southern Africa boxes.
func AfricaBoxes() []BoundingBox {
	return []BoundingBox{NorthernAfrica, SouthernAfrica}
}

// Contains returns whether the given location lies strictly inside b.
// NaN coordinates are never inside.
func (b BoundingBox) Contains(lat, lon float64) bool {
	return b.LatMin < lat && lat < b.LatMax &&
		b.LonMin < lon && lon < b.LonMax
}

// Check returns an error if the box is empty or inverted.
func (b BoundingBox) Check() error {
	if !(b.LatMin < b.LatMax) {
		return fmt.Errorf("aodsubset: region %s: LatMin (%g) must be less than LatMax (%g)", b.Name, b.LatMin, b.LatMax)
	}
	if !(b.LonMin < b.LonMax) {
		return fmt.Errorf("aodsubset: region %s: LonMin (%g) must be less than LonMax (%g)", b.Name, b.LonMin, b.LonMax)
	}
	return nil
}

// Bounds returns b as geometric bounds, with longitude as X and latitude as Y.
func (b BoundingBox) Bounds() *geom.Bounds {
	return &geom.Bounds{
		Min: geom.Point{X: b.LonMin, Y: b.LatMin},
		Max: geom.Point{X: b.LonMax, Y: b.LatMax},
	}
}

// NewBoundingBox creates a box from geometric bounds where X is
// longitude and Y is latitude.
func NewBoundingBox(name string, b *geom.Bounds) BoundingBox {
	return BoundingBox{
		Name:   name,
		LatMin: b.Min.Y,
		LatMax: b.Max.Y,
		LonMin: b.Min.X,
		LonMax: b.Max.X,
	}
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("%s(lat %g..%g, lon %g..%g)", b.Name, b.LatMin, b.LatMax, b.LonMin, b.LonMax)
}
