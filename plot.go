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
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// missingColor is used for samples with no valid value.
var missingColor = color.NRGBA{R: 160, G: 160, B: 160, A: 255}

// boxColors are cycled through when outlining regions.
var boxColors = []color.Color{
	color.NRGBA{R: 0, G: 90, B: 200, A: 255},
	color.NRGBA{R: 0, G: 160, B: 80, A: 255},
	color.NRGBA{R: 200, G: 0, B: 160, A: 255},
}

const legendHeight = 0.7 * vg.Inch

// Figure is a map of the samples in a ResultSet with a color scale.
type Figure struct {
	Map    *plot.Plot
	Legend *plot.Plot
}

// Plot creates a map of the samples in rs, with longitude on the X axis
// and latitude on the Y axis. Each sample is drawn as a point colored by
// its value, using a color scale that spans all valid values in rs.
// The outlines of boxes are drawn on top of the samples.
func Plot(rs ResultSet, boxes []BoundingBox, title string) (*Figure, error) {
	cmap := moreland.ExtendedBlackBody()
	min, max, ok := rs.valueRange()
	if !ok {
		min, max = 0, 1
	} else if !(max > min) {
		max = min + 1
	}
	cmap.SetMin(min)
	cmap.SetMax(max)

	p, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("aodsubset: creating plot: %w", err)
	}
	p.Title.Text = title
	p.X.Label.Text = "Longitude (°E)"
	p.Y.Label.Text = "Latitude (°N)"
	p.Add(plotter.NewGrid())
	p.Add(&samplePoints{
		rs:   rs,
		cmap: cmap,
		glyph: draw.GlyphStyle{
			Radius: 0.5 * vg.Millimeter,
			Shape:  draw.CircleGlyph{},
		},
	})
	for i, b := range boxes {
		l, err := plotter.NewLine(boxOutline(b))
		if err != nil {
			return nil, fmt.Errorf("aodsubset: outlining region %s: %w", b.Name, err)
		}
		l.Color = boxColors[i%len(boxColors)]
		l.Width = 0.5 * vg.Millimeter
		p.Add(l)
		p.Legend.Add(b.Name, l)
	}
	p.Legend.Top = true

	legend, err := plot.New()
	if err != nil {
		return nil, fmt.Errorf("aodsubset: creating plot legend: %w", err)
	}
	legend.Add(&plotter.ColorBar{ColorMap: cmap})
	legend.HideY()
	legend.X.Padding = 0
	legend.X.Label.Text = legendLabel(rs)

	return &Figure{Map: p, Legend: legend}, nil
}

// legendLabel returns the variable name and units of the first
// collection in rs that has a variable name.
func legendLabel(rs ResultSet) string {
	for _, s := range rs {
		if s == nil || s.Variable == "" {
			continue
		}
		if s.Units != "" {
			return fmt.Sprintf("%s (%s)", s.Variable, s.Units)
		}
		return s.Variable
	}
	return ""
}

// boxOutline returns the corners of b as a closed line.
func boxOutline(b BoundingBox) plotter.XYs {
	return plotter.XYs{
		{X: b.LonMin, Y: b.LatMin},
		{X: b.LonMax, Y: b.LatMin},
		{X: b.LonMax, Y: b.LatMax},
		{X: b.LonMin, Y: b.LatMax},
		{X: b.LonMin, Y: b.LatMin},
	}
}

// Draw draws the map and its color scale onto c.
func (f *Figure) Draw(c draw.Canvas) {
	height := c.Max.Y - c.Min.Y
	f.Map.Draw(draw.Crop(c, 0, 0, legendHeight, 0))
	f.Legend.Draw(draw.Crop(c, 0, 0, 0, legendHeight-height))
}

// WritePNG renders f at the given size and writes it to w as a PNG image.
func (f *Figure) WritePNG(w io.Writer, width, height vg.Length) error {
	img := vgimg.New(width, height)
	f.Draw(draw.New(img))
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(w); err != nil {
		return fmt.Errorf("aodsubset: writing png: %w", err)
	}
	return nil
}

// samplePoints draws each sample in a ResultSet as a glyph colored by value.
type samplePoints struct {
	rs    ResultSet
	cmap  palette.ColorMap
	glyph draw.GlyphStyle
}

// Plot implements plot.Plotter.
func (sp *samplePoints) Plot(c draw.Canvas, p *plot.Plot) {
	trX, trY := p.Transforms(&c)
	sty := sp.glyph
	for _, s := range sp.rs {
		if s == nil {
			continue
		}
		for _, d := range s.Data {
			if math.IsNaN(d.Latitude) || math.IsNaN(d.Longitude) {
				continue
			}
			pt := vg.Point{X: trX(d.Longitude), Y: trY(d.Latitude)}
			if !c.Contains(pt) {
				continue
			}
			sty.Color = sp.color(d.Value)
			c.DrawGlyph(sty, pt)
		}
	}
}

// color returns the color for value v, clamped to the range of the
// color map.
func (sp *samplePoints) color(v float64) color.Color {
	if math.IsNaN(v) {
		return missingColor
	}
	v = math.Max(sp.cmap.Min(), math.Min(sp.cmap.Max(), v))
	c, err := sp.cmap.At(v)
	if err != nil {
		return missingColor
	}
	return c
}

// DataRange implements plot.DataRanger.
func (sp *samplePoints) DataRange() (xmin, xmax, ymin, ymax float64) {
	b := sp.rs.bounds()
	return b.Min.X, b.Max.X, b.Min.Y, b.Max.Y
}
