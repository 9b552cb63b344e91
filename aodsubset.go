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

// Package aodsubset reads satellite aerosol optical depth (AOD) swath data,
// subsets the point samples to geographic bounding boxes, and plots the
// result.
//
// A typical workflow loads one file at a time with a Loader, passes the
// samples through Filter, collects the filtered collections into a
// ResultSet in input order, and hands the ResultSet to Plot.
package aodsubset

// Version gives the version number.
const Version = "1.0.0"
