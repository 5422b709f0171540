/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"time"

	"github.com/notargets/avs/chart2d"
	utils2 "github.com/notargets/avs/utils"

	"github.com/icetools/iceinv/fem"
)

type LineChart struct {
	Chart    *chart2d.Chart2D
	ColorMap *utils2.ColorMap
}

func NewLineChart(width, height int, xmin, xmax, fmin, fmax float64) (lc *LineChart) {
	lc = &LineChart{
		Chart:    chart2d.NewChart2D(width, height, float32(xmin), float32(xmax), float32(fmin), float32(fmax)),
		ColorMap: utils2.NewColorMap(-1, 1, 1),
	}
	go lc.Chart.Plot()
	return
}

func (lc *LineChart) Plot(graphDelay time.Duration, x, f []float64, lineColor float64, lineName string) {
	/*
		lineColor goes from -1 (red) to 1 (blue)
	*/
	if err := lc.Chart.AddSeries(lineName, x, f,
		chart2d.NoGlyph, chart2d.Solid, lc.ColorMap.GetRGB(float32(lineColor))); err != nil {
		panic("unable to add graph series")
	}
	time.Sleep(graphDelay)
}

// plotCrossSection displays the noisy observation and the filtered field
// along the horizontal mid-line of the mesh (first component only for
// vector fields).
func plotCrossSection(fs *fem.FunctionSpace, uObs, u *fem.Field, delay time.Duration) {
	var (
		mesh = fs.Discretization().Mesh()
		nc   = fs.NumComp()
		ymid = 0.0
	)
	var xmin, xmax, fmin, fmax float64
	for _, v := range mesh.Verts {
		if v[1] > ymid {
			ymid = v[1]
		}
		if v[0] > xmax {
			xmax = v[0]
		}
	}
	ymid /= 2
	var x, fObs, fFlt []float64
	for v := 0; v < mesh.NumVerts(); v++ {
		if d := mesh.Verts[v][1] - ymid; d > 1.e-12 || d < -1.e-12 {
			continue
		}
		x = append(x, mesh.Verts[v][0])
		fObs = append(fObs, uObs.Coeffs[v*nc])
		fFlt = append(fFlt, u.Coeffs[v*nc])
	}
	for _, v := range append(fObs, fFlt...) {
		if v < fmin {
			fmin = v
		}
		if v > fmax {
			fmax = v
		}
	}
	lc := NewLineChart(1280, 1024, xmin, xmax, fmin, fmax)
	lc.Plot(delay, x, fObs, -1, "observed")
	lc.Plot(delay, x, fFlt, 1, "filtered")
}
