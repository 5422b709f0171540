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
	"fmt"
	"io/ioutil"
	"math/rand"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/icetools/iceinv/fem"
	"github.com/icetools/iceinv/linsolve"
	"github.com/icetools/iceinv/params"
)

// FilterCmd represents the filter command
var FilterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Smooth a noisy field by square-gradient or total-variation filtering",
	Long: `
Builds a structured mesh, synthesizes a noisy step field, and applies the
configured regularizer's filter. Each pass is one linearization step; the
total-variation filter needs several passes to approach the nonlinear
optimum.

iceinv filter -i input.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		fm := &FilterModel{}
		fm.InputFile, _ = cmd.Flags().GetString("input")
		fm.OutputFile, _ = cmd.Flags().GetString("output")
		fm.Graph, _ = cmd.Flags().GetBool("graph")
		fm.Profile, _ = cmd.Flags().GetBool("profile")
		alpha, _ := cmd.Flags().GetFloat64("alpha")
		steps, _ := cmd.Flags().GetInt("steps")
		delay, _ := cmd.Flags().GetInt("delay")
		fm.Delay = time.Duration(delay) * time.Millisecond

		fm.Params = params.Defaults()
		if fm.InputFile != "" {
			data, err := ioutil.ReadFile(fm.InputFile)
			if err != nil {
				fmt.Printf("unable to read input file %s: %v\n", fm.InputFile, err)
				os.Exit(1)
			}
			if err = fm.Params.Parse(data); err != nil {
				fmt.Printf("unable to parse input file %s: %v\n", fm.InputFile, err)
				os.Exit(1)
			}
		}
		if alpha > 0 {
			fm.Params.Alpha = alpha
		}
		if steps > 0 {
			fm.Params.FilterSteps = steps
		}
		fm.Params.Print()
		RunFilter(fm)
	},
}

func init() {
	rootCmd.AddCommand(FilterCmd)
	FilterCmd.Flags().StringP("input", "i", "", "YAML input file with filtering parameters")
	FilterCmd.Flags().StringP("output", "o", "", "write the filtered field as x y value lines")
	FilterCmd.Flags().Float64("alpha", 0, "override the smoothing length from the input file")
	FilterCmd.Flags().Int("steps", 0, "override the number of filter passes")
	FilterCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	FilterCmd.Flags().BoolP("graph", "g", false, "plot a cross section of the noisy and filtered fields")
	FilterCmd.Flags().Bool("profile", false, "write a CPU profile of the run")
}

type FilterModel struct {
	Params     params.Parameters
	InputFile  string
	OutputFile string
	Graph      bool
	Profile    bool
	Delay      time.Duration
}

func RunFilter(fm *FilterModel) {
	if fm.Profile {
		defer profile.Start().Stop()
	}
	var (
		p    = fm.Params
		mesh = fem.NewRectangleMesh(p.Nx, p.Ny, p.Lx, p.Ly)
		dsc  = fem.NewDiscretization(mesh, p.Dirichlet)
	)
	rank, err := p.RankValue()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	reg, err := p.NewRegularizer(dsc)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	var (
		fs   = dsc.Space(rank)
		uObs = synthesizeObservation(fs, p.Noise, p.Seed)
		f    = fs.NewDualField()
	)
	// The dual-space target is the mass matrix applied to the noisy
	// observation.
	linsolve.CSROp{M: fs.MassMatrix()}.MulVec(f.Coeffs, uObs.Coeffs)

	u := uObs.Copy()
	fmt.Printf("pass  0: penalty = %10.6f\n", reg.Evaluate(u))
	for step := 1; step <= p.FilterSteps; step++ {
		v, err := reg.Filter(u, f)
		if err != nil {
			fmt.Printf("filter pass %d failed: %v\n", step, err)
			os.Exit(1)
		}
		u = v
		fmt.Printf("pass %2d: penalty = %10.6f\n", step, reg.Evaluate(u))
	}

	if fm.OutputFile != "" {
		if err := writeField(fm.OutputFile, fs, u); err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	}
	if fm.Graph {
		plotCrossSection(fs, uObs, u, fm.Delay)
	}
}

// synthesizeObservation builds a step field polluted with uniform noise,
// the classic shape a total-variation filter should preserve and a
// square-gradient filter should smear.
func synthesizeObservation(fs *fem.FunctionSpace, noise float64, seed int64) (u *fem.Field) {
	var (
		mesh = fs.Discretization().Mesh()
		nc   = fs.NumComp()
		rng  = rand.New(rand.NewSource(seed))
		lx   = 0.0
	)
	for _, v := range mesh.Verts {
		if v[0] > lx {
			lx = v[0]
		}
	}
	u = fs.NewField()
	for v := 0; v < mesh.NumVerts(); v++ {
		val := 0.0
		if mesh.Verts[v][0] > 0.5*lx {
			val = 1.0
		}
		for comp := 0; comp < nc; comp++ {
			u.Coeffs[v*nc+comp] = val + noise*(2*rng.Float64()-1)
		}
	}
	fs.Constraints().Distribute(u.Coeffs)
	return
}

func writeField(name string, fs *fem.FunctionSpace, u *fem.Field) (err error) {
	var (
		mesh = fs.Discretization().Mesh()
		nc   = fs.NumComp()
		out  *os.File
	)
	if out, err = os.Create(name); err != nil {
		return
	}
	defer out.Close()
	for v := 0; v < mesh.NumVerts(); v++ {
		fmt.Fprintf(out, "%v %v", mesh.Verts[v][0], mesh.Verts[v][1])
		for comp := 0; comp < nc; comp++ {
			fmt.Fprintf(out, " %v", u.Coeffs[v*nc+comp])
		}
		fmt.Fprintln(out)
	}
	return
}
