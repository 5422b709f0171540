// Package params holds the YAML input parameters for the filtering
// driver.
package params

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/icetools/iceinv/fem"
	"github.com/icetools/iceinv/regularize"
)

// Parameters obtained from the YAML input file
type Parameters struct {
	Title       string  `yaml:"Title"`
	Regularizer string  `yaml:"Regularizer"` // squareGradient or totalVariation
	Rank        string  `yaml:"Rank"`        // scalar or vector
	Alpha       float64 `yaml:"Alpha"`
	FilterSteps int     `yaml:"FilterSteps"`
	Nx          int     `yaml:"Nx"`
	Ny          int     `yaml:"Ny"`
	Lx          float64 `yaml:"Lx"`
	Ly          float64 `yaml:"Ly"`
	Dirichlet   bool    `yaml:"Dirichlet"`
	Noise       float64 `yaml:"Noise"`
	Seed        int64   `yaml:"Seed"`
}

func Defaults() Parameters {
	return Parameters{
		Title:       "total variation filtering",
		Regularizer: "totalVariation",
		Rank:        "scalar",
		Alpha:       0.25,
		FilterSteps: 8,
		Nx:          32,
		Ny:          32,
		Lx:          1,
		Ly:          1,
		Noise:       0.1,
		Seed:        42,
	}
}

func (p *Parameters) Parse(data []byte) error {
	return yaml.Unmarshal(data, p)
}

func (p *Parameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", p.Title)
	fmt.Printf("[%s]\t= Regularizer\n", p.Regularizer)
	fmt.Printf("[%s]\t\t\t= Rank\n", p.Rank)
	fmt.Printf("%8.5f\t\t= Alpha\n", p.Alpha)
	fmt.Printf("[%d]\t\t\t\t= FilterSteps\n", p.FilterSteps)
	fmt.Printf("[%d x %d]\t\t= Mesh cells\n", p.Nx, p.Ny)
	fmt.Printf("[%v x %v]\t\t= Domain extent\n", p.Lx, p.Ly)
	fmt.Printf("[%v]\t\t\t= Dirichlet\n", p.Dirichlet)
	fmt.Printf("%8.5f\t\t= Noise\n", p.Noise)
	fmt.Printf("[%d]\t\t\t\t= Seed\n", p.Seed)
}

func (p *Parameters) RankValue() (rank fem.Rank, err error) {
	switch p.Rank {
	case "scalar", "":
		rank = fem.Scalar
	case "vector":
		rank = fem.Vector
	default:
		err = fmt.Errorf("unknown rank %q, want scalar or vector", p.Rank)
	}
	return
}

// NewRegularizer builds the configured regularizer over dsc.
func (p *Parameters) NewRegularizer(dsc *fem.Discretization) (r regularize.FieldRegularizer, err error) {
	rank, err := p.RankValue()
	if err != nil {
		return nil, err
	}
	switch p.Regularizer {
	case "squareGradient":
		r = regularize.NewSquareGradient(dsc, rank, p.Alpha)
	case "totalVariation", "":
		r = regularize.NewTotalVariation(dsc, rank, p.Alpha)
	default:
		err = fmt.Errorf("unknown regularizer %q, want squareGradient or totalVariation", p.Regularizer)
	}
	return
}
