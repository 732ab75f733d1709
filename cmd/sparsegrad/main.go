// Package main provides the sparsegrad CLI.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/born-ml/sparsegrad/forward"
	"github.com/born-ml/sparsegrad/functions"
)

const version = "v0.0.1-dev"

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "version":
			fmt.Printf("sparsegrad %s\n", version)
			return
		case "demo":
			if len(os.Args) > 2 && os.Args[2] == "-v" {
				logrus.SetLevel(logrus.DebugLevel)
			}
			if err := demo(); err != nil {
				logrus.WithError(err).Error("demo failed")
				os.Exit(1)
			}
			return
		}
	}

	fmt.Println("sparsegrad - sparse Jacobians by forward-mode differentiation")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  demo [-v]  Differentiate a piecewise function")
}

// demo differentiates f(x) = c·x where x > 0 and 2x elsewhere, with c the
// first input taken as a constant.
func demo() error {
	x := forward.Seed([]float64{-1.5, 0.5, 2, -3, 4})

	cond := make([]bool, x.Len())
	for i, v := range x.Values() {
		cond[i] = v > 0
	}

	y, err := functions.Branch(cond,
		func(idx []int) (any, error) {
			sub, err := x.Index(idx)
			if err != nil {
				return nil, err
			}
			return functions.Dot(sub, x.Values()[0])
		},
		func(idx []int) (any, error) {
			sub, err := x.Index(idx)
			if err != nil {
				return nil, err
			}
			return functions.Dot(2.0, sub)
		},
	)
	if err != nil {
		return err
	}

	v, ok := y.(*forward.Value)
	if !ok {
		return fmt.Errorf("unexpected result type %T", y)
	}

	fmt.Printf("x = %v\n", x.Values())
	fmt.Printf("f(x) = %v\n\n", v.Values())

	j := v.Jacobian()
	fmt.Printf("J (%dx%d, nnz=%d) =\n%v\n\n", j.Rows(), j.Cols(), j.NNZ(), mat.Formatted(j.Dense(), mat.Prefix(""), mat.Squeeze()))

	fmt.Println("pattern:")
	for i, row := range j.Pattern() {
		fmt.Printf("  row %d: %v\n", i, row.ToArray())
	}
	return nil
}
