package core_test

import (
	"fmt"

	"github.com/cwbudde/algo-drumgate/dsp/core"
)

func ExampleRatioDB() {
	fmt.Printf("%.1f dB\n", core.RatioDB(0.5, 0.05, 0))
	fmt.Printf("%.1f dB\n", core.RatioDB(0.5, 0, 0))

	// Output:
	// 20.0 dB
	// 114.0 dB
}

func ExampleDeinterleave() {
	interleaved := []float64{1, -1, 2, -2, 3, -3}
	right := make([]float64, 3)

	n := core.Deinterleave(right, interleaved, 2, 1, 3)
	fmt.Println(n, right)

	fmt.Println(core.AppendInterleaved(nil, [][]float64{{1, 2, 3}, right}, 2))

	// Output:
	// 3 [-1 -2 -3]
	// [1 -1 2 -2]
}
