package suggest_test

import (
	"fmt"

	"github.com/cwbudde/algo-drumgate/gate"
	"github.com/cwbudde/algo-drumgate/gate/suggest"
	"github.com/cwbudde/algo-drumgate/measure/waveform"
)

func ExampleSuggest() {
	// Five short hits over a steady bleed floor, 50 ms per bin.
	var bins []float64

	for range 5 {
		for range 12 {
			bins = append(bins, 0.05)
		}

		bins = append(bins, 0.8, 0.8, 0.8)
	}

	w := waveform.Data{Bins: bins, Peak: 0.8, BinDuration: 0.05}

	s, err := suggest.Suggest(w, &gate.Kick, nil)
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Printf("threshold=%.1f dB release=%.3f s floor=%.1f dB\n", s.ThresholdDB, s.Release.Value, s.FloorDB.Value)
	// Output:
	// threshold=-13.9 dB release=0.128 s floor=-25.9 dB
}
