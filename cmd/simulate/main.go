// Command simulate estimates detection performance of the SREWMA chart on a fixed
// mean-shift scenario: a small in-control reference sample, an in-control run-in, then
// a sustained shift in every coordinate.  It reports how quickly the chart alarms after
// the shift and how often it false-alarms before it.
package main

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/spckit/rankmon/pkg/chart"
	"github.com/spckit/rankmon/pkg/rng"
)

const (
	NumProcs  int     = 4
	Trials    int     = 1000
	Reference int     = 20
	InControl int     = 30
	Shifted   int     = 50
	Dim       int     = 3
	Lambda    float64 = 0.025
	Limit     float64 = 15.0
	Shift     float64 = 1.0
)

var wg sync.WaitGroup

type results struct {
	mu          sync.Mutex
	delays      []int
	falseAlarms int
	missed      int
}

func (r *results) record(delay int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch {
	case delay < 0:
		r.falseAlarms++
	case delay == 0:
		r.missed++
	default:
		r.delays = append(r.delays, delay)
	}
}

func main() {
	res := &results{}
	start := time.Now()

	per := Trials / NumProcs
	for w := 0; w < NumProcs; w++ {
		wg.Add(1)
		go trials(res, int64(1000*(w+1)), per)
	}
	wg.Wait()

	fmt.Printf("Time Elapsed: %v\n", time.Since(start))
	fmt.Printf("Trials: %d  False alarms: %d  Missed: %d\n", Trials, res.falseAlarms, res.missed)
	if len(res.delays) == 0 {
		return
	}
	sort.Ints(res.delays)
	var sum int
	for _, d := range res.delays {
		sum += d
	}
	fmt.Printf("Detection delay after shift: mean=%.1f median=%d min=%d max=%d\n",
		float64(sum)/float64(len(res.delays)), res.delays[len(res.delays)/2],
		res.delays[0], res.delays[len(res.delays)-1])
}

// trials runs n monitoring runs and records the detection delay for each: negative for
// a false alarm during the in-control run-in, zero when the shift was never detected
func trials(res *results, seed int64, n int) {
	defer wg.Done()

	cov := mat.NewSymDense(Dim, []float64{
		1.0, 0.0, 0.0,
		0.0, 1.0, 0.0,
		0.0, 0.0, 1.0,
	})
	zero := make([]float64, Dim)
	shifted := make([]float64, Dim)
	for i := range shifted {
		shifted[i] = Shift
	}

	for i := 0; i < n; i++ {
		g, err := rng.NewMVNormalRNGSeeded(zero, cov, seed+int64(i))
		if err != nil {
			log.Fatalf("unexpected error constructing generator: %v", err)
		}
		gShift, err := rng.NewMVNormalRNGSeeded(shifted, cov, seed+int64(i)+500000)
		if err != nil {
			log.Fatalf("unexpected error constructing generator: %v", err)
		}

		reference := make([][]float64, Reference)
		for j := range reference {
			reference[j] = g.Rand()
		}
		c, err := chart.New(reference, Lambda, chart.WithLimit(Limit))
		if err != nil {
			log.Fatalf("unexpected error constructing chart: %v", err)
		}

		delay := 0
		for j := 0; j < InControl+Shifted; j++ {
			obs := g.Rand()
			if j >= InControl {
				obs = gShift.Rand()
			}
			if _, err := c.Step(obs); err != nil {
				log.Fatalf("unexpected error at step %d: %v", j+1, err)
			}
			if c.HasAlarmed() {
				if j < InControl {
					delay = -1
				} else {
					delay = j - InControl + 1
				}
				break
			}
		}
		res.record(delay)
	}
}
