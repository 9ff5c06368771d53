package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/spckit/rankmon"
)

func main() {

	args, opts, err := rankmon.ParseCommandLine()
	if err != nil {
		if !errors.Is(err, pflag.ErrHelp) {
			fmt.Printf("Could not parse configuration: %s\n\nUse rankmon --help for options\n", err)
		}
		os.Exit(1)
	}
	if len(args) != 2 {
		fmt.Println("Expected two data files: rankmon <options> reference.csv stream.csv")
		os.Exit(1)
	}

	reference, err := loadCSV(args[0])
	if err != nil {
		fmt.Printf("Could not read reference sample %s: %s\n", args[0], err)
		os.Exit(1)
	}
	stream, err := loadCSV(args[1])
	if err != nil {
		fmt.Printf("Could not read monitoring stream %s: %s\n", args[1], err)
		os.Exit(1)
	}

	m, errs := rankmon.New(reference, opts...)
	if len(errs) > 0 {
		fmt.Println("Error in config:")
		for _, e := range errs {
			fmt.Println(e)
		}
		os.Exit(1)
	}

	events, done := m.Subscribe()
	go func() {
		for ev := range events {
			step, ok := ev.Data.(rankmon.StepEvent)
			if !ok {
				continue
			}
			marker := ""
			if step.Alarmed {
				marker = " *"
			}
			fmt.Printf("%d %.6f%s\n", step.Index, step.Statistic, marker)
		}
		close(done)
	}()

	if _, err := m.Run(stream); err != nil {
		fmt.Println("Monitoring error:", err)
		os.Exit(1)
	}

	if m.HasAlarmed() {
		fmt.Printf("Out of control: first alarm at observation %d\n", m.AlarmedAt())
		os.Exit(2)
	}
	fmt.Printf("In control after %d observations\n", len(m.Statistics()))
	os.Exit(0)
}

// loadCSV reads a headerless CSV file where each record is one observation vector
func loadCSV(fpath string) ([][]float64, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, err
	}

	out := make([][]float64, 0, len(records))
	for i, record := range records {
		row := make([]float64, len(record))
		for j, field := range record {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("record %d field %d: %s is not a number", i+1, j+1, field)
			}
			row[j] = v
		}
		out = append(out, row)
	}
	return out, nil
}
