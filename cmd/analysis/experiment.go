package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/jcalabro/tally"
	logger "github.com/sirupsen/logrus"
)

// sketch is the surface the experiments drive. State returns the raw
// counters one row per slice.
type sketch interface {
	InsertString(key string)
	QueryString(key string) uint64
	State() [][]uint64
}

type cmsSketch struct{ *tally.CountMinSketch }

func (s cmsSketch) State() [][]uint64 { return s.Counters() }

type sbfSketch struct{ *tally.SpectralBloomFilter }

func (s sbfSketch) State() [][]uint64 { return [][]uint64{s.Counters()} }

// Iteration is the outcome of one point of a sweep.
type Iteration struct {
	Param      int
	Width      int
	StreamSize int
	Actual     map[string]uint64
	Estimates  map[string]uint64
	State      [][]uint64
	MeanError  float64
}

func (e *Experiment) newSketch(width int) (sketch, error) {
	switch e.Structure {
	case "sbf":
		f, err := tally.NewSpectralBloomFilter(e.NumHashFunctions, width, e.options()...)
		if err != nil {
			return nil, err
		}
		return sbfSketch{f}, nil
	default:
		s, err := tally.NewCountMinSketch(e.NumHashFunctions, width, e.options()...)
		if err != nil {
			return nil, err
		}
		return cmsSketch{s}, nil
	}
}

// Run executes every iteration of the sweep and returns the results in
// sweep order.
func (e *Experiment) Run() ([]Iteration, error) {
	if err := e.Validate(); err != nil {
		return nil, err
	}

	var fixed *Stream
	if e.Sweep == SweepWidth {
		var err error
		fixed, err = NewStream(e.PoolSize, e.StreamSize, Distribution(e.Distribution), e.Alpha, e.Seed)
		if err != nil {
			return nil, err
		}
	}

	var out []Iteration
	for param := e.Min; param < e.Max; param += e.Step {
		stream, width := fixed, param
		if e.Sweep == SweepStream {
			var err error
			stream, err = NewStream(e.PoolSize, param, Distribution(e.Distribution), e.Alpha, e.Seed+uint64(param))
			if err != nil {
				return nil, err
			}
			width = e.Width
		}

		it, err := e.runOnce(stream, width)
		if err != nil {
			return nil, fmt.Errorf("%s=%d: %w", e.Sweep, param, err)
		}
		it.Param = param
		out = append(out, it)
	}
	return out, nil
}

func (e *Experiment) runOnce(stream *Stream, width int) (Iteration, error) {
	s, err := e.newSketch(width)
	if err != nil {
		return Iteration{}, err
	}

	for _, k := range stream.Keys {
		s.InsertString(k)
	}

	actual := stream.ActualCounts()
	estimates := make(map[string]uint64, len(actual))
	for k := range actual {
		estimates[k] = s.QueryString(k)
	}

	return Iteration{
		Width:      width,
		StreamSize: len(stream.Keys),
		Actual:     actual,
		Estimates:  estimates,
		State:      s.State(),
		MeanError:  MeanRelativeError(actual, estimates),
	}, nil
}

// MeanRelativeError returns the mean of (estimate - actual) / actual over
// every key with a nonzero actual count.
func MeanRelativeError(actual, estimates map[string]uint64) float64 {
	var sum float64
	var n int
	for k, a := range actual {
		if a == 0 {
			continue
		}
		sum += (float64(estimates[k]) - float64(a)) / float64(a)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// WriteResults writes <dir>/<param>/output.csv and filter_state.csv for each
// iteration, plus <dir>/summary.csv. dir is removed and recreated first.
func WriteResults(dir string, sweep string, its []Iteration) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clear output dir %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir %s: %w", dir, err)
	}

	summary := [][]string{{sweep, "width", "streamSize", "distinctKeys", "meanError"}}
	for _, it := range its {
		iterDir := filepath.Join(dir, strconv.Itoa(it.Param))
		if err := os.MkdirAll(iterDir, 0o755); err != nil {
			return fmt.Errorf("create iteration dir %s: %w", iterDir, err)
		}

		if err := writeCSV(filepath.Join(iterDir, "output.csv"), estimateRows(it)); err != nil {
			return err
		}
		if err := writeCSV(filepath.Join(iterDir, "filter_state.csv"), stateRows(it.State)); err != nil {
			return err
		}

		summary = append(summary, []string{
			strconv.Itoa(it.Param),
			strconv.Itoa(it.Width),
			strconv.Itoa(it.StreamSize),
			strconv.Itoa(len(it.Actual)),
			strconv.FormatFloat(it.MeanError, 'f', 6, 64),
		})
	}

	return writeCSV(filepath.Join(dir, "summary.csv"), summary)
}

func estimateRows(it Iteration) [][]string {
	keys := make([]string, 0, len(it.Actual))
	for k := range it.Actual {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	rows := [][]string{{"key", "actualCounts", "estimatedCounts"}}
	for _, k := range keys {
		rows = append(rows, []string{
			k,
			strconv.FormatUint(it.Actual[k], 10),
			strconv.FormatUint(it.Estimates[k], 10),
		})
	}
	return rows
}

func stateRows(state [][]uint64) [][]string {
	rows := make([][]string, len(state))
	for i, row := range state {
		rows[i] = make([]string, len(row))
		for j, c := range row {
			rows[i][j] = strconv.FormatUint(c, 10)
		}
	}
	return rows
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err = w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// runAndWrite runs e and writes its results, logging one line per iteration.
func runAndWrite(e *Experiment) error {
	log := logger.WithFields(logger.Fields{
		"experiment": e.Name,
		"structure":  e.Structure,
		"sweep":      e.Sweep,
		"output":     e.OutputDir,
	})
	log.Infof("running %d-hash %s sweep over [%d, %d) step %d", e.NumHashFunctions, e.Sweep, e.Min, e.Max, e.Step)

	its, err := e.Run()
	if err != nil {
		return err
	}

	for _, it := range its {
		log.WithFields(logger.Fields{
			"width":      it.Width,
			"streamSize": it.StreamSize,
		}).Debugf("mean error %.4f", it.MeanError)
	}

	if err = WriteResults(e.OutputDir, e.Sweep, its); err != nil {
		return err
	}

	log.Infof("wrote %d iterations", len(its))
	return nil
}
