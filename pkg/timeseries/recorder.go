// Package timeseries collects the named (time, value) series a run emits and
// writes them to the output artifact at run end. Series keep their creation
// order so artifacts from identical runs are byte-identical.
package timeseries

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/golang/snappy"
)

// Sample is a single (time, value) observation.
type Sample struct {
	Time  float64
	Value float64
}

// Recorder accumulates append-only named series.
type Recorder struct {
	names  []string
	series map[string][]Sample
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{series: make(map[string][]Sample)}
}

// Append adds a sample to the named series, creating it on first use.
func (r *Recorder) Append(name string, t, v float64) {
	if _, exists := r.series[name]; !exists {
		r.names = append(r.names, name)
	}
	r.series[name] = append(r.series[name], Sample{Time: t, Value: v})
}

// Names returns the series names in creation order.
func (r *Recorder) Names() []string {
	return r.names
}

// Series returns the samples of a named series, nil if it does not exist.
func (r *Recorder) Series(name string) []Sample {
	return r.series[name]
}

// WriteCSV writes all series as rows of (series, time, value).
func (r *Recorder) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"series", "time", "value"}); err != nil {
		return err
	}

	for _, name := range r.names {
		for _, s := range r.series[name] {
			row := []string{
				name,
				strconv.FormatFloat(s.Time, 'g', -1, 64),
				strconv.FormatFloat(s.Value, 'g', -1, 64),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteFile writes the artifact to disk, snappy-framed when compress is set.
func (r *Recorder) WriteFile(path string, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create artifact: %w", err)
	}
	defer f.Close()

	if compress {
		sw := snappy.NewBufferedWriter(f)
		if err := r.WriteCSV(sw); err != nil {
			return err
		}
		return sw.Close()
	}

	bw := bufio.NewWriter(f)
	if err := r.WriteCSV(bw); err != nil {
		return err
	}
	return bw.Flush()
}

// ReadFile loads an artifact back into a recorder, for post-run analysis and
// tests. Set compressed to match how the artifact was written.
func ReadFile(path string, compressed bool) (*Recorder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer f.Close()

	var src io.Reader = f
	if compressed {
		src = snappy.NewReader(f)
	}

	cr := csv.NewReader(src)
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse artifact: %w", err)
	}

	rec := NewRecorder()
	for i, row := range rows {
		if i == 0 {
			continue // header
		}
		if len(row) != 3 {
			return nil, fmt.Errorf("artifact row %d has %d fields", i, len(row))
		}
		t, err := strconv.ParseFloat(row[1], 64)
		if err != nil {
			return nil, fmt.Errorf("artifact row %d time: %w", i, err)
		}
		v, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("artifact row %d value: %w", i, err)
		}
		rec.Append(row[0], t, v)
	}
	return rec, nil
}
