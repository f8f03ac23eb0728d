package obs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ReadCSV reads a table with a header row. Every record becomes one
// (len(columns) by 1) observation built from the named columns, in order.
// Without columns every column is used. Empty cells read as NaN.
func ReadCSV(r io.Reader, columns []string) (Sequence, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrNoColumns)
	}
	if err != nil {
		return nil, err
	}
	indices, err := selectColumns(header, columns)
	if err != nil {
		return nil, err
	}

	var out Sequence
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		values := make([]float64, len(indices))
		for i, index := range indices {
			cell := strings.TrimSpace(record[index])
			if cell == "" {
				values[i] = math.NaN()
				continue
			}
			if values[i], err = strconv.ParseFloat(cell, 64); err != nil {
				return nil, fmt.Errorf("line %d, column %q: %w", line, header[index], err)
			}
		}
		out = append(out, mat.NewDense(len(values), 1, values))
	}
	return out, nil
}

// ReadCSVFile is ReadCSV on the named file.
func ReadCSVFile(path string, columns []string) (Sequence, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f, columns)
}

func selectColumns(header, columns []string) ([]int, error) {
	if len(columns) == 0 {
		if len(header) == 0 {
			return nil, ErrNoColumns
		}
		out := make([]int, len(header))
		for i := range out {
			out[i] = i
		}
		return out, nil
	}
	positions := make(map[string]int, len(header))
	for i, name := range header {
		positions[strings.TrimSpace(name)] = i
	}
	out := make([]int, len(columns))
	for i, name := range columns {
		index, ok := positions[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q not in header", ErrNoColumns, name)
		}
		out[i] = index
	}
	return out, nil
}
