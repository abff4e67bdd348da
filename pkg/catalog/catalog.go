// Package catalog loads scenario tables from CSV, JSON and Parquet files.
//
// A catalog has one row per scenario with the columns
//
//	name     scenario name, used for the fixture file names
//	input    text fed to the program, may be empty
//	output   expected output, may be empty
//	program  UM assembly source
//
// Every program is assembled while loading, so a catalog that loads cleanly
// only holds valid programs.
package catalog

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"

	"github.com/akhildatla/umlab/pkg/assembler"
	"github.com/akhildatla/umlab/pkg/scenario"
	"github.com/akhildatla/umlab/pkg/um"
)

// Column names.
const (
	ColumnName    = "name"
	ColumnInput   = "input"
	ColumnOutput  = "output"
	ColumnProgram = "program"
)

var (
	ErrEmptyCatalog      = errors.New("catalog has no scenarios")
	ErrMissingColumn     = errors.New("catalog is missing a column")
	ErrUnsupportedFormat = errors.New("unsupported catalog format")
)

// Load reads a catalog, choosing the format from the file extension.
func Load(path string) ([]scenario.Scenario, error) {
	var (
		df  *dataframe.DataFrame
		err error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		df, err = LoadCSV(path)
	case ".json":
		df, err = LoadJSON(path)
	case ".parquet":
		df, err = LoadParquet(path)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}

	scs, err := FromDataFrame(df)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return scs, nil
}

// FromDataFrame converts catalog rows into scenarios.
func FromDataFrame(df *dataframe.DataFrame) ([]scenario.Scenario, error) {
	if df == nil || len(df.Series) == 0 || df.NRows() == 0 {
		return nil, ErrEmptyCatalog
	}

	nameCol, err := column(df, ColumnName, true)
	if err != nil {
		return nil, err
	}
	programCol, err := column(df, ColumnProgram, true)
	if err != nil {
		return nil, err
	}
	inputCol, _ := column(df, ColumnInput, false)
	outputCol, _ := column(df, ColumnOutput, false)

	rows := df.NRows()
	scs := make([]scenario.Scenario, 0, rows)
	for row := 0; row < rows; row++ {
		name := cell(nameCol, row)
		if name == "" {
			return nil, fmt.Errorf("row %d: empty name", row+1)
		}

		s, err := assembler.Assemble(cell(programCol, row))
		if err != nil {
			return nil, fmt.Errorf("row %d (%s): %w", row+1, name, err)
		}

		scs = append(scs, scenario.Scenario{
			Name:   name,
			Input:  cell(inputCol, row),
			Output: cell(outputCol, row),
			Build:  appendWords(s.Words()),
		})
	}
	return scs, nil
}

func appendWords(words []um.Instruction) scenario.Builder {
	return func(s *um.Stream) {
		for _, w := range words {
			s.Append(w)
		}
	}
}

func column(df *dataframe.DataFrame, name string, required bool) (dataframe.Series, error) {
	idx, err := df.NameToColumn(name)
	if err != nil {
		if required {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		return nil, nil
	}
	return df.Series[idx], nil
}

// cell returns the text of a cell. Missing columns and nil values read as "".
func cell(s dataframe.Series, row int) string {
	if s == nil {
		return ""
	}
	switch v := s.Value(row).(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
