package fixture

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/exports"
	"github.com/xitongsys/parquet-go-source/local"
)

// Manifest column names.
const (
	ManifestName   = "name"
	ManifestWords  = "words"
	ManifestBytes  = "bytes"
	ManifestInput  = "input"
	ManifestOutput = "output"
	ManifestError  = "error"
)

// Manifest tabulates run results, one row per result.
// input and output are 1 when the file was written, 0 otherwise.
func Manifest(results []Result) *dataframe.DataFrame {
	n := len(results)
	var (
		names  = make([]interface{}, n)
		words  = make([]interface{}, n)
		size   = make([]interface{}, n)
		input  = make([]interface{}, n)
		output = make([]interface{}, n)
		errs   = make([]interface{}, n)
	)
	for i, r := range results {
		names[i] = r.Name
		words[i] = int64(r.Words)
		size[i] = int64(r.Bytes())
		input[i] = flag(r.Input)
		output[i] = flag(r.Output)
		errs[i] = ""
		if r.Err != nil {
			errs[i] = r.Err.Error()
		}
	}

	return dataframe.NewDataFrame(
		dataframe.NewSeriesString(ManifestName, nil, names...),
		dataframe.NewSeriesInt64(ManifestWords, nil, words...),
		dataframe.NewSeriesInt64(ManifestBytes, nil, size...),
		dataframe.NewSeriesInt64(ManifestInput, nil, input...),
		dataframe.NewSeriesInt64(ManifestOutput, nil, output...),
		dataframe.NewSeriesString(ManifestError, nil, errs...),
	)
}

func flag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// WriteManifest exports the manifest to path as CSV, JSON or Parquet,
// chosen by extension.
func WriteManifest(path string, results []Result) error {
	df := Manifest(results)
	ctx := context.Background()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := exports.ExportToCSV(ctx, f, df); err != nil {
			f.Close()
			return fmt.Errorf("writing manifest: %w", err)
		}
		return f.Close()

	case ".json":
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		if err := exports.ExportToJSON(ctx, f, df); err != nil {
			f.Close()
			return fmt.Errorf("writing manifest: %w", err)
		}
		return f.Close()

	case ".parquet":
		fw, err := local.NewLocalFileWriter(path)
		if err != nil {
			return err
		}
		if err := exports.ExportToParquet(ctx, fw, df); err != nil {
			fw.Close()
			return fmt.Errorf("writing manifest: %w", err)
		}
		return fw.Close()

	default:
		return fmt.Errorf("manifest %s: unsupported format", path)
	}
}
