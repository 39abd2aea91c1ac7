package tabular

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/go-gota/gota/dataframe"
	"github.com/sirupsen/logrus"
	"github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/common"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/source"
)

// parquetReadParallelism bounds the parquet reader's worker count.
const parquetReadParallelism = 4

// Loader reads raw tables from local files or HTTP(S) sources. Format is
// sniffed from the source name: a .parquet suffix selects the columnar
// reader, everything else is parsed as delimited text with a Latin-1
// fallback when the bytes are not valid UTF-8.
type Loader struct {
	fetcher *Fetcher
	logger  *logrus.Logger
}

// NewLoader creates a loader with the default HTTP fetcher.
func NewLoader(logger *logrus.Logger) *Loader {
	return NewLoaderWithConfig(DefaultFetcherConfig(), logger)
}

// NewLoaderWithConfig creates a loader with a custom fetcher configuration.
func NewLoaderWithConfig(cfg FetcherConfig, logger *logrus.Logger) *Loader {
	return &Loader{
		fetcher: NewFetcher(cfg, logger),
		logger:  logger,
	}
}

// Load reads one table from the given source.
func (l *Loader) Load(ctx context.Context, src string) (*Table, error) {
	if isRemote(src) {
		data, err := l.fetcher.Fetch(ctx, src)
		if err != nil {
			return nil, err
		}
		if isParquetSource(src) {
			return l.readParquetBytes(data)
		}
		return l.readCSVBytes(data)
	}

	if isParquetSource(src) {
		fr, err := local.NewLocalFileReader(src)
		if err != nil {
			return nil, fmt.Errorf("failed to open parquet file %s: %w", src, err)
		}
		defer fr.Close()
		return l.readParquet(fr)
	}

	data, err := os.ReadFile(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", src, err)
	}
	return l.readCSVBytes(data)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func isParquetSource(src string) bool {
	name := src
	if isRemote(src) {
		if u, err := url.Parse(src); err == nil {
			name = u.Path
		}
	}
	return strings.EqualFold(filepath.Ext(name), ".parquet")
}

// readCSVBytes parses delimited text. Invalid UTF-8 input is transcoded from
// Latin-1 before parsing, mirroring the fallback encoding of the upload flow.
func (l *Loader) readCSVBytes(data []byte) (*Table, error) {
	if !utf8.Valid(data) {
		l.logger.Warn("Input is not valid UTF-8, falling back to Latin-1 decoding")
		data = latin1ToUTF8(data)
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, df.Err)
	}

	records := df.Records()
	if len(records) < 2 {
		return nil, ErrEmptyTable
	}
	header := records[0]
	rows := records[1:]

	t := NewTable()
	for j, name := range header {
		col := Column{
			Name:    name,
			Kind:    KindString,
			Strings: make([]string, len(rows)),
			Nulls:   make([]bool, len(rows)),
		}
		for i, row := range rows {
			cell := ""
			if j < len(row) {
				cell = row[j]
			}
			if isMissingToken(cell) {
				col.Nulls[i] = true
				continue
			}
			col.Strings[i] = cell
		}
		t.AddColumn(col)
	}
	return t, nil
}

func latin1ToUTF8(data []byte) []byte {
	out := make([]rune, len(data))
	for i, b := range data {
		out[i] = rune(b)
	}
	return []byte(string(out))
}

func (l *Loader) readParquetBytes(data []byte) (*Table, error) {
	fr := buffer.NewBufferFileFromBytes(data)
	defer fr.Close()
	return l.readParquet(fr)
}

// readParquet reads an arbitrary-schema parquet file through the column
// reader, one leaf column at a time.
func (l *Loader) readParquet(fr source.ParquetFile) (*Table, error) {
	pr, err := reader.NewParquetColumnReader(fr, parquetReadParallelism)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer pr.ReadStop()

	numRows := pr.GetNumRows()
	t := NewTable()
	for _, inPath := range pr.SchemaHandler.ValueColumns {
		values, _, dls, err := pr.ReadColumnByPath(inPath, numRows)
		if err != nil {
			return nil, fmt.Errorf("failed to read parquet column %s: %w", inPath, err)
		}
		maxDL, err := pr.SchemaHandler.MaxDefinitionLevel(common.StrToPath(inPath))
		if err != nil {
			return nil, fmt.Errorf("failed to resolve parquet column %s: %w", inPath, err)
		}
		t.AddColumn(parquetColumn(columnName(pr, inPath), values, dls, maxDL, int(numRows)))
	}
	if t.NumCols() == 0 || t.NumRows() == 0 {
		return nil, ErrEmptyTable
	}
	return t, nil
}

// columnName maps the reader's internal column path back to the external
// field name recorded in the file schema.
func columnName(pr *reader.ParquetReader, inPath string) string {
	path := inPath
	if exPath, ok := pr.SchemaHandler.InPathToExPath[inPath]; ok {
		path = exPath
	}
	segments := common.StrToPath(path)
	return segments[len(segments)-1]
}

// parquetColumn assembles one column from the reader's packed values and
// definition levels. Values are present only for entries whose definition
// level equals the leaf maximum; all other entries are nulls.
func parquetColumn(name string, values []interface{}, dls []int32, maxDL int32, numRows int) Column {
	col := Column{Name: name, Nulls: make([]bool, numRows)}
	numeric := true
	cells := make([]interface{}, numRows)
	vi := 0
	for i := 0; i < numRows && i < len(dls); i++ {
		if dls[i] != maxDL || vi >= len(values) {
			col.Nulls[i] = true
			continue
		}
		cells[i] = values[vi]
		vi++
		switch cells[i].(type) {
		case int32, int64, float32, float64:
		default:
			numeric = false
		}
	}
	for i := len(dls); i < numRows; i++ {
		col.Nulls[i] = true
	}

	if numeric {
		col.Kind = KindNumeric
		col.Floats = make([]float64, numRows)
		for i, cell := range cells {
			if col.Nulls[i] {
				continue
			}
			switch v := cell.(type) {
			case int32:
				col.Floats[i] = float64(v)
			case int64:
				col.Floats[i] = float64(v)
			case float32:
				col.Floats[i] = float64(v)
			case float64:
				col.Floats[i] = v
			}
		}
		return col
	}

	col.Kind = KindString
	col.Strings = make([]string, numRows)
	for i, cell := range cells {
		if col.Nulls[i] {
			continue
		}
		switch v := cell.(type) {
		case string:
			col.Strings[i] = v
		case []byte:
			col.Strings[i] = string(v)
		case bool:
			if v {
				col.Strings[i] = "true"
			} else {
				col.Strings[i] = "false"
			}
		default:
			col.Strings[i] = fmt.Sprintf("%v", v)
		}
		if isMissingToken(col.Strings[i]) {
			col.Strings[i] = ""
			col.Nulls[i] = true
		}
	}
	return col
}
