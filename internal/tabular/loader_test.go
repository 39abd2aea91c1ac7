package tabular

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/writer"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(&bytes.Buffer{})
	return log
}

func TestLoadCSVFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.csv")
	csv := "player_name,launch_speed,hr_outcome\nAaron Judge,101.2,1\nLuis Arraez,88.4,0\n"
	if err := os.WriteFile(path, []byte(csv), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(testLogger())
	table, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.NumRows() != 2 || table.NumCols() != 3 {
		t.Fatalf("got %dx%d table, want 2x3", table.NumRows(), table.NumCols())
	}
	col, ok := table.Col("player_name")
	if !ok {
		t.Fatal("player_name column missing")
	}
	if col.StringAt(0) != "Aaron Judge" {
		t.Fatalf("player_name[0] = %q", col.StringAt(0))
	}
}

func TestLoadCSVLatin1Fallback(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "event.csv")
	// "José" encoded in Latin-1: 0xE9 is not valid UTF-8.
	data := []byte("player_name,hr_outcome\nJos\xe9 Ram\xedrez,1\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	loader := NewLoader(testLogger())
	table, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	col, _ := table.Col("player_name")
	if col.StringAt(0) != "José Ramírez" {
		t.Fatalf("player_name[0] = %q, want José Ramírez", col.StringAt(0))
	}
}

func TestLoadCSVMissingTokensBecomeNulls(t *testing.T) {
	loader := NewLoader(testLogger())
	table, err := loader.readCSVBytes([]byte("a,b\n1,NA\n,2\n"))
	if err != nil {
		t.Fatalf("readCSVBytes returned error: %v", err)
	}
	a, _ := table.Col("a")
	b, _ := table.Col("b")
	if !b.Nulls[0] {
		t.Fatal("NA cell not marked null")
	}
	if !a.Nulls[1] {
		t.Fatal("empty cell not marked null")
	}
}

func TestLoadCSVEmptyInput(t *testing.T) {
	loader := NewLoader(testLogger())
	if _, err := loader.readCSVBytes([]byte("a,b\n")); err == nil {
		t.Fatal("expected error for header-only input")
	}
}

func TestLoadRemoteCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("player_name,temp\nMatt Olson,81\n"))
	}))
	defer srv.Close()

	loader := NewLoader(testLogger())
	table, err := loader.Load(context.Background(), srv.URL+"/today.csv")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.NumRows() != 1 {
		t.Fatalf("got %d rows, want 1", table.NumRows())
	}
}

func TestLoadRemoteErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	cfg := DefaultFetcherConfig()
	cfg.MaxRetries = 0
	loader := NewLoaderWithConfig(cfg, testLogger())
	if _, err := loader.Load(context.Background(), srv.URL+"/missing.csv"); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

type parquetFixtureRow struct {
	PlayerName  string  `parquet:"name=player_name, type=BYTE_ARRAY, convertedtype=UTF8"`
	LaunchSpeed float64 `parquet:"name=launch_speed, type=DOUBLE"`
}

func writeParquetFixture(t *testing.T, path string) {
	t.Helper()
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	pw, err := writer.NewParquetWriter(fw, new(parquetFixtureRow), 1)
	if err != nil {
		t.Fatal(err)
	}
	rows := []parquetFixtureRow{
		{PlayerName: "Matt Wallner", LaunchSpeed: 104.3},
		{PlayerName: "Trenton Brooks", LaunchSpeed: 97.8},
	}
	for _, r := range rows {
		if err := pw.Write(r); err != nil {
			t.Fatal(err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		t.Fatal(err)
	}
	if err := fw.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestLoadParquetFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "today.parquet")
	writeParquetFixture(t, path)

	loader := NewLoader(testLogger())
	table, err := loader.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.NumRows() != 2 || table.NumCols() != 2 {
		t.Fatalf("got %dx%d table, want 2x2", table.NumRows(), table.NumCols())
	}
	name, ok := table.Col("player_name")
	if !ok {
		t.Fatal("player_name column missing")
	}
	if name.StringAt(0) != "Matt Wallner" {
		t.Fatalf("player_name[0] = %q", name.StringAt(0))
	}
	speed, ok := table.Col("launch_speed")
	if !ok || !speed.IsNumeric() {
		t.Fatal("launch_speed should be a numeric column")
	}
	if v, present := speed.FloatAt(1); !present || v != 97.8 {
		t.Fatalf("launch_speed[1] = %v (%v)", v, present)
	}
}

func TestLoadRemoteParquet(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "today.parquet")
	writeParquetFixture(t, path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	loader := NewLoader(testLogger())
	table, err := loader.Load(context.Background(), srv.URL+"/today.parquet")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if table.NumRows() != 2 {
		t.Fatalf("got %d rows, want 2", table.NumRows())
	}
	name, _ := table.Col("player_name")
	if name.StringAt(1) != "Trenton Brooks" {
		t.Fatalf("player_name[1] = %q", name.StringAt(1))
	}
}

func TestIsParquetSource(t *testing.T) {
	cases := map[string]bool{
		"data/event.parquet":                     true,
		"data/Event.PARQUET":                     true,
		"data/event.csv":                         false,
		"https://example.com/t.parquet?sig=abc":  true,
		"https://example.com/t.csv":              false,
	}
	for src, want := range cases {
		if got := isParquetSource(src); got != want {
			t.Errorf("isParquetSource(%q) = %v, want %v", src, got, want)
		}
	}
}
