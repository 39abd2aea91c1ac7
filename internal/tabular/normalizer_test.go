package tabular

import (
	"errors"
	"testing"
)

func stringColumn(name string, cells []string) Column {
	col := Column{
		Name:    name,
		Kind:    KindString,
		Strings: make([]string, len(cells)),
		Nulls:   make([]bool, len(cells)),
	}
	for i, cell := range cells {
		if isMissingToken(cell) {
			col.Nulls[i] = true
			continue
		}
		col.Strings[i] = cell
	}
	return col
}

func TestNormalizeConvertsNumericStrings(t *testing.T) {
	in := NewTable()
	in.AddColumn(stringColumn("launch_speed", []string{"98.5", "101.2", ""}))
	in.AddColumn(stringColumn("park", []string{"Fenway", "Wrigley", "Coors"}))

	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}

	col, ok := out.Col("launch_speed")
	if !ok {
		t.Fatal("launch_speed column missing after normalization")
	}
	if col.Kind != KindNumeric {
		t.Fatalf("launch_speed kind = %v, want numeric", col.Kind)
	}
	if v, present := col.FloatAt(0); !present || v != 98.5 {
		t.Fatalf("launch_speed[0] = %v present=%v, want 98.5", v, present)
	}
	if _, present := col.FloatAt(2); present {
		t.Fatal("launch_speed[2] should be null")
	}

	park, _ := out.Col("park")
	if park.Kind != KindString {
		t.Fatalf("park kind = %v, want string", park.Kind)
	}
}

func TestNormalizeLeavesMixedColumnsAsStrings(t *testing.T) {
	in := NewTable()
	in.AddColumn(stringColumn("wind_dir_string", []string{"out", "12", "in"}))

	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	col, _ := out.Col("wind_dir_string")
	if col.Kind != KindString {
		t.Fatalf("mixed column converted to %v, want string", col.Kind)
	}
}

func TestNormalizeNarrowsIntegralFloats(t *testing.T) {
	in := NewTable()
	in.AddColumn(stringColumn("hr_outcome", []string{"0", "1", "0", "1"}))
	in.AddColumn(stringColumn("temp", []string{"70.5", "68", "72.25", "71"}))

	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	label, _ := out.Col("hr_outcome")
	if label.Kind != KindInteger {
		t.Fatalf("hr_outcome kind = %v, want integer", label.Kind)
	}
	temp, _ := out.Col("temp")
	if temp.Kind != KindNumeric {
		t.Fatalf("temp kind = %v, want numeric", temp.Kind)
	}
}

func TestNormalizeDropsAllNullColumns(t *testing.T) {
	in := NewTable()
	in.AddColumn(stringColumn("humidity", []string{"55", "60"}))
	in.AddColumn(stringColumn("empty", []string{"", "nan"}))

	out, err := Normalize(in)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if out.HasColumn("empty") {
		t.Fatal("all-null column survived normalization")
	}
	if !out.HasColumn("humidity") {
		t.Fatal("humidity column dropped")
	}
}

func TestNormalizeRejectsDuplicateColumns(t *testing.T) {
	in := NewTable()
	in.AddColumn(stringColumn("temp", []string{"70"}))
	in.AddColumn(stringColumn("temp", []string{"71"}))

	_, err := Normalize(in)
	if !errors.Is(err, ErrDuplicateColumns) {
		t.Fatalf("err = %v, want ErrDuplicateColumns", err)
	}
}

func TestNormalizeRejectsEmptyTable(t *testing.T) {
	in := NewTable()
	in.AddColumn(stringColumn("empty", []string{"", ""}))

	_, err := Normalize(in)
	if !errors.Is(err, ErrEmptyTable) {
		t.Fatalf("err = %v, want ErrEmptyTable", err)
	}
}

func TestMissingTokens(t *testing.T) {
	for _, token := range []string{"", "  ", "NA", "n/a", "NaN", "null", "None"} {
		if !isMissingToken(token) {
			t.Errorf("isMissingToken(%q) = false, want true", token)
		}
	}
	for _, token := range []string{"0", "out", "-1"} {
		if isMissingToken(token) {
			t.Errorf("isMissingToken(%q) = true, want false", token)
		}
	}
}
