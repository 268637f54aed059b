package colors

import (
	"encoding/json"
	"reflect"
	"sync"
	"testing"
)

func TestTableMerge(t *testing.T) {
	table := NewTable()
	table.Merge(map[string]string{"A": "#ff0000"})
	table.Merge(map[string]string{"B": "#00ff00"})

	want := map[string]string{"A": "#ff0000", "B": "#00ff00"}
	if got := table.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Snapshot() = %v, want %v", got, want)
	}

	table.Merge(map[string]string{"A": "#0000ff"})
	want["A"] = "#0000ff"
	if got := table.Snapshot(); !reflect.DeepEqual(got, want) {
		t.Fatalf("after overwrite Snapshot() = %v, want %v", got, want)
	}
}

func TestTableMergeIgnoresInvalid(t *testing.T) {
	table := NewTable()
	table.Set("A", "#111111")
	n := table.Merge(map[string]string{"A": "red", "B": "", "C": "#222222"})
	if n != 1 {
		t.Errorf("Merge() = %d, want 1", n)
	}
	if got := table.Get("A"); got != "#111111" {
		t.Errorf("A = %q, want unchanged", got)
	}
	if _, ok := table.Lookup("B"); ok {
		t.Error("B should not be added")
	}
}

func TestTableSeed(t *testing.T) {
	table := NewTable()
	if !table.Seed("A", "") {
		t.Fatal("Seed() on new id = false")
	}
	if got := table.Get("A"); got != DefaultFill {
		t.Errorf("seeded empty fill = %q, want %q", got, DefaultFill)
	}
	table.Set("B", "#abcdef")
	if table.Seed("B", "#000000") {
		t.Error("Seed() overwrote existing entry")
	}
	if got := table.Get("B"); got != "#abcdef" {
		t.Errorf("B = %q", got)
	}
	if got := table.Get("missing"); got != DefaultFill {
		t.Errorf("Get(missing) = %q", got)
	}
}

func TestTableConcurrent(t *testing.T) {
	table := NewTable()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				table.Merge(map[string]string{"A": "#000000"})
				table.Seed("B", "#ffffff")
				_ = table.Get("A")
			}
		}()
	}
	wg.Wait()
	if table.Len() != 2 {
		t.Errorf("Len() = %d, want 2", table.Len())
	}
}

func TestParseState(t *testing.T) {
	tests := []struct {
		raw  string
		want State
	}{
		{`1`, Idle},
		{`2`, Running},
		{`3`, Success},
		{`4`, Failure},
		{`0`, Idle},
		{`7`, Unknown},
		{`-1`, Unknown},
		{`"success"`, Success},
		{`" Failure "`, Failure},
		{`"3"`, Success},
		{`"bogus"`, Unknown},
		{`true`, Unknown},
		{`null`, Unknown},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			if got := ParseState(json.RawMessage(tt.raw)); got != tt.want {
				t.Errorf("ParseState(%s) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStateColor(t *testing.T) {
	if got := Success.Color(); got != "#46d160" {
		t.Errorf("Success.Color() = %q", got)
	}
	if got := Unknown.Color(); got != UnknownFill {
		t.Errorf("Unknown.Color() = %q", got)
	}
	if got := Failure.String(); got != "FAILURE" {
		t.Errorf("Failure.String() = %q", got)
	}
}
