package pdfparse

import (
	"testing"

	"github.com/jlmessenger/pdf-lib/pdfval"
)

func parseOne(t *testing.T, src string) pdfval.Value {
	t.Helper()
	v, err := NewObjectParser([]byte(src)).ParseValue()
	if err != nil {
		t.Fatalf("ParseValue(%q): %v", src, err)
	}
	return v
}

func TestParseScalars(t *testing.T) {
	if got := parseOne(t, "null"); !pdfval.IsNull(got) {
		t.Errorf("null: got %v", got)
	}
	if got := parseOne(t, "true"); got != pdfval.Bool(true) {
		t.Errorf("true: got %v", got)
	}
	if got := parseOne(t, "42"); got != pdfval.Int(42) {
		t.Errorf("42: got %v", got)
	}
	if got := parseOne(t, "-3.14"); got != pdfval.Real(-3.14) {
		t.Errorf("-3.14: got %v", got)
	}
	if got := parseOne(t, "/Name#20With#20Spaces"); got != pdfval.Name("Name With Spaces") {
		t.Errorf("name: got %v", got)
	}
}

func TestParseIndirectReference(t *testing.T) {
	got := parseOne(t, "12 0 R")
	ref, ok := got.(pdfval.Ref)
	if !ok || ref.Number != 12 || ref.Generation != 0 {
		t.Errorf("ref: got %v", got)
	}
}

func TestParseBareIntegerNotMistakenForRef(t *testing.T) {
	got := parseOne(t, "12")
	if got != pdfval.Int(12) {
		t.Errorf("expected bare Int, got %v", got)
	}
}

func TestParseArray(t *testing.T) {
	got := parseOne(t, "[1 2.5 (hi) /X]")
	arr, ok := got.(pdfval.Array)
	if !ok || len(arr) != 4 {
		t.Fatalf("array: got %v", got)
	}
	if arr[0] != pdfval.Int(1) || arr[1] != pdfval.Real(2.5) {
		t.Errorf("array contents: %v", arr)
	}
}

func TestParseDict(t *testing.T) {
	got := parseOne(t, "<< /Type /Page /Count 3 >>")
	d, ok := got.(pdfval.Dict)
	if !ok {
		t.Fatalf("expected dict, got %v", got)
	}
	if d.Get("Type") != pdfval.Name("Page") || d.Get("Count") != pdfval.Int(3) {
		t.Errorf("dict contents wrong: %v", d)
	}
}

func TestParseDictNullEntryOmitted(t *testing.T) {
	got := parseOne(t, "<< /A null /B 1 >>")
	d := got.(pdfval.Dict)
	if d.Has("A") {
		t.Error("null-valued entry should be omitted, per 7.3.7")
	}
	if !d.Has("B") {
		t.Error("expected B to be present")
	}
}

func TestParseHexString(t *testing.T) {
	got := parseOne(t, "<48656C6C6F>")
	s, ok := got.(pdfval.String)
	if !ok || s.Kind != pdfval.HexString || string(s.Bytes) != "Hello" {
		t.Errorf("hex string: got %v", got)
	}
}
