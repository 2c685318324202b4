package dxf

import (
	"errors"
	"reflect"
	"testing"
)

func st(code int, v string) Tag  { return NewTag(code, Str(v)) }
func fl(code int, v float64) Tag { return NewTag(code, Float(v)) }
func in(code int, v int64) Tag   { return NewTag(code, Int(v)) }

// ============================================================
// Classification
// ============================================================

func TestClassify_NoClassOnly(t *testing.T) {
	ct, err := Classify(Tags{st(0, "LINE")})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(ct.Subclasses) != 1 {
		t.Fatalf("expected 1 group, got %d", len(ct.Subclasses))
	}
	if !reflect.DeepEqual(ct.NoClass(), Tags{st(0, "LINE")}) {
		t.Errorf("noclass = %v", ct.NoClass())
	}
	if len(ct.AppData) != 0 || len(ct.XData) != 0 {
		t.Errorf("expected no appdata/xdata, got %v / %v", ct.AppData, ct.XData)
	}
	typ, err := ct.GetType()
	if err != nil || typ != "LINE" {
		t.Errorf("GetType = %q, %v", typ, err)
	}
}

func TestClassify_Empty(t *testing.T) {
	ct, err := Classify(nil)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if ct.NoClass() == nil || len(ct.NoClass()) != 0 {
		t.Errorf("expected empty non-nil noclass, got %#v", ct.NoClass())
	}
	if _, err := ct.GetType(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetType on empty run: expected ErrNotFound, got %v", err)
	}
	if ct.Len() != 0 {
		t.Errorf("Len = %d", ct.Len())
	}
}

func reactorRun() Tags {
	return Tags{
		st(0, "LINE"),
		st(5, "1F"),
		st(100, "AcDbEntity"),
		st(102, "{ACAD_REACTORS"),
		st(330, "1A"),
		st(330, "1B"),
		st(102, "}"),
		st(8, "walls"),
		st(100, "AcDbLine"),
		fl(10, 1),
		fl(20, 2),
		fl(30, 0),
	}
}

func TestClassify_AppDataInSubclass(t *testing.T) {
	ct, err := Classify(reactorRun())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	entity, err := ct.GetSubclass("AcDbEntity")
	if err != nil {
		t.Fatalf("GetSubclass failed: %v", err)
	}
	want := Tags{st(100, "AcDbEntity"), in(102, 0), st(8, "walls")}
	if !reflect.DeepEqual(entity, want) {
		t.Errorf("AcDbEntity = %v, want %v", entity, want)
	}
	if !IsAppDataPlaceholder(entity[1]) {
		t.Errorf("expected placeholder at position 1, got %v", entity[1])
	}

	reactors, err := ct.GetAppData("{ACAD_REACTORS")
	if err != nil {
		t.Fatalf("GetAppData failed: %v", err)
	}
	if len(reactors) != 4 || reactors[3] != st(102, "}") {
		t.Errorf("reactors = %v", reactors)
	}

	if got := ct.Tags(); !reflect.DeepEqual(got, reactorRun()) {
		t.Errorf("reconstruction mismatch:\ngot  %v\nwant %v", got, reactorRun())
	}
	if names := ct.SubclassNames(); !reflect.DeepEqual(names, []string{"AcDbEntity", "AcDbLine"}) {
		t.Errorf("SubclassNames = %v", names)
	}
}

func TestClassify_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		tags Tags
	}{
		{"empty", Tags{}},
		{"noclass", Tags{st(0, "POINT"), st(8, "0"), fl(10, 1)}},
		{"appdata in noclass", Tags{
			st(0, "LINE"), st(102, "{ACAD_XDICTIONARY"), st(360, "2A"), st(102, "}"), st(8, "0"),
		}},
		{"subclasses", reactorRun()},
		{"xdata", Tags{
			st(0, "LINE"), st(100, "AcDbEntity"), st(8, "0"),
			st(1001, "APP1"), st(1000, "hello"), in(1070, 3),
			st(1001, "APP2"), fl(1040, 2.5),
		}},
		{"appdata then xdata", Tags{
			st(0, "CIRCLE"),
			st(102, "{A"), st(1, "a"), st(102, "}"),
			st(100, "AcDbEntity"),
			st(102, "{B"), st(1, "b"), st(102, "}"),
			st(102, "{C"), st(102, "}"),
			st(100, "AcDbCircle"), fl(40, 3),
			st(1001, "APP"), st(1002, "{"), st(1002, "}"),
		}},
		{"stray appdata close", Tags{st(0, "LINE"), st(102, "}"), st(8, "0")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := Classify(tt.tags)
			if err != nil {
				t.Fatalf("Classify failed: %v", err)
			}
			got := ct.Tags()
			if len(got) != len(tt.tags) {
				t.Fatalf("expected %d tags, got %d", len(tt.tags), len(got))
			}
			for i := range got {
				if got[i] != tt.tags[i] {
					t.Errorf("tag %d: got %v, want %v", i, got[i], tt.tags[i])
				}
			}
			if ct.Len() != len(tt.tags) {
				t.Errorf("Len = %d, want %d", ct.Len(), len(tt.tags))
			}

			// Placeholders always resolve.
			for _, group := range ct.Subclasses {
				for _, tag := range group {
					if IsAppDataPlaceholder(tag) && int(tag.Value.AsInt()) >= len(ct.AppData) {
						t.Errorf("dangling placeholder %v", tag)
					}
				}
			}

			again, err := Classify(tt.tags)
			if err != nil {
				t.Fatalf("second Classify failed: %v", err)
			}
			if !ct.Equal(again) {
				t.Errorf("classification is not deterministic")
			}
		})
	}
}

func TestClassify_IterationIsRestartable(t *testing.T) {
	ct, err := Classify(reactorRun())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	var first Tags
	for tag := range ct.All() {
		first = append(first, tag)
		if len(first) == 5 {
			break
		}
	}
	if !reflect.DeepEqual(first, reactorRun()[:5]) {
		t.Errorf("partial iteration = %v", first)
	}

	var second Tags
	for tag := range ct.All() {
		second = append(second, tag)
	}
	if !reflect.DeepEqual(second, reactorRun()) {
		t.Errorf("second iteration = %v", second)
	}
}

func TestClassify_SubclassMarkerInXData(t *testing.T) {
	ct, err := Classify(Tags{
		st(0, "LINE"),
		st(1001, "APP"),
		st(100, "AcDbLine"),
		st(102, "{NOT_APPDATA"),
		in(1070, 1),
	})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(ct.Subclasses) != 1 {
		t.Errorf("expected only the noclass group, got %d groups", len(ct.Subclasses))
	}
	if len(ct.AppData) != 0 {
		t.Errorf("expected no appdata, got %v", ct.AppData)
	}
	xd, err := ct.GetXData("APP")
	if err != nil {
		t.Fatalf("GetXData failed: %v", err)
	}
	if len(xd) != 4 {
		t.Errorf("xdata = %v", xd)
	}
}

func TestClassify_MarkersInsideAppData(t *testing.T) {
	run := Tags{
		st(0, "LINE"),
		st(102, "{APP"),
		st(100, "AcDbFake"),
		st(1001, "FAKE"),
		st(102, "}"),
		st(100, "AcDbEntity"),
	}
	ct, err := Classify(run)
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(ct.AppData) != 1 || len(ct.AppData[0]) != 4 {
		t.Fatalf("appdata = %v", ct.AppData)
	}
	if len(ct.XData) != 0 {
		t.Errorf("expected no xdata, got %v", ct.XData)
	}
	if _, err := ct.GetSubclass("AcDbFake"); !errors.Is(err, ErrNotFound) {
		t.Errorf("marker inside appdata became a subclass: %v", err)
	}
	if !reflect.DeepEqual(ct.Tags(), run) {
		t.Errorf("reconstruction mismatch: %v", ct.Tags())
	}
}

// ============================================================
// Structural errors
// ============================================================

func TestClassify_StructureErrors(t *testing.T) {
	tests := []struct {
		name string
		tags Tags
	}{
		{"unterminated appdata", Tags{st(0, "LINE"), st(102, "{ACAD_REACTORS"), st(330, "1A")}},
		{"unterminated appdata at end", Tags{st(0, "LINE"), st(100, "AcDbEntity"), st(102, "{X")}},
		{"nested appdata", Tags{st(0, "LINE"), st(102, "{A"), st(102, "{B"), st(102, "}"), st(102, "}")}},
		{"integer appdata marker", Tags{st(0, "LINE"), in(102, 0)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := Classify(tt.tags)
			if err == nil {
				t.Fatalf("expected error, got %v", ct)
			}
			if !errors.Is(err, ErrStructure) {
				t.Errorf("expected ErrStructure, got %v", err)
			}
			var se *StructureError
			if !errors.As(err, &se) {
				t.Errorf("expected *StructureError, got %T", err)
			}
			if ct != nil {
				t.Errorf("expected nil result on error")
			}
		})
	}
}

// ============================================================
// Lookups
// ============================================================

func TestClassifiedTags_LookupMisses(t *testing.T) {
	ct, err := Classify(reactorRun())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}

	if _, err := ct.GetSubclass("AcDbCircle"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetSubclass: expected ErrNotFound, got %v", err)
	}
	if _, err := ct.GetAppData("{ACAD_XDICTIONARY"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAppData: expected ErrNotFound, got %v", err)
	}
	if _, err := ct.GetXData("ACAD"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetXData: expected ErrNotFound, got %v", err)
	}

	var le *LookupError
	_, err = ct.GetXData("ACAD")
	if !errors.As(err, &le) || le.Group != "xdata" || le.Name != "ACAD" {
		t.Errorf("unexpected lookup error: %#v", err)
	}
}

func TestClassifiedTags_ZeroValue(t *testing.T) {
	var ct ClassifiedTags
	if ct.NoClass() != nil {
		t.Errorf("NoClass = %v", ct.NoClass())
	}
	if names := ct.SubclassNames(); len(names) != 0 {
		t.Errorf("SubclassNames = %v", names)
	}
	if _, err := ct.GetType(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if ct.Len() != 0 || len(ct.Tags()) != 0 {
		t.Errorf("Len = %d", ct.Len())
	}
	if _, err := BuildEntity(&ct, LegacyVersion); !errors.Is(err, ErrNotFound) {
		t.Errorf("BuildEntity: expected ErrNotFound, got %v", err)
	}
}

func TestClassifiedTags_FirstSubclass(t *testing.T) {
	ct, err := Classify(reactorRun())
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	sc, err := ct.FirstSubclass("AcDb3dPolyline", "AcDbLine", "AcDbEntity")
	if err != nil {
		t.Fatalf("FirstSubclass failed: %v", err)
	}
	if sc.Name() != "AcDbLine" {
		t.Errorf("expected AcDbLine, got %s", sc.Name())
	}
	if _, err := ct.FirstSubclass("AcDbArc", "AcDbCircle"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestClassifiedTags_XDataOrder(t *testing.T) {
	ct, err := Classify(Tags{
		st(0, "LINE"),
		st(1001, "APP1"), st(1000, "one"),
		st(1001, "APP2"), st(1000, "two"),
		st(1001, "APP1"), st(1000, "again"),
	})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if len(ct.XData) != 3 {
		t.Fatalf("expected 3 xdata groups, got %d", len(ct.XData))
	}
	xd, _ := ct.GetXData("APP1")
	if xd.GetString(1000, "") != "one" {
		t.Errorf("GetXData returned %v, want the first APP1 group", xd)
	}
}

// ============================================================
// Benchmarks
// ============================================================

func BenchmarkClassify(b *testing.B) {
	run := reactorRun()
	for i := 0; i < 20; i++ {
		run = append(run, st(1001, "APP"), st(1000, "x"), fl(1040, float64(i)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Classify(run); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkClassifiedTags_All(b *testing.B) {
	ct, err := Classify(reactorRun())
	if err != nil {
		b.Fatal(err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		n := 0
		for range ct.All() {
			n++
		}
	}
}
