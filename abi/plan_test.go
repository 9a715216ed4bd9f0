package abi

import (
	"reflect"
	"testing"
)

// resolved is a WriteOp evaluated to a byte offset from its base.
type resolved struct {
	source string
	base   string
	offset int
	wire   Wire
}

func resolveWrites(t *testing.T, l *Layout, ops []WriteOp) []resolved {
	t.Helper()
	out := make([]resolved, 0, len(ops))
	for _, op := range ops {
		n, err := op.Target.Bytes(l)
		if err != nil {
			t.Fatalf("offset %s: %v", op.Target, err)
		}
		out = append(out, resolved{op.Source.String(), op.Target.Base, n, op.Wire})
	}
	return out
}

func resolveAllocs(t *testing.T, l *Layout, ops []AllocOp) []resolved {
	t.Helper()
	writes := make([]WriteOp, len(ops))
	for i, op := range ops {
		writes[i] = op.Write
	}
	return resolveWrites(t, l, writes)
}

func TestPlanListOfInt(t *testing.T) {
	mod := parseModule(t, "(mod m (fun f () (:values (list int))))")
	plan, err := PlanFunction(mod.Function("f"))
	if err != nil {
		t.Fatalf("PlanFunction: %v", err)
	}
	if len(plan.Allocs) != 1 || len(plan.Writes) != 1 {
		t.Fatalf("got %d allocs / %d writes, want 1 / 1", len(plan.Allocs), len(plan.Writes))
	}
	alloc := plan.Allocs[0]
	if alloc.Elem.Kind != ElemScalar || alloc.Elem.Wire != WireI64 {
		t.Errorf("element: got %v", alloc.Elem)
	}
	if alloc.Write.Target.String() != "values_out" || alloc.Write.Wire != WireSize {
		t.Errorf("alloc target: got %s/%v", alloc.Write.Target, alloc.Write.Wire)
	}
	w := plan.Writes[0]
	if w.Target.String() != "values_out_len" || !w.Source.Len || w.Wire != WireSize {
		t.Errorf("length write: got %+v", w)
	}
}

func TestPlanRecordWithString(t *testing.T) {
	mod := parseModule(t, "(mod m (rec r (:n int :s string)) (fun f () (:out r)))")
	plan, err := PlanFunction(mod.Function("f"))
	if err != nil {
		t.Fatalf("PlanFunction: %v", err)
	}

	tests := []struct {
		name   string
		cfg    Config
		writes []resolved
		allocs []resolved
	}{
		{
			name: "64",
			cfg:  DefaultConfig(),
			writes: []resolved{
				{"n", "out_out", 0, WireI64},
				{"len(s)", "out_out", 16, WireSize},
			},
			allocs: []resolved{{"s", "out_out", 8, WireSize}},
		},
		{
			name: "32",
			cfg:  Config{SizeBits: 32},
			writes: []resolved{
				{"n", "out_out", 0, WireI64},
				{"len(s)", "out_out", 12, WireSize},
			},
			allocs: []resolved{{"s", "out_out", 8, WireSize}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLayout(tt.cfg)
			if got := resolveWrites(t, l, plan.Writes); !reflect.DeepEqual(got, tt.writes) {
				t.Errorf("writes:\n got %v\nwant %v", got, tt.writes)
			}
			if got := resolveAllocs(t, l, plan.Allocs); !reflect.DeepEqual(got, tt.allocs) {
				t.Errorf("allocs:\n got %v\nwant %v", got, tt.allocs)
			}
		})
	}
	if e := plan.Allocs[0].Elem; e.Kind != ElemScalar || e.Wire != WireU8 {
		t.Errorf("string element: got %v, want u8", e)
	}
}

func TestPlanNestedRecordOffsetsCompose(t *testing.T) {
	mod := parseModule(t, `(mod m
		(rec inner (:a bool :b int))
		(rec outer (:x float :in inner :y int))
		(fun f () (:o outer)))`)
	plan, err := PlanFunction(mod.Function("f"))
	if err != nil {
		t.Fatalf("PlanFunction: %v", err)
	}
	got := resolveWrites(t, NewLayout(DefaultConfig()), plan.Writes)
	want := []resolved{
		{"x", "o_out", 0, WireF64},
		{"in.a", "o_out", 8, WireU8},
		{"in.b", "o_out", 9, WireI64},
		{"y", "o_out", 17, WireI64},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("writes:\n got %v\nwant %v", got, want)
	}
	if len(plan.Allocs) != 0 {
		t.Errorf("allocs: got %d, want 0", len(plan.Allocs))
	}
}

func TestPlanScalarsAndMultiReturn(t *testing.T) {
	mod := parseModule(t, `(mod m
		(enu color (:red :green))
		(fun f () (:i int :fl float :b bool :c color :names (list string) :cs (list color))))`)
	plan, err := PlanFunction(mod.Function("f"))
	if err != nil {
		t.Fatalf("PlanFunction: %v", err)
	}

	got := resolveWrites(t, NewLayout(DefaultConfig()), plan.Writes)
	want := []resolved{
		{"i", "i_out", 0, WireI64},
		{"fl", "fl_out", 0, WireF64},
		{"b", "b_out", 0, WireU8},
		{"c", "c_out", 0, WireU8},
		{"len(names)", "names_out_len", 0, WireSize},
		{"len(cs)", "cs_out_len", 0, WireSize},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("writes:\n got %v\nwant %v", got, want)
	}

	if len(plan.Allocs) != 2 {
		t.Fatalf("allocs: got %d, want 2", len(plan.Allocs))
	}
	if e := plan.Allocs[0].Elem; e.Kind != ElemString {
		t.Errorf("names element: got %v, want string", e)
	}
	if e := plan.Allocs[1].Elem; e.Kind != ElemEnum || e.Enum != mod.Enum("color") {
		t.Errorf("cs element: got %v, want color", e)
	}
}

func TestPlanSingleReturnReadsResultItself(t *testing.T) {
	mod := parseModule(t, "(mod m (fun f () (:count int)))")
	plan, err := PlanFunction(mod.Function("f"))
	if err != nil {
		t.Fatalf("PlanFunction: %v", err)
	}
	if len(plan.Writes) != 1 || len(plan.Writes[0].Source.Path) != 0 {
		t.Fatalf("got %+v", plan.Writes)
	}
	if plan.Writes[0].Source.String() != "result" {
		t.Errorf("source: got %q", plan.Writes[0].Source.String())
	}
}

func TestPlanListOfRecords(t *testing.T) {
	mod := parseModule(t, `(mod m
		(rec bird (:name string :wings int))
		(fun f () (:birds (list bird))))`)
	plan, err := PlanFunction(mod.Function("f"))
	if err != nil {
		t.Fatalf("PlanFunction: %v", err)
	}
	if len(plan.Allocs) != 1 {
		t.Fatalf("allocs: got %d, want 1", len(plan.Allocs))
	}
	elem := plan.Allocs[0].Elem
	if elem.Kind != ElemRecord || elem.Record != mod.Record("bird") {
		t.Fatalf("element: got %v, want bird", elem)
	}

	item, err := PlanRecord(Offset{Base: "item_out"}, []string{"item"}, elem.Record)
	if err != nil {
		t.Fatalf("PlanRecord: %v", err)
	}
	l := NewLayout(DefaultConfig())
	got := resolveWrites(t, l, item.Writes)
	want := []resolved{
		{"len(item.name)", "item_out", 8, WireSize},
		{"item.wings", "item_out", 16, WireI64},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("writes:\n got %v\nwant %v", got, want)
	}
	if allocs := resolveAllocs(t, l, item.Allocs); !reflect.DeepEqual(allocs, []resolved{{"item.name", "item_out", 0, WireSize}}) {
		t.Errorf("allocs: got %v", allocs)
	}
}

func TestPlanDeterministic(t *testing.T) {
	src := `(mod m (rec r (:a (list int) :b string)) (fun f () (:x r :y (list r))))`
	a, err := PlanFunction(parseModule(t, src).Function("f"))
	if err != nil {
		t.Fatal(err)
	}
	b, err := PlanFunction(parseModule(t, src).Function("f"))
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Writes) != len(b.Writes) || len(a.Allocs) != len(b.Allocs) {
		t.Fatal("plans differ in length")
	}
	for i := range a.Writes {
		if a.Writes[i].Target.String() != b.Writes[i].Target.String() || a.Writes[i].Source.String() != b.Writes[i].Source.String() {
			t.Errorf("write %d differs", i)
		}
	}
}

func TestOffsetPlusDoesNotAlias(t *testing.T) {
	base := Offset{Base: "p", Terms: make([]Term, 0, 4)}
	a := base.Plus(Term{Kind: TermSize})
	b := base.Plus(Term{Kind: TermSizePair})
	if a.String() != "p + size" || b.String() != "p + 2*size" {
		t.Errorf("got %q and %q", a, b)
	}
}

func TestFieldOffsetsMatchLayout(t *testing.T) {
	mod := parseModule(t, layoutSchema)
	rec := mod.Record("mixed")
	l := NewLayout(Config{SizeBits: 32})

	offs, err := FieldOffsets(Offset{Base: "p"}, rec)
	if err != nil {
		t.Fatalf("FieldOffsets: %v", err)
	}
	for i, f := range rec.Fields {
		got, err := offs[i].Bytes(l)
		if err != nil {
			t.Fatal(err)
		}
		want, err := l.FieldOffset(rec, f.Name)
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("%s: symbolic %d (%s), numeric %d", f.Name, got, offs[i], want)
		}
	}
}
