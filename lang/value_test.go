package lang

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestValue_String(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want string
	}{
		{name: "null", v: Null(), want: ""},
		{name: "true", v: Bool(true), want: "true"},
		{name: "integer", v: Number(42), want: "42"},
		{name: "negative", v: Number(-3), want: "-3"},
		{name: "decimal", v: Number(2.5), want: "2.5"},
		{name: "string", v: String("<b>"), want: "<b>"},
		{name: "array", v: Array(Number(1), String("a")), want: `[1,"a"]`},
		{name: "object", v: Object(map[string]Value{"b": Null(), "a": Bool(false)}), want: `{"a":false,"b":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValue_Immutable(t *testing.T) {
	elems := []Value{String("a"), String("b")}
	arr := Array(elems...)
	elems[0] = String("changed")

	if e, _ := arr.Index(0); e.String() != "a" {
		t.Errorf("array aliased its input: %v", arr)
	}

	fields := map[string]Value{"k": Number(1)}
	obj := Object(fields)
	fields["k"] = Number(2)

	if f, _ := obj.Field("k"); f.String() != "1" {
		t.Errorf("object aliased its input: %v", obj)
	}

	s := arr.Slice()
	s[1] = Null()

	if e, _ := arr.Index(1); e.String() != "b" {
		t.Errorf("Slice exposed storage: %v", arr)
	}

	with := obj.With("x", Bool(true))
	if _, ok := obj.Field("x"); ok {
		t.Error("With mutated its receiver")
	}

	if with.Len() != 2 {
		t.Errorf("With().Len() = %d, want 2", with.Len())
	}
}

func TestValue_EqualClone(t *testing.T) {
	v, err := ParseJSON([]byte(`{"a":[1,2,{"b":"c"}],"d":null}`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}

	c := v.Clone()
	if !v.Equal(c) {
		t.Error("clone not equal to original")
	}

	if v.Equal(v.With("d", Bool(true))) {
		t.Error("distinct values compare equal")
	}
}

func TestValue_Numeric(t *testing.T) {
	tests := []struct {
		v    Value
		want float64
		ok   bool
	}{
		{v: Number(3), want: 3, ok: true},
		{v: String("4.5"), want: 4.5, ok: true},
		{v: String("2023-05-05"), ok: false},
		{v: String("NaN"), ok: false},
		{v: Bool(true), ok: false},
	}

	for _, tt := range tests {
		got, ok := tt.v.Numeric()
		if ok != tt.ok || got != tt.want {
			t.Errorf("Numeric(%v) = %v, %v; want %v, %v", tt.v, got, ok, tt.want, tt.ok)
		}
	}
}

func TestFromNative(t *testing.T) {
	in := map[string]any{
		"title": "post",
		"count": 3,
		"ratio": float32(0.5),
		"date":  time.Date(2023, 5, 5, 0, 0, 0, 0, time.UTC),
		"tags":  []string{"go", "web"},
		"meta":  map[any]any{"draft": true, 1: nil},
	}

	v, err := FromNative(in)
	if err != nil {
		t.Fatalf("FromNative: %v", err)
	}

	checks := map[string]string{
		"title":      "post",
		"count":      "3",
		"ratio":      "0.5",
		"date":       "2023-05-05",
		"tags.1":     "web",
		"meta.draft": "true",
	}

	for path, want := range checks {
		p, err := ParsePath(path)
		if err != nil {
			t.Fatalf("ParsePath(%q): %v", path, err)
		}

		got, ok := Lookup(v, append([]string{p.Root}, p.Keys...)...)
		if !ok || got.String() != want {
			t.Errorf("%s = %q (%v), want %q", path, got.String(), ok, want)
		}
	}

	_, err = FromNative(make(chan int))
	if !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected ErrInvalidValue for channel, got %v", err)
	}
}

func TestValue_JSON(t *testing.T) {
	var v Value

	err := json.Unmarshal([]byte(`[{"n":1.25},"x",true,null]`), &v)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if v.Kind() != KindArray || v.Len() != 4 {
		t.Fatalf("unexpected value %v", v)
	}

	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	if string(data) != `[{"n":1.25},"x",true,null]` {
		t.Errorf("Marshal = %s", data)
	}

	if _, err := ParseJSON([]byte(`{"a":1} {}`)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("expected trailing data error, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	v, err := ParseJSON([]byte(`{"a":{"b":[10,{"c":"deep"}]},"s":"str"}`))
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		keys []string
		want string
		ok   bool
	}{
		{keys: []string{"a", "b", "0"}, want: "10", ok: true},
		{keys: []string{"a", "b", "1", "c"}, want: "deep", ok: true},
		{keys: []string{"a", "missing"}, ok: false},
		{keys: []string{"a", "b", "9"}, ok: false},
		{keys: []string{"a", "b", "x"}, ok: false},
		{keys: []string{"s", "len"}, ok: false},
	}

	for _, tt := range tests {
		got, ok := Lookup(v, tt.keys...)
		if ok != tt.ok || (ok && got.String() != tt.want) {
			t.Errorf("Lookup(%v) = %v, %v; want %q, %v", tt.keys, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParsePath(t *testing.T) {
	valid := []string{"$a", "a", "$post.title", "$xs.0.name", "$my-var.x_y"}
	for _, s := range valid {
		if _, err := ParsePath(s); err != nil {
			t.Errorf("ParsePath(%q): %v", s, err)
		}
	}

	invalid := []string{"", "$", "$.a", "$a.", "$a..b", "$0", "$a b"}
	for _, s := range invalid {
		if _, err := ParsePath(s); !errors.Is(err, ErrInvalidPath) {
			t.Errorf("ParsePath(%q) = %v, want ErrInvalidPath", s, err)
		}
	}

	p, _ := ParsePath("$site.posts")
	if p.String() != "$site.posts" || p.Tail().String() != "$posts" {
		t.Errorf("String/Tail = %s, %s", p, p.Tail())
	}
}
