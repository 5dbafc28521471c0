package main

import (
	"encoding/hex"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/wippyai/rmw-cdr/errors"
	"github.com/wippyai/rmw-cdr/msgspec"
	"github.com/wippyai/rmw-cdr/typesupport"
)

const scenarioHex = "2a000000030000006869000003000000010203"

func testSession(t *testing.T, full string) *session {
	t.Helper()
	l := msgspec.NewLoader(msgspec.Config{})
	defs := map[string]string{
		"Scenario": "int32 a\nstring<=10 b\nuint8[] c\n",
		"Point":    "float64 x\nfloat64 y\n",
		"Path":     "Point[] points\nstring name\nint16[3] grid\nbool closed\n",
	}
	for name, text := range defs {
		if _, err := l.AddMessage("demo_msgs", name, text); err != nil {
			t.Fatalf("AddMessage %s: %v", name, err)
		}
	}
	mm, err := l.Message(full)
	if err != nil {
		t.Fatalf("Message: %v", err)
	}
	s, err := newSession(mm, typesupport.Options{}, zaptest.NewLogger(t))
	if err != nil {
		t.Fatalf("newSession: %v", err)
	}
	return s
}

func TestSession_Describe(t *testing.T) {
	s := testSession(t, "demo_msgs/Scenario")
	out := s.describe()
	for _, want := range []string{
		"type:      demo_msgs::msg::dds_::Scenario_",
		"max size:  125 bytes",
		"c layout:  size 28, align 4, stride 28",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("describe() missing %q:\n%s", want, out)
		}
	}
}

func TestSession_Decode(t *testing.T) {
	s := testSession(t, "demo_msgs/Scenario")
	data, _ := hex.DecodeString(scenarioHex)

	out, err := s.decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := "a: 42\nb: \"hi\"\nc: [1, 2, 3]\n"
	if out != want {
		t.Errorf("decode() = %q, want %q", out, want)
	}
	if live := s.buf.Live(); live != 0 {
		t.Errorf("%d allocations leaked", live)
	}
	if n := s.blocks.Count(); n != 0 {
		t.Errorf("tracker holds %d blocks", n)
	}

	if _, err := s.decode(data[:10]); errors.KindOf(err) != errors.KindTruncated {
		t.Errorf("truncated input: got %v", err)
	}
}

func TestSession_Encode(t *testing.T) {
	s := testSession(t, "demo_msgs/Scenario")

	data, err := s.encode([]string{"a=42", "b=hi", "c=1,2,3"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if got := hex.EncodeToString(data); got != scenarioHex {
		t.Errorf("encode() = %s, want %s", got, scenarioHex)
	}

	_, err = s.encode([]string{"b=" + strings.Repeat("x", 11)})
	if errors.KindOf(err) != errors.KindBoundViolation {
		t.Errorf("over-long string: got %v", err)
	}
	if live := s.buf.Live(); live != 0 {
		t.Errorf("%d allocations leaked", live)
	}
}

func TestSession_Nested(t *testing.T) {
	s := testSession(t, "demo_msgs/Path")

	data, err := s.encode([]string{
		"points=2",
		"points[1].x=1.5",
		"points[1].y=-2",
		"name=route",
		"grid=1,-2,3",
		"closed=true",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	out, err := s.decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := strings.Join([]string{
		"points: 2 elements",
		"points[0]:",
		"  x: 0",
		"  y: 0",
		"points[1]:",
		"  x: 1.5",
		"  y: -2",
		`name: "route"`,
		"grid: [1, -2, 3]",
		"closed: true",
		"",
	}, "\n")
	if out != want {
		t.Errorf("decode() =\n%s\nwant\n%s", out, want)
	}
}

func TestSession_AssignErrors(t *testing.T) {
	s := testSession(t, "demo_msgs/Path")

	tests := []struct {
		name string
		sets []string
		want string
	}{
		{"no equals", []string{"name"}, "want path=value"},
		{"unknown field", []string{"nope=1"}, "no field"},
		{"bad index", []string{"points[x].x=1"}, "bad index"},
		{"out of range", []string{"points[0].x=1"}, "out of range"},
		{"grid length", []string{"grid=1,2"}, "needs 3 values"},
		{"int range", []string{"grid=1,2,40000"}, "out of range"},
		{"bool", []string{"closed=maybe"}, "invalid syntax"},
		{"message value", []string{"points=2", "points[0]=1"}, "is a message"},
		{"scalar traversal", []string{"name.x=1"}, "not a nested message"},
		{"count", []string{"points=-1"}, "element count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.encode(tt.sets)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("encode(%v) error = %v, want containing %q", tt.sets, err, tt.want)
			}
		})
	}
	if live := s.buf.Live(); live != 0 {
		t.Errorf("%d allocations leaked", live)
	}
}

func TestSession_Wit(t *testing.T) {
	s := testSession(t, "demo_msgs/Path")
	out, err := s.wit()
	if err != nil {
		t.Fatalf("wit: %v", err)
	}
	for _, want := range []string{"record point {", "record path {", "points: list<point>,", "grid: list<s16>,"} {
		if !strings.Contains(out, want) {
			t.Errorf("wit() missing %q:\n%s", want, out)
		}
	}
}

func TestParseHex(t *testing.T) {
	data, err := parseHex("2a 00\n00 00")
	if err != nil {
		t.Fatalf("parseHex: %v", err)
	}
	if len(data) != 4 || data[0] != 0x2a {
		t.Errorf("parseHex = %x", data)
	}
	if _, err := parseHex("zz"); err == nil {
		t.Error("expected error for non-hex input")
	}
}
