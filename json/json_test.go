package json

import (
	"bytes"
	"strings"
	"testing"
)

type themePayload struct {
	Name   string `json:"name" default:"dark"`
	Accent string `json:"accent" default:"#7aa2f7"`
	Dim    bool   `json:"dim" default:"true"`
	Level  int    `json:"level" default:"3"`
}

func TestMarshalAppliesDefaults(t *testing.T) {
	p := &themePayload{Name: "light"}

	data, err := Marshal(p)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if p.Accent != "#7aa2f7" || p.Level != 3 || !p.Dim {
		t.Fatalf("expected defaults on original struct, got %+v", p)
	}
	if !strings.Contains(string(data), `"name":"light"`) {
		t.Fatalf("expected explicit name preserved, got %s", data)
	}
}

func TestMarshalNonPointerValues(t *testing.T) {
	cases := []any{
		themePayload{Name: "plain"},
		map[string]int{"a": 1},
		[]string{"x"},
		"text",
		nil,
	}
	for _, v := range cases {
		if _, err := Marshal(v); err != nil {
			t.Errorf("Marshal(%T) returned error: %v", v, err)
		}
	}
}

func TestUnmarshalAppliesDefaultsForMissingFields(t *testing.T) {
	var p themePayload
	if err := Unmarshal([]byte(`{"name":"solarized"}`), &p); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if p.Name != "solarized" || p.Level != 3 || !p.Dim {
		t.Fatalf("unexpected result %+v", p)
	}
}

func TestUnmarshalPreservesExplicitZeroValues(t *testing.T) {
	var p themePayload
	if err := Unmarshal([]byte(`{"name":"x","level":0,"dim":false}`), &p); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if p.Level != 0 || p.Dim {
		t.Fatalf("explicit zero values should be preserved, got %+v", p)
	}
}

func TestUnmarshalIntoMap(t *testing.T) {
	var m map[string]any
	if err := Unmarshal([]byte(`{"limit":80}`), &m); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if m["limit"].(float64) != 80 {
		t.Fatalf("unexpected map %v", m)
	}
}

func TestDecoderDisallowUnknownFields(t *testing.T) {
	decoder := NewDecoder(bytes.NewReader([]byte(`{"name":"a","unknown":1}`)))
	decoder.DisallowUnknownFields()

	var p themePayload
	if err := decoder.Decode(&p); err == nil {
		t.Fatal("expected error for unknown field")
	}
}

func TestEncoderSetEscapeHTML(t *testing.T) {
	var buf bytes.Buffer
	encoder := NewEncoder(&buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(map[string]string{"msg": "<b>&</b>"}); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !strings.Contains(buf.String(), "<b>&</b>") {
		t.Fatalf("expected unescaped HTML, got %s", buf.String())
	}
}

func TestValid(t *testing.T) {
	if !Valid([]byte(`{"a":1}`)) {
		t.Error("expected valid JSON")
	}
	if Valid([]byte(`{"a":`)) {
		t.Error("expected invalid JSON")
	}
}
