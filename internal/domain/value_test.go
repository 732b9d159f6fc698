package domain

import (
	"encoding/json"
	"testing"
)

func TestValueJSONVariants(t *testing.T) {
	cases := []struct {
		raw  string
		kind ValueKind
	}{
		{`null`, KindEmpty},
		{`"yes"`, KindText},
		{`42.5`, KindNumber},
		{`["a","b"]`, KindMulti},
	}
	for _, tc := range cases {
		var v Value
		if err := json.Unmarshal([]byte(tc.raw), &v); err != nil {
			t.Fatalf("unmarshal %s: %v", tc.raw, err)
		}
		if v.Kind() != tc.kind {
			t.Fatalf("%s: expected kind %s, got %s", tc.raw, tc.kind, v.Kind())
		}
		out, err := json.Marshal(v)
		if err != nil {
			t.Fatalf("marshal %s: %v", tc.raw, err)
		}
		if string(out) != tc.raw {
			t.Fatalf("expected %s, got %s", tc.raw, out)
		}
	}
}

func TestValueRejectsMixedArray(t *testing.T) {
	var v Value
	if err := json.Unmarshal([]byte(`["a", 1]`), &v); err == nil {
		t.Fatalf("expected error for non-string selection")
	}
}

func TestValueEmptiness(t *testing.T) {
	if !EmptyValue().IsEmpty() || !TextValue("  ").IsEmpty() || !MultiValue().IsEmpty() {
		t.Fatalf("expected empty variants to report empty")
	}
	if NumberValue(0).IsEmpty() {
		t.Fatalf("zero is an answer")
	}
	if NumberValue(0).Truthy() || TextValue("").Truthy() {
		t.Fatalf("expected falsy values")
	}
	if !MultiValue().Truthy() {
		t.Fatalf("selection lists are truthy")
	}
}

func TestQuestionDefaults(t *testing.T) {
	q := Question{ID: "q"}
	if q.Category() != Governance {
		t.Fatalf("expected governance default, got %s", q.Category())
	}
	if q.EffectiveWeight() != 1 {
		t.Fatalf("expected weight 1, got %v", q.EffectiveWeight())
	}
	q.ImpactAreas = []Category{Social, Environmental}
	if q.Category() != Social {
		t.Fatalf("expected first impact area, got %s", q.Category())
	}
}

func TestStateCloneDoesNotShareMaps(t *testing.T) {
	s := NewAssessmentState()
	s.Errors["q1"] = "required"
	c := s.Clone()
	delete(c.Errors, "q1")
	if s.IsValid() {
		t.Fatalf("clone mutation leaked into original")
	}
	if !c.IsValid() {
		t.Fatalf("expected clone to be valid")
	}
}
