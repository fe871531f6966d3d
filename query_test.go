package easyship

import "testing"

func TestEncodeQuery_FlattensNestedValues(t *testing.T) {
	got := EncodeQuery(Params{
		"page":        1,
		"insured":     true,
		"signature":   false,
		"skip":        nil,
		"ratio":       0.25,
		"ids":         []string{"a", "b"},
		"counts":      []int{3},
		"destination": map[string]any{"country_alpha2": "SG", "postal": map[string]any{"code": "018956"}},
		"items":       []any{map[string]any{"sku": "X1"}},
	})

	want := map[string]string{
		"page":                        "1",
		"insured":                     "1",
		"signature":                   "0",
		"ratio":                       "0.25",
		"ids[0]":                      "a",
		"ids[1]":                      "b",
		"counts[0]":                   "3",
		"destination[country_alpha2]": "SG",
		"destination[postal][code]":   "018956",
		"items[0][sku]":               "X1",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d pairs, got %d: %#v", len(want), len(got), got)
	}
	for key, value := range want {
		if got[key] != value {
			t.Fatalf("expected %s=%q, got %q", key, value, got[key])
		}
	}
	if _, ok := got["skip"]; ok {
		t.Fatalf("expected nil values to be dropped")
	}
}

func TestEncodeQuery_Empty(t *testing.T) {
	if got := EncodeQuery(nil); len(got) != 0 {
		t.Fatalf("expected empty query, got %#v", got)
	}
}
