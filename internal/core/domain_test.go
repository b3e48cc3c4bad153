package core

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCategoryRecordValidate(t *testing.T) {
	cases := []struct {
		name string
		r    CategoryRecord
		err  error
	}{
		{"ok", NewCategoryRecord("Billing", 3), nil},
		{"nil count ok", CategoryRecord{Category: "Billing"}, nil},
		{"blank category", NewCategoryRecord("  ", 3), ErrEmptyCategory},
		{"negative", NewCategoryRecord("Billing", -1), ErrNegativeCount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.r.Validate(); err != tc.err {
				t.Fatalf("Validate() = %v, want %v", err, tc.err)
			}
		})
	}
}

func TestCategoryRecordUnmarshalCoercesCount(t *testing.T) {
	body := `[
		{"category":"int","count":4},
		{"category":"float","count":2.4},
		{"category":"string","count":" 9 "},
		{"category":"word","count":"many"},
		{"category":"null","count":null},
		{"category":"missing"},
		{"category":"negative","count":-3},
		{"category":12,"count":1},
		"not an object"
	]`
	var recs []CategoryRecord
	if err := json.Unmarshal([]byte(body), &recs); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	type row struct {
		Category string
		Count    *int
	}
	n := func(v int) *int { return &v }
	want := []row{
		{"int", n(4)},
		{"float", n(2)},
		{"string", n(9)},
		{"word", nil},
		{"null", nil},
		{"missing", nil},
		{"negative", n(-3)},
		{"", n(1)},
		{"", nil},
	}
	got := make([]row, len(recs))
	for i, r := range recs {
		got[i] = row{r.Category, r.Count}
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("decoded records mismatch (-want +got):\n%s", diff)
	}
}

func TestCountByCategory(t *testing.T) {
	intents := []IntentRecord{
		{Intent: "Original Text", Category: " Category"},
		{Intent: "Assess your monthly fee", Category: " Billing Inquiry"},
		{Intent: "Solicit a temporary service stoppage", Category: " Service Modification"},
		{Intent: "Review your monthly rate", Category: "Billing Inquiry"},
		{Intent: "blank", Category: "  "},
	}
	got := CountByCategory(intents)

	type row struct {
		Category string
		Count    int
	}
	var rows []row
	for _, r := range got {
		rows = append(rows, row{r.Category, r.CountOrZero()})
	}
	want := []row{{"Billing Inquiry", 2}, {"Service Modification", 1}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("CountByCategory mismatch (-want +got):\n%s", diff)
	}
}
