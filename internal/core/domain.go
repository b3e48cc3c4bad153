package core

import (
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
)

type (
	// CategoryRecord is one row of the category feed. Count stays nil when the
	// feed sends null or omits it; the aggregation treats that as zero.
	CategoryRecord struct {
		Category string `json:"category"`
		Count    *int   `json:"count"`
	}

	// IntentRecord is one classified utterance from the raw data feed.
	IntentRecord struct {
		Intent   string `json:"intent"`
		Category string `json:"category"`
	}
)

var (
	// ErrEmptyCategory reports a record whose label is blank.
	ErrEmptyCategory = errors.New("empty category")
	// ErrNegativeCount reports a record the aggregation will clamp to zero.
	ErrNegativeCount = errors.New("negative count")
)

// headerIntent marks the CSV header row the raw feed sometimes forwards as data.
const headerIntent = "Original Text"

// NewCategoryRecord builds a record with a concrete count.
func NewCategoryRecord(category string, count int) CategoryRecord {
	c := count
	return CategoryRecord{Category: category, Count: &c}
}

// CountOrZero returns the count, treating missing and negative values as zero.
func (r CategoryRecord) CountOrZero() int {
	if r.Count == nil || *r.Count < 0 {
		return 0
	}
	return *r.Count
}

// UnmarshalJSON keeps one odd entry from failing the whole feed. Numbers and
// numeric strings are rounded to a count; any other count, a non-string
// category, or an entry that is not an object at all decodes as missing.
func (r *CategoryRecord) UnmarshalJSON(b []byte) error {
	var raw struct {
		Category json.RawMessage `json:"category"`
		Count    json.RawMessage `json:"count"`
	}
	*r = CategoryRecord{}
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil
	}
	_ = json.Unmarshal(raw.Category, &r.Category)
	r.Count = coerceCount(raw.Count)
	return nil
}

func coerceCount(raw json.RawMessage) *int {
	var v any
	if len(raw) == 0 || json.Unmarshal(raw, &v) != nil {
		return nil
	}
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return nil
	}
	n := int(math.Round(f))
	return &n
}

// Validate reports records the aggregation has to repair. It never rejects
// data; callers only log the result.
func (r CategoryRecord) Validate() error {
	if strings.TrimSpace(r.Category) == "" {
		return ErrEmptyCategory
	}
	if r.Count != nil && *r.Count < 0 {
		return ErrNegativeCount
	}
	return nil
}

// IsHeader reports whether the record is the forwarded CSV header row.
func (r IntentRecord) IsHeader() bool {
	return strings.TrimSpace(r.Intent) == headerIntent
}

// CountByCategory folds raw intents into category counts, keeping the order in
// which each category first appears. Category labels are whitespace-trimmed so
// " Billing Inquiry" and "Billing Inquiry" count together.
func CountByCategory(intents []IntentRecord) []CategoryRecord {
	index := make(map[string]int)
	var out []CategoryRecord
	for _, it := range intents {
		if it.IsHeader() {
			continue
		}
		name := strings.TrimSpace(it.Category)
		if name == "" {
			continue
		}
		if i, ok := index[name]; ok {
			*out[i].Count++
			continue
		}
		index[name] = len(out)
		out = append(out, NewCategoryRecord(name, 1))
	}
	return out
}
