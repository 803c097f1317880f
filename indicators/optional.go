package indicators

import (
	"encoding/json"
	"math"
)

// Optional is an indicator value that may be undefined at a given bar.
// An undefined value is never reported as zero or NaN.
type Optional struct {
	Value float64
	Valid bool
}

func Some(v float64) Optional {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Optional{}
	}
	return Optional{Value: v, Valid: true}
}

// Get returns the value and whether it is defined.
func (o Optional) Get() (float64, bool) { return o.Value, o.Valid }

// Ptr returns nil when undefined.
func (o Optional) Ptr() *float64 {
	if !o.Valid {
		return nil
	}
	v := o.Value
	return &v
}

func (o Optional) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *Optional) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*o = Optional{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}
