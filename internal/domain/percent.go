package domain

import (
	"encoding/json"
	"fmt"
	"math"
)

// Percent is a percentage value where NaN means "undefined", e.g. a return
// on a zero investment
type Percent float64

func UndefinedPercent() Percent {
	return Percent(math.NaN())
}

func (p Percent) Defined() bool {
	f := float64(p)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func (p Percent) String() string {
	if !p.Defined() {
		return "N/A"
	}
	return fmt.Sprintf("%.2f%%", float64(p))
}

// MarshalJSON renders undefined values as null
func (p Percent) MarshalJSON() ([]byte, error) {
	if !p.Defined() {
		return []byte("null"), nil
	}
	return json.Marshal(float64(p))
}
