package metrics

import "math"

// Metric display names, in the order they appear on every target screen.
var Names = []string{
	"Applications",
	"POP",
	"E-Sign",
	"New Taluk",
	"New Live Partners",
	"Activations",
	"Calls",
	"SD Collection",
}

// Values holds one number per tracked performance metric. The same shape is
// used for targets, ASM-set targets and achievements.
type Values struct {
	Applications    float64 `json:"applications"`
	POP             float64 `json:"pop"`
	ESign           float64 `json:"esign"`
	NewTaluk        float64 `json:"new_taluk"`
	NewLivePartners float64 `json:"new_live_partners"`
	Activations     float64 `json:"activations"`
	Calls           float64 `json:"calls"`
	SDCollection    float64 `json:"sd_collection"`
}

// Total sums all eight metrics.
func (v Values) Total() float64 {
	return v.Applications + v.POP + v.ESign + v.NewTaluk +
		v.NewLivePartners + v.Activations + v.Calls + v.SDCollection
}

// Add returns the element-wise sum of two value sets.
func (v Values) Add(o Values) Values {
	return Values{
		Applications:    v.Applications + o.Applications,
		POP:             v.POP + o.POP,
		ESign:           v.ESign + o.ESign,
		NewTaluk:        v.NewTaluk + o.NewTaluk,
		NewLivePartners: v.NewLivePartners + o.NewLivePartners,
		Activations:     v.Activations + o.Activations,
		Calls:           v.Calls + o.Calls,
		SDCollection:    v.SDCollection + o.SDCollection,
	}
}

// Slice returns the metrics in display order, aligned with Names.
func (v Values) Slice() []float64 {
	return []float64{
		v.Applications, v.POP, v.ESign, v.NewTaluk,
		v.NewLivePartners, v.Activations, v.Calls, v.SDCollection,
	}
}

// Percent computes achieved/target*100 rounded to one decimal. A zero or
// negative target always yields 0, never a division error or NaN.
func Percent(achieved, target float64) float64 {
	if target <= 0 {
		return 0
	}
	return math.Round(achieved/target*1000) / 10
}

// Rollup accumulates target/achieve totals over a row set. Every dashboard and
// list summary is this one reduction applied to a different row subset.
type Rollup struct {
	Target  float64 `json:"total_target"`
	Achieve float64 `json:"total_achieve"`
}

func (r *Rollup) Add(target, achieve float64) {
	r.Target += target
	r.Achieve += achieve
}

func (r Rollup) Percent() float64 {
	return Percent(r.Achieve, r.Target)
}
