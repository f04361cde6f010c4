package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 80.0, Percent(8, 10))
	assert.Equal(t, 100.0, Percent(10, 10))
	assert.Equal(t, 120.0, Percent(12, 10))

	// one-decimal rounding
	assert.Equal(t, 33.3, Percent(1, 3))
	assert.Equal(t, 66.7, Percent(2, 3))

	// zero or negative targets never divide
	assert.Equal(t, 0.0, Percent(5, 0))
	assert.Equal(t, 0.0, Percent(5, -1))
	assert.Equal(t, 0.0, Percent(0, 0))
}

func TestValuesTotalAndAdd(t *testing.T) {
	a := Values{Applications: 1, POP: 2, ESign: 3, NewTaluk: 4, NewLivePartners: 5, Activations: 6, Calls: 7, SDCollection: 8}
	assert.Equal(t, 36.0, a.Total())

	b := a.Add(a)
	assert.Equal(t, 72.0, b.Total())
	assert.Equal(t, 2.0, b.Applications)
	assert.Equal(t, 16.0, b.SDCollection)
}

func TestValuesSliceAlignsWithNames(t *testing.T) {
	v := Values{Applications: 1, POP: 2, ESign: 3, NewTaluk: 4, NewLivePartners: 5, Activations: 6, Calls: 7, SDCollection: 8}
	s := v.Slice()
	assert.Len(t, s, len(Names))
	assert.Equal(t, 1.0, s[0])
	assert.Equal(t, 8.0, s[len(s)-1])
}

func TestRollup(t *testing.T) {
	var r Rollup
	r.Add(10, 8)
	r.Add(20, 16)
	assert.Equal(t, 30.0, r.Target)
	assert.Equal(t, 24.0, r.Achieve)
	assert.Equal(t, 80.0, r.Percent())

	var empty Rollup
	assert.Equal(t, 0.0, empty.Percent())
}
