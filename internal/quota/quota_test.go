package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCheck(t *testing.T) {
	cases := []struct {
		name      string
		anonymous bool
		count     int64
		limit     int
		allowed   bool
		remaining int
	}{
		{"member unlimited", false, 500, 2, true, -1},
		{"guest first quiz", true, 0, 2, true, 2},
		{"guest second quiz", true, 1, 2, true, 1},
		{"guest at limit", true, 2, 2, false, 0},
		{"guest over limit", true, 5, 2, false, 0},
		{"negative limit", true, 0, -1, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Check(tc.anonymous, tc.count, tc.limit)
			assert.Equal(t, tc.allowed, d.Allowed)
			assert.Equal(t, tc.remaining, d.Remaining)
			if !d.Allowed {
				assert.Equal(t, TrialLimitMessage, d.Reason)
			}
		})
	}
	assert.Equal(t, "unlimited", Check(false, 0, 2).String())
}
