package tape

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oisee/tapeopt/pkg/expr"
	"github.com/oisee/tapeopt/pkg/schedule"
)

func mustSchedule(t *testing.T, src string) *schedule.Scheduled {
	t.Helper()
	ctx, root, err := expr.Parse(src)
	require.NoError(t, err)
	return schedule.Schedule(ctx, root)
}

// axisOf returns name's fixed axis, after checking mustSchedule's scheduler
// actually saw it referenced.
func axisOf(t *testing.T, s *schedule.Scheduled, name string) uint32 {
	t.Helper()
	for _, v := range s.Vars {
		if v == name {
			return uint32(schedule.AxisFor(name))
		}
	}
	t.Fatalf("variable %q not scheduled", name)
	return 0
}

// axisOfIfPresent is axisOf without the requirement that name appear in the
// schedule, for expressions that only reference a subset of the three axes.
func axisOfIfPresent(s *schedule.Scheduled, name string) (uint32, bool) {
	for _, v := range s.Vars {
		if v == name {
			return uint32(schedule.AxisFor(name)), true
		}
	}
	return 0, false
}

func allBoth(n int) []Choice {
	cs := make([]Choice, n)
	for i := range cs {
		cs[i] = Both
	}
	return cs
}
