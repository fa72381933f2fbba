package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/geofencer/internal/model"
)

func TestPriorityScore(t *testing.T) {
	pos := sample(0, 0)

	// Roughly 111 km north, radius 100 m: far outside, large positive score.
	far := region("far", 1, 0, 100)
	assert.Greater(t, PriorityScore(pos, far), 100000.0)

	// Standing at the center of a 500 m region: score is -500.
	inside := region("inside", 0, 0, 500)
	assert.InDelta(t, -500, PriorityScore(pos, inside), 1e-6)
}

func TestRankOrdersByProximity(t *testing.T) {
	sel := newWorkingSetSelector(newFakeMonitor(), &recordingSink{}, 20)
	pos := sample(0, 0)

	candidates := []model.Region{
		region("far", 5, 0, 100),
		region("near", 0.01, 0, 100),
		region("mid", 1, 0, 100),
	}

	got := sel.rank(pos, candidates)
	require.Len(t, got, 3)
	assert.Equal(t, "near", got[0].ID)
	assert.Equal(t, "mid", got[1].ID)
	assert.Equal(t, "far", got[2].ID)
}

func TestRankCapsAtCapacity(t *testing.T) {
	sel := newWorkingSetSelector(newFakeMonitor(), &recordingSink{}, 2)
	pos := sample(0, 0)

	candidates := []model.Region{
		region("c", 3, 0, 100),
		region("a", 1, 0, 100),
		region("b", 2, 0, 100),
	}

	got := sel.rank(pos, candidates)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, "b", got[1].ID)
}

func TestRankTiesKeepInsertionOrder(t *testing.T) {
	sel := newWorkingSetSelector(newFakeMonitor(), &recordingSink{}, 20)
	pos := sample(0, 0)

	// Identical centers; radii chosen so scores tie exactly in pairs.
	candidates := []model.Region{
		region("first", 0.5, 0, 200),
		region("second", 0.5, 0, 200),
		region("third", 0.5, 0, 300),
	}

	got := sel.rank(pos, candidates)
	require.Len(t, got, 3)
	// Larger radius means lower score, so "third" ranks first; the exact tie
	// between "first" and "second" keeps insertion order.
	assert.Equal(t, "third", got[0].ID)
	assert.Equal(t, "first", got[1].ID)
	assert.Equal(t, "second", got[2].ID)
}

func TestRefreshArmsTopK(t *testing.T) {
	nm := newFakeMonitor()
	sel := newWorkingSetSelector(nm, &recordingSink{}, 2)
	pos := sample(0, 0)

	candidates := []model.Region{
		region("far", 5, 0, 100),
		region("near", 0.01, 0, 100),
		region("mid", 1, 0, 100),
	}

	sel.refresh(pos, candidates)

	armed := nm.CurrentlyArmed()
	require.Len(t, armed, 2)
	assert.Equal(t, "near", armed[0].ID)
	assert.Equal(t, "mid", armed[1].ID)

	// The de-arm precedes every arm.
	require.NotEmpty(t, nm.calls)
	assert.Equal(t, "disarm_all", nm.calls[0].op)
}

func TestRefreshIdempotent(t *testing.T) {
	nm := newFakeMonitor()
	sel := newWorkingSetSelector(nm, &recordingSink{}, 20)
	pos := sample(0, 0)
	candidates := []model.Region{
		region("a", 0.1, 0, 100),
		region("b", 0.2, 0, 100),
	}

	sel.refresh(pos, candidates)
	first := nm.CurrentlyArmed()

	sel.refresh(pos, candidates)
	second := nm.CurrentlyArmed()

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.True(t, first[i].Equal(second[i]))
	}
	// The rebuild cycle still executed: two disarm_all calls recorded.
	var disarms int
	for _, call := range nm.calls {
		if call.op == "disarm_all" {
			disarms++
		}
	}
	assert.Equal(t, 2, disarms)
}

func TestRefreshUnsupportedPlatformSkips(t *testing.T) {
	nm := newFakeMonitor()
	nm.unsupported = true
	sink := &recordingSink{}
	sel := newWorkingSetSelector(nm, sink, 20)

	sel.refresh(sample(0, 0), []model.Region{region("a", 0, 0, 100)})

	assert.Empty(t, nm.calls, "no disarm or arm attempted on unsupported platform")
	assert.Empty(t, sink.events, "unsupported is not surfaced as a monitoring failure")
}

func TestRefreshArmFailureReportedAndLoopContinues(t *testing.T) {
	nm := newFakeMonitor()
	nm.failIDs["bad"] = true
	sink := &recordingSink{}
	sel := newWorkingSetSelector(nm, sink, 20)
	pos := sample(0, 0)

	candidates := []model.Region{
		region("bad", 0.01, 0, 100),
		region("good", 1, 0, 100),
	}

	sel.refresh(pos, candidates)

	failed := sink.ofKind("failed")
	require.Len(t, failed, 1)
	assert.Equal(t, "bad", failed[0].region.ID)

	armed := nm.CurrentlyArmed()
	require.Len(t, armed, 1)
	assert.Equal(t, "good", armed[0].ID)
}
