package road

import (
	"errors"
	"math"
	"testing"

	"github.com/lixenwraith/endless-road/catalog"
	"github.com/lixenwraith/endless-road/events"
	"github.com/lixenwraith/endless-road/vmath"
)

const eps = 1e-6

func mustLibrary(t *testing.T, templates ...*catalog.Template) *catalog.Library {
	t.Helper()
	lib, err := catalog.NewLibrary(templates)
	if err != nil {
		t.Fatalf("NewLibrary: %v", err)
	}
	return lib
}

func mustStraight(t *testing.T, id string, length float64) *catalog.Template {
	t.Helper()
	tmpl, err := catalog.NewStraight(id, length, catalog.DefaultWidth)
	if err != nil {
		t.Fatalf("NewStraight: %v", err)
	}
	return tmpl
}

func mustCurve(t *testing.T, id string, radius, angle float64, turn catalog.Turn) *catalog.Template {
	t.Helper()
	tmpl, err := catalog.NewCurve(id, radius, angle, catalog.DefaultWidth, turn)
	if err != nil {
		t.Fatalf("NewCurve: %v", err)
	}
	return tmpl
}

func mustRoad(t *testing.T, lib *catalog.Library, s Settings, opts ...Option) *Road {
	t.Helper()
	r, err := New(lib, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Initialize(s); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return r
}

// assertSeams checks every adjacent pair shares its seam anchors
func assertSeams(t *testing.T, q *Queue) {
	t.Helper()
	for i := 1; i < q.Len(); i++ {
		prev := q.At(i - 1).Anchors()
		next := q.At(i).Anchors()
		if !vmath.V3FApproxEqual(prev.EndLeft, next.BeginLeft, eps) ||
			!vmath.V3FApproxEqual(prev.EndRight, next.BeginRight, eps) {
			t.Fatalf("Seam %d/%d broken: end %v %v, begin %v %v",
				i-1, i, prev.EndLeft, prev.EndRight, next.BeginLeft, next.BeginRight)
		}
	}
}

func TestNewEmptyCatalog(t *testing.T) {
	if _, err := New(nil); !errors.Is(err, catalog.ErrEmptyCatalog) {
		t.Errorf("Expected ErrEmptyCatalog, got %v", err)
	}
}

func TestInitializeMissingTemplate(t *testing.T) {
	r, err := New(catalog.Builtin())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = r.Initialize(Settings{NumberOfPieces: 5, FirstPieceTemplateID: "Nope", TrackSpeed: 1})
	if !errors.Is(err, catalog.ErrTemplateNotFound) {
		t.Errorf("Expected ErrTemplateNotFound, got %v", err)
	}
	if r.Initialized() {
		t.Error("Expected road to stay uninitialized")
	}
}

func TestInitializeRejectsBadSettings(t *testing.T) {
	r, _ := New(catalog.Builtin())

	if err := r.Initialize(Settings{NumberOfPieces: 1, FirstPieceTemplateID: "Straight10"}); !errors.Is(err, ErrCapacity) {
		t.Errorf("Expected ErrCapacity, got %v", err)
	}
	if err := r.Initialize(Settings{NumberOfPieces: 3, FirstPieceTemplateID: "Straight10", TrackSpeed: -1}); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
	if err := r.Reset(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
}

func TestInitializeLayout(t *testing.T) {
	r := mustRoad(t, catalog.Builtin(), Settings{NumberOfPieces: 10, FirstPieceTemplateID: "Straight60m", TrackSpeed: 20},
		WithRandomSource(catalog.NewRandomSource(7)))

	q := r.queue
	if q.Len() != 10 {
		t.Fatalf("Expected 10 pieces, got %d", q.Len())
	}

	active := q.Active()
	if active.Template.ID != "Straight60m" || q.Trailing().Template.ID != "Straight60m" {
		t.Errorf("Expected both seed pieces to use Straight60m, got %s and %s", q.Trailing().Template.ID, active.Template.ID)
	}
	if !active.World().ApproxEqual(vmath.Identity, eps) {
		t.Errorf("Expected active piece at identity, got %+v", active.World())
	}
	if !active.IsRoot() || q.Root() != active {
		t.Error("Expected active piece to be the anchor")
	}
	for i := 0; i < q.Len(); i++ {
		if p := q.At(i); p != active && p.IsRoot() {
			t.Errorf("Expected piece %d parented to the anchor", i)
		}
	}

	trailing := q.Trailing().Anchors()
	if !vmath.V3FApproxEqual(trailing.EndLeft, vmath.Vec3F{X: -2}, eps) {
		t.Errorf("Expected trailing end at the origin, got %v", trailing.EndLeft)
	}
	if !vmath.V3FApproxEqual(trailing.BeginLeft, vmath.Vec3F{X: -2, Z: -60}, eps) {
		t.Errorf("Expected trailing begin 60 behind, got %v", trailing.BeginLeft)
	}

	assertSeams(t, q)
}

func TestCurvedSeedTrailsBehind(t *testing.T) {
	lib := mustLibrary(t, mustCurve(t, "Curve90L", 20, 90, catalog.TurnLeft))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 4, FirstPieceTemplateID: "Curve90L", TrackSpeed: 1})
	assertSeams(t, r.queue)
}

// TestFixedScenario: three Straight10 pieces at 5 units per tick recycle on the second tick
func TestFixedScenario(t *testing.T) {
	lib := mustLibrary(t, mustStraight(t, "Straight10", 10))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 3, FirstPieceTemplateID: "Straight10", TrackSpeed: 5})

	var recycled int
	r.Subscribe(events.HandlerFunc(func(events.GameEvent) { recycled++ }, events.EventRecycled))

	r.Tick(1)
	if recycled != 0 {
		t.Fatalf("Expected no recycle after first tick, got %d", recycled)
	}
	if z := r.queue.Active().Anchors().EndLeft.Z; !vmath.ApproxEqual(z, 5, eps) {
		t.Errorf("Expected active end at z=5, got %v", z)
	}

	r.Tick(1)
	if recycled != 1 {
		t.Fatalf("Expected one recycle after second tick, got %d", recycled)
	}
	if r.queue.Len() != 3 {
		t.Errorf("Expected 3 pieces, got %d", r.queue.Len())
	}
	a := r.queue.Active().Anchors()
	if !vmath.ApproxEqual(a.BeginLeft.Z, 0, eps) || !vmath.ApproxEqual(a.BeginRight.Z, 0, eps) {
		t.Errorf("Expected new active leading edge at z=0, got %v %v", a.BeginLeft, a.BeginRight)
	}
	if s := r.Stats(); s.Recycles != 1 || s.Ticks != 2 || !vmath.ApproxEqual(s.Distance, 10, eps) {
		t.Errorf("Unexpected stats %+v", s)
	}
	assertSeams(t, r.queue)
}

// TestStraightContinuity checks a recycle mid-tick lands every piece where uninterrupted motion would
func TestStraightContinuity(t *testing.T) {
	lib := mustLibrary(t, mustStraight(t, "Straight10", 10))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 4, FirstPieceTemplateID: "Straight10", TrackSpeed: 3})

	next := r.queue.At(2)
	for i := 0; i < 4; i++ {
		r.Tick(1)
	}

	if r.Stats().Recycles != 1 {
		t.Fatalf("Expected one recycle, got %d", r.Stats().Recycles)
	}
	if r.queue.Active() != next {
		t.Fatal("Expected the third seed piece to become active")
	}
	if z := next.Anchors().BeginLeft.Z; !vmath.ApproxEqual(z, -2, eps) {
		t.Errorf("Expected active begin at z=-2, got %v", z)
	}
}

// TestCurveToStraightContinuity overshoots a left curve and checks the overshoot replays on the straight
func TestCurveToStraightContinuity(t *testing.T) {
	lib := mustLibrary(t,
		mustCurve(t, "Curve90L", 20, 90, catalog.TurnLeft),
		mustStraight(t, "Straight10", 10),
	)
	r := mustRoad(t, lib, Settings{NumberOfPieces: 4, FirstPieceTemplateID: "Curve90L", TrackSpeed: 40},
		WithRandomSource(&catalog.SequenceSource{Values: []int{1}}))

	arc := math.Pi / 2 * 20
	r.Tick(1)

	if r.Stats().Recycles != 1 {
		t.Fatalf("Expected one recycle, got %d", r.Stats().Recycles)
	}
	active := r.queue.Active()
	if active.Template.ID != "Straight10" {
		t.Fatalf("Expected Straight10 active, got %s", active.Template.ID)
	}

	want := vmath.Vec3F{X: -2, Z: -(40 - arc)}
	if got := active.Anchors().BeginLeft; !vmath.V3FApproxEqual(got, want, 1e-5) {
		t.Errorf("Expected active begin %v, got %v", want, got)
	}
	if !vmath.ApproxEqual(active.World().Yaw, 0, eps) {
		t.Errorf("Expected straight snapped to zero yaw, got %v", active.World().Yaw)
	}
	assertSeams(t, r.queue)
}

func TestCurvedResetDistance(t *testing.T) {
	lib := mustLibrary(t, mustCurve(t, "Curve90L", 20, 90, catalog.TurnLeft))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 3, FirstPieceTemplateID: "Curve90L", TrackSpeed: 1})

	want := math.Pi / 2 * 20
	if got := r.recycler.ResetDistance(); !vmath.ApproxEqual(got, want, eps) {
		t.Errorf("Expected reset distance %v, got %v", want, got)
	}

	// Sweeping the full arc brings the end edge onto the player's axis
	r.motion.Advance(want)
	a := r.queue.Active().Anchors()
	if !vmath.V3FApproxEqual(a.EndLeft, vmath.Vec3F{X: -2}, 1e-5) || !vmath.V3FApproxEqual(a.EndRight, vmath.Vec3F{X: 2}, 1e-5) {
		t.Errorf("Expected end edge on x axis, got %v %v", a.EndLeft, a.EndRight)
	}
	if got := r.recycler.ResetDistance(); !vmath.ApproxEqual(got, 0, 1e-5) {
		t.Errorf("Expected zero reset distance at the seam, got %v", got)
	}
}

func TestRightCurveMotion(t *testing.T) {
	lib := mustLibrary(t, mustCurve(t, "Curve90R", 20, 90, catalog.TurnRight))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 3, FirstPieceTemplateID: "Curve90R", TrackSpeed: 1})

	p := r.motion.Pivot()
	if !vmath.V3FApproxEqual(p.Point, vmath.Vec3F{X: 20}, eps) || p.Direction != -1 {
		t.Fatalf("Unexpected right pivot %+v", p)
	}

	r.motion.Advance(math.Pi / 2 * 20)
	a := r.queue.Active().Anchors()
	if !vmath.V3FApproxEqual(a.EndLeft, vmath.Vec3F{X: -2}, 1e-5) {
		t.Errorf("Expected end edge on x axis, got %v", a.EndLeft)
	}
}

// TestZeroDistanceRecycle checks realignment is a no-op when nothing overshot
func TestZeroDistanceRecycle(t *testing.T) {
	lib := mustLibrary(t, mustStraight(t, "Straight10", 10))
	settings := Settings{NumberOfPieces: 3, FirstPieceTemplateID: "Straight10", TrackSpeed: 1}
	a := mustRoad(t, lib, settings)
	b := mustRoad(t, lib, settings)

	a.motion.Advance(10)
	b.motion.Advance(10)
	if d := a.recycler.ResetDistance(); d != 0 {
		t.Fatalf("Expected exact zero reset distance, got %v", d)
	}

	a.recycler.Recycle()

	b.queue.EvictOldest()
	b.queue.AppendPiece()
	b.queue.ReparentAll(1)
	b.motion.SetActive()

	sa, sb := a.queue.Snapshots(), b.queue.Snapshots()
	if len(sa) != len(sb) {
		t.Fatalf("Expected equal lengths, got %d and %d", len(sa), len(sb))
	}
	for i := range sa {
		if sa[i].ID != sb[i].ID || !sa[i].Pose.ApproxEqual(sb[i].Pose, 1e-9) {
			t.Errorf("Piece %d differs: %+v vs %+v", i, sa[i], sb[i])
		}
	}
}

// TestLongRunInvariants drives a mixed catalog and checks length, seams and recycling every tick
func TestLongRunInvariants(t *testing.T) {
	r := mustRoad(t, catalog.Builtin(), Settings{NumberOfPieces: 10, FirstPieceTemplateID: "Straight60m", TrackSpeed: 20},
		WithRandomSource(catalog.NewRandomSource(42)))

	lastID := r.queue.Tail().ID
	for i := 0; i < 6000; i++ {
		r.Tick(1.0 / 60)

		if r.queue.Len() != 10 {
			t.Fatalf("Tick %d: expected 10 pieces, got %d", i, r.queue.Len())
		}
		if r.recycler.Crossed() {
			t.Fatalf("Tick %d: active piece left crossed", i)
		}
		if id := r.queue.Tail().ID; id < lastID {
			t.Fatalf("Tick %d: tail id went backwards %d < %d", i, id, lastID)
		} else {
			lastID = id
		}
		assertSeams(t, r.queue)
	}

	if r.Stats().Recycles == 0 {
		t.Error("Expected recycles over 2000 distance units")
	}
}

func TestOnPieceAddedOncePerAppend(t *testing.T) {
	lib := mustLibrary(t, mustStraight(t, "Straight10", 10))
	r, _ := New(lib)

	seen := make(map[uint64]int)
	r.OnPieceAdded(func(s Snapshot) { seen[s.ID]++ })

	if err := r.Initialize(Settings{NumberOfPieces: 6, FirstPieceTemplateID: "Straight10", TrackSpeed: 10}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if len(seen) != 4 {
		t.Errorf("Expected 4 notifications for 6 pieces, got %d", len(seen))
	}

	for i := 0; i < 5; i++ {
		r.Tick(1)
	}
	if want := 4 + int(r.Stats().Recycles); len(seen) != want {
		t.Errorf("Expected %d notified pieces, got %d", want, len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("Piece %d notified %d times", id, n)
		}
	}
}

// TestRecycleEventsAtomic checks handlers only observe the settled queue
func TestRecycleEventsAtomic(t *testing.T) {
	lib := mustLibrary(t, mustStraight(t, "Straight10", 10))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 3, FirstPieceTemplateID: "Straight10", TrackSpeed: 25})

	var order []events.EventType
	r.Subscribe(events.HandlerFunc(func(ev events.GameEvent) {
		order = append(order, ev.Type)
		if n := len(r.Snapshot().Pieces); n != 3 {
			t.Errorf("Handler saw %d pieces during %s", n, ev.Type)
		}
		if ev.Tick != 1 {
			t.Errorf("Expected tick 1 on %s, got %d", ev.Type, ev.Tick)
		}
	}, events.EventPieceEvicted, events.EventPieceAdded, events.EventRecycled, events.EventTick))

	r.Tick(1)

	// 25 units over 10-unit pieces: two full turnovers
	want := []events.EventType{
		events.EventPieceEvicted, events.EventPieceAdded,
		events.EventPieceEvicted, events.EventPieceAdded,
		events.EventRecycled, events.EventRecycled,
		events.EventTick,
	}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("Event %d: expected %s, got %s", i, want[i], order[i])
		}
	}
	if z := r.queue.Active().Anchors().BeginLeft.Z; !vmath.ApproxEqual(z, -5, eps) {
		t.Errorf("Expected active begin at z=-5, got %v", z)
	}
}

func TestDegeneratePivotFallsBackToLinear(t *testing.T) {
	// Curved category with parallel edges
	flat, err := catalog.NewTemplate("FlatCurve", catalog.Curved, catalog.Anchors{
		BeginLeft:  vmath.Vec3F{X: -2},
		BeginRight: vmath.Vec3F{X: 2},
		EndLeft:    vmath.Vec3F{X: -2, Z: 10},
		EndRight:   vmath.Vec3F{X: 2, Z: 10},
	}, nil)
	if err != nil {
		t.Fatalf("NewTemplate: %v", err)
	}
	lib := mustLibrary(t, flat)

	r, _ := New(lib)
	var degenerate int
	r.Subscribe(events.HandlerFunc(func(events.GameEvent) { degenerate++ }, events.EventPivotDegenerate))

	if err := r.Initialize(Settings{NumberOfPieces: 3, FirstPieceTemplateID: "FlatCurve", TrackSpeed: 4}); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if degenerate != 1 || !r.motion.Pivot().Degenerate {
		t.Fatalf("Expected one degenerate pivot, got %d %+v", degenerate, r.motion.Pivot())
	}

	r.Tick(1)
	if z := r.queue.Active().Anchors().EndLeft.Z; !vmath.ApproxEqual(z, 6, eps) {
		t.Errorf("Expected linear motion to z=6, got %v", z)
	}
}

func TestResetRebuildsTrack(t *testing.T) {
	lib := mustLibrary(t, mustStraight(t, "Straight10", 10))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 4, FirstPieceTemplateID: "Straight10", TrackSpeed: 7})

	for i := 0; i < 10; i++ {
		r.Tick(1)
	}
	before := r.Stats()

	var resets int
	r.Subscribe(events.HandlerFunc(func(ev events.GameEvent) {
		resets++
		if p, ok := ev.Payload.(ResetPayload); !ok || p.Pieces != 4 {
			t.Errorf("Unexpected reset payload %+v", ev.Payload)
		}
	}, events.EventTrackReset))

	if err := r.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	after := r.Stats()

	if resets != 1 {
		t.Errorf("Expected one reset event, got %d", resets)
	}
	if after.Run == before.Run {
		t.Error("Expected a new run id")
	}
	if after.Ticks != 0 || after.Recycles != 0 || after.Distance != 0 {
		t.Errorf("Expected zeroed stats, got %+v", after)
	}
	if !r.queue.Active().World().ApproxEqual(vmath.Identity, eps) {
		t.Error("Expected active piece back at identity")
	}
}

func TestTickBeforeInitializeIsNoop(t *testing.T) {
	r, _ := New(catalog.Builtin())
	r.Tick(1)
	if r.Stats().Ticks != 0 {
		t.Error("Expected no ticks before Initialize")
	}
	if _, ok := r.Active(); ok {
		t.Error("Expected no active piece before Initialize")
	}
}

func TestSetSpeed(t *testing.T) {
	lib := mustLibrary(t, mustStraight(t, "Straight60m", 60))
	r := mustRoad(t, lib, Settings{NumberOfPieces: 3, FirstPieceTemplateID: "Straight60m", TrackSpeed: 1})

	if err := r.SetSpeed(math.NaN()); !errors.Is(err, ErrInvalidSettings) {
		t.Errorf("Expected ErrInvalidSettings, got %v", err)
	}
	if err := r.SetSpeed(12); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}
	r.Tick(0.5)
	if s := r.Snapshot(); !vmath.ApproxEqual(s.Distance, 6, eps) || s.Speed != 12 {
		t.Errorf("Unexpected state %+v", s)
	}
}
