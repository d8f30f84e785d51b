package engine_test

import (
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mauros/dxlight/internal/driver/fake"
	"github.com/mauros/dxlight/internal/engine"
	"github.com/mauros/dxlight/internal/led"
	"github.com/mauros/dxlight/internal/proto"
	"github.com/mauros/dxlight/internal/render"
)

func opener(tr *fake.Transport) led.Opener {
	return func() (led.Transport, error) { return tr, nil }
}

func staticSnap() engine.Snapshot {
	return engine.Snapshot{
		Mode:       engine.ModeStatic,
		Brightness: 1.0,
		Alpha:      0,
		FPS:        500,
		EdgePct:    0.06,
		Speed:      1.0,
		Base:       render.Color{R: 255, G: 0, B: 80},
	}
}

// groups splits the raw report log into logical updates of three reports.
func groups(t *testing.T, reports [][]byte) []proto.Reports {
	t.Helper()
	require.Zero(t, len(reports)%proto.NumReports, "report count must be a multiple of 3")
	out := make([]proto.Reports, 0, len(reports)/proto.NumReports)
	for i := 0; i+proto.NumReports <= len(reports); i += proto.NumReports {
		var g proto.Reports
		for j := 0; j < proto.NumReports; j++ {
			require.Len(t, reports[i+j], proto.ReportSize)
			copy(g[j][:], reports[i+j])
		}
		out = append(out, g)
	}
	return out
}

func waitReports(t *testing.T, tr *fake.Transport, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(tr.Reports()) >= n {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d reports (have %d)", n, len(tr.Reports()))
}

func waitState(t *testing.T, e *engine.Engine, want engine.State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if e.State() == want {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for state %v (have %v)", want, e.State())
}

func TestStaticModeEndToEnd(t *testing.T) {
	tr := &fake.Transport{}
	e := engine.New(opener(tr), nil, staticSnap(), zerolog.Nop())

	require.NoError(t, e.Start())
	waitReports(t, tr, 4*proto.NumReports)
	require.NoError(t, e.Stop())

	gs := groups(t, tr.Reports())
	require.GreaterOrEqual(t, len(gs), 4)

	want := render.Color{R: 255, G: 0, B: 80}
	// All frames except the final blackout carry the static color.
	for gi, g := range gs[:len(gs)-1] {
		f, _, err := proto.Decode(g, false)
		require.NoError(t, err)
		for i, c := range f {
			require.Equal(t, want, c, "frame %d led %d", gi, i)
		}
	}

	// The loop blacks the strip out on shutdown.
	last, _, err := proto.Decode(gs[len(gs)-1], false)
	require.NoError(t, err)
	assert.Equal(t, render.Frame{}, last)
}

func TestCounterStrictlyIncrements(t *testing.T) {
	tr := &fake.Transport{}
	e := engine.New(opener(tr), nil, staticSnap(), zerolog.Nop())

	require.NoError(t, e.Start())
	waitReports(t, tr, 10*proto.NumReports)
	require.NoError(t, e.Stop())

	gs := groups(t, tr.Reports())
	prev := uint8(0)
	for gi, g := range gs {
		_, cnt, err := proto.Decode(g, false)
		require.NoError(t, err)
		if gi == 0 {
			assert.Equal(t, uint8(0), cnt)
		} else {
			assert.Equal(t, prev+1, cnt, "frame %d", gi)
		}
		prev = cnt
	}
}

func TestStartFailsWithoutDevice(t *testing.T) {
	e := engine.New(func() (led.Transport, error) { return nil, led.ErrNotFound }, nil, staticSnap(), zerolog.Nop())
	err := e.Start()
	assert.ErrorIs(t, err, led.ErrNotFound)
	assert.Equal(t, engine.Idle, e.State())
}

func TestStartWhileRunning(t *testing.T) {
	tr := &fake.Transport{}
	e := engine.New(opener(tr), nil, staticSnap(), zerolog.Nop())
	require.NoError(t, e.Start())
	defer e.Stop()

	assert.ErrorIs(t, e.Start(), engine.ErrAlreadyRunning)
}

func TestStopWhenIdleIsNoop(t *testing.T) {
	e := engine.New(opener(&fake.Transport{}), nil, staticSnap(), zerolog.Nop())
	assert.NoError(t, e.Stop())
}

func TestSendFailureStopsSession(t *testing.T) {
	tr := &fake.Transport{FailAt: 5}
	e := engine.New(opener(tr), nil, staticSnap(), zerolog.Nop())

	require.NoError(t, e.Start())
	waitState(t, e, engine.Idle)

	assert.True(t, tr.Closed(), "transport must be closed after a fatal send error")
	// No reconnect: the engine stays idle until told otherwise.
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, engine.Idle, e.State())
}

// flakySource returns one good uniform frame and then fails every grab.
type flakySource struct {
	img   *render.Image
	grabs int
}

func (s *flakySource) Grab() (*render.Image, error) {
	s.grabs++
	if s.grabs > 1 {
		return nil, errors.New("capture lost")
	}
	return s.img, nil
}

func TestCaptureFailureHoldsLastFrame(t *testing.T) {
	c := render.Color{R: 120, G: 80, B: 40}
	pix := make([]byte, 60*60*3)
	for i := 0; i < 60*60; i++ {
		pix[i*3], pix[i*3+1], pix[i*3+2] = c.R, c.G, c.B
	}
	src := &flakySource{img: &render.Image{W: 60, H: 60, Pix: pix}}

	snap := staticSnap()
	snap.Mode = engine.ModeAmbilight
	tr := &fake.Transport{}
	e := engine.New(opener(tr), src, snap, zerolog.Nop())

	require.NoError(t, e.Start())
	waitReports(t, tr, 5*proto.NumReports)
	require.NoError(t, e.Stop())

	gs := groups(t, tr.Reports())
	require.GreaterOrEqual(t, len(gs), 5)
	for gi, g := range gs[:len(gs)-1] {
		f, _, err := proto.Decode(g, false)
		require.NoError(t, err)
		assert.Equal(t, c, f[0], "frame %d must hold the last good capture", gi)
	}
	assert.Greater(t, src.grabs, 1, "loop must keep grabbing after failures")
}

func TestConfigSwapTakesEffectNextTick(t *testing.T) {
	tr := &fake.Transport{}
	e := engine.New(opener(tr), nil, staticSnap(), zerolog.Nop())

	require.NoError(t, e.Start())
	waitReports(t, tr, 2*proto.NumReports)

	snap := staticSnap()
	snap.Base = render.Color{R: 0, G: 255, B: 0}
	e.SetConfig(snap)

	before := len(tr.Reports())
	waitReports(t, tr, before+4*proto.NumReports)
	require.NoError(t, e.Stop())

	gs := groups(t, tr.Reports())
	// Skip the blackout; the tail of the run must carry the new color.
	f, _, err := proto.Decode(gs[len(gs)-2], false)
	require.NoError(t, err)
	assert.Equal(t, render.Color{G: 255}, f[0])
}

func TestPacingRespectsTargetRate(t *testing.T) {
	tr := &fake.Transport{}
	snap := staticSnap()
	snap.FPS = 50
	e := engine.New(opener(tr), nil, snap, zerolog.Nop())

	require.NoError(t, e.Start())
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, e.Stop())

	frames := len(tr.Reports()) / proto.NumReports
	// 300ms at 50fps is ~15 updates plus the blackout; allow generous
	// scheduling noise but catch a loop that ignores the budget.
	assert.LessOrEqual(t, frames, 22)
	assert.GreaterOrEqual(t, frames, 5)
}

func TestObservedFPSPublished(t *testing.T) {
	tr := &fake.Transport{}
	e := engine.New(opener(tr), nil, staticSnap(), zerolog.Nop())
	require.NoError(t, e.Start())
	waitReports(t, tr, 5*proto.NumReports)
	assert.Greater(t, e.FPS(), 0.0)

	leds := e.Leds()
	assert.Equal(t, render.Color{R: 255, G: 0, B: 80}, leds[0])
	require.NoError(t, e.Stop())
}
