package motor

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errBus = errors.New("simulated bus error")

// bench records every hardware write in order and flags any instant at
// which both enable lines were high.
type bench struct {
	journal      []string
	shootThrough bool
	fwd, bwd     *fakePin
	dac          *fakeDAC
}

type fakePin struct {
	name   string
	b      *bench
	value  bool
	fail   error
	closed bool
}

func (p *fakePin) Set(v bool) error {
	if p.fail != nil {
		return p.fail
	}
	p.value = v
	p.b.record(fmt.Sprintf("%s=%t", p.name, v))
	return nil
}

func (p *fakePin) Get() (bool, error) {
	return p.value, nil
}

func (p *fakePin) Close() error {
	p.closed = true
	return nil
}

type fakeDAC struct {
	b         *bench
	code      int
	persisted int
	fail      error
	failAll   bool
}

func (d *fakeDAC) Write(code int) error {
	if d.fail != nil {
		return d.fail
	}
	d.code = code
	d.b.record(fmt.Sprintf("dac=%d", code))
	return nil
}

func (d *fakeDAC) WritePersist(code int) error {
	if d.failAll && d.fail != nil {
		return d.fail
	}
	d.code = code
	d.persisted = code
	d.b.record(fmt.Sprintf("eeprom=%d", code))
	return nil
}

func (b *bench) record(entry string) {
	b.journal = append(b.journal, entry)
	if b.fwd.value && b.bwd.value {
		b.shootThrough = true
	}
}

func (b *bench) reset() {
	b.journal = nil
}

func newBench() *bench {
	b := &bench{}
	b.fwd = &fakePin{name: "fwd", b: b}
	b.bwd = &fakePin{name: "bwd", b: b}
	b.dac = &fakeDAC{b: b, code: -1, persisted: -1}
	return b
}

func newController(t *testing.T, cfg Config) (*Controller, *bench) {
	t.Helper()
	b := newBench()
	c, err := New(cfg, b.fwd, b.bwd, b.dac)
	require.NoError(t, err)
	return c, b
}

func defaultConfig() Config {
	return Config{ForwardPin: 23, BackwardPin: 24, Scale: 4095}
}

func TestNewStartsStopped(t *testing.T) {
	c, b := newController(t, defaultConfig())

	assert.Equal(t, Stopped, c.Direction())
	assert.False(t, b.fwd.value)
	assert.False(t, b.bwd.value)
	assert.Equal(t, 4095, b.dac.code)
	assert.Equal(t, 4095, c.LastCode())
	assert.Equal(t, []string{"fwd=false", "bwd=false", "dac=4095"}, b.journal)

	st, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, State{Direction: Stopped, Code: 4095, Percent: 100}, st)
}

func TestNewRejectsBadConfig(t *testing.T) {
	b := newBench()
	_, err := New(Config{ForwardPin: 4, BackwardPin: 4}, b.fwd, b.bwd, b.dac)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, b.journal)

	_, err = New(defaultConfig(), b.fwd, nil, b.dac)
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewFailsOnDeadOutput(t *testing.T) {
	b := newBench()
	b.bwd.fail = errBus
	_, err := New(defaultConfig(), b.fwd, b.bwd, b.dac)
	assert.ErrorIs(t, err, ErrHardwareWrite)
	assert.ErrorIs(t, err, errBus)
}

func TestScenario(t *testing.T) {
	c, b := newController(t, defaultConfig())

	require.NoError(t, c.Move(10))
	assert.Equal(t, Forward, c.Direction())
	assert.True(t, b.fwd.value)
	assert.False(t, b.bwd.value)
	assert.Equal(t, 3686, b.dac.code)

	require.NoError(t, c.Move(-10))
	assert.Equal(t, Backward, c.Direction())
	assert.False(t, b.fwd.value)
	assert.True(t, b.bwd.value)
	assert.Equal(t, 3686, b.dac.code)

	require.NoError(t, c.Move(0))
	assert.Equal(t, Stopped, c.Direction())
	assert.False(t, b.fwd.value)
	assert.False(t, b.bwd.value)
	assert.Equal(t, 4095, b.dac.code)
	assert.False(t, b.shootThrough)
}

func TestScenarioTruncate(t *testing.T) {
	cfg := defaultConfig()
	cfg.Rounding = Truncate
	c, b := newController(t, cfg)

	require.NoError(t, c.Move(10))
	assert.Equal(t, 3685, b.dac.code)
	require.NoError(t, c.Move(-10))
	assert.Equal(t, 3685, b.dac.code)
	require.NoError(t, c.Move(0))
	assert.Equal(t, 4095, b.dac.code)
}

func TestDirectionAndOutputsForEveryPower(t *testing.T) {
	for _, rounding := range []Rounding{RoundHalfUp, Truncate} {
		cfg := defaultConfig()
		cfg.Rounding = rounding
		c, b := newController(t, cfg)

		for power := -100; power <= 100; power++ {
			require.NoError(t, c.Move(power), "power %d", power)

			st, err := c.State()
			require.NoError(t, err)
			switch {
			case power > 0:
				assert.Equal(t, Forward, st.Direction)
				assert.True(t, st.Forward)
				assert.False(t, st.Backward)
			case power < 0:
				assert.Equal(t, Backward, st.Direction)
				assert.False(t, st.Forward)
				assert.True(t, st.Backward)
			default:
				assert.Equal(t, Stopped, st.Direction)
				assert.False(t, st.Forward)
				assert.False(t, st.Backward)
			}

			abs := power
			if abs < 0 {
				abs = -abs
			}
			want := 4095 * (100 - abs) / 100
			if rounding == RoundHalfUp {
				want = (4095*(100-abs) + 50) / 100
			}
			assert.Equal(t, want, b.dac.code, "power %d", power)
			assert.Equal(t, 100-abs, st.Percent)
		}
		assert.False(t, b.shootThrough)
	}
}

func TestSameDirectionUpdatesMagnitudeOnly(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(20))
	b.reset()

	require.NoError(t, c.Move(60))
	assert.Equal(t, []string{"dac=1638"}, b.journal)

	require.NoError(t, c.Move(-5))
	b.reset()
	require.NoError(t, c.Move(-100))
	assert.Equal(t, []string{"dac=0"}, b.journal)
}

func TestReversalPassesThroughStop(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{
			name: "forward to backward",
			from: 50, to: -30,
			want: []string{"dac=4095", "fwd=false", "bwd=false", "bwd=true", "dac=2867"},
		},
		{
			name: "backward to forward",
			from: -100, to: 100,
			want: []string{"dac=4095", "fwd=false", "bwd=false", "fwd=true", "dac=0"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c, b := newController(t, defaultConfig())
			require.NoError(t, c.Move(tc.from))
			b.reset()

			require.NoError(t, c.Move(tc.to))
			assert.Equal(t, tc.want, b.journal)
			assert.False(t, b.shootThrough)
		})
	}
}

func TestStopIsIdempotent(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(40))

	require.NoError(t, c.Stop())
	first, err := c.State()
	require.NoError(t, err)
	b.reset()

	require.NoError(t, c.Stop())
	second, err := c.State()
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Empty(t, b.journal)
}

func TestInvalidCommandPreservesState(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(-42))
	before, err := c.State()
	require.NoError(t, err)
	b.reset()

	for _, power := range []int{101, -101, 110, 127, -1000} {
		err := c.Move(power)
		assert.ErrorIs(t, err, ErrInvalidCommand, "power %d", power)
	}

	after, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Empty(t, b.journal)
}

func TestLegacyRange(t *testing.T) {
	cfg := defaultConfig()
	cfg.Range = LegacyRange
	c, b := newController(t, cfg)

	require.NoError(t, c.Move(127))
	assert.Equal(t, 0, b.dac.code)

	// -64 * 100 / 127 = -50.39, truncated toward zero
	require.NoError(t, c.Move(-64))
	assert.Equal(t, Backward, c.Direction())
	assert.Equal(t, 2048, b.dac.code)

	assert.ErrorIs(t, c.Move(128), ErrInvalidCommand)
	assert.ErrorIs(t, c.Move(-128), ErrInvalidCommand)
}

func TestLegacyRangeSmallCommandsKeepDirection(t *testing.T) {
	cfg := defaultConfig()
	cfg.Range = LegacyRange
	c, b := newController(t, cfg)

	// |power| * 100 / 127 rounds down to zero drive
	require.NoError(t, c.Move(1))
	assert.Equal(t, Forward, c.Direction())
	assert.True(t, b.fwd.value)
	assert.Equal(t, 4095, b.dac.code)

	require.NoError(t, c.Move(-1))
	assert.Equal(t, Backward, c.Direction())
	assert.False(t, b.fwd.value)
	assert.True(t, b.bwd.value)
	assert.Equal(t, 4095, b.dac.code)
	assert.False(t, b.shootThrough)

	require.NoError(t, c.Move(0))
	assert.Equal(t, Stopped, c.Direction())
}

func TestEnergizeFailureStaysStopped(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(30))

	b.bwd.fail = errBus
	err := c.Move(-30)
	assert.ErrorIs(t, err, ErrHardwareWrite)
	assert.ErrorIs(t, err, errBus)
	assert.Equal(t, Stopped, c.Direction())
	assert.False(t, b.fwd.value)
	assert.Equal(t, 4095, c.LastCode())
	assert.False(t, b.shootThrough)

	b.bwd.fail = nil
	require.NoError(t, c.Move(-30))
	assert.Equal(t, Backward, c.Direction())
}

func TestIdleLineFailureStillStops(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(30))

	b.bwd.fail = errBus
	err := c.Stop()
	assert.ErrorIs(t, err, ErrHardwareWrite)
	assert.ErrorIs(t, err, errBus)

	st, err := c.State()
	require.NoError(t, err)
	assert.Equal(t, State{Direction: Stopped, Code: 4095, Percent: 100}, st)
}

func TestDeenergizeFailureKeepsDirection(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(70))

	b.fwd.fail = errBus
	err := c.Stop()
	assert.ErrorIs(t, err, ErrHardwareWrite)
	assert.Equal(t, Forward, c.Direction())
	// the neutral code still went out
	assert.Equal(t, 4095, b.dac.code)

	err = c.Move(-10)
	assert.ErrorIs(t, err, ErrHardwareWrite)
	assert.Equal(t, Forward, c.Direction())
	assert.False(t, b.bwd.value)
	assert.False(t, b.shootThrough)
}

func TestMagnitudeFailureIsReported(t *testing.T) {
	c, b := newController(t, defaultConfig())
	b.dac.fail = errBus

	err := c.Move(25)
	assert.ErrorIs(t, err, ErrHardwareWrite)
	assert.Equal(t, Forward, c.Direction())
	assert.Equal(t, 4095, c.LastCode())

	b.dac.fail = nil
	require.NoError(t, c.Move(25))
	assert.Equal(t, 3071, c.LastCode())
}

func TestClose(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(80))
	b.reset()

	require.NoError(t, c.Close())
	assert.Equal(t, []string{"dac=4095", "fwd=false", "bwd=false", "eeprom=4095"}, b.journal)
	assert.Equal(t, Stopped, c.Direction())
	assert.Equal(t, 4095, b.dac.persisted)
	assert.True(t, b.fwd.closed)
	assert.True(t, b.bwd.closed)

	assert.ErrorIs(t, c.Move(10), ErrClosed)
	assert.ErrorIs(t, c.Stop(), ErrClosed)

	b.reset()
	assert.NoError(t, c.Close())
	assert.Empty(t, b.journal)
}

func TestCloseIsBestEffort(t *testing.T) {
	c, b := newController(t, defaultConfig())
	require.NoError(t, c.Move(-90))

	b.fwd.fail = errBus
	b.dac.fail = errBus
	b.reset()

	err := c.Close()
	assert.ErrorIs(t, err, ErrShutdownWrite)
	assert.ErrorIs(t, err, errBus)

	// backward still dropped and the persisted write still attempted
	assert.False(t, b.bwd.value)
	assert.Equal(t, 4095, b.dac.persisted)
	assert.True(t, b.fwd.closed)
	assert.True(t, b.bwd.closed)
}
