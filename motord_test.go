package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"motord/command"
	"motord/dac"
	"motord/motor"
	"motord/mqtt"
	"motord/pin"
)

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) add(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, s)
}

func (r *recorder) Forward()       { r.add("forward") }
func (r *recorder) Backward()      { r.add("backward") }
func (r *recorder) Stopped()       { r.add("stopped") }
func (r *recorder) Fault()         { r.add("fault") }
func (r *recorder) Shutdown()      { r.add("shutdown") }
func (r *recorder) Release() error { r.add("release"); return nil }

func (r *recorder) last() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return ""
	}
	return r.calls[len(r.calls)-1]
}

type rig struct {
	app *App
	fwd *pin.Sim
	bwd *pin.Sim
	dac *dac.Sim
	ind *recorder
}

func newRig(t *testing.T, deadmanSecs int) *rig {
	t.Helper()
	cfg := &Config{
		ClientID: "n1",
		Motor:    motor.Config{ForwardPin: 23, BackwardPin: 24},
		Safety:   SafetyConfig{DeadmanSecs: deadmanSecs},
	}
	r := &rig{
		fwd: pin.NewSim(23),
		bwd: pin.NewSim(24),
		dac: dac.NewSim(dac.FullScale),
		ind: &recorder{},
	}
	ctrl, err := motor.New(cfg.Motor, r.fwd, r.bwd, r.dac)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	r.app = newApp(ctx, cancel, cfg, ctrl, r.ind)
	r.app.mqtt, err = mqtt.New(mqtt.Config{}, cfg.ClientID, mqtt.Handlers{})
	require.NoError(t, err)
	return r
}

func TestApplyMoveAndStop(t *testing.T) {
	r := newRig(t, 0)
	assert.Equal(t, "stopped", r.ind.last())

	require.NoError(t, r.app.handle(command.Command{Kind: command.Move, Power: 10}))
	assert.Equal(t, motor.Forward, r.app.motor.Direction())
	assert.Equal(t, 3686, r.dac.Code())
	assert.Equal(t, "forward", r.ind.last())

	require.NoError(t, r.app.handle(command.Command{Kind: command.Move, Power: -10}))
	assert.Equal(t, motor.Backward, r.app.motor.Direction())
	assert.Equal(t, "backward", r.ind.last())

	require.NoError(t, r.app.handle(command.Command{Kind: command.Stop}))
	assert.Equal(t, motor.Stopped, r.app.motor.Direction())
	assert.Equal(t, 4095, r.dac.Code())
	assert.Equal(t, "stopped", r.ind.last())
}

func TestApplyJog(t *testing.T) {
	r := newRig(t, 0)

	for i := 0; i < 3; i++ {
		require.NoError(t, r.app.apply(command.Command{Kind: command.Jog, Delta: 40}))
	}
	assert.Equal(t, 100, r.app.jog.Power())
	assert.Equal(t, 0, r.dac.Code())

	require.NoError(t, r.app.apply(command.Command{Kind: command.Jog, Delta: -150}))
	assert.Equal(t, -50, r.app.jog.Power())
	assert.Equal(t, motor.Backward, r.app.motor.Direction())

	require.NoError(t, r.app.apply(command.Command{Kind: command.Stop}))
	assert.Equal(t, 0, r.app.jog.Power())
}

func TestApplyRejectsInvalid(t *testing.T) {
	r := newRig(t, 0)
	require.NoError(t, r.app.apply(command.Command{Kind: command.Move, Power: 30}))

	err := r.app.apply(command.Command{Kind: command.Move, Power: 101})
	assert.ErrorIs(t, err, motor.ErrInvalidCommand)
	assert.Equal(t, 30, r.app.jog.Power())
	assert.Equal(t, motor.Forward, r.app.motor.Direction())
}

func TestApplyHardwareFault(t *testing.T) {
	r := newRig(t, 0)
	r.dac.Fail(errors.New("nack"))

	err := r.app.apply(command.Command{Kind: command.Move, Power: 30})
	assert.ErrorIs(t, err, motor.ErrHardwareWrite)
	assert.Equal(t, "fault", r.ind.last())
	assert.Equal(t, 0, r.app.jog.Power())
}

func TestMQTTMessages(t *testing.T) {
	r := newRig(t, 0)
	topics := r.app.mqtt.Topics()

	r.app.onMQTTMessage(topics.Move, []byte(`{"power":-25}`))
	assert.Equal(t, motor.Backward, r.app.motor.Direction())

	r.app.onMQTTMessage(topics.Move, []byte("fast"))
	assert.Equal(t, motor.Backward, r.app.motor.Direction())

	r.app.onMQTTMessage(topics.Stop, nil)
	assert.Equal(t, motor.Stopped, r.app.motor.Direction())

	r.app.onMQTTMessage("other/topic", []byte("100"))
	assert.Equal(t, motor.Stopped, r.app.motor.Direction())
}

func TestDeadman(t *testing.T) {
	r := newRig(t, 1)
	require.NoError(t, r.app.apply(command.Command{Kind: command.Move, Power: 50}))

	assert.Eventually(t, func() bool {
		r.app.mu.Lock()
		defer r.app.mu.Unlock()
		return r.app.motor.Direction() == motor.Stopped
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, 4095, r.dac.Code())
	assert.Equal(t, "stopped", r.ind.last())

	r.app.mu.Lock()
	assert.Equal(t, 0, r.app.jog.Power())
	r.app.mu.Unlock()
}

func TestShutdown(t *testing.T) {
	r := newRig(t, 0)
	require.NoError(t, r.app.apply(command.Command{Kind: command.Move, Power: 80}))

	require.NoError(t, r.app.shutdown())
	assert.Equal(t, 4095, r.dac.Persisted())
	assert.True(t, r.fwd.Closed())
	assert.True(t, r.bwd.Closed())
	assert.Equal(t, []string{"shutdown", "release"}, r.ind.calls[len(r.ind.calls)-2:])

	assert.ErrorIs(t, r.app.apply(command.Command{Kind: command.Move, Power: 10}), motor.ErrClosed)
}

func newSimMotor(t *testing.T, cfg *Config) (*motor.Controller, *pin.Sim, *pin.Sim, *dac.Sim) {
	t.Helper()
	fwd, bwd := pin.NewSim(cfg.Motor.ForwardPin), pin.NewSim(cfg.Motor.BackwardPin)
	mag := dac.NewSim(dac.FullScale)
	ctrl, err := motor.New(cfg.Motor, fwd, bwd, mag)
	require.NoError(t, err)
	return ctrl, fwd, bwd, mag
}

func TestRunStartupFailureReleasesMotor(t *testing.T) {
	cfg := &Config{
		ClientID: "n1",
		Motor:    motor.Config{ForwardPin: 23, BackwardPin: 24},
		Commands: command.Config{Sources: []command.SourceConfig{{Type: "carrier-pigeon"}}},
	}
	ctrl, fwd, bwd, mag := newSimMotor(t, cfg)
	require.NoError(t, ctrl.Move(60))

	err := run(context.Background(), cfg, ctrl)
	assert.ErrorContains(t, err, "init command sources")
	assert.Equal(t, motor.Stopped, ctrl.Direction())
	assert.Equal(t, 4095, mag.Persisted())
	assert.True(t, fwd.Closed())
	assert.True(t, bwd.Closed())
}

func TestRunShutsDownOnCancel(t *testing.T) {
	cfg := &Config{
		ClientID: "n1",
		Motor:    motor.Config{ForwardPin: 23, BackwardPin: 24},
	}
	ctrl, fwd, _, mag := newSimMotor(t, cfg)
	require.NoError(t, ctrl.Move(-40))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, run(ctx, cfg, ctrl))
	assert.Equal(t, 4095, mag.Persisted())
	assert.True(t, fwd.Closed())
}
