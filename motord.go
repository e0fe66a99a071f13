package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"go.uber.org/multierr"

	"motord/command"
	"motord/dac"
	"motord/indicator"
	"motord/motor"
	"motord/mqtt"
	"motord/pin"
)

var myBuild string

// App holds the application state and dependencies.
type App struct {
	cfg       *Config
	motor     *motor.Controller
	indicator indicator.Indicator
	mqtt      *mqtt.Client
	sources   []command.Source
	ctx       context.Context
	cancel    context.CancelFunc

	// mu serializes every access to motor, jog and lastCommand.
	mu          sync.Mutex
	jog         *command.Jogger
	lastCommand time.Time
	deadman     *time.Timer
}

func main() {
	cfgfile := flag.String("cfg", "motord.yml", "Config file")
	envfile := flag.String("env", ".env", "Optional environment file")
	dryRun := flag.Bool("dry-run", false, "Use simulated pins and DAC")
	logLevel := flag.String("log-level", "", "Override the configured log level")
	flag.Parse()

	log.Infof("motord build %s", myBuild)

	cfg, err := LoadConfig(*cfgfile, *envfile)
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Log level: %v", err)
	}
	log.SetLevel(level)

	if *dryRun {
		log.Warn("Dry run: pins and DAC are simulated")
		cfg.DryRun()
	}

	ctrl, err := openMotor(cfg)
	if err != nil {
		log.Fatalf("Init motor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, ctrl)
	stop()
	if err != nil {
		log.WithError(err).Error("motord stopped")
		os.Exit(1)
	}
	log.Info("Shutdown complete")
}

// run wires the daemon around ctrl and serves until ctx is done. It owns
// ctrl: the controller is closed and its neutral code persisted on every
// return path.
func run(ctx context.Context, cfg *Config, ctrl *motor.Controller) (err error) {
	ind, err := indicator.New(cfg.Indicator)
	if err != nil {
		return multierr.Append(fmt.Errorf("init indicator: %w", err), ctrl.Close())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	app := newApp(ctx, cancel, cfg, ctrl, ind)
	defer func() {
		log.Info("Shutting down...")
		err = multierr.Append(err, app.shutdown())
	}()

	app.mqtt, err = mqtt.New(cfg.MQTT, cfg.ClientID, mqtt.Handlers{
		OnConnect:    app.onMQTTConnect,
		OnDisconnect: app.onMQTTDisconnect,
		OnMessage:    app.onMQTTMessage,
	})
	if err != nil {
		return fmt.Errorf("init MQTT: %w", err)
	}

	app.sources, err = command.NewAll(cfg.Commands)
	if err != nil {
		return fmt.Errorf("init command sources: %w", err)
	}

	go func() {
		if err := app.mqtt.Connect(); err != nil {
			log.Errorf("MQTT connect: %v", err)
		}
	}()
	var wg sync.WaitGroup
	for _, src := range app.sources {
		wg.Add(1)
		go func(src command.Source) {
			defer wg.Done()
			if err := src.Run(ctx, app.handle); err != nil {
				log.WithError(err).Error("Command source stopped")
			}
		}(src)
	}
	go app.pingSender()

	<-ctx.Done()
	cancel()
	wg.Wait()
	return nil
}

// openMotor binds the controller to the configured pins and DAC.
func openMotor(cfg *Config) (*motor.Controller, error) {
	fwd, err := pin.New(cfg.Pins, cfg.Motor.ForwardPin)
	if err != nil {
		return nil, fmt.Errorf("forward pin %d: %w", cfg.Motor.ForwardPin, err)
	}
	bwd, err := pin.New(cfg.Pins, cfg.Motor.BackwardPin)
	if err != nil {
		fwd.Close()
		return nil, fmt.Errorf("backward pin %d: %w", cfg.Motor.BackwardPin, err)
	}
	mag, err := dac.New(cfg.DAC)
	if err != nil {
		return nil, multierr.Combine(fmt.Errorf("dac: %w", err), fwd.Close(), bwd.Close())
	}
	if cfg.Motor.Scale > mag.FullScale() {
		err := fmt.Errorf("%w: scale %d above dac full scale %d", motor.ErrInvalidConfig, cfg.Motor.Scale, mag.FullScale())
		return nil, multierr.Combine(err, fwd.Close(), bwd.Close(), mag.Close())
	}

	ctrl, err := motor.New(cfg.Motor, fwd, bwd, mag)
	if err != nil {
		return nil, multierr.Combine(err, fwd.Close(), bwd.Close(), mag.Close())
	}
	log.WithFields(log.Fields{
		"forward_pin":  cfg.Motor.ForwardPin,
		"backward_pin": cfg.Motor.BackwardPin,
		"pins":         cfg.Pins.Type,
		"dac":          cfg.DAC.Type,
	}).Info("Motor ready")
	return ctrl, nil
}

func newApp(ctx context.Context, cancel context.CancelFunc, cfg *Config, ctrl *motor.Controller, ind indicator.Indicator) *App {
	app := &App{
		cfg:       cfg,
		motor:     ctrl,
		indicator: ind,
		ctx:       ctx,
		cancel:    cancel,
		jog:       command.NewJogger(ctrl.Config().Range),
	}
	indicator.Show(ind, ctrl.Direction())
	return app
}

// handle applies cmd, reporting failures on the error topic.
func (app *App) handle(cmd command.Command) error {
	err := app.apply(cmd)
	if err != nil {
		app.mqtt.Publish(app.mqtt.Topics().Error, mqtt.EncodeError(cmd.String(), err))
	}
	return err
}

// apply is the single entry point to the controller.
func (app *App) apply(cmd command.Command) error {
	app.mu.Lock()
	defer app.mu.Unlock()

	power := app.jog.Resolve(cmd)
	var err error
	if cmd.Kind == command.Stop {
		err = app.motor.Stop()
	} else {
		err = app.motor.Move(power)
	}

	entry := log.WithFields(log.Fields{
		"command": cmd.String(),
		"source":  cmd.Source,
	})
	switch {
	case err == nil:
		app.jog.Set(power)
		entry.Debugf("Applied, direction %s", app.motor.Direction())
	case errors.Is(err, motor.ErrInvalidCommand), errors.Is(err, motor.ErrClosed):
		entry.WithError(err).Warn("Rejected command")
		return err
	default:
		entry.WithError(err).Error("Command failed")
		app.indicator.Fault()
		app.publishState()
		return err
	}

	app.lastCommand = time.Now()
	app.armDeadman()
	indicator.Show(app.indicator, app.motor.Direction())
	app.publishState()
	return nil
}

// armDeadman starts the dead-man timer while the motor runs. Called with
// mu held.
func (app *App) armDeadman() {
	d := time.Duration(app.cfg.Safety.DeadmanSecs) * time.Second
	if d <= 0 {
		return
	}
	if app.motor.Direction() == motor.Stopped {
		if app.deadman != nil {
			app.deadman.Stop()
		}
		return
	}
	if app.deadman == nil {
		app.deadman = time.AfterFunc(d, app.deadmanExpired)
		return
	}
	app.deadman.Reset(d)
}

func (app *App) deadmanExpired() {
	app.mu.Lock()
	defer app.mu.Unlock()

	d := time.Duration(app.cfg.Safety.DeadmanSecs) * time.Second
	if app.motor.Direction() == motor.Stopped || time.Since(app.lastCommand) < d {
		return
	}

	log.Warnf("No command for %s, stopping motor", d)
	if err := app.motor.Stop(); err != nil {
		if !errors.Is(err, motor.ErrClosed) {
			log.WithError(err).Error("Dead-man stop failed")
			app.indicator.Fault()
		}
		return
	}
	app.jog.Set(0)
	app.indicator.Stopped()
	app.publishState()
}

// publishState sends the controller snapshot. Called with mu held.
func (app *App) publishState() {
	st, err := app.motor.State()
	if err != nil {
		log.WithError(err).Warn("Read motor state")
		return
	}
	app.mqtt.Publish(app.mqtt.Topics().State, mqtt.EncodeState(st, app.jog.Power()))
}

func (app *App) onMQTTConnect() {
	topics := app.mqtt.Topics()
	for _, topic := range []string{topics.Move, topics.Stop} {
		if err := app.mqtt.Subscribe(topic); err != nil {
			log.Errorf("Subscribe error: %v", err)
		}
	}

	app.mu.Lock()
	app.publishState()
	app.mu.Unlock()
}

func (app *App) onMQTTDisconnect() {
	log.Warn("MQTT connection lost, local command sources remain active")
}

func (app *App) onMQTTMessage(topic string, payload []byte) {
	topics := app.mqtt.Topics()
	switch topic {
	case topics.Move:
		power, err := mqtt.DecodeMove(payload)
		if err != nil {
			log.WithError(err).Warn("Bad move payload")
			app.mqtt.Publish(topics.Error, mqtt.EncodeError("", err))
			return
		}
		app.handle(command.Command{Kind: command.Move, Power: power, Source: "mqtt"})

	case topics.Stop:
		app.handle(command.Command{Kind: command.Stop, Source: "mqtt"})

	default:
		log.Debugf("Ignoring message on %s", topic)
	}
}

func (app *App) pingSender() {
	ticker := time.NewTicker(120 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-app.ctx.Done():
			return
		case <-ticker.C:
			app.mqtt.Publish(app.mqtt.Topics().Ping, `{"status":"ok"}`)
		}
	}
}

// shutdown closes the sources, forces the motor into its persisted
// neutral state and releases everything else.
func (app *App) shutdown() error {
	var errs error
	for _, src := range app.sources {
		errs = multierr.Append(errs, src.Close())
	}

	app.mu.Lock()
	if app.deadman != nil {
		app.deadman.Stop()
	}
	errs = multierr.Append(errs, app.motor.Close())
	app.mu.Unlock()

	app.indicator.Shutdown()
	errs = multierr.Append(errs, app.indicator.Release())
	if app.mqtt != nil {
		app.mqtt.Disconnect()
	}
	return errs
}
