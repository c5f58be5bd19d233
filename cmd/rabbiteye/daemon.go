package main

import (
	"os"
	"syscall"
	"time"

	"github.com/pkg/errors"

	"github.com/Stroniax/rabbit-eye/internal/config"
	detectorfs "github.com/Stroniax/rabbit-eye/internal/detector/filesystem"
	"github.com/Stroniax/rabbit-eye/internal/engine"
	"github.com/Stroniax/rabbit-eye/internal/lifetime"
	"github.com/Stroniax/rabbit-eye/internal/logging"
	"github.com/Stroniax/rabbit-eye/internal/persistence"
	"github.com/Stroniax/rabbit-eye/internal/publish"
	"github.com/Stroniax/rabbit-eye/internal/publish/amqp"
	"github.com/Stroniax/rabbit-eye/internal/publish/console"
)

func configureLogging(level string, asJSON bool) error {
	return logging.Configure(level, asJSON)
}

type daemon struct {
	engine    *engine.Engine
	lifetime  *lifetime.AppLifetime
	publisher publish.Publisher
	grace     time.Duration
}

func newDaemon(cfg *config.Config) (*daemon, error) {
	detector, err := detectorfs.New(detectorfs.Config{
		Root:                cfg.Root,
		Recursive:           cfg.Recursive,
		IncludeChildChanges: cfg.IncludeChildChanges,
	})
	if err != nil {
		return nil, errors.Wrap(err, "construct filesystem detector")
	}

	pub, err := newPublisher(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "construct publisher")
	}

	var store persistence.Store[string, uint64]
	if cfg.StatePath != "" {
		store = persistence.NewFile(cfg.StatePath)
	} else {
		store = persistence.NewInMemory[string, uint64]()
	}

	e := engine.New(cfg.Interval, detector, pub, store)
	l := lifetime.New(lifetime.NewOSSignal(os.Interrupt, syscall.SIGTERM), cfg.GracePeriod)

	return &daemon{engine: e, lifetime: l, publisher: pub, grace: cfg.GracePeriod}, nil
}

func newPublisher(cfg *config.Config) (publish.Publisher, error) {
	if cfg.Console {
		return console.New(os.Stdout), nil
	}
	return amqp.Dial(cfg.BrokerURL, cfg.Queue)
}

// run blocks until the shutdown ladder has fully run its course.
func (d *daemon) run() {
	d.engine.Run(d.lifetime, d.grace)
	<-d.lifetime.Done()
}
