package harness

import (
	"context"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/openwpan/hiltest/pkg/config"
	"github.com/openwpan/hiltest/pkg/result"
	"github.com/openwpan/hiltest/pkg/sniffer"
)

// Session is the per-run context object. It owns the result ledger, the
// framework logger and the run configuration, and drives suites through
// their lifecycle. One session corresponds to one results artifact set.
type Session struct {
	cfg    *config.Config
	log    *logrus.Logger
	ledger *result.Ledger

	tracking config.TrackingMap
	sink     result.Sink
	out      io.Writer

	snifferFactories []sniffer.Factory
}

// Option configures a Session.
type Option func(*Session)

// WithTracking supplies the external test-management ID map.
func WithTracking(m config.TrackingMap) Option {
	return func(s *Session) {
		s.tracking = m
	}
}

// WithSink attaches a results sink flushed by Finish.
func WithSink(sink result.Sink) Option {
	return func(s *Session) {
		s.sink = sink
	}
}

// WithWriter redirects the console summary, which defaults to stdout.
func WithWriter(w io.Writer) Option {
	return func(s *Session) {
		s.out = w
	}
}

// WithSnifferFactories supplies the capture backends tried, in order, when
// a suite initializes a sniffer channel.
func WithSnifferFactories(factories ...sniffer.Factory) Option {
	return func(s *Session) {
		s.snifferFactories = factories
	}
}

// NewSession creates a session for one harness run.
func NewSession(cfg *config.Config, opts ...Option) *Session {
	s := &Session{
		cfg:    cfg,
		log:    logrus.New(),
		ledger: result.NewLedger(),
		out:    os.Stdout,
	}

	// Sinks installed per class by logging.Configure; nothing should reach
	// the logger's own output.
	s.log.SetOutput(io.Discard)

	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ledger exposes the run's result ledger.
func (s *Session) Ledger() *result.Ledger {
	return s.ledger
}

// Config exposes the run configuration.
func (s *Session) Config() *config.Config {
	return s.cfg
}

// Finish flushes the results sink, if one is attached. The run's on-disk
// artifacts are already written by class teardown; sink failures are logged
// and reported but never invalidate the run.
func (s *Session) Finish(ctx context.Context) error {
	if s.sink == nil {
		return nil
	}

	if err := s.sink.Flush(ctx, s.ledger); err != nil {
		s.log.WithError(err).Error("results export failed")
		return err
	}
	return s.sink.Close()
}

func (s *Session) trackingID(suite Suite, key string) string {
	var id string

	if tp, ok := suite.(TrackingProvider); ok {
		if v, ok := tp.TrackingIDs()[key]; ok {
			id = v
		}
	}

	if st, ok := s.tracking[suite.Name()]; ok {
		if key == SuiteIDKey {
			if st.SuiteID != "" {
				id = st.SuiteID
			}
		} else if v, ok := st.Cases[key]; ok {
			id = v
		}
	}

	return id
}
