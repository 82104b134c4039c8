package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/francois-poidevin/adsbchecker/config"
	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/francois-poidevin/adsbchecker/internal/app/metrics"
	"github.com/francois-poidevin/adsbchecker/internal/app/opensky"
	pgSinker "github.com/francois-poidevin/adsbchecker/internal/app/sinkers/db"
	fileSinker "github.com/francois-poidevin/adsbchecker/internal/app/sinkers/file"
	stdoutSinker "github.com/francois-poidevin/adsbchecker/internal/app/sinkers/stdout"
	"github.com/francois-poidevin/adsbchecker/internal/app/tools"
	"github.com/sirupsen/logrus"
)

const (
	displayLayout = "2006-01-02 15:04:05"
	ruler         = "======================================================================"
)

// Fetcher returns the aircraft currently seen in bbox
type Fetcher interface {
	GetStates(ctx context.Context, bbox tools.Bbox) ([]app.Flight, error)
}

// Worker runs checks against a Fetcher and hands the result to its sinkers
type Worker struct {
	Log      *logrus.Logger
	Out      io.Writer
	Fetcher  Fetcher
	Sinkers  []app.Sinker
	Metrics  *metrics.Metrics
	Lookback time.Duration
	Interval time.Duration
	Bbox     tools.Bbox

	now func() time.Time
}

//Execute - build the worker from conf and run it until done or ctx is cancelled
func Execute(ctx context.Context,
	log *logrus.Logger,
	conf config.Configuration) error {
	return Run(ctx, log, conf, metrics.New())
}

// Run is Execute reporting to the given metrics
func Run(ctx context.Context,
	log *logrus.Logger,
	conf config.Configuration,
	m *metrics.Metrics) error {

	log.WithContext(ctx).WithFields(logrus.Fields{
		"lookback (min)": conf.Checker.Lookback,
		"continuous":     conf.Checker.Continuous,
		"interval (sec)": conf.Checker.Interval,
		"bbox":           conf.Checker.Bbox,
		"sinkerType":     conf.Checker.Sinkertype,
		"openskyURL":     conf.Checker.Opensky.URL,
		"outputDir":      conf.Checker.File.Outputdir,
		"dbHost":         conf.Checker.Postgres.Host,
		"dbPort":         conf.Checker.Postgres.Port,
		"dbName":         conf.Checker.Postgres.Dbname,
	}).Info("START with Configuration params: ")

	//interprete bbox parameter
	bbox, errBbox := tools.GetBbox(conf.Checker.Bbox)
	if errBbox != nil {
		log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": errBbox,
		}).Error("Unable to interpret parameter bbox")
		return errBbox
	}

	sinkers, errSinkers := NewSinkers(log, conf)
	if errSinkers != nil {
		return errSinkers
	}

	for _, sinker := range sinkers {
		if errInit := sinker.Init(ctx); errInit != nil {
			log.WithContext(ctx).Error(errInit)
			closeSinkers(sinkers, log)
			return errInit
		}
	}
	defer closeSinkers(sinkers, log)

	w := &Worker{
		Log:      log,
		Out:      os.Stdout,
		Fetcher:  opensky.New(log, conf.Checker.Opensky),
		Sinkers:  sinkers,
		Metrics:  m,
		Lookback: time.Duration(conf.Checker.Lookback) * time.Minute,
		Interval: time.Duration(conf.Checker.Interval) * time.Second,
		Bbox:     bbox,
	}

	if conf.Checker.Continuous {
		return w.ticking(ctx)
	}
	return w.Check(ctx)
}

// NewSinkers builds the sinkers listed in Sinkertype, in order
func NewSinkers(log *logrus.Logger, conf config.Configuration) ([]app.Sinker, error) {
	var sinkers []app.Sinker
	seen := map[string]bool{}
	for _, raw := range strings.Split(conf.Checker.Sinkertype, ",") {
		kind := strings.ToUpper(strings.TrimSpace(raw))
		if kind == "" || seen[kind] {
			continue
		}
		seen[kind] = true

		switch kind {
		case "STDOUT":
			log.Info("Initiate stdOut Sinker")
			sinkers = append(sinkers, stdoutSinker.New(log))
		case "FILE":
			log.Info("Initiate File Sinker")
			sinkers = append(sinkers, fileSinker.New(log, conf.Checker.File))
		case "DB":
			log.Info("Initiate DB Sinker")
			sinkers = append(sinkers, pgSinker.New(log, conf.Checker.Postgres))
		default:
			return nil, fmt.Errorf("Wrong sinker specified: %s", raw)
		}
	}
	if len(sinkers) == 0 {
		return nil, errors.New("No sinker specified")
	}
	return sinkers, nil
}

func closeSinkers(sinkers []app.Sinker, log *logrus.Logger) {
	for _, sinker := range sinkers {
		if err := sinker.Close(); err != nil {
			log.WithFields(logrus.Fields{
				"Error": err,
			}).Warn("Unable to close sinker")
		}
	}
}

func (w *Worker) clock() time.Time {
	if w.now != nil {
		return w.now()
	}
	return time.Now()
}

// GetRecentFlights fetches the current states. A fetch failure is reported
// and yields no flights.
func (w *Worker) GetRecentFlights(ctx context.Context) []app.Flight {
	now := w.clock()
	start := now.Add(-w.Lookback)

	fmt.Fprintf(w.Out, "Fetching ADS-B data from %d minutes ago...\n", int(w.Lookback.Minutes()))
	fmt.Fprintf(w.Out, "Time range: %s to %s\n", start.Format(displayLayout), now.Format(displayLayout))

	begin := time.Now()
	flights, err := w.Fetcher.GetStates(ctx, w.Bbox)
	if w.Metrics != nil {
		w.Metrics.Observe(begin, len(flights), err)
	}
	if err != nil {
		w.Log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Unable to get Raw data")
		fmt.Fprintf(w.Out, "Error fetching ADS-B data: %v\n", err)
		return nil
	}
	return flights
}

// Check runs one fetch and sinks the result to every sinker
func (w *Worker) Check(ctx context.Context) error {
	flights := w.GetRecentFlights(ctx)

	var errs []error
	t := w.clock()
	for _, sinker := range w.Sinkers {
		if errSink := sinker.Sink(ctx, t, flights); errSink != nil {
			w.Log.WithContext(ctx).WithFields(logrus.Fields{
				"Error": errSink,
			}).Error("Unable to sink data")
			errs = append(errs, errSink)
		}
	}
	return errors.Join(errs...)
}

func (w *Worker) ticking(ctx context.Context) error {
	if w.Interval <= 0 {
		return fmt.Errorf("interval must be positive, got %s", w.Interval)
	}
	ticker := time.NewTicker(w.Interval)
	defer func() {
		ticker.Stop()
	}()

	for iteration := 1; ; iteration++ {
		fmt.Fprintf(w.Out, "\n%s\nCheck #%d - %s\n%s\n", ruler, iteration, w.clock().Format(displayLayout), ruler)

		// sink failures must not stop monitoring, Check already logged them
		_ = w.Check(ctx)

		fmt.Fprintf(w.Out, "\nNext check in %d seconds. Press Ctrl+C to stop.\n", int(w.Interval.Seconds()))

		select {
		case <-ctx.Done():
			fmt.Fprint(w.Out, "\n\nMonitoring stopped.\n")
			return nil
		case <-ticker.C:
		}
	}
}
