package stdout

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/sirupsen/logrus"
)

// MaxRows is the number of aircraft displayed per check
const MaxRows = 50

type StdOutSinker struct {
	Log *logrus.Logger
	Out io.Writer
}

func New(log *logrus.Logger) *StdOutSinker {
	return &StdOutSinker{Log: log, Out: os.Stdout}
}

func (s *StdOutSinker) Init(ctx context.Context) error {
	//Nothing to do here
	return nil
}

func (s *StdOutSinker) Close() error {
	return nil
}

func (s *StdOutSinker) Sink(ctx context.Context, t time.Time, data []app.Flight) error {
	if len(data) == 0 {
		fmt.Fprintln(s.Out, "No aircraft data available")
		return nil
	}

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"number of Flights": len(data),
	}).Debug("========All Flights seen=============")

	fmt.Fprintln(s.Out)
	table := tablewriter.NewTable(s.Out, tablewriter.WithHeaderAutoFormat(tw.Off))
	table.Header("Callsign", "Country", "Altitude", "Velocity", "Heading")

	shown := data
	if len(shown) > MaxRows {
		shown = shown[:MaxRows]
	}
	for _, flight := range shown {
		country := flight.Country
		if country == "" {
			country = app.UNKNOWN
		}
		if err := table.Append(
			flight.Callsign,
			country,
			altitude(flight.Altitude),
			velocity(flight.Velocity),
			heading(flight.Heading),
		); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if len(data) > MaxRows {
		fmt.Fprintf(s.Out, "\n... and %d more aircraft\n", len(data)-MaxRows)
	}
	fmt.Fprintf(s.Out, "\nTotal aircraft tracked: %d\n", len(data))

	return nil
}

// zero altitude and velocity carry no information and display as N/A
func altitude(v *float64) string {
	if v == nil || *v == 0 {
		return app.NA
	}
	return fmt.Sprintf("%.0fm", *v)
}

func velocity(v *float64) string {
	if v == nil || *v == 0 {
		return app.NA
	}
	return fmt.Sprintf("%.1fm/s", *v)
}

func heading(v *float64) string {
	if v == nil {
		return app.NA
	}
	return fmt.Sprintf("%.0f°", *v)
}
