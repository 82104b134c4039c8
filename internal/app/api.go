package app

import (
	"context"
	"time"

	"github.com/francois-poidevin/adsbchecker/internal/app/tools"
)

//Flight - one aircraft state vector as reported by the OpenSky Network
type Flight struct {
	Callsign     string   `json:"callsign"`
	ICAO24       string   `json:"icao24"`
	Country      string   `json:"country"`
	Latitude     *float64 `json:"latitude"`
	Longitude    *float64 `json:"longitude"`
	Altitude     *float64 `json:"altitude"` //meters, barometric
	Velocity     *float64 `json:"velocity"` //m/s over ground
	Heading      *float64 `json:"heading"`  //degree, true track
	VerticalRate *float64 `json:"vertical_rate"`
	Timestamp    string   `json:"timestamp"`
}

const (
	UNKNOWN = "Unknown"
	NA      = "N/A"
)

type Sinker interface {
	Init(ctx context.Context) error
	Sink(ctx context.Context, t time.Time, data []Flight) error
	Close() error
}

type Service interface {
	Search(ctx context.Context, bbox tools.Bbox, fromTimeStamp, toTimeStamp time.Time) ([]Flight, error)
}
