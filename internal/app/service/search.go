package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/francois-poidevin/adsbchecker/internal/app/sinkers/db"
	"github.com/francois-poidevin/adsbchecker/internal/app/tools"
	"github.com/sirupsen/logrus"
)

const selectSQLstmt = "SELECT icao24, callsign, country, lat, lon, altitude, velocity, heading, vertical_rate, seen FROM " +
	db.Schemaname + "." + db.Tablename +
	" WHERE ST_WITHIN(geom, ST_GEOMFROMTEXT($1, 4326)) AND checked_at BETWEEN $2 AND $3 ORDER BY checked_at, icao24"

// Service searches the flights persisted by the DB sinker
type Service struct {
	Log *logrus.Logger
	db  *sql.DB
}

var _ app.Service = (*Service)(nil)

func New(log *logrus.Logger, conn *sql.DB) *Service {
	return &Service{Log: log, db: conn}
}

// Open connects a new Service to Postgres
func Open(ctx context.Context, log *logrus.Logger, conf db.Configuration) (*Service, error) {
	conn, err := db.Open(ctx, log, conf)
	if err != nil {
		return nil, err
	}
	return New(log, conn), nil
}

func (s *Service) Close() error {
	return s.db.Close()
}

func (s *Service) Search(ctx context.Context, bbox tools.Bbox, fromTimeStamp, toTimeStamp time.Time) ([]app.Flight, error) {
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"bbox": bbox.String(),
		"from": fromTimeStamp,
		"to":   toTimeStamp,
	}).Info("Search service called")

	rows, errQuery := s.db.QueryContext(ctx, selectSQLstmt,
		tools.BboxToWKT(bbox),
		fromTimeStamp,
		toTimeStamp,
	)
	if errQuery != nil {
		return nil, errQuery
	}
	defer rows.Close()

	result := make([]app.Flight, 0)

	for rows.Next() {
		var (
			flight                                              app.Flight
			callsign, country                                   sql.NullString
			lat, lon, altitude, velocity, heading, verticalRate sql.NullFloat64
			seen                                                sql.NullTime
		)
		if errScan := rows.Scan(&flight.ICAO24, &callsign, &country, &lat, &lon, &altitude, &velocity, &heading, &verticalRate, &seen); errScan != nil {
			return nil, errScan
		}

		flight.Callsign = callsign.String
		flight.Country = country.String
		flight.Latitude = nullable(lat)
		flight.Longitude = nullable(lon)
		flight.Altitude = nullable(altitude)
		flight.Velocity = nullable(velocity)
		flight.Heading = nullable(heading)
		flight.VerticalRate = nullable(verticalRate)
		if seen.Valid {
			flight.Timestamp = seen.Time.UTC().Format(time.RFC3339)
		}

		result = append(result, flight)
	}

	if errRow := rows.Err(); errRow != nil {
		return nil, errRow
	}

	return result, nil
}

func nullable(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
