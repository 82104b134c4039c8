package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/sirupsen/logrus"
)

const (
	Schemaname = "adsbchecker"
	Tablename  = "flight"
)

const insertSQL = "INSERT INTO " + Schemaname + "." + Tablename +
	" (icao24, callsign, country, lat, lon, altitude, velocity, heading, vertical_rate, seen, checked_at, geom)" +
	" VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, ST_GeomFromText($12, 4326))"

type PostGreSinker struct {
	Log  *logrus.Logger
	conf Configuration
	db   *sql.DB
}

func New(log *logrus.Logger, conf Configuration) *PostGreSinker {
	return &PostGreSinker{Log: log, conf: conf}
}

// Open connects to Postgres and checks the connection
func Open(ctx context.Context, log *logrus.Logger, conf Configuration) (*sql.DB, error) {
	log.WithContext(ctx).WithFields(logrus.Fields{
		"host":   conf.Host,
		"port":   conf.Port,
		"dbName": conf.Dbname,
	}).Info("Init DB ...")

	db, err := sql.Open("postgres", conf.DSN())
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}

	log.WithContext(ctx).Info("Successfully connected : " + conf.Host)
	return db, nil
}

func (s *PostGreSinker) Init(ctx context.Context) error {
	db, err := Open(ctx, s.Log, s.conf)
	if err != nil {
		return err
	}
	s.db = db

	createSchemaSQL := "CREATE SCHEMA IF NOT EXISTS " + Schemaname
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"SQL": createSchemaSQL,
	}).Debug("create schema")
	if _, err := s.db.ExecContext(ctx, createSchemaSQL); err != nil {
		return err
	}

	createTableSQL := "CREATE TABLE IF NOT EXISTS " + Schemaname + "." + Tablename +
		" (icao24 varchar(6) NOT NULL, callsign varchar(8), country varchar(64), lat double precision, lon double precision," +
		" altitude double precision, velocity double precision, heading double precision, vertical_rate double precision," +
		" seen timestamptz, checked_at timestamptz NOT NULL, geom geometry(Geometry,4326))"
	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"SQL": createTableSQL,
	}).Debug("create table")
	if _, err := s.db.ExecContext(ctx, createTableSQL); err != nil {
		return err
	}

	return nil
}

func (s *PostGreSinker) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostGreSinker) Sink(ctx context.Context, t time.Time, data []app.Flight) error {
	if len(data) == 0 {
		return nil
	}
	if s.db == nil {
		return fmt.Errorf("db sinker not initialised")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return err
	}
	defer stmt.Close()

	nbRow := int64(0)
	for _, flight := range data {
		result, err := stmt.ExecContext(ctx,
			flight.ICAO24,
			flight.Callsign,
			flight.Country,
			flight.Latitude,
			flight.Longitude,
			flight.Altitude,
			flight.Velocity,
			flight.Heading,
			flight.VerticalRate,
			seen(flight.Timestamp),
			t.UTC(),
			PointWKT(flight),
		)
		if err != nil {
			return err
		}

		nb, _ := result.RowsAffected()
		nbRow = nbRow + nb
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	s.Log.WithContext(ctx).WithFields(logrus.Fields{"Rows Affected": nbRow}).Info("Insert in DB ...")

	return nil
}

// PointWKT is NULL for flights without a position
func PointWKT(flight app.Flight) sql.NullString {
	if flight.Latitude == nil || flight.Longitude == nil {
		return sql.NullString{}
	}
	return sql.NullString{
		String: fmt.Sprintf("POINT(%f %f)", *flight.Longitude, *flight.Latitude),
		Valid:  true,
	}
}

func seen(timestamp string) sql.NullTime {
	ts, err := time.Parse(time.RFC3339, timestamp)
	if err != nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: ts, Valid: true}
}
