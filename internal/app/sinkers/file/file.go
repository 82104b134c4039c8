package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/mitchellh/go-homedir"
	"github.com/sirupsen/logrus"
)

const fileLayout = "20060102_150405"

// FileSinker saves each check as an indented JSON array
type FileSinker struct {
	Log  *logrus.Logger
	Out  io.Writer
	conf Configuration
	dir  string
}

func New(log *logrus.Logger, conf Configuration) *FileSinker {
	return &FileSinker{Log: log, Out: os.Stdout, conf: conf}
}

func (s *FileSinker) Init(ctx context.Context) error {
	dir, err := homedir.Expand(s.conf.Outputdir)
	if err != nil {
		return err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, os.ModePerm); err != nil {
		s.Log.WithContext(ctx).WithFields(logrus.Fields{
			"Error": err,
		}).Error("Unable to create folder '" + dir + "'")
		return err
	}
	s.dir = dir
	return nil
}

func (s *FileSinker) Close() error {
	return nil
}

// Filename returns the snapshot file name for a check made at t
func (s *FileSinker) Filename(t time.Time) string {
	name := s.conf.Outputfile
	if name == "" {
		name = fmt.Sprintf("adsb_data_%s.json", t.Local().Format(fileLayout))
	}
	return filepath.Join(s.dir, name)
}

func (s *FileSinker) Sink(ctx context.Context, t time.Time, data []app.Flight) error {
	if s.dir == "" {
		return fmt.Errorf("file sinker not initialised")
	}
	if data == nil {
		data = []app.Flight{}
	}

	btes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}

	filename := s.Filename(t)
	if err := os.WriteFile(filename, btes, 0644); err != nil {
		return err
	}

	s.Log.WithContext(ctx).WithFields(logrus.Fields{
		"file":              filename,
		"number of Flights": len(data),
		"length":            fmt.Sprintf("wrote %d bytes", len(btes)),
	}).Debug("Wrote")

	fmt.Fprintf(s.Out, "\nData saved to %s\n", filename)

	return nil
}
