package stdout

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/francois-poidevin/adsbchecker/internal/app"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var log *logrus.Logger

func ptr(f float64) *float64 { return &f }

func newSinker() (*StdOutSinker, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	s := New(log)
	s.Out = buf
	return s, buf
}

func TestSinkEmpty(t *testing.T) {
	s, buf := newSinker()
	require.NoError(t, s.Sink(context.Background(), time.Now(), nil))
	assert.Equal(t, "No aircraft data available\n", buf.String())
}

func TestSinkTable(t *testing.T) {
	s, buf := newSinker()
	data := []app.Flight{
		{Callsign: "AFR123", Country: "France", Altitude: ptr(10972.8), Velocity: ptr(231.54), Heading: ptr(87.3)},
		{Callsign: app.UNKNOWN, Country: "", Altitude: ptr(0), Heading: ptr(0)},
	}

	require.NoError(t, s.Sink(context.Background(), time.Now(), data))

	out := buf.String()
	var header []string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "Callsign") {
			header = strings.FieldsFunc(line, func(r rune) bool {
				return r == '│' || r == '|' || r == ' '
			})
			break
		}
	}
	assert.Equal(t, []string{"Callsign", "Country", "Altitude", "Velocity", "Heading"}, header)
	assert.NotContains(t, out, "CALLSIGN")
	assert.Contains(t, out, "AFR123")
	assert.Contains(t, out, "10973m")
	assert.Contains(t, out, "231.5m/s")
	assert.Contains(t, out, "87°")
	assert.Contains(t, out, "0°")
	assert.Contains(t, out, app.NA)
	assert.Contains(t, out, "Total aircraft tracked: 2")
	assert.NotContains(t, out, "more aircraft")
}

func TestSinkTruncates(t *testing.T) {
	s, buf := newSinker()
	data := make([]app.Flight, 0, MaxRows+7)
	for i := 0; i < MaxRows+7; i++ {
		data = append(data, app.Flight{Callsign: fmt.Sprintf("CS%03d", i), Country: "Spain"})
	}

	require.NoError(t, s.Sink(context.Background(), time.Now(), data))

	out := buf.String()
	assert.Contains(t, out, "CS049")
	assert.NotContains(t, out, "CS050")
	assert.Contains(t, out, "... and 7 more aircraft")
	assert.Contains(t, out, "Total aircraft tracked: 57")
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, app.NA, altitude(nil))
	assert.Equal(t, app.NA, altitude(ptr(0)))
	assert.Equal(t, "1200m", altitude(ptr(1199.6)))
	assert.Equal(t, app.NA, velocity(nil))
	assert.Equal(t, "12.3m/s", velocity(ptr(12.34)))
	assert.Equal(t, app.NA, heading(nil))
	assert.Equal(t, "0°", heading(ptr(0)))
}

func init() {

	//log handling
	log = logrus.New()
	log.Formatter = new(logrus.TextFormatter)
	log.Formatter.(*logrus.TextFormatter).DisableColors = true
	log.Formatter.(*logrus.TextFormatter).DisableTimestamp = true
	log.Level = logrus.TraceLevel
	log.Out = os.Stdout
}
