package tools

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Bbox - a bounding box structure
type Bbox struct {
	LatSW float64 `json:"latSW"`
	LonSW float64 `json:"lonSW"`
	LatNE float64 `json:"latNE"`
	LonNE float64 `json:"lonNE"`

	// set is true once parsed from a non empty string, 0,0^0,0 included
	set bool
}

// IsSet reports whether a bounding box was given
func (b Bbox) IsSet() bool {
	return b.set
}

func (b Bbox) String() string {
	return fmt.Sprintf("%g,%g^%g,%g", b.LatSW, b.LonSW, b.LatNE, b.LonNE)
}

// GetBbox parses 'lat,lon^lat,lon' (SW^NE). An empty string yields an unset Bbox.
func GetBbox(data string) (Bbox, error) {
	result := Bbox{}
	if strings.TrimSpace(data) == "" {
		return result, nil
	}
	sWnE := strings.Split(data, "^")
	if len(sWnE) != 2 {
		return result, errors.New("Bounding Box malformed - need ^ for separating SW and NE coordinate")
	}

	for idx, latlonRec := range sWnE {
		latlon := strings.Split(latlonRec, ",")
		if len(latlon) != 2 {
			return result, errors.New("Bounding Box malformed - need , for separating lat and lon coordinate")
		}
		lat, errLat := strconv.ParseFloat(strings.TrimSpace(latlon[0]), 64)
		if errLat != nil {
			return result, errLat
		}
		lon, errLon := strconv.ParseFloat(strings.TrimSpace(latlon[1]), 64)
		if errLon != nil {
			return result, errLon
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			return result, fmt.Errorf("Bounding Box malformed - coordinate out of range (%s)", latlonRec)
		}
		if idx == 0 {
			result.LatSW = lat
			result.LonSW = lon
		} else {
			result.LatNE = lat
			result.LonNE = lon
		}
	}
	if result.LatSW > result.LatNE || result.LonSW > result.LonNE {
		return result, errors.New("Bounding Box malformed - SW corner must be south-west of NE corner")
	}
	result.set = true
	return result, nil
}

func BboxToWKT(bbox Bbox) string {
	sw := fmt.Sprintf("%f %f", bbox.LonSW, bbox.LatSW)
	nw := fmt.Sprintf("%f %f", bbox.LonSW, bbox.LatNE)
	ne := fmt.Sprintf("%f %f", bbox.LonNE, bbox.LatNE)
	se := fmt.Sprintf("%f %f", bbox.LonNE, bbox.LatSW)
	result := fmt.Sprintf("POLYGON((%s, %s, %s, %s, %s))", sw, nw, ne, se, sw)
	return result
}
