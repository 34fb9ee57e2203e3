package point

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Parse decodes a GeoJSON FeatureCollection. A missing features list yields an
// empty dataset. Features whose coordinates are missing, short or non-numeric
// are kept with fewer than two coordinates so callers can drop them.
func Parse(data []byte) (Dataset, error) {
	if !gjson.ValidBytes(data) {
		return Dataset{}, ErrParse
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return Dataset{}, fmt.Errorf("%w: top level is %s, want object", ErrParse, root.Type)
	}

	features := root.Get("features")
	if !features.IsArray() {
		return Dataset{}, nil
	}

	var ds Dataset
	features.ForEach(func(_, f gjson.Result) bool {
		ds.Points = append(ds.Points, Point{
			Coordinates: parseCoordinates(f.Get("geometry.coordinates")),
			Properties:  parseProperties(f.Get("properties")),
		})
		return true
	})
	return ds, nil
}

func parseCoordinates(r gjson.Result) []float64 {
	if !r.IsArray() {
		return nil
	}
	var coords []float64
	for _, c := range r.Array() {
		v, ok := number(c)
		if !ok {
			break
		}
		coords = append(coords, v)
	}
	return coords
}

// number accepts finite JSON numbers and numeric strings.
func number(r gjson.Result) (float64, bool) {
	var f float64
	switch r.Type {
	case gjson.Number:
		f = r.Num
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return 0, false
		}
		f = v
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func parseProperties(r gjson.Result) Properties {
	if !r.IsObject() {
		return Properties{}
	}
	m, ok := r.Value().(map[string]any)
	if !ok {
		return Properties{}
	}
	return Properties(m)
}
