package reader

import (
	"github.com/tsfile-go/tsfile/errs"
	"github.com/tsfile-go/tsfile/schema"
)

// RowMaterializer merges one device's requested FIELD columns into a
// shared time axis, per spec.md §4.7's single-device row materializer:
// open one SeriesScan per column, repeatedly take the minimum of every
// active scan's current time, let columns whose head matches that time
// contribute their value and advance, and let every other column
// contribute null for that row. A column with no data at all for this
// device (SeriesScan lookup came back NOT_EXIST) is simply absent from
// scans and contributes null to every row.
type RowMaterializer struct {
	columns []string
	scans   map[string]*SeriesScan
}

// NewRowMaterializer opens a SeriesScan per fieldName that exists for
// deviceID, silently omitting any that don't.
func (r *Reader) NewRowMaterializer(deviceID schema.DeviceID, fieldNames []string, filter *TimeRange) (*RowMaterializer, error) {
	scans := make(map[string]*SeriesScan, len(fieldNames))

	for _, name := range fieldNames {
		s, err := r.NewSeriesScan(deviceID, name, filter)
		if err != nil {
			if kind, ok := errs.KindOf(err); ok && kind == errs.KindMeasurementNotExist {
				continue
			}

			return nil, err
		}
		if err := s.Advance(); err != nil {
			return nil, err
		}
		scans[name] = s
	}

	return &RowMaterializer{columns: fieldNames, scans: scans}, nil
}

// MaterializeAll drains every open scan into parallel time/value
// columns.
func (m *RowMaterializer) MaterializeAll() ([]int64, map[string][]any, error) {
	var times []int64
	values := make(map[string][]any, len(m.columns))

	active := make(map[string]*SeriesScan, len(m.scans))
	for name, s := range m.scans {
		if _, _, ok := s.Head(); ok {
			active[name] = s
		}
	}

	for len(active) > 0 {
		tMin := int64(0)
		first := true
		for _, s := range active {
			t, _, _ := s.Head()
			if first || t < tMin {
				tMin = t
				first = false
			}
		}

		times = append(times, tMin)
		for _, name := range m.columns {
			s, ok := active[name]
			if !ok {
				values[name] = append(values[name], nil)

				continue
			}

			t, v, _ := s.Head()
			if t != tMin {
				values[name] = append(values[name], nil)

				continue
			}

			values[name] = append(values[name], v)
			if err := s.Advance(); err != nil {
				return nil, nil, err
			}
			if _, _, ok := s.Head(); !ok {
				delete(active, name)
			}
		}
	}

	return times, values, nil
}

// Close closes every scan this materializer opened, returning the
// first error encountered (if any).
func (m *RowMaterializer) Close() error {
	var firstErr error
	for _, s := range m.scans {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
