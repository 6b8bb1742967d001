package metaindex

import (
	"sort"

	"github.com/tsfile-go/tsfile/chunk"
	"github.com/tsfile-go/tsfile/format"
	"github.com/tsfile-go/tsfile/schema"
)

// DeviceSeries is one device's ordered TimeseriesIndex stream, in
// measurement-name order.
type DeviceSeries struct {
	DeviceID schema.DeviceID
	Series   []TimeseriesIndex
}

// TSMIterator transforms the chunk-group metadata recorded across a
// file's lifetime into an ordered stream of per-device TimeseriesIndex
// records, per spec.md §4.5 step 1-2:
//  1. within each chunk-group, group chunk metas by measurement name and
//     sort each group by offset ascending;
//  2. iterate devices in device-id order, and within a device iterate
//     measurements in name order, concatenating same-name chunk metas
//     across every chunk-group recorded for that device into one
//     TimeseriesIndex.
func TSMIterator(groups []ChunkGroupMeta) ([]DeviceSeries, error) {
	byDevice := make(map[string]*ChunkGroupMeta)
	var order []schema.DeviceID

	for _, g := range groups {
		key := g.DeviceID.String()
		existing, ok := byDevice[key]
		if !ok {
			gCopy := g
			gCopy.Chunks = append([]ChunkMeta(nil), g.Chunks...)
			byDevice[key] = &gCopy
			order = append(order, g.DeviceID)

			continue
		}
		existing.Chunks = append(existing.Chunks, g.Chunks...)
	}

	schema.SortDeviceIDs(order)

	out := make([]DeviceSeries, 0, len(order))
	for _, devID := range order {
		g := byDevice[devID.String()]

		byMeasurement := make(map[string][]chunk.Metadata)
		var names []string
		for _, cm := range g.Chunks {
			if _, seen := byMeasurement[cm.MeasurementName]; !seen {
				names = append(names, cm.MeasurementName)
			}
			byMeasurement[cm.MeasurementName] = append(byMeasurement[cm.MeasurementName], chunk.Metadata{
				OffsetOfChunkHeader: cm.OffsetOfHeader,
				Statistics:          cm.Statistics,
			})
		}
		sort.Strings(names)

		var series []TimeseriesIndex
		for _, name := range names {
			metas := byMeasurement[name]
			sort.Slice(metas, func(i, j int) bool {
				return metas[i].OffsetOfChunkHeader < metas[j].OffsetOfChunkHeader
			})

			dt := findDataType(g.Chunks, name)
			alignedTime := g.Aligned && name == ""
			alignedValue := g.Aligned && name != ""

			ts, err := NewTimeseriesIndex(name, dt, metas, alignedTime, alignedValue)
			if err != nil {
				return nil, err
			}
			series = append(series, ts)
		}

		out = append(out, DeviceSeries{DeviceID: devID, Series: series})
	}

	return out, nil
}

func findDataType(chunks []ChunkMeta, name string) format.DataType {
	for _, c := range chunks {
		if c.MeasurementName == name {
			return c.DataType
		}
	}

	return 0
}
