package gtfsrt

import (
	"strconv"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"

	"github.com/rickgao/rail-data/internal/model"
)

// Version is the GTFS-Realtime format version written in the feed header.
const Version = "2.0"

// BuildFeed converts a snapshot to a full-dataset feed message.
// Records without a known position keep their entity but carry no Position.
func BuildFeed(snap model.Snapshot) *gtfs.FeedMessage {
	ts := uint64(snap.PolledAt.Unix())

	msg := &gtfs.FeedMessage{
		Header: &gtfs.FeedHeader{
			GtfsRealtimeVersion: proto.String(Version),
			Incrementality:      gtfs.FeedHeader_FULL_DATASET.Enum(),
			Timestamp:           proto.Uint64(ts),
		},
		Entity: make([]*gtfs.FeedEntity, 0, len(snap.Records)),
	}

	ids := make(map[string]int, len(snap.Records))
	for _, r := range snap.Records {
		vp := &gtfs.VehiclePosition{
			Vehicle: &gtfs.VehicleDescriptor{
				Id:    proto.String(r.TrainCode),
				Label: proto.String(r.Direction),
			},
			Timestamp: proto.Uint64(ts),
		}
		if pos, ok := position(r); ok {
			vp.Position = pos
		}

		msg.Entity = append(msg.Entity, &gtfs.FeedEntity{
			Id:      proto.String(entityID(ids, r.TrainCode)),
			Vehicle: vp,
		})
	}
	return msg
}

// entityID returns code, or code-N for the Nth repeat within one feed.
func entityID(seen map[string]int, code string) string {
	n := seen[code]
	seen[code] = n + 1
	if n == 0 {
		return code
	}
	return code + "-" + strconv.Itoa(n)
}

func position(r model.PositionRecord) (*gtfs.Position, bool) {
	if !r.HasKnownPosition() {
		return nil, false
	}
	lat, _ := r.Lat()
	lon, _ := r.Lon()
	return &gtfs.Position{
		Latitude:  proto.Float32(float32(lat)),
		Longitude: proto.Float32(float32(lon)),
	}, true
}
