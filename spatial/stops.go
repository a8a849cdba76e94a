package spatial

import (
	"github.com/dhconnelly/rtreego"

	"shuttle-tracker/models"
)

// pointTolerance turns a stop into a tiny bounding box; rtreego indexes
// rectangles, not bare points.
const pointTolerance = 0.0001

// stopPoint wraps a stop to satisfy the rtreego.Spatial interface.
type stopPoint struct {
	stop  models.StopWithID
	point rtreego.Point
}

func (p *stopPoint) Bounds() rtreego.Rect {
	return p.point.ToRect(pointTolerance)
}

// NearestStops returns up to k stops closest to the given position, nearest
// first. The tree is built from the snapshot per call; the stop collection
// is small and changes rarely, so keeping an index in sync with the store
// is not worth the coupling. Neighbor distance is Euclidean over lat/lon,
// which is fine at campus scale.
func NearestStops(stops map[string]models.Stop, lat, lon float64, k int) []models.StopWithID {
	if k <= 0 {
		k = 1
	}
	tree := rtreego.NewTree(2, 25, 50)
	for id, stop := range stops {
		tree.Insert(&stopPoint{
			stop:  models.StopWithID{ID: id, Stop: stop},
			point: rtreego.Point{stop.Lat, stop.Lon},
		})
	}

	nearest := make([]models.StopWithID, 0, k)
	for _, item := range tree.NearestNeighbors(k, rtreego.Point{lat, lon}) {
		// NearestNeighbors pads with nil when fewer than k stops exist.
		if p, ok := item.(*stopPoint); ok {
			nearest = append(nearest, p.stop)
		}
	}
	return nearest
}
