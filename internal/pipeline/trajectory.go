package pipeline

import (
	"math"
	"sync"
	"time"

	"argus-dashboard-go/internal/models"
)

// DefaultTrajectoryCap bounds the number of retained points per person.
const DefaultTrajectoryCap = 100

// trajectoryStore is the owned table keyed by global id. The backing map is
// never handed out; callers always go through the narrow accessors.
type trajectoryStore struct {
	entries map[string]*models.PersonTrajectoryData
}

func newTrajectoryStore() *trajectoryStore {
	return &trajectoryStore{entries: make(map[string]*models.PersonTrajectoryData)}
}

func (s *trajectoryStore) get(id string) (*models.PersonTrajectoryData, bool) {
	t, ok := s.entries[id]
	return t, ok
}

func (s *trajectoryStore) put(id string, t *models.PersonTrajectoryData) {
	s.entries[id] = t
}

func (s *trajectoryStore) remove(id string) {
	delete(s.entries, id)
}

func (s *trajectoryStore) clear() {
	s.entries = make(map[string]*models.PersonTrajectoryData)
}

func (s *trajectoryStore) ids() []string {
	out := make([]string, 0, len(s.entries))
	for id := range s.entries {
		out = append(out, id)
	}
	return out
}

// TrajectoryProcessor maintains bounded per-person position history and
// derives movement statistics over the retained window. Trajectory and
// color lifecycle are coupled: clearing a trajectory releases its color.
type TrajectoryProcessor struct {
	mu     sync.RWMutex
	store  *trajectoryStore
	colors *ColorRegistry
	cap    int
}

// NewTrajectoryProcessor builds a processor with the given point cap
// (DefaultTrajectoryCap when maxPoints <= 0) and color registry.
func NewTrajectoryProcessor(maxPoints int, colors *ColorRegistry) *TrajectoryProcessor {
	if maxPoints <= 0 {
		maxPoints = DefaultTrajectoryCap
	}
	if colors == nil {
		colors = NewColorRegistry(nil)
	}
	return &TrajectoryProcessor{
		store:  newTrajectoryStore(),
		colors: colors,
		cap:    maxPoints,
	}
}

// RecordPoint appends a position sample for id, creating the trajectory on
// first sight, evicting the oldest points past the cap, and recomputing
// distance and speed. Statistics always cover the retained window, not the
// full lifetime: long-lived trajectories must not grow unbounded.
func (tp *TrajectoryProcessor) RecordPoint(id string, position models.Point2D, cameraID string, confidence float64, ts time.Time) {
	tp.mu.Lock()
	defer tp.mu.Unlock()

	traj, ok := tp.store.get(id)
	if !ok {
		traj = &models.PersonTrajectoryData{
			GlobalID: id,
			Color:    tp.colors.ColorFor(id),
		}
		tp.store.put(id, traj)
	}

	traj.Points = append(traj.Points, models.TrajectoryPoint{
		Position:   position,
		Timestamp:  ts,
		CameraID:   cameraID,
		Confidence: confidence,
	})
	if overflow := len(traj.Points) - tp.cap; overflow > 0 {
		traj.Points = traj.Points[overflow:]
	}

	traj.TotalDistance = totalDistance(traj.Points)
	traj.AverageSpeed = averageSpeed(traj.Points, traj.TotalDistance)
	traj.LastUpdated = ts
}

func totalDistance(points []models.TrajectoryPoint) float64 {
	var sum float64
	for i := 1; i < len(points); i++ {
		dx := points[i].Position.X - points[i-1].Position.X
		dy := points[i].Position.Y - points[i-1].Position.Y
		sum += math.Hypot(dx, dy)
	}
	return sum
}

func averageSpeed(points []models.TrajectoryPoint, distance float64) float64 {
	if len(points) < 2 {
		return 0
	}
	elapsed := points[len(points)-1].Timestamp.Sub(points[0].Timestamp).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return distance / elapsed
}

// Get returns an immutable snapshot of the trajectory for id. Callers must
// not treat absence as an error; a person simply has no history yet.
func (tp *TrajectoryProcessor) Get(id string) (models.PersonTrajectoryData, bool) {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	traj, ok := tp.store.get(id)
	if !ok {
		return models.PersonTrajectoryData{}, false
	}
	return snapshot(traj), true
}

// All returns immutable snapshots of every live trajectory.
func (tp *TrajectoryProcessor) All() []models.PersonTrajectoryData {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	out := make([]models.PersonTrajectoryData, 0, len(tp.store.entries))
	for _, id := range tp.store.ids() {
		traj, _ := tp.store.get(id)
		out = append(out, snapshot(traj))
	}
	return out
}

func snapshot(traj *models.PersonTrajectoryData) models.PersonTrajectoryData {
	cp := *traj
	cp.Points = make([]models.TrajectoryPoint, len(traj.Points))
	copy(cp.Points, traj.Points)
	return cp
}

// Clear drops the trajectory for id and releases its color.
func (tp *TrajectoryProcessor) Clear(id string) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.store.remove(id)
	tp.colors.Release(id)
}

// ClearAll drops all trajectory state and the associated color
// assignments. The color cursor is left where it was; reassigned ids may
// get different colors than before, which is expected.
func (tp *TrajectoryProcessor) ClearAll() {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	for _, id := range tp.store.ids() {
		tp.colors.Release(id)
	}
	tp.store.clear()
}

// Count returns the number of live trajectories.
func (tp *TrajectoryProcessor) Count() int {
	tp.mu.RLock()
	defer tp.mu.RUnlock()
	return len(tp.store.entries)
}
