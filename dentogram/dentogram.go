// Package dentogram models the per-tooth surface chart of a single patient.
//
// A Model always holds exactly one record for each of the 32 permanent teeth,
// numbered in FDI notation (quadrants 1-4, positions 1-8).
package dentogram

import (
	"context"
	"errors"
	"fmt"
)

// SurfaceStatus is the condition of one tooth face.
type SurfaceStatus string

const (
	Healthy SurfaceStatus = "healthy"
	Cavity  SurfaceStatus = "cavity"
	Filling SurfaceStatus = "filling"
	Crown   SurfaceStatus = "crown"
	Missing SurfaceStatus = "missing"
)

// Statuses lists every SurfaceStatus, healthy first.
var Statuses = []SurfaceStatus{Healthy, Cavity, Filling, Crown, Missing}

// Valid reports whether s is a known status.
func (s SurfaceStatus) Valid() bool {
	switch s {
	case Healthy, Cavity, Filling, Crown, Missing:
		return true
	}
	return false
}

// Surface names one of the five faces of a tooth.
type Surface string

const (
	Vestibular Surface = "vestibular"
	Lingual    Surface = "lingual"
	Mesial     Surface = "mesial"
	Distal     Surface = "distal"
	Occlusal   Surface = "occlusal"
)

// SurfaceNames lists the five surfaces in chart order.
var SurfaceNames = []Surface{Vestibular, Lingual, Mesial, Distal, Occlusal}

var (
	ErrUnknownTooth   = errors.New("unknown tooth number")
	ErrUnknownSurface = errors.New("unknown tooth surface")
	ErrInvalidStatus  = errors.New("invalid surface status")
)

// Surfaces holds the status of each face of a tooth.
type Surfaces struct {
	Vestibular SurfaceStatus `json:"vestibular"`
	Lingual    SurfaceStatus `json:"lingual"`
	Mesial     SurfaceStatus `json:"mesial"`
	Distal     SurfaceStatus `json:"distal"`
	Occlusal   SurfaceStatus `json:"occlusal"`
}

// AllHealthy returns a Surfaces value with every face healthy.
func AllHealthy() Surfaces {
	return Surfaces{
		Vestibular: Healthy,
		Lingual:    Healthy,
		Mesial:     Healthy,
		Distal:     Healthy,
		Occlusal:   Healthy,
	}
}

// Get returns the status of one surface.
func (s Surfaces) Get(surface Surface) (SurfaceStatus, error) {
	switch surface {
	case Vestibular:
		return s.Vestibular, nil
	case Lingual:
		return s.Lingual, nil
	case Mesial:
		return s.Mesial, nil
	case Distal:
		return s.Distal, nil
	case Occlusal:
		return s.Occlusal, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSurface, surface)
}

// With returns a copy of s with one surface replaced.
func (s Surfaces) With(surface Surface, status SurfaceStatus) (Surfaces, error) {
	switch surface {
	case Vestibular:
		s.Vestibular = status
	case Lingual:
		s.Lingual = status
	case Mesial:
		s.Mesial = status
	case Distal:
		s.Distal = status
	case Occlusal:
		s.Occlusal = status
	default:
		return s, fmt.Errorf("%w: %q", ErrUnknownSurface, surface)
	}
	return s, nil
}

// normalized replaces blank or unknown surface statuses, as found in partially
// stored or hand-edited charts, with healthy.
func (s Surfaces) normalized() Surfaces {
	for _, field := range []*SurfaceStatus{&s.Vestibular, &s.Lingual, &s.Mesial, &s.Distal, &s.Occlusal} {
		if !field.Valid() {
			*field = Healthy
		}
	}
	return s
}

func (s Surfaces) list() [5]SurfaceStatus {
	return [5]SurfaceStatus{s.Vestibular, s.Lingual, s.Mesial, s.Distal, s.Occlusal}
}

// ToothRecord is the chart entry of one tooth.
type ToothRecord struct {
	Number   int      `json:"number"`
	Surfaces Surfaces `json:"surfaces"`
	Notes    string   `json:"notes,omitempty"`
}

// displayPriority is the order in which statuses win the per-tooth display.
var displayPriority = []SurfaceStatus{Missing, Cavity, Crown, Filling}

// DisplayStatus aggregates the five surfaces into the single status shown for
// the tooth: missing, then cavity, then crown, then filling, else healthy.
func (t ToothRecord) DisplayStatus() SurfaceStatus {
	surfaces := t.Surfaces.list()
	for _, candidate := range displayPriority {
		for _, status := range surfaces {
			if status == candidate {
				return candidate
			}
		}
	}
	return Healthy
}

// ToothNumbers are the FDI numbers of the permanent dentition in chart order.
var ToothNumbers = buildToothNumbers()

func buildToothNumbers() []int {
	numbers := make([]int, 0, 32)
	for quadrant := 1; quadrant <= 4; quadrant++ {
		for position := 1; position <= 8; position++ {
			numbers = append(numbers, quadrant*10+position)
		}
	}
	return numbers
}

// ValidTooth reports whether number is one of the 32 FDI tooth numbers.
func ValidTooth(number int) bool {
	quadrant, position := number/10, number%10
	return quadrant >= 1 && quadrant <= 4 && position >= 1 && position <= 8
}

// Quadrant returns the FDI quadrant (1-4) of a tooth, or 0 if the number is
// not valid.
func Quadrant(number int) int {
	if !ValidTooth(number) {
		return 0
	}
	return number / 10
}

// SaveFunc persists the full chart. It is supplied by the caller.
type SaveFunc func(ctx context.Context, records []ToothRecord) error

// Model is the editable chart of one patient. It is not safe for concurrent
// use.
type Model struct {
	teeth    []ToothRecord
	index    map[int]int
	modified bool
}

// New builds a chart from previously stored records. Teeth absent from initial
// start all healthy; records with unknown numbers are dropped.
func New(initial []ToothRecord) *Model {
	given := make(map[int]ToothRecord, len(initial))
	for _, record := range initial {
		if ValidTooth(record.Number) {
			record.Surfaces = record.Surfaces.normalized()
			given[record.Number] = record
		}
	}

	m := &Model{
		teeth: make([]ToothRecord, len(ToothNumbers)),
		index: make(map[int]int, len(ToothNumbers)),
	}
	for i, number := range ToothNumbers {
		record, ok := given[number]
		if !ok {
			record = ToothRecord{Number: number, Surfaces: AllHealthy()}
		}
		m.teeth[i] = record
		m.index[number] = i
	}
	return m
}

// Records returns a copy of all 32 records in chart order.
func (m *Model) Records() []ToothRecord {
	out := make([]ToothRecord, len(m.teeth))
	copy(out, m.teeth)
	return out
}

// Tooth returns the record of one tooth.
func (m *Model) Tooth(number int) (ToothRecord, error) {
	i, ok := m.index[number]
	if !ok {
		return ToothRecord{}, fmt.Errorf("%w: %d", ErrUnknownTooth, number)
	}
	return m.teeth[i], nil
}

// DisplayStatus returns the aggregated status of one tooth.
func (m *Model) DisplayStatus(number int) (SurfaceStatus, error) {
	tooth, err := m.Tooth(number)
	if err != nil {
		return "", err
	}
	return tooth.DisplayStatus(), nil
}

// SetSurfaceStatus changes one surface of one tooth. Nothing else in the chart
// is touched.
func (m *Model) SetSurfaceStatus(number int, surface Surface, status SurfaceStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	i, ok := m.index[number]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTooth, number)
	}
	surfaces, err := m.teeth[i].Surfaces.With(surface, status)
	if err != nil {
		return err
	}
	m.teeth[i].Surfaces = surfaces
	m.modified = true
	return nil
}

// SetNotes replaces the free-text notes of one tooth.
func (m *Model) SetNotes(number int, notes string) error {
	i, ok := m.index[number]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownTooth, number)
	}
	m.teeth[i].Notes = notes
	m.modified = true
	return nil
}

// Reset sets every surface of every tooth back to healthy. The chart is marked
// modified even when it was already all healthy.
func (m *Model) Reset() {
	for i := range m.teeth {
		m.teeth[i].Surfaces = AllHealthy()
	}
	m.modified = true
}

// Modified reports whether the chart has unsaved changes.
func (m *Model) Modified() bool {
	return m.modified
}

// Save hands the full chart to save. The modified flag is cleared only when
// save succeeds; its error is returned unchanged.
func (m *Model) Save(ctx context.Context, save SaveFunc) error {
	if err := save(ctx, m.Records()); err != nil {
		return err
	}
	m.modified = false
	return nil
}

// Summary counts teeth per display status.
func (m *Model) Summary() map[SurfaceStatus]int {
	counts := make(map[SurfaceStatus]int, len(Statuses))
	for _, status := range Statuses {
		counts[status] = 0
	}
	for _, tooth := range m.teeth {
		counts[tooth.DisplayStatus()]++
	}
	return counts
}
