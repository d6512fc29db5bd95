package services

import (
	"GoodDental/dentogram"
	"GoodDental/models"
	"GoodDental/store"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	// ErrNoSession is returned for a patient whose chart is not open.
	ErrNoSession = errors.New("dentogram is not open for this patient")

	// ErrSessionInUse is returned when another employee holds unsaved changes
	// to the patient's chart.
	ErrSessionInUse = errors.New("dentogram has unsaved changes by another employee")
)

// DentogramIdleTimeout is how long an untouched session is kept.
const DentogramIdleTimeout = 2 * time.Hour

// ToothView is one tooth together with its derived status.
type ToothView struct {
	dentogram.ToothRecord
	Display dentogram.SurfaceStatus `json:"display"`
}

// DentogramView is the state of an open chart.
type DentogramView struct {
	PatientID string                          `json:"patientId"`
	Teeth     []ToothView                     `json:"teeth"`
	Modified  bool                            `json:"modified"`
	Summary   map[dentogram.SurfaceStatus]int `json:"summary"`
}

type dentogramSession struct {
	mu       sync.Mutex
	model    *dentogram.Model
	owner    string
	lastUsed time.Time
}

// DentogramService holds one editable chart per patient being viewed.
type DentogramService struct {
	remote   DentogramRemote
	patients *store.Store[models.Patient]
	logger   zerolog.Logger
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*dentogramSession
}

func NewDentogramService(remote DentogramRemote, patients *store.Store[models.Patient], logger zerolog.Logger) *DentogramService {
	return &DentogramService{
		remote:   remote,
		patients: patients,
		logger:   logger.With().Str("component", "dentogram").Logger(),
		now:      time.Now,
		sessions: make(map[string]*dentogramSession),
	}
}

// Open loads the stored chart, or a healthy one, into a fresh session owned
// by employeeID. An open session without unsaved changes is replaced. One
// with unsaved changes can only be reopened by its owner, who gets it back
// as is.
func (s *DentogramService) Open(ctx context.Context, patientID, employeeID string) (DentogramView, error) {
	if _, ok := s.patients.Get(patientID); !ok {
		return DentogramView{}, store.ErrNotLoaded
	}
	s.SweepIdle()

	if existing, err := s.session(patientID); err == nil {
		existing.mu.Lock()
		modified, owner := existing.model.Modified(), existing.owner
		if modified && owner == employeeID {
			existing.lastUsed = s.now()
		}
		existing.mu.Unlock()
		if modified {
			if owner != employeeID {
				return DentogramView{}, ErrSessionInUse
			}
			return s.view(patientID, existing), nil
		}
	}

	doc, err := s.remote.Get(ctx, patientID)
	if err != nil {
		return DentogramView{}, fmt.Errorf("failed to load dentogram: %w", err)
	}

	var initial []dentogram.ToothRecord
	if doc != nil {
		initial = doc.Teeth
	}
	session := &dentogramSession{model: dentogram.New(initial), owner: employeeID, lastUsed: s.now()}

	s.mu.Lock()
	if current, ok := s.sessions[patientID]; ok && current.owner != employeeID && current.isModified() {
		s.mu.Unlock()
		return DentogramView{}, ErrSessionInUse
	}
	s.sessions[patientID] = session
	s.mu.Unlock()

	return s.view(patientID, session), nil
}

// SweepIdle drops sessions untouched for longer than DentogramIdleTimeout,
// unsaved changes included. It returns how many were dropped.
func (s *DentogramService) SweepIdle() int {
	cutoff := s.now().Add(-DentogramIdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for patientID, session := range s.sessions {
		session.mu.Lock()
		idle := session.lastUsed.Before(cutoff)
		modified := session.model.Modified()
		session.mu.Unlock()
		if !idle {
			continue
		}
		delete(s.sessions, patientID)
		dropped++
		if modified {
			s.logger.Warn().Str("patient_id", patientID).Str("employee_id", session.owner).Msg("idle dentogram dropped with unsaved changes")
		}
	}
	return dropped
}

// View returns the open chart.
func (s *DentogramService) View(patientID string) (DentogramView, error) {
	session, err := s.session(patientID)
	if err != nil {
		return DentogramView{}, err
	}
	return s.view(patientID, session), nil
}

func (s *DentogramService) SetSurface(patientID string, tooth int, surface dentogram.Surface, status dentogram.SurfaceStatus) (DentogramView, error) {
	return s.mutate(patientID, func(m *dentogram.Model) error {
		return m.SetSurfaceStatus(tooth, surface, status)
	})
}

func (s *DentogramService) SetNotes(patientID string, tooth int, notes string) (DentogramView, error) {
	return s.mutate(patientID, func(m *dentogram.Model) error {
		return m.SetNotes(tooth, notes)
	})
}

func (s *DentogramService) Reset(patientID string) (DentogramView, error) {
	return s.mutate(patientID, func(m *dentogram.Model) error {
		m.Reset()
		return nil
	})
}

// Save writes the whole open chart. The session stays modified when the write
// fails.
func (s *DentogramService) Save(ctx context.Context, patientID, updatedBy string) (DentogramView, error) {
	session, err := s.session(patientID)
	if err != nil {
		return DentogramView{}, err
	}

	session.mu.Lock()
	session.lastUsed = s.now()
	err = session.model.Save(ctx, func(ctx context.Context, teeth []dentogram.ToothRecord) error {
		return s.remote.Save(ctx, &models.DentogramDocument{
			PatientID: patientID,
			Teeth:     teeth,
			UpdatedBy: updatedBy,
		})
	})
	session.mu.Unlock()

	if err != nil {
		s.logger.Error().Err(err).Str("patient_id", patientID).Msg("failed to save dentogram")
		return s.view(patientID, session), fmt.Errorf("failed to save dentogram: %w", err)
	}
	return s.view(patientID, session), nil
}

// Close discards the session and any unsaved changes.
func (s *DentogramService) Close(patientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, patientID)
}

func (s *DentogramService) mutate(patientID string, fn func(m *dentogram.Model) error) (DentogramView, error) {
	session, err := s.session(patientID)
	if err != nil {
		return DentogramView{}, err
	}

	session.mu.Lock()
	session.lastUsed = s.now()
	err = fn(session.model)
	session.mu.Unlock()
	if err != nil {
		return DentogramView{}, err
	}
	return s.view(patientID, session), nil
}

func (s *DentogramService) session(patientID string) (*dentogramSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[patientID]
	if !ok {
		return nil, ErrNoSession
	}
	return session, nil
}

func (s *DentogramService) view(patientID string, session *dentogramSession) DentogramView {
	session.mu.Lock()
	defer session.mu.Unlock()

	records := session.model.Records()
	teeth := make([]ToothView, len(records))
	for i, r := range records {
		teeth[i] = ToothView{ToothRecord: r, Display: r.DisplayStatus()}
	}
	return DentogramView{
		PatientID: patientID,
		Teeth:     teeth,
		Modified:  session.model.Modified(),
		Summary:   session.model.Summary(),
	}
}

func (d *dentogramSession) isModified() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Modified()
}
