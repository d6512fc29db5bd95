package repositories

import (
	"GoodDental/events"
	"GoodDental/models"
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const dentogramCollection = "dentogram"

// DentogramRepository keeps one chart document per patient.
type DentogramRepository struct {
	db        *gorm.DB
	cache     Cache
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

func NewDentogramRepository(db *gorm.DB, cache Cache, publisher events.Publisher, logger zerolog.Logger) *DentogramRepository {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &DentogramRepository{
		db:        db,
		cache:     cache,
		publisher: publisher,
		logger:    logger.With().Str("collection", dentogramCollection).Logger(),
		now:       time.Now,
	}
}

// Get returns nil and no error when the patient has no stored chart.
func (r *DentogramRepository) Get(ctx context.Context, patientID string) (*models.DentogramDocument, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	key := r.cacheKey(patientID)
	if cached, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache")
	} else if cached != "" {
		var doc models.DentogramDocument
		if err := json.Unmarshal([]byte(cached), &doc); err == nil {
			return &doc, nil
		}
	}

	var doc models.DentogramDocument
	err := r.db.WithContext(ctx).First(&doc, "patient_id = ?", patientID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get dentogram of patient %s", patientID)
	}

	if data, err := json.Marshal(doc); err == nil {
		if err := r.cache.Set(ctx, key, data, CacheExpiry); err != nil {
			r.logger.Warn().Err(err).Str("key", key).Msg("failed to write cache")
		}
	}
	return &doc, nil
}

// Save writes the whole document, inserting it on first save.
func (r *DentogramRepository) Save(ctx context.Context, doc *models.DentogramDocument) error {
	if doc.PatientID == "" {
		return errors.New("dentogram without patient id")
	}
	doc.UpdatedAt = r.now().UnixMilli()

	lockKey := dentogramCollection + "_lock:" + doc.PatientID
	return lockAndRun(ctx, r.cache, r.logger, lockKey, 3, 2*time.Second, func() error {
		err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "patient_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"teeth", "updated_at", "updated_by"}),
		}).Create(doc).Error
		if err != nil {
			return errors.Wrapf(err, "failed to save dentogram of patient %s", doc.PatientID)
		}

		if err := r.cache.Delete(ctx, r.cacheKey(doc.PatientID)); err != nil {
			r.logger.Error().Err(err).Msg("failed to invalidate cache")
		}
		if err := r.publisher.Publish(ctx, events.NewEvent(dentogramCollection, events.Updated, doc.PatientID)); err != nil {
			r.logger.Error().Err(err).Msg("failed to publish change event")
		}
		return nil
	})
}

func (r *DentogramRepository) cacheKey(patientID string) string {
	return dentogramCollection + "_cache:" + patientID
}
