package repositories

import (
	"GoodDental/events"
	"GoodDental/models"
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

const (
	CacheExpiry = 7 * 24 * time.Hour

	queryTimeout = 5 * time.Second
	lockTTL      = 10 * time.Second
)

// ErrNotFound is returned by writes that matched no row.
var ErrNotFound = errors.New("record not found")

// Cache is the key/value store kept in front of the database. *cache.Cache
// implements it.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, key string) error
	Lock(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Unlock(ctx context.Context, key, value string) error
}

// Options tune a Repository.
type Options struct {
	// OmitOnUpdate lists columns a full-record update must never overwrite,
	// typically ones the JSON form of the record does not carry.
	OmitOnUpdate []string
	// LockRetries and LockDelay bound how long a write waits for the per-id
	// lock. Defaults: 3 tries, 2s apart.
	LockRetries int
	LockDelay   time.Duration
	Now         func() time.Time
}

// Repository stores one model type in its own table. The id and timestamps of
// every record are assigned here.
type Repository[T any, PT interface {
	*T
	models.Entity
}] struct {
	db         *gorm.DB
	cache      Cache
	publisher  events.Publisher
	logger     zerolog.Logger
	collection string
	columns    map[string]bool
	omit       []string
	retries    int
	delay      time.Duration
	now        func() time.Time
}

// NewRepository builds a repository for T. The collection name, used in cache
// keys and events, is the model's table name.
func NewRepository[T any, PT interface {
	*T
	models.Entity
}](db *gorm.DB, cache Cache, publisher events.Publisher, logger zerolog.Logger, opts Options) (*Repository[T, PT], error) {
	s, err := schema.Parse(new(T), &sync.Map{}, schema.NamingStrategy{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse model schema")
	}

	columns := make(map[string]bool, len(s.DBNames))
	for _, name := range s.DBNames {
		columns[name] = true
	}
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if opts.LockRetries <= 0 {
		opts.LockRetries = 3
	}
	if opts.LockDelay <= 0 {
		opts.LockDelay = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Repository[T, PT]{
		db:         db,
		cache:      cache,
		publisher:  publisher,
		logger:     logger.With().Str("collection", s.Table).Logger(),
		collection: s.Table,
		columns:    columns,
		omit:       append([]string{"id", "created_at"}, opts.OmitOnUpdate...),
		retries:    opts.LockRetries,
		delay:      opts.LockDelay,
		now:        opts.Now,
	}, nil
}

// Collection returns the table name.
func (r *Repository[T, PT]) Collection() string {
	return r.collection
}

// ListAll returns every row, oldest first.
func (r *Repository[T, PT]) ListAll(ctx context.Context) ([]T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if items, ok := r.cachedList(ctx); ok {
		return items, nil
	}

	token := r.beginFill(ctx)
	var items []T
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&items).Error; err != nil {
		return nil, errors.Wrapf(err, "failed to list %s", r.collection)
	}

	r.finishFill(ctx, token, items)
	return items, nil
}

// GetByID returns nil and no error when the row does not exist.
func (r *Repository[T, PT]) GetByID(ctx context.Context, id string) (*T, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	key := r.itemKey(id)
	if cached, err := r.cache.Get(ctx, key); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("failed to read cache")
	} else if cached != "" {
		var item T
		if err := json.Unmarshal([]byte(cached), &item); err == nil {
			return &item, nil
		}
	}

	var item T
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "failed to get %s %s", r.collection, id)
	}

	r.store(ctx, key, item)
	return &item, nil
}

// ListWhere returns rows whose column equals value. Only the model's own
// columns are accepted. Results are not cached.
func (r *Repository[T, PT]) ListWhere(ctx context.Context, column string, value interface{}) ([]T, error) {
	if !r.columns[column] {
		return nil, errors.Errorf("unknown %s column %q", r.collection, column)
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var items []T
	err := r.db.WithContext(ctx).
		Where(map[string]interface{}{column: value}).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, errors.Wrapf(err, "failed to query %s by %s", r.collection, column)
	}
	return items, nil
}

// Create inserts item with a fresh id and timestamps and returns the stored
// record. Any id or timestamps the caller set are replaced.
func (r *Repository[T, PT]) Create(ctx context.Context, item T) (T, error) {
	meta := PT(&item).Meta()
	now := r.now().UnixMilli()
	meta.ID = uuid.New().String()
	meta.CreatedAt = now
	meta.UpdatedAt = now
	meta.IsActive = true

	if err := r.db.WithContext(ctx).Create(PT(&item)).Error; err != nil {
		var zero T
		return zero, errors.Wrapf(err, "failed to create %s", r.collection)
	}

	r.invalidate(ctx, "")
	r.publish(ctx, events.Created, meta.ID)
	return item, nil
}

// Update overwrites every column of the row with item's id except the id,
// created_at and the configured omitted columns.
func (r *Repository[T, PT]) Update(ctx context.Context, item T) error {
	meta := PT(&item).Meta()
	if meta.ID == "" {
		return errors.Wrapf(ErrNotFound, "%s without id", r.collection)
	}
	if meta.UpdatedAt == 0 {
		meta.UpdatedAt = r.now().UnixMilli()
	}

	return r.withLock(ctx, meta.ID, func() error {
		res := r.db.WithContext(ctx).
			Model(PT(new(T))).
			Where("id = ?", meta.ID).
			Select("*").
			Omit(r.omit...).
			Updates(PT(&item))
		if res.Error != nil {
			return errors.Wrapf(res.Error, "failed to update %s %s", r.collection, meta.ID)
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "%s %s", r.collection, meta.ID)
		}

		r.invalidate(ctx, meta.ID)
		r.publish(ctx, events.Updated, meta.ID)
		return nil
	})
}

// UpdateColumns sets only the given columns of one row and stamps updated_at.
func (r *Repository[T, PT]) UpdateColumns(ctx context.Context, id string, values map[string]interface{}) error {
	for column := range values {
		if !r.columns[column] || column == "id" || column == "created_at" {
			return errors.Errorf("column %q of %s cannot be updated", column, r.collection)
		}
	}
	updates := make(map[string]interface{}, len(values)+1)
	for k, v := range values {
		updates[k] = v
	}
	updates["updated_at"] = r.now().UnixMilli()

	return r.withLock(ctx, id, func() error {
		res := r.db.WithContext(ctx).Model(PT(new(T))).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "failed to update %s %s", r.collection, id)
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "%s %s", r.collection, id)
		}

		r.invalidate(ctx, id)
		r.publish(ctx, events.Updated, id)
		return nil
	})
}

// Delete removes the row permanently.
func (r *Repository[T, PT]) Delete(ctx context.Context, id string) error {
	return r.withLock(ctx, id, func() error {
		res := r.db.WithContext(ctx).Delete(PT(new(T)), "id = ?", id)
		if res.Error != nil {
			return errors.Wrapf(res.Error, "failed to delete %s %s", r.collection, id)
		}
		if res.RowsAffected == 0 {
			return errors.Wrapf(ErrNotFound, "%s %s", r.collection, id)
		}

		r.invalidate(ctx, id)
		r.publish(ctx, events.Deleted, id)
		return nil
	})
}

// withLock runs fn while holding the redis lock of one record.
func (r *Repository[T, PT]) withLock(ctx context.Context, id string, fn func() error) error {
	return lockAndRun(ctx, r.cache, r.logger, r.lockKey(id), r.retries, r.delay, fn)
}

func lockAndRun(ctx context.Context, c Cache, logger zerolog.Logger, key string, retries int, delay time.Duration, fn func() error) error {
	value := uuid.New().String()

	var locked bool
	var err error
	for i := 0; i < retries; i++ {
		locked, err = c.Lock(ctx, key, value, lockTTL)
		if err == nil && locked {
			break
		}
		if i < retries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}
	if !locked {
		if err == nil {
			err = errors.New("lock held by another writer")
		}
		return errors.Wrapf(err, "failed to acquire lock %s after %d attempts", key, retries)
	}

	defer func() {
		if err := c.Unlock(context.WithoutCancel(ctx), key, value); err != nil {
			logger.Warn().Err(err).Str("key", key).Msg("failed to release lock")
		}
	}()
	return fn()
}

func (r *Repository[T, PT]) cachedList(ctx context.Context) ([]T, bool) {
	cached, err := r.cache.Get(ctx, r.listKey())
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to read cache")
		return nil, false
	}
	if cached == "" {
		return nil, false
	}
	var items []T
	if err := json.Unmarshal([]byte(cached), &items); err != nil {
		r.logger.Warn().Err(err).Msg("discarding unreadable cache entry")
		return nil, false
	}
	return items, true
}

// beginFill marks a list load as pending. invalidate clears the mark, so a
// load that raced a write is never cached.
func (r *Repository[T, PT]) beginFill(ctx context.Context) string {
	token := uuid.New().String()
	if err := r.cache.Set(ctx, r.fillKey(), token, 2*queryTimeout); err != nil {
		r.logger.Warn().Err(err).Msg("failed to mark list load")
		return ""
	}
	return token
}

func (r *Repository[T, PT]) finishFill(ctx context.Context, token string, items []T) {
	if token == "" {
		return
	}
	current, err := r.cache.Get(ctx, r.fillKey())
	if err != nil || current != token {
		r.logger.Debug().Msg("list changed while loading, not cached")
		return
	}
	r.store(ctx, r.listKey(), items)
}

func (r *Repository[T, PT]) store(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("failed to marshal cache entry")
		return
	}
	if err := r.cache.Set(ctx, key, data, CacheExpiry); err != nil {
		r.logger.Warn().Err(err).Str("key", key).Msg("failed to write cache")
	}
}

// invalidate drops the list entry and, when id is set, the record entry. The
// database write already succeeded, so failures are only logged.
func (r *Repository[T, PT]) invalidate(ctx context.Context, id string) {
	keys := []string{r.listKey(), r.fillKey()}
	if id != "" {
		keys = append(keys, r.itemKey(id))
	}
	for _, key := range keys {
		if err := r.cache.Delete(ctx, key); err != nil {
			r.logger.Error().Err(err).Str("key", key).Msg("failed to invalidate cache")
		}
	}
}

func (r *Repository[T, PT]) publish(ctx context.Context, action events.Action, id string) {
	if err := r.publisher.Publish(ctx, events.NewEvent(r.collection, action, id)); err != nil {
		r.logger.Error().Err(err).Str("id", id).Str("action", string(action)).Msg("failed to publish change event")
	}
}

func (r *Repository[T, PT]) listKey() string {
	return r.collection + "_cache"
}

func (r *Repository[T, PT]) fillKey() string {
	return r.collection + "_cache_fill"
}

func (r *Repository[T, PT]) itemKey(id string) string {
	return r.collection + "_cache:" + id
}

func (r *Repository[T, PT]) lockKey(id string) string {
	return r.collection + "_lock:" + id
}
