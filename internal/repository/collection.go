package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = errors.New("record not found")

// Filter narrows a Search. Where keys are column names matched by equality;
// Order and Limit are passed to the query untouched, so callers must only
// put whitelisted values there.
type Filter struct {
	Where  map[string]interface{}
	Scopes []func(*gorm.DB) *gorm.DB
	Order  string
	Limit  int
	Offset int
}

type preload struct {
	name  string
	order string
}

// Collection is a typed CRUD view over one table.
type Collection[T any] struct {
	db       *gorm.DB
	preloads []preload
}

func NewCollection[T any](db *gorm.DB) *Collection[T] {
	return &Collection[T]{db: db}
}

// With returns a copy of the collection that eager loads the named
// associations.
func (c *Collection[T]) With(names ...string) *Collection[T] {
	next := &Collection[T]{db: c.db, preloads: append([]preload(nil), c.preloads...)}
	for _, name := range names {
		next.preloads = append(next.preloads, preload{name: name})
	}
	return next
}

// WithOrdered is With for a single association sorted by order.
func (c *Collection[T]) WithOrdered(name, order string) *Collection[T] {
	next := c.With()
	next.preloads = append(next.preloads, preload{name: name, order: order})
	return next
}

func (c *Collection[T]) query(ctx context.Context) *gorm.DB {
	q := c.db.WithContext(ctx)
	for _, p := range c.preloads {
		if p.order == "" {
			q = q.Preload(p.name)
			continue
		}
		order := p.order
		q = q.Preload(p.name, func(db *gorm.DB) *gorm.DB {
			return db.Order(order)
		})
	}
	return q
}

func (c *Collection[T]) GetAll(ctx context.Context) ([]T, error) {
	var rows []T
	if err := c.query(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("get all %T: %w", *new(T), err)
	}
	return rows, nil
}

func (c *Collection[T]) GetByID(ctx context.Context, id string) (*T, error) {
	return c.FirstByField(ctx, "id", id)
}

// GetByField returns every row whose field equals value.
func (c *Collection[T]) GetByField(ctx context.Context, field string, value interface{}) ([]T, error) {
	return c.Search(ctx, Filter{Where: map[string]interface{}{field: value}})
}

// FirstByField returns the first row whose field equals value or ErrNotFound.
func (c *Collection[T]) FirstByField(ctx context.Context, field string, value interface{}) (*T, error) {
	row := new(T)
	err := c.query(ctx).Where(map[string]interface{}{field: value}).First(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %T by %s: %w", *row, field, err)
	}
	return row, nil
}

func (c *Collection[T]) Create(ctx context.Context, row *T) error {
	if err := c.db.WithContext(ctx).Create(row).Error; err != nil {
		return fmt.Errorf("create %T: %w", *row, err)
	}
	return nil
}

// Update saves every column of row. Associations are left alone.
func (c *Collection[T]) Update(ctx context.Context, row *T) error {
	if err := c.db.WithContext(ctx).Omit(clause.Associations).Save(row).Error; err != nil {
		return fmt.Errorf("update %T: %w", *row, err)
	}
	return nil
}

// UpdateFields writes only the given columns of the row with id.
func (c *Collection[T]) UpdateFields(ctx context.Context, id string, fields map[string]interface{}) error {
	res := c.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("update %T fields: %w", *new(T), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Delete(ctx context.Context, id string) error {
	res := c.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return fmt.Errorf("delete %T: %w", *new(T), res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Collection[T]) Search(ctx context.Context, f Filter) ([]T, error) {
	q := c.query(ctx).Scopes(f.Scopes...)
	if len(f.Where) > 0 {
		q = q.Where(f.Where)
	}
	if f.Order != "" {
		q = q.Order(f.Order)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []T
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("search %T: %w", *new(T), err)
	}
	return rows, nil
}

func (c *Collection[T]) Count(ctx context.Context, f Filter) (int64, error) {
	q := c.db.WithContext(ctx).Model(new(T)).Scopes(f.Scopes...)
	if len(f.Where) > 0 {
		q = q.Where(f.Where)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count %T: %w", *new(T), err)
	}
	return count, nil
}
