package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/norwind/bingwall/internal/model"
)

// wallpaperRecord is the relational shape of a metadata record. The
// composite unique index on (market_code, date) is the write-once gate;
// the nested structures travel as JSON text columns.
type wallpaperRecord struct {
	ID uint `gorm:"primarykey"`

	MarketCode string `gorm:"size:8;uniqueIndex:idx_market_date"`
	Date       string `gorm:"size:10;uniqueIndex:idx_market_date"`

	Country       string
	Title         string
	Copyright     string
	CopyrightLink string
	Description   string
	Quiz          string
	Hash          string `gorm:"index"`
	URLBase       string

	Resolutions string

	StartDate     string
	FullStartDate string
	EndDate       string

	CreatedAt time.Time
}

func (wallpaperRecord) TableName() string {
	return "wallpapers"
}

// DBStore persists metadata records in a SQLite database through GORM.
//
// The write-once guarantee comes from the unique (market_code, date)
// index combined with an ON CONFLICT DO NOTHING insert: the first writer
// inserts the row, every later writer affects zero rows and reports a
// skip.
type DBStore struct {
	db *gorm.DB
}

// NewDBStore opens (or creates) the SQLite database at path and migrates
// the schema.
func NewDBStore(path string) (*DBStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "store: open database")
	}
	if err := db.AutoMigrate(&wallpaperRecord{}); err != nil {
		return nil, errors.Wrap(err, "store: migrate schema")
	}
	return &DBStore{db: db}, nil
}

func (s *DBStore) Exists(ctx context.Context, key model.CollectionKey) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&wallpaperRecord{}).
		Where("market_code = ? AND date = ?", string(key.Market), key.Date).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "store: count record")
	}
	return count > 0, nil
}

func (s *DBStore) WriteIfAbsent(ctx context.Context, wp *model.Wallpaper) (bool, error) {
	rec, err := toRecord(wp)
	if err != nil {
		return false, err
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(rec)
	if result.Error != nil {
		return false, errors.Wrap(result.Error, "store: insert record")
	}
	return result.RowsAffected > 0, nil
}

func (s *DBStore) Read(ctx context.Context, key model.CollectionKey) (*model.Wallpaper, error) {
	var rec wallpaperRecord
	err := s.db.WithContext(ctx).
		Where("market_code = ? AND date = ?", string(key.Market), key.Date).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "store: query record")
	}
	return fromRecord(&rec)
}

func (s *DBStore) ListByMarket(ctx context.Context, market model.MarketCode, page, pageSize int) ([]*model.Wallpaper, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	q := s.db.WithContext(ctx).Model(&wallpaperRecord{}).
		Where("market_code = ?", string(market))

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, errors.Wrap(err, "store: count market records")
	}

	var recs []wallpaperRecord
	err := q.Order("date DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&recs).Error
	if err != nil {
		return nil, 0, errors.Wrap(err, "store: list market records")
	}

	out, err := fromRecords(recs)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *DBStore) ListLatest(ctx context.Context, market model.MarketCode, n int) ([]*model.Wallpaper, error) {
	if n <= 0 {
		return nil, nil
	}
	var recs []wallpaperRecord
	err := s.db.WithContext(ctx).
		Where("market_code = ?", string(market)).
		Order("date DESC").
		Limit(n).
		Find(&recs).Error
	if err != nil {
		return nil, errors.Wrap(err, "store: list latest records")
	}
	return fromRecords(recs)
}

func toRecord(wp *model.Wallpaper) (*wallpaperRecord, error) {
	resolutions, err := json.Marshal(wp.ImageResolutions)
	if err != nil {
		return nil, errors.Wrap(err, "store: encode resolutions")
	}
	return &wallpaperRecord{
		MarketCode:    string(wp.MarketCode),
		Date:          wp.Date,
		Country:       wp.Country,
		Title:         wp.Title,
		Copyright:     wp.Copyright,
		CopyrightLink: wp.CopyrightLink,
		Description:   wp.Description,
		Quiz:          wp.Quiz,
		Hash:          wp.Hash,
		URLBase:       wp.OriginalURLBase,
		Resolutions:   string(resolutions),
		StartDate:     wp.TimeInfo.StartDate,
		FullStartDate: wp.TimeInfo.FullStartDate,
		EndDate:       wp.TimeInfo.EndDate,
		CreatedAt:     wp.CreatedAt,
	}, nil
}

func fromRecord(rec *wallpaperRecord) (*model.Wallpaper, error) {
	var resolutions []model.ImageResolution
	if rec.Resolutions != "" {
		if err := json.Unmarshal([]byte(rec.Resolutions), &resolutions); err != nil {
			return nil, errors.Wrapf(err, "store: decode resolutions for %s/%s", rec.MarketCode, rec.Date)
		}
	}
	return &model.Wallpaper{
		Date:             rec.Date,
		Country:          rec.Country,
		MarketCode:       model.MarketCode(rec.MarketCode),
		Title:            rec.Title,
		Copyright:        rec.Copyright,
		CopyrightLink:    rec.CopyrightLink,
		Description:      rec.Description,
		Quiz:             rec.Quiz,
		Hash:             rec.Hash,
		OriginalURLBase:  rec.URLBase,
		ImageResolutions: resolutions,
		TimeInfo: model.TimeInfo{
			StartDate:     rec.StartDate,
			FullStartDate: rec.FullStartDate,
			EndDate:       rec.EndDate,
		},
		CreatedAt: rec.CreatedAt,
	}, nil
}

func fromRecords(recs []wallpaperRecord) ([]*model.Wallpaper, error) {
	out := make([]*model.Wallpaper, 0, len(recs))
	for i := range recs {
		wp, err := fromRecord(&recs[i])
		if err != nil {
			return nil, err
		}
		out = append(out, wp)
	}
	return out, nil
}
