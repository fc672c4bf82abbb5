package storage

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/1broseidon/winsnap/internal/layout"
	"github.com/1broseidon/winsnap/internal/platform"
)

type layoutRecord struct {
	ID        uint         `gorm:"primaryKey"`
	Slot      int          `gorm:"not null;uniqueIndex"`
	Tiles     []tileRecord `gorm:"foreignKey:LayoutID"`
	CreatedAt time.Time    `gorm:"autoCreateTime"`
	UpdatedAt time.Time    `gorm:"autoUpdateTime"`
}

func (layoutRecord) TableName() string { return "layouts" }

type tileRecord struct {
	ID           uint   `gorm:"primaryKey"`
	LayoutID     uint   `gorm:"not null;index"`
	Position     int    `gorm:"not null"`
	Mode         string `gorm:"not null"`
	ScreenName   string `gorm:"not null"`
	ScreenX      int
	ScreenY      int
	ScreenWidth  int
	ScreenHeight int
	OffsetLeft   int
	OffsetTop    int
	OffsetRight  int
	OffsetBottom int
	Windows      []windowRecord `gorm:"foreignKey:TileID"`
}

func (tileRecord) TableName() string { return "tiles" }

type windowRecord struct {
	ID          uint   `gorm:"primaryKey"`
	TileID      uint   `gorm:"not null;index"`
	Position    int    `gorm:"not null"`
	Title       string `gorm:"not null"`
	ProcessName string `gorm:"not null;index"`
	ProcessID   int
	Handle      uint32
	ZIndex      int
}

func (windowRecord) TableName() string { return "windows" }

// SQLiteStore keeps layouts in a SQLite database, one row per layout, tile
// and remembered window.
type SQLiteStore struct {
	db *gorm.DB
}

var _ Store = (*SQLiteStore)(nil)

// OpenSQLite opens (creating if needed) the database at path and migrates
// its schema.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, errors.Wrap(err, "failed to create database directory")
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}

	if err := db.AutoMigrate(&layoutRecord{}, &tileRecord{}, &windowRecord{}); err != nil {
		return nil, errors.Wrap(err, "failed to initialize database schema")
	}
	return &SQLiteStore{db: db}, nil
}

// Write replaces the rows stored for the layout's id.
func (s *SQLiteStore) Write(l *layout.Layout) error {
	if l == nil {
		return errors.New("layout is nil")
	}
	rec := recordFromLayout(l)

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := deleteSlot(tx, l.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := tx.Create(&rec).Error; err != nil {
			return errors.Wrapf(err, "failed to insert layout %d", l.ID)
		}
		return nil
	})
}

// Read loads a layout with its tiles and windows in stored order.
func (s *SQLiteStore) Read(id int) (*layout.Layout, error) {
	var rec layoutRecord
	result := s.db.
		Preload("Tiles", byPosition).
		Preload("Tiles.Windows", byPosition).
		Where("slot = ?", id).
		First(&rec)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrapf(result.Error, "failed to read layout %d", id)
	}
	return layoutFromRecord(rec)
}

// List returns the stored slots in ascending order.
func (s *SQLiteStore) List() ([]int, error) {
	var ids []int
	if err := s.db.Model(&layoutRecord{}).Order("slot ASC").Pluck("slot", &ids).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list layouts")
	}
	return ids, nil
}

// Delete removes a layout and everything it owns.
func (s *SQLiteStore) Delete(id int) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		return deleteSlot(tx, id)
	})
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func deleteSlot(tx *gorm.DB, slot int) error {
	var rec layoutRecord
	if err := tx.Where("slot = ?", slot).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Wrapf(err, "failed to look up layout %d", slot)
	}

	tiles := tx.Model(&tileRecord{}).Select("id").Where("layout_id = ?", rec.ID)
	if err := tx.Where("tile_id IN (?)", tiles).Delete(&windowRecord{}).Error; err != nil {
		return errors.Wrapf(err, "failed to delete windows of layout %d", slot)
	}
	if err := tx.Where("layout_id = ?", rec.ID).Delete(&tileRecord{}).Error; err != nil {
		return errors.Wrapf(err, "failed to delete tiles of layout %d", slot)
	}
	if err := tx.Delete(&rec).Error; err != nil {
		return errors.Wrapf(err, "failed to delete layout %d", slot)
	}
	return nil
}

func recordFromLayout(l *layout.Layout) layoutRecord {
	rec := layoutRecord{Slot: l.ID}
	for i, t := range l.Tiles {
		if t == nil || t.Bounds.Screen == nil {
			continue
		}
		s := t.Bounds.Screen
		tr := tileRecord{
			Position:     i,
			Mode:         t.Mode.String(),
			ScreenName:   s.Name,
			ScreenX:      s.X,
			ScreenY:      s.Y,
			ScreenWidth:  s.Width,
			ScreenHeight: s.Height,
			OffsetLeft:   t.Bounds.Left,
			OffsetTop:    t.Bounds.Top,
			OffsetRight:  t.Bounds.Right,
			OffsetBottom: t.Bounds.Bottom,
		}
		for j, w := range t.Windows {
			tr.Windows = append(tr.Windows, windowRecord{
				Position:    j,
				Title:       w.Title,
				ProcessName: w.ProcessName,
				ProcessID:   w.ProcessID,
				Handle:      uint32(w.Handle),
				ZIndex:      w.ZIndex,
			})
		}
		rec.Tiles = append(rec.Tiles, tr)
	}
	return rec
}

func layoutFromRecord(rec layoutRecord) (*layout.Layout, error) {
	l := layout.NewLayout(rec.Slot)
	screens := make(map[string]*layout.Screen)

	for _, tr := range rec.Tiles {
		mode, err := layout.ParseMode(tr.Mode)
		if err != nil {
			return nil, errors.Wrapf(err, "layout %d", rec.Slot)
		}
		screen, ok := screens[tr.ScreenName]
		if !ok {
			screen = &layout.Screen{
				Name:   tr.ScreenName,
				X:      tr.ScreenX,
				Y:      tr.ScreenY,
				Width:  tr.ScreenWidth,
				Height: tr.ScreenHeight,
			}
			screens[tr.ScreenName] = screen
		}

		t := &layout.Tile{
			Mode: mode,
			Bounds: layout.Bounds{
				Screen: screen,
				Left:   tr.OffsetLeft,
				Top:    tr.OffsetTop,
				Right:  tr.OffsetRight,
				Bottom: tr.OffsetBottom,
			},
		}
		for _, wr := range tr.Windows {
			t.Windows = append(t.Windows, &layout.Window{
				Title:       wr.Title,
				ProcessName: wr.ProcessName,
				ProcessID:   wr.ProcessID,
				Handle:      platform.WindowID(wr.Handle),
				ZIndex:      wr.ZIndex,
			})
		}
		l.Tiles = append(l.Tiles, t)
	}
	return l, nil
}
