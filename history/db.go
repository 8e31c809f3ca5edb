package history

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/imkonsowa/waiter-prompts/models"
)

type DB struct {
	db *gorm.DB
}

// Open connects with the "postgres" or "sqlite" driver.
func Open(driver, dsn string) (*DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported history driver %q", driver)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
			ParameterizedQueries:      true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, err
	}

	return &DB{db: db}, nil
}

func (d *DB) Migrate(ctx context.Context) error {
	return d.db.WithContext(ctx).AutoMigrate(&models.OrderRecord{}, &models.PlayedGame{})
}

func (d *DB) OrderHistory(ctx context.Context, userID string) ([]string, error) {
	var records []models.OrderRecord
	if err := d.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders for %s: %w", userID, err)
	}

	out := make([]string, 0, len(records))
	for i := range records {
		out = append(out, records[i].Stringify())
	}
	return out, nil
}

func (d *DB) PlayedGames(ctx context.Context, userID string) ([]string, error) {
	var games []string
	if err := d.db.WithContext(ctx).Model(&models.PlayedGame{}).Where("user_id = ?", userID).Order("id").Pluck("game", &games).Error; err != nil {
		return nil, fmt.Errorf("failed to load played games for %s: %w", userID, err)
	}
	return games, nil
}

func (d *DB) AddOrder(ctx context.Context, userID, dish string, quantity int) error {
	return d.db.WithContext(ctx).Create(&models.OrderRecord{UserID: userID, Dish: dish, Quantity: quantity}).Error
}

func (d *DB) AddPlayedGame(ctx context.Context, userID, game string) error {
	return d.db.WithContext(ctx).Create(&models.PlayedGame{UserID: userID, Game: game}).Error
}

// Seed replaces the stored history of every user in users.
func (d *DB) Seed(ctx context.Context, users []models.UserHistory) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, u := range users {
			if err := tx.Where("user_id = ?", u.UserID).Delete(&models.OrderRecord{}).Error; err != nil {
				return err
			}
			if err := tx.Where("user_id = ?", u.UserID).Delete(&models.PlayedGame{}).Error; err != nil {
				return err
			}

			for _, o := range u.Orders {
				o.ID = 0
				o.UserID = u.UserID
				if o.Quantity < 1 {
					o.Quantity = 1
				}
				if err := tx.Create(&o).Error; err != nil {
					return err
				}
			}
			for _, g := range u.Games {
				if err := tx.Create(&models.PlayedGame{UserID: u.UserID, Game: g}).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}

func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// DemoUsers is the sample history loaded by the seed command.
func DemoUsers() []models.UserHistory {
	return []models.UserHistory{
		{
			UserID: "U123456",
			Orders: []models.OrderRecord{
				{Dish: "水煮鱼", Quantity: 1},
				{Dish: "宫保鸡丁", Quantity: 1},
				{Dish: "麻婆豆腐", Quantity: 1},
				{Dish: "冰可乐", Quantity: 2},
			},
			Games: []string{"麻将", "斗地主"},
		},
		{
			UserID: "U987654",
			Orders: []models.OrderRecord{
				{Dish: "清蒸鲈鱼", Quantity: 1},
				{Dish: "西兰花炒虾仁", Quantity: 1},
				{Dish: "南瓜粥", Quantity: 1},
				{Dish: "柠檬水", Quantity: 1},
			},
			Games: []string{"狼人杀", "真心话大冒险"},
		},
	}
}
