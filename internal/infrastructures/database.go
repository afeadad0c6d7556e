package infrastructures

import (
	"time"

	"github.com/safatanc/tourism-core/internal/app/models"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func NewDatabase(cfg *AppConfig) *gorm.DB {
	gormCfg := &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
		TranslateError: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	}

	var dialector gorm.Dialector
	switch cfg.DB_DRIVER {
	case "sqlite":
		dialector = sqlite.Open(cfg.DATABASE_URL)
	default:
		dialector = postgres.Open(cfg.DATABASE_URL)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logrus.Fatalf("failed to get database handle: %v", err)
	}
	if cfg.DB_DRIVER == "sqlite" {
		// one writer at a time; concurrent transactions queue on the pool
		sqlDB.SetMaxOpenConns(1)
	} else {
		if cfg.DB_MAX_OPEN_CONNS > 0 {
			sqlDB.SetMaxOpenConns(cfg.DB_MAX_OPEN_CONNS)
		}
		if cfg.DB_MAX_IDLE_CONNS > 0 {
			sqlDB.SetMaxIdleConns(cfg.DB_MAX_IDLE_CONNS)
		}
	}
	if cfg.DB_CONN_MAX_LIFETIME_MIN > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB_CONN_MAX_LIFETIME_MIN) * time.Minute)
	}

	if cfg.DB_AUTO_MIGRATE {
		if err := models.AutoMigrate(db); err != nil {
			logrus.Fatalf("failed to migrate database: %v", err)
		}
	}

	return db
}
