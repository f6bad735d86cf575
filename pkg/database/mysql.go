package database

import (
	"fmt"
	"log"
	"time"

	"bulut3d/pkg/config"

	drv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MySQLDSN builds the DSN with the driver's own formatter so passwords with
// special characters survive.
func MySQLDSN(cfg config.MysqlConfig) string {
	c := drv.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	c.DBName = cfg.DbName
	c.ParseTime = true
	c.Loc = time.Local
	c.Params = map[string]string{"charset": "utf8mb4"}
	return c.FormatDSN()
}

// InitMySQL opens the mysql backing store.
func InitMySQL(cfg config.MysqlConfig) (*gorm.DB, error) {
	return open(mysql.Open(MySQLDSN(cfg)), "mysql")
}

// Open picks the gorm dialector from database.driver.
func Open(db config.DatabaseConfig, my config.MysqlConfig) (*gorm.DB, error) {
	switch db.Driver {
	case "", "mysql":
		return InitMySQL(my)
	case "postgres":
		return open(postgres.Open(db.DSN), "postgres")
	case "sqlite":
		return open(sqlite.Open(db.DSN), "sqlite")
	default:
		return nil, fmt.Errorf("database: unknown driver %q", db.Driver)
	}
}

func open(dialector gorm.Dialector, name string) (*gorm.DB, error) {
	// SQL is logged at info level, handy while the admin panel is young.
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)

	log.Printf("[database] %s connected", name)
	return db, nil
}
