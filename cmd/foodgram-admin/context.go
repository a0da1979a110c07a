package main

import (
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pakodev28/foodgram-project-react/config"
	"github.com/pakodev28/foodgram-project-react/internal/database"
)

type commandContext struct {
	migrationsFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	dbOnce sync.Once
	db     *gorm.DB
	dbErr  error
}

func newCommandContext(migrationsFlag *string) *commandContext {
	return &commandContext{migrationsFlag: migrationsFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, err := config.LoadConfig()
		if err != nil {
			c.configErr = err
			return
		}
		if c.migrationsFlag != nil {
			if dir := strings.TrimSpace(*c.migrationsFlag); dir != "" {
				cfg.MigrationsDir = dir
			}
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureDB opens the database once and brings its schema up to date
func (c *commandContext) ensureDB() (*gorm.DB, error) {
	c.dbOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.dbErr = err
			return
		}
		db, err := database.Open(cfg, logger.Warn)
		if err != nil {
			c.dbErr = err
			return
		}
		if err := database.RunMigrations(db, cfg.MigrationsDir); err != nil {
			c.dbErr = err
			if sqlDB, derr := db.DB(); derr == nil {
				sqlDB.Close()
			}
			return
		}
		c.db = db
	})
	return c.db, c.dbErr
}

func (c *commandContext) close() error {
	if c.db == nil {
		return nil
	}
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
