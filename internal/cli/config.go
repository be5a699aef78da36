// Package cli parses attendly flags and runs one command against the store.
package cli

import (
	"errors"
	"flag"
	"path/filepath"

	"github.com/viant/attendly/delivery"
	"github.com/viant/attendly/internal/config"
)

// Config holds attendly command configuration.
type Config struct {
	DataDir      string `env:"ATTENDLY_DATA_DIR" envDefault:"."`
	DBName       string `env:"ATTENDLY_DB_NAME" envDefault:"attendance_db"`
	Engine       string `env:"ATTENDLY_ENGINE" envDefault:"auto"`
	BackupTarget string `env:"ATTENDLY_BACKUP_TARGET" envDefault:"."`
	S3Region     string `env:"ATTENDLY_S3_REGION"`
	S3Endpoint   string `env:"ATTENDLY_S3_ENDPOINT"`
	S3AccessKey  string `env:"ATTENDLY_S3_ACCESS_KEY"`
	S3SecretKey  string `env:"ATTENDLY_S3_SECRET_KEY"`

	// Args is the command and its arguments.
	Args []string
}

// ParseConfig parses environment and flags into Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	if fs == nil {
		return Config{}, errors.New("flag parser is required")
	}
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "Directory holding the database file")
	fs.StringVar(&cfg.DBName, "db", cfg.DBName, "Database name")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "Engine selection: auto, native or memory")
	fs.StringVar(&cfg.BackupTarget, "backup", cfg.BackupTarget, "Backup target: directory, s3://bucket/prefix or git://<dir>")
	if args == nil {
		args = []string{}
	}
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	return cfg, nil
}

// DBPath is the native database file.
func (c Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBName+".db")
}

// S3 returns the S3 settings for backup delivery.
func (c Config) S3() delivery.S3Config {
	return delivery.S3Config{
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Region:    c.S3Region,
		Endpoint:  c.S3Endpoint,
	}
}
