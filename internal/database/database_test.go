package database

import (
	"testing"

	"bailanysta/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSchemaPolicy(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{
			name:    "sqlite always automigrates",
			cfg:     &config.Config{DBDriver: "sqlite", Env: "production"},
			runAuto: true,
		},
		{
			name:    "sqlite rejects sql mode",
			cfg:     &config.Config{DBDriver: "sqlite", DBSchemaMode: "sql", Env: "development"},
			wantErr: true,
		},
		{
			name:    "postgres hybrid dev runs both",
			cfg:     &config.Config{DBDriver: "postgres", Env: "development"},
			runSQL:  true,
			runAuto: true,
		},
		{
			name:   "postgres hybrid prod runs sql only",
			cfg:    &config.Config{DBDriver: "postgres", Env: "production"},
			runSQL: true,
		},
		{
			name:   "postgres sql mode",
			cfg:    &config.Config{DBDriver: "postgres", DBSchemaMode: "sql", Env: "development"},
			runSQL: true,
		},
		{
			name:    "postgres auto mode refused in prod without override",
			cfg:     &config.Config{DBDriver: "postgres", DBSchemaMode: "auto", Env: "production"},
			wantErr: true,
		},
		{
			name: "postgres auto mode allowed in prod with override",
			cfg: &config.Config{
				DBDriver: "postgres", DBSchemaMode: "auto", Env: "production",
				DBAutoMigrateAllowDestructive: true,
			},
			runAuto: true,
		},
		{
			name:    "unknown mode",
			cfg:     &config.Config{DBDriver: "postgres", DBSchemaMode: "yolo", Env: "development"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runSQL, runAuto, err := schemaPolicy(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.runSQL, runSQL, "runSQL")
			assert.Equal(t, tt.runAuto, runAuto, "runAuto")
		})
	}
}

func TestMigrateCreatesTables(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "posts", "follows", "likes", "hashtags", "post_hashtags"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestRegisteredMigrations(t *testing.T) {
	ms := GetMigrations()
	require.NotEmpty(t, ms, "embedded migrations should be registered")
	assert.Equal(t, 1, ms[0].Version)
	assert.Equal(t, "init", ms[0].Name)
	assert.Contains(t, ms[0].UpScript, "CREATE TABLE")
	assert.Contains(t, ms[0].DownScript, "DROP TABLE")
}
