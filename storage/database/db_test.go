package database

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/assignflow/core"
)

func TestURL(t *testing.T) {
	conf := &core.Config{}
	conf.Database.Engine = "postgres"
	conf.Database.Host = "db.local"
	conf.Database.Port = "5433"
	conf.Database.User = "app"
	conf.Database.Password = "p@ss word"

	tests := []struct {
		name       string
		disableTLS bool
		dbName     string
		sslMode    string
	}{
		{"tls", false, "assignflow", "require"},
		{"no tls", true, "postgres", "disable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			conf.Database.DisableTLS = tt.disableTLS
			u, err := url.Parse(URL(conf, tt.dbName))
			require.NoError(t, err)
			assert.Equal(t, "postgres", u.Scheme)
			assert.Equal(t, "db.local:5433", u.Host)
			assert.Equal(t, "/"+tt.dbName, u.Path)
			pwd, _ := u.User.Password()
			assert.Equal(t, "p@ss word", pwd)
			assert.Equal(t, tt.sslMode, u.Query().Get("sslmode"))
			assert.Equal(t, "utc", u.Query().Get("timezone"))
		})
	}
}
