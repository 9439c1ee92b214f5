package db

import (
	"net/url"
	"testing"

	"catering-menu/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnString(t *testing.T) {
	got := ConnString(config.DBConfig{Host: "db", Port: 5433, User: "menu", Password: "secret", Database: "catering"})
	assert.Equal(t, "postgres://menu:secret@db:5433/catering", got)
}

func TestConnStringEscapesCredentials(t *testing.T) {
	got := ConnString(config.DBConfig{Host: "db", Port: 5432, User: "menu admin", Password: "p@ss/w:rd?#", Database: "catering"})

	u, err := url.Parse(got)
	require.NoError(t, err)
	assert.Equal(t, "menu admin", u.User.Username())
	pass, ok := u.User.Password()
	assert.True(t, ok)
	assert.Equal(t, "p@ss/w:rd?#", pass)
	assert.Equal(t, "db:5432", u.Host)
	assert.Equal(t, "/catering", u.Path)
}
