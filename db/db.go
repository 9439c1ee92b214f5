package db

import (
	"context"
	"net"
	"net/url"
	"strconv"

	"catering-menu/config"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ConnString builds a postgres URL with the credentials escaped.
func ConnString(cfg config.DBConfig) string {
	u := &url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

// Connect opens a pool and pings it once so a bad DSN fails at startup.
func Connect(ctx context.Context, cfg config.DBConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, ConnString(cfg))
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
