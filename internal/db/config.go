package db

import (
	"net"
	"net/url"
	"strconv"
)

// Config holds the PostgreSQL connection parameters. It is built once at
// startup and passed to InitPostgres.
type Config struct {
	// DSN, when set, is used as is and the other address fields are ignored.
	DSN string `json:"dsn"`

	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	Name     string `json:"name"`
	SSLMode  string `json:"sslmode"`

	// MaxOpenConns limits concurrent connections; 0 means unlimited.
	MaxOpenConns int `json:"max_open_conns"`
}

// ConnString returns the lib/pq connection string for c.
func (c Config) ConnString() string {
	if c.DSN != "" {
		return c.DSN
	}

	host := c.Host
	if host == "" {
		host = "localhost"
	}
	port := c.Port
	if port == 0 {
		port = 5432
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}

	u := url.URL{
		Scheme:   "postgres",
		Host:     net.JoinHostPort(host, strconv.Itoa(port)),
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {sslmode}}.Encode(),
	}
	if c.User != "" {
		if c.Password != "" {
			u.User = url.UserPassword(c.User, c.Password)
		} else {
			u.User = url.User(c.User)
		}
	}
	return u.String()
}
