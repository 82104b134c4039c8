package db

import "fmt"

// Configuration settings for Postgres DB sinking
type Configuration struct {
	Host     string `toml:"host" default:"localhost" comment:"Postgres host"`
	Port     int    `toml:"port" default:"5432" comment:"Postgres port"`
	User     string `toml:"user" default:"postgres" comment:"Postgres user"`
	Password string `toml:"password" default:"mysecretpassword" comment:"Postgres password"`
	Dbname   string `toml:"dbname" default:"postgres" comment:"Postgres dbName"`
	Sslmode  string `toml:"sslmode" default:"disable" comment:"Postgres sslmode"`
}

// DSN returns the lib/pq connection string
func (c Configuration) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s "+
		"password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Dbname, c.Sslmode)
}
