package install

import (
	"fmt"

	"github.com/felixgeelhaar/moodle-plugin-ci/internal/ports"
)

// Database describes the database Moodle is installed against.
type Database interface {
	// Type is the Moodle $CFG->dbtype value.
	Type() string
	// Settings returns the connection settings.
	Settings() DatabaseSettings
	// CreateDatabaseCommand creates the empty Moodle database.
	CreateDatabaseCommand() ports.Command
}

// DatabaseSettings are the connection settings shared by all databases.
type DatabaseSettings struct {
	Name string
	User string
	Pass string
	Host string
	Port string
}

// MySQLDatabase is a MySQL server reached with the mysqli driver.
type MySQLDatabase struct {
	settings DatabaseSettings
}

// NewMySQLDatabase creates a MySQL database. Empty settings fall back to moodle/root@localhost.
func NewMySQLDatabase(settings DatabaseSettings) *MySQLDatabase {
	return &MySQLDatabase{settings: withDefaults(settings, "root")}
}

// Type returns mysqli.
func (d *MySQLDatabase) Type() string { return "mysqli" }

// Settings returns the connection settings.
func (d *MySQLDatabase) Settings() DatabaseSettings { return d.settings }

// CreateDatabaseCommand runs CREATE DATABASE through the mysql client.
func (d *MySQLDatabase) CreateDatabaseCommand() ports.Command {
	args := []string{"-u", d.settings.User}
	if d.settings.Pass != "" {
		args = append(args, "--password="+d.settings.Pass)
	}
	if d.settings.Host != "" && d.settings.Host != "localhost" {
		args = append(args, "--host="+d.settings.Host)
	}
	if d.settings.Port != "" {
		args = append(args, "--port="+d.settings.Port)
	}
	args = append(args, "-e", fmt.Sprintf("CREATE DATABASE `%s` DEFAULT CHARACTER SET UTF8 COLLATE UTF8_UNICODE_CI;", d.settings.Name))
	return ports.NewCommand("mysql", args...)
}

// PostgresDatabase is a PostgreSQL server reached with the pgsql driver.
type PostgresDatabase struct {
	settings DatabaseSettings
}

// NewPostgresDatabase creates a PostgreSQL database. Empty settings fall back to moodle/postgres@localhost.
func NewPostgresDatabase(settings DatabaseSettings) *PostgresDatabase {
	return &PostgresDatabase{settings: withDefaults(settings, "postgres")}
}

// Type returns pgsql.
func (d *PostgresDatabase) Type() string { return "pgsql" }

// Settings returns the connection settings.
func (d *PostgresDatabase) Settings() DatabaseSettings { return d.settings }

// CreateDatabaseCommand runs CREATE DATABASE through psql. The password is passed as PGPASSWORD.
func (d *PostgresDatabase) CreateDatabaseCommand() ports.Command {
	args := []string{"-c", fmt.Sprintf(`CREATE DATABASE "%s";`, d.settings.Name), "-U", d.settings.User, "-d", "postgres"}
	if d.settings.Host != "" && d.settings.Host != "localhost" {
		args = append(args, "-h", d.settings.Host)
	}
	if d.settings.Port != "" {
		args = append(args, "--port="+d.settings.Port)
	}
	cmd := ports.NewCommand("psql", args...)
	if d.settings.Pass != "" {
		cmd = cmd.WithEnv("PGPASSWORD=" + d.settings.Pass)
	}
	return cmd
}

// NewDatabase returns the database for a type name: mysqli or pgsql.
func NewDatabase(dbType string, settings DatabaseSettings) (Database, error) {
	switch dbType {
	case "mysqli", "mysql":
		return NewMySQLDatabase(settings), nil
	case "pgsql", "postgres", "postgresql":
		return NewPostgresDatabase(settings), nil
	default:
		return nil, fmt.Errorf("unknown database type %q: expected mysqli or pgsql", dbType)
	}
}

func withDefaults(settings DatabaseSettings, user string) DatabaseSettings {
	if settings.Name == "" {
		settings.Name = "moodle"
	}
	if settings.User == "" {
		settings.User = user
	}
	if settings.Host == "" {
		settings.Host = "localhost"
	}
	return settings
}
