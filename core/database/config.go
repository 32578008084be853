package database

// Config holds configuration for the index store connection.
type Config struct {
	// Driver is the database driver (sqlite, mysql).
	Driver string `mapstructure:"driver" default:"sqlite"`
	// Path is the sqlite store file path. Only used by the sqlite driver.
	Path string `mapstructure:"path" default:"modaudit.db"`
	// Host is the database host. Only used by the mysql driver.
	Host string `mapstructure:"host" default:"localhost"`
	// Port is the database port. Only used by the mysql driver.
	Port int `mapstructure:"port" default:"3306"`
	// User is the database user. Only used by the mysql driver.
	User string `mapstructure:"user" default:"root"`
	// Password is the database password. Only used by the mysql driver.
	Password string `mapstructure:"password" default:""`
	// Name is the database name. Only used by the mysql driver.
	Name string `mapstructure:"name" default:"modaudit"`
	// TimeoutSeconds is the connection timeout in seconds.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
