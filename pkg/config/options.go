package config

import (
	"strings"
)

// Option is a function that modifies a Config.
// Options validate inputs and reject invalid values with warnings.
type Option func(*Config)

// OptDatabaseEngine selects the database dialect.
// Valid values: "mysql", "postgres", "sqlite".
func OptDatabaseEngine(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.Engine", s) {
			c.Database.Engine = s
		}
	}
}

// OptDatabaseHost sets the database server hostname or IP address.
func OptDatabaseHost(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Host", s) {
			c.Database.Host = s
		}
	}
}

// OptDatabasePort sets the database server port number.
func OptDatabasePort(i int) Option {
	return func(c *Config) {
		if isValidInt("Database Port", i) {
			c.Database.Port = i
		}
	}
}

// OptDatabaseUser sets the database username.
func OptDatabaseUser(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database User", s) {
			c.Database.User = s
		}
	}
}

// OptDatabasePassword sets the database password.
func OptDatabasePassword(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Password", s) {
			c.Database.Password = s
		}
	}
}

// OptDatabaseDatabase sets the postgres database hosting the source and
// destination schemas.
func OptDatabaseDatabase(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Database Name", s) {
			c.Database.Database = s
		}
	}
}

// OptDatabaseSSLMode sets the SSL connection mode.
// Valid values: "disable", "require", "verify-ca", "verify-full".
func OptDatabaseSSLMode(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Database.SSLMode", s) {
			c.Database.SSLMode = s
		}
	}
}

// OptSubsetRefGenomeDBID sets the genome_db id of the reference genome.
func OptSubsetRefGenomeDBID(i int64) Option {
	return func(c *Config) {
		if isValidID("Reference GenomeDB ID", i) {
			c.Subset.RefGenomeDBID = i
		}
	}
}

// OptSubsetMethodLinkID sets the method_link id used to locate the
// alignment method_link_species_sets.
func OptSubsetMethodLinkID(i int64) Option {
	return func(c *Config) {
		if isValidID("Method Link ID", i) {
			c.Subset.MethodLinkID = i
		}
	}
}

// OptSubsetOutDir sets the directory receiving emitted seed-region files.
func OptSubsetOutDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Output Directory", s) {
			c.Subset.OutDir = s
		}
	}
}

// OptSubsetSource sets the source schema name or file.
// Runtime-only field - not in ToOptions().
func OptSubsetSource(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Source Database", s) {
			c.Subset.Source = s
		}
	}
}

// OptSubsetDestination sets the destination schema name or file.
// Runtime-only field - not in ToOptions().
func OptSubsetDestination(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Destination Database", s) {
			c.Subset.Destination = s
		}
	}
}

// OptSubsetSeqRegionFile sets the path of the seed-region list.
// Runtime-only field - not in ToOptions().
func OptSubsetSeqRegionFile(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Seq Region File", s) {
			c.Subset.SeqRegionFile = s
		}
	}
}

// OptSubsetGenomeDBIDs sets companion genome_db ids to subset.
// Empty slice means all source genomes except the reference.
// Runtime-only field - not in ToOptions().
func OptSubsetGenomeDBIDs(ii []int64) Option {
	return func(c *Config) {
		if len(ii) > 0 {
			c.Subset.GenomeDBIDs = ii
		}
	}
}

// OptSubsetForce skips the destructive-replace confirmation prompt.
// Runtime-only field - not in ToOptions().
func OptSubsetForce(b bool) Option {
	return func(c *Config) {
		c.Subset.Force = b
	}
}

// OptSubsetVerify runs the closure check after a successful build.
// Runtime-only field - not in ToOptions().
func OptSubsetVerify(b bool) Option {
	return func(c *Config) {
		c.Subset.Verify = b
	}
}

// OptLogLevel sets the logging level.
// Valid values: "debug", "info", "warn", "error".
func OptLogLevel(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Level", s) {
			c.Log.Level = s
		}
	}
}

// OptLogFormat sets the log output format.
// Valid values: "json", "text".
func OptLogFormat(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Format", s) {
			c.Log.Format = s
		}
	}
}

// OptLogDestination sets where logs are written.
// Valid values: "file", "stderr", "stdout".
func OptLogDestination(s string) Option {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	return func(c *Config) {
		if isValidEnum("Log.Destination", s) {
			c.Log.Destination = s
		}
	}
}

// OptJobsNumber sets the number of concurrent workers for the closure
// verifier. Default is runtime.NumCPU().
func OptJobsNumber(i int) Option {
	return func(c *Config) {
		if isValidInt("Jobs Number", i) {
			c.JobsNumber = i
		}
	}
}

// OptHomeDir sets the home directory for config, cache, and log locations.
// Set once at startup from os.UserHomeDir().
// Runtime-only field - not in ToOptions().
func OptHomeDir(s string) Option {
	s = strings.TrimSpace(s)
	return func(c *Config) {
		if isValidString("Home Directory", s) {
			c.HomeDir = s
		}
	}
}
