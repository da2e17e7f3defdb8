package config

import "os"

// envFlag treats any set value other than "0" as true.
func envFlag(name string) (value bool, ok bool) {
	s, ok := os.LookupEnv(name)
	if !ok {
		return false, false
	}
	return s != "0", true
}

// Development switches on colored debug logging.
func Development() bool {
	development, _ := envFlag("DEVELOPMENT")
	return development
}
