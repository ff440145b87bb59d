package redis

const (
	// KeyPreferences holds the preference document
	KeyPreferences = "mrunner:preferences"
	// KeyUsage is the hash of command id -> run count
	KeyUsage = "mrunner:usage"
	// KeyPrefixLastRun is the prefix for the last run timestamp of a command
	KeyPrefixLastRun = "mrunner:lastrun:"
)

// PreferencesKey returns the Redis key of the preference document
func PreferencesKey() string {
	return KeyPreferences
}

// UsageKey returns the Redis key of the usage hash
func UsageKey() string {
	return KeyUsage
}

// LastRunKey returns the Redis key holding when a command last ran
func LastRunKey(id string) string {
	return KeyPrefixLastRun + id
}
