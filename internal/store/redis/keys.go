package redis

const (
	// KeyPrefixWake is the prefix for individual wake event keys
	KeyPrefixWake = "rouse:wake:"
	// KeyRecentWakes is the key for the list of recent wake event IDs
	KeyRecentWakes = "rouse:wakes:recent"
	// KeyWakeCounts is the hash of total wakes per service name
	KeyWakeCounts = "rouse:wakes:count"
)

// WakeKey returns the Redis key for a wake event by ID
func WakeKey(id string) string {
	return KeyPrefixWake + id
}
