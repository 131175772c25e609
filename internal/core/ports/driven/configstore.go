package driven

// ConfigReader reads dotted keys such as "retrieval.top_k".
// Typed getters return the zero value for a missing key or a value of
// another type; GetFloat also accepts integers.
type ConfigReader interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int
	GetFloat(key string) float64
	GetBool(key string) bool
	GetStringSlice(key string) []string
}

// ConfigStore is a ConfigReader whose writes are persisted before Set returns.
type ConfigStore interface {
	ConfigReader

	Set(key string, value any) error

	// Path is where the configuration lives, for display.
	Path() string
}
