package store

// Config holds the table layout for the Dynamo implementation.
type Config struct {
	// TableName is the single table holding all entities.
	// Default: "roster_events"
	TableName string

	// IndexName is the global secondary index keyed by GSI1PK/GSI1SK.
	// Default: "GSI1"
	IndexName string
}

// DefaultConfig returns the table layout used by the deployed stack.
func DefaultConfig() Config {
	return Config{
		TableName: "roster_events",
		IndexName: "GSI1",
	}
}

// validate fills in defaults for zero values.
func (c *Config) validate() {
	if c.TableName == "" {
		c.TableName = "roster_events"
	}
	if c.IndexName == "" {
		c.IndexName = "GSI1"
	}
}
