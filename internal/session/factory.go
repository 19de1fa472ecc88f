package session

import (
	"fmt"
	"time"
)

// Open creates the store for backend. dsn is a file path for sqlite and a
// connection string for postgres; it is ignored for memory.
func Open(backend, dsn string, ttl time.Duration) (Store, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(ttl), nil
	case string(DialectSQLite):
		return OpenSQLite(dsn, ttl)
	case string(DialectPostgres):
		return OpenPostgres(dsn, ttl)
	default:
		return nil, fmt.Errorf("unknown session backend %q", backend)
	}
}
