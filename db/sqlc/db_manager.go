package sqlc

import (
	"database/sql"
	"time"
)

// Every query issued by the server is bounded by this.
const QuerierCtxTimeout = time.Second * 10

type DbManager struct {
	Queries   Querier
	Analytics *AnalyticsManager
}

// NewDbManager builds the managers on top of a *sql.DB; a
// postgres pool in production and a sqlmock connection in tests.
func NewDbManager(db *sql.DB) DbManager {
	return DbManager{
		Queries:   New(db),
		Analytics: NewAnalyticsManager(db),
	}
}
