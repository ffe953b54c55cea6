package usage

import (
	"encoding/json"
	"time"
)

// AnalysisRecord is one completed analysis owned by a user. Records are
// immutable once written; the number of records a user owns is their usage
// count.
type AnalysisRecord struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	SourceText string          `json:"-"`
	Result     json.RawMessage `json:"result"`
	CreatedAt  time.Time       `json:"createdAt"`
}
