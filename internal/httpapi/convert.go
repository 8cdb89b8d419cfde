package httpapi

import (
	"time"

	"github.com/liyanaidrs/CPC357-Assign2/internal/attendance/types"
)

type eventJSON struct {
	RecordID       int64  `json:"record_id"`
	Identifier     string `json:"identifier"`
	DisplayName    string `json:"display_name,omitempty"`
	ResolvedStatus string `json:"resolved_status"`
	OccurredAt     string `json:"occurred_at"`
}

type healthJSON struct {
	Status     string `json:"status"`
	Subscribed bool   `json:"subscribed"`
	StoreUp    bool   `json:"store_up"`
}

// eventToJSON keeps the UTC+8 offset in occurred_at so API clients never
// see a zone-less timestamp.
func eventToJSON(v types.EventView) eventJSON {
	return eventJSON{
		RecordID:       v.RecordID,
		Identifier:     v.Identifier,
		DisplayName:    v.DisplayName,
		ResolvedStatus: string(v.ResolvedStatus),
		OccurredAt:     v.OccurredAt.Format(time.RFC3339),
	}
}
