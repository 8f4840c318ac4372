package schedules

import (
	"time"

	"github.com/google/uuid"
)

type Slot struct {
	ID          uuid.UUID    `json:"id"`
	StreamerID  uuid.UUID    `json:"streamer_id"`
	DayOfWeek   time.Weekday `json:"day_of_week"`
	StartTime   string       `json:"start_time"`
	EndTime     string       `json:"end_time"`
	IsAvailable bool         `json:"is_available"`
}

type DayOff struct {
	StreamerID uuid.UUID `json:"streamer_id"`
	Date       string    `json:"date"`
	Reason     *string   `json:"reason,omitempty" swaggertype:"string"`
}
