package messaging

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types
const (
	// Timesheet lifecycle events
	EventTimesheetSubmitted = "timesheet.submitted"
	EventTimesheetApproved  = "timesheet.approved"
	EventTimesheetRejected  = "timesheet.rejected"
	EventTimesheetReset     = "timesheet.reset_to_submitted"

	// CSV import events
	EventImportCompleted = "import.completed"
)

// Exchange names
const (
	ExchangeTimesheetEvents = "timesheet.events"
	ExchangeImportEvents    = "import.events"
)

// Event is the base event structure
type Event struct {
	ID            string          `json:"id"`
	Type          string          `json:"type"`
	Source        string          `json:"source"`
	Timestamp     time.Time       `json:"timestamp"`
	CorrelationID string          `json:"correlation_id"`
	Data          json.RawMessage `json:"data"`
}

// NewEvent creates a new event with the given type and data
func NewEvent(eventType, source, correlationID string, data interface{}) (*Event, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Event{
		ID:            uuid.New().String(),
		Type:          eventType,
		Source:        source,
		Timestamp:     time.Now().UTC(),
		CorrelationID: correlationID,
		Data:          dataBytes,
	}, nil
}

// UnmarshalData unmarshals the event data into the provided struct
func (e *Event) UnmarshalData(v interface{}) error {
	return json.Unmarshal(e.Data, v)
}

// TimesheetEvent is the payload for timesheet lifecycle events
type TimesheetEvent struct {
	TimesheetID string  `json:"timesheet_id"`
	EmployeeID  string  `json:"employee_id"`
	ProjectID   string  `json:"project_id"`
	WorkDate    string  `json:"work_date"`
	Hours       float64 `json:"hours"`
	Status      string  `json:"status"`
	ActorID     string  `json:"actor_id"`
}

// ImportCompletedEvent is the payload for import completion events
type ImportCompletedEvent struct {
	ImportLogID string `json:"import_log_id"`
	DataType    string `json:"data_type"`
	FileName    string `json:"file_name"`
	TotalRows   int    `json:"total_rows"`
	SuccessRows int    `json:"success_rows"`
	ErrorRows   int    `json:"error_rows"`
	Status      string `json:"status"`
	OperatorID  string `json:"operator_id"`
}
