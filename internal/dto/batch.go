package dto

// BatchUpdateItem pairs an event id with its partial update
type BatchUpdateItem struct {
	ID   string             `json:"id"`
	Data UpdateEventRequest `json:"data"`
}

// BatchRequest represents the body of POST /events/batch. Every phase is
// optional; phases run create, then update, then delete.
type BatchRequest struct {
	Create    []ScheduleEventRequest `json:"create,omitempty"`
	Update    []BatchUpdateItem      `json:"update,omitempty"`
	DeleteIDs []string               `json:"deleteIds,omitempty"`
}
