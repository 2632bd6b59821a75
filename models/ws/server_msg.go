package wsmodels

// ServerMessage is one change-feed event. Clients refresh the task identified by TaskID.
type ServerMessage struct {
	ToUserID string `json:"-"`
	Time     string `json:"time"`              // event time
	Code     string `json:"code"`              // event code, see models.PushCode
	TaskID   string `json:"task_id,omitempty"` // changed task
	Status   string `json:"status,omitempty"`  // task status after the change
	Title    string `json:"title"`
	Msg      string `json:"msg"`
}
