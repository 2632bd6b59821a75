package dbmodels

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/pkg/errors"
	"task-approval-backend/models"
)

type TaskHistory struct {
	BaseModel
	TaskID     string            `gorm:"type:varchar(36);index"`
	ActorID    string            `gorm:"type:varchar(36)"`
	Actor      *User             `gorm:"foreignKey:ActorID"`
	Event      models.TaskEvent  `gorm:"type:varchar(30)"`
	FromStatus models.TaskStatus `gorm:"type:varchar(30)"`
	ToStatus   models.TaskStatus `gorm:"type:varchar(30)"`
	Comment    string
	Changes    EntityChanges `gorm:"type:jsonb"`
}

type EntityChanges struct {
	Description string         `json:"description"`
	Data        []FieldChanges `json:"data"`
}

type FieldChanges struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

func (j EntityChanges) Value() (driver.Value, error) {
	valueString, err := json.Marshal(j)
	return string(valueString), err
}

func (j *EntityChanges) Scan(value any) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	}
	return errors.Errorf("unsupported changes value %T", value)
}

func (j *EntityChanges) Add(field string, oldValue, newValue any) {
	j.Data = append(j.Data, FieldChanges{Field: field, OldValue: oldValue, NewValue: newValue})
}
