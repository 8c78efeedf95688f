package schedule

import (
	"time"

	"github.com/appetiteclub/apt"
	"github.com/google/uuid"
)

// Table is a fixed-capacity seating resource. The engine treats the inventory
// as immutable for the duration of a detection run.
type Table struct {
	ID        uuid.UUID `json:"id" bson:"_id"`
	Number    string    `json:"number" bson:"number"`
	Capacity  int       `json:"capacity" bson:"capacity"`
	Room      string    `json:"room,omitempty" bson:"room,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	CreatedBy string    `json:"created_by,omitempty" bson:"created_by,omitempty"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
	UpdatedBy string    `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
}

func (t *Table) GetID() uuid.UUID {
	return t.ID
}

func (t *Table) ResourceType() string {
	return "table"
}

func (t *Table) SetID(id uuid.UUID) {
	t.ID = id
}

func NewTable() *Table {
	return &Table{
		ID: apt.GenerateNewID(),
	}
}

func (t *Table) EnsureID() {
	if t.ID == uuid.Nil {
		t.ID = apt.GenerateNewID()
	}
}

func (t *Table) BeforeCreate() {
	t.EnsureID()
	t.CreatedAt = time.Now()
	t.UpdatedAt = time.Now()
}

func (t *Table) BeforeUpdate() {
	t.UpdatedAt = time.Now()
}
