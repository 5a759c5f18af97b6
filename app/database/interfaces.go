package database

import (
	"time"
)

// TodoRepository defines the storage operations the todo service needs.
type TodoRepository interface {
	Create(todo Todo) (int64, error)
	GetByID(id int64) (*Todo, error)
	Update(todo Todo) error
	Delete(id int64) (bool, error)
	List(filter TodoFilter) ([]Todo, error)
	Complete(id int64, at time.Time) (bool, error)
	Stats() (*TodoStats, error)
	Categories() ([]string, error)
}
