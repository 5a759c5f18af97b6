package database

import (
	"time"
)

// Todo is a task record as stored. Priority and status are small integer
// enums owned by the todo package; tags are comma-joined in a single column.
type Todo struct {
	ID          int64
	Title       string
	Description string
	Category    string
	Priority    int
	Status      int
	Tags        string
	DueDate     *time.Time
	CompletedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TodoFilter narrows and orders List results. Zero values mean "no
// constraint"; Limit<=0 falls back to the repository default.
type TodoFilter struct {
	Statuses   []int
	Priorities []int
	Category   string
	Search     string
	DueBefore  *time.Time
	DueAfter   *time.Time
	SortBy     string // created, updated, due, priority, title
	Ascending  bool
	Limit      int
	Offset     int
}

// TodoStats aggregates counters for the statistics endpoint.
type TodoStats struct {
	Total      int
	ByStatus   map[int]int
	ByPriority map[int]int
	Overdue    int
}
