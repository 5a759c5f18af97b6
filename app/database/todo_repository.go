package database

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var _ TodoRepository = (*SQLTodoRepository)(nil)

const defaultListLimit = 100

// SQLTodoRepository implements TodoRepository on SQLite.
type SQLTodoRepository struct {
	db *DB
}

func NewTodoRepository(db *DB) *SQLTodoRepository {
	return &SQLTodoRepository{db: db}
}

func (r *SQLTodoRepository) Create(todo Todo) (int64, error) {
	res, err := r.db.Exec(`
		INSERT INTO todos (title, description, category, priority, status, tags, due_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	`, todo.Title, todo.Description, todo.Category, todo.Priority, todo.Status, todo.Tags, todo.DueDate)
	if err != nil {
		return 0, fmt.Errorf("failed to insert todo: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}

	return id, nil
}

func (r *SQLTodoRepository) GetByID(id int64) (*Todo, error) {
	row := r.db.QueryRow(`
		SELECT id, title, description, category, priority, status, tags, due_date, completed_at, created_at, updated_at
		FROM todos WHERE id = ?
	`, id)

	todo, err := scanTodo(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get todo: %w", err)
	}

	return todo, nil
}

func (r *SQLTodoRepository) Update(todo Todo) error {
	_, err := r.db.Exec(`
		UPDATE todos
		SET title = ?, description = ?, category = ?, priority = ?, status = ?, tags = ?, due_date = ?, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, todo.Title, todo.Description, todo.Category, todo.Priority, todo.Status, todo.Tags, todo.DueDate, todo.CompletedAt, todo.ID)
	if err != nil {
		return fmt.Errorf("failed to update todo: %w", err)
	}

	return nil
}

func (r *SQLTodoRepository) Delete(id int64) (bool, error) {
	res, err := r.db.Exec(`DELETE FROM todos WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *SQLTodoRepository) List(filter TodoFilter) ([]Todo, error) {
	where, args := buildWhereClause(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, category, priority, status, tags, due_date, completed_at, created_at, updated_at
		FROM todos %s ORDER BY %s LIMIT ? OFFSET ?
	`, where, orderByClause(filter))
	args = append(args, limit, filter.Offset)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	var todos []Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan todo: %w", err)
		}
		todos = append(todos, *todo)
	}

	return todos, rows.Err()
}

func (r *SQLTodoRepository) Complete(id int64, at time.Time) (bool, error) {
	res, err := r.db.Exec(`
		UPDATE todos
		SET status = 2, completed_at = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, at, id)
	if err != nil {
		return false, fmt.Errorf("failed to complete todo: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get affected rows: %w", err)
	}

	return affected > 0, nil
}

func (r *SQLTodoRepository) Stats() (*TodoStats, error) {
	stats := &TodoStats{
		ByStatus:   make(map[int]int),
		ByPriority: make(map[int]int),
	}

	rows, err := r.db.Query(`SELECT status, priority, COUNT(*) FROM todos GROUP BY status, priority`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status, priority, count int
		if err := rows.Scan(&status, &priority, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.Total += count
		stats.ByStatus[status] += count
		stats.ByPriority[priority] += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// pending or in-progress items past their due date
	err = r.db.QueryRow(`
		SELECT COUNT(*) FROM todos
		WHERE due_date IS NOT NULL AND due_date < CURRENT_TIMESTAMP AND status IN (0, 1)
	`).Scan(&stats.Overdue)
	if err != nil {
		return nil, fmt.Errorf("failed to count overdue todos: %w", err)
	}

	return stats, nil
}

func (r *SQLTodoRepository) Categories() ([]string, error) {
	rows, err := r.db.Query(`SELECT DISTINCT category FROM todos WHERE category != '' ORDER BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer rows.Close()

	var categories []string
	for rows.Next() {
		var category string
		if err := rows.Scan(&category); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		categories = append(categories, category)
	}

	return categories, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*Todo, error) {
	var todo Todo
	err := row.Scan(&todo.ID, &todo.Title, &todo.Description, &todo.Category,
		&todo.Priority, &todo.Status, &todo.Tags, &todo.DueDate,
		&todo.CompletedAt, &todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &todo, nil
}

func buildWhereClause(filter TodoFilter) (string, []any) {
	var clauses []string
	var args []any

	if len(filter.Statuses) > 0 {
		clauses = append(clauses, "status IN ("+placeholders(len(filter.Statuses))+")")
		for _, s := range filter.Statuses {
			args = append(args, s)
		}
	}

	if len(filter.Priorities) > 0 {
		clauses = append(clauses, "priority IN ("+placeholders(len(filter.Priorities))+")")
		for _, p := range filter.Priorities {
			args = append(args, p)
		}
	}

	if filter.Category != "" {
		clauses = append(clauses, "category = ?")
		args = append(args, filter.Category)
	}

	if filter.Search != "" {
		clauses = append(clauses, "(title LIKE ? OR description LIKE ?)")
		pattern := "%" + filter.Search + "%"
		args = append(args, pattern, pattern)
	}

	if filter.DueBefore != nil {
		clauses = append(clauses, "due_date IS NOT NULL AND due_date < ?")
		args = append(args, *filter.DueBefore)
	}

	if filter.DueAfter != nil {
		clauses = append(clauses, "due_date IS NOT NULL AND due_date > ?")
		args = append(args, *filter.DueAfter)
	}

	if len(clauses) == 0 {
		return "", args
	}

	return "WHERE " + strings.Join(clauses, " AND "), args
}

// orderByClause maps the filter's sort key onto a column; the sort key set is
// closed, so the column name never comes from user input.
func orderByClause(filter TodoFilter) string {
	column := "created_at"
	switch filter.SortBy {
	case "updated":
		column = "updated_at"
	case "due":
		column = "due_date"
	case "priority":
		column = "priority"
	case "title":
		column = "title"
	}

	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	return column + " " + direction
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
