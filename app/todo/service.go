package todo

import (
	"fmt"
	"strings"
	"time"

	"github.com/homedash/homedash/app/database"
)

const maxTitleLength = 200

// Service validates and translates between the external task representation
// and the storage layer.
type Service struct {
	repo database.TodoRepository
}

func NewService(repo database.TodoRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Add(input Input) (*Item, error) {
	record, err := recordFromInput(input)
	if err != nil {
		return nil, err
	}

	id, err := s.repo.Create(*record)
	if err != nil {
		return nil, err
	}

	return s.Get(id)
}

func (s *Service) Get(id int64) (*Item, error) {
	record, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, nil
	}

	item := itemFromRecord(*record)
	return &item, nil
}

func (s *Service) Update(id int64, input Input) (*Item, error) {
	existing, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}

	record, err := recordFromInput(input)
	if err != nil {
		return nil, err
	}

	record.ID = id
	record.CompletedAt = existing.CompletedAt
	if record.Status == int(StatusCompleted) && existing.CompletedAt == nil {
		now := time.Now().UTC()
		record.CompletedAt = &now
	}

	if err := s.repo.Update(*record); err != nil {
		return nil, err
	}

	return s.Get(id)
}

func (s *Service) Delete(id int64) (bool, error) {
	return s.repo.Delete(id)
}

func (s *Service) Complete(id int64) (*Item, error) {
	ok, err := s.repo.Complete(id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}

	return s.Get(id)
}

func (s *Service) List(query ListQuery) ([]Item, error) {
	filter := database.TodoFilter{
		Category:  query.Category,
		Search:    query.Search,
		SortBy:    query.SortBy,
		Ascending: query.Ascending,
		Limit:     query.Limit,
		Offset:    query.Offset,
	}

	for _, name := range query.Statuses {
		status, err := ParseStatus(name)
		if err != nil {
			return nil, err
		}
		filter.Statuses = append(filter.Statuses, int(status))
	}

	for _, name := range query.Priorities {
		priority, err := ParsePriority(name)
		if err != nil {
			return nil, err
		}
		filter.Priorities = append(filter.Priorities, int(priority))
	}

	records, err := s.repo.List(filter)
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0, len(records))
	for _, record := range records {
		items = append(items, itemFromRecord(record))
	}

	return items, nil
}

func (s *Service) Stats() (*Stats, error) {
	raw, err := s.repo.Stats()
	if err != nil {
		return nil, err
	}

	stats := &Stats{
		Total:      raw.Total,
		ByStatus:   make(map[string]int),
		ByPriority: make(map[string]int),
		Overdue:    raw.Overdue,
	}
	for status, count := range raw.ByStatus {
		stats.ByStatus[Status(status).String()] = count
	}
	for priority, count := range raw.ByPriority {
		stats.ByPriority[Priority(priority).String()] = count
	}

	return stats, nil
}

func (s *Service) Categories() ([]string, error) {
	return s.repo.Categories()
}

func recordFromInput(input Input) (*database.Todo, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if len(title) > maxTitleLength {
		return nil, fmt.Errorf("title exceeds %d characters", maxTitleLength)
	}

	priority, err := ParsePriority(input.Priority)
	if err != nil {
		return nil, err
	}

	status, err := ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}

	return &database.Todo{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Category:    strings.TrimSpace(input.Category),
		Priority:    int(priority),
		Status:      int(status),
		Tags:        joinTags(input.Tags),
		DueDate:     input.DueDate,
	}, nil
}

func itemFromRecord(record database.Todo) Item {
	return Item{
		ID:          record.ID,
		Title:       record.Title,
		Description: record.Description,
		Category:    record.Category,
		Priority:    Priority(record.Priority).String(),
		Status:      Status(record.Status).String(),
		Tags:        parseTags(record.Tags),
		DueDate:     record.DueDate,
		CompletedAt: record.CompletedAt,
		CreatedAt:   record.CreatedAt,
		UpdatedAt:   record.UpdatedAt,
	}
}

func joinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag != "" {
			cleaned = append(cleaned, tag)
		}
	}
	return strings.Join(cleaned, ",")
}

func parseTags(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
