package web

import (
	"fmt"

	"github.com/snakayama/kadai/internal/models"
	"github.com/snakayama/kadai/internal/task"
	"gorm.io/gorm"
)

// TaskRow holds task data for the table, board and Gantt views.
type TaskRow struct {
	ID          string `json:"id"`
	Key         string `json:"key"` // e.g. "SAMPLE-3"
	Summary     string `json:"summary"`
	Status      string `json:"status"`
	StatusLabel string `json:"statusLabel"`
	StatusColor string `json:"statusColor"`
	Priority    string `json:"priority"`
	Assignee    string `json:"assignee"`
	Category    string `json:"category"`
	StartDate   string `json:"startDate"`
	DueDate     string `json:"dueDate"`
}

// taskRow flattens a task plus its catalog entry into a display row.
func taskRow(projectKey string, t models.Task, byKey map[string]models.TaskStatus) TaskRow {
	row := TaskRow{
		ID:       t.ID,
		Key:      fmt.Sprintf("%s-%d", projectKey, t.KeyID),
		Summary:  t.Summary,
		Status:   t.Status,
		Priority: t.Priority,
	}
	if s, ok := byKey[t.Status]; ok {
		row.StatusLabel = s.Label
		row.StatusColor = s.Color
	} else {
		// Orphaned status key: shown as-is in the table view, dropped on
		// the board.
		row.StatusLabel = t.Status
	}
	if t.Assignee != nil {
		row.Assignee = t.Assignee.DisplayName
	}
	if t.Category != nil {
		row.Category = t.Category.Name
	}
	if t.StartDate != nil {
		row.StartDate = t.StartDate.Format("2006-01-02")
	}
	if t.DueDate != nil {
		row.DueDate = t.DueDate.Format("2006-01-02")
	}
	return row
}

// statusIndex maps a resolved catalog by key.
func statusIndex(catalog []models.TaskStatus) map[string]models.TaskStatus {
	byKey := make(map[string]models.TaskStatus, len(catalog))
	for _, s := range catalog {
		byKey[s.Key] = s
	}
	return byKey
}

// TaskTable returns display rows for a project's task list.
func TaskTable(db *gorm.DB, p *models.Project, catalog []models.TaskStatus, filters task.ListFilters) ([]TaskRow, error) {
	tasks, err := task.List(db, p.ID, filters)
	if err != nil {
		return nil, err
	}
	byKey := statusIndex(catalog)
	rows := make([]TaskRow, len(tasks))
	for i, t := range tasks {
		rows[i] = taskRow(p.Key, t, byKey)
	}
	return rows, nil
}

// StatusRow holds one catalog entry for the JSON API.
type StatusRow struct {
	ID           string `json:"id"`
	Key          string `json:"key"`
	Label        string `json:"label"`
	Color        string `json:"color"`
	DisplayOrder int    `json:"displayOrder"`
}

// StatusRows flattens a resolved catalog for API responses.
func StatusRows(catalog []models.TaskStatus) []StatusRow {
	rows := make([]StatusRow, len(catalog))
	for i, s := range catalog {
		rows[i] = StatusRow{ID: s.ID, Key: s.Key, Label: s.Label, Color: s.Color, DisplayOrder: s.DisplayOrder}
	}
	return rows
}

// BoardColumn holds one kanban column in catalog order.
type BoardColumn struct {
	Key   string    `json:"key"`
	Label string    `json:"label"`
	Color string    `json:"color"`
	Tasks []TaskRow `json:"tasks"`
}

// BoardColumns partitions a project's tasks into catalog-ordered columns.
// Orphaned tasks appear in no column.
func BoardColumns(db *gorm.DB, p *models.Project) ([]BoardColumn, error) {
	catalog, groups, err := task.GroupedByStatus(db, p.ID)
	if err != nil {
		return nil, err
	}
	byKey := statusIndex(catalog)

	columns := make([]BoardColumn, len(catalog))
	for i, s := range catalog {
		column := BoardColumn{Key: s.Key, Label: s.Label, Color: s.Color, Tasks: []TaskRow{}}
		for _, t := range groups[s.Key] {
			column.Tasks = append(column.Tasks, taskRow(p.Key, t, byKey))
		}
		columns[i] = column
	}
	return columns, nil
}

// GanttRows returns the project's date-ranged tasks ordered by start date.
// Tasks without either date are excluded from the chart.
func GanttRows(db *gorm.DB, p *models.Project, catalog []models.TaskStatus) ([]TaskRow, error) {
	var tasks []models.Task
	if err := db.Preload("Assignee").Preload("Category").
		Where("project_id = ? AND start_date IS NOT NULL AND due_date IS NOT NULL", p.ID).
		Order("start_date ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("web: gantt tasks for project %s: %w", p.ID, err)
	}
	byKey := statusIndex(catalog)
	rows := make([]TaskRow, len(tasks))
	for i, t := range tasks {
		rows[i] = taskRow(p.Key, t, byKey)
	}
	return rows, nil
}

// StatusCount pairs a catalog entry with its task count for the overview.
type StatusCount struct {
	Key   string
	Label string
	Color string
	Count int64
}

// ProjectSummary returns per-status task counts in catalog order.
func ProjectSummary(db *gorm.DB, projectID string, catalog []models.TaskStatus) ([]StatusCount, error) {
	type row struct {
		Status string
		Count  int64
	}
	var rows []row
	if err := db.Model(&models.Task{}).
		Select("status, count(*) as count").
		Where("project_id = ?", projectID).
		Group("status").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("web: summary for project %s: %w", projectID, err)
	}
	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.Count
	}

	result := make([]StatusCount, len(catalog))
	for i, s := range catalog {
		result[i] = StatusCount{Key: s.Key, Label: s.Label, Color: s.Color, Count: counts[s.Key]}
	}
	return result, nil
}
