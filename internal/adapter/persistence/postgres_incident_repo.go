package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/opsboard/opsboard/internal/domain"
	"github.com/opsboard/opsboard/internal/ports"
)

// PostgresIncidentRepository implements IncidentRepository using PostgreSQL
type PostgresIncidentRepository struct {
	db *sql.DB
}

// NewPostgresIncidentRepository creates a new PostgreSQL incident repository
func NewPostgresIncidentRepository(db *sql.DB) ports.IncidentRepository {
	return &PostgresIncidentRepository{db: db}
}

const incidentColumns = `id, title, description, status, tier, assignee_id, resolved_at, closed_at, created_at, updated_at`

// Create saves a new incident
func (r *PostgresIncidentRepository) Create(ctx context.Context, incident *domain.Incident) error {
	query := `
		INSERT INTO incidents (` + incidentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		incident.ID,
		incident.Title,
		incident.Description,
		string(incident.Status),
		string(incident.Tier),
		incident.AssigneeID,
		incident.ResolvedAt,
		incident.ClosedAt,
		incident.CreatedAt,
		incident.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create incident: %w", err)
	}

	return nil
}

// FindByID retrieves an incident by its ID
func (r *PostgresIncidentRepository) FindByID(ctx context.Context, id string) (*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE id = $1`

	incident, err := scanIncident(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrIncidentNotFound
		}
		return nil, fmt.Errorf("failed to find incident: %w", err)
	}

	return incident, nil
}

// Update persists the full incident row in one write
func (r *PostgresIncidentRepository) Update(ctx context.Context, incident *domain.Incident) error {
	query := `
		UPDATE incidents
		SET title = $2, description = $3, status = $4, tier = $5,
			assignee_id = $6, resolved_at = $7, closed_at = $8, updated_at = $9
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		incident.ID,
		incident.Title,
		incident.Description,
		string(incident.Status),
		string(incident.Tier),
		incident.AssigneeID,
		incident.ResolvedAt,
		incident.ClosedAt,
		incident.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to update incident: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrIncidentNotFound
	}

	return nil
}

// List retrieves incidents based on filter criteria
func (r *PostgresIncidentRepository) List(ctx context.Context, filter domain.IncidentFilter) ([]*domain.Incident, error) {
	query := `SELECT ` + incidentColumns + ` FROM incidents WHERE 1=1`

	conditions, args := incidentConditions(filter)
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at DESC"

	argIndex := len(args) + 1
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, filter.Limit)
		argIndex++
	}

	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argIndex)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query incidents: %w", err)
	}
	defer rows.Close()

	var incidents []*domain.Incident

	for rows.Next() {
		incident, err := scanIncident(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan incident: %w", err)
		}
		incidents = append(incidents, incident)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incidents: %w", err)
	}

	return incidents, nil
}

// Count returns the number of incidents matching the filter
func (r *PostgresIncidentRepository) Count(ctx context.Context, filter domain.IncidentFilter) (int, error) {
	query := `SELECT COUNT(*) FROM incidents WHERE 1=1`

	conditions, args := incidentConditions(filter)
	if len(conditions) > 0 {
		query += " AND " + strings.Join(conditions, " AND ")
	}

	var count int
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count incidents: %w", err)
	}

	return count, nil
}

// Stats returns aggregate incident counts grouped by status and tier
func (r *PostgresIncidentRepository) Stats(ctx context.Context) (*domain.IncidentStats, error) {
	stats := &domain.IncidentStats{
		ByStatus: make(map[domain.IncidentStatus]int),
		ByTier:   make(map[domain.IncidentTier]int),
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM incidents GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incident status stats: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status domain.IncidentStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan incident status stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incident status stats: %w", err)
	}

	trows, err := r.db.QueryContext(ctx, `SELECT tier, COUNT(*) FROM incidents GROUP BY tier`)
	if err != nil {
		return nil, fmt.Errorf("failed to query incident tier stats: %w", err)
	}
	defer trows.Close()

	for trows.Next() {
		var tier domain.IncidentTier
		var count int
		if err := trows.Scan(&tier, &count); err != nil {
			return nil, fmt.Errorf("failed to scan incident tier stats: %w", err)
		}
		stats.ByTier[tier] = count
	}
	if err := trows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating incident tier stats: %w", err)
	}

	return stats, nil
}

func scanIncident(s scanner) (*domain.Incident, error) {
	var incident domain.Incident
	var assigneeID sql.NullString
	var resolvedAt, closedAt sql.NullTime

	err := s.Scan(
		&incident.ID,
		&incident.Title,
		&incident.Description,
		&incident.Status,
		&incident.Tier,
		&assigneeID,
		&resolvedAt,
		&closedAt,
		&incident.CreatedAt,
		&incident.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	incident.AssigneeID = nullStringPtr(assigneeID)
	incident.ResolvedAt = nullTimePtr(resolvedAt)
	incident.ClosedAt = nullTimePtr(closedAt)

	return &incident, nil
}

func incidentConditions(filter domain.IncidentFilter) ([]string, []interface{}) {
	var conditions []string
	var args []interface{}
	argIndex := 1

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argIndex))
		args = append(args, string(*filter.Status))
		argIndex++
	}

	if filter.Tier != nil {
		conditions = append(conditions, fmt.Sprintf("tier = $%d", argIndex))
		args = append(args, string(*filter.Tier))
		argIndex++
	}

	if filter.AssigneeID != nil {
		conditions = append(conditions, fmt.Sprintf("assignee_id = $%d", argIndex))
		args = append(args, *filter.AssigneeID)
	}

	return conditions, args
}
