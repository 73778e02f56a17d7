package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"field-service-scheduler/internal/domain"
	"field-service-scheduler/internal/ports"
)

// SQLite-backed implementation of the ScheduleRepository port.
type SqliteScheduleRepository struct{ DB *sql.DB }

func NewSqliteScheduleRepository(db *sql.DB) *SqliteScheduleRepository {
	return &SqliteScheduleRepository{DB: db}
}

// FetchOffice returns the office for a region, or ports.ErrNotFound.
func (s *SqliteScheduleRepository) FetchOffice(ctx context.Context, region string) (*domain.Office, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite schedule repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT region, name, lat, lon
	FROM offices
	WHERE region = ?;
	`, region)

	var o domain.Office
	var lat, lon sql.NullFloat64
	if err := row.Scan(&o.Region, &o.Name, &lat, &lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("fetch office: region %q: %w", region, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch office: scan row: %w", err)
	}
	if lat.Valid {
		o.Lat = &lat.Float64
	}
	if lon.Valid {
		o.Lon = &lon.Float64
	}
	return &o, nil
}

// FetchTechnician returns the named technician, or ports.ErrNotFound.
func (s *SqliteScheduleRepository) FetchTechnician(ctx context.Context, name string) (*domain.Technician, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite schedule repository: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT name, region, first_appt, latest_return, max_pms_per_day
	FROM techs
	WHERE name = ?;
	`, name)

	var t domain.Technician
	if err := row.Scan(&t.Name, &t.Region, &t.FirstAppt, &t.LatestReturn, &t.MaxPMsPerDay); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("fetch technician: %q: %w", name, ports.ErrNotFound)
		}
		return nil, fmt.Errorf("fetch technician: scan row: %w", err)
	}
	return &t, nil
}

// ListProperties returns every stored property, ordered by name.
func (s *SqliteScheduleRepository) ListProperties(ctx context.Context) ([]*domain.Property, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite schedule repository: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, name, customer, full_address, city, state, zip, lat, lon, region
	FROM properties
	ORDER BY name;
	`)
	if err != nil {
		return nil, fmt.Errorf("list properties: query properties table: %w", err)
	}
	defer rows.Close()

	props := make([]*domain.Property, 0, 64)
	for rows.Next() {
		var p domain.Property
		var customer, address, city, state, zip, region sql.NullString
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&p.ID, &p.Name, &customer, &address, &city, &state, &zip, &lat, &lon, &region); err != nil {
			return nil, fmt.Errorf("list properties: scan row: %w", err)
		}
		p.Customer = strings.TrimSpace(customer.String)
		if p.Customer == "" {
			p.Customer = p.Name
		}
		p.Address = address.String
		p.City = city.String
		p.State = state.String
		p.Zip = zip.String
		if lat.Valid {
			p.Lat = &lat.Float64
		}
		if lon.Valid {
			p.Lon = &lon.Float64
		}
		p.Region = strings.TrimSpace(region.String)
		props = append(props, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list properties: row iteration: %w", err)
	}

	return props, nil
}

// ListMonthJobs returns the month's (job, property) pairs for a region,
// ordered by priority then property name. The month matches exactly or by
// "YYYY-MM" prefix; properties with a blank region are included so sparse
// upstream data still schedules.
func (s *SqliteScheduleRepository) ListMonthJobs(ctx context.Context, month, region string) ([]domain.JobVisit, error) {
	if s.DB == nil {
		return nil, errors.New("sqlite schedule repository: DB is nil")
	}

	prefix := month
	if len(prefix) > 7 {
		prefix = prefix[:7]
	}

	query := `
	SELECT
		mj.id, mj.month, mj.property_id, mj.type, mj.duration_hours, mj.priority,
		mj.fixed_date, mj.phase, mj.time_window_start, mj.time_window_end,
		mj.must_be_last_thursday, mj.notes, mj.assigned_tech,
		p.id, p.name, p.customer, p.full_address, p.city, p.state, p.zip,
		p.lat, p.lon, p.region
	FROM month_jobs mj
	JOIN properties p ON p.id = mj.property_id
	WHERE (mj.month = ? OR mj.month LIKE ?)
	  AND (? = '' OR p.region = ? OR COALESCE(p.region, '') = '')
	ORDER BY COALESCE(mj.priority, 9999) ASC, p.name ASC;
	`
	rows, err := s.DB.QueryContext(ctx, query, month, prefix+"%", region, region)
	if err != nil {
		return nil, fmt.Errorf("list month jobs: query month_jobs: %w", err)
	}
	defer rows.Close()

	visits := make([]domain.JobVisit, 0, 64)
	for rows.Next() {
		v, err := scanJobVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("list month jobs: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list month jobs: row iteration: %w", err)
	}

	return visits, nil
}

func scanJobVisit(rows *sql.Rows) (domain.JobVisit, error) {
	var (
		job  domain.MonthJob
		prop domain.Property

		jobType, fixedDate, phase, winStart, winEnd, jobNotes, assigned sql.NullString
		duration                                                       sql.NullFloat64
		priority, lastThu                                              sql.NullInt64
		customer, address, city, state, zip, propRegion                sql.NullString
		lat, lon                                                       sql.NullFloat64
	)

	err := rows.Scan(
		&job.ID, &job.Month, &job.PropertyID, &jobType, &duration, &priority,
		&fixedDate, &phase, &winStart, &winEnd, &lastThu, &jobNotes, &assigned,
		&prop.ID, &prop.Name, &customer, &address, &city, &state, &zip,
		&lat, &lon, &propRegion,
	)
	if err != nil {
		return domain.JobVisit{}, fmt.Errorf("scan row: %w", err)
	}

	job.Type = strings.TrimSpace(jobType.String)
	if job.Type == "" {
		job.Type = "PM"
	}
	if duration.Valid {
		job.DurationHours = duration.Float64
	}
	if priority.Valid {
		p := int(priority.Int64)
		job.Priority = &p
	}
	job.FixedDate = strings.TrimSpace(fixedDate.String)
	job.Phase = strings.TrimSpace(phase.String)
	job.WindowStart = strings.TrimSpace(winStart.String)
	job.WindowEnd = strings.TrimSpace(winEnd.String)
	job.LastThursday = lastThu.Int64 != 0
	job.Notes = jobNotes.String
	job.AssignedTech = strings.TrimSpace(assigned.String)

	prop.Customer = strings.TrimSpace(customer.String)
	if prop.Customer == "" {
		prop.Customer = prop.Name
	}
	prop.Address = address.String
	prop.City = city.String
	prop.State = state.String
	prop.Zip = zip.String
	if lat.Valid {
		prop.Lat = &lat.Float64
	}
	if lon.Valid {
		prop.Lon = &lon.Float64
	}
	prop.Region = strings.TrimSpace(propRegion.String)

	return domain.JobVisit{Job: &job, Property: &prop}, nil
}
