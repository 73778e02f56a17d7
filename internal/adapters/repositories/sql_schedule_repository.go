package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"field-service-scheduler/internal/domain"
	"field-service-scheduler/internal/platform/obs"
	"field-service-scheduler/internal/ports"
)

// SQLScheduleRepository is the Postgres-backed implementation of the
// ScheduleRepository port, used by deployments that keep reference data in
// a shared database instead of a local SQLite file.
type SQLScheduleRepository struct{ DB *sql.DB }

func NewSQLScheduleRepository(db *sql.DB) *SQLScheduleRepository {
	return &SQLScheduleRepository{DB: db}
}

func (s *SQLScheduleRepository) FetchOffice(ctx context.Context, region string) (_ *domain.Office, err error) {
	defer obs.Time(ctx, "repo.FetchOffice")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule repository: db is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT region, name, lat, lon
	FROM offices
	WHERE region = $1;
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

func (s *SQLScheduleRepository) FetchTechnician(ctx context.Context, name string) (_ *domain.Technician, err error) {
	defer obs.Time(ctx, "repo.FetchTechnician")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule repository: db is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT name, region, first_appt, latest_return, max_pms_per_day
	FROM techs
	WHERE name = $1;
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

// ListProperties returns every stored property, for maintenance tasks like
// the coordinate-confidence scan.
func (s *SQLScheduleRepository) ListProperties(ctx context.Context) (_ []*domain.Property, err error) {
	defer obs.Time(ctx, "repo.ListProperties")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule repository: db is nil")
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
		p.Customer = customer.String
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
		p.Region = region.String
		props = append(props, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list properties: row iteration: %w", err)
	}

	return props, nil
}

func (s *SQLScheduleRepository) ListMonthJobs(ctx context.Context, month, region string) (_ []domain.JobVisit, err error) {
	defer obs.Time(ctx, "repo.ListMonthJobs")(&err)

	if s.DB == nil {
		return nil, errors.New("schedule repository: db is nil")
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
	WHERE (mj.month = $1 OR mj.month LIKE $2)
	  AND ($3 = '' OR p.region = $3 OR COALESCE(p.region, '') = '')
	ORDER BY COALESCE(mj.priority, 9999) ASC, p.name ASC;
	`
	rows, err := s.DB.QueryContext(ctx, query, month, prefix+"%", region)
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
