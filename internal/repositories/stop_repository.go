package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"busmanager/internal/db"
	"busmanager/internal/domain"
	"busmanager/internal/domain/models"

	"github.com/google/uuid"
)

// StopRepository wraps DB access for the bus_stops table.
type StopRepository struct {
	DB      *sql.DB
	Dialect string
}

func (r StopRepository) columns() string {
	return `id, lat, ` + db.Ident(r.Dialect, "long") + `, name, geohash`
}

func scanStop(row interface{ Scan(...any) error }) (models.Stop, error) {
	var s models.Stop
	if err := row.Scan(&s.ID, &s.Lat, &s.Long, &s.Name, &s.Geohash); err != nil {
		return models.Stop{}, err
	}
	return s, nil
}

func (r StopRepository) GetByID(ctx context.Context, id string) (models.Stop, error) {
	s, err := scanStop(r.DB.QueryRowContext(ctx, `SELECT `+r.columns()+` FROM bus_stops WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stop{}, domain.NotFoundError{Resource: "Bus stop", ID: id, Err: err}
	}
	return s, err
}

// GetByName returns the first stop with exactly this name.
func (r StopRepository) GetByName(ctx context.Context, name string) (models.Stop, error) {
	s, err := scanStop(r.DB.QueryRowContext(ctx, `SELECT `+r.columns()+` FROM bus_stops WHERE name = ? ORDER BY id LIMIT 1`, name))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Stop{}, domain.NotFoundError{Resource: "Bus stop", Err: err}
	}
	return s, err
}

func (r StopRepository) GetAll(ctx context.Context) ([]models.Stop, error) {
	return r.list(ctx, `SELECT `+r.columns()+` FROM bus_stops ORDER BY name`)
}

// GetByGeohashPrefix lists stops whose geohash cell starts with prefix.
func (r StopRepository) GetByGeohashPrefix(ctx context.Context, prefix string) ([]models.Stop, error) {
	return r.list(ctx, `SELECT `+r.columns()+` FROM bus_stops WHERE geohash LIKE ? ORDER BY name`, prefix+"%")
}

func (r StopRepository) list(ctx context.Context, query string, args ...any) ([]models.Stop, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query bus stops: %w", err)
	}
	defer rows.Close()

	var stops []models.Stop
	for rows.Next() {
		s, err := scanStop(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bus stop: %w", err)
		}
		stops = append(stops, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bus stops: %w", err)
	}
	return stops, nil
}

func (r StopRepository) Add(ctx context.Context, stop *models.Stop) error {
	if strings.TrimSpace(stop.ID) == "" {
		stop.ID = uuid.NewString()
	}

	_, err := r.DB.ExecContext(ctx, `INSERT INTO bus_stops (`+r.columns()+`) VALUES (?, ?, ?, ?, ?)`,
		stop.ID, stop.Lat, stop.Long, stop.Name, stop.Geohash)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Bus stop", Msg: "already exists", Err: err}
		}
		return fmt.Errorf("insert bus stop: %w", err)
	}
	return nil
}

func (r StopRepository) UpdateByID(ctx context.Context, stop *models.Stop) error {
	if _, err := r.GetByID(ctx, stop.ID); err != nil {
		return err
	}

	_, err := r.DB.ExecContext(ctx, `
		UPDATE bus_stops
		SET lat = ?, `+db.Ident(r.Dialect, "long")+` = ?, name = ?, geohash = ?
		WHERE id = ?
	`, stop.Lat, stop.Long, stop.Name, stop.Geohash, stop.ID)
	if err != nil {
		return fmt.Errorf("update bus stop: %w", err)
	}
	return nil
}

func (r StopRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWithLinks(ctx, r.DB, "Bus stop", "bus_stops", id, link{"routes_bus_stops", "bus_stop_id"})
}
