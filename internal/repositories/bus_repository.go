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

const busColumns = `id, brand, bus_model, register_number, assembly_date, last_repair_date`

// BusRepository wraps DB access for the buses table.
type BusRepository struct {
	DB *sql.DB
}

func scanBus(row interface{ Scan(...any) error }) (models.Bus, error) {
	var (
		b        models.Bus
		assembly db.Time
		repair   db.Time
	)
	if err := row.Scan(&b.ID, &b.Brand, &b.BusModel, &b.RegisterNumber, &assembly, &repair); err != nil {
		return models.Bus{}, err
	}
	b.AssemblyDate = assembly.Time
	b.LastRepairDate = repair.Time
	return b, nil
}

func (r BusRepository) GetByID(ctx context.Context, id string) (models.Bus, error) {
	b, err := scanBus(r.DB.QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bus{}, domain.NotFoundError{Resource: "Bus", ID: id, Err: err}
	}
	return b, err
}

func (r BusRepository) GetByNumber(ctx context.Context, number string) (models.Bus, error) {
	b, err := scanBus(r.DB.QueryRowContext(ctx, `SELECT `+busColumns+` FROM buses WHERE register_number = ?`, number))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Bus{}, domain.NotFoundError{Resource: "Bus", ID: number, Err: err}
	}
	return b, err
}

// GetAll returns a nil slice when the table is empty.
func (r BusRepository) GetAll(ctx context.Context) ([]models.Bus, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+busColumns+` FROM buses ORDER BY register_number`)
	if err != nil {
		return nil, fmt.Errorf("query buses: %w", err)
	}
	defer rows.Close()

	var buses []models.Bus
	for rows.Next() {
		b, err := scanBus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan bus: %w", err)
		}
		buses = append(buses, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate buses: %w", err)
	}
	return buses, nil
}

// Add inserts bus, assigning a fresh uuid when ID is blank.
func (r BusRepository) Add(ctx context.Context, bus *models.Bus) error {
	if _, err := r.GetByNumber(ctx, bus.RegisterNumber); err == nil {
		return domain.ConflictError{Resource: "Bus", Msg: "register number " + bus.RegisterNumber + " already exists"}
	} else if !domain.IsNotFound(err) {
		return err
	}

	if strings.TrimSpace(bus.ID) == "" {
		bus.ID = uuid.NewString()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO buses (`+busColumns+`)
		VALUES (?, ?, ?, ?, ?, ?)
	`, bus.ID, bus.Brand, bus.BusModel, bus.RegisterNumber, bus.AssemblyDate.UTC(), bus.LastRepairDate.UTC())
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Bus", Msg: "already exists", Err: err}
		}
		return fmt.Errorf("insert bus: %w", err)
	}
	return nil
}

func (r BusRepository) UpdateByID(ctx context.Context, bus *models.Bus) error {
	if _, err := r.GetByID(ctx, bus.ID); err != nil {
		return err
	}

	_, err := r.DB.ExecContext(ctx, `
		UPDATE buses
		SET brand = ?, bus_model = ?, register_number = ?, assembly_date = ?, last_repair_date = ?
		WHERE id = ?
	`, bus.Brand, bus.BusModel, bus.RegisterNumber, bus.AssemblyDate.UTC(), bus.LastRepairDate.UTC(), bus.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Bus", Msg: "register number " + bus.RegisterNumber + " already exists", Err: err}
		}
		return fmt.Errorf("update bus: %w", err)
	}
	return nil
}

// DeleteByID removes the bus and its route assignments.
func (r BusRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWithLinks(ctx, r.DB, "Bus", "buses", id, link{"routes_buses", "bus_id"})
}
