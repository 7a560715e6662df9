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

const driverColumns = `id, name, surname, patronymic, birth_date, passport_series, snils, license_series`

// DriverRepository wraps DB access for the drivers table.
type DriverRepository struct {
	DB *sql.DB
}

func scanDriver(row interface{ Scan(...any) error }) (models.Driver, error) {
	var (
		d     models.Driver
		birth db.Time
	)
	if err := row.Scan(&d.ID, &d.Name, &d.Surname, &d.Patronymic, &birth, &d.PassportSeries, &d.Snils, &d.LicenseSeries); err != nil {
		return models.Driver{}, err
	}
	d.BirthDate = birth.Time
	return d, nil
}

func (r DriverRepository) GetByID(ctx context.Context, id string) (models.Driver, error) {
	d, err := scanDriver(r.DB.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Driver{}, domain.NotFoundError{Resource: "Driver", ID: id, Err: err}
	}
	return d, err
}

func (r DriverRepository) GetByPassportSeries(ctx context.Context, series string) (models.Driver, error) {
	d, err := scanDriver(r.DB.QueryRowContext(ctx, `SELECT `+driverColumns+` FROM drivers WHERE passport_series = ?`, series))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Driver{}, domain.NotFoundError{Resource: "Driver", Err: err}
	}
	return d, err
}

// GetByDocuments finds a driver holding any of the given unique documents.
func (r DriverRepository) GetByDocuments(ctx context.Context, passport, snils, license string) (models.Driver, error) {
	d, err := scanDriver(r.DB.QueryRowContext(ctx, `
		SELECT `+driverColumns+`
		FROM drivers
		WHERE passport_series = ? OR snils = ? OR license_series = ?
		LIMIT 1
	`, passport, snils, license))
	if errors.Is(err, sql.ErrNoRows) {
		return models.Driver{}, domain.NotFoundError{Resource: "Driver", Err: err}
	}
	return d, err
}

func (r DriverRepository) GetAll(ctx context.Context) ([]models.Driver, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+driverColumns+` FROM drivers ORDER BY surname, name, patronymic`)
	if err != nil {
		return nil, fmt.Errorf("query drivers: %w", err)
	}
	defer rows.Close()

	var drivers []models.Driver
	for rows.Next() {
		d, err := scanDriver(rows)
		if err != nil {
			return nil, fmt.Errorf("scan driver: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate drivers: %w", err)
	}
	return drivers, nil
}

func (r DriverRepository) Add(ctx context.Context, driver *models.Driver) error {
	if _, err := r.GetByDocuments(ctx, driver.PassportSeries, driver.Snils, driver.LicenseSeries); err == nil {
		return domain.ConflictError{Resource: "Driver", Msg: "driver with the same documents already exists"}
	} else if !domain.IsNotFound(err) {
		return err
	}

	if strings.TrimSpace(driver.ID) == "" {
		driver.ID = uuid.NewString()
	}

	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO drivers (`+driverColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, driver.ID, driver.Name, driver.Surname, driver.Patronymic, driver.BirthDate.UTC(),
		driver.PassportSeries, driver.Snils, driver.LicenseSeries)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Driver", Msg: "already exists", Err: err}
		}
		return fmt.Errorf("insert driver: %w", err)
	}
	return nil
}

func (r DriverRepository) UpdateByID(ctx context.Context, driver *models.Driver) error {
	if _, err := r.GetByID(ctx, driver.ID); err != nil {
		return err
	}

	_, err := r.DB.ExecContext(ctx, `
		UPDATE drivers
		SET name = ?, surname = ?, patronymic = ?, birth_date = ?, passport_series = ?, snils = ?, license_series = ?
		WHERE id = ?
	`, driver.Name, driver.Surname, driver.Patronymic, driver.BirthDate.UTC(),
		driver.PassportSeries, driver.Snils, driver.LicenseSeries, driver.ID)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return domain.ConflictError{Resource: "Driver", Msg: "documents belong to another driver", Err: err}
		}
		return fmt.Errorf("update driver: %w", err)
	}
	return nil
}

func (r DriverRepository) DeleteByID(ctx context.Context, id string) error {
	return deleteWithLinks(ctx, r.DB, "Driver", "drivers", id, link{"routes_drivers", "driver_id"})
}
