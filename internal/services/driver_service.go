package services

import (
	"context"
	"fmt"
	"strings"

	"busmanager/internal/domain"
	"busmanager/internal/domain/models"
	"busmanager/internal/repositories"
	"busmanager/internal/utils"
)

type DriverService struct {
	Repo      repositories.DriverRepository
	RequestID string
}

func (s DriverService) GetByID(ctx context.Context, id string) (models.Driver, error) {
	if strings.TrimSpace(id) == "" {
		return models.Driver{}, domain.Required("ID")
	}
	return s.Repo.GetByID(ctx, id)
}

func (s DriverService) GetByPassportSeries(ctx context.Context, series string) (models.Driver, error) {
	series = utils.NormalizeSpace(series)
	if series == "" {
		return models.Driver{}, domain.Required("PassportSeries")
	}
	return s.Repo.GetByPassportSeries(ctx, series)
}

func (s DriverService) GetAll(ctx context.Context) ([]models.Driver, error) {
	return s.Repo.GetAll(ctx)
}

func (s DriverService) Add(ctx context.Context, driver *models.Driver) error {
	if err := normalizeDriver(driver); err != nil {
		return err
	}
	if err := s.Repo.Add(ctx, driver); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "driver", "add", fmt.Sprintf("id=%s", driver.ID))
	return nil
}

func (s DriverService) UpdateByID(ctx context.Context, driver *models.Driver) error {
	if strings.TrimSpace(driver.ID) == "" {
		return domain.Required("ID")
	}
	if err := normalizeDriver(driver); err != nil {
		return err
	}
	if err := s.Repo.UpdateByID(ctx, driver); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "driver", "update", "id="+driver.ID)
	return nil
}

func (s DriverService) DeleteByID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Required("ID")
	}
	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "driver", "delete", "id="+id)
	return nil
}

func normalizeDriver(d *models.Driver) error {
	d.ID = utils.TrimOrEmpty(d.ID)
	d.Name = utils.NormalizeSpace(d.Name)
	d.Surname = utils.NormalizeSpace(d.Surname)
	d.Patronymic = utils.NormalizeSpace(d.Patronymic)
	d.PassportSeries = utils.NormalizeSpace(d.PassportSeries)
	d.Snils = utils.NormalizeSpace(d.Snils)
	d.LicenseSeries = utils.NormalizeSpace(d.LicenseSeries)

	// patronymic is optional
	if field := utils.FirstEmpty(
		"Name", d.Name,
		"Surname", d.Surname,
		"PassportSeries", d.PassportSeries,
		"Snils", d.Snils,
		"LicenseSeries", d.LicenseSeries,
	); field != "" {
		return domain.Required(field)
	}
	if d.BirthDate.IsZero() {
		return domain.Required("BirthDate")
	}
	d.BirthDate = utils.DateOnly(d.BirthDate)
	return nil
}
