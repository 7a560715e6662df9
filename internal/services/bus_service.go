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

// BusService applies input rules before buses reach the store.
type BusService struct {
	Repo      repositories.BusRepository
	RequestID string
}

func (s BusService) GetByID(ctx context.Context, id string) (models.Bus, error) {
	if strings.TrimSpace(id) == "" {
		return models.Bus{}, domain.Required("ID")
	}
	return s.Repo.GetByID(ctx, id)
}

func (s BusService) GetByNumber(ctx context.Context, number string) (models.Bus, error) {
	number = utils.TrimOrEmpty(number)
	if number == "" {
		return models.Bus{}, domain.Required("Number")
	}
	return s.Repo.GetByNumber(ctx, number)
}

func (s BusService) GetAll(ctx context.Context) ([]models.Bus, error) {
	return s.Repo.GetAll(ctx)
}

func (s BusService) Add(ctx context.Context, bus *models.Bus) error {
	if err := normalizeBus(bus); err != nil {
		return err
	}
	if err := s.Repo.Add(ctx, bus); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "bus", "add", fmt.Sprintf("id=%s register_number=%s", bus.ID, bus.RegisterNumber))
	return nil
}

func (s BusService) UpdateByID(ctx context.Context, bus *models.Bus) error {
	if strings.TrimSpace(bus.ID) == "" {
		return domain.Required("ID")
	}
	if err := normalizeBus(bus); err != nil {
		return err
	}
	if err := s.Repo.UpdateByID(ctx, bus); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "bus", "update", "id="+bus.ID)
	return nil
}

func (s BusService) DeleteByID(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return domain.Required("ID")
	}
	if err := s.Repo.DeleteByID(ctx, id); err != nil {
		return err
	}
	utils.LogEvent(s.RequestID, "bus", "delete", "id="+id)
	return nil
}

func normalizeBus(bus *models.Bus) error {
	bus.ID = utils.TrimOrEmpty(bus.ID)
	bus.Brand = utils.NormalizeSpace(bus.Brand)
	bus.BusModel = utils.NormalizeSpace(bus.BusModel)
	bus.RegisterNumber = utils.TrimOrEmpty(bus.RegisterNumber)

	if field := utils.FirstEmpty(
		"Brand", bus.Brand,
		"BusModel", bus.BusModel,
		"RegisterNumber", bus.RegisterNumber,
	); field != "" {
		return domain.Required(field)
	}
	if bus.AssemblyDate.IsZero() {
		return domain.Required("AssemblyDate")
	}
	if bus.LastRepairDate.IsZero() {
		return domain.Required("LastRepairDate")
	}
	bus.AssemblyDate = utils.DateOnly(bus.AssemblyDate)
	bus.LastRepairDate = utils.DateOnly(bus.LastRepairDate)
	return nil
}
