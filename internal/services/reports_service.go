package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"busmanager/internal/domain"
	"busmanager/internal/domain/models"
	"busmanager/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// ReportsService builds the printable fleet overview.
type ReportsService struct {
	Buses   BusService
	Drivers DriverService
	Routes  RouteService
	Stops   StopService
	// FontPath is an optional UTF-8 TTF font. Without it the core Helvetica
	// font is used and non-Latin text is rendered through cp1252.
	FontPath  string
	RequestID string
	Now       func() time.Time
}

type fleetData struct {
	buses   []models.Bus
	drivers []models.Driver
	stops   []models.Stop
	routes  []models.RouteDetails
}

// FleetPDF returns the PDF bytes and a suggested file name.
func (s ReportsService) FleetPDF(ctx context.Context) ([]byte, string, error) {
	data, err := s.load(ctx)
	if err != nil {
		return nil, "", err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	pdf, err := buildFleetPDF(data, now(), s.FontPath)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "build fleet report", Err: err}
	}
	utils.LogEvent(s.RequestID, "report", "fleet_pdf", fmt.Sprintf("buses=%d drivers=%d routes=%d", len(data.buses), len(data.drivers), len(data.routes)))
	return pdf, fmt.Sprintf("FLEET_%s.pdf", now().Format("20060102")), nil
}

func (s ReportsService) load(ctx context.Context) (fleetData, error) {
	var (
		d   fleetData
		err error
	)
	if d.buses, err = s.Buses.GetAll(ctx); err != nil {
		return d, fmt.Errorf("load buses: %w", err)
	}
	if d.drivers, err = s.Drivers.GetAll(ctx); err != nil {
		return d, fmt.Errorf("load drivers: %w", err)
	}
	if d.stops, err = s.Stops.GetAll(ctx); err != nil {
		return d, fmt.Errorf("load stops: %w", err)
	}
	routes, err := s.Routes.GetAll(ctx)
	if err != nil {
		return d, fmt.Errorf("load routes: %w", err)
	}
	for _, r := range routes {
		details, err := s.Routes.Details(ctx, r.ID)
		if err != nil {
			return d, fmt.Errorf("load route %s: %w", r.Number, err)
		}
		d.routes = append(d.routes, details)
	}
	return d, nil
}

func buildFleetPDF(d fleetData, now time.Time, fontPath string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Fleet report", false)

	family := "Helvetica"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	if fontPath != "" {
		family = "report"
		pdf.AddUTF8Font(family, "", fontPath)
		pdf.AddUTF8Font(family, "B", fontPath)
		tr = func(s string) string { return s }
	}

	pdf.AddPage()
	pdf.SetFont(family, "B", 18)
	pdf.Cell(0, 10, tr("FLEET REPORT"))
	pdf.Ln(10)
	pdf.SetFont(family, "", 10)
	pdf.Cell(0, 6, tr("Generated: "+now.Format("02.01.2006 15:04")))
	pdf.Ln(10)

	section := func(title string) {
		pdf.SetFont(family, "B", 13)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(8)
		pdf.SetFont(family, "", 10)
	}
	row := func(widths []float64, cells ...string) {
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	section(fmt.Sprintf("Buses (%d)", len(d.buses)))
	busWidths := []float64{35, 40, 40, 35, 35}
	row(busWidths, "Register no.", "Brand", "Model", "Assembled", "Last repair")
	for _, b := range d.buses {
		row(busWidths, b.RegisterNumber, b.Brand, b.BusModel, utils.FormatDisplayDate(b.AssemblyDate), utils.FormatDisplayDate(b.LastRepairDate))
	}
	pdf.Ln(6)

	section(fmt.Sprintf("Drivers (%d)", len(d.drivers)))
	driverWidths := []float64{70, 30, 45, 40}
	row(driverWidths, "Name", "Born", "Passport", "Licence")
	for _, dr := range d.drivers {
		row(driverWidths, dr.FullName(), utils.FormatDisplayDate(dr.BirthDate), dr.PassportSeries, dr.LicenseSeries)
	}
	pdf.Ln(6)

	section(fmt.Sprintf("Routes (%d)", len(d.routes)))
	routeWidths := []float64{35, 50, 50, 50}
	row(routeWidths, "Number", "Drivers", "Stops", "Buses")
	for _, r := range d.routes {
		row(routeWidths, r.Route.Number,
			fmt.Sprintf("%d", len(r.Drivers)),
			fmt.Sprintf("%d", len(r.Stops)),
			fmt.Sprintf("%d", len(r.Buses)))
	}
	pdf.Ln(6)

	section(fmt.Sprintf("Stops (%d)", len(d.stops)))
	stopWidths := []float64{75, 35, 35, 40}
	row(stopWidths, "Name", "Lat", "Long", "Geohash")
	for _, st := range d.stops {
		row(stopWidths, st.Name, fmt.Sprintf("%.6f", st.Lat), fmt.Sprintf("%.6f", st.Long), st.Geohash)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
