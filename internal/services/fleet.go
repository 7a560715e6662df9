package services

import (
	"database/sql"

	"busmanager/internal/repositories"
)

// Fleet bundles every service over one connection pool.
type Fleet struct {
	Buses   BusService
	Drivers DriverService
	Stops   StopService
	Routes  RouteService
	Reports ReportsService
}

func NewFleet(conn *sql.DB, dialect string) Fleet {
	f := Fleet{
		Buses:   BusService{Repo: repositories.BusRepository{DB: conn}},
		Drivers: DriverService{Repo: repositories.DriverRepository{DB: conn}},
		Stops:   StopService{Repo: repositories.StopRepository{DB: conn, Dialect: dialect}},
		Routes:  RouteService{Repo: repositories.RouteRepository{DB: conn, Dialect: dialect}},
	}
	f.Reports = ReportsService{Buses: f.Buses, Drivers: f.Drivers, Stops: f.Stops, Routes: f.Routes}
	return f
}

// WithRequestID returns a copy whose services tag their log lines with id.
func (f Fleet) WithRequestID(id string) Fleet {
	f.Buses.RequestID = id
	f.Drivers.RequestID = id
	f.Stops.RequestID = id
	f.Routes.RequestID = id
	f.Reports.RequestID = id
	f.Reports.Buses, f.Reports.Drivers, f.Reports.Stops, f.Reports.Routes = f.Buses, f.Drivers, f.Stops, f.Routes
	return f
}

// WithReportFont sets the TTF font used by the PDF report.
func (f Fleet) WithReportFont(path string) Fleet {
	f.Reports.FontPath = path
	return f
}
