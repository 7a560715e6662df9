package models

type Route struct {
	ID     string
	Number string
}

// RouteDetails is a route together with its ordered associations.
type RouteDetails struct {
	Route   Route
	Drivers []Driver
	Stops   []Stop
	Buses   []Bus
}
