package domain

// Entity names the record kinds served by the store and the gateway.
type Entity string

const (
	EntityBus    Entity = "bus"
	EntityDriver Entity = "driver"
	EntityRoute  Entity = "route"
	EntityStop   Entity = "stop"
)

// Entities lists every entity in the order the UI shows them.
var Entities = []Entity{EntityBus, EntityDriver, EntityRoute, EntityStop}

func (e Entity) Valid() bool {
	switch e {
	case EntityBus, EntityDriver, EntityRoute, EntityStop:
		return true
	}
	return false
}

func (e Entity) String() string { return string(e) }
