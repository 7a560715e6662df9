package panel

import "busmanager/internal/domain"

// Kind tells the panel how a field crosses the gateway boundary.
type Kind int

const (
	Text Kind = iota
	Date
	Number
)

type Field struct {
	Key      string
	Label    string
	Kind     Kind
	Required bool
	// Min and Max bound Number fields when Max > Min.
	Min, Max float64
}

// Schema describes one entity's form. Field order is validation order.
type Schema struct {
	Entity domain.Entity
	Title  string
	Fields []Field
	// ListLabel names the fields joined to label a list row.
	ListLabel []string
}

func (s Schema) Field(key string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Key == key {
			return f, true
		}
	}
	return Field{}, false
}

var BusSchema = Schema{
	Entity: domain.EntityBus,
	Title:  "Автобусы",
	Fields: []Field{
		{Key: "Brand", Label: "Марка", Required: true},
		{Key: "BusModel", Label: "Модель", Required: true},
		{Key: "RegisterNumber", Label: "Регистрационный номер", Required: true},
		{Key: "AssemblyDate", Label: "Дата выпуска", Kind: Date, Required: true},
		{Key: "LastRepairDate", Label: "Дата ремонта", Kind: Date, Required: true},
	},
	ListLabel: []string{"RegisterNumber", "Brand"},
}

var DriverSchema = Schema{
	Entity: domain.EntityDriver,
	Title:  "Водители",
	Fields: []Field{
		{Key: "Surname", Label: "Фамилия", Required: true},
		{Key: "Name", Label: "Имя", Required: true},
		{Key: "Patronymic", Label: "Отчество"},
		{Key: "BirthDate", Label: "Дата рождения", Kind: Date, Required: true},
		{Key: "PassportSeries", Label: "Паспорт", Required: true},
		{Key: "Snils", Label: "СНИЛС", Required: true},
		{Key: "LicenseSeries", Label: "Водительское удостоверение", Required: true},
	},
	ListLabel: []string{"Surname", "Name", "Patronymic"},
}

var RouteSchema = Schema{
	Entity: domain.EntityRoute,
	Title:  "Маршруты",
	Fields: []Field{
		{Key: "Number", Label: "Номер маршрута", Required: true},
	},
	ListLabel: []string{"Number"},
}

var StopSchema = Schema{
	Entity: domain.EntityStop,
	Title:  "Остановки",
	Fields: []Field{
		{Key: "Name", Label: "Название", Required: true},
		{Key: "Lat", Label: "Широта", Kind: Number, Required: true, Min: -90, Max: 90},
		{Key: "Long", Label: "Долгота", Kind: Number, Required: true, Min: -180, Max: 180},
	},
	ListLabel: []string{"Name"},
}

// Schemas is the tab order of the UI.
var Schemas = []Schema{BusSchema, DriverSchema, RouteSchema, StopSchema}
