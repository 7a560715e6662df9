package models

import "time"

type Driver struct {
	ID             string
	Name           string
	Surname        string
	Patronymic     string
	BirthDate      time.Time
	PassportSeries string
	Snils          string // national insurance number
	LicenseSeries  string
}

// FullName renders "Surname Name Patronymic", skipping empty parts.
func (d Driver) FullName() string {
	out := ""
	for _, p := range []string{d.Surname, d.Name, d.Patronymic} {
		if p == "" {
			continue
		}
		if out != "" {
			out += " "
		}
		out += p
	}
	return out
}
