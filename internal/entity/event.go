package entity

import (
	"fmt"
	"time"
)

// Event holds the details of the single event this service registers for.
type Event struct {
	Title       string
	Start       time.Time
	End         time.Time
	Location    string
	PriceCents  int
	Currency    string
	OrganizedBy string
}

func (e Event) DateLabel() string {
	return e.Start.Format("January 2, 2006")
}

func (e Event) TimeLabel() string {
	return e.Start.Format("3:04 PM") + " - " + e.End.Format("3:04 PM")
}

// ISODate is the date in YYYY-MM-DD, as the vibing webhook expects.
func (e Event) ISODate() string {
	return e.Start.Format("2006-01-02")
}

// Amount renders the price as a plain decimal, e.g. "10" or "10.50".
func (e Event) Amount() string {
	if e.PriceCents%100 == 0 {
		return fmt.Sprintf("%d", e.PriceCents/100)
	}
	return fmt.Sprintf("%d.%02d", e.PriceCents/100, e.PriceCents%100)
}

// DisplayPrice is e.g. "$10 SGD".
func (e Event) DisplayPrice() string {
	return fmt.Sprintf("$%s %s", e.Amount(), e.Currency)
}
