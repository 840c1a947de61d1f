package security

import (
	"sync"
	"time"
)

const DailyAILimit = 50

// DailyUsage counts requests per key per calendar day (UTC).
type DailyUsage struct {
	mu    sync.Mutex
	max   int
	usage map[string]*dayCount
	now   func() time.Time
}

type dayCount struct {
	day   string
	count int
}

func NewDailyUsage(max int) *DailyUsage {
	return &DailyUsage{
		max:   max,
		usage: make(map[string]*dayCount),
		now:   time.Now,
	}
}

func (d *DailyUsage) today() string {
	return d.now().UTC().Format("2006-01-02")
}

// Reserve takes one unit of key's allowance for today, or reports false when
// the allowance is spent. Check and increment happen under the same lock.
func (d *DailyUsage) Reserve(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	today := d.today()
	u, ok := d.usage[key]
	if !ok || u.day != today {
		u = &dayCount{day: today}
		d.usage[key] = u
	}
	if u.count >= d.max {
		return false
	}
	u.count++
	return true
}

// Release gives back a reservation whose request failed.
func (d *DailyUsage) Release(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Reserva de ontem já foi zerada pela virada do dia.
	if u, ok := d.usage[key]; ok && u.day == d.today() && u.count > 0 {
		u.count--
	}
}

// Used is how many reservations key holds today.
func (d *DailyUsage) Used(key string) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	if u, ok := d.usage[key]; ok && u.day == d.today() {
		return u.count
	}
	return 0
}

// NextReset is the next UTC midnight.
func (d *DailyUsage) NextReset() time.Time {
	now := d.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
}

// Sweep drops counters from previous days.
func (d *DailyUsage) Sweep() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	today := d.today()
	removed := 0
	for key, u := range d.usage {
		if u.day != today {
			delete(d.usage, key)
			removed++
		}
	}
	return removed
}
