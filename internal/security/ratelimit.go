package security

import (
	"sync"
	"time"
)

// Limit is a fixed window: at most Max requests per Window per key.
type Limit struct {
	Max    int
	Window time.Duration
}

var (
	RegistrationLimit = Limit{Max: 3, Window: 5 * time.Minute}
	PublicLimit       = Limit{Max: 10, Window: 15 * time.Minute}
	AILimit           = Limit{Max: 3, Window: 5 * time.Minute}
	AdminLimit        = Limit{Max: 50, Window: 5 * time.Minute}
)

type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
}

// RetryAfter is the time left until the window resets, rounded up to whole
// seconds.
func (r Result) RetryAfter(now time.Time) int {
	d := r.ResetAt.Sub(now)
	if d <= 0 {
		return 0
	}
	return int((d + time.Second - 1) / time.Second)
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    Limit
	now      func() time.Time
}

type visitor struct {
	count     int
	resetTime time.Time
}

func NewRateLimiter(limit Limit) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Limit() Limit {
	return rl.limit
}

func (rl *RateLimiter) Allow(key string) Result {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[key]

	if !exists || now.After(v.resetTime) {
		v = &visitor{count: 1, resetTime: now.Add(rl.limit.Window)}
		rl.visitors[key] = v
		return Result{
			Allowed:   true,
			Remaining: rl.limit.Max - 1,
			Limit:     rl.limit.Max,
			ResetAt:   v.resetTime,
		}
	}

	if v.count >= rl.limit.Max {
		return Result{
			Allowed:   false,
			Remaining: 0,
			Limit:     rl.limit.Max,
			ResetAt:   v.resetTime,
		}
	}

	v.count++
	return Result{
		Allowed:   true,
		Remaining: rl.limit.Max - v.count,
		Limit:     rl.limit.Max,
		ResetAt:   v.resetTime,
	}
}

// Sweep drops expired windows and returns how many were removed.
func (rl *RateLimiter) Sweep() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	removed := 0
	for key, v := range rl.visitors {
		if now.After(v.resetTime) {
			delete(rl.visitors, key)
			removed++
		}
	}
	return removed
}

func (rl *RateLimiter) Len() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.visitors)
}

// Limiters groups one limiter per preset so handlers and the housekeeper share
// the same windows.
type Limiters struct {
	Registration *RateLimiter
	Public       *RateLimiter
	AI           *RateLimiter
	Admin        *RateLimiter
}

func NewLimiters() *Limiters {
	return &Limiters{
		Registration: NewRateLimiter(RegistrationLimit),
		Public:       NewRateLimiter(PublicLimit),
		AI:           NewRateLimiter(AILimit),
		Admin:        NewRateLimiter(AdminLimit),
	}
}

func (l *Limiters) Sweep() int {
	return l.Registration.Sweep() + l.Public.Sweep() + l.AI.Sweep() + l.Admin.Sweep()
}
