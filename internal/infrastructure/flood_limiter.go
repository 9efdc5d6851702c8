package infrastructure

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// FloodLimiter throttles inbound chat updates per chat id so a spamming
// client cannot monopolize the bot. Buckets for quiet chats are dropped
// periodically.
type FloodLimiter struct {
	mu       sync.Mutex
	limiters map[int64]*floodEntry
	rate     rate.Limit
	burst    int
}

type floodEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewFloodLimiter(r rate.Limit, burst int) *FloodLimiter {
	fl := &FloodLimiter{
		limiters: make(map[int64]*floodEntry),
		rate:     r,
		burst:    burst,
	}
	go fl.cleanup()
	return fl
}

// Allow reports whether an update from chatID should be processed now.
func (fl *FloodLimiter) Allow(chatID int64) bool {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	entry, ok := fl.limiters[chatID]
	if !ok {
		entry = &floodEntry{limiter: rate.NewLimiter(fl.rate, fl.burst)}
		fl.limiters[chatID] = entry
	}
	entry.lastSeen = time.Now()
	return entry.limiter.Allow()
}

func (fl *FloodLimiter) cleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	for range ticker.C {
		fl.mu.Lock()
		now := time.Now()
		for chatID, entry := range fl.limiters {
			if now.Sub(entry.lastSeen) > 10*time.Minute {
				delete(fl.limiters, chatID)
			}
		}
		fl.mu.Unlock()
	}
}
