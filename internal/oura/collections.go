// Package oura provides the client facade and MCP service integration for
// the Oura Ring v2 REST API.
// file: internal/oura/collections.go
package oura

// Collection identifies a time-series data category retrievable from the
// Oura API by date range.
type Collection string

// The nine collection endpoints exposed under /usercollection/{collection}.
const (
	CollectionSession        Collection = "session"
	CollectionDailyActivity  Collection = "daily_activity"
	CollectionDailySleep     Collection = "daily_sleep"
	CollectionDailySpo2      Collection = "daily_spo2"
	CollectionDailyReadiness Collection = "daily_readiness"
	CollectionSleep          Collection = "sleep"
	CollectionSleepTime      Collection = "sleep_time"
	CollectionWorkout        Collection = "workout"
	CollectionEnhancedTag    Collection = "enhanced_tag"
)

// Collections lists every known collection.
var Collections = []Collection{
	CollectionSession,
	CollectionDailyActivity,
	CollectionDailySleep,
	CollectionDailySpo2,
	CollectionDailyReadiness,
	CollectionSleep,
	CollectionSleepTime,
	CollectionWorkout,
	CollectionEnhancedTag,
}

// Valid reports whether c is one of the known collections.
func (c Collection) Valid() bool {
	for _, known := range Collections {
		if c == known {
			return true
		}
	}
	return false
}
