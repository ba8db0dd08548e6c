package cache

import (
	"github.com/spec-kit/task-tracker/internal/domain"
)

// Region names an independent cache partition with its own capacity and TTL.
type Region string

const (
	RegionCollection Region = "collection"
	RegionEntity     Region = "entity"
	RegionStats      Region = "stats"
)

// Regions lists every region.
var Regions = [...]Region{RegionCollection, RegionEntity, RegionStats}

// Key identifies a cached response. Every key is qualified by the principal name,
// so two principals never share an entry.
type Key struct {
	Principal string
	Shape     string
}

func (k Key) String() string {
	return k.Principal + "/" + k.Shape
}

// AllKey is the unfiltered task list of a principal.
func AllKey(principal string) Key {
	return Key{Principal: principal, Shape: "ALL"}
}

// StatusKey is the task list filtered by status.
func StatusKey(principal string, status domain.TaskStatus) Key {
	return Key{Principal: principal, Shape: "BY_STATUS:" + string(status)}
}

// PriorityKey is the task list filtered by priority.
func PriorityKey(principal string, priority domain.TaskPriority) Key {
	return Key{Principal: principal, Shape: "BY_PRIORITY:" + string(priority)}
}

// IDKey is a single task.
func IDKey(principal, taskID string) Key {
	return Key{Principal: principal, Shape: "BY_ID:" + taskID}
}

// StatsKey is the aggregate statistics of a principal.
func StatsKey(principal string) Key {
	return Key{Principal: principal, Shape: "STATS"}
}

// Entry addresses one key within a region.
type Entry struct {
	Region Region
	Key    Key
}
