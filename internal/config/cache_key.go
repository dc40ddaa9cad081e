package config

import (
	"fmt"
	"strings"
)

type CacheKeyStruct struct{}

func NewCacheKeyStruct() *CacheKeyStruct {
	return &CacheKeyStruct{}
}

// ScenarioKey returns the cache key for a resolved scenario template
func (r *CacheKeyStruct) ScenarioKey(category, name string) string {
	return fmt.Sprintf("scenario:%s:%s", strings.ToLower(category), strings.ToLower(name))
}

// ScenarioCatalogKey returns the cache key for the scenario listing
func (r *CacheKeyStruct) ScenarioCatalogKey() string {
	return "scenario:catalog"
}

// StudentNotificationsKey returns the hash key holding a student's notifications
func (r *CacheKeyStruct) StudentNotificationsKey(studentID string) string {
	return fmt.Sprintf("student:%s:notifications", studentID)
}

var CacheKey = NewCacheKeyStruct()
