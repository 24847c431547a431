// Package common provides shared types and utilities for UI features.
package common

// Icon names understood by components.Icon.
const (
	IconDashboard   = "dashboard"
	IconList        = "list"
	IconSettings    = "settings"
	IconFile        = "file"
	IconApps        = "apps"
	IconCheckCircle = "check-circle"
	IconExclamation = "exclamation-circle"
	IconUser        = "user"
)

// groupIcons maps well-known top-level keys to their menu icon.
var groupIcons = map[string]string{
	"dashboard":     IconDashboard,
	"list":          IconList,
	"form":          IconSettings,
	"profile":       IconFile,
	"visualization": IconApps,
	"result":        IconCheckCircle,
	"exception":     IconExclamation,
	"user":          IconUser,
}
