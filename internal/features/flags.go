// Package features holds runtime toggles for dispatch behavior. Flags let an
// operator pause sending without restarting or editing schedules.
package features

import (
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Flag represents a feature flag with metadata
type Flag struct {
	Name        string    `json:"name"`
	Enabled     bool      `json:"enabled"`
	Description string    `json:"description"`
	UpdatedAt   time.Time `json:"updated_at"`
	Tags        []string  `json:"tags,omitempty"`
}

const (
	// FlagDispatch is the global kill switch. When disabled the scheduler
	// still polls but sends nothing and schedules do not advance.
	FlagDispatch = "dispatch"

	// FlagManualSend gates the HTTP trigger endpoint.
	FlagManualSend = "manual_send"

	// FlagRetentionCleanup gates the periodic message-record cleanup.
	FlagRetentionCleanup = "retention_cleanup"
)

// FlagDefinition contains metadata about a flag
type FlagDefinition struct {
	Name         string
	Description  string
	DefaultValue bool
	Tags         []string
}

// DefaultFlags defines all available feature flags with their defaults
var DefaultFlags = []FlagDefinition{
	{FlagDispatch, "Enable scheduled reminder dispatch", true, []string{"core"}},
	{FlagManualSend, "Enable the manual send API endpoint", true, []string{"api"}},
	{FlagRetentionCleanup, "Enable periodic message record cleanup", true, []string{"core", "storage"}},
}

// FlagManager manages feature flags with thread-safe operations
type FlagManager struct {
	flags map[string]*Flag
	mu    sync.RWMutex
}

// NewFlagManager creates a new feature flag manager
func NewFlagManager() *FlagManager {
	return &FlagManager{
		flags: make(map[string]*Flag),
	}
}

// InitializeDefaults sets up all default flags
func (fm *FlagManager) InitializeDefaults() {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	now := time.Now()
	for _, def := range DefaultFlags {
		if _, exists := fm.flags[def.Name]; !exists {
			fm.flags[def.Name] = &Flag{
				Name:        def.Name,
				Enabled:     def.DefaultValue,
				Description: def.Description,
				UpdatedAt:   now,
				Tags:        def.Tags,
			}
		}
	}
}

// LoadFromEnv applies INVOICEWA_FEATURE_<NAME>=true/false overrides.
func (fm *FlagManager) LoadFromEnv() {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	for name, flag := range fm.flags {
		key := "INVOICEWA_FEATURE_" + strings.ToUpper(name)
		raw, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			continue
		}
		flag.Enabled = enabled
		flag.UpdatedAt = time.Now()
	}
}

// IsEnabled checks if a feature flag is enabled
func (fm *FlagManager) IsEnabled(flagName string) bool {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	flag, exists := fm.flags[flagName]
	if !exists {
		return false
	}
	return flag.Enabled
}

// Enable enables a feature flag
func (fm *FlagManager) Enable(flagName string) error {
	return fm.set(flagName, true)
}

// Disable disables a feature flag
func (fm *FlagManager) Disable(flagName string) error {
	return fm.set(flagName, false)
}

func (fm *FlagManager) set(flagName string, enabled bool) error {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	flag, exists := fm.flags[flagName]
	if !exists {
		return ErrFlagNotFound{Name: flagName}
	}
	flag.Enabled = enabled
	flag.UpdatedAt = time.Now()
	return nil
}

// ListFlags returns a copy of all flags
func (fm *FlagManager) ListFlags() []*Flag {
	fm.mu.RLock()
	defer fm.mu.RUnlock()

	result := make([]*Flag, 0, len(fm.flags))
	for _, flag := range fm.flags {
		flagCopy := *flag
		if flag.Tags != nil {
			flagCopy.Tags = make([]string, len(flag.Tags))
			copy(flagCopy.Tags, flag.Tags)
		}
		result = append(result, &flagCopy)
	}
	return result
}

// Global flag manager instance, seeded with defaults so callers see sane
// values even before Initialize applies env overrides.
var globalFlagManager = newDefaultManager()

func newDefaultManager() *FlagManager {
	fm := NewFlagManager()
	fm.InitializeDefaults()
	return fm
}

// Initialize applies environment overrides to the global flag manager
func Initialize() {
	globalFlagManager.LoadFromEnv()
}

// IsEnabled checks if a feature flag is enabled globally
func IsEnabled(flagName string) bool {
	return globalFlagManager.IsEnabled(flagName)
}

// Enable enables a feature flag globally
func Enable(flagName string) error {
	return globalFlagManager.Enable(flagName)
}

// Disable disables a feature flag globally
func Disable(flagName string) error {
	return globalFlagManager.Disable(flagName)
}

// GetGlobalManager returns the global flag manager
func GetGlobalManager() *FlagManager {
	return globalFlagManager
}

type ErrFlagNotFound struct {
	Name string
}

func (e ErrFlagNotFound) Error() string {
	return "feature flag not found: " + e.Name
}
