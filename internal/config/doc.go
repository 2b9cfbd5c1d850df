// Package config provides the configuration system for linepat.
//
// Configuration is organized in layers with higher layers overriding lower:
//
//	┌─────────────────────────────┐
//	│  4. Command Line Flags      │  ← Highest priority
//	├─────────────────────────────┤
//	│  3. Environment Variables   │  ← LINEPAT_*
//	├─────────────────────────────┤
//	│  2. Config File             │  ← TOML, YAML or JSON
//	├─────────────────────────────┤
//	│  1. Built-in Defaults       │  ← Lowest priority
//	└─────────────────────────────┘
//
// # Settings
//
//	[search]
//	maxPatternLen  = 256          # longest pattern or replacement text
//	maxProgramSize = 256          # compiled program limit per line segment
//	maxLineLen     = 4096         # longest line a substitution may produce
//	dialect        = "canonical"  # or "legacy"
//	ignoreCase     = false
//
//	[logging]
//	level = "info"                # debug, info, warn, error
//
//	[output]
//	color  = "auto"               # auto, always, never
//	format = "text"               # text, json
//
// # Basic Usage
//
//	cfg := config.New(config.WithFile("linepat.toml"))
//	if err := cfg.Load(); err != nil {
//	    return err
//	}
//	search := cfg.Search()
//
// Unknown settings are ignored. Load validates every known setting and
// reports failures as *SettingError values joined into one error.
package config
