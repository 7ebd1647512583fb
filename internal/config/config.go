// Package config loads the pipeline's per-run settings and per-contact
// configuration catalog, mirroring the shape of the original TransmitConfig
// descriptor table but sourced from a YAML settings file plus a TOML
// carrier-to-hook binding file instead of a database catalog.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ridgeline/docxmit/internal/model"
)

// Settings holds the run-wide, non-per-contact knobs a scheduler run reads
// once at startup.
type Settings struct {
	TrackedFileRoot   string        `mapstructure:"tracked_file_root"`
	StagingRoot       string        `mapstructure:"staging_root"`
	PollInterval      time.Duration `mapstructure:"poll_interval"`
	WorkerConcurrency int           `mapstructure:"worker_concurrency"`
	DatabaseDSN       string        `mapstructure:"database_dsn"`
	LogLevel          string        `mapstructure:"log_level"`
	MetricsEnabled    bool          `mapstructure:"metrics_enabled"`
}

// Config is the fully loaded, validated configuration for one scheduler
// run: the global Settings plus the per-contact catalog.
type Config struct {
	Settings Settings
	Contacts map[string]*model.Contact
}

// hookBindings is the decoded shape of the secondary TOML file that maps
// a contact id to the name of the carrier hook implementation it runs
// (spec.md §4.1's "per-carrier pluggable hook" binding, kept separate from
// the main YAML settings file because it changes on a different cadence —
// new carriers land between config reviews).
type hookBindings struct {
	Contact map[string]struct {
		Hook string `toml:"hook"`
	} `toml:"contact"`
}

// Load reads settingsPath (YAML, via viper) and bindingsPath (TOML, via
// BurntSushi/toml), merges the hook binding into each contact, and returns
// the combined Config. It does not validate; call Validate separately so
// callers can choose whether a config error is fatal.
func Load(settingsPath, bindingsPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(settingsPath)
	v.SetDefault("settings.poll_interval", 30*time.Second)
	v.SetDefault("settings.worker_concurrency", 4)
	v.SetDefault("settings.log_level", "info")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", settingsPath, err)
	}

	cfg := &Config{Contacts: map[string]*model.Contact{}}
	// Unmarshal, unlike UnmarshalKey, merges the settings.* defaults in.
	var decoded struct {
		Settings Settings `mapstructure:"settings"`
	}
	if err := v.Unmarshal(&decoded); err != nil {
		return nil, fmt.Errorf("config: decoding settings: %w", err)
	}
	cfg.Settings = decoded.Settings

	// Contacts are decoded from the YAML directly: viper lower-cases map
	// keys, and doc type names and carrier aliases are case-sensitive.
	rawFile, err := os.ReadFile(settingsPath)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", settingsPath, err)
	}
	var rawDoc struct {
		Contacts map[string]map[string]interface{} `yaml:"contacts"`
	}
	if err := yaml.Unmarshal(rawFile, &rawDoc); err != nil {
		return nil, fmt.Errorf("config: decoding contacts: %w", err)
	}
	for contactID, raw := range rawDoc.Contacts {
		contact, err := decodeContact(contactID, raw)
		if err != nil {
			return nil, fmt.Errorf("config: contact %s: %w", contactID, err)
		}
		cfg.Contacts[contactID] = contact
	}

	var bindings hookBindings
	if _, err := toml.DecodeFile(bindingsPath, &bindings); err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", bindingsPath, err)
	}
	for contactID, binding := range bindings.Contact {
		contact, ok := cfg.Contacts[contactID]
		if !ok {
			return nil, fmt.Errorf("config: hook binding for unknown contact %s", contactID)
		}
		contact.HookName = binding.Hook
	}

	return cfg, nil
}

func decodeContact(contactID string, raw map[string]interface{}) (*model.Contact, error) {
	c := &model.Contact{
		ContactID:            contactID,
		DocTypeClientNameMap: map[string]string{},
		DocTypeBillingMap:    map[string]model.BillingCode{},
		CarrierAliases:       map[string]string{},
		OnStageException:     model.OnStageExceptionRestage,
	}
	if v, ok := raw["client_id"].(string); ok {
		c.ClientID = v
	}
	if v, ok := raw["region_id"].(string); ok {
		c.RegionID = v
	}
	if v, ok := raw["examiner"].(string); ok {
		c.Examiner = v
	}
	if v, ok := raw["source_code"].(string); ok {
		c.SourceCode = v
	}
	if v, ok := raw["index_type"].(string); ok {
		c.Index.Type = model.IndexType(v)
	}
	if v, ok := raw["on_stage_exception"].(string); ok && strings.EqualFold(v, "leave") {
		c.OnStageException = model.OnStageExceptionLeave
	}
	if v, ok := raw["acord_alert_on_transmit"].(bool); ok {
		c.AcordAlertOnTransmit = v
	}
	if v, ok := raw["recon_lookback_hours"].(int); ok {
		c.ReconLookbackHours = v
	}
	if billing, ok := raw["billing"].(map[string]interface{}); ok {
		for docType, code := range billing {
			if s, ok := code.(string); ok {
				c.DocTypeBillingMap[docType] = model.BillingCode(s)
			}
		}
	}
	if aliases, ok := raw["carrier_aliases"].(map[string]interface{}); ok {
		for alias, target := range aliases {
			if s, ok := target.(string); ok {
				c.CarrierAliases[alias] = s
			}
		}
	}
	if paths, ok := raw["paths"].(map[string]interface{}); ok {
		decodePaths(&c.Paths, paths)
	}
	if transport, ok := raw["transport"].(map[string]interface{}); ok {
		decodeTransport(&c.Transport, transport)
	}
	return c, nil
}

func decodePaths(p *model.ContactPaths, raw map[string]interface{}) {
	if v, ok := raw["doc_dir"].(string); ok {
		p.DocDir = v
	}
	if v, ok := raw["acord103_dir"].(string); ok {
		p.Acord103Dir = v
	}
	if v, ok := raw["index_dir"].(string); ok {
		p.IndexDir = v
	}
	if v, ok := raw["xmit_dir"].(string); ok {
		p.XmitDir = v
	}
	if v, ok := raw["processed_subdir"].(string); ok {
		p.ProcessedSubdir = v
	}
	if v, ok := raw["error_subdir"].(string); ok {
		p.ErrorSubdir = v
	}
}

func decodeTransport(t *model.TransportConfig, raw map[string]interface{}) {
	if v, ok := raw["kind"].(string); ok {
		t.Kind = v
	}
	if v, ok := raw["host"].(string); ok {
		t.Host = v
	}
	if v, ok := raw["port"].(int); ok {
		t.Port = v
	}
	if v, ok := raw["user"].(string); ok {
		t.User = v
	}
	if v, ok := raw["password"].(string); ok {
		t.Password = v
	}
	if v, ok := raw["dir"].(string); ok {
		t.Dir = v
	}
	if v, ok := raw["pgp"].(bool); ok {
		t.PGP = v
	}
	if v, ok := raw["rate_hz"].(float64); ok {
		t.RateHz = v
	}
}
