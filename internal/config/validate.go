package config

import (
	"fmt"
	"strings"
)

// ValidationError collects every problem found in one Validate pass, so a
// misconfigured run reports everything wrong at once instead of stopping at
// the first error.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %d problem(s):\n  %s", len(e.Problems), strings.Join(e.Problems, "\n  "))
}

func (e *ValidationError) add(format string, args ...interface{}) {
	e.Problems = append(e.Problems, fmt.Sprintf(format, args...))
}

// Validate checks the config for structural problems, returning a
// *ValidationError naming every issue found, or nil if the config is usable.
func (c *Config) Validate() error {
	verr := &ValidationError{}

	if c.Settings.TrackedFileRoot == "" {
		verr.add("settings.tracked_file_root is required")
	}
	if c.Settings.StagingRoot == "" {
		verr.add("settings.staging_root is required")
	}
	if c.Settings.DatabaseDSN == "" {
		verr.add("settings.database_dsn is required")
	}
	if c.Settings.WorkerConcurrency <= 0 {
		verr.add("settings.worker_concurrency must be positive, got %d", c.Settings.WorkerConcurrency)
	}
	if len(c.Contacts) == 0 {
		verr.add("no contacts configured")
	}

	for id, contact := range c.Contacts {
		if contact.ClientID == "" {
			verr.add("contact %s: client_id is required", id)
		}
		if contact.HookName == "" {
			verr.add("contact %s: no hook binding found", id)
		}
		if contact.Index.Type != "" && contact.Index.Type != "case" && contact.Index.Type != "document" {
			verr.add("contact %s: index_type %q is neither case nor document", id, contact.Index.Type)
		}
		for docType, code := range contact.DocTypeBillingMap {
			switch code {
			case "bill", "no_bill", "no_bill_no_send":
			default:
				verr.add("contact %s: doc type %s has unknown billing code %q", id, docType, code)
			}
		}
	}

	if len(verr.Problems) == 0 {
		return nil
	}
	return verr
}
