package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/config"
	"github.com/ridgeline/docxmit/internal/model"
)

func TestRunProcessesEveryConfiguredContact(t *testing.T) {
	contactA := testContact()
	contactA.ContactID = "a"
	contactB := testContact()
	contactB.ContactID = "b"

	work := &scriptedWork{
		exported: []*model.Case{model.NewCase("S1", "T1", "lims", contactA)},
		indexed:  []*model.Case{model.NewCase("S2", "T2", "lims", contactA)},
	}
	s, _ := newTestScheduler(work)
	s.cfg = &config.Config{Contacts: map[string]*model.Contact{"a": contactA, "b": contactB}}

	err := s.Run(context.Background())
	require.NoError(t, err)
}

func TestRunIsolatesOneContactsFailureFromOthers(t *testing.T) {
	failing := testContact()
	failing.ContactID = "bad"
	failing.HookName = "missing-hook"
	ok := testContact()
	ok.ContactID = "good"

	work := &scriptedWork{}
	s, _ := newTestScheduler(work)
	s.cfg = &config.Config{Contacts: map[string]*model.Contact{"bad": failing, "good": ok}}

	err := s.Run(context.Background())
	assert.NoError(t, err, "a single contact's hook-resolution failure is logged, not returned")
}

func TestNewClampsConcurrencyToAtLeastOne(t *testing.T) {
	work := &scriptedWork{}
	s, _ := newTestScheduler(work)
	s.concurrency = 0
	s2 := New(s.cfg, s.carriers, s.work, s.builder, s.hist, s.acord103, s.db, s.fs, s.clock, s.log, 0)
	assert.Equal(t, 1, s2.concurrency)
}
