package transmit_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ridgeline/docxmit/internal/history"
	"github.com/ridgeline/docxmit/internal/model"
	"github.com/ridgeline/docxmit/internal/ports"
	"github.com/ridgeline/docxmit/internal/trackedfile"
	"github.com/ridgeline/docxmit/internal/transmit"
)

// fakeDB supports exactly what the orchestrator's history Track call and
// the tracked-file manager's FilesByState call need; no marked-for-deletion
// files exist in these scenarios so DeleteFile is never reached.
type fakeDB struct{ tracked int }

func (f *fakeDB) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	f.tracked++
	return 1, nil
}
func (f *fakeDB) QueryRow(ctx context.Context, query string, args ...any) (ports.Row, error) {
	return ports.Row{}, nil
}
func (f *fakeDB) Query(ctx context.Context, query string, args ...any) ([]ports.Row, error) {
	return nil, nil
}

type fakeFS struct{}

func (fakeFS) Glob(pattern string) ([]string, error)      { return nil, nil }
func (fakeFS) Stat(path string) (ports.FileInfo, error)    { return ports.FileInfo{}, errors.New("not found") }
func (fakeFS) ReadFile(path string) ([]byte, error)        { return nil, errors.New("not found") }
func (fakeFS) WriteFile(path string, data []byte) error    { return nil }
func (fakeFS) Remove(path string) error                    { return nil }
func (fakeFS) Rename(oldPath, newPath string) error        { return nil }
func (fakeFS) MkdirAll(path string) error                  { return nil }

type fakeClock struct{ now time.Time }

func (c fakeClock) Now() time.Time { return c.now }

type fakeLogger struct{}

func (fakeLogger) With(fields ...any) ports.Logger                { return fakeLogger{} }
func (fakeLogger) Debug(msg string, fields ...any)                {}
func (fakeLogger) Info(msg string, fields ...any)                 {}
func (fakeLogger) Warn(msg string, fields ...any)                 {}
func (fakeLogger) Error(msg string, err error, fields ...any)     {}

type fakeHooks struct {
	preStageOK   bool
	caseReady    bool
	stageOK      bool
	stageErr     error
	stagePanic   bool
	transmitOK   bool
	postOK       bool
}

func (h fakeHooks) PreStage(ctx context.Context, contact *model.Contact) (bool, error) {
	return h.preStageOK, nil
}
func (h fakeHooks) IsIndexedCaseReady(ctx context.Context, c *model.Case) (bool, error) {
	return h.caseReady, nil
}
func (h fakeHooks) StageIndexedCase(ctx context.Context, c *model.Case) (bool, error) {
	if h.stagePanic {
		panic("carrier hook exploded")
	}
	if h.stageErr != nil {
		return false, h.stageErr
	}
	return h.stageOK, nil
}
func (h fakeHooks) TransmitStagedCases(ctx context.Context, contact *model.Contact, staged []*model.Case) (bool, error) {
	return h.transmitOK, nil
}
func (h fakeHooks) PostTransmit(ctx context.Context, contact *model.Contact) (bool, error) {
	return h.postOK, nil
}

func newOrchestrator() (*transmit.Orchestrator, *fakeDB) {
	db := &fakeDB{}
	files := trackedfile.NewManager(db, fakeFS{}, "c1", "/xmit")
	hist := history.NewStore(db)
	return transmit.NewOrchestrator(files, hist, fakeClock{now: time.Now()}, fakeLogger{}), db
}

func contactWithAlerts() *model.Contact {
	return &model.Contact{ContactID: "c1", AcordAlertOnTransmit: true, OnStageException: model.OnStageExceptionRestage}
}

func TestStageAndTransmitHappyPath(t *testing.T) {
	orch, db := newOrchestrator()
	contact := contactWithAlerts()
	c := model.NewCase("s1", "t1", "src", contact)

	hooks := fakeHooks{preStageOK: true, caseReady: true, stageOK: true, transmitOK: true, postOK: true}
	res, err := orch.StageAndTransmit(context.Background(), contact, []*model.Case{c}, hooks, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.Transmitted)
	require.Len(t, res.Staged, 1)
	assert.Len(t, res.Alerts, 1)
	assert.Equal(t, 0, db.tracked) // case has no documents, so no history rows
}

func TestStageAndTransmitPreStageAbortsBatch(t *testing.T) {
	orch, _ := newOrchestrator()
	contact := contactWithAlerts()
	hooks := fakeHooks{preStageOK: false}

	res, err := orch.StageAndTransmit(context.Background(), contact, nil, hooks, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Staged)
}

func TestStageAndTransmitRestagesOnError(t *testing.T) {
	orch, _ := newOrchestrator()
	contact := contactWithAlerts()
	c := model.NewCase("s1", "t1", "src", contact)
	hooks := fakeHooks{preStageOK: true, caseReady: true, stageErr: errors.New("boom"), transmitOK: true, postOK: true}

	var restaged []string
	restage := func(rc *model.Case) error {
		restaged = append(restaged, rc.Sid)
		return nil
	}

	res, err := orch.StageAndTransmit(context.Background(), contact, []*model.Case{c}, hooks, restage)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Staged)
	assert.Equal(t, []string{"s1"}, restaged)
}

func TestStageAndTransmitLeavePolicyDoesNotRestage(t *testing.T) {
	orch, _ := newOrchestrator()
	contact := contactWithAlerts()
	contact.OnStageException = model.OnStageExceptionLeave
	c := model.NewCase("s1", "t1", "src", contact)
	hooks := fakeHooks{preStageOK: true, caseReady: true, stageErr: errors.New("boom"), transmitOK: true, postOK: true}

	restageCalled := false
	restage := func(rc *model.Case) error {
		restageCalled = true
		return nil
	}

	res, err := orch.StageAndTransmit(context.Background(), contact, []*model.Case{c}, hooks, restage)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, restageCalled)
}

func TestStageAndTransmitRecoversPanicAsError(t *testing.T) {
	orch, _ := newOrchestrator()
	contact := contactWithAlerts()
	c := model.NewCase("s1", "t1", "src", contact)
	hooks := fakeHooks{preStageOK: true, caseReady: true, stagePanic: true, transmitOK: true, postOK: true}

	res, err := orch.StageAndTransmit(context.Background(), contact, []*model.Case{c}, hooks, func(*model.Case) error { return nil })
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Empty(t, res.Staged)
}

func TestStageAndTransmitStageFalseRecordsFailure(t *testing.T) {
	orch, _ := newOrchestrator()
	contact := contactWithAlerts()
	c := model.NewCase("s1", "t1", "src", contact)
	hooks := fakeHooks{preStageOK: true, caseReady: true, stageOK: false, transmitOK: true, postOK: true}

	res, err := orch.StageAndTransmit(context.Background(), contact, []*model.Case{c}, hooks, nil)
	require.NoError(t, err)
	assert.False(t, res.Success)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "s1", res.Failures[0].Case.Sid)
}

func TestStageAndTransmitNotReadyIsSkippedNotFailed(t *testing.T) {
	orch, _ := newOrchestrator()
	contact := contactWithAlerts()
	c := model.NewCase("s1", "t1", "src", contact)
	hooks := fakeHooks{preStageOK: true, caseReady: false, transmitOK: true, postOK: true}

	res, err := orch.StageAndTransmit(context.Background(), contact, []*model.Case{c}, hooks, nil)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Empty(t, res.Staged)
}

func TestStageAndTransmitNoAlertsWhenNotConfigured(t *testing.T) {
	orch, _ := newOrchestrator()
	contact := &model.Contact{ContactID: "c1", OnStageException: model.OnStageExceptionRestage}
	c := model.NewCase("s1", "t1", "src", contact)
	hooks := fakeHooks{preStageOK: true, caseReady: true, stageOK: true, transmitOK: true, postOK: true}

	res, err := orch.StageAndTransmit(context.Background(), contact, []*model.Case{c}, hooks, nil)
	require.NoError(t, err)
	assert.Empty(t, res.Alerts)
}
