package scheduler

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunacycle-screening-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeSource struct {
	due []*domain.Diagnosis
	err error
}

func (f *fakeSource) ListAllDueForFollowUp(context.Context, time.Time) ([]*domain.Diagnosis, error) {
	return f.due, f.err
}

type recordingNotifier struct {
	mu       sync.Mutex
	notified []string
	failIDs  map[string]bool
}

func (n *recordingNotifier) NotifyFollowUpDue(_ context.Context, d *domain.Diagnosis) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failIDs[d.ID] {
		return errors.New("delivery failed")
	}
	n.notified = append(n.notified, d.ID)
	return nil
}

func dueDiagnosis(id, userID string) *domain.Diagnosis {
	followUp := time.Now().UTC().AddDate(0, 0, -1)
	return &domain.Diagnosis{
		ID: id, UserID: userID, ConditionID: "pcos",
		Score: 0.72, Severity: domain.SeverityModerate, Status: domain.StatusActive,
		CreatedAt: followUp.AddDate(0, 0, -30), FollowUpDate: &followUp,
	}
}

func TestSweep_NotifiesAllDue(t *testing.T) {
	source := &fakeSource{due: []*domain.Diagnosis{
		dueDiagnosis("d1", "user-1"),
		dueDiagnosis("d2", "user-2"),
	}}
	notifier := &recordingNotifier{}
	s := NewFollowUpScheduler(source, notifier, testLogger(), "0 9 * * *")

	s.Sweep(context.Background())

	assert.Equal(t, []string{"d1", "d2"}, notifier.notified)
}

func TestSweep_SkipsFailedDeliveries(t *testing.T) {
	source := &fakeSource{due: []*domain.Diagnosis{
		dueDiagnosis("d1", "user-1"),
		dueDiagnosis("d2", "user-2"),
		dueDiagnosis("d3", "user-3"),
	}}
	notifier := &recordingNotifier{failIDs: map[string]bool{"d2": true}}
	s := NewFollowUpScheduler(source, notifier, testLogger(), "0 9 * * *")

	s.Sweep(context.Background())

	assert.Equal(t, []string{"d1", "d3"}, notifier.notified, "one failed delivery must not stop the sweep")
}

func TestSweep_ListFailureIsNonFatal(t *testing.T) {
	source := &fakeSource{err: errors.New("store offline")}
	notifier := &recordingNotifier{}
	s := NewFollowUpScheduler(source, notifier, testLogger(), "0 9 * * *")

	s.Sweep(context.Background())

	assert.Empty(t, notifier.notified)
}

func TestFollowUpScheduler_StartStop(t *testing.T) {
	s := NewFollowUpScheduler(&fakeSource{}, &recordingNotifier{}, testLogger(), "0 9 * * *")

	require.NoError(t, s.Start())
	s.Stop()
}

func TestFollowUpScheduler_InvalidCronSpec(t *testing.T) {
	s := NewFollowUpScheduler(&fakeSource{}, &recordingNotifier{}, testLogger(), "not a cron spec")

	assert.Error(t, s.Start())
}

func TestResilientNotifier_Delegates(t *testing.T) {
	inner := &recordingNotifier{}
	n := NewResilientNotifier(inner, testLogger())

	err := n.NotifyFollowUpDue(context.Background(), dueDiagnosis("d1", "user-1"))

	require.NoError(t, err)
	assert.Equal(t, []string{"d1"}, inner.notified)
}

func TestResilientNotifier_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &recordingNotifier{failIDs: map[string]bool{"bad": true}}
	n := NewResilientNotifier(inner, testLogger())

	d := dueDiagnosis("bad", "user-1")
	for i := 0; i < 5; i++ {
		assert.Error(t, n.NotifyFollowUpDue(context.Background(), d))
	}

	// Breaker is open now: calls fail fast without reaching the inner
	// notifier, even for deliveries that would succeed.
	err := n.NotifyFollowUpDue(context.Background(), dueDiagnosis("good", "user-2"))
	assert.Error(t, err)
	assert.Empty(t, inner.notified)
}
