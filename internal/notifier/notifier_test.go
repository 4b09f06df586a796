package notifier

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotifyShowsAndAutoDismisses(t *testing.T) {
	theNotifier := New(40 * time.Millisecond)

	theNotifier.Notify(SeveritySuccess, "saved")

	active := theNotifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, SeveritySuccess, active[0].Severity)
	assert.Equal(t, "saved", active[0].Message)

	time.Sleep(120 * time.Millisecond)
	assert.Empty(t, theNotifier.Active())
}

func TestErrorShorthand(t *testing.T) {
	theNotifier := New(time.Hour)

	theNotifier.Error("it broke")

	active := theNotifier.Active()
	require.Len(t, active, 1)
	assert.Equal(t, SeverityError, active[0].Severity)
}

func TestOnShowCallback(t *testing.T) {
	theNotifier := New(time.Hour)

	var shown []Notice
	theNotifier.OnShow(func(notice Notice) {
		shown = append(shown, notice)
	})

	theNotifier.Notify(SeverityInfo, "first")
	theNotifier.Notify(SeverityError, "second")

	require.Len(t, shown, 2)
	assert.Equal(t, "first", shown[0].Message)
	assert.Equal(t, "second", shown[1].Message)
}

func TestActiveReturnsASnapshot(t *testing.T) {
	theNotifier := New(time.Hour)
	theNotifier.Notify(SeverityInfo, "original")

	snapshot := theNotifier.Active()
	snapshot[0].Message = "mutated"

	assert.Equal(t, "original", theNotifier.Active()[0].Message)
}
