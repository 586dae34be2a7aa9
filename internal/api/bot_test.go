package telegram

import (
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"opd-scanner/internal/domain/entity"
)

func TestParsePain(t *testing.T) {
	tests := []struct {
		args    string
		want    int
		wantErr bool
	}{
		{args: "6", want: 6},
		{args: " 10 ", want: 10},
		{args: "7/10", want: 7},
		{args: "3 hurts", want: 3},
		{args: "", wantErr: true},
		{args: "much", wantErr: true},
	}

	for _, tt := range tests {
		got, err := parsePain(tt.args)
		if tt.wantErr {
			assert.Error(t, err, tt.args)
			continue
		}
		require.NoError(t, err, tt.args)
		assert.Equal(t, tt.want, got, tt.args)
	}
}

func newQueueOnlyBot(size int) *Bot {
	return &Bot{
		logger:  slog.Default(),
		outbox:  make(chan outgoing, size),
		pending: make(map[int64]pendingReport),
	}
}

func TestShowReport_SkipsLocalTarget(t *testing.T) {
	b := newQueueOnlyBot(4)

	b.ShowReport(entity.Scan{ID: uuid.New(), Target: entity.LocalTarget})
	b.Notify(entity.LocalTarget, "Camera not ready.")

	assert.Empty(t, b.outbox)
}

func TestShowReport_QueuesForChat(t *testing.T) {
	b := newQueueOnlyBot(4)
	scan := entity.Scan{ID: uuid.New(), Target: 42, State: entity.ScanAnalyzing}

	b.ShowReport(scan)
	b.Notify(42, "Camera not ready.")

	require.Len(t, b.outbox, 2)
	report := <-b.outbox
	require.NotNil(t, report.scan)
	assert.Equal(t, scan.ID, report.scan.ID)
	assert.Equal(t, int64(42), report.target)

	notice := <-b.outbox
	assert.Nil(t, notice.scan)
	assert.Contains(t, notice.text, "Camera not ready.")
}

func TestEnqueue_DoesNotBlockWhenFull(t *testing.T) {
	b := newQueueOnlyBot(1)

	b.Notify(1, "first")
	b.Notify(1, "second")

	require.Len(t, b.outbox, 1)
	assert.Contains(t, (<-b.outbox).text, "first")
}
