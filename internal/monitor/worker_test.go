package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forkintheroad/fitr-admin/internal/alert"
	"github.com/forkintheroad/fitr-admin/internal/settings"
)

type stubSampler struct {
	sample Sample
	err    error
}

func (s stubSampler) Sample(context.Context) (Sample, error) { return s.sample, s.err }

type recordingCreator struct {
	created []alert.NewAlert
}

func (r *recordingCreator) Create(_ context.Context, in alert.NewAlert, _ alert.CreateOptions) (*alert.Alert, error) {
	r.created = append(r.created, in)
	return &alert.Alert{ID: "alert_1"}, nil
}

type staticSettings struct{ s settings.Settings }

func (r staticSettings) Current(context.Context) settings.Settings { return r.s }

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestWorker(sampler Sampler, creator AlertCreator, s settings.Settings) *Worker {
	w := NewWorker(sampler, creator, staticSettings{s: s}, alert.NewCooldown(30*time.Minute), nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)), time.Minute)
	w.now = func() time.Time { return testNow }
	return w
}

func TestWorker_Check(t *testing.T) {
	// defaults: cpu 80, memory 85, disk 90
	tests := []struct {
		name      string
		sample    Sample
		wantTitle []string
		wantSev   []alert.Severity
	}{
		{name: "all below", sample: Sample{CPU: 10, Memory: 50, Disk: 60}},
		{
			name:      "cpu at threshold",
			sample:    Sample{CPU: 80, Memory: 50, Disk: 60},
			wantTitle: []string{"High CPU usage"},
			wantSev:   []alert.Severity{alert.SeverityHigh},
		},
		{
			name:      "memory and disk critical",
			sample:    Sample{CPU: 10, Memory: 96, Disk: 99},
			wantTitle: []string{"High Memory usage", "High Disk usage"},
			wantSev:   []alert.Severity{alert.SeverityCritical, alert.SeverityCritical},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &recordingCreator{}
			newTestWorker(stubSampler{sample: tt.sample}, creator, settings.Defaults()).Check(context.Background())

			require.Len(t, creator.created, len(tt.wantTitle))
			for i, a := range creator.created {
				assert.Equal(t, alert.TypeSystemResourceHigh, a.Type)
				assert.Equal(t, tt.wantTitle[i], a.Title)
				assert.Equal(t, tt.wantSev[i], a.Severity)
			}
		})
	}
}

func TestWorker_CooldownPerResource(t *testing.T) {
	creator := &recordingCreator{}
	sampler := stubSampler{sample: Sample{CPU: 90}}
	w := newTestWorker(sampler, creator, settings.Defaults())

	w.Check(context.Background())
	w.Check(context.Background())
	assert.Len(t, creator.created, 1)

	w.sampler = stubSampler{sample: Sample{CPU: 90, Disk: 95}}
	w.Check(context.Background())
	assert.Len(t, creator.created, 2)
	assert.Equal(t, "High Disk usage", creator.created[1].Title)
}

func TestWorker_SamplerError(t *testing.T) {
	creator := &recordingCreator{}
	newTestWorker(stubSampler{err: errors.New("no /proc")}, creator, settings.Defaults()).Check(context.Background())
	assert.Empty(t, creator.created)
}

func TestWorker_MaintenanceWindow(t *testing.T) {
	start := testNow.Add(-time.Hour)
	end := testNow.Add(time.Hour)
	s := settings.Defaults()
	s.Maintenance.Enabled = true
	s.Maintenance.ScheduledStart = &start
	s.Maintenance.ScheduledEnd = &end

	creator := &recordingCreator{}
	newTestWorker(stubSampler{sample: Sample{CPU: 99}}, creator, s).Check(context.Background())
	assert.Empty(t, creator.created)

	s.Maintenance.ScheduledEnd = &testNow
	newTestWorker(stubSampler{sample: Sample{CPU: 99}}, creator, s).Check(context.Background())
	assert.Len(t, creator.created, 1)
}
