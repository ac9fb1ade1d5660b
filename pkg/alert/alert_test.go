package alert_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamsafe/alertkit/pkg/alert"
)

func TestTopicFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    alert.Alert
		want alert.Topic
	}{
		{
			name: "sos routes to location topic",
			a:    alert.Alert{Type: alert.TypeSOS, Severity: alert.SeverityCritical},
			want: alert.TopicLocationSOS,
		},
		{
			name: "emergency class",
			a:    alert.Alert{Type: alert.TypeEmergency, Severity: alert.SeveritySevere},
			want: alert.TopicAlertEmergency,
		},
		{
			name: "critical advisory escalates",
			a:    alert.Alert{Type: alert.TypeWeather, Severity: alert.SeverityCritical},
			want: alert.TopicAlertEmergency,
		},
		{
			name: "plain advisory",
			a:    alert.Alert{Type: alert.TypeTraffic, Severity: alert.SeverityInfo},
			want: alert.TopicAlertNew,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, alert.TopicFor(tt.a))
		})
	}
}

func TestAlertCreated_Alert(t *testing.T) {
	t.Parallel()

	ev := alert.AlertCreated{
		Type:          alert.TypeWeather,
		Severity:      alert.SeverityWarning,
		AffectedZones: []string{"beach-north"},
		Title:         "Storm inbound",
		Body:          "High winds expected",
	}

	a := ev.Alert()
	require.NotEmpty(t, a.ID)
	assert.False(t, a.CreatedAt.IsZero())
	assert.Equal(t, ev.Type, a.Type)
	assert.Equal(t, ev.Severity, a.Severity)
	assert.Equal(t, ev.Title, a.Title)
	assert.Equal(t, ev.AffectedZones, a.AffectedZones)

	// Every materialization gets its own identity.
	assert.NotEqual(t, a.ID, ev.Alert().ID)
}

func TestAlertClassPredicates(t *testing.T) {
	t.Parallel()

	assert.True(t, alert.Alert{Type: alert.TypeEmergency}.IsEmergencyClass())
	assert.True(t, alert.Alert{Type: alert.TypeSOS}.IsEmergencyClass())
	assert.False(t, alert.Alert{Type: alert.TypeWeather}.IsEmergencyClass())

	assert.True(t, alert.Alert{Type: alert.TypeWeather}.IsAdvisory())
	assert.True(t, alert.Alert{Type: alert.TypeTraffic}.IsAdvisory())
	assert.False(t, alert.Alert{Type: alert.TypeGeofence}.IsAdvisory())
}
