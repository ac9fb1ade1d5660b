package notification

// ChannelStats is the per-channel slice of a delivery report.
type ChannelStats struct {
	Total     int `json:"total"`
	Sent      int `json:"sent"`
	Delivered int `json:"delivered"`
	Read      int `json:"read"`
	Failed    int `json:"failed"`
	Pending   int `json:"pending"`
}

// DeliveryStats aggregates delivery outcomes for one broadcast. It is always
// recomputed from the owned notification set, never mutated independently.
type DeliveryStats struct {
	Total     int                      `json:"total"`
	Sent      int                      `json:"sent"`
	Delivered int                      `json:"delivered"`
	Read      int                      `json:"read"`
	Failed    int                      `json:"failed"`
	Pending   int                      `json:"pending"`
	ByChannel map[Channel]ChannelStats `json:"by_channel,omitempty"`
}

// DeliveryRate returns delivered/total; read notifications count as
// delivered, since read implies delivery.
func (s DeliveryStats) DeliveryRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Delivered+s.Read) / float64(s.Total)
}

// Normalize repairs the pending count when status data is incomplete:
// anything not accounted for as sent, delivered, read or failed is pending.
func (s *DeliveryStats) Normalize() {
	accounted := s.Sent + s.Delivered + s.Read + s.Failed + s.Pending
	if accounted < s.Total {
		s.Pending = s.Total - s.Sent - s.Delivered - s.Read - s.Failed
	}
}

// ComputeStats counts notifications by status and channel.
func ComputeStats(notifs []Notification) DeliveryStats {
	stats := DeliveryStats{
		Total:     len(notifs),
		ByChannel: make(map[Channel]ChannelStats),
	}

	for _, n := range notifs {
		ch := stats.ByChannel[n.Channel]
		ch.Total++

		switch n.Status {
		case StatusPending:
			stats.Pending++
			ch.Pending++
		case StatusSent:
			stats.Sent++
			ch.Sent++
		case StatusDelivered:
			stats.Delivered++
			ch.Delivered++
		case StatusRead:
			stats.Read++
			ch.Read++
		case StatusFailed:
			stats.Failed++
			ch.Failed++
		}

		stats.ByChannel[n.Channel] = ch
	}

	stats.Normalize()
	return stats
}
