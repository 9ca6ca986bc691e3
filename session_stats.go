package rtspctl

// SessionStats are session statistics.
type SessionStats struct {
	// requests sent
	Requests uint64
	// received bytes
	BytesReceived uint64
	// sent bytes
	BytesSent uint64
	// read errors
	ReadErrors uint64
	// write errors
	WriteErrors uint64
}

// Stats returns statistics of all the exchanges performed by the session.
func (s *Session) Stats() *SessionStats {
	return &SessionStats{
		Requests:      s.requests.Load(),
		BytesReceived: s.counters.BytesReceived.Load(),
		BytesSent:     s.counters.BytesSent.Load(),
		ReadErrors:    s.counters.ReadErrors.Load(),
		WriteErrors:   s.counters.WriteErrors.Load(),
	}
}
