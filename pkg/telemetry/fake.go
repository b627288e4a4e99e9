package telemetry

// Recorder is a test double that keeps every record in memory.
type Recorder struct {
	Records []Record

	// WriteError, if set, will be returned by Write()
	WriteError error

	Closed bool
}

// Write appends the record.
func (r *Recorder) Write(rec Record) error {
	if r.WriteError != nil {
		return r.WriteError
	}
	r.Records = append(r.Records, rec)
	return nil
}

// Close marks the recorder as closed.
func (r *Recorder) Close() error {
	r.Closed = true
	return nil
}

// Last returns the most recent record, or a zero Record if none.
func (r *Recorder) Last() Record {
	if len(r.Records) == 0 {
		return Record{}
	}
	return r.Records[len(r.Records)-1]
}
