package types

// Activity types.
const (
	ActivityTypeEpisode = 1
	ActivityTypeMovie   = 2
)

// Activity records that an episode or movie was watched. One entry is kept
// per episode ref; a newer entry replaces the old one.
type Activity struct {
	ID          int64
	EpisodeRef  string
	ShowRef     string
	Type        int
	TimestampMs int64
}

// Values returns the insertable columns of a.
func (a *Activity) Values() Values {
	return Values{
		ActivityEpisodeRef:  a.EpisodeRef,
		ActivityShowRef:     a.ShowRef,
		ActivityType:        int64(a.Type),
		ActivityTimestampMs: a.TimestampMs,
	}
}

// ActivityFromRow decodes an activity row.
func ActivityFromRow(r Row) *Activity {
	return &Activity{
		ID:          r.Int64(ActivityID),
		EpisodeRef:  r.String(ActivityEpisodeRef),
		ShowRef:     r.String(ActivityShowRef),
		Type:        r.Int(ActivityType),
		TimestampMs: r.Int64(ActivityTimestampMs),
	}
}

// Job is a queued network action, such as a watched-flag change that still
// has to reach a remote service. Extras holds an opaque payload.
type Job struct {
	ID        int64
	CreatedMs int64
	Type      int
	Extras    []byte
}

// Values returns the insertable columns of j. A zero CreatedMs is filled in
// by the store.
func (j *Job) Values() Values {
	v := Values{
		JobType:   int64(j.Type),
		JobExtras: j.Extras,
	}
	if j.CreatedMs != 0 {
		v[JobCreatedMs] = j.CreatedMs
	}
	return v
}

// JobFromRow decodes a jobs row.
func JobFromRow(r Row) *Job {
	j := &Job{
		ID:        r.Int64(JobID),
		CreatedMs: r.Int64(JobCreatedMs),
		Type:      r.Int(JobType),
	}
	switch b := r[JobExtras].(type) {
	case []byte:
		j.Extras = b
	case string:
		j.Extras = []byte(b)
	}
	return j
}
