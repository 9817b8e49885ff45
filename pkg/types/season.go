package types

// Season belongs to one show. The counts are maintained by
// Store.RecountSeasons.
type Season struct {
	ID             int64
	ShowID         int64
	TmdbID         string
	Number         int
	Name           string
	TotalCount     int
	UnairedCount   int
	NoAirdateCount int
}

// Values returns the insertable columns of s.
func (s *Season) Values() Values {
	v := Values{
		SeasonShowID:         s.ShowID,
		SeasonNumber:         int64(s.Number),
		SeasonName:           s.Name,
		SeasonTotalCount:     int64(s.TotalCount),
		SeasonUnairedCount:   int64(s.UnairedCount),
		SeasonNoAirdateCount: int64(s.NoAirdateCount),
	}
	if s.TmdbID != "" {
		v[SeasonTmdbID] = s.TmdbID
	}
	if s.ID != 0 {
		v[SeasonID] = s.ID
	}
	return v
}

// SeasonFromRow decodes a seasons row.
func SeasonFromRow(r Row) *Season {
	return &Season{
		ID:             r.Int64(SeasonID),
		ShowID:         r.Int64(SeasonShowID),
		TmdbID:         r.String(SeasonTmdbID),
		Number:         r.Int(SeasonNumber),
		Name:           r.String(SeasonName),
		TotalCount:     r.Int(SeasonTotalCount),
		UnairedCount:   r.Int(SeasonUnairedCount),
		NoAirdateCount: r.Int(SeasonNoAirdateCount),
	}
}
