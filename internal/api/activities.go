package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// MaxDaysAhead is the furthest the server will project a timeline.
const MaxDaysAhead = 4

// List returns the participant's scheduled activities from today through
// until's date. A zero until returns today's activities.
func (s ActivitiesService) List(ctx context.Context, session Session, until time.Time) ([]ScheduledActivity, error) {
	days, err := daysAhead(time.Now(), until)
	if err != nil {
		return nil, err
	}
	path, err := s.resourcePath(config.ActivitiesAPI)
	if err != nil {
		return nil, err
	}
	path = withQuery(path, url.Values{"daysAhead": {strconv.Itoa(days)}})

	var result ResourceList[ScheduledActivity]
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Update reports progress on scheduled activities, such as start and
// finish times.
func (s ActivitiesService) Update(ctx context.Context, session Session, activities []ScheduledActivity) error {
	if len(activities) == 0 {
		return argumentError("activities", "must not be empty")
	}
	for _, a := range activities {
		if a.GUID == "" {
			return argumentError("activities", "every activity needs a guid")
		}
	}
	path, err := s.resourcePath(config.ActivitiesAPI)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodPost, path, &session, activities, nil)
}

// daysAhead is the number of calendar days from now to until, counted in
// now's location. Zero means today only.
func daysAhead(now, until time.Time) (int, error) {
	if until.IsZero() {
		return 0, nil
	}
	if until.Before(now) {
		return 0, argumentError("until", "must not be in the past")
	}
	days := dayNumber(until.In(now.Location())) - dayNumber(now)
	if days > MaxDaysAhead {
		return 0, argumentError("until", "must be at most "+strconv.Itoa(MaxDaysAhead)+" days ahead")
	}
	return days, nil
}

// dayNumber counts days since the Unix epoch for t's wall-clock date.
func dayNumber(t time.Time) int {
	y, m, d := t.Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}
