package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sagebionetworks/bridge-sdk-go/internal/config"
)

// List returns tracker's records that overlap [start, end].
func (s HealthDataService) List(ctx context.Context, session Session, tracker Tracker, start, end time.Time) ([]HealthDataRecord, error) {
	if start.IsZero() || end.IsZero() {
		return nil, argumentError("range", "start and end must be set")
	}
	if end.Before(start) {
		return nil, argumentError("range", "end must not be before start")
	}
	path, err := s.trackerPath(tracker)
	if err != nil {
		return nil, err
	}
	path = withQuery(path, url.Values{
		"startDate": {strconv.FormatInt(start.UnixMilli(), 10)},
		"endDate":   {strconv.FormatInt(end.UnixMilli(), 10)},
	})
	var result ResourceList[HealthDataRecord]
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Get returns one of tracker's records.
func (s HealthDataService) Get(ctx context.Context, session Session, tracker Tracker, recordID string) (*HealthDataRecord, error) {
	path, err := s.trackerPath(tracker, "record", recordID)
	if err != nil {
		return nil, err
	}
	var result HealthDataRecord
	if err := s.do(ctx, http.MethodGet, path, &session, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Add stores records for tracker and returns their new ids and versions,
// in order.
func (s HealthDataService) Add(ctx context.Context, session Session, tracker Tracker, records []HealthDataRecord) ([]IdVersionHolder, error) {
	if len(records) == 0 {
		return nil, argumentError("records", "must not be empty")
	}
	path, err := s.trackerPath(tracker)
	if err != nil {
		return nil, err
	}
	var result ResourceList[IdVersionHolder]
	if err := s.do(ctx, http.MethodPost, path, &session, records, &result); err != nil {
		return nil, err
	}
	return result.Items, nil
}

// Update saves record, which must carry its id, and returns the new
// version.
func (s HealthDataService) Update(ctx context.Context, session Session, tracker Tracker, record HealthDataRecord) (*IdVersionHolder, error) {
	if record.RecordID == "" {
		return nil, argumentError("record", "id must not be empty")
	}
	path, err := s.trackerPath(tracker, "record", record.RecordID)
	if err != nil {
		return nil, err
	}
	var result IdVersionHolder
	if err := s.do(ctx, http.MethodPost, path, &session, record, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes one of tracker's records.
func (s HealthDataService) Delete(ctx context.Context, session Session, tracker Tracker, recordID string) error {
	path, err := s.trackerPath(tracker, "record", recordID)
	if err != nil {
		return err
	}
	return s.do(ctx, http.MethodDelete, path, &session, nil, nil)
}

func (s HealthDataService) trackerPath(tracker Tracker, segments ...string) (string, error) {
	if tracker.ID == "" {
		return "", argumentError("tracker", "id must not be empty")
	}
	return s.resourcePath(config.HealthDataAPI, append([]string{tracker.ID.String()}, segments...)...)
}
