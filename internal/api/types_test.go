package api

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/json"
	"testing"
	"time"
)

func TestFlexString(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`"abc"`, "abc"},
		{`12`, "12"},
		{`null`, ""},
	}
	for _, tt := range tests {
		var fs FlexString
		if err := json.Unmarshal([]byte(tt.input), &fs); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.input, err)
		}
		if fs.String() != tt.want {
			t.Errorf("FlexString(%s) = %q, want %q", tt.input, fs, tt.want)
		}
	}
	var fs FlexString
	if err := json.Unmarshal([]byte(`{}`), &fs); err == nil {
		t.Error("expected error for an object")
	}
}

func TestNewSignUpCredentials(t *testing.T) {
	if _, err := NewSignUpCredentials("ada", "ada@example.org", "P4ssword"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if _, err := NewSignUpCredentials("", "ada@example.org", "P4ssword"); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for empty username, got %v", err)
	}
	if _, err := NewSignUpCredentials("ada", "not-an-email", "P4ssword"); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for bad email, got %v", err)
	}
}

func TestSchedulePlanStrategies(t *testing.T) {
	task, err := NewTaskActivity("Tapping test", "tapTest")
	if err != nil {
		t.Fatalf("NewTaskActivity: %v", err)
	}
	schedule := Schedule{Label: "Daily", ScheduleType: ScheduleRecurring, CronTrigger: "0 0 8 ? * *", Activities: []Activity{task}}

	simple := SchedulePlan{Label: "simple", Strategy: SimpleStrategy(schedule)}
	if simple.StrategyType() != StrategySimple {
		t.Errorf("StrategyType() = %q", simple.StrategyType())
	}
	schedules, err := simple.Schedules()
	if err != nil || len(schedules) != 1 || schedules[0].Activities[0].Ref() != "tapTest" {
		t.Errorf("Schedules() = %+v, %v", schedules, err)
	}

	ab, err := ABTestStrategy(ABTestGroup{Percentage: 40, Schedule: schedule}, ABTestGroup{Percentage: 60, Schedule: schedule})
	if err != nil {
		t.Fatalf("ABTestStrategy: %v", err)
	}
	plan := SchedulePlan{Strategy: ab}
	if plan.StrategyType() != StrategyABTest {
		t.Errorf("StrategyType() = %q", plan.StrategyType())
	}
	if schedules, err := plan.Schedules(); err != nil || len(schedules) != 2 {
		t.Errorf("Schedules() = %d, %v", len(schedules), err)
	}

	if _, err := ABTestStrategy(ABTestGroup{Percentage: 50, Schedule: schedule}); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for percentages under 100, got %v", err)
	}
	if _, err := (SchedulePlan{Strategy: json.RawMessage(`{"type":"Other"}`)}).Schedules(); err == nil {
		t.Error("expected error for unsupported strategy")
	}
}

func TestActivities(t *testing.T) {
	if _, err := NewTaskActivity("", "id"); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError, got %v", err)
	}
	survey, err := NewSurveyActivity("Mood", SurveyReference{GUID: "g1"})
	if err != nil {
		t.Fatalf("NewSurveyActivity: %v", err)
	}
	if survey.ActivityType != ActivitySurvey || survey.Ref() != "g1" {
		t.Errorf("unexpected activity %+v", survey)
	}
	if _, err := NewSurveyActivity("Mood", SurveyReference{}); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError, got %v", err)
	}

	persistent := Schedule{ScheduleType: SchedulePersistent, EventID: "survey:g1:finished"}
	if !survey.IsPersistentlyRescheduledBy(persistent) {
		t.Error("expected persistent rescheduling")
	}
	if survey.IsPersistentlyRescheduledBy(Schedule{ScheduleType: ScheduleOnce, EventID: "survey:g1:finished"}) {
		t.Error("one-time schedules never reschedule")
	}
	if (Activity{}).IsPersistentlyRescheduledBy(persistent) {
		t.Error("activity without a reference never reschedules")
	}
}

func TestSurvey(t *testing.T) {
	created := time.Date(2015, 1, 2, 3, 4, 5, 0, time.UTC)
	s := Survey{GUID: "g1", CreatedOn: &created, Version: 3, Elements: []SurveyElement{
		{GUID: "q1", Identifier: "mood", Type: ElementQuestion},
	}}
	keys := s.Keys()
	if keys.GUID != "g1" || !keys.CreatedOn.Equal(created) || keys.Version != 3 {
		t.Errorf("Keys() = %+v", keys)
	}
	if err := keys.validate(); err != nil {
		t.Errorf("validate: %v", err)
	}
	if err := (GuidCreatedOnVersionHolder{GUID: "g1"}).validate(); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for missing createdOn, got %v", err)
	}

	q, ok := s.QuestionByIdentifier("mood")
	if !ok || q.GUID != "q1" {
		t.Errorf("QuestionByIdentifier = %+v, %v", q, ok)
	}
	if _, ok := s.QuestionByIdentifier("nope"); ok {
		t.Error("expected no question")
	}

	answer, err := NewSurveyAnswer(q, created, "test", "happy")
	if err != nil || answer.QuestionGUID != "q1" || answer.Answers[0] != "happy" {
		t.Errorf("NewSurveyAnswer = %+v, %v", answer, err)
	}
	if _, err := NewSurveyAnswer(q, created, "test"); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for no values, got %v", err)
	}
}

func TestNewConsentSignature(t *testing.T) {
	tests := []struct {
		name      string
		sigName   string
		birthdate string
		image     string
		mime      string
		wantErr   bool
	}{
		{"valid", "Ada", "1980-12-10", "", "", false},
		{"with image", "Ada", "1980-12-10", "aGk=", "image/png", false},
		{"no name", "", "1980-12-10", "", "", true},
		{"bad birthdate", "Ada", "12/10/1980", "", "", true},
		{"image without type", "Ada", "1980-12-10", "aGk=", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConsentSignature(tt.sigName, tt.birthdate, tt.image, tt.mime)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewConsentSignature() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewHealthDataRecord(t *testing.T) {
	start := time.Date(2015, 1, 2, 3, 4, 5, 0, time.UTC)
	rec, err := NewHealthDataRecord(start, time.Time{}, map[string]int{"systolic": 120})
	if err != nil {
		t.Fatalf("NewHealthDataRecord: %v", err)
	}
	if rec.StartDate != start.UnixMilli() || rec.EndDate != rec.StartDate {
		t.Errorf("unexpected dates %d %d", rec.StartDate, rec.EndDate)
	}
	if !rec.Start().Equal(start) || !rec.End().Equal(start) {
		t.Errorf("Start/End = %v %v", rec.Start(), rec.End())
	}
	if string(rec.Data) != `{"systolic":120}` {
		t.Errorf("Data = %s", rec.Data)
	}

	if _, err := NewHealthDataRecord(time.Time{}, start, nil); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for zero start, got %v", err)
	}
	if _, err := NewHealthDataRecord(start, start.Add(-time.Hour), nil); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for end before start, got %v", err)
	}
}

func TestNewUploadRequest(t *testing.T) {
	data := []byte("archive bytes")
	req, err := NewUploadRequest("upload.zip", data, "")
	if err != nil {
		t.Fatalf("NewUploadRequest: %v", err)
	}
	sum := md5.Sum(data)
	if req.ContentMD5 != base64.StdEncoding.EncodeToString(sum[:]) {
		t.Errorf("ContentMD5 = %q", req.ContentMD5)
	}
	if req.ContentLength != int64(len(data)) || req.ContentType != "application/zip" {
		t.Errorf("unexpected request %+v", req)
	}
	if _, err := NewUploadRequest("upload.zip", nil, ""); !IsArgumentError(err) {
		t.Errorf("expected ArgumentError for empty data, got %v", err)
	}
}
