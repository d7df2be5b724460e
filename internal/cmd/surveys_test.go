package cmd

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyGUID = "0b3c7e62-6f1d-4c53-9a8e-1d1c2f6f0a11"

const surveyBody = `{
	"guid":"` + surveyGUID + `",
	"createdOn":"2024-03-01T09:30:00.000Z",
	"version":3,
	"name":"Sleep Quality",
	"identifier":"sleep",
	"published":true,
	"elements":[
		{"guid":"q1","identifier":"hours","type":"SurveyQuestion","prompt":"How many hours did you sleep?"},
		{"guid":"i1","identifier":"thanks","type":"SurveyInfoScreen","title":"Thank you"}
	]
}`

func TestSurveysGet_Published(t *testing.T) {
	routes := newRouteHandler().
		On("GET", "/researcher/v1/surveys/"+surveyGUID+"/revisions/published", jsonResponse(200, surveyBody))
	env := setupTestEnv(t, routes)
	env.seedSession(t)

	stdout, _, err := runCLI(t, "", "surveys", "get", surveyGUID)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sleep Quality (sleep)")
	assert.Contains(t, stdout, "Published: true")
	assert.Contains(t, stdout, "How many hours did you sleep?")
	assert.Contains(t, stdout, "Thank you")
}

func TestSurveysGet_Revision(t *testing.T) {
	routes := newRouteHandler().
		On("GET", "/researcher/v1/surveys/"+surveyGUID+"/revisions/2024-03-01T09:30:00Z", jsonResponse(200, surveyBody))
	env := setupTestEnv(t, routes)
	env.seedSession(t)

	stdout, _, err := runCLI(t, "", "surveys", "get", surveyGUID, "--created-on", "2024-03-01T09:30:00Z",
		"-o", "json", "--query", "[.elements[].identifier]")
	require.NoError(t, err)

	var identifiers []string
	require.NoError(t, json.Unmarshal([]byte(stdout), &identifiers))
	assert.Equal(t, []string{"hours", "thanks"}, identifiers)
}

func TestSurveysList_NeedsDeveloper(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/researcher/v1/surveys", jsonResponse(200, `{"items":[`+surveyBody+`],"total":1}`)))
	env.seedSession(t)

	_, _, err := runCLI(t, "", "surveys", "list")
	require.Error(t, err)
	assert.Equal(t, exitAuth, ExitCode(err))
	assert.Contains(t, err.Error(), "developer")
	assert.Empty(t, env.routes.seen(), "the role is checked before any request")
}

func TestSurveysList_Developer(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/researcher/v1/surveys", jsonResponse(200, `{"items":[`+surveyBody+`],"total":1}`)))
	env.seedSession(t, "developer")

	stdout, _, err := runCLI(t, "", "surveys", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Sleep Quality")
	assert.Contains(t, stdout, "PUBLISHED")
}

func TestSurveysPublish(t *testing.T) {
	var called bool
	routes := newRouteHandler().
		On("POST", "/researcher/v1/surveys/"+surveyGUID+"/revisions/2024-03-01T09:30:00Z/publish", func(w http.ResponseWriter, r *http.Request) {
			called = true
			jsonResponse(200, `{"guid":"`+surveyGUID+`","createdOn":"2024-03-01T09:30:00.000Z","version":4}`)(w, r)
		})
	env := setupTestEnv(t, routes)
	env.seedSession(t, "developer")

	_, _, err := runCLI(t, "", "surveys", "publish", surveyGUID)
	require.Error(t, err, "--created-on is required")
	assert.Equal(t, exitUsage, ExitCode(err))

	_, stderr, err := runCLI(t, "", "surveys", "publish", surveyGUID, "--created-on", "2024-03-01T09:30:00Z")
	require.NoError(t, err)
	assert.True(t, called)
	assert.Contains(t, stderr, "Published survey "+surveyGUID+" (version 4)")
}

func TestSurveysGet_NotFound(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())
	env.seedSession(t)

	_, _, err := runCLI(t, "", "surveys", "get", surveyGUID)
	require.Error(t, err)
	assert.Equal(t, exitNotFound, ExitCode(err))
}
