package cmd

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plansBody = `{"items":[{
	"guid":"plan-1","label":"Daily check-in","version":2,"modifiedOn":"2024-03-01T10:00:00.000Z",
	"strategy":{"type":"SimpleScheduleStrategy","schedule":{"scheduleType":"recurring","cronTrigger":"0 0 9 * * ?","activities":[{"label":"Check in"}]}}
}],"total":1}`

func TestPlans(t *testing.T) {
	routes := newRouteHandler().
		On("GET", "/researcher/v1/scheduleplans", jsonResponse(200, plansBody)).
		On("DELETE", "/researcher/v1/scheduleplans/plan-1", jsonResponse(200, `{"message":"Deleted."}`))
	env := setupTestEnv(t, routes)
	env.seedSession(t, "developer")

	stdout, _, err := runCLI(t, "", "plans", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Daily check-in")
	assert.Contains(t, stdout, "SimpleScheduleStrategy")

	stdout, _, err = runCLI(t, "", "plans", "delete", "plan-1", "--yes", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, true, decodeObject(t, stdout)["deleted"])
}

func TestPlans_ResearcherIsNotDeveloper(t *testing.T) {
	env := setupTestEnv(t, newRouteHandler())
	env.seedSession(t, "researcher")

	_, _, err := runCLI(t, "", "plans", "list")
	require.Error(t, err)
	assert.Equal(t, exitAuth, ExitCode(err))
	assert.Empty(t, env.routes.seen())
}

func TestSchedulesAndActivities(t *testing.T) {
	var daysAhead string
	activities := jsonResponse(200, `{"items":[
			{"guid":"act-1","activity":{"label":"Walk","activityType":"task","task":{"identifier":"walk"}},"status":"available","scheduledOn":"2024-03-01T09:00:00.000Z","persistent":false}
		],"total":1}`)
	routes := newRouteHandler().
		On("GET", "/api/v1/schedules", jsonResponse(200, `{"items":[
			{"label":"Morning","scheduleType":"recurring","cronTrigger":"0 0 9 * * ?","activities":[{"label":"Walk"},{"label":"Mood"}],"schedulePlanGuid":"plan-1"}
		],"total":1}`)).
		On("GET", "/api/v1/activities", func(w http.ResponseWriter, r *http.Request) {
			daysAhead = r.URL.Query().Get("daysAhead")
			activities(w, r)
		})
	env := setupTestEnv(t, routes)
	env.seedSession(t)

	stdout, _, err := runCLI(t, "", "schedules", "list")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Walk, Mood")
	assert.Contains(t, stdout, "0 0 9 * * ?")

	stdout, _, err = runCLI(t, "", "activities", "list", "--days", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "act-1")
	assert.Contains(t, stdout, "available")
	assert.Equal(t, "2", daysAhead)

	_, _, err = runCLI(t, "", "activities", "list", "--days", "5")
	require.Error(t, err)
	assert.Equal(t, exitUsage, ExitCode(err))
}

func TestActivitiesList_Today(t *testing.T) {
	var daysAhead string
	env := setupTestEnv(t, newRouteHandler().
		On("GET", "/api/v1/activities", func(w http.ResponseWriter, r *http.Request) {
			daysAhead = r.URL.Query().Get("daysAhead")
			jsonResponse(200, `{"items":[],"total":0}`)(w, r)
		}))
	env.seedSession(t)

	_, stderr, err := runCLI(t, "", "activities", "list")
	require.NoError(t, err)
	assert.Equal(t, "0", daysAhead)
	assert.Contains(t, stderr, "No activities due")
}
