package http

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opsboard/opsboard/internal/adapter/http/middleware"
	"github.com/opsboard/opsboard/internal/domain"
)

func seedIncident(t *testing.T, env *testEnv, assigneeID *string) *domain.Incident {
	t.Helper()

	incident := domain.NewIncident("db latency spike", "p99 above threshold", domain.IncidentTierMajor)
	incident.AssigneeID = assigneeID
	require.NoError(t, env.incidentRepo.Create(context.Background(), incident))
	return incident
}

func TestCreateIncidentRoleGate(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"title": "api outage",
		"tier":  "CRITICAL",
	}

	dev := domain.Actor{ID: uuid.NewString(), Role: domain.RoleDeveloper}
	resp := env.do(t, http.MethodPost, "/api/v1/incidents", bearerFor(dev), body)
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	pm := domain.Actor{ID: uuid.NewString(), Role: domain.RolePM}
	resp = env.do(t, http.MethodPost, "/api/v1/incidents", bearerFor(pm), body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeEnvelope(t, resp)
	assert.Equal(t, "OPEN", data["status"])
}

func TestIngestIncidentAPIKey(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]interface{}{
		"title":       "disk full on worker-3",
		"description": "usage at 98%",
		"tier":        "CRITICAL",
	}

	// No key: rejected before the handler runs.
	resp := env.do(t, http.MethodPost, "/api/v1/ingest/incidents", "", body)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	// Wrong key.
	req, err := http.NewRequest(http.MethodPost, env.server.URL+"/api/v1/ingest/incidents", nil)
	require.NoError(t, err)
	req.Header.Set(middleware.APIKeyHeader, "wrong")
	wrongResp, err := env.server.Client().Do(req)
	require.NoError(t, err)
	wrongResp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, wrongResp.StatusCode)

	// Valid key: no session, no policy, incident lands OPEN and unassigned.
	resp = env.doWithAPIKey(t, "/api/v1/ingest/incidents", testAPIKey, body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	data := decodeEnvelope(t, resp)
	assert.Equal(t, "OPEN", data["status"])
	assert.Nil(t, data["assignee_id"])
}

func TestUpdateIncidentQAStatusOnly(t *testing.T) {
	env := newTestEnv(t)
	incident := seedIncident(t, env, nil)
	qa := domain.Actor{ID: uuid.NewString(), Role: domain.RoleQA}

	resp := env.do(t, http.MethodPut, "/api/v1/incidents/"+incident.ID, bearerFor(qa), map[string]interface{}{
		"status": "RESOLVED",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)
	assert.Equal(t, "RESOLVED", data["status"])
	assert.NotEmpty(t, data["resolved_at"])

	// Touching any other field rejects the whole request.
	resp = env.do(t, http.MethodPut, "/api/v1/incidents/"+incident.ID, bearerFor(qa), map[string]interface{}{
		"status": "CLOSED",
		"title":  "renamed",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	stored, err := env.incidentRepo.FindByID(context.Background(), incident.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.IncidentStatusResolved, stored.Status)
	assert.Equal(t, "db latency spike", stored.Title)
}

func TestUpdateIncidentAdminFullAccess(t *testing.T) {
	env := newTestEnv(t)
	incident := seedIncident(t, env, nil)
	admin := domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}
	assigneeID := uuid.NewString()

	resp := env.do(t, http.MethodPut, "/api/v1/incidents/"+incident.ID, bearerFor(admin), map[string]interface{}{
		"title":       "db latency spike (prod)",
		"assignee_id": assigneeID,
		"status":      "INVESTIGATING",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	data := decodeEnvelope(t, resp)
	assert.Equal(t, "INVESTIGATING", data["status"])
	assert.Equal(t, assigneeID, data["assignee_id"])
}

func TestUpdateIncidentNotFound(t *testing.T) {
	env := newTestEnv(t)
	admin := domain.Actor{ID: uuid.NewString(), Role: domain.RoleAdmin}

	resp := env.do(t, http.MethodPut, "/api/v1/incidents/"+uuid.NewString(), bearerFor(admin), map[string]interface{}{
		"status": "CLOSED",
	})
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
