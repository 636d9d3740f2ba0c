package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"swadiq-lms/app/database/memstore"
	"swadiq-lms/app/models"
	"swadiq-lms/app/routes/auth"
	"swadiq-lms/app/services"
)

const testSecret = "test-secret"

type apiClient struct {
	t   *testing.T
	app *fiber.App
}

func newAPIClient(t *testing.T) *apiClient {
	t.Helper()
	now := time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc := services.NewService(memstore.New(), services.Options{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	return &apiClient{t: t, app: NewApp(svc, testSecret)}
}

func token(t *testing.T, roles ...models.Role) (string, *models.Actor) {
	t.Helper()
	actor := &models.Actor{ID: uuid.NewString(), Email: "staff@example.com", Roles: roles}
	signed, err := auth.GenerateJWT(testSecret, actor, time.Hour)
	require.NoError(t, err)
	return signed, actor
}

// do sends a JSON request and decodes the JSON response
func (a *apiClient) do(method, path, bearer string, body interface{}) (int, map[string]interface{}) {
	a.t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		require.NoError(a.t, err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	out := map[string]interface{}{}
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *apiClient) createClass(adminToken, teacherID string) string {
	a.t.Helper()
	code, body := a.do(http.MethodPost, "/api/events", adminToken, map[string]interface{}{
		"title":      "Mathematics P5",
		"event_type": "class",
		"start_time": "2025-03-10T09:00:00Z",
		"end_time":   "2025-03-10T10:00:00Z",
		"teacher_id": teacherID,
	})
	require.Equal(a.t, http.StatusCreated, code, body)
	event := body["event"].(map[string]interface{})
	return event["id"].(string)
}

func TestHealth(t *testing.T) {
	api := newAPIClient(t)
	code, body := api.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, string(models.PayModelRetainerPlusPerClass), body["pay_model"])
}

func TestAuthRequired(t *testing.T) {
	api := newAPIClient(t)

	code, body := api.do(http.MethodGet, "/api/teacher/salary", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, false, body["success"])

	code, _ = api.do(http.MethodGet, "/api/teacher/salary", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	other, err := auth.GenerateJWT("another-secret", &models.Actor{ID: uuid.NewString()}, time.Hour)
	require.NoError(t, err)
	code, _ = api.do(http.MethodGet, "/api/teacher/salary", other, nil)
	assert.Equal(t, http.StatusUnauthorized, code)
}

func TestCompletionToPayrollFlow(t *testing.T) {
	api := newAPIClient(t)
	adminToken, _ := token(t, models.RoleAdmin)
	teacherToken, teacher := token(t, models.RoleTeacher)
	otherToken, _ := token(t, models.RoleTeacher)

	eventID := api.createClass(adminToken, teacher.ID)

	code, body := api.do(http.MethodPost, "/api/teacher/mark-complete", teacherToken, map[string]string{"event_id": eventID})
	require.Equal(t, http.StatusOK, code, body)
	assert.Equal(t, false, body["already_recorded"])
	record := body["attendance"].(map[string]interface{})
	assert.Equal(t, "completed", record["status"])
	assert.EqualValues(t, 150, record["base_amount"])
	attendanceID := record["id"].(string)

	code, body = api.do(http.MethodPost, "/api/teacher/mark-complete", teacherToken, map[string]string{"event_id": eventID})
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["already_recorded"])
	assert.Equal(t, attendanceID, body["attendance"].(map[string]interface{})["id"])

	code, body = api.do(http.MethodPost, "/api/teacher/mark-complete", otherToken, map[string]string{"event_id": eventID})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "teacher_mismatch", body["reason"])

	// teachers cannot review their own work
	code, body = api.do(http.MethodPost, "/api/admin/attendance/approve", teacherToken, map[string]interface{}{"attendance_id": attendanceID})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", body["reason"])

	code, body = api.do(http.MethodGet, "/api/admin/attendance", adminToken, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["attendance"], 1)

	code, body = api.do(http.MethodPost, "/api/admin/attendance/approve", adminToken, map[string]interface{}{
		"attendance_id": attendanceID,
		"bonus_amount":  20,
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 170, body["attendance"].(map[string]interface{})["total_amount"])

	code, body = api.do(http.MethodPost, "/api/admin/attendance/approve", adminToken, map[string]interface{}{"attendance_id": attendanceID})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "invalid_transition", body["reason"])

	code, body = api.do(http.MethodGet, "/api/teacher/salary", teacherToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	salary := body["salary"].(map[string]interface{})
	assert.EqualValues(t, 170, salary["current_month_earnings"])
	assert.EqualValues(t, 1, salary["attendance_classes"])
	assert.Len(t, salary["attendance_history"], 1)

	code, body = api.do(http.MethodGet, "/api/admin/payroll/total?teacher_id="+teacher.ID+"&month=3&year=2025", adminToken, nil)
	require.Equal(t, http.StatusOK, code, body)
	assert.EqualValues(t, 170, body["total"].(map[string]interface{})["sum"])

	code, body = api.do(http.MethodDelete, "/api/events/"+eventID, adminToken, nil)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "event_has_attendance", body["reason"])

	code, body = api.do(http.MethodPost, "/api/admin/payroll/close", adminToken, map[string]int{"month": 3, "year": 2025})
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "month_not_ended", body["reason"])
}

func TestErrorEnvelopes(t *testing.T) {
	api := newAPIClient(t)
	adminToken, _ := token(t, models.RoleAdmin)
	teacherToken, teacher := token(t, models.RoleTeacher)

	code, body := api.do(http.MethodPost, "/api/teacher/mark-complete", teacherToken, map[string]string{"event_id": "42"})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, map[string]interface{}{"EventID": "uuid"}, body["fields"])

	code, body = api.do(http.MethodPost, "/api/teacher/mark-complete", teacherToken, map[string]string{"event_id": uuid.NewString()})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "event_not_found", body["reason"])

	code, _ = api.do(http.MethodGet, "/api/events/not-a-uuid", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = api.do(http.MethodPost, "/api/events", teacherToken, map[string]interface{}{
		"title":      "Staff meeting",
		"event_type": "other",
		"start_time": "2025-03-10T09:00:00Z",
		"end_time":   "2025-03-10T10:00:00Z",
	})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", body["reason"])

	code, body = api.do(http.MethodPost, "/api/events", adminToken, map[string]interface{}{
		"title":      "Backwards",
		"event_type": "party",
		"start_time": "2025-03-10T09:00:00Z",
		"end_time":   "2025-03-10T08:00:00Z",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, map[string]interface{}{"EventType": "event_type", "EndTime": "gtefield"}, body["fields"])

	code, body = api.do(http.MethodGet, "/api/teacher/salary?teacher_id="+uuid.NewString(), teacherToken, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, "forbidden", body["reason"])

	code, body = api.do(http.MethodGet, "/api/teacher/salary?teacher_id="+teacher.ID, adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, body["salary"].(map[string]interface{})["current_month_earnings"])

	code, body = api.do(http.MethodGet, "/api/nowhere", adminToken, nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Page not found", body["error"])
}

func TestGenerateScheduleNeedsCourse(t *testing.T) {
	api := newAPIClient(t)
	adminToken, _ := token(t, models.RoleAdmin)

	code, body := api.do(http.MethodPost, "/api/courses/"+uuid.NewString()+"/schedule", adminToken, map[string]interface{}{
		"weekdays":         []string{"Monday"},
		"start_clock":      "09:00",
		"duration_minutes": 60,
		"from":             "2025-03-01",
		"to":               "2025-03-31",
	})
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "course_not_found", body["reason"])

	code, body = api.do(http.MethodPost, "/api/courses/"+uuid.NewString()+"/schedule", adminToken, map[string]interface{}{
		"weekdays":         []string{"Someday"},
		"start_clock":      "9am",
		"duration_minutes": 60,
		"from":             "2025-03-01",
		"to":               "2025-03-31",
	})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Contains(t, body["fields"], "StartClock")
}

func TestMalformedIDQueries(t *testing.T) {
	api := newAPIClient(t)
	adminToken, _ := token(t, models.RoleAdmin)

	tests := []struct {
		path string
		want string
	}{
		{"/api/teacher/salary?teacher_id=abc", "Invalid teacher_id"},
		{"/api/teacher/attendance?teacher_id=abc", "Invalid teacher_id"},
		{"/api/events?teacher_id=abc", "Invalid teacher_id"},
		{"/api/events?course_id=x", "Invalid course_id"},
		{"/api/admin/attendance?teacher_id=abc", "Invalid teacher_id"},
		{"/api/admin/payroll/total?teacher_id=abc&month=3&year=2025", "Invalid teacher_id"},
		{"/api/admin/salaries?teacher_id=abc", "Invalid teacher_id"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			code, body := api.do(http.MethodGet, tt.path, adminToken, nil)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, tt.want, body["error"])
		})
	}

	code, _ := api.do(http.MethodGet, "/api/events?course_id="+uuid.NewString(), adminToken, nil)
	assert.Equal(t, http.StatusOK, code)
}
