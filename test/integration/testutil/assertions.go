//go:build integration

package testutil

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
)

// DecodeJSON reads and decodes a JSON response body into dst.
func DecodeJSON(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
}

// AssertStatus checks that the response has the expected HTTP status code.
func AssertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}

// AssertErrorCode checks that the response body contains the expected error code.
func AssertErrorCode(t *testing.T, resp *http.Response, expectedCode string) {
	t.Helper()
	var errResp struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	DecodeJSON(t, resp, &errResp)
	if errResp.Code != expectedCode {
		t.Errorf("expected error code %q, got %q (message: %s)", expectedCode, errResp.Code, errResp.Message)
	}
}

// AssertPoints queries user_points and asserts the ledger columns.
func AssertPoints(t *testing.T, env *TestEnv, userID uuid.UUID, total, level, toNext int) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var gotTotal, gotLevel, gotToNext int
	err := env.Pool.QueryRow(ctx,
		"SELECT total_points, current_level, points_to_next_level FROM user_points WHERE user_id = $1",
		userID).Scan(&gotTotal, &gotLevel, &gotToNext)
	if err != nil {
		t.Fatalf("AssertPoints: query: %v", err)
	}
	if gotTotal != total {
		t.Errorf("total_points: expected %d, got %d", total, gotTotal)
	}
	if gotLevel != level {
		t.Errorf("current_level: expected %d, got %d", level, gotLevel)
	}
	if gotToNext != toNext {
		t.Errorf("points_to_next_level: expected %d, got %d", toNext, gotToNext)
	}
}

// CountActivityEvents returns the number of audit rows for a user.
func CountActivityEvents(t *testing.T, env *TestEnv, userID uuid.UUID) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var count int
	err := env.Pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM activity_events WHERE user_id = $1", userID).Scan(&count)
	if err != nil {
		t.Fatalf("CountActivityEvents: %v", err)
	}
	return count
}

// CountOutboxEvents returns the number of outbox events of the given type for
// an aggregate. An empty eventType counts all.
func CountOutboxEvents(t *testing.T, env *TestEnv, aggregateID, eventType string) int {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	query := "SELECT COUNT(*) FROM event_outbox WHERE aggregate_id = $1"
	args := []interface{}{aggregateID}
	if eventType != "" {
		query += " AND event_type = $2"
		args = append(args, eventType)
	}

	var count int
	if err := env.Pool.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		t.Fatalf("CountOutboxEvents: %v", err)
	}
	return count
}
