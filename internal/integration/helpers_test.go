package integration_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

const adminToken = "integration-admin-token"

const testShowtimeID = 100

func prepareRequest(method, path string, body io.Reader, headers map[string]string, cookies []http.Cookie) (*http.Request, error) {
	req := httptest.NewRequest(method, path, body)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	for _, c := range cookies {
		req.AddCookie(&c)
	}

	return req, nil
}

func compareResponse(t *testing.T, body io.Reader, expectedResponse string) {
	var actual map[string]any
	require.NoError(t, json.NewDecoder(body).Decode(&actual))

	var expected map[string]any
	require.NoError(t, json.Unmarshal([]byte(expectedResponse), &expected))

	// ignore indeterministic fields while comparing
	opts := cmpopts.IgnoreMapEntries(func(k string, _ any) bool {
		return k == "timestamp" || k == "requestId" || k == "holdUntil"
	})

	if diff := cmp.Diff(expected, actual, opts); diff != "" {
		t.Errorf("response mismatch (-want +got):\n%s", diff)
	}
}

// newSessionCookie creates a committed session for the given user and returns
// the cookie a browser would carry afterwards.
func newSessionCookie(t testing.TB, testApp *TestApp, userID int) http.Cookie {
	t.Helper()

	ctx, err := testApp.SessionManager.Load(context.Background(), "")
	require.NoError(t, err)

	testApp.SessionManager.Put(ctx, "userID", userID)

	token, _, err := testApp.SessionManager.Commit(ctx)
	require.NoError(t, err)

	return http.Cookie{Name: "session_id", Value: token}
}

func resetSeatSchedules(t testing.TB, testApp *TestApp) {
	t.Helper()

	ctx := context.Background()

	_, err := testApp.DB.Exec(ctx, `TRUNCATE seat_schedules RESTART IDENTITY`)
	require.NoError(t, err)

	_, err = testApp.DB.Exec(ctx, `
		INSERT INTO seats (id, hall_id, seat_row, seat_col, seat_type, extra_price)
		VALUES
			(1, 1, 1, 1, 'Standard', 0),
			(2, 1, 1, 2, 'Standard', 0),
			(3, 1, 2, 1, 'VIP', 5.50),
			(4, 1, 2, 2, 'VIP', 5.50)
		ON CONFLICT (id) DO NOTHING`)
	require.NoError(t, err)

	_, err = testApp.DB.Exec(ctx, `
		INSERT INTO seat_schedules (showtime_id, seat_id)
		SELECT $1, id FROM seats`, testShowtimeID)
	require.NoError(t, err)
}

func placeHold(t testing.TB, testApp *TestApp, seatID, userID int, connectionID string, until time.Time) {
	t.Helper()

	tag, err := testApp.DB.Exec(context.Background(), `
		UPDATE seat_schedules
		SET status = 'HOLD', hold_until = $1, hold_by_user_id = $2, hold_by_connection_id = $3,
		    version = version + 1
		WHERE showtime_id = $4 AND seat_id = $5`,
		until, userID, connectionID, testShowtimeID, seatID)
	require.NoError(t, err)
	require.EqualValues(t, 1, tag.RowsAffected())
}

func fetchSeatState(t testing.TB, testApp *TestApp, seatID int) (status string, version int, orderID *int64) {
	t.Helper()

	err := testApp.DB.QueryRow(context.Background(), `
		SELECT status, version, order_id
		FROM seat_schedules
		WHERE showtime_id = $1 AND seat_id = $2`,
		testShowtimeID, seatID).Scan(&status, &version, &orderID)
	require.NoError(t, err)

	return status, version, orderID
}

func holdBody(seatIDs []int, connectionID string) io.Reader {
	payload := map[string]any{
		"seatIdList":   seatIDs,
		"connectionId": connectionID,
	}

	data, _ := json.Marshal(payload)

	return bytes.NewReader(data)
}

func jsonBody(payload any) io.Reader {
	data, _ := json.Marshal(payload)
	return bytes.NewReader(data)
}

func holdsURL() string {
	return fmt.Sprintf("/showtimes/%d/holds", testShowtimeID)
}
