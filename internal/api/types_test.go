package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestListUnmarshal_Shapes(t *testing.T) {
	tests := []struct {
		name      string
		in        string
		wantLen   int
		wantTotal int
	}{
		{"bare array", `[{"name":"a"},{"name":"b"}]`, 2, 2},
		{"paged object", `{"items":[{"name":"a"}],"total":42,"skip":0,"limit":1}`, 1, 42},
		{"object without total", `{"items":[{"name":"a"},{"name":"b"}]}`, 2, 2},
		{"null", `null`, 0, 0},
		{"object with null items", `{"items":null,"total":0}`, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var l List[Asset]
			require.NoError(t, json.Unmarshal([]byte(tt.in), &l))
			require.Len(t, l.Items, tt.wantLen)
			require.Equal(t, tt.wantTotal, l.Total)
		})
	}

	var l List[Asset]
	require.Error(t, json.Unmarshal([]byte(`"nope"`), &l))
}

func TestEnvelopeData(t *testing.T) {
	raw, err := envelopeData([]byte(`{"status":200,"message":"ok","data":{"id":1}}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"id":1}`, string(raw))

	raw, err = envelopeData([]byte(`{"data":"not an envelope"}`))
	require.NoError(t, err)
	require.JSONEq(t, `{"data":"not an envelope"}`, string(raw))

	raw, err = envelopeData([]byte(`[1,2]`))
	require.NoError(t, err)
	require.Equal(t, `[1,2]`, string(raw))

	_, err = envelopeData([]byte(`{broken`))
	require.Error(t, err)
}

func TestNewError_MessageFallbacks(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"status":400,"message":"Asset code already exists","data":null}`, "Asset code already exists"},
		{`{"detail":"Not authenticated"}`, "Not authenticated"},
		{`{"detail":[{"loc":["body","email"],"msg":"value is not a valid email address"}]}`, "value is not a valid email address"},
		{`<html>Bad Gateway</html>`, ""},
		{``, ""},
	}
	for _, tt := range tests {
		e := newError("/x", http.StatusBadRequest, []byte(tt.body))
		require.Equal(t, tt.want, e.Message, "body %s", tt.body)
	}
}

func TestUserMessage(t *testing.T) {
	require.Equal(t, "", UserMessage(nil, "fallback"))
	require.Equal(t, "fallback", UserMessage(errors.New("execute request: dial tcp"), "fallback"))
	require.Equal(t, "fallback", UserMessage(&Error{Status: 502}, "fallback"))
	require.Equal(t, "Loan not found", UserMessage(fmt.Errorf("wrapped: %w", &Error{Status: 404, Message: "Loan not found"}), "fallback"))
	require.Contains(t, UserMessage(&SessionExpiredError{Err: errors.New("boom")}, "fallback"), "session has expired")
}

func TestSessionExpiredError_MatchesBoth(t *testing.T) {
	inner := &Error{Status: 401, Message: "Invalid refresh token", Path: refreshPath}
	err := fmt.Errorf("list loans: %w", &SessionExpiredError{Err: inner})

	require.ErrorIs(t, err, ErrSessionExpired)
	require.ErrorIs(t, err, inner)
	require.Equal(t, 401, StatusCode(err))
}

func TestParseTimeLayouts(t *testing.T) {
	require.False(t, ParseTime("2025-12-13T10:11:12Z").IsZero())
	require.False(t, ParseTime("2025-12-13T10:11:12.123456").IsZero())
	require.False(t, ParseTime("2025-12-13T10:11:12+07:00").IsZero())

	got := ParseTime("2025-12-13")
	require.Equal(t, 2025, got.Year())
	require.Equal(t, time.December, got.Month())
	require.Equal(t, 13, got.Day())

	require.True(t, ParseTime("").IsZero())
	require.True(t, ParseTime("yesterday").IsZero())
}

func TestLoanHelpers(t *testing.T) {
	due := "2025-01-31T00:00:00"
	l := Loan{Status: LoanApproved, DueDate: &due}
	require.True(t, l.OnLoan())
	require.Equal(t, 31, l.ParsedDueDate().Day())

	l = Loan{Status: LoanReturned}
	require.False(t, l.OnLoan())
	require.True(t, l.ParsedDueDate().IsZero())
}
