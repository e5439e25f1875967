package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/tbourn/go-hydration-backend/internal/domain"
	"github.com/tbourn/go-hydration-backend/internal/notify"
	"github.com/tbourn/go-hydration-backend/internal/services"
)

func Test_Authorization_GetAndRequest(t *testing.T) {
	rs := &stubReminderSvc{status: domain.AuthorizationNotDetermined}
	r, _ := newTestRouter(stubEntrySvc{}, rs)

	w := do(r, http.MethodGet, "/notifications/authorization", "")
	if resp := decode[AuthorizationResponse](t, w); resp.Status != domain.AuthorizationNotDetermined || resp.Authorized {
		t.Fatalf("unexpected %+v", resp)
	}

	w = do(r, http.MethodPost, "/notifications/authorization", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if resp := decode[AuthorizationResponse](t, w); !resp.Authorized {
		t.Fatalf("unexpected %+v", resp)
	}
	if rs.prompted != 1 {
		t.Fatalf("prompted=%d", rs.prompted)
	}
}

func Test_NotificationSettings_And_Badge(t *testing.T) {
	rs := &stubReminderSvc{status: domain.AuthorizationDenied}
	r, _ := newTestRouter(stubEntrySvc{}, rs)

	w := do(r, http.MethodGet, "/notifications/settings", "")
	s := decode[notify.Settings](t, w)
	if s.Authorization != domain.AuthorizationDenied || s.BadgeCount != 3 {
		t.Fatalf("unexpected %+v", s)
	}
	if w := do(r, http.MethodDelete, "/notifications/badge", ""); w.Code != http.StatusNoContent || !rs.badgeReset {
		t.Fatalf("status=%d reset=%v", w.Code, rs.badgeReset)
	}
}

func Test_ListReminders_EmptyIsArray(t *testing.T) {
	r, _ := newTestRouter(stubEntrySvc{}, &stubReminderSvc{})
	w := do(r, http.MethodGet, "/reminders", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := w.Body.String(); got != `{"reminders":[]}` {
		t.Fatalf("body=%s", got)
	}
}

func Test_ScheduleReminder(t *testing.T) {
	rs := &stubReminderSvc{status: domain.AuthorizationAuthorized}
	r, _ := newTestRouter(stubEntrySvc{}, rs)

	w := do(r, http.MethodPost, "/reminders", `{"time":"09:00","amount_ml":250}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d", w.Code)
	}
	if resp := decode[ReminderResponse](t, w); resp.Reminder.ID != "r1" {
		t.Fatalf("unexpected %+v", resp)
	}

	if w := do(r, http.MethodPost, "/reminders", `{"time":"09:00"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("missing amount: status=%d", w.Code)
	}
}

func Test_ScheduleReminder_Errors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrNotAuthorized, http.StatusForbidden, ErrCodeNotAuthorized},
		{services.ErrInvalidTime, http.StatusBadRequest, ErrCodeInvalidTime},
		{services.ErrInvalidAmount, http.StatusBadRequest, ErrCodeInvalidAmount},
	}
	for _, tc := range cases {
		rs := &stubReminderSvc{schedule: func(context.Context, string, float64) (domain.ReminderRequest, error) {
			return domain.ReminderRequest{}, tc.err
		}}
		r, _ := newTestRouter(stubEntrySvc{}, rs)
		w := do(r, http.MethodPost, "/reminders", `{"time":"x","amount_ml":-5}`)
		if w.Code != tc.status {
			t.Fatalf("%v: status=%d", tc.err, w.Code)
		}
		er := decode[ErrorResponse](t, w)
		if er.Code != tc.code {
			t.Fatalf("%v: code=%q", tc.err, er.Code)
		}
		if tc.err == services.ErrNotAuthorized && er.Message != notAuthorizedMessage {
			t.Fatalf("message=%q", er.Message)
		}
	}
}

func Test_CancelReminders(t *testing.T) {
	rs := &stubReminderSvc{}
	r, _ := newTestRouter(stubEntrySvc{}, rs)

	if w := do(r, http.MethodDelete, "/reminders/abc", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if w := do(r, http.MethodDelete, "/reminders", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if len(rs.cancelled) != 1 || rs.cancelled[0] != "abc" || !rs.cancelledAll {
		t.Fatalf("cancelled=%v all=%v", rs.cancelled, rs.cancelledAll)
	}
}

func Test_ReminderAction(t *testing.T) {
	var gotReq, gotAction string
	rs := &stubReminderSvc{action: func(_ context.Context, req, action string) error {
		gotReq, gotAction = req, action
		if action == "BOGUS" {
			return services.ErrUnknownAction
		}
		return nil
	}}
	r, _ := newTestRouter(stubEntrySvc{}, rs)

	if w := do(r, http.MethodPost, "/reminders/r1/actions/DRINK_ACTION", ""); w.Code != http.StatusNoContent {
		t.Fatalf("status=%d", w.Code)
	}
	if gotReq != "r1" || gotAction != "DRINK_ACTION" {
		t.Fatalf("got %q %q", gotReq, gotAction)
	}
	w := do(r, http.MethodPost, "/reminders/r1/actions/BOGUS", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status=%d", w.Code)
	}
	if er := decode[ErrorResponse](t, w); er.Code != ErrCodeUnknownAction {
		t.Fatalf("code=%q", er.Code)
	}
}
