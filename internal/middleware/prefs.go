package middleware

import (
	"context"
	"net/http"

	"github.com/diewo77/school-billing/internal/display"
)

type ctxKey string

const ctxCalendar ctxKey = "pref_calendar"

const calendarCookie = "calendar"

// Prefs extracts the calendar preference (query > cookie) and stores it in
// context. A query-provided value is persisted in a cookie for ~30 days.
func Prefs(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cal := display.AD
		if c, err := r.Cookie(calendarCookie); err == nil && c.Value != "" {
			cal = display.ParseCalendar(c.Value)
		}
		if q := r.URL.Query().Get("calendar"); q != "" {
			cal = display.ParseCalendar(q)
			http.SetCookie(w, &http.Cookie{
				Name: calendarCookie, Value: string(cal), Path: "/",
				MaxAge: 86400 * 30, HttpOnly: true, SameSite: http.SameSiteLaxMode,
			})
		}
		ctx := context.WithValue(r.Context(), ctxCalendar, cal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// CalendarFrom returns the calendar preference from context, AD by default.
func CalendarFrom(r *http.Request) display.Calendar {
	if v, ok := r.Context().Value(ctxCalendar).(display.Calendar); ok && v != "" {
		return v
	}
	return display.AD
}
