package http

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"eventsnap/internal/delivery/http/controllers"
	"eventsnap/internal/delivery/http/middleware"
	"eventsnap/internal/domain"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Event    *controllers.EventController
	Attendee *controllers.AttendeeController
	Room     *controllers.RoomController
	Meeting  *controllers.MeetingController
	Snapshot *controllers.SnapshotController
}

// NewRouter initializes the HTTP router with all application routes.
// Everything except the slug lookup and the viewer password check requires a
// valid bearer token; the system-wide snapshot routes and system-wide attendee
// deletion additionally require the root role.
func NewRouter(c Controllers, verifier domain.TokenVerifier) *http.ServeMux {
	mux := http.NewServeMux()
	auth := middleware.RequireAuth(verifier)
	root := func(next http.HandlerFunc) http.HandlerFunc {
		return auth(middleware.RequireRoot(next))
	}

	// Events
	mux.HandleFunc("POST /events", auth(c.Event.CreateEvent))
	mux.HandleFunc("GET /events", auth(c.Event.ListEvents))
	mux.HandleFunc("GET /events/{eventID}", auth(c.Event.GetEvent))
	mux.HandleFunc("PATCH /events/{eventID}", auth(c.Event.UpdateEvent))
	mux.HandleFunc("DELETE /events/{eventID}", auth(c.Event.DeleteEvent))
	mux.HandleFunc("GET /events/slug/{slug}", c.Event.GetEventBySlug)
	mux.HandleFunc("POST /events/{eventID}/check-password", c.Event.CheckPassword)

	// Attendees
	mux.HandleFunc("POST /events/{eventID}/attendees", auth(c.Attendee.CreateForEvent))
	mux.HandleFunc("GET /events/{eventID}/attendees", auth(c.Attendee.ListByEvent))
	mux.HandleFunc("PATCH /attendees/{attendeeID}", auth(c.Attendee.UpdateAttendee))
	mux.HandleFunc("DELETE /events/{eventID}/attendees/{attendeeID}", auth(c.Attendee.UnlinkFromEvent))
	mux.HandleFunc("DELETE /attendees/{attendeeID}", root(c.Attendee.DeleteSystemWide))

	// Rooms
	mux.HandleFunc("POST /events/{eventID}/rooms", auth(c.Room.CreateRoom))
	mux.HandleFunc("GET /events/{eventID}/rooms", auth(c.Room.ListByEvent))
	mux.HandleFunc("PATCH /rooms/{roomID}", auth(c.Room.UpdateRoom))
	mux.HandleFunc("DELETE /rooms/{roomID}", auth(c.Room.DeleteRoom))

	// Meetings
	mux.HandleFunc("POST /events/{eventID}/meetings", auth(c.Meeting.CreateMeeting))
	mux.HandleFunc("GET /events/{eventID}/meetings", auth(c.Meeting.ListByEvent))
	mux.HandleFunc("GET /meetings/{meetingID}", auth(c.Meeting.GetMeeting))
	mux.HandleFunc("PATCH /meetings/{meetingID}", auth(c.Meeting.UpdateMeeting))
	mux.HandleFunc("DELETE /meetings/{meetingID}", auth(c.Meeting.DeleteMeeting))
	mux.HandleFunc("POST /meetings/{meetingID}/send-invite", auth(c.Meeting.SendCalendarInvite))

	// Snapshots
	mux.HandleFunc("GET /events/{eventID}/export", auth(c.Snapshot.ExportEvent))
	mux.HandleFunc("POST /events/{eventID}/import", auth(c.Snapshot.ImportEvent))
	mux.HandleFunc("POST /events/{eventID}/reset", auth(c.Snapshot.ResetEvent))
	mux.HandleFunc("GET /system/export", root(c.Snapshot.ExportSystem))
	mux.HandleFunc("POST /system/import", root(c.Snapshot.ImportSystem))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	// Prometheus
	mux.Handle("GET /metrics", promhttp.Handler())

	return mux
}
