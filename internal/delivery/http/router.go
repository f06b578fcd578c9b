package http

import (
	"net/http"

	"go-medical-appointment/internal/delivery/http/handler"
	"go-medical-appointment/internal/delivery/http/middleware"
	"go-medical-appointment/internal/domain/entity"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

type Router struct {
	router              *mux.Router
	authHandler         *handler.AuthHandler
	doctorHandler       *handler.DoctorHandler
	patientHandler      *handler.PatientHandler
	userHandler         *handler.UserHandler
	availabilityHandler *handler.AvailabilityHandler
	appointmentHandler  *handler.AppointmentHandler
	notificationHandler *handler.NotificationHandler
	auditLogHandler     *handler.AuditLogHandler
	authMiddleware      *middleware.AuthMiddleware
	corsMiddleware      *middleware.CORSMiddleware
	gatherer            prometheus.Gatherer
	log                 *logrus.Logger
}

type RouterConfig struct {
	AuthHandler         *handler.AuthHandler
	DoctorHandler       *handler.DoctorHandler
	PatientHandler      *handler.PatientHandler
	UserHandler         *handler.UserHandler
	AvailabilityHandler *handler.AvailabilityHandler
	AppointmentHandler  *handler.AppointmentHandler
	NotificationHandler *handler.NotificationHandler
	AuditLogHandler     *handler.AuditLogHandler
	AuthMiddleware      *middleware.AuthMiddleware
	CORSMiddleware      *middleware.CORSMiddleware
	Gatherer            prometheus.Gatherer
	Log                 *logrus.Logger
}

func NewRouter(cfg RouterConfig) *Router {
	return &Router{
		router:              mux.NewRouter(),
		authHandler:         cfg.AuthHandler,
		doctorHandler:       cfg.DoctorHandler,
		patientHandler:      cfg.PatientHandler,
		userHandler:         cfg.UserHandler,
		availabilityHandler: cfg.AvailabilityHandler,
		appointmentHandler:  cfg.AppointmentHandler,
		notificationHandler: cfg.NotificationHandler,
		auditLogHandler:     cfg.AuditLogHandler,
		authMiddleware:      cfg.AuthMiddleware,
		corsMiddleware:      cfg.CORSMiddleware,
		gatherer:            cfg.Gatherer,
		log:                 cfg.Log,
	}
}

func (r *Router) Setup() *mux.Router {
	// preflight; router middleware only runs on matched routes, CORS answers it
	r.router.Methods(http.MethodOptions).HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.router.Handle("/metrics", promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})).Methods(http.MethodGet)

	// API versioning
	api := r.router.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", r.healthCheck).Methods(http.MethodGet)

	// Auth routes (public)
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/register/patient", r.authHandler.RegisterPatient).Methods(http.MethodPost)
	auth.HandleFunc("/register/doctor", r.authHandler.RegisterDoctor).Methods(http.MethodPost)
	auth.HandleFunc("/login", r.authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/refresh-token", r.authHandler.RefreshToken).Methods(http.MethodPost)

	// Auth routes (protected)
	authProtected := api.PathPrefix("/auth").Subrouter()
	authProtected.Use(r.authMiddleware.Authenticate)
	authProtected.HandleFunc("/logout", r.authHandler.Logout).Methods(http.MethodPost)
	authProtected.HandleFunc("/me", r.authHandler.GetCurrentUser).Methods(http.MethodGet)
	authProtected.HandleFunc("/change-password", r.authHandler.ChangePassword).Methods(http.MethodPost)

	// Doctor self-service; registered before /doctors/{id} so "me" is not taken as an ID
	doctorSelf := api.PathPrefix("/doctors/me").Subrouter()
	doctorSelf.Use(r.authMiddleware.Authenticate)
	doctorSelf.Use(middleware.RequireDoctor)
	doctorSelf.HandleFunc("/availability", r.availabilityHandler.GetMyAvailability).Methods(http.MethodGet)
	doctorSelf.HandleFunc("/availability", r.availabilityHandler.SetAvailability).Methods(http.MethodPost)
	doctorSelf.HandleFunc("/availability/bulk", r.availabilityHandler.SetBulkAvailability).Methods(http.MethodPost)
	doctorSelf.HandleFunc("/profile", r.doctorHandler.GetMyProfile).Methods(http.MethodGet)
	doctorSelf.HandleFunc("/profile", r.doctorHandler.UpdateMyProfile).Methods(http.MethodPut)

	// Doctor directory (public)
	api.HandleFunc("/doctors", r.doctorHandler.GetDoctors).Methods(http.MethodGet)
	api.HandleFunc("/doctors/specializations", r.doctorHandler.GetSpecializations).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}", r.doctorHandler.GetDoctor).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/availability", r.availabilityHandler.GetDoctorAvailability).Methods(http.MethodGet)
	api.HandleFunc("/doctors/{id}/slots", r.availabilityHandler.GetAvailableSlots).Methods(http.MethodGet)
	api.Handle("/doctors/{id}/toggle-status", r.adminOnly(r.userHandler.ToggleStatus(entity.RoleDoctor))).Methods(http.MethodPatch)

	// Patient self-service
	patients := api.PathPrefix("/patients").Subrouter()
	patients.Handle("/profile", r.patientOnly(r.patientHandler.GetMyProfile)).Methods(http.MethodGet)
	patients.Handle("/profile", r.patientOnly(r.patientHandler.UpdateMyProfile)).Methods(http.MethodPut)
	patients.Handle("/{id}/toggle-status", r.adminOnly(r.userHandler.ToggleStatus(entity.RolePatient))).Methods(http.MethodPatch)

	// Appointments
	appointments := api.PathPrefix("/appointments").Subrouter()
	appointments.Use(r.authMiddleware.Authenticate)
	appointments.Use(middleware.RequireAnyRole)
	appointments.Handle("", middleware.RequirePatient(http.HandlerFunc(r.appointmentHandler.CreateAppointment))).Methods(http.MethodPost)
	appointments.HandleFunc("", r.appointmentHandler.GetAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/upcoming", r.appointmentHandler.GetUpcomingAppointments).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}", r.appointmentHandler.GetAppointment).Methods(http.MethodGet)
	appointments.HandleFunc("/{id}/status", r.appointmentHandler.UpdateAppointmentStatus).Methods(http.MethodPatch)

	// Notifications
	notifications := api.PathPrefix("/notifications").Subrouter()
	notifications.Use(r.authMiddleware.Authenticate)
	notifications.HandleFunc("", r.notificationHandler.GetNotifications).Methods(http.MethodGet)
	notifications.HandleFunc("", r.notificationHandler.ClearAll).Methods(http.MethodDelete)
	notifications.HandleFunc("/unread-count", r.notificationHandler.GetUnreadCount).Methods(http.MethodGet)
	notifications.HandleFunc("/read-all", r.notificationHandler.MarkAllAsRead).Methods(http.MethodPatch)
	notifications.HandleFunc("/{id}/read", r.notificationHandler.MarkAsRead).Methods(http.MethodPatch)
	notifications.HandleFunc("/{id}", r.notificationHandler.DeleteNotification).Methods(http.MethodDelete)

	// Admin routes (protected - admin only)
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(r.authMiddleware.Authenticate)
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/appointments", r.appointmentHandler.GetAppointments).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs", r.auditLogHandler.GetAllAuditLogs).Methods(http.MethodGet)
	admin.HandleFunc("/audit-logs/{id}", r.auditLogHandler.GetAuditLog).Methods(http.MethodGet)
	admin.HandleFunc("/users/{id}/toggle-status", r.userHandler.ToggleStatus("")).Methods(http.MethodPatch)

	r.router.Use(middleware.RequestLogger(r.log))
	r.router.Use(r.corsMiddleware.Handle)

	return r.router
}

func (r *Router) adminOnly(h http.Handler) http.Handler {
	return r.authMiddleware.Authenticate(middleware.RequireAdmin(h))
}

func (r *Router) patientOnly(h http.HandlerFunc) http.Handler {
	return r.authMiddleware.Authenticate(middleware.RequirePatient(h))
}

func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status": "ok"}`))
}
