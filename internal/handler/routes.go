package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/alumni-mentorship-api/internal/middleware"
	"github.com/noah-isme/alumni-mentorship-api/internal/models"
)

// Routes groups the handlers mounted under the API prefix.
type Routes struct {
	Registrations *RegistrationHandler
	Mentorships   *MentorshipHandler
	Sessions      *SessionHandler
	Mentors       *MentorHandler
	Metrics       *MetricsHandler

	Tokens    middleware.TokenValidator
	AdminRole string
	Audit     middleware.AuditWriter
	Logger    *zap.Logger
}

// Register mounts probes at the root and the API under prefix.
func (r Routes) Register(engine *gin.Engine, prefix string) {
	engine.GET("/health", r.Metrics.Health)
	engine.GET("/ready", r.Metrics.Ready)
	engine.GET("/metrics", r.Metrics.Prometheus)

	api := engine.Group(prefix)
	api.POST("/registrations", r.Registrations.Submit)

	authed := api.Group("")
	authed.Use(middleware.JWT(r.Tokens))
	admin := middleware.RequireRoles(r.AdminRole)

	registrations := authed.Group("/registrations", admin)
	registrations.GET("", r.Registrations.ListPending)
	registrations.GET("/:id", r.Registrations.Get)
	decisions := registrations.Group("", middleware.Audit(r.Audit, r.Logger, models.AuditActionAdminRequest, "registration_application"))
	decisions.PUT("/:id/approve", r.Registrations.Approve)
	decisions.PUT("/:id/reject", r.Registrations.Reject)
	authed.GET("/verifications", admin, r.Registrations.GetVerification)

	mentorships := authed.Group("/mentorship-requests")
	mentorships.POST("", r.Mentorships.Create)
	mentorships.GET("", r.Mentorships.List)
	mentorships.GET("/:id", r.Mentorships.Get)
	mentorships.PUT("/:id/status", r.Mentorships.UpdateStatus)
	mentorships.PUT("/:id/progress", r.Mentorships.UpdateProgress)
	mentorships.POST("/:id/sessions", r.Sessions.AddSession)
	mentorships.GET("/:id/sessions", r.Sessions.ListSessions)

	sessions := authed.Group("/sessions")
	sessions.PUT("/:id/complete", r.Sessions.Complete)
	sessions.PUT("/:id/cancel", r.Sessions.Cancel)

	mentors := authed.Group("/mentors")
	mentors.GET("", r.Mentors.List)
	mentors.POST("", r.Mentors.Apply)
	mentors.GET("/:id", r.Mentors.Get)
	mentors.PUT("/:id/active", r.Mentors.SetActive)
	mentors.PUT("/:id/approve", admin, middleware.Audit(r.Audit, r.Logger, models.AuditActionAdminRequest, "mentor_profile"), r.Mentors.Approve)

	authed.GET("/metrics/summary", admin, r.Metrics.Summary)
}
