package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"student-qr/backend/config"
	"student-qr/backend/internal/api/handler"
	"student-qr/backend/internal/api/middleware"
	"student-qr/backend/internal/model"
	"student-qr/backend/pkg/jwt"
)

// maxBodyBytes caps JSON and upload bodies; student photos travel as base64.
const maxBodyBytes = 10 << 20

// Deps are the optional Redis-backed collaborators. Either may be nil.
type Deps struct {
	Blacklist   middleware.TokenBlacklist
	RateLimiter middleware.RateLimiter
}

// Setup builds the Gin engine.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, deps Deps, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	r.GET("/health", h.Health.Health)

	// role sets, most to least privileged
	admin := middleware.RoleAuth(model.RoleAdmin)
	teacher := middleware.RoleAuth(model.RoleAdmin, model.RoleTeacher)

	v1 := r.Group("/api/v1")
	{
		// public
		auth := v1.Group("/auth")
		{
			auth.POST("/login",
				middleware.RateLimit(deps.RateLimiter, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow),
				h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, deps.Blacklist))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)

			// school calendar
			cal := authorized.Group("/calendar-entries")
			{
				cal.GET("", teacher, h.Calendar.ListEntries)
				cal.GET("/active", teacher, h.Calendar.ListActive)
				cal.GET("/upcoming", teacher, h.Calendar.ListUpcoming)
				cal.GET("/years", teacher, h.Calendar.ListYears)
				cal.GET("/summary", teacher, h.Calendar.Summary)
				cal.GET("/check", h.Calendar.CheckDate)
				cal.GET("/export.ics", h.Calendar.ExportICS)
				cal.GET("/:id", teacher, h.Calendar.GetEntry)
				cal.POST("", admin, h.Calendar.CreateEntry)
				cal.POST("/range", admin, h.Calendar.CreateRange)
				cal.POST("/initialize", admin, h.Calendar.Initialize)
				cal.POST("/import", admin, h.Calendar.ImportICS)
				cal.PUT("/:id", admin, h.Calendar.UpdateEntry)
				cal.PUT("/:id/toggle", admin, h.Calendar.ToggleEntry)
				cal.POST("/:id/auto-mark", admin, h.Calendar.AutoMark)
				cal.DELETE("/:id", admin, h.Calendar.DeleteEntry)
			}

			// students
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.ListStudents)
				students.GET("/search", h.Student.SearchStudents)
				students.GET("/:id", h.Student.GetStudent)
				students.POST("", admin, h.Student.CreateStudent)
				students.PUT("/:id", admin, h.Student.UpdateStudent)
				students.DELETE("/:id", admin, h.Student.DeleteStudent)
				students.POST("/:id/qr", teacher, h.Student.RegenerateQR)
				students.GET("/:id/qr", teacher, h.Student.GetQRImage)
				students.GET("/:id/qr/base64", teacher, h.Student.GetQRBase64)
			}

			// attendance
			attendance := authorized.Group("/attendance", teacher)
			{
				attendance.POST("", h.Attendance.MarkAttendance)
				attendance.POST("/qr", h.Attendance.MarkByQR)
				attendance.GET("", h.Attendance.ListByDate)
				attendance.GET("/summary", h.Attendance.Summary)
				attendance.GET("/course-summary", h.Attendance.CourseSummary)
				attendance.GET("/status", h.Attendance.DateStatus)
				attendance.GET("/stats", h.Attendance.Stats)
				attendance.GET("/students/:identifier", h.Attendance.StudentHistory)
			}

			export := authorized.Group("/export", teacher)
			{
				export.GET("/attendance", h.Export.ExportAttendance)
			}
		}
	}

	return r
}
