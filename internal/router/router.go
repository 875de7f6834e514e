package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"site-tracker-api/internal/client"
	"site-tracker-api/internal/config"
	"site-tracker-api/internal/domain"
	"site-tracker-api/internal/handler"
	"site-tracker-api/internal/metrics"
	"site-tracker-api/internal/middleware"
	"site-tracker-api/internal/realtime"
	"site-tracker-api/internal/repository"
	"site-tracker-api/internal/service"
)

// Config carries everything Setup wires into the HTTP surface.
// Redis, Metrics, S3Client, Hub and Dispatcher are optional.
type Config struct {
	DB             *gorm.DB
	Redis          *redis.Client
	Logger         *zap.Logger
	JWT            config.JWTConfig
	BasePath       string
	AllowedOrigins []string
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	S3Client       client.S3ClientInterface
	Hub            *realtime.Hub
	Dispatcher     *service.Dispatcher
	UnreadCacheTTL time.Duration
}

// Setup builds the gin engine with every route
func Setup(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	if cfg.Metrics != nil {
		r.Use(middleware.Metrics(cfg.Metrics))
	}

	repos := repository.NewRepositories(cfg.DB)
	unreadCache := service.NewUnreadCache(cfg.Redis, cfg.UnreadCacheTTL, logger)

	var broadcaster realtime.Broadcaster = realtime.NoopBroadcaster{}
	if cfg.Hub != nil {
		broadcaster = cfg.Hub
	}
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = service.NewDispatcher(nil, nil, nil, broadcaster, unreadCache, cfg.Metrics, logger)
	}

	// Services
	authService := service.NewAuthService(repos.Employees, cfg.JWT, logger)
	employeeService := service.NewEmployeeService(repos.Employees, logger)
	siteService := service.NewSiteService(repos, cfg.Metrics, logger)
	templateService := service.NewPhaseTemplateService(repos.PhaseTemplates, logger)
	phaseService := service.NewPhaseService(repos.Sites, repos.Phases, repos.Employees, logger)
	taskService := service.NewTaskService(repos, logger)
	workflowService := service.NewWorkflowService(repos, dispatcher, cfg.Metrics, logger)
	todoService := service.NewTodoService(repos, logger)
	chatService := service.NewChatService(repos, dispatcher, cfg.Metrics, logger)
	notificationService := service.NewNotificationService(repos.Notifications, unreadCache, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authService, employeeService, logger)
	employeeHandler := handler.NewEmployeeHandler(employeeService, logger)
	siteHandler := handler.NewSiteHandler(siteService, templateService, logger)
	phaseHandler := handler.NewPhaseHandler(phaseService, logger)
	taskHandler := handler.NewTaskHandler(taskService, logger)
	workflowHandler := handler.NewWorkflowHandler(workflowService, logger)
	collabHandler := handler.NewCollaborationHandler(todoService, chatService, logger)
	notificationHandler := handler.NewNotificationHandler(notificationService, logger)

	var roomCounter handler.RoomCounter
	if cfg.Hub != nil {
		roomCounter = cfg.Hub
	}
	healthHandler := handler.NewHealthHandler(cfg.DB, cfg.Redis, roomCounter)

	gatherer := cfg.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	metricsHandler := gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// Probes and scrape endpoint, no auth
	r.GET("/health", healthHandler.Health)
	r.GET("/ready", healthHandler.Ready)
	r.GET("/metrics", metricsHandler)

	api := r.Group(cfg.BasePath)
	if cfg.BasePath != "" && cfg.BasePath != "/" {
		api.GET("/health", healthHandler.Health)
		api.GET("/ready", healthHandler.Ready)
		api.GET("/metrics", metricsHandler)
	}

	api.POST("/auth/login", authHandler.Login)

	if cfg.Hub != nil {
		wsHandler := handler.NewWSHandler(authService, chatService, cfg.Hub, cfg.AllowedOrigins, logger)
		api.GET("/ws/phases/:phaseId", wsHandler.HandlePhaseRoom)
	}

	authed := api.Group("")
	authed.Use(middleware.AuthWithValidator(authService))
	authed.Use(middleware.ResolveActor(authService))
	admin := middleware.AdminOnly()
	{
		authed.GET("/auth/me", authHandler.Me)
		authed.PUT("/auth/password", authHandler.ChangePassword)

		authed.GET("/phase-templates", siteHandler.ListPhaseTemplates)

		// Sites
		authed.GET("/sites", siteHandler.ListSites)
		authed.POST("/sites", admin, siteHandler.CreateSite)
		authed.GET("/sites/:siteId", siteHandler.GetSite)
		authed.PUT("/sites/:siteId", admin, siteHandler.UpdateSite)
		authed.DELETE("/sites/:siteId", admin, siteHandler.DeleteSite)

		// Phases
		authed.GET("/sites/:siteId/phases", phaseHandler.ListPhases)
		authed.POST("/sites/:siteId/phases", admin, phaseHandler.CreatePhase)
		authed.GET("/phases/:phaseId", phaseHandler.GetPhase)
		authed.PUT("/phases/:phaseId", admin, phaseHandler.UpdatePhase)
		authed.DELETE("/phases/:phaseId", admin, phaseHandler.DeletePhase)

		// Tasks
		authed.GET("/me/tasks", taskHandler.ListMyTasks)
		authed.GET("/phases/:phaseId/tasks", taskHandler.ListTasks)
		authed.POST("/phases/:phaseId/tasks", admin, taskHandler.CreateTask)
		authed.GET("/tasks/:taskId", taskHandler.GetTask)
		authed.PUT("/tasks/:taskId", admin, taskHandler.UpdateTask)
		authed.DELETE("/tasks/:taskId", admin, taskHandler.DeleteTask)
		authed.POST("/tasks/:taskId/assignees", admin, taskHandler.AssignEmployee)
		authed.DELETE("/tasks/:taskId/assignees/:employeeId", admin, taskHandler.UnassignEmployee)

		// Workflow; the service applies the assignment gate and the admin rule
		for scope, prefix := range map[domain.ScopeType]string{
			domain.ScopeTask:  "/tasks/:taskId",
			domain.ScopePhase: "/phases/:phaseId",
		} {
			authed.POST(prefix+"/progress", workflowHandler.SubmitProgress(scope))
			authed.POST(prefix+"/approve", workflowHandler.Approve(scope))
			authed.POST(prefix+"/reject", workflowHandler.Reject(scope))
			authed.GET(prefix+"/updates", workflowHandler.ListUpdates(scope))

			authed.GET(prefix+"/todos", collabHandler.ListTodos(scope))
			authed.POST(prefix+"/todos", collabHandler.CreateTodo(scope))

			authed.GET(prefix+"/messages", collabHandler.ListMessages(scope))
			authed.POST(prefix+"/messages", collabHandler.PostMessage(scope))
		}
		authed.PATCH("/todos/:todoId", collabHandler.UpdateTodo)
		authed.DELETE("/todos/:todoId", collabHandler.DeleteTodo)

		// Notifications
		notifications := authed.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.GET("/unread-count", notificationHandler.GetUnreadCount)
			notifications.PATCH("/:notificationId/read", notificationHandler.MarkAsRead)
			notifications.POST("/read-all", notificationHandler.MarkAllAsRead)
		}

		if cfg.S3Client != nil {
			attachmentService := service.NewAttachmentService(repos.Attachments, cfg.S3Client, logger)
			attachmentHandler := handler.NewAttachmentHandler(attachmentService, logger)
			authed.POST("/attachments/presigned-url", attachmentHandler.GeneratePresignedURL)
		}

		// Employees
		employees := authed.Group("/employees", admin)
		{
			employees.GET("", employeeHandler.ListEmployees)
			employees.POST("", employeeHandler.CreateEmployee)
			employees.GET("/:employeeId", employeeHandler.GetEmployee)
			employees.PUT("/:employeeId", employeeHandler.UpdateEmployee)
			employees.DELETE("/:employeeId", employeeHandler.DeleteEmployee)
		}
	}

	return r
}
