package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/pticket/helpdesk/internal/api/http/handlers"
	"github.com/pticket/helpdesk/internal/auth"
	"github.com/pticket/helpdesk/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Tasks          *handlers.TasksHandler
	Notifications  *handlers.NotificationsHandler
	Org            *handlers.OrgHandler
	Statistics     *handlers.StatisticsHandler
	Inventory      *handlers.InventoryHandler
	Calendar       *handlers.CalendarHandler
	EmailSettings  *handlers.EmailSettingsHandler
	Attachments    *handlers.AttachmentsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Post("/auth/login", cfg.Auth.Login)
	app.Post("/auth/admin/login", cfg.Auth.LoginAdmin)

	api := app.Group("", cfg.AuthMiddleware.Handle, auth.RequireAuthenticated())
	api.Get("/auth/me", cfg.Auth.Me)

	tickets := api.Group("/tickets")
	tickets.Post("", cfg.Tickets.Create)
	tickets.Get("", cfg.Tickets.List)
	tickets.Get("/pending-approvals", cfg.Tickets.PendingApprovals)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Post("/:id/replies", cfg.Tickets.AddReply)
	tickets.Patch("/:id/status", cfg.Tickets.UpdateStatus)
	tickets.Patch("/:id/priority", cfg.Tickets.UpdatePriority)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/access-decision", cfg.Tickets.DecideAccess)
	tickets.Get("/:id/history", cfg.Tickets.History)

	tasks := api.Group("/tasks")
	tasks.Post("", cfg.Tasks.Create)
	tasks.Get("", cfg.Tasks.List)
	tasks.Get("/:id", cfg.Tasks.Get)
	tasks.Post("/:id/replies", cfg.Tasks.AddReply)
	tasks.Patch("/:id/status", cfg.Tasks.UpdateStatus)
	tasks.Post("/:id/extensions", cfg.Tasks.RequestExtension)
	tasks.Get("/:id/extensions", cfg.Tasks.ListExtensions)
	api.Post("/extensions/:id/decision", cfg.Tasks.DecideExtension)

	notifications := api.Group("/notifications")
	notifications.Get("", cfg.Notifications.List)
	notifications.Get("/unread-count", cfg.Notifications.UnreadCount)
	notifications.Post("/read-all", cfg.Notifications.MarkAllRead)
	notifications.Post("/:id/read", cfg.Notifications.MarkRead)
	notifications.Delete("", cfg.Notifications.DeleteAll)
	notifications.Delete("/:id", cfg.Notifications.Delete)

	api.Get("/branches", cfg.Org.ListBranches)
	api.Get("/departments", cfg.Org.ListDepartments)
	api.Get("/departments/ticket-receivers", cfg.Org.ListTicketReceivers)
	api.Get("/departments/:id/categories", cfg.Org.ListCategories)
	api.Get("/technicians", cfg.Org.ListTechnicians)

	statistics := api.Group("/statistics", auth.RequireRole(domain.RoleITManager))
	statistics.Get("", cfg.Statistics.Report)
	statistics.Get("/export", cfg.Statistics.Export)

	inventory := api.Group("/inventory")
	inventory.Post("/categories", cfg.Inventory.CreateCategory)
	inventory.Patch("/categories/:id/parent", cfg.Inventory.MoveCategory)
	inventory.Get("/categories/:id/items", cfg.Inventory.ListItems)
	inventory.Get("/departments/:id/categories", cfg.Inventory.ListCategories)
	inventory.Post("/items", cfg.Inventory.CreateItem)
	inventory.Get("/items/:id", cfg.Inventory.Get)
	inventory.Post("/items/:id/assign", cfg.Inventory.Assign)
	inventory.Post("/items/:id/return", cfg.Inventory.Return)

	calendar := api.Group("/calendar")
	calendar.Get("/today", cfg.Calendar.Today)
	calendar.Get("/convert", cfg.Calendar.Convert)
	calendar.Get("/month", cfg.Calendar.Month)
	calendar.Get("/:date", cfg.Calendar.Day)

	attachments := api.Group("/attachments")
	attachments.Post("", cfg.Attachments.Upload)
	attachments.Get("/*", cfg.Attachments.Download)

	admin := api.Group("/admin", auth.RequireRole(domain.RoleITManager))
	admin.Post("/branches", cfg.Org.CreateBranch)
	admin.Put("/branches/:id", cfg.Org.UpdateBranch)
	admin.Post("/departments", cfg.Org.CreateDepartment)
	admin.Put("/departments/:id", cfg.Org.UpdateDepartment)
	admin.Post("/categories", cfg.Org.CreateCategory)
	admin.Put("/categories/:id", cfg.Org.UpdateCategory)
	admin.Post("/employees", cfg.Org.CreateEmployee)
	admin.Put("/employees/:id", cfg.Org.UpdateEmployee)
	admin.Delete("/employees/:id", cfg.Org.DeleteEmployee)
	admin.Get("/employees", cfg.Org.ListEmployees)
	admin.Delete("/calendar/month-cache", cfg.Calendar.ClearMonthCache)
	admin.Get("/email-settings", cfg.EmailSettings.Get)
	admin.Put("/email-settings", cfg.EmailSettings.Update)
	admin.Post("/email-settings/test", cfg.EmailSettings.Test)
}
