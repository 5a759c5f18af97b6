package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/homedash/homedash/app/cfg"
	"github.com/homedash/homedash/app/news"
	"github.com/homedash/homedash/app/todo"
	"github.com/homedash/homedash/app/weather"
	"github.com/homedash/homedash/app/widget"
)

type Handler struct {
	newsSvc    *news.Service
	weatherSvc *weather.Service
	todoSvc    *todo.Service
	widgets    *widget.Manager
	startedAt  time.Time
}

func NewHandler(newsSvc *news.Service, weatherSvc *weather.Service,
	todoSvc *todo.Service, widgets *widget.Manager) *Handler {
	return &Handler{
		newsSvc:    newsSvc,
		weatherSvc: weatherSvc,
		todoSvc:    todoSvc,
		widgets:    widgets,
		startedAt:  time.Now(),
	}
}

// GetNews runs an aggregation pass; ?refresh=true bypasses the cache.
func (h *Handler) GetNews(c *gin.Context) {
	forceRefresh := c.Query("refresh") == "true"

	articles := h.newsSvc.GetLatestNews(c.Request.Context(), forceRefresh)
	if articles == nil {
		articles = []news.Article{}
	}

	c.JSON(http.StatusOK, articles)
}

func (h *Handler) GetNewsStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.newsSvc.Status())
}

func (h *Handler) ListFeeds(c *gin.Context) {
	feeds := h.newsSvc.GetFeeds()

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) AddFeed(c *gin.Context) {
	var body struct {
		URL string `json:"url"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || strings.TrimSpace(body.URL) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing feed URL"})
		return
	}

	if !h.newsSvc.AddFeed(c.Request.Context(), strings.TrimSpace(body.URL)) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Feed rejected: duplicate, unreachable or unrecognized format"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": body.URL})
}

func (h *Handler) RemoveFeed(c *gin.Context) {
	url := c.Query("url")
	if url == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing url parameter"})
		return
	}

	if !h.newsSvc.RemoveFeed(url) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) RefreshNews(c *gin.Context) {
	updated := h.newsSvc.RefreshAllFeeds(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

func (h *Handler) ClearNewsCache(c *gin.Context) {
	h.newsSvc.ClearCache()
	c.Status(http.StatusNoContent)
}

func (h *Handler) SetNewsCacheTTL(c *gin.Context) {
	var body struct {
		Seconds int `json:"seconds"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Seconds <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid seconds"})
		return
	}

	h.newsSvc.SetCacheTTL(time.Duration(body.Seconds) * time.Second)
	c.JSON(http.StatusOK, gin.H{"cache_ttl_seconds": h.newsSvc.Status().CacheTTLSeconds})
}

func (h *Handler) GetCurrentWeather(c *gin.Context) {
	ctx := c.Request.Context()

	if city := c.Query("city"); city != "" {
		data, err := h.weatherSvc.CurrentByCity(ctx, city, c.Query("state"), c.Query("country"))
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json", []byte(data))
		return
	}

	lat, lon, ok := coordParams(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide city or lat/lon parameters"})
		return
	}

	data, err := h.weatherSvc.CurrentByCoords(ctx, lat, lon)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", []byte(data))
}

func (h *Handler) GetForecast(c *gin.Context) {
	lat, lon, ok := coordParams(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide lat/lon parameters"})
		return
	}

	count, _ := strconv.Atoi(c.Query("cnt"))

	data, err := h.weatherSvc.Forecast(c.Request.Context(), lat, lon, count)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", []byte(data))
}

func (h *Handler) Geocode(c *gin.Context) {
	location := c.Query("q")
	if location == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing q parameter"})
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	data, err := h.weatherSvc.Geocode(c.Request.Context(), location, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", []byte(data))
}

func (h *Handler) ListTodos(c *gin.Context) {
	query := todo.ListQuery{
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		SortBy:    c.Query("sort"),
		Ascending: c.Query("order") == "asc",
	}
	if statuses := c.Query("status"); statuses != "" {
		query.Statuses = strings.Split(statuses, ",")
	}
	if priorities := c.Query("priority"); priorities != "" {
		query.Priorities = strings.Split(priorities, ",")
	}
	query.Limit, _ = strconv.Atoi(c.Query("limit"))
	query.Offset, _ = strconv.Atoi(c.Query("offset"))

	items, err := h.todoSvc.List(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if items == nil {
		items = []todo.Item{}
	}

	c.JSON(http.StatusOK, gin.H{
		"todos": items,
		"total": len(items),
	})
}

func (h *Handler) AddTodo(c *gin.Context) {
	var input todo.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.todoSvc.Add(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (h *Handler) GetTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	item, err := h.todoSvc.Get(id)
	if err != nil {
		slog.Error("Database error", "operation", "get_todo", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) UpdateTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	var input todo.Input
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	item, err := h.todoSvc.Update(id, input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	deleted, err := h.todoSvc.Delete(id)
	if err != nil {
		slog.Error("Database error", "operation", "delete_todo", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) CompleteTodo(c *gin.Context) {
	id, ok := todoID(c)
	if !ok {
		return
	}

	item, err := h.todoSvc.Complete(id)
	if err != nil {
		slog.Error("Database error", "operation", "complete_todo", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if item == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Todo not found"})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) GetTodoStats(c *gin.Context) {
	stats, err := h.todoSvc.Stats()
	if err != nil {
		slog.Error("Database error", "operation", "todo_stats", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) GetTodoCategories(c *gin.Context) {
	categories, err := h.todoSvc.Categories()
	if err != nil {
		slog.Error("Database error", "operation", "todo_categories", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if categories == nil {
		categories = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) ListWidgets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"widgets": h.widgets.IDs(),
		"active":  h.widgets.ActiveIDs(),
	})
}

func (h *Handler) GetWidgetData(c *gin.Context) {
	data, err := h.widgets.Data(c.Request.Context(), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.Data(http.StatusOK, "application/json", data)
}

func (h *Handler) SetWidgetConfig(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.widgets.SetConfig(c.Request.Context(), c.Param("id"), body); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   cfg.Get().Version,
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"uptime":  time.Since(h.startedAt).String(),
		"version": cfg.Get().Version,
		"news":    h.newsSvc.Status(),
		"weather": h.weatherSvc.Status(),
		"widgets": h.widgets.ActiveIDs(),
	})
}

func coordParams(c *gin.Context) (float64, float64, bool) {
	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return 0, 0, false
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, false
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, false
	}

	return lat, lon, true
}

func todoID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid todo id"})
		return 0, false
	}
	return id, true
}
