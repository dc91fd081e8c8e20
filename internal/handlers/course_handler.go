package handlers

import (
	"net/http"

	"cutordie_backend/internal/auth"
	"cutordie_backend/internal/middleware"
	"cutordie_backend/internal/services"
	"cutordie_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type CourseHandler struct {
	*BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(base *BaseHandler, courseService services.CourseService) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   base,
		courseService: courseService,
	}
}

// RegisterRoutes wires the catalog. Reads are public; writes need the
// matching catalog capability (admin and dev write, only admin deletes).
func (h *CourseHandler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	courses := rg.Group("/courses")
	{
		courses.GET("", h.List)
		courses.GET("/:id", h.Get)
	}

	manage := rg.Group("/courses")
	manage.Use(authMW)
	{
		manage.POST("", middleware.RequirePermission(auth.PermCoursesWrite), h.Create)
		manage.PATCH("/:id", middleware.RequirePermission(auth.PermCoursesWrite), h.Update)
		manage.DELETE("/:id", middleware.RequirePermission(auth.PermCoursesDelete), h.Delete)
	}
}

func (h *CourseHandler) List(c *gin.Context) {
	var query dto.CourseListQuery
	if !h.BindAndValidate_Query(c, &query) {
		return
	}

	db := h.GetDB(c)
	response, err := h.courseService.ListCourses(c.Request.Context(), db, &query)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, response)
}

func (h *CourseHandler) Get(c *gin.Context) {
	db := h.GetDB(c)
	course, err := h.courseService.GetCourse(c.Request.Context(), db, c.Param("id"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandler) Create(c *gin.Context) {
	var req dto.CreateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	course, err := h.courseService.CreateCourse(c.Request.Context(), db, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"course": course})
}

func (h *CourseHandler) Update(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	db := h.GetDB(c)
	course, err := h.courseService.UpdateCourse(c.Request.Context(), db, c.Param("id"), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"course": course})
}

func (h *CourseHandler) Delete(c *gin.Context) {
	db := h.GetDB(c)
	if err := h.courseService.DeleteCourse(c.Request.Context(), db, c.Param("id")); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
