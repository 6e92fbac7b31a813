package api

import (
	"fmt"
	"net/http"

	"alcyxob/coaching-api/internal/domain"
	"alcyxob/coaching-api/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler serves profiles and the coach/athlete relationship.
type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type UpdateProfileRequest struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
}

func (h *UserHandler) respondUser(c *gin.Context, code int, user *domain.User) {
	c.JSON(code, MapUserToResponse(user, h.userService.ProfilePictureURL(c.Request.Context(), user)))
}

func (h *UserHandler) respondUsers(c *gin.Context, users []domain.User) {
	resp := make([]UserResponse, len(users))
	for i := range users {
		resp[i] = MapUserToResponse(&users[i], h.userService.ProfilePictureURL(c.Request.Context(), &users[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Tags Users
// @Produce json
// @Success 200 {object} UserResponse
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	user, err := h.userService.GetProfile(c.Request.Context(), caller.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update name and email
// @Tags Users
// @Accept json
// @Produce json
// @Param body body UpdateProfileRequest true "Profile"
// @Success 200 {object} UserResponse
// @Failure 409 {object} gin.H "Email already in use"
// @Router /users/profile [put]
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), caller.ID, req.FullName, req.Email)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, user)
}

// UpdateProfilePicture godoc
// @Summary Upload a profile picture
// @Description Multipart form with a "picture" image file, at most 5 MB.
// @Tags Users
// @Accept multipart/form-data
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 400 {object} gin.H "Not an image"
// @Failure 413 {object} gin.H "File too large"
// @Router /users/profile/picture [put]
func (h *UserHandler) UpdateProfilePicture(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("picture")
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "A picture file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	defer file.Close()

	user, err := h.userService.UpdateProfilePicture(c.Request.Context(), caller.ID, service.MediaFile{
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Body:        file,
	})
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, user)
}

// GetMyCoach godoc
// @Summary Get the authenticated athlete's coach
// @Tags Users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 404 {object} gin.H "No coach linked"
// @Router /users/me/coach [get]
func (h *UserHandler) GetMyCoach(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	coach, err := h.userService.GetMyCoach(c.Request.Context(), caller.ID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, coach)
}

// SearchAthlete godoc
// @Summary Find an athlete by email
// @Tags Users
// @Produce json
// @Param email path string true "Athlete email"
// @Success 200 {object} UserResponse
// @Router /users/search/{email} [get]
func (h *UserHandler) SearchAthlete(c *gin.Context) {
	athlete, err := h.userService.SearchAthleteByEmail(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, athlete)
}

// GetAthletes godoc
// @Summary List the athletes linked to a coach
// @Tags Users
// @Produce json
// @Param id path string true "Coach ID"
// @Success 200 {array} UserResponse
// @Router /users/athletes/{id} [get]
func (h *UserHandler) GetAthletes(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	coachID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	athletes, err := h.userService.GetAthletes(c.Request.Context(), caller, coachID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUsers(c, athletes)
}

// GetAthlete godoc
// @Summary Get one athlete (their coach or themselves)
// @Tags Users
// @Produce json
// @Param athleteId path string true "Athlete ID"
// @Success 200 {object} UserResponse
// @Router /users/athlete/{athleteId} [get]
func (h *UserHandler) GetAthlete(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	athleteID, ok := parseIDParam(c, "athleteId")
	if !ok {
		return
	}
	athlete, err := h.userService.GetAthlete(c.Request.Context(), caller, athleteID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, athlete)
}

// LinkCoach godoc
// @Summary Link an athlete to the authenticated coach
// @Tags Users
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 200 {object} UserResponse
// @Failure 409 {object} gin.H "Athlete already has another coach"
// @Router /users/athletes/{id}/link-coach [put]
func (h *UserHandler) LinkCoach(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	athleteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	athlete, err := h.userService.LinkCoach(c.Request.Context(), caller.ID, athleteID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, athlete)
}

// UnlinkCoach godoc
// @Summary Unlink an athlete from the authenticated coach
// @Tags Users
// @Produce json
// @Param id path string true "Athlete ID"
// @Success 200 {object} UserResponse
// @Router /users/athletes/{id}/coach [delete]
func (h *UserHandler) UnlinkCoach(c *gin.Context) {
	caller, ok := getCaller(c)
	if !ok {
		return
	}
	athleteID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	athlete, err := h.userService.UnlinkCoach(c.Request.Context(), caller.ID, athleteID)
	if err != nil {
		respondWithServiceError(c, err)
		return
	}
	h.respondUser(c, http.StatusOK, athlete)
}
