package v1

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"campus-connect-backend/internal/delivery/http/response"
	"campus-connect-backend/internal/domain"
	"campus-connect-backend/pkg/apperror"
	"campus-connect-backend/pkg/logger"
	"campus-connect-backend/pkg/security"
	"campus-connect-backend/pkg/security/antivirus"

	"github.com/gin-gonic/gin"
)

// multipart overhead allowed on top of the resume itself
const formOverheadBytes = 1 << 20

type StudentProfileHandler struct {
	profileUC      domain.StudentProfileUsecase
	exportUC       domain.ProfileExportUsecase
	scanner        antivirus.Scanner
	resumeMaxBytes int64
}

type StudentProfileHandlerDeps struct {
	ProfileUC      domain.StudentProfileUsecase
	ExportUC       domain.ProfileExportUsecase
	Scanner        antivirus.Scanner
	ResumeMaxBytes int64
	// WriteLimiter wraps create, update and delete
	WriteLimiter gin.HandlerFunc
}

func NewStudentProfileHandler(r *gin.RouterGroup, deps StudentProfileHandlerDeps) {
	handler := &StudentProfileHandler{
		profileUC:      deps.ProfileUC,
		exportUC:       deps.ExportUC,
		scanner:        deps.Scanner,
		resumeMaxBytes: deps.ResumeMaxBytes,
	}
	if handler.scanner == nil {
		handler.scanner = antivirus.NewNoOpScanner()
	}

	writes := []gin.HandlerFunc{}
	if deps.WriteLimiter != nil {
		writes = append(writes, deps.WriteLimiter)
	}

	profiles := r.Group("/student-profiles")
	{
		profiles.GET("", handler.List)
		profiles.GET("/export", handler.Export)
		profiles.GET("/:userId", handler.Get)
		profiles.POST("", append(writes, handler.Create)...)
		profiles.PUT("/:userId", append(writes, handler.Update)...)
		profiles.DELETE("/:userId", append(writes, handler.Delete)...)
	}
}

// Create godoc
// @Summary      Create a student profile
// @Description  Create the full profile aggregate (profile, address, education, experience, achievements, certifications) with an optional resume
// @Tags         student-profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        userId           formData  string  true   "Owning user id"
// @Param        name             formData  string  true   "Full name"
// @Param        email            formData  string  true   "Email"
// @Param        summary          formData  string  false  "Summary"
// @Param        educationLevel   formData  string  false  "Education level"
// @Param        experienceRange  formData  string  false  "Experience range"
// @Param        studentStatus    formData  string  false  "Student status"
// @Param        jobType          formData  string  false  "Desired job type"
// @Param        skills           formData  string  false  "JSON array of skills"
// @Param        address          formData  string  false  "JSON address object"
// @Param        education        formData  string  false  "JSON array of education entries"
// @Param        experience       formData  string  false  "JSON array of experience entries"
// @Param        achievements     formData  string  false  "JSON array of achievements"
// @Param        certifications   formData  string  false  "JSON array of certifications"
// @Param        resume           formData  file    false  "Resume (pdf, doc, docx, txt)"
// @Success      201  {object}  response.Response{data=domain.StudentProfileAggregate}
// @Failure      400  {object}  response.Response
// @Failure      409  {object}  response.Response
// @Failure      413  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /student-profiles [post]
func (h *StudentProfileHandler) Create(c *gin.Context) {
	input, resume, err := h.bindProfile(c)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.Create(c.Request.Context(), input, resume)
	if err != nil {
		c.Error(err)
		return
	}

	h.audit(c, security.EventProfileCreated, profile.UserID)
	response.Success(c, http.StatusCreated, "Student profile created successfully", profile)
}

// Get godoc
// @Summary      Get a student profile
// @Description  Returns the composed aggregate, or null data when the user has no profile
// @Tags         student-profiles
// @Produce      json
// @Param        userId  path      string  true  "Owning user id"
// @Success      200     {object}  response.Response{data=domain.StudentProfileAggregate}
// @Router       /student-profiles/{userId} [get]
func (h *StudentProfileHandler) Get(c *gin.Context) {
	profile, err := h.profileUC.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		c.Error(err)
		return
	}
	if profile == nil {
		response.Success(c, http.StatusOK, "Student profile not found", nil)
		return
	}

	response.Success(c, http.StatusOK, "Student profile retrieved", profile)
}

// List godoc
// @Summary      List student profiles
// @Tags         student-profiles
// @Produce      json
// @Success      200  {object}  response.Response{data=[]domain.StudentProfileAggregate}
// @Router       /student-profiles [get]
func (h *StudentProfileHandler) List(c *gin.Context) {
	profiles, err := h.profileUC.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}

	response.Success(c, http.StatusOK, "Student profiles retrieved", profiles)
}

// Update godoc
// @Summary      Update a student profile
// @Description  Replaces scalar fields and every child collection. Omitting resume keeps the stored one.
// @Tags         student-profiles
// @Accept       multipart/form-data
// @Produce      json
// @Param        userId  path      string  true   "Owning user id"
// @Param        resume  formData  file    false  "Replacement resume"
// @Success      200     {object}  response.Response{data=domain.StudentProfileAggregate}
// @Failure      400     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Failure      500     {object}  response.Response
// @Router       /student-profiles/{userId} [put]
func (h *StudentProfileHandler) Update(c *gin.Context) {
	input, resume, err := h.bindProfile(c)
	if err != nil {
		c.Error(err)
		return
	}

	profile, err := h.profileUC.Update(c.Request.Context(), c.Param("userId"), input, resume)
	if err != nil {
		c.Error(err)
		return
	}

	h.audit(c, security.EventProfileUpdated, profile.UserID)
	response.Success(c, http.StatusOK, "Student profile updated successfully", profile)
}

// Delete godoc
// @Summary      Delete a student profile
// @Description  Deletes the aggregate and its stored resume
// @Tags         student-profiles
// @Produce      json
// @Param        userId  path      string  true  "Owning user id"
// @Success      200     {object}  response.Response
// @Failure      404     {object}  response.Response
// @Router       /student-profiles/{userId} [delete]
func (h *StudentProfileHandler) Delete(c *gin.Context) {
	userID := c.Param("userId")
	if err := h.profileUC.Delete(c.Request.Context(), userID); err != nil {
		c.Error(err)
		return
	}

	h.audit(c, security.EventProfileDeleted, userID)
	response.Success(c, http.StatusOK, "Student profile deleted successfully", nil)
}

// Export godoc
// @Summary      Export student profiles
// @Tags         student-profiles
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        format  query  string  false  "Export format (xlsx, csv). Default: xlsx"
// @Success      200
// @Failure      400  {object}  response.Response
// @Router       /student-profiles/export [get]
func (h *StudentProfileHandler) Export(c *gin.Context) {
	format := c.DefaultQuery("format", "xlsx")

	data, filename, err := h.exportUC.Export(c.Request.Context(), format)
	if err != nil {
		c.Error(err)
		return
	}

	contentType := "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	if strings.EqualFold(format, "csv") {
		contentType = "text/csv"
	}
	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, contentType, data)
}

// ============================================================================
// Binding
// ============================================================================

// bindProfile accepts either a JSON body or the multipart form with
// JSON-encoded sub-fields. Only the multipart form can carry a resume.
func (h *StudentProfileHandler) bindProfile(c *gin.Context) (*domain.ProfileInput, *domain.ResumeUpload, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.resumeMaxBytes+formOverheadBytes)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		var input domain.ProfileInput
		if err := json.NewDecoder(c.Request.Body).Decode(&input); err != nil {
			return nil, nil, bodyError(err)
		}
		return &input, nil, nil
	}

	if err := c.Request.ParseMultipartForm(formOverheadBytes); err != nil {
		if !errors.Is(err, http.ErrNotMultipart) {
			return nil, nil, bodyError(err)
		}
		if err := c.Request.ParseForm(); err != nil {
			return nil, nil, bodyError(err)
		}
	}

	input := &domain.ProfileInput{
		UserID:          c.PostForm("userId"),
		Name:            c.PostForm("name"),
		Email:           c.PostForm("email"),
		Summary:         c.PostForm("summary"),
		EducationLevel:  domain.EducationLevel(strings.TrimSpace(c.PostForm("educationLevel"))),
		ExperienceRange: domain.ExperienceRange(strings.TrimSpace(c.PostForm("experienceRange"))),
		StudentStatus:   domain.StudentStatus(strings.TrimSpace(c.PostForm("studentStatus"))),
		JobType:         domain.JobType(strings.TrimSpace(c.PostForm("jobType"))),
	}

	skills, err := parseSkills(c.PostForm("skills"))
	if err != nil {
		return nil, nil, err
	}
	input.Skills = skills

	fields := []struct {
		name   string
		target any
	}{
		{"address", &input.Address},
		{"education", &input.Education},
		{"experience", &input.Experience},
		{"achievements", &input.Achievements},
		{"certifications", &input.Certifications},
	}
	for _, f := range fields {
		if err := decodeJSONField(f.name, c.PostForm(f.name), f.target); err != nil {
			return nil, nil, err
		}
	}

	resume, err := h.readResume(c)
	if err != nil {
		return nil, nil, err
	}
	return input, resume, nil
}

func (h *StudentProfileHandler) readResume(c *gin.Context) (*domain.ResumeUpload, error) {
	file, err := c.FormFile("resume")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, bodyError(err)
	}
	// Reject by extension before reading any content.
	if err := security.ValidateFileExtension(file.Filename); err != nil {
		return nil, h.invalidResume(c, file.Filename, err.Error())
	}
	if file.Size > h.resumeMaxBytes {
		return nil, apperror.TooLarge("Resume exceeds the maximum allowed size")
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperror.Wrap(http.StatusBadRequest, "Failed to read resume", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, h.resumeMaxBytes+1))
	if err != nil {
		return nil, apperror.Wrap(http.StatusBadRequest, "Failed to read resume", err)
	}
	if int64(len(data)) > h.resumeMaxBytes {
		return nil, apperror.TooLarge("Resume exceeds the maximum allowed size")
	}
	if len(data) == 0 {
		return nil, nil
	}

	if result := security.ValidateResume(file.Filename, data); !result.Valid {
		return nil, h.invalidResume(c, file.Filename, result.Error)
	}

	scan := h.scanner.Scan(c.Request.Context(), file.Filename, bytes.NewReader(data))
	if scan.Error != nil {
		logger.Log.Error("Resume scan failed", "scanner", scan.ScannerName, "file", file.Filename, "error", scan.Error)
		return nil, apperror.Wrap(http.StatusServiceUnavailable, "Resume could not be scanned. Please try again later.", scan.Error)
	}
	if scan.Infected {
		h.rejectUpload(c, file.Filename, "malware detected: "+scan.ThreatName)
		return nil, apperror.Wrap(http.StatusBadRequest, "Resume failed the malware scan", domain.ErrValidation)
	}

	return &domain.ResumeUpload{FileName: file.Filename, Data: data}, nil
}

func (h *StudentProfileHandler) invalidResume(c *gin.Context, filename, reason string) error {
	h.rejectUpload(c, filename, reason)
	return apperror.Wrap(http.StatusBadRequest,
		"Invalid resume file: "+reason+" (allowed: "+strings.Join(security.AllowedExtensions(), ", ")+")",
		domain.ErrValidation)
}

func (h *StudentProfileHandler) rejectUpload(c *gin.Context, filename, reason string) {
	security.DefaultAudit().LogUploadRejected(c.Request.Context(), filename, reason, c.ClientIP(), c.GetString(string(domain.KeyRequestID)))
}

func (h *StudentProfileHandler) audit(c *gin.Context, event security.EventType, userID string) {
	security.DefaultAudit().LogProfileChange(
		c.Request.Context(), event, userID,
		c.ClientIP(), c.GetHeader("User-Agent"), c.GetString(string(domain.KeyRequestID)),
	)
}

// parseSkills accepts a JSON array or, for plain form posts, a comma list.
func parseSkills(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if !strings.HasPrefix(raw, "[") {
		return strings.Split(raw, ","), nil
	}
	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err != nil {
		return nil, apperror.Wrap(http.StatusBadRequest, "Invalid JSON in field skills", errors.Join(domain.ErrValidation, err))
	}
	return skills, nil
}

func decodeJSONField(name, raw string, target any) error {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "null" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), target); err != nil {
		return apperror.Wrap(http.StatusBadRequest, "Invalid JSON in field "+name, errors.Join(domain.ErrValidation, err))
	}
	return nil
}

func bodyError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperror.TooLarge("Request body too large")
	}
	return apperror.Wrap(http.StatusBadRequest, "Invalid request body", errors.Join(domain.ErrValidation, err))
}
