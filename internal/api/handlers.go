package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lunacycle-screening-server/internal/domain"
)

// handleRunScreening triggers a full screening run for a user.
func (s *Server) handleRunScreening(c *gin.Context) {
	userID := c.Param("userID")
	if userID == "" {
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidInput, "user ID is required", "")
		return
	}

	result, err := s.screening.PerformHealthScreening(c.Request.Context(), userID)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}

	s.resultCache.Add(userID, result)
	c.JSON(http.StatusOK, result)
}

// handleGetScreening returns the cached latest screening result, or 404
// when no run has happened within the cache TTL.
func (s *Server) handleGetScreening(c *gin.Context) {
	userID := c.Param("userID")
	if result, ok := s.resultCache.Get(userID); ok {
		c.JSON(http.StatusOK, result)
		return
	}
	s.writeError(c, http.StatusNotFound, domain.ErrCodeNotFound, "no recent screening result, trigger a run first", "")
}

// handleGetPrediction returns the latest persisted prediction.
func (s *Server) handleGetPrediction(c *gin.Context) {
	userID := c.Param("userID")
	p, err := s.screening.LatestPrediction(c.Request.Context(), userID)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// handleListDiagnoses returns all of a user's diagnoses.
func (s *Server) handleListDiagnoses(c *gin.Context) {
	userID := c.Param("userID")
	diagnoses, err := s.screening.ListDiagnoses(c.Request.Context(), userID)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	if diagnoses == nil {
		diagnoses = []*domain.Diagnosis{}
	}
	c.JSON(http.StatusOK, gin.H{"diagnoses": diagnoses, "count": len(diagnoses)})
}

// handleFollowUpDue returns unreviewed diagnoses whose follow-up date
// has passed.
func (s *Server) handleFollowUpDue(c *gin.Context) {
	userID := c.Param("userID")
	due, err := s.screening.GetDiagnosesDueForFollowUp(c.Request.Context(), userID)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	if due == nil {
		due = []*domain.Diagnosis{}
	}
	c.JSON(http.StatusOK, gin.H{"diagnoses": due, "count": len(due)})
}

// handleMarkReviewed transitions a diagnosis to reviewed.
func (s *Server) handleMarkReviewed(c *gin.Context) {
	id := c.Param("id")
	d, err := s.screening.MarkReviewed(c.Request.Context(), id)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	s.resultCache.Remove(d.UserID)
	c.JSON(http.StatusOK, d)
}

// handleDismissDiagnosis dismisses a diagnosis.
func (s *Server) handleDismissDiagnosis(c *gin.Context) {
	id := c.Param("id")
	d, err := s.screening.DeleteDiagnosis(c.Request.Context(), id)
	if err != nil {
		s.writeDomainError(c, err)
		return
	}
	s.resultCache.Remove(d.UserID)
	c.JSON(http.StatusOK, d)
}

// writeDomainError maps domain errors onto HTTP status codes and the
// standardized error payload.
func (s *Server) writeDomainError(c *gin.Context, err error) {
	var (
		insufficient *domain.InsufficientDataError
		invalid      *domain.InvalidSymptomDataError
		concurrent   *domain.ConcurrentModificationError
		persistence  *domain.PersistenceError
	)

	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.writeError(c, http.StatusNotFound, domain.ErrCodeNotFound, err.Error(), "")
	case errors.Is(err, domain.ErrInvalidStatus):
		s.writeError(c, http.StatusConflict, domain.ErrCodeInvalidInput, err.Error(), "")
	case errors.As(err, &insufficient):
		s.writeError(c, http.StatusUnprocessableEntity, domain.ErrCodeInsufficientData, err.Error(), "")
	case errors.As(err, &invalid):
		s.writeError(c, http.StatusBadRequest, domain.ErrCodeInvalidSymptomData, err.Error(), "")
	case errors.As(err, &concurrent):
		s.writeError(c, http.StatusConflict, domain.ErrCodeConcurrentModification, err.Error(), "retry the screening run")
	case errors.As(err, &persistence):
		s.writeError(c, http.StatusServiceUnavailable, domain.ErrCodePersistence, err.Error(), "")
	default:
		s.logger.WithError(err).Error("Unhandled error in API layer")
		s.writeError(c, http.StatusInternalServerError, domain.ErrCodeInternal, "internal error", "")
	}
}

func (s *Server) writeError(c *gin.Context, status int, code, message, details string) {
	requestID, _ := c.Get(requestIDKey)
	rid, _ := requestID.(string)
	c.AbortWithStatusJSON(status, domain.NewAPIError(code, message, details, rid))
}
