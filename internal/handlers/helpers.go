package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"epicmail-service/internal/validation"
)

// bindStrict reads the body, decodes it as a JSON object and enforces the
// exact-field-count contract. On failure it writes the response itself.
func bindStrict(c *gin.Context, names ...string) (validation.Fields, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your request should be in json format"})
		return nil, false
	}

	fields, verr := validation.DecodeObject(body)
	if verr != nil {
		rejectValidation(c, verr)
		return nil, false
	}
	if verr := fields.Require(names...); verr != nil {
		rejectValidation(c, verr)
		return nil, false
	}
	return fields, true
}

func rejectValidation(c *gin.Context, err *validation.Error) {
	c.JSON(validationStatus(err), gin.H{"error": err.Message})
}

// validationStatus maps too many fields to 414 and format failures to 417;
// every other shape problem is a 400. Clients depend on these codes.
func validationStatus(err *validation.Error) int {
	switch err.Kind {
	case validation.KindTooManyFields:
		return http.StatusRequestURITooLong
	case validation.KindFormat:
		return http.StatusExpectationFailed
	default:
		return http.StatusBadRequest
	}
}

func parseIDParam(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
