package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"peppolsheet/internal/apierror"
	"peppolsheet/internal/dto"
	"peppolsheet/internal/middleware"
	"peppolsheet/internal/service"
)

var validate = validator.New()

func init() {
	// report fields by their JSON name so messages match what the caller sent
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate strictly decodes the JSON body and runs validator tags.
// Returns false and writes a 400 if either step fails; the caller should
// return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := dto.DecodeStrict(c.Request.Body, req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewValidationFailure("invalid request body", []string{err.Error()}, nil))
		return false
	}
	if errs := validationMessages(validate.Struct(req)); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, apierror.NewValidationFailure("invalid request", errs, nil))
		return false
	}
	return true
}

// bindQuery is bindAndValidate for query strings.
func bindQuery(c *gin.Context, q interface{}) bool {
	if err := c.ShouldBindQuery(q); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+err.Error()))
		return false
	}
	if errs := validationMessages(validate.Struct(q)); len(errs) > 0 {
		c.JSON(http.StatusBadRequest, apierror.New("invalid query: "+strings.Join(errs, "; ")))
		return false
	}
	return true
}

func validationMessages(err error) []string {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []string{err.Error()}
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			out = append(out, fe.Field()+" is required")
		case "oneof":
			out = append(out, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "gt":
			out = append(out, fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param()))
		case "min":
			out = append(out, fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param()))
		case "max":
			out = append(out, fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param()))
		case "email":
			out = append(out, fe.Field()+" must be a valid email address")
		default:
			out = append(out, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return out
}

// callerOf builds the acting caller from the JWT claims. Routes using it sit
// behind JWTAuth and RequireTenant.
func callerOf(c *gin.Context) service.Caller {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return service.Caller{}
	}
	return service.Caller{TenantID: claims.TenantID(), UserID: claims.UserID()}
}
