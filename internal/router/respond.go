package router

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	gameerrors "citytycoon-backend/internal/errors"
)

// envelope is the single response shape every endpoint returns (spec.md
// §6: "every response carries a top-level success boolean and either data
// or error"), replacing the teacher's per-endpoint ad-hoc JSON shape with
// one builder the Router owns (spec.md §9 "Design Notes").
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *errorBody  `json:"error,omitempty"`
}

type errorBody struct {
	Kind       string `json:"kind"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retry_after_seconds,omitempty"`
}

// ok writes a 200 success envelope.
func ok(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

// created writes a 201 success envelope.
func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope{Success: true, Data: data})
}

// fail writes a failure envelope, translating err into the status/kind
// taxonomy of spec.md §7 via gameerrors.AsGameError — handlers never
// construct an HTTP status themselves.
func fail(c *gin.Context, err error) {
	ge := gameerrors.AsGameError(err)
	if ge.Kind == gameerrors.KindRateLimited {
		c.Header("Retry-After", strconv.Itoa(ge.RetryAfter))
	}
	c.JSON(ge.HTTPStatus(), envelope{
		Success: false,
		Error:   &errorBody{Kind: string(ge.Kind), Message: ge.Message, RetryAfter: ge.RetryAfter},
	})
}

// badRequest writes a 400 invalid_request envelope for shape/binding
// failures, which never reach an Action-Layer/Auth-Core function.
func badRequest(c *gin.Context, message string) {
	fail(c, gameerrors.New(gameerrors.KindInvalidRequest, message))
}
