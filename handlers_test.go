package main

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/obradata/obras_backend/models"
	"github.com/obradata/obras_backend/services"
	"github.com/obradata/obras_backend/utils"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testApp() *app {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return &app{logger: logger}
}

func TestRespondErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", &utils.NotFoundError{Entity: "project", ID: 7}, http.StatusNotFound},
		{"wrapped not found", utils.ErrorRecordNotFound, http.StatusNotFound},
		{"validation", &utils.ValidationError{Message: "too much"}, http.StatusUnprocessableEntity},
		{"bad credentials", services.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	a := testApp()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			a.respondError(c, tc.err)
			if w.Code != tc.want {
				t.Fatalf("status = %d, want %d", w.Code, tc.want)
			}
		})
	}
}

func TestRespondErrorIncludesOverage(t *testing.T) {
	a := testApp()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	a.respondError(c, &utils.ValidationError{
		Message:   "cap exceeded",
		Attempted: decimal.NewFromInt(11),
		Limit:     decimal.NewFromInt(10),
	})

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	body := w.Body.String()
	for _, key := range []string{"attempted", "limit", "overage"} {
		if !strings.Contains(body, key) {
			t.Errorf("body missing %q: %s", key, body)
		}
	}
}

func TestIdParamRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", "1.5"} {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Params = gin.Params{{Key: "id", Value: raw}}

		if _, ok := idParam(c); ok {
			t.Errorf("idParam(%q) accepted", raw)
		}
		if w.Code != http.StatusBadRequest {
			t.Errorf("idParam(%q) status = %d, want 400", raw, w.Code)
		}
	}
}

func TestBindStrictRejectsUnknownFields(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/projects/1",
		strings.NewReader(`{"name": "ok", "nmae": "typo"}`))

	var patch models.ProjectPatch
	if bindStrict(c, &patch) {
		t.Fatal("bindStrict accepted a payload with an unknown field")
	}
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestBindStrictAcceptsPartialPatch(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPut, "/api/projects/1",
		strings.NewReader(`{"status": "in_progress"}`))

	var patch models.ProjectPatch
	if !bindStrict(c, &patch) {
		t.Fatalf("bindStrict rejected a valid partial patch: %s", w.Body.String())
	}
	if patch.Status == nil || *patch.Status != models.ProjectStatusInProgress {
		t.Fatalf("status not decoded: %+v", patch)
	}
	if patch.Name != nil {
		t.Fatal("untouched field should stay nil")
	}
}
