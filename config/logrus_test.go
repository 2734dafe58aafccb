package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func captureLogger() (*logrus.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(&buf)
	return logger, &buf
}

func TestLogErrorEmitsStructuredFields(t *testing.T) {
	logger, buf := captureLogger()

	LogError(logger, "inventory", "ProjectMaterials", "stock reconciliation query", 42, errors.New("boom"))

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["module"] != "inventory" || entry["funcName"] != "ProjectMaterials" {
		t.Errorf("missing module/funcName fields: %v", entry)
	}
	if entry["msg"] != "boom" {
		t.Errorf("msg = %v, want boom", entry["msg"])
	}
	if entry["data"] != float64(42) {
		t.Errorf("data = %v, want 42", entry["data"])
	}
}

func TestLogErrorWithoutData(t *testing.T) {
	logger, buf := captureLogger()

	LogError(logger, "auth", "Login", "fetch user", nil, errors.New("db down"))

	out := buf.String()
	if strings.Contains(out, `"data"`) {
		t.Errorf("nil data should be omitted: %s", out)
	}
	if !strings.Contains(out, `"db down"`) {
		t.Errorf("error message missing: %s", out)
	}
}
