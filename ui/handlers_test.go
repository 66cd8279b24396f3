package ui

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tableplot/domain/plot"
	"tableplot/internal/config"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	return NewApp(cfg)
}

func postJSON(t *testing.T, app *App, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestBuildPlot_JSONRecords(t *testing.T) {
	app := newTestApp(t)

	rec := postJSON(t, app, "/api/plots", map[string]interface{}{
		"x":    "x",
		"y":    "y",
		"geom": "line",
		"records": []map[string]interface{}{
			{"x": 1, "y": 10},
			{"x": 2, "y": 20},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var spec plot.PlotSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	require.Len(t, spec.Layers, 1)
	assert.Equal(t, plot.GeomLine, spec.Layers[0].Geom)
	assert.Equal(t, 2, spec.Layers[0].RowCount)
}

func TestBuildPlot_UnsupportedBodyIsBadRequest(t *testing.T) {
	app := newTestApp(t)

	// No records at all: nothing tabular to convert
	rec := postJSON(t, app, "/api/plots", map[string]interface{}{
		"x": "x",
		"y": "y",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildPlot_UnknownGeomIsBadRequest(t *testing.T) {
	app := newTestApp(t)

	rec := postJSON(t, app, "/api/plots", map[string]interface{}{
		"x":    "x",
		"y":    "y",
		"geom": "sparkle",
		"records": []map[string]interface{}{
			{"x": 1, "y": 10},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBuildPlot_BadAestheticIsBadRequest(t *testing.T) {
	app := newTestApp(t)

	rec := postJSON(t, app, "/api/plots", map[string]interface{}{
		"x": "x",
		"y": "missing_column",
		"records": []map[string]interface{}{
			{"x": 1, "y": 10},
		},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "missing_column")
}

func TestBuildPlot_MultipartUpload(t *testing.T) {
	app := newTestApp(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "data.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("x,y\n1,10\n2,20\n3,30\n"))
	require.NoError(t, err)
	require.NoError(t, writer.WriteField("x", "x"))
	require.NoError(t, writer.WriteField("y", "y"))
	require.NoError(t, writer.WriteField("geom", "point"))
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/plots", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var spec plot.PlotSpec
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &spec))
	require.Len(t, spec.Layers, 1)
	assert.Equal(t, 3, spec.Layers[0].RowCount)
}

func TestProfileDataset_JSONRecords(t *testing.T) {
	app := newTestApp(t)

	rec := postJSON(t, app, "/api/datasets/profile", map[string]interface{}{
		"records": []map[string]interface{}{
			{"score": 1, "label": "a"},
			{"score": 2, "label": "b"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var response struct {
		RowCount int `json:"row_count"`
		Fields   []struct {
			Name     string `json:"name"`
			DataType string `json:"data_type"`
		} `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, 2, response.RowCount)
	require.Len(t, response.Fields, 2)
	assert.Equal(t, "label", response.Fields[0].Name)
	assert.Equal(t, "score", response.Fields[1].Name)
}

func TestBuildPlot_InvalidJSONBody(t *testing.T) {
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/plots", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
