package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"tableplot/adapters/excel"
	"tableplot/domain/convert"
	"tableplot/domain/core"
	"tableplot/domain/frame"
	"tableplot/domain/plot"
)

// plotParams are the aesthetic and layer parameters shared by the JSON and
// multipart forms of the plot endpoint.
type plotParams struct {
	X     string `json:"x"`
	Y     string `json:"y"`
	Color string `json:"color"`
	Geom  string `json:"geom"`
	Stat  string `json:"stat"`
}

// plotRequest is the JSON body of POST /api/plots
type plotRequest struct {
	plotParams
	Records []map[string]interface{} `json:"records"`
}

func (a *App) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleBuildPlot builds a plot spec from an uploaded file or JSON records
func (a *App) handleBuildPlot(w http.ResponseWriter, r *http.Request) {
	f, params, err := a.frameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	geom := plot.GeomPoint
	if params.Geom != "" {
		geom, err = plot.ParseGeom(params.Geom)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	p, err := plot.New(f, plot.Aes{X: params.X, Y: params.Y, Color: params.Color})
	if err != nil {
		writeError(w, err)
		return
	}

	var opts []plot.LayerOption
	if params.Stat != "" {
		kind, err := plot.ParseStat(params.Stat)
		if err != nil {
			writeError(w, err)
			return
		}
		opts = append(opts, plot.WithStat(kind))
	}
	if err := p.AddLayer(geom, opts...); err != nil {
		writeError(w, err)
		return
	}

	spec, err := p.Build(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, spec)
}

// handleProfileDataset profiles an uploaded dataset column by column
func (a *App) handleProfileDataset(w http.ResponseWriter, r *http.Request) {
	f, _, err := a.frameFromRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	profiles, err := a.profiler.Profile(f)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"row_count": f.NumRows(),
		"fields":    profiles,
	})
}

// frameFromRequest normalizes the request body into a canonical frame.
// Multipart uploads go through the file reader; JSON bodies go through the
// conversion boundary directly.
func (a *App) frameFromRequest(r *http.Request) (*frame.Frame, plotParams, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "multipart/form-data") {
		return a.frameFromUpload(r)
	}

	var req plotRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, a.config.Server.MaxUploadBytes)).Decode(&req); err != nil {
		return nil, plotParams{}, fmt.Errorf("%w: invalid JSON body: %v", core.ErrConversionFailed, err)
	}
	f, err := convert.ToFrame(req.Records)
	if err != nil {
		return nil, plotParams{}, err
	}
	return f, req.plotParams, nil
}

func (a *App) frameFromUpload(r *http.Request) (*frame.Frame, plotParams, error) {
	if err := r.ParseMultipartForm(a.config.Server.MaxUploadBytes); err != nil {
		return nil, plotParams{}, fmt.Errorf("%w: invalid multipart form: %v", core.ErrConversionFailed, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, plotParams{}, fmt.Errorf("%w: missing file field: %v", core.ErrConversionFailed, err)
	}
	defer file.Close()

	// The reader works from paths, so spool the upload to a temp file with
	// the original extension intact
	ext := filepath.Ext(header.Filename)
	tmp, err := os.CreateTemp("", "tableplot-upload-*"+ext)
	if err != nil {
		return nil, plotParams{}, fmt.Errorf("failed to spool upload: %w", err)
	}
	defer os.Remove(tmp.Name())
	defer tmp.Close()

	if _, err := io.Copy(tmp, file); err != nil {
		return nil, plotParams{}, fmt.Errorf("failed to spool upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, plotParams{}, fmt.Errorf("failed to spool upload: %w", err)
	}

	f, err := excel.NewDataReader(tmp.Name()).Frame()
	if err != nil {
		return nil, plotParams{}, err
	}

	params := plotParams{
		X:     r.FormValue("x"),
		Y:     r.FormValue("y"),
		Color: r.FormValue("color"),
		Geom:  r.FormValue("geom"),
		Stat:  r.FormValue("stat"),
	}
	return f, params, nil
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("[ui] failed to encode response: %v", err)
	}
}

// writeError maps domain errors to HTTP statuses: usage errors are 400,
// everything else 500.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if core.IsUnsupportedInputError(err) || core.IsPlotError(err) || core.IsFrameError(err) ||
		core.IsConversionError(err) {
		status = http.StatusBadRequest
	}
	log.Printf("[ui] request failed (%d): %v", status, err)
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
