package handler

import (
	"errors"
	"net/http"
	"time"

	"run-planner/internal/fileio"
	"run-planner/internal/planner/importer"
	"run-planner/internal/planner/model"
)

type importResponse struct {
	importer.Report
	Saved []model.ServiceStop `json:"saved,omitempty"`
}

// Import handles POST /imports: multipart "file", optional "header_row"
// (1-based) and "save" to persist every ready stop.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := h.logger(r)

	if err := r.ParseMultipartForm(h.MaxUpload); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeError(w, http.StatusRequestEntityTooLarge, "upload too large")
			return
		}
		writeError(w, http.StatusBadRequest, "bad multipart form: "+err.Error())
		return
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file: "+err.Error())
		return
	}
	defer file.Close()

	if !fileio.Supported(hdr.Filename) {
		writeError(w, http.StatusUnsupportedMediaType, "unsupported file type: "+hdr.Filename)
		return
	}
	sheet, err := fileio.ReadSheet(file, hdr.Filename, atoi(r.FormValue("header_row"), 1))
	if err != nil {
		if errors.Is(err, fileio.ErrUnsupported) {
			h.fail(w, r, err)
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read "+hdr.Filename+": "+err.Error())
		return
	}

	rep, err := h.Importer.Import(r.Context(), sheet)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	resp := importResponse{Report: rep}

	if toBool(r.FormValue("save"), false) {
		var ready []model.ServiceStop
		for _, s := range rep.Stops {
			if s.Ready {
				ready = append(ready, s.Stop)
			}
		}
		if len(ready) > 0 {
			if resp.Saved, err = h.Stops.SaveStops(r.Context(), ready); err != nil {
				h.fail(w, r, err)
				return
			}
		}
	}

	log.Info().
		Str("file", hdr.Filename).
		Str("batch", rep.BatchID).
		Int("saved", len(resp.Saved)).
		Dur("elapsed", time.Since(start)).
		Msg("import handled")
	writeJSON(w, http.StatusOK, resp)
}
