package api

import (
	"encoding/json"
	"net/http"
	"os"

	"go.uber.org/zap"

	"github.com/debtcoder/debtcoder/internal/logging"
	"github.com/debtcoder/debtcoder/internal/metrics"
	"github.com/debtcoder/debtcoder/internal/store"
)

// maxUploadMemory bounds the in-memory portion of multipart parsing;
// larger files spill to temp files.
const maxUploadMemory = 32 << 20

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid multipart body: "+err.Error())
		return
	}
	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		s.sendError(w, http.StatusBadRequest, "At least one file is required")
		return
	}

	saved := make([]store.WriteSummary, 0, len(files))
	for _, header := range files {
		f, err := header.Open()
		if err != nil {
			s.sendError(w, http.StatusBadRequest, "failed to open upload "+header.Filename+": "+err.Error())
			return
		}
		summary, err := s.store.SaveUpload(header.Filename, f)
		f.Close()
		if err != nil {
			metrics.RecordUpload(0, false)
			s.sendError(w, http.StatusInternalServerError, "failed to write file: "+err.Error())
			return
		}
		metrics.RecordUpload(summary.BytesWritten, true)
		logging.Info("file uploaded",
			zap.String("filename", summary.Filename),
			zap.Int64("bytes", summary.BytesWritten))
		saved = append(saved, summary)
	}
	s.sendJSON(w, http.StatusOK, saved)
}

func (s *Server) handleUploadsList(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListUploads()
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, UploadListingResponse{Files: items})
}

func (s *Server) handleUploadFetch(w http.ResponseWriter, r *http.Request) {
	path := s.store.NamePath(r.PathValue("filename"))
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		s.sendError(w, http.StatusNotFound, "File not found")
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="`+info.Name()+`"`)
	http.ServeFile(w, r, path)
}

func (s *Server) handleUploadText(w http.ResponseWriter, r *http.Request) {
	content, err := s.store.ReadText(s.store.NamePath(r.PathValue("filename")))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, TextFilePayload{Content: content})
}

func (s *Server) handleUploadPut(w http.ResponseWriter, r *http.Request) {
	var payload TextFilePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	summary, err := s.store.WriteText(s.store.NamePath(r.PathValue("filename")), payload.Content)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, summary)
}

func (s *Server) handleUploadDelete(w http.ResponseWriter, r *http.Request) {
	summary, err := s.store.Delete(s.store.NamePath(r.PathValue("filename")))
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	logging.Info("file deleted",
		zap.String("filename", summary.Filename),
		zap.Int64("bytes", summary.BytesWritten))
	s.sendJSON(w, http.StatusOK, summary)
}

func (s *Server) handleUploadRename(w http.ResponseWriter, r *http.Request) {
	var payload RenamePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	src := s.store.NamePath(r.PathValue("filename"))
	dst := s.store.NamePath(payload.Target)
	summary, err := s.store.Rename(src, dst)
	if err != nil {
		s.sendStoreError(w, err)
		return
	}
	s.sendJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	result := s.interp.Run(req.Command)
	s.sendJSON(w, http.StatusOK, result)
}
