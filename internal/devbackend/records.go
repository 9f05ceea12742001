package devbackend

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/vbonduro/gardenbook/internal/photostore"
	"github.com/vbonduro/gardenbook/internal/store"
)

const (
	maxJSONBody   = 1 << 20
	maxUploadSize = 50 * 1024 * 1024 // 50 MB
)

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	q := r.URL.Query()
	page := queryInt(q.Get("page"), 1)
	perPage := queryInt(q.Get("perPage"), 30)

	records, total, err := s.records.List(r.Context(), collection, page, perPage, q.Get("sort"))
	if errors.Is(err, store.ErrInvalidSort) {
		writeError(w, http.StatusBadRequest, "Something went wrong while processing your request. Invalid sort expression.")
		return
	}
	if err != nil {
		s.logger.Error("list records failed", "collection", collection, "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong while processing your request.")
		return
	}

	items := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		items = append(items, recordJSON(rec))
	}
	if page < 1 {
		page = 1
	}
	totalPages := 0
	if perPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(perPage)))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"page":       page,
		"perPage":    perPage,
		"totalItems": total,
		"totalPages": totalPages,
		"items":      items,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	collection, id := r.PathValue("collection"), r.PathValue("id")

	rec, err := s.records.GetByID(r.Context(), collection, id)
	if err != nil {
		s.logger.Error("get record failed", "collection", collection, "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Something went wrong while processing your request.")
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	writeJSON(w, http.StatusOK, recordJSON(rec))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")

	data, uploads, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	rec, err := s.records.Create(r.Context(), collection, data)
	if err != nil {
		s.logger.Error("create record failed", "collection", collection, "error", err)
		writeError(w, http.StatusBadRequest, "Failed to create record.")
		return
	}

	if len(uploads) > 0 {
		updated, err := s.attachUploads(r, rec, uploads)
		if err != nil {
			s.logger.Error("attach uploads failed", "collection", collection, "id", rec.ID, "error", err)
			if derr := s.records.Delete(r.Context(), collection, rec.ID); derr != nil {
				s.logger.Error("failed to roll back record", "collection", collection, "id", rec.ID, "error", derr)
			}
			if derr := s.photos.DeleteAll(r.Context(), owner(collection, rec.ID)); derr != nil {
				s.logger.Error("failed to roll back record files", "collection", collection, "id", rec.ID, "error", derr)
			}
			writeError(w, http.StatusBadRequest, "Failed to upload files.")
			return
		}
		rec = updated
	}

	s.logger.Info("record created", "collection", collection, "id", rec.ID)
	writeJSON(w, http.StatusOK, recordJSON(rec))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	collection, id := r.PathValue("collection"), r.PathValue("id")

	data, uploads, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to load the submitted data due to invalid formatting.")
		return
	}

	rec, err := s.records.Update(r.Context(), collection, id, data)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	if err != nil {
		s.logger.Error("update record failed", "collection", collection, "id", id, "error", err)
		writeError(w, http.StatusBadRequest, "Failed to update record.")
		return
	}

	if len(uploads) > 0 {
		updated, err := s.attachUploads(r, rec, uploads)
		if err != nil {
			s.logger.Error("attach uploads failed", "collection", collection, "id", id, "error", err)
			writeError(w, http.StatusBadRequest, "Failed to upload files.")
			return
		}
		rec = updated
	}

	writeJSON(w, http.StatusOK, recordJSON(rec))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	collection, id := r.PathValue("collection"), r.PathValue("id")

	err := s.records.Delete(r.Context(), collection, id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	if err != nil {
		s.logger.Error("delete record failed", "collection", collection, "id", id, "error", err)
		writeError(w, http.StatusBadRequest, "Failed to delete record.")
		return
	}

	if err := s.photos.DeleteAll(r.Context(), owner(collection, id)); err != nil {
		s.logger.Error("failed to delete record files", "collection", collection, "id", id, "error", err)
	}

	s.logger.Info("record deleted", "collection", collection, "id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	collection, id, filename := r.PathValue("collection"), r.PathValue("id"), r.PathValue("filename")

	reader, mimeType, err := s.photos.Get(r.Context(), owner(collection, id), filename)
	if err != nil {
		if !errors.Is(err, photostore.ErrNotFound) {
			s.logger.Error("get file failed", "collection", collection, "id", id, "error", err)
		}
		writeError(w, http.StatusNotFound, "The requested resource wasn't found.")
		return
	}
	defer closeWithLog(reader, "file reader", s)

	if mimeType != "" {
		w.Header().Set("Content-Type", mimeType)
	}
	w.Header().Set("Cache-Control", "max-age=2592000")
	if _, err := io.Copy(w, reader); err != nil {
		s.logger.Error("write file failed", "collection", collection, "id", id, "error", err)
	}
}

// upload is one file part of a multipart create or update.
type upload struct {
	field    string
	filename string
	mimeType string
	data     []byte
}

// attachUploads stores uploads under the record and appends the new file names
// to the record's file fields.
func (s *Server) attachUploads(r *http.Request, rec *store.Record, uploads []upload) (*store.Record, error) {
	patch := map[string]any{}
	for _, u := range uploads {
		key, err := s.photos.Save(r.Context(), owner(rec.Collection, rec.ID), u.filename, u.mimeType, bytes.NewReader(u.data))
		if err != nil {
			return rec, err
		}
		files, ok := patch[u.field].([]string)
		if !ok {
			files = stringList(rec.Data[u.field])
		}
		patch[u.field] = append(files, key)
	}
	return s.records.Update(r.Context(), rec.Collection, rec.ID, patch)
}

func owner(collection, id string) string {
	return collection + "/" + id
}

// readBody decodes a JSON object or a multipart form. Multipart text values are
// kept as strings; file parts must be images.
func readBody(w http.ResponseWriter, r *http.Request) (map[string]any, []upload, error) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		data := map[string]any{}
		if err := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody)).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
			return nil, nil, err
		}
		return data, nil, nil
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return nil, nil, err
	}

	data := map[string]any{}
	for k, values := range r.MultipartForm.Value {
		if len(values) == 1 {
			data[k] = values[0]
		} else {
			data[k] = values
		}
	}

	var uploads []upload
	for field, headers := range r.MultipartForm.File {
		for _, hdr := range headers {
			u, err := readUpload(field, hdr)
			if err != nil {
				return nil, nil, err
			}
			uploads = append(uploads, u)
		}
	}
	return data, uploads, nil
}

func readUpload(field string, hdr *multipart.FileHeader) (upload, error) {
	f, err := hdr.Open()
	if err != nil {
		return upload{}, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return upload{}, err
	}
	mimeType, ok := photostore.DetectImageMIME(data)
	if !ok {
		return upload{}, fmt.Errorf("unsupported file type for %q", hdr.Filename)
	}
	return upload{field: field, filename: hdr.Filename, mimeType: mimeType, data: data}, nil
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case []string:
		return t
	case string:
		if t != "" {
			return []string{t}
		}
	}
	return nil
}

func queryInt(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// closeWithLog closes c and logs any error, using label to identify the resource.
func closeWithLog(c io.Closer, label string, s *Server) {
	if err := c.Close(); err != nil {
		s.logger.Error("failed to close resource", "label", label, "error", err)
	}
}
