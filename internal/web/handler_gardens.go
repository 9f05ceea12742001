package web

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/vbonduro/gardenbook/internal/gardens"
	"github.com/vbonduro/gardenbook/internal/photostore"
	"github.com/vbonduro/gardenbook/internal/pocketbase"
	"github.com/vbonduro/gardenbook/internal/service"
)

const (
	maxPhotoSize   = 50 * 1024 * 1024 // 50 MB
	maxGardenTitle = 200

	gardensListFile = "partials/gardens_list.html"
)

func (s *Server) newGardensList(r *http.Request) *gardens.List {
	client, tokens := s.session(r)
	return gardens.NewList(client, tokens, gardens.DefaultOptions(), s.logger)
}

func (s *Server) handleListGardens(w http.ResponseWriter, r *http.Request) {
	list := s.newGardensList(r)
	list.Load(r.Context())
	s.renderGardens(w, r, list.View())
}

// handleDeleteGarden loads the list, as a freshly mounted component would,
// then runs the confirmed delete and renders the resulting state.
func (s *Server) handleDeleteGarden(w http.ResponseWriter, r *http.Request) {
	list := s.newGardensList(r)
	list.Load(r.Context())
	list.Delete(r.Context(), r.PathValue("id"), formConfirmer(r))
	s.renderGardens(w, r, list.View())
}

func (s *Server) renderGardens(w http.ResponseWriter, r *http.Request, view gardens.View) {
	if isHTMX(r) {
		if err := s.renderPartial(w, http.StatusOK, "gardens_list", view, gardensListFile); err != nil {
			s.logger.Error("render partial failed", "error", err)
		}
		return
	}
	if err := s.renderPage(w, http.StatusOK,
		map[string]any{"List": view, "ActiveNav": "gardens"},
		"base.html", "pages/gardens.html", gardensListFile,
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// formConfirmer approves a delete only when the request says the user
// confirmed it. htmx sets the value after its hx-confirm dialog.
func formConfirmer(r *http.Request) gardens.Confirmer {
	return gardens.ConfirmFunc(func(context.Context, string) bool {
		return r.FormValue("confirmed") == "true"
	})
}

func (s *Server) handleGardenDetails(w http.ResponseWriter, r *http.Request) {
	client, tokens := s.session(r)
	svc := service.NewGardenService(client, tokens, s.logger)

	garden, err := svc.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, pocketbase.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, "failed to get garden", http.StatusInternalServerError)
		s.logger.Error("get garden failed", "garden_id", r.PathValue("id"), "error", err)
		return
	}

	if err := s.renderPage(w, http.StatusOK,
		map[string]any{"Garden": garden, "EditURL": gardens.EditPath(garden.ID), "ActiveNav": "gardens"},
		"base.html", "pages/garden_detail.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

// gardenForm is the render model for the create and edit page.
type gardenForm struct {
	ID      string
	Heading string
	Action  string
	Title   string
	Address string
	Photos  []string
	Error   string
}

func newGardenForm(id string) gardenForm {
	if id == "" {
		return gardenForm{Heading: "Нова градина", Action: gardens.CreatePath}
	}
	return gardenForm{ID: id, Heading: "Редактиране на градина", Action: gardens.EditPath(id)}
}

func (s *Server) handleGardenForm(w http.ResponseWriter, r *http.Request) {
	form := newGardenForm(r.PathValue("id"))

	if form.ID != "" {
		client, tokens := s.session(r)
		garden, err := service.NewGardenService(client, tokens, s.logger).Get(r.Context(), form.ID)
		if errors.Is(err, pocketbase.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			http.Error(w, "failed to get garden", http.StatusInternalServerError)
			s.logger.Error("get garden failed", "garden_id", form.ID, "error", err)
			return
		}
		form.Title, form.Address, form.Photos = garden.Title, garden.Address, garden.PhotoURLs
	}

	s.renderGardenForm(w, http.StatusOK, form)
}

func (s *Server) handleSaveGarden(w http.ResponseWriter, r *http.Request) {
	form := newGardenForm(r.PathValue("id"))

	if err := r.ParseMultipartForm(maxPhotoSize); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		http.Error(w, "failed to parse form", http.StatusBadRequest)
		return
	}
	form.Title = r.FormValue("title")
	form.Address = r.FormValue("address")
	if len(form.Title) > maxGardenTitle {
		form.Error = "Заглавието е твърде дълго"
		s.renderGardenForm(w, http.StatusBadRequest, form)
		return
	}

	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File["photos"]
	}
	uploads, err := readPhotos(headers)
	if err != nil {
		form.Error = "Неподдържан формат на изображението"
		s.renderGardenForm(w, http.StatusBadRequest, form)
		return
	}

	client, tokens := s.session(r)
	svc := service.NewGardenService(client, tokens, s.logger)
	in := service.GardenInput{Title: form.Title, Address: form.Address, Photos: uploads}

	var garden *service.GardenDetail
	if form.ID == "" {
		garden, err = svc.Create(r.Context(), in)
	} else {
		garden, err = svc.Update(r.Context(), form.ID, in)
	}
	switch {
	case errors.Is(err, service.ErrTitleRequired):
		form.Error = "Заглавието е задължително"
		s.renderGardenForm(w, http.StatusBadRequest, form)
		return
	case errors.Is(err, pocketbase.ErrNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		s.logger.Error("save garden failed", "garden_id", form.ID, "error", err)
		form.Error = pocketbase.Message(err, "Failed to save garden")
		s.renderGardenForm(w, http.StatusBadGateway, form)
		return
	}

	redirect(w, r, gardens.DetailsPath(garden.ID))
}

func (s *Server) renderGardenForm(w http.ResponseWriter, status int, form gardenForm) {
	if err := s.renderPage(w, status,
		map[string]any{"Form": form, "ActiveNav": "gardens"},
		"base.html", "pages/garden_form.html",
	); err != nil {
		s.logger.Error("render page failed", "error", err)
	}
}

var errUnsupportedImage = errors.New("unsupported image format")

// readPhotos reads every uploaded photo and rejects anything that is not an
// accepted image type. Empty file inputs are skipped.
func readPhotos(headers []*multipart.FileHeader) ([]service.Upload, error) {
	uploads := make([]service.Upload, 0, len(headers))
	for _, hdr := range headers {
		if hdr.Size == 0 {
			continue
		}
		f, err := hdr.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return nil, err
		}
		if _, ok := photostore.DetectImageMIME(data); !ok {
			return nil, errUnsupportedImage
		}
		uploads = append(uploads, service.Upload{Name: hdr.Filename, Data: data})
	}
	return uploads, nil
}
