package handlers

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/varangian-core/magical-board/application/ports"
	"github.com/varangian-core/magical-board/application/queries"
	querybus "github.com/varangian-core/magical-board/application/queries/bus"
	"github.com/varangian-core/magical-board/application/services"
	"github.com/varangian-core/magical-board/interfaces/http/rest/middleware"
	pkgerrors "github.com/varangian-core/magical-board/pkg/errors"
)

// maxUploadMemory is the multipart form size kept in memory; larger parts
// spill to temporary files
const maxUploadMemory = 32 << 20

// ImageHandler handles image upload and storage requests
type ImageHandler struct {
	responder
	images   *services.ImageService
	queryBus *querybus.QueryBus
}

// NewImageHandler creates a new image handler
func NewImageHandler(images *services.ImageService, queryBus *querybus.QueryBus, logger *zap.Logger) *ImageHandler {
	return &ImageHandler{
		responder: responder{logger: logger},
		images:    images,
		queryBus:  queryBus,
	}
}

// UploadResponse is the outcome of one uploaded file
type UploadResponse struct {
	Name    string                 `json:"name"`
	Image   *ports.StoredImage     `json:"image,omitempty"`
	Element *queries.ElementResult `json:"element,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Code    int                    `json:"code,omitempty"`
}

// Upload handles POST /boards/{boardID}/session/images. Every file part
// is stored and placed independently. The request fails only when no
// file could be stored.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	var files []services.ImageUpload
	for _, headers := range r.MultipartForm.File {
		for _, fh := range headers {
			files = append(files, newUpload(fh))
		}
	}

	results, err := h.images.Upload(r.Context(), boardID, middleware.UserFromContext(r.Context()), files)
	if err != nil {
		h.respondErr(w, r, err)
		return
	}

	stored := 0
	resp := make([]UploadResponse, len(results))
	for i, res := range results {
		resp[i] = UploadResponse{Name: res.Name, Image: res.Image}
		if res.Element != nil {
			el := queries.NewElementResult(res.Element)
			resp[i].Element = &el
		}
		if res.Err != nil {
			resp[i].Code = pkgerrors.HTTPStatus(res.Err)
			resp[i].Error = res.Err.Error()
			if appErr := pkgerrors.GetAppError(res.Err); appErr != nil {
				resp[i].Error = appErr.Message
			}
			continue
		}
		stored++
	}

	if stored == 0 {
		h.respondErr(w, r, results[0].Err)
		return
	}
	h.respondJSON(w, http.StatusCreated, resp)
}

func newUpload(fh *multipart.FileHeader) services.ImageUpload {
	return services.ImageUpload{
		Name: fh.Filename,
		Open: func() (io.ReadCloser, error) { return fh.Open() },
	}
}

// ListBoardImages handles GET /boards/{boardID}/images
func (h *ImageHandler) ListBoardImages(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListBoardImagesQuery{BoardID: chi.URLParam(r, "boardID")})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// StorageInfo handles GET /images/storage
func (h *ImageHandler) StorageInfo(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.GetStorageInfoQuery{})
	if err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, result)
}

// DeleteImage handles DELETE /images/{imageID}
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")
	if err := h.images.Delete(r.Context(), imageID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"id":      imageID,
		"message": "Image deleted successfully",
	})
}

// ClearBoardImages handles DELETE /boards/{boardID}/images
func (h *ImageHandler) ClearBoardImages(w http.ResponseWriter, r *http.Request) {
	boardID := chi.URLParam(r, "boardID")
	if err := h.images.ClearBoard(r.Context(), boardID); err != nil {
		h.respondErr(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{
		"boardId": boardID,
		"message": "Board images cleared",
	})
}
