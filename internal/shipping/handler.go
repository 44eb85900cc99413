package shipping

import (
	"net/http"
	"strconv"

	"dzgamezone-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Routes is mounted under /api/shipping-wilayas.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	// GET accepts a numero or a region name; PUT and DELETE take a numero.
	r.Get("/{wilaya}", h.get)
	r.Put("/{wilaya}", h.update)
	r.Delete("/{wilaya}", h.delete)
	return r
}

func numeroParam(r *http.Request) (int, error) {
	n, err := strconv.Atoi(chi.URLParam(r, "wilaya"))
	if err != nil {
		return 0, ErrWilayaNotFound
	}
	return n, nil
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	wilayas, err := h.svc.List(r.Context())
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, wilayas)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	wilaya, err := h.svc.Lookup(r.Context(), chi.URLParam(r, "wilaya"))
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, wilaya)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var in CreateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	wilaya, err := h.svc.Create(r.Context(), in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, wilaya)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	numero, err := numeroParam(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	var in UpdateInput
	if err := utils.DecodeJSON(r, &in); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	wilaya, err := h.svc.Update(r.Context(), numero, in)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, wilaya)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	numero, err := numeroParam(r)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), numero); err != nil {
		utils.WriteError(w, r, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.MessageResponse{Message: "wilaya deleted"})
}
