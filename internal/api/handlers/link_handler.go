package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"upiqr/internal/engine/links"
	"upiqr/internal/engine/redirect"
	"upiqr/internal/engine/render"
	"upiqr/internal/pkg/errors"
	"upiqr/internal/platform/metrics"
)

type LinkHandler struct {
	service  *links.Service
	composer *render.Composer
	cache    *redirect.LinkCache
	metrics  *metrics.Metrics
	baseURL  string
}

func NewLinkHandler(service *links.Service, composer *render.Composer, cache *redirect.LinkCache, m *metrics.Metrics, shortDomain string) *LinkHandler {
	baseURL := ""
	if shortDomain != "" {
		baseURL = "https://" + shortDomain + "/p/"
	}
	return &LinkHandler{service: service, composer: composer, cache: cache, metrics: m, baseURL: baseURL}
}

type linkResponse struct {
	*links.PaymentLink
	Protected bool   `json:"protected"`
	ShortURL  string `json:"short_url,omitempty"`
	UPILink   string `json:"upi_link,omitempty"`
}

func (h *LinkHandler) response(link *links.PaymentLink) linkResponse {
	resp := linkResponse{PaymentLink: link, Protected: link.Protected()}
	if h.baseURL != "" {
		resp.ShortURL = h.baseURL + link.ShortCode
	}
	if uri, err := h.service.BuildURI(link); err == nil {
		resp.UPILink = uri
	}
	return resp
}

func (h *LinkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req links.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.Write(w, errors.New(errors.CodeInvalidInput, "Invalid request body"))
		return
	}
	req.CreatedBy = claimsFrom(r).MerchantID

	link, err := h.service.CreateLink(&req)
	if err != nil {
		writeDomainError(w, h.metrics, err)
		return
	}

	errors.WriteJSON(w, http.StatusCreated, h.response(link))
}

func (h *LinkHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := pagination(r)

	list, err := h.service.ListLinks(claimsFrom(r).MerchantID, limit, offset)
	if err != nil {
		writeDomainError(w, h.metrics, err)
		return
	}

	out := make([]linkResponse, 0, len(list))
	for _, link := range list {
		out = append(out, h.response(link))
	}
	errors.WriteJSON(w, http.StatusOK, out)
}

// owned loads the link named in the path and hides links of other merchants.
func (h *LinkHandler) owned(w http.ResponseWriter, r *http.Request) (*links.PaymentLink, bool) {
	link, err := h.service.GetLink(param(r, "link_id"))
	if err == nil && link.CreatedBy != claimsFrom(r).MerchantID {
		err = links.ErrLinkNotFound
	}
	if err != nil {
		writeDomainError(w, h.metrics, err)
		return nil, false
	}
	return link, true
}

func (h *LinkHandler) Get(w http.ResponseWriter, r *http.Request) {
	link, ok := h.owned(w, r)
	if !ok {
		return
	}
	errors.WriteJSON(w, http.StatusOK, h.response(link))
}

func (h *LinkHandler) Update(w http.ResponseWriter, r *http.Request) {
	link, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req links.UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.Write(w, errors.New(errors.CodeInvalidInput, "Invalid request body"))
		return
	}

	updated, err := h.service.UpdateLink(link.ID, &req)
	if err != nil {
		writeDomainError(w, h.metrics, err)
		return
	}
	h.cache.Invalidate(link.ShortCode)

	errors.WriteJSON(w, http.StatusOK, h.response(updated))
}

func (h *LinkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	link, ok := h.owned(w, r)
	if !ok {
		return
	}

	if err := h.service.ArchiveLink(link.ID); err != nil {
		writeDomainError(w, h.metrics, err)
		return
	}
	h.cache.Invalidate(link.ShortCode)

	w.WriteHeader(http.StatusNoContent)
}

// GetQRCode renders the stored intent. Query: format, dark, light, logo, logo_size.
func (h *LinkHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	link, ok := h.owned(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	format, err := render.ParseFormat(q.Get("format"))
	if err != nil {
		writeDomainError(w, h.metrics, err)
		return
	}
	req := &render.Request{
		Intent: link.Intent,
		Dark:   q.Get("dark"),
		Light:  q.Get("light"),
		Logo:   q.Get("logo"),
		Format: format,
	}
	if s := q.Get("logo_size"); s != "" {
		size, err := strconv.ParseFloat(s, 64)
		if err != nil {
			writeDomainError(w, h.metrics, links.NewValidationError("logo_size", "logo_size must be a number"))
			return
		}
		req.LogoSize = size
	}

	writeRender(w, r, h.composer, h.metrics, req)
}
