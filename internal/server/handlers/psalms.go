package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"git.home.luguber.info/inful/psalter/internal/catalog"
	"git.home.luguber.info/inful/psalter/internal/foundation/errors"
)

// Catalog is the query surface behind the psalm routes.
type Catalog interface {
	ListDocuments(ctx context.Context, rawQuery string, params catalog.ListParams) (json.RawMessage, error)
	GetDocument(ctx context.Context, number int) (catalog.PsalmRecord, error)
	GetSection(ctx context.Context, psalm, stanza int) (catalog.StanzaDetail, error)
	ListSections(ctx context.Context, psalm int) ([]catalog.StanzaRecord, error)
}

// PsalmHandlers serves the /api/psalms routes.
type PsalmHandlers struct {
	catalog      Catalog
	errorAdapter *errors.HTTPErrorAdapter
}

// NewPsalmHandlers creates the psalm route handlers.
func NewPsalmHandlers(c Catalog, adapter *errors.HTTPErrorAdapter) *PsalmHandlers {
	if adapter == nil {
		adapter = errors.NewHTTPErrorAdapter(nil)
	}
	return &PsalmHandlers{catalog: c, errorAdapter: adapter}
}

// HandleList serves GET /api/psalms.
func (h *PsalmHandlers) HandleList(w http.ResponseWriter, r *http.Request) {
	params, err := catalog.ParseListParams(r.URL.Query())
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	payload, err := h.catalog.ListDocuments(r.Context(), r.URL.RawQuery, params)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	_ = writeRaw(w, http.StatusOK, payload)
}

// HandleGet serves GET /api/psalms/{number}.
func (h *PsalmHandlers) HandleGet(w http.ResponseWriter, r *http.Request) {
	number, err := pathInt(r, "number", "Psalm not found")
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	rec, err := h.catalog.GetDocument(r.Context(), number)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	h.write(w, r, rec)
}

// HandleStanza serves GET /api/psalms/{number}/stanza/{stanza}.
func (h *PsalmHandlers) HandleStanza(w http.ResponseWriter, r *http.Request) {
	number, err := pathInt(r, "number", "Stanza not found")
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	stanza, err := pathInt(r, "stanza", "Stanza not found")
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	rec, err := h.catalog.GetSection(r.Context(), number, stanza)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	h.write(w, r, rec)
}

// HandleStanzas serves GET /api/psalms/{number}/stanzas.
func (h *PsalmHandlers) HandleStanzas(w http.ResponseWriter, r *http.Request) {
	number, err := pathInt(r, "number", "No stanzas found for this psalm")
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	recs, err := h.catalog.ListSections(r.Context(), number)
	if err != nil {
		h.errorAdapter.WriteErrorResponse(w, r, err)
		return
	}
	h.write(w, r, recs)
}

func (h *PsalmHandlers) write(w http.ResponseWriter, r *http.Request, v any) {
	if err := writeJSON(w, http.StatusOK, v); err != nil {
		h.errorAdapter.WriteErrorResponse(w, r,
			errors.WrapError(err, errors.CategoryInternal, "failed to encode response").Build())
	}
}
