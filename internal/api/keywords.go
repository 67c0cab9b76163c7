package api

import (
	"context"
	"net/http"

	"github.com/Priya8975/keyword-pager/internal/domain"
	"github.com/Priya8975/keyword-pager/internal/engine"
	"github.com/go-chi/chi/v5"
)

// KeywordReader is the read side of the keyword store.
type KeywordReader interface {
	Get(ctx context.Context, keyword string) ([]string, bool, error)
}

type KeywordHandler struct {
	store KeywordReader
}

func NewKeywordHandler(s KeywordReader) *KeywordHandler {
	return &KeywordHandler{store: s}
}

// Get returns the keyword document. The path segment is normalized the same
// way message text is, so "Database!" looks up "database".
func (h *KeywordHandler) Get(w http.ResponseWriter, r *http.Request) {
	tokens := engine.Normalize(chi.URLParam(r, "keyword"))
	if len(tokens) != 1 {
		respondError(w, http.StatusBadRequest, "keyword must be a single word")
		return
	}
	keyword := tokens[0]

	subscribers, found, err := h.store.Get(r.Context(), keyword)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to get keyword")
		return
	}
	if !found {
		respondError(w, http.StatusNotFound, "keyword not found")
		return
	}
	if subscribers == nil {
		subscribers = []string{}
	}

	respondJSON(w, http.StatusOK, domain.Keyword{Name: keyword, Subscribers: subscribers})
}
