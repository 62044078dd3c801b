package api

import (
	"net/http"

	"github.com/rostra-dev/rostra/pkg/identity"
)

type generateIDResponse struct {
	RostraID       string `json:"rostra_id"`
	RostraIDSecret string `json:"rostra_id_secret"`
}

func (s *Server) handleGenerateID(w http.ResponseWriter, r *http.Request) {
	ident, err := identity.Generate()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	rendered, err := identity.Render(ident.Public)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, generateIDResponse{
		RostraID:       rendered,
		RostraIDSecret: ident.Mnemonic,
	})
}

type headsResponse struct {
	Heads []string `json:"heads"`
}

func (s *Server) handleHeads(w http.ResponseWriter, r *http.Request) {
	author, err := identity.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rostra id")
		return
	}

	heads, err := s.engine.Heads(author)
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, headsResponse{Heads: hexEventIDs(heads)})
}
