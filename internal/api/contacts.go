package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/tallybooks/tally/internal/id"
	"github.com/tallybooks/tally/internal/model"
	"github.com/tallybooks/tally/internal/store"
)

type contactResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Type    string `json:"type"`
}

func toContactResponse(c model.Contact) contactResponse {
	return contactResponse{
		ID:      c.ID,
		Name:    c.Name,
		Email:   c.Email,
		Phone:   c.Phone,
		Address: c.Address,
		Type:    string(c.Type),
	}
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.store.Contacts(r.Context())
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	out := make([]contactResponse, 0, len(contacts))
	for _, c := range contacts {
		out = append(out, toContactResponse(c))
	}
	writeJSON(w, http.StatusOK, out)
}

type createContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Type    string `json:"type"`
}

func (s *Server) createContact(w http.ResponseWriter, r *http.Request) {
	var req createContactRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}

	var verr model.ValidationError
	if req.Name == "" {
		verr.Add("name", "required")
	}
	typ := model.ContactType(req.Type)
	if typ != model.ContactCustomer && typ != model.ContactVendor {
		verr.Add("type", "must be customer or vendor")
	}
	if err := verr.Err(); err != nil {
		writeError(w, s.log, err)
		return
	}

	c := model.Contact{
		ID:      id.New(),
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Type:    typ,
	}
	if err := s.store.CreateContact(r.Context(), c); err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, toContactResponse(c))
}

func (s *Server) getContact(w http.ResponseWriter, r *http.Request) {
	c, err := s.store.Contact(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c))
}

type updateContactRequest struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Type    *string `json:"type"`
}

func (s *Server) updateContact(w http.ResponseWriter, r *http.Request) {
	var req updateContactRequest
	if err := decode(r, &req); err != nil {
		writeError(w, s.log, err)
		return
	}

	params := store.UpdateContactParams{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
	}
	if req.Type != nil {
		typ := model.ContactType(*req.Type)
		if typ != model.ContactCustomer && typ != model.ContactVendor {
			var verr model.ValidationError
			verr.Add("type", "must be customer or vendor")
			writeError(w, s.log, &verr)
			return
		}
		params.Type = &typ
	}

	c, err := s.store.UpdateContact(r.Context(), chi.URLParam(r, "id"), params)
	if err != nil {
		writeError(w, s.log, err)
		return
	}
	writeJSON(w, http.StatusOK, toContactResponse(c))
}

func (s *Server) deleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, s.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statementEntryResponse struct {
	Date    string          `json:"date"`
	Type    string          `json:"type"`
	Details string          `json:"details"`
	Amount  decimal.Decimal `json:"amount"`
}

type statementResponse struct {
	Contact contactResponse          `json:"contact"`
	Entries []statementEntryResponse `json:"entries"`
	Balance decimal.Decimal          `json:"balance"`
}

func (s *Server) contactStatement(w http.ResponseWriter, r *http.Request) {
	st, err := s.statements.Build(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, s.log, err)
		return
	}

	entries := make([]statementEntryResponse, 0, len(st.Entries))
	for _, e := range st.Entries {
		entries = append(entries, statementEntryResponse{
			Date:    e.Date.Format("2006-01-02"),
			Type:    string(e.Type),
			Details: e.Details,
			Amount:  e.Amount,
		})
	}
	writeJSON(w, http.StatusOK, statementResponse{
		Contact: toContactResponse(st.Contact),
		Entries: entries,
		Balance: st.Balance,
	})
}
