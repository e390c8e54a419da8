package http

import (
	"net/http"
)

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.budget.GetProfile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var body profileDTO
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if err := s.budget.UpdateProfile(r.Context(), body.toCore()); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()

	p, err := s.budget.GetProfile(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProfileDTO(p))
}

func (s *Server) handleListTaxRates(w http.ResponseWriter, r *http.Request) {
	rates, err := s.budget.ListTaxRates(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]taxRateDTO, 0, len(rates))
	for _, t := range rates {
		out = append(out, toTaxRateDTO(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTaxRate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name    string  `json:"name"`
		Percent float64 `json:"percent"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	rate, err := s.budget.CreateTaxRate(r.Context(), body.Name, body.Percent)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toTaxRateDTO(rate))
}

func (s *Server) handleUpdateTaxRate(w http.ResponseWriter, r *http.Request) {
	var body taxRateDTO
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	body.ID = r.PathValue("id")
	err := s.budget.UpdateTaxRate(r.Context(), body.toCore())
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDeleteTaxRate(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.DeleteTaxRate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.budget.ListCategories(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]categoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, categoryDTO{ID: c.ID, Name: c.Name})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	cat, err := s.budget.CreateCategory(r.Context(), body.Name)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, categoryDTO{ID: cat.ID, Name: cat.Name})
}

func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.DeleteCategory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	includeInactive := r.URL.Query().Get("all") == "1"
	items, err := s.budget.ListItems(r.Context(), includeInactive)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]itemDTO, 0, len(items))
	for _, i := range items {
		out = append(out, toItemDTO(i))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateItem(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name         string `json:"name"`
		BudgetAmount amount `json:"budget_amount"`
		CategoryID   string `json:"category_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	item, err := s.budget.CreateItem(r.Context(), body.Name, float64(body.BudgetAmount), body.CategoryID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toItemDTO(item))
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var body itemDTO
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	body.ID = r.PathValue("id")
	err := s.budget.UpdateItem(r.Context(), body.toCore())
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.DeleteItem(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	params := MonthParams{}
	if r.URL.Query().Get("year") != "" || r.URL.Query().Get("month") != "" {
		var err error
		params, err = parseMonthParams(r)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
	}
	purchases, err := s.budget.ListPurchases(r.Context(), params.Year, params.Month)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]purchaseDTO, 0, len(purchases))
	for _, p := range purchases {
		out = append(out, toPurchaseDTO(p))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ItemName     string `json:"item_name"`
		Cost         amount `json:"cost"`
		Timestamp    string `json:"timestamp"`
		BudgetItemID string `json:"budget_item_id"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	ts, err := parseTimestamp(body.Timestamp)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	p, err := s.budget.CreatePurchase(r.Context(), body.ItemName, float64(body.Cost), ts, body.BudgetItemID)
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toPurchaseDTO(p))
}

func (s *Server) handleDeletePurchase(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.DeletePurchase(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleRestorePurchase(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.RestorePurchase(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.budget.ListAccounts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]accountDTO, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountDTO(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	var body accountDTO
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	a, err := s.budget.CreateAccount(r.Context(), body.toCore())
	if err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusCreated, toAccountDTO(a))
}

func (s *Server) handleGetAccount(w http.ResponseWriter, r *http.Request) {
	a, err := s.budget.GetAccount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toAccountDTO(a))
}

func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	var body accountDTO
	if err := decodeBody(r, &body); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	body.ID = r.PathValue("id")
	if err := s.budget.UpdateAccount(r.Context(), body.toCore()); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.budget.DeleteAccount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusNoContent, nil)
}
