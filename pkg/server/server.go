package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/kakeibu/pkg/config"
	"github.com/yurifrl/kakeibu/pkg/csv"
	"github.com/yurifrl/kakeibu/pkg/executors"
	"github.com/yurifrl/kakeibu/pkg/importer"
	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/totals"
	"github.com/yurifrl/kakeibu/pkg/ynab"
)

const maxUploadBytes = 32 << 20

// Server exposes the import pipeline over HTTP.
type Server struct {
	config   *config.Config
	logger   *log.Logger
	mux      *http.ServeMux
	importer *importer.Importer
	batches  sync.Map
	now      func() time.Time
}

// New creates a new HTTP server
func New(config *config.Config, logger *log.Logger, imp *importer.Importer) *Server {
	s := &Server{
		config:   config,
		logger:   logger,
		mux:      http.NewServeMux(),
		importer: imp,
		now:      time.Now,
	}
	s.setupRoutes()
	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/import", s.withLogging(s.handleImport))
	s.mux.HandleFunc("/api/totals", s.withLogging(s.handleTotals))
	s.mux.HandleFunc("/api/apply", s.withLogging(s.handleApply))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
	s.mux.HandleFunc("/api/budgets", s.withLogging(s.handleBudgets))
	s.mux.HandleFunc("/api/budgets/", s.withLogging(s.handleBudgetAccounts))
}

// Transaction is the JSON form of a ledger transaction.
type Transaction struct {
	ID          string            `json:"id"`
	Date        string            `json:"date"`
	Time        string            `json:"time"`
	Amount      float64           `json:"amount"`
	Description string            `json:"description"`
	Category    string            `json:"category"`
	ShopName    string            `json:"shopName"`
	Type        models.Type       `json:"type"`
	Source      string            `json:"source"`
	Original    models.Provenance `json:"originalData"`
}

func toJSON(txs []*models.Transaction) []Transaction {
	out := make([]Transaction, len(txs))
	for i, t := range txs {
		out[i] = Transaction{
			ID:          t.ID(),
			Date:        t.Date(),
			Time:        t.Time(),
			Amount:      t.Amount(),
			Description: t.Description(),
			Category:    t.Category(),
			ShopName:    t.ShopName(),
			Type:        t.Type(),
			Source:      t.Source(),
			Original:    t.Original(),
		}
	}
	return out
}

// readBatch imports every file uploaded under the "files" field.
func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) (*importer.Batch, bool) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return nil, false
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read upload", err)
		return nil, false
	}
	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		s.respondError(w, r, http.StatusBadRequest, "no files uploaded", nil)
		return nil, false
	}

	files := make([]importer.File, 0, len(headers))
	for _, h := range headers {
		files = append(files, importer.File{Name: h.Filename, Load: uploadLoader(h)})
	}

	batch, err := s.importer.Import(files, func(current, total int) {
		s.logger.Debug("processed upload", "current", current, "total", total)
	})
	if errors.Is(err, importer.ErrNoTransactions) {
		s.logger.Warn("request error", "status", http.StatusUnprocessableEntity, "msg", err.Error(), "method", r.Method, "path", r.URL.Path)
		_ = s.writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"status": "error",
			"error":  err.Error(),
			"files":  batch.Files,
		})
		return nil, false
	}
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "import failed", err)
		return nil, false
	}

	sort.SliceStable(batch.Transactions, func(i, j int) bool {
		return batch.Transactions[i].At().Before(batch.Transactions[j].At())
	})
	return batch, true
}

func uploadLoader(h *multipart.FileHeader) func() ([]byte, error) {
	return func() ([]byte, error) {
		f, err := h.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(f)
	}
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	batch, ok := s.readBatch(w, r)
	if !ok {
		return
	}

	filename := fmt.Sprintf("kakeibu-%s.csv", s.now().Format("20060102-150405"))
	s.batches.Store(filename, batch.Transactions)

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"file":   filename,
		"data":   toJSON(batch.Transactions),
		"files":  batch.Files,
		"parsed": batch.Parsed,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "year required", err)
		return
	}
	month, err := strconv.Atoi(r.URL.Query().Get("month"))
	if err != nil || month < 1 || month > 12 {
		s.respondError(w, r, http.StatusBadRequest, "month must be 1-12", err)
		return
	}

	batch, ok := s.readBatch(w, r)
	if !ok {
		return
	}

	t := totals.ForMonth(batch.Transactions, year, time.Month(month))
	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":       "success",
		"year":         year,
		"month":        month,
		"income":       t.Income,
		"expenses":     t.Expenses,
		"net":          t.Net(),
		"transactions": toJSON(t.Transactions),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleApply imports the uploaded files and creates the missing ones in a
// YNAB account.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	budgetID := r.URL.Query().Get("budget_id")
	accountID := r.URL.Query().Get("account_id")
	if token == "" || budgetID == "" || accountID == "" {
		s.respondError(w, r, http.StatusBadRequest, "token, budget_id and account_id required", nil)
		return
	}

	batch, ok := s.readBatch(w, r)
	if !ok {
		return
	}

	ts := ynab.New(token).Transaction()
	remote, err := ts.GetTransactionsByAccount(budgetID, accountID)
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "failed to fetch remote transactions", err)
		return
	}
	report := executors.BuildReport(batch.Transactions, remote, s.config.UseCustomID)
	payloads, err := report.Payloads(accountID)
	if err != nil {
		s.respondError(w, r, http.StatusInternalServerError, "failed to build payloads", err)
		return
	}
	if err := ts.CreateTransactions(budgetID, payloads); err != nil {
		s.respondError(w, r, http.StatusBadGateway, "apply failed", err)
		return
	}
	s.logger.Info("apply complete", "account_id", accountID, "created", len(payloads), "in_sync", report.InSyncCount())

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "applied",
		"created": len(payloads),
		"in_sync": report.InSyncCount(),
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleFiles serves the ledger CSV of a previous import.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filename == "" {
		s.respondError(w, r, http.StatusBadRequest, "filename required", nil)
		return
	}

	value, ok := s.batches.Load(filename)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return
	}
	txs, ok := value.([]*models.Transaction)
	if !ok {
		s.respondError(w, r, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	if _, err := w.Write(csv.Create(txs, nil)); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

func (s *Server) handleBudgets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		s.respondError(w, r, http.StatusBadRequest, "token required", nil)
		return
	}

	budgets, err := ynab.New(token).Budget().GetBudgets()
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "failed to fetch budgets", err)
		return
	}
	s.logger.Info("budgets response", "budgets_count", len(budgets))

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "success",
		"budgets": budgets,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

func (s *Server) handleBudgetAccounts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	budgetID := strings.TrimPrefix(r.URL.Path, "/api/budgets/")
	if budgetID == "" {
		s.respondError(w, r, http.StatusBadRequest, "budget_id required", nil)
		return
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		s.respondError(w, r, http.StatusBadRequest, "token required", nil)
		return
	}

	snapshot, err := ynab.New(token).Account().GetAccounts(budgetID, nil)
	if err != nil {
		s.respondError(w, r, http.StatusBadGateway, "failed to fetch accounts", err)
		return
	}

	var accounts []any
	if snapshot != nil {
		for _, a := range snapshot.Accounts {
			accounts = append(accounts, a)
		}
	}
	s.logger.Info("accounts response", "budget_id", budgetID, "accounts_count", len(accounts))

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":   "success",
		"accounts": accounts,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
