package drive

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
)

// Handler exposes the ingest surface on its own mux router, separate from
// the gin read API. Sync jobs and webhooks hit these endpoints.
type Handler struct {
	service       *Service
	ingestService *IngestService
	downloadDir   string
}

func NewHandler(service *Service, ingestService *IngestService, downloadDir string) *Handler {
	return &Handler{
		service:       service,
		ingestService: ingestService,
		downloadDir:   downloadDir,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/drive/files", h.ListFiles).Methods("GET")
	router.HandleFunc("/api/drive/ingest/sales", h.IngestSales).Methods("POST")
	router.HandleFunc("/api/drive/ingest/inventory", h.IngestInventory).Methods("POST")
	router.HandleFunc("/api/drive/sync", h.SyncFolder).Methods("POST")
}

func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	folderID := query.Get("folderId")
	folderPath := query.Get("path")

	var err error
	if folderPath != "" {
		folderID, err = h.service.FindFolderByPath(r.Context(), folderPath)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
	}

	files, err := h.service.ListFiles(r.Context(), folderID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(files)
}

func (h *Handler) IngestSales(w http.ResponseWriter, r *http.Request) {
	h.ingestFile(w, r, h.ingestService.IngestSalesFile)
}

func (h *Handler) IngestInventory(w http.ResponseWriter, r *http.Request) {
	h.ingestFile(w, r, h.ingestService.IngestInventoryFile)
}

func (h *Handler) ingestFile(w http.ResponseWriter, r *http.Request, ingest func(ctx context.Context, fileID string) error) {
	fileID := r.URL.Query().Get("fileId")
	if fileID == "" {
		http.Error(w, "fileId parameter is required", http.StatusBadRequest)
		return
	}

	if err := ingest(r.Context(), fileID); err != nil {
		http.Error(w, fmt.Sprintf("ingestion failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}

func (h *Handler) SyncFolder(w http.ResponseWriter, r *http.Request) {
	folderID := r.URL.Query().Get("folderId")
	if folderID == "" {
		http.Error(w, "folderId parameter is required", http.StatusBadRequest)
		return
	}

	if err := h.ingestService.SyncFolder(r.Context(), folderID, h.downloadDir); err != nil {
		http.Error(w, fmt.Sprintf("sync failed: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "success"})
}
