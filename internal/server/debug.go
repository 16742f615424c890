package server

import (
	"encoding/json"
	"net/http"

	"github.com/asherp/go-for-launch/internal/engine"
)

// DebugHandler предоставляет доступ к внутреннему состоянию сессии
type DebugHandler struct {
	Service *engine.Service
}

func NewDebugHandler(s *engine.Service) *DebugHandler {
	return &DebugHandler{Service: s}
}

// RegisterRoutes регистрирует debug-эндпоинты
func (h *DebugHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/debug/agents", h.handleDumpAgents)
	mux.HandleFunc("/debug/recordings", h.handleListRecordings)
	mux.HandleFunc("/debug/tasks", h.handleTaskQueue)
	mux.HandleFunc("/debug/layers", h.handleLayers)
}

// /debug/agents - дамп всех агентов сессии (то же, что в STATUS)
func (h *DebugHandler) handleDumpAgents(w http.ResponseWriter, r *http.Request) {
	status := h.Service.BuildStatus()
	writeJSON(w, status.Agents)
}

// /debug/recordings - список субъектов, чьи записи лежат на диске
func (h *DebugHandler) handleListRecordings(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.Service.Orch.Store().ListSubjects()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	type RecordingSummary struct {
		SubjectID  string  `json:"subject_id"`
		EventCount int     `json:"event_count"`
		Duration   float64 `json:"duration"`
		Readable   bool    `json:"readable"`
	}

	var summary []RecordingSummary
	for _, subject := range subjects {
		item := RecordingSummary{SubjectID: subject}
		if rec, err := h.Service.Orch.Store().Load(subject); err == nil {
			item.EventCount = rec.Len()
			item.Duration = rec.Duration()
			item.Readable = true
		}
		summary = append(summary, item)
	}
	writeJSON(w, summary)
}

// /debug/tasks - дедлайны отложенных задач Оркестратора.
// Внимание: это куча, порядок в срезе может не соответствовать
// порядку выполнения, но для дебага сойдет.
func (h *DebugHandler) handleTaskQueue(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.Service.Orch.Tasks().DebugDump())
}

// /debug/layers - кто на каком слое (этаже) находится
func (h *DebugHandler) handleLayers(w http.ResponseWriter, r *http.Request) {
	layers := h.Service.Orch.Layers()

	dump := make(map[string][]string)
	for _, name := range layers.LayerNames() {
		dump[name] = layers.AgentsOn(name)
	}
	writeJSON(w, dump)
}

func writeJSON(w http.ResponseWriter, data interface{}) {
	// Разрешаем запросы с любого источника (нужно для локального debug_client.html)
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	w.Header().Set("Content-Type", "application/json")

	// Пустая очередь отдается как [], а не null
	if data == nil {
		w.Write([]byte("[]"))
		return
	}

	json.NewEncoder(w).Encode(data)
}
