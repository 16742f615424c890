package world

import (
	"fmt"
	"sort"
)

// Registry - реестр этажей (слоев) мира.
// Движок воспроизведения не знает структуру сцены: у агента есть только
// "текущий слой" и позиция, а реестр отвечает на вопрос "кто на каком этаже".
type Registry struct {
	// layer -> множество ID агентов
	layers map[string]map[string]bool
	// agentID -> layer (обратный индекс)
	location map[string]string
}

func NewRegistry(floors ...string) *Registry {
	r := &Registry{
		layers:   make(map[string]map[string]bool),
		location: make(map[string]string),
	}
	for _, f := range floors {
		r.EnsureLayer(f)
	}
	return r
}

// EnsureLayer создает слой, если его еще нет
func (r *Registry) EnsureLayer(name string) {
	if _, ok := r.layers[name]; !ok {
		r.layers[name] = make(map[string]bool)
	}
}

// Place регистрирует агента на слое (первичное размещение при спавне)
func (r *Registry) Place(agentID, layer string) {
	r.EnsureLayer(layer)
	if old, ok := r.location[agentID]; ok {
		delete(r.layers[old], agentID)
	}
	r.layers[layer][agentID] = true
	r.location[agentID] = layer
}

// Move переносит агента на другой слой.
// Выполняется как ОДИН неделимый шаг (удалить-затем-вставить без
// промежуточных состояний): никакой другой агент не должен увидеть
// "полуперенесенного" соседа.
func (r *Registry) Move(agentID, to string) error {
	from, ok := r.location[agentID]
	if !ok {
		return fmt.Errorf("agent %q is not placed on any layer", agentID)
	}
	if from == to {
		return nil
	}
	r.EnsureLayer(to)

	delete(r.layers[from], agentID)
	r.layers[to][agentID] = true
	r.location[agentID] = to
	return nil
}

// Remove снимает агента с реестра (демонтаж сцены)
func (r *Registry) Remove(agentID string) {
	if layer, ok := r.location[agentID]; ok {
		delete(r.layers[layer], agentID)
		delete(r.location, agentID)
	}
}

// LayerOf возвращает текущий слой агента ("" если не размещен)
func (r *Registry) LayerOf(agentID string) string {
	return r.location[agentID]
}

// AgentsOn возвращает отсортированный список агентов на слое
func (r *Registry) AgentsOn(layer string) []string {
	ids := make([]string, 0, len(r.layers[layer]))
	for id := range r.layers[layer] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// LayerNames возвращает отсортированный список слоев
func (r *Registry) LayerNames() []string {
	names := make([]string, 0, len(r.layers))
	for n := range r.layers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
