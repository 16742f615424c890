package playback

import "container/heap"

// taskItem - отложенная задача Оркестратора.
// Ровно два легальных вида приостановки (§ модель ресурсов): задержка
// инициализации после спавна и пауза перед рестартом цикла. Обе - явные
// задачи с дедлайном, никаких неявных yield посреди тика.
type taskItem struct {
	DueAt float64 // Время оркестрации (сек), когда задача созревает
	Seq   int     // Порядок постановки - для стабильности при равных DueAt
	Run   func()
	Index int // Индекс в куче (нужен для heap.Fix)
}

// taskHeap реализует heap.Interface поверх taskItems
type taskHeap []*taskItem

func (h taskHeap) Len() int { return len(h) }

func (h taskHeap) Less(i, j int) bool {
	// MinHeap по времени; при равенстве - порядок постановки
	if h[i].DueAt != h[j].DueAt {
		return h[i].DueAt < h[j].DueAt
	}
	return h[i].Seq < h[j].Seq
}

func (h taskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].Index = i
	h[j].Index = j
}

func (h *taskHeap) Push(x interface{}) {
	n := len(*h)
	item := x.(*taskItem)
	item.Index = n
	*h = append(*h, item)
}

func (h *taskHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // избегаем утечки памяти
	item.Index = -1
	*h = old[0 : n-1]
	return item
}

// TaskQueue - очередь отложенных задач с явными ограниченными задержками
type TaskQueue struct {
	heap taskHeap
	seq  int
}

func NewTaskQueue() *TaskQueue {
	return &TaskQueue{heap: make(taskHeap, 0)}
}

// Schedule ставит задачу на момент dueAt
func (q *TaskQueue) Schedule(dueAt float64, run func()) {
	q.seq++
	heap.Push(&q.heap, &taskItem{DueAt: dueAt, Seq: q.seq, Run: run})
}

// RunDue выполняет все созревшие задачи в порядке дедлайнов
func (q *TaskQueue) RunDue(now float64) {
	for q.heap.Len() > 0 && q.heap[0].DueAt <= now {
		item := heap.Pop(&q.heap).(*taskItem)
		item.Run()
	}
}

// Len возвращает количество ожидающих задач
func (q *TaskQueue) Len() int {
	return q.heap.Len()
}

// DebugDump возвращает дедлайны ожидающих задач.
// Порядок - внутренний порядок кучи, не порядок извлечения.
func (q *TaskQueue) DebugDump() []float64 {
	out := make([]float64, 0, q.heap.Len())
	for _, item := range q.heap {
		out = append(out, item.DueAt)
	}
	return out
}
