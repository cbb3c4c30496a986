package intake

import "sync"

// DragEvent is a browser drag event delivered to the drop zone
type DragEvent int

const (
	DragEnter DragEvent = iota
	DragOver
	DragLeave
	Drop
)

func (e DragEvent) String() string {
	switch e {
	case DragEnter:
		return "dragenter"
	case DragOver:
		return "dragover"
	case DragLeave:
		return "dragleave"
	case Drop:
		return "drop"
	default:
		return "unknown"
	}
}

// DropZone tracks the highlight of the drop target. Every drag event is
// consumed so the host never navigates to a dropped file.
type DropZone struct {
	mu          sync.Mutex
	highlighted bool
}

// Handle applies ev and returns the resulting highlight
func (z *DropZone) Handle(ev DragEvent) bool {
	z.mu.Lock()
	defer z.mu.Unlock()

	switch ev {
	case DragEnter, DragOver:
		z.highlighted = true
	case DragLeave, Drop:
		z.highlighted = false
	}
	return z.highlighted
}

// Highlighted reports the current highlight
func (z *DropZone) Highlighted() bool {
	z.mu.Lock()
	defer z.mu.Unlock()
	return z.highlighted
}
