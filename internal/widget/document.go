package widget

import "sync"

// Mount is a slot in the host document whose contents the widget replaces.
type Mount interface {
	SetHTML(html string)
}

// Document is the host page the widget renders into.
type Document interface {
	// Mount returns the mount point with the given id, if the page has one.
	Mount(id string) (Mount, bool)
	// ScrollIntoView brings the element with the given id into view.
	ScrollIntoView(id string)
}

// MemoryDocument is an in-process Document. It stores the HTML last written
// to each mount point and the last scroll target, for the HTTP host and the
// terminal browser to read back.
type MemoryDocument struct {
	mu       sync.RWMutex
	mounts   map[string]*MemoryMount
	scrolled string
	scrolls  int
}

// NewMemoryDocument returns a document with the given mount point ids.
func NewMemoryDocument(ids ...string) *MemoryDocument {
	d := &MemoryDocument{mounts: make(map[string]*MemoryMount, len(ids))}
	for _, id := range ids {
		d.mounts[id] = &MemoryMount{}
	}
	return d
}

// Mount implements Document.
func (d *MemoryDocument) Mount(id string) (Mount, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.mounts[id]
	if !ok {
		return nil, false
	}
	return m, true
}

// ScrollIntoView implements Document by recording the target.
func (d *MemoryDocument) ScrollIntoView(id string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.scrolled = id
	d.scrolls++
}

// HTML returns the contents of mount id, or "" if there is no such mount.
func (d *MemoryDocument) HTML(id string) string {
	d.mu.RLock()
	m, ok := d.mounts[id]
	d.mu.RUnlock()
	if !ok {
		return ""
	}
	return m.HTML()
}

// LastScroll returns the last scroll target and how many scrolls happened.
func (d *MemoryDocument) LastScroll() (string, int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.scrolled, d.scrolls
}

// MemoryMount holds a fragment of HTML.
type MemoryMount struct {
	mu     sync.RWMutex
	html   string
	writes int
}

// SetHTML replaces the mount's contents.
func (m *MemoryMount) SetHTML(html string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.html = html
	m.writes++
}

// HTML returns the mount's contents.
func (m *MemoryMount) HTML() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.html
}

// Writes returns how many times the mount was replaced.
func (m *MemoryMount) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
