package tiling

import "slices"

// Manager owns the workspaces and tracks the focused one.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	workspaces []*Workspace
	focused    *WorkspaceID
}

// NewManager returns a manager with no workspaces.
func NewManager() *Manager {
	return &Manager{}
}

// AddWorkspace appends ws. It does not change focus.
func (m *Manager) AddWorkspace(ws *Workspace) {
	if ws == nil {
		panic("tiling: AddWorkspace with nil workspace")
	}
	m.workspaces = append(m.workspaces, ws)
}

// RemoveWorkspace removes the workspace with id and reports whether it
// existed. Removing the focused workspace clears focus.
func (m *Manager) RemoveWorkspace(id WorkspaceID) bool {
	idx := m.indexOf(id)
	if idx < 0 {
		return false
	}
	m.workspaces = slices.Delete(m.workspaces, idx, idx+1)
	if m.focused != nil && *m.focused == id {
		m.focused = nil
	}
	return true
}

// Focus focuses the workspace with id. Unknown ids are rejected and leave
// focus unchanged.
func (m *Manager) Focus(id WorkspaceID) bool {
	if m.indexOf(id) < 0 {
		return false
	}
	m.focused = &id
	return true
}

// FocusedWorkspaceID returns the focused workspace id even if it is stale.
func (m *Manager) FocusedWorkspaceID() (WorkspaceID, bool) {
	if m.focused == nil {
		return 0, false
	}
	return *m.focused, true
}

// FocusedWorkspace resolves the focused workspace. It returns nil when focus
// is unset or names a workspace that no longer exists.
func (m *Manager) FocusedWorkspace() *Workspace {
	if m.focused == nil {
		return nil
	}
	return m.WorkspaceByID(*m.focused)
}

// WorkspaceByID returns the workspace with id, or nil.
func (m *Manager) WorkspaceByID(id WorkspaceID) *Workspace {
	idx := m.indexOf(id)
	if idx < 0 {
		return nil
	}
	return m.workspaces[idx]
}

// Workspaces returns the workspaces in insertion order. The slice is a copy;
// the workspaces are shared.
func (m *Manager) Workspaces() []*Workspace {
	return slices.Clone(m.workspaces)
}

// Len returns the number of workspaces.
func (m *Manager) Len() int {
	return len(m.workspaces)
}

func (m *Manager) indexOf(id WorkspaceID) int {
	return slices.IndexFunc(m.workspaces, func(ws *Workspace) bool { return ws.ID == id })
}
