package sim

// ListenerHandle names a level handler in a dispatcher's handler table.
type ListenerHandle int

const (
	// HandleSiteNeedsPickup fires when a site passes the pickup threshold.
	HandleSiteNeedsPickup ListenerHandle = iota + 1
	// HandleSiteFull fires when a site reaches its capacity.
	HandleSiteFull
)

// String returns the handle name.
func (h ListenerHandle) String() string {
	switch h {
	case HandleSiteNeedsPickup:
		return "site-needs-pickup"
	case HandleSiteFull:
		return "site-full"
	default:
		return "unknown"
	}
}

// ListenerPayload is the fixed data delivered with a level notification.
type ListenerPayload struct {
	SiteIndex int     // pickup site index (not location index)
	Threshold float64 // tonnes
}

// LevelListener is a registered (threshold, handle, payload) tuple.
type LevelListener struct {
	Threshold float64
	Handle    ListenerHandle
	Payload   ListenerPayload
}

// LevelDispatcher resolves a handle to its handler and invokes it.
type LevelDispatcher interface {
	DispatchLevel(handle ListenerHandle, payload ListenerPayload)
}

// HandlerTable is a LevelDispatcher backed by a map. Unknown handles are ignored.
type HandlerTable map[ListenerHandle]func(ListenerPayload)

// DispatchLevel implements LevelDispatcher.
func (t HandlerTable) DispatchLevel(handle ListenerHandle, payload ListenerPayload) {
	if fn, ok := t[handle]; ok {
		fn(payload)
	}
}
