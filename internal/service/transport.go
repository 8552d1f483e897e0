package service

// Transport is the outbound side of the real-time layer. The relay core
// never talks to sockets directly; it targets connection IDs handed out by
// the transport. Both primitives are fire-and-forget: pushing to a dead
// connection must never fail the calling operation.
type Transport interface {
	// SendTo pushes an event to the given connections.
	SendTo(connIDs []string, event any)
	// Broadcast pushes an event to every active connection.
	Broadcast(event any)
}
