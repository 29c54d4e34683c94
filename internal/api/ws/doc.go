// Package ws streams desktop state to renderers over WebSocket.
//
// Each connection first receives a "system" frame carrying its client ID and
// a full "state" frame. After that every effective desktop change is pushed
// as another "state" frame. Clients send commands such as
//
//	{"type":"icon.open","id":"icon-home","requestId":"1"}
//
// and get back an "ack" (with windowId for icon.open) or an "error" frame
// echoing the requestId.
package ws
